package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/syncs"

	"github.com/AncaElena10/MERN-jobify/app/store"
)

// jobs list page size, fixed by the backend contract
const jobsPageLimit = 10

// Sessions defines durable session storage operations used by the client.
type Sessions interface {
	Save(user *store.User, token, location string) error
	Clear() error
}

// Credentials is the register/login request body. Name is only sent on
// register.
type Credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Profile is the updateUser request body.
type Profile struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Location string `json:"location"`
}

// Client is the dispatcher set. Every network operation follows the same
// protocol: emit BEGIN, call the transport, emit SUCCESS or ERROR, and let the
// store arm the transient alert. Errors are fully handled here, state-wise,
// the returned error is informational for the caller.
type Client struct {
	store     *store.Store
	sessions  Sessions
	transport *Transport
}

// Config sets up a Client.
type Config struct {
	Store    *store.Store
	Sessions Sessions
	BaseURL  string       // versioned API root, e.g. http://localhost:5000/api/v1
	Client   *http.Client // optional
	Repeater Repeater     // optional
}

// New creates a Client and wires its transport: the token is read from the
// current store state and an unauthorized response forces a logout through a
// narrow callback rather than a direct store dependency.
func New(cfg Config) *Client {
	c := &Client{store: cfg.Store, sessions: cfg.Sessions}
	c.transport = NewTransport(TransportConfig{
		BaseURL:     cfg.BaseURL,
		Client:      cfg.Client,
		Repeater:    cfg.Repeater,
		Token:       func() string { return c.store.State().Token },
		ForceLogout: c.LogoutUser,
	})
	return c
}

// SetupUser registers or logs in through the public auth endpoint. The
// backend returns the identity via response headers: "user" as a JSON-encoded
// string and "token" raw. On success the session is written to the store and
// persisted, on failure the backend's message is shown and the session stays
// untouched.
func (c *Client) SetupUser(ctx context.Context, creds Credentials, endpoint, successText string) error {
	if endpoint != "register" && endpoint != "login" {
		return fmt.Errorf("invalid auth endpoint %q", endpoint)
	}

	c.store.Dispatch(store.Action{Type: store.ActionSetupUserBegin})

	_, header, err := c.transport.PublicRequest(ctx, http.MethodPost, "/"+endpoint, creds)
	if err != nil {
		c.store.Dispatch(store.Action{Type: store.ActionSetupUserError, Msg: userMessage(err)})
		return fmt.Errorf("%s failed: %w", endpoint, err)
	}

	user, token, err := sessionFromHeaders(header)
	if err != nil {
		c.store.Dispatch(store.Action{Type: store.ActionSetupUserError, Msg: userMessage(err)})
		return fmt.Errorf("%s failed: %w", endpoint, err)
	}

	c.store.Dispatch(store.Action{
		Type:    store.ActionSetupUserSuccess,
		Msg:     successText,
		Session: &store.SessionPayload{User: user, Token: token, Location: ""},
	})
	c.persistSession(user, token, "")
	return nil
}

// UpdateUser patches the profile. The refreshed user and token come back via
// headers, the location is re-derived from the updated user. A 401 is owned
// exclusively by the transport's forced logout, no local error is raised for
// it, preventing a duplicate alert.
func (c *Client) UpdateUser(ctx context.Context, profile Profile) error {
	c.store.Dispatch(store.Action{Type: store.ActionUpdateUserBegin})

	_, header, err := c.transport.Request(ctx, http.MethodPatch, "/updateUser", profile)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return err
		}
		c.store.Dispatch(store.Action{Type: store.ActionUpdateUserError, Msg: userMessage(err)})
		return fmt.Errorf("update user failed: %w", err)
	}

	user, token, err := sessionFromHeaders(header)
	if err != nil {
		c.store.Dispatch(store.Action{Type: store.ActionUpdateUserError, Msg: userMessage(err)})
		return fmt.Errorf("update user failed: %w", err)
	}

	c.store.Dispatch(store.Action{
		Type:    store.ActionUpdateUserSuccess,
		Msg:     "User profile updated!",
		Session: &store.SessionPayload{User: user, Token: token, Location: user.Location},
	})
	c.persistSession(user, token, user.Location)
	return nil
}

// FetchUser refreshes the current user record into the session without
// touching the token.
func (c *Client) FetchUser(ctx context.Context) error {
	c.store.Dispatch(store.Action{Type: store.ActionUpdateUserBegin})

	data, _, err := c.transport.Request(ctx, http.MethodGet, "/user", nil)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return err
		}
		c.store.Dispatch(store.Action{Type: store.ActionUpdateUserError, Msg: userMessage(err)})
		return fmt.Errorf("fetch user failed: %w", err)
	}

	var resp struct {
		User *store.User `json:"user"`
	}
	if err := json.Unmarshal(data, &resp); err != nil || resp.User == nil {
		c.store.Dispatch(store.Action{Type: store.ActionUpdateUserError, Msg: "failed to read user from server"})
		return fmt.Errorf("fetch user failed: unexpected response: %w", err)
	}

	token := c.store.State().Token
	c.store.Dispatch(store.Action{
		Type:    store.ActionUpdateUserSuccess,
		Msg:     "User profile refreshed",
		Session: &store.SessionPayload{User: resp.User, Token: token, Location: resp.User.Location},
	})
	c.persistSession(resp.User, token, resp.User.Location)
	return nil
}

// LogoutUser clears the session in the store and the persisted copy. No
// network call, also serves as the forced-logout capability for the transport.
func (c *Client) LogoutUser() {
	c.store.Dispatch(store.Action{Type: store.ActionLogoutUser})
	if err := c.sessions.Clear(); err != nil {
		log.Printf("[WARN] failed to clear persisted session: %v", err)
	}
}

// CreateJob posts the current draft to the job collection. Success clears the
// draft fields, a 401 defers to the forced logout with no local error.
func (c *Client) CreateJob(ctx context.Context) error {
	c.store.Dispatch(store.Action{Type: store.ActionCreateJobBegin})

	st := c.store.State()
	body := jobBody{Position: st.Position, Company: st.Company, JobLocation: st.JobLocation,
		JobType: st.JobType, Status: st.Status}

	if _, _, err := c.transport.Request(ctx, http.MethodPost, "/jobs", body); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return err
		}
		c.store.Dispatch(store.Action{Type: store.ActionCreateJobError, Msg: userMessage(err)})
		return fmt.Errorf("create job failed: %w", err)
	}

	c.store.Dispatch(store.Action{Type: store.ActionCreateJobSuccess, Msg: "New job created!"})
	c.store.Dispatch(store.Action{Type: store.ActionClearValues})
	return nil
}

// EditJob patches the job targeted by the draft's edit id. Success clears the
// draft, a 401 defers to the forced logout.
func (c *Client) EditJob(ctx context.Context) error {
	c.store.Dispatch(store.Action{Type: store.ActionEditJobBegin})

	st := c.store.State()
	body := jobBody{Position: st.Position, Company: st.Company, JobLocation: st.JobLocation,
		JobType: st.JobType, Status: st.Status}

	if _, _, err := c.transport.Request(ctx, http.MethodPatch, "/jobs/"+st.EditJobID, body); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return err
		}
		c.store.Dispatch(store.Action{Type: store.ActionEditJobError, Msg: userMessage(err)})
		return fmt.Errorf("edit job failed: %w", err)
	}

	c.store.Dispatch(store.Action{Type: store.ActionEditJobSuccess, Msg: "Job updated!"})
	c.store.Dispatch(store.Action{Type: store.ActionClearValues})
	return nil
}

// GetJobs fetches the job list page described by the current filters. Any
// failure forces a logout, the list view has no valid degraded state without
// a session.
func (c *Client) GetJobs(ctx context.Context) error {
	st := c.store.State()

	q := url.Values{}
	q.Set("limit", strconv.Itoa(jobsPageLimit))
	q.Set("page", strconv.Itoa(st.Page))
	q.Set("status", st.FilterByStatus)
	q.Set("jobType", st.FilterByJobType)
	q.Set("sort", string(st.Sort))
	if st.Search != "" {
		q.Set("search", st.Search)
	}

	c.store.Dispatch(store.Action{Type: store.ActionGetJobsBegin})

	data, _, err := c.transport.Request(ctx, http.MethodGet, "/jobs?"+q.Encode(), nil)
	if err != nil {
		if !errors.Is(err, ErrUnauthorized) { // 401 already logged out via transport
			c.LogoutUser()
		}
		return fmt.Errorf("get jobs failed: %w", err)
	}

	var resp struct {
		Result     []store.Job `json:"result"`
		Total      int         `json:"total"`
		NumOfPages int         `json:"numOfPages"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		c.LogoutUser()
		return fmt.Errorf("get jobs failed: unexpected response: %w", err)
	}

	c.store.Dispatch(store.Action{
		Type: store.ActionGetJobsSuccess,
		Jobs: &store.JobsPayload{Jobs: resp.Result, TotalJobs: resp.Total, NumOfPages: resp.NumOfPages},
	})
	return nil
}

// DeleteJob removes a job and immediately refetches the list, deletion can
// shift page boundaries. Any failure forces a logout.
func (c *Client) DeleteJob(ctx context.Context, id string) error {
	c.store.Dispatch(store.Action{Type: store.ActionDeleteJobBegin})

	if _, _, err := c.transport.Request(ctx, http.MethodDelete, "/jobs/"+id, nil); err != nil {
		if !errors.Is(err, ErrUnauthorized) {
			c.LogoutUser()
		}
		return fmt.Errorf("delete job failed: %w", err)
	}

	return c.GetJobs(ctx)
}

// GetStatistics fetches aggregated counts by status and the monthly series.
// Any failure forces a logout.
func (c *Client) GetStatistics(ctx context.Context) error {
	c.store.Dispatch(store.Action{Type: store.ActionShowStatsBegin})

	data, _, err := c.transport.Request(ctx, http.MethodGet, "/jobs/stats", nil)
	if err != nil {
		if !errors.Is(err, ErrUnauthorized) {
			c.LogoutUser()
		}
		return fmt.Errorf("get statistics failed: %w", err)
	}

	var resp struct {
		Statistics          map[string]int       `json:"statistics"`
		MonthlyApplications []store.MonthlyCount `json:"monthlyApplications"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		c.LogoutUser()
		return fmt.Errorf("get statistics failed: unexpected response: %w", err)
	}

	stats := make(map[store.JobStatus]int, len(resp.Statistics))
	for k, v := range resp.Statistics {
		status, err := store.ParseJobStatus(k)
		if err != nil {
			log.Printf("[WARN] skipping unknown status %q in statistics", k)
			continue
		}
		stats[status] = v
	}

	c.store.Dispatch(store.Action{
		Type:  store.ActionShowStatsSuccess,
		Stats: &store.StatsPayload{Statistics: stats, Monthly: resp.MonthlyApplications},
	})
	return nil
}

// Refresh fetches the job list and the statistics concurrently. The store
// tolerates the interleaved begin/success sequences, each reduction touches
// only its own fields.
func (c *Client) Refresh(ctx context.Context) error {
	var jobsErr, statsErr error
	wg := syncs.NewSizedGroup(2, syncs.Context(ctx))
	wg.Go(func(gctx context.Context) { jobsErr = c.GetJobs(gctx) })
	wg.Go(func(gctx context.Context) { statsErr = c.GetStatistics(gctx) })
	wg.Wait()
	return errors.Join(jobsErr, statsErr)
}

// DisplayAlert shows a transient alert directly, used for client-side
// validation messages.
func (c *Client) DisplayAlert(text string, alertType store.AlertType) {
	c.store.Dispatch(store.Action{Type: store.ActionDisplayAlert, Msg: text, AlertType: alertType})
}

// ToggleSidebar flips the sidebar flag.
func (c *Client) ToggleSidebar() {
	c.store.Dispatch(store.Action{Type: store.ActionToggleSidebar})
}

// HandleChange writes a single named form field.
func (c *Client) HandleChange(field, value string) {
	c.store.Dispatch(store.Action{Type: store.ActionHandleChange, Field: field, Value: value})
}

// ClearValues resets the job draft fields.
func (c *Client) ClearValues() {
	c.store.Dispatch(store.Action{Type: store.ActionClearValues})
}

// SetEditJob loads a listed job into the draft for editing.
func (c *Client) SetEditJob(id string) {
	c.store.Dispatch(store.Action{Type: store.ActionSetEditJob, JobID: id})
}

// ClearFilters resets search, filters and sort to their defaults.
func (c *Client) ClearFilters() {
	c.store.Dispatch(store.Action{Type: store.ActionClearFilters})
}

// ChangePage moves pagination, invalid page numbers are ignored.
func (c *Client) ChangePage(page int) {
	c.store.Dispatch(store.Action{Type: store.ActionChangePage, Page: page})
}

// jobBody is the create/edit request payload.
type jobBody struct {
	Position    string          `json:"position"`
	Company     string          `json:"company"`
	JobLocation string          `json:"jobLocation"`
	JobType     store.JobType   `json:"jobType"`
	Status      store.JobStatus `json:"status"`
}

// sessionFromHeaders decodes the header-borne identity: "user" is a
// JSON-encoded string, "token" is raw.
func sessionFromHeaders(header http.Header) (*store.User, string, error) {
	token := header.Get("token")
	if token == "" {
		return nil, "", errors.New("no token in response")
	}
	user := &store.User{}
	if err := json.Unmarshal([]byte(header.Get("user")), user); err != nil {
		return nil, "", fmt.Errorf("failed to decode user header: %w", err)
	}
	return user, token, nil
}

// persistSession mirrors a fresh session to durable storage. A write failure
// doesn't invalidate the in-memory session, it only costs the next restart.
func (c *Client) persistSession(user *store.User, token, location string) {
	if err := c.sessions.Save(user, token, location); err != nil {
		log.Printf("[WARN] failed to persist session: %v", err)
	}
}

// userMessage converts an operation error to the user-facing alert text.
func userMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "something went wrong, please try again"
}
