package client

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/didip/tollbooth/v8"
	"github.com/didip/tollbooth/v8/limiter"
	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/routegroup"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/AncaElena10/MERN-jobify/app/store"
)

// fakeBackend is an in-memory jobify API honoring the backend contract the
// client is written against: register/login rate-limited and public, the rest
// behind a bearer token, user+token returned via response headers.
type fakeBackend struct {
	mu        sync.Mutex
	users     map[string]*backendUser // email -> user
	jobs      []store.Job
	token     string       // currently valid bearer token
	jobsCalls []url.Values // recorded GET /jobs queries
}

type backendUser struct {
	id           string
	name         string
	email        string
	location     string
	passwordHash []byte
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{users: map[string]*backendUser{}}
}

// addUser seeds an account, password hashed the way the real backend does
func (b *fakeBackend) addUser(name, email, password, location string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[email] = &backendUser{id: uuid.NewString(), name: name, email: email,
		location: location, passwordHash: hash}
}

// addJob seeds a job directly, bypassing the API
func (b *fakeBackend) addJob(job store.Job) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	b.jobs = append(b.jobs, job)
}

// invalidateToken makes every bearer token stale, the next authed call gets 401
func (b *fakeBackend) invalidateToken() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = ""
}

func (b *fakeBackend) jobsCallCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.jobsCalls)
}

func (b *fakeBackend) lastJobsCall() url.Values {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.jobsCalls) == 0 {
		return nil
	}
	return b.jobsCalls[len(b.jobsCalls)-1]
}

func (b *fakeBackend) handler() http.Handler {
	router := routegroup.New(http.NewServeMux())
	router.Use(
		rest.RealIP,
		rest.Recoverer(log.Default()),
		rest.NoCache,
	)

	// public auth routes, rate-limited like the real thing: 10 req / 15 min / IP
	authLimiter := tollbooth.NewLimiter(10.0/(15*60), &limiter.ExpirableOptions{DefaultExpirationTTL: 15 * time.Minute})
	authLimiter.SetBurst(10)
	authLimiter.SetMessageContentType("application/json")
	authLimiter.SetMessage(`{"message":"Too many requests from this IP Address, please try again after 15 minutes."}`)

	router.Mount("/api/v1").Route(func(api *routegroup.Bundle) {
		api.With(tollbooth.HTTPMiddleware(authLimiter)).HandleFunc("POST /register", b.handleRegister)
		api.With(tollbooth.HTTPMiddleware(authLimiter)).HandleFunc("POST /login", b.handleLogin)

		api.Route(func(priv *routegroup.Bundle) {
			priv.Use(b.authMiddleware)
			priv.HandleFunc("PATCH /updateUser", b.handleUpdateUser)
			priv.HandleFunc("GET /user", b.handleGetUser)
			priv.HandleFunc("GET /jobs", b.handleGetJobs)
			priv.HandleFunc("POST /jobs", b.handleCreateJob)
			priv.HandleFunc("GET /jobs/stats", b.handleStats)
			priv.HandleFunc("PATCH /jobs/{id}", b.handleEditJob)
			priv.HandleFunc("DELETE /jobs/{id}", b.handleDeleteJob)
		})
	})

	return router
}

func (b *fakeBackend) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		token := b.token
		b.mu.Unlock()
		if token == "" || r.Header.Get("Authorization") != "Bearer "+token {
			writeErr(w, http.StatusUnauthorized, "Authentication invalid")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *fakeBackend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct{ Name, Email, Password string }
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeErr(w, http.StatusBadRequest, "Please provide all values")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.users[req.Email]; ok {
		writeErr(w, http.StatusBadRequest, "Email already in use")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "hashing failed")
		return
	}
	u := &backendUser{id: uuid.NewString(), name: req.Name, email: req.Email, passwordHash: hash}
	b.users[req.Email] = u
	b.token = uuid.NewString()
	b.setSessionHeaders(w, u)
	w.WriteHeader(http.StatusCreated)
}

func (b *fakeBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct{ Email, Password string }
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "Please provide all values")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[req.Email]
	if !ok || bcrypt.CompareHashAndPassword(u.passwordHash, []byte(req.Password)) != nil {
		writeErr(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	b.token = uuid.NewString()
	b.setSessionHeaders(w, u)
	w.WriteHeader(http.StatusOK)
}

func (b *fakeBackend) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req struct{ Name, Email, Location string }
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.Email == "" {
		writeErr(w, http.StatusBadRequest, "Please provide all values")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	var u *backendUser
	for _, candidate := range b.users {
		u = candidate // single-user tests, any account is the session owner
		break
	}
	if u == nil {
		writeErr(w, http.StatusNotFound, "No such user")
		return
	}
	delete(b.users, u.email)
	u.name, u.email, u.location = req.Name, req.Email, req.Location
	b.users[u.email] = u
	b.token = uuid.NewString() // real backend reissues the token on update
	b.setSessionHeaders(w, u)
	w.WriteHeader(http.StatusOK)
}

func (b *fakeBackend) handleGetUser(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		rest.RenderJSON(w, map[string]any{"user": u.asUser()})
		return
	}
	writeErr(w, http.StatusNotFound, "No such user")
}

func (b *fakeBackend) handleGetJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	b.mu.Lock()
	b.jobsCalls = append(b.jobsCalls, q)
	matched := make([]store.Job, 0, len(b.jobs))
	for _, j := range b.jobs {
		if st := q.Get("status"); st != "" && st != store.FilterAll && string(j.Status) != st {
			continue
		}
		if jt := q.Get("jobType"); jt != "" && jt != store.FilterAll && string(j.JobType) != jt {
			continue
		}
		if search := q.Get("search"); search != "" && j.Position != search {
			continue
		}
		matched = append(matched, j)
	}
	b.mu.Unlock()

	limit := 10
	page := 1
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		page = p
	}
	numOfPages := (len(matched) + limit - 1) / limit
	if numOfPages < 1 {
		numOfPages = 1
	}
	from := (page - 1) * limit
	if from > len(matched) {
		from = len(matched)
	}
	to := from + limit
	if to > len(matched) {
		to = len(matched)
	}

	rest.RenderJSON(w, map[string]any{
		"result":     matched[from:to],
		"total":      len(matched),
		"numOfPages": numOfPages,
	})
}

func (b *fakeBackend) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req jobBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Position == "" || req.Company == "" {
		writeErr(w, http.StatusBadRequest, "Please provide all values")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.jobs = append(b.jobs, store.Job{ID: uuid.NewString(), Position: req.Position,
		Company: req.Company, Status: req.Status, JobType: req.JobType, CreatedAt: time.Now()})
	w.WriteHeader(http.StatusCreated)
}

func (b *fakeBackend) handleEditJob(w http.ResponseWriter, r *http.Request) {
	var req jobBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "Please provide all values")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, j := range b.jobs {
		if j.ID != r.PathValue("id") {
			continue
		}
		b.jobs[i].Position = req.Position
		b.jobs[i].Company = req.Company
		b.jobs[i].Status = req.Status
		b.jobs[i].JobType = req.JobType
		w.WriteHeader(http.StatusOK)
		return
	}
	writeErr(w, http.StatusNotFound, "No job with this id")
}

func (b *fakeBackend) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, j := range b.jobs {
		if j.ID != r.PathValue("id") {
			continue
		}
		b.jobs = append(b.jobs[:i], b.jobs[i+1:]...)
		w.WriteHeader(http.StatusOK)
		return
	}
	writeErr(w, http.StatusNotFound, "No job with this id")
}

func (b *fakeBackend) handleStats(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	stats := map[string]int{"pending": 0, "interview": 0, "declined": 0}
	monthly := map[[2]int]int{} // {year, month} -> count
	for _, j := range b.jobs {
		stats[string(j.Status)]++
		monthly[[2]int{j.CreatedAt.Year(), int(j.CreatedAt.Month())}]++
	}

	series := make([]store.MonthlyCount, 0, len(monthly))
	for key, count := range monthly {
		series = append(series, store.MonthlyCount{
			Month: time.Month(key[1]).String()[:3], Year: key[0], Count: count})
	}

	rest.RenderJSON(w, map[string]any{"statistics": stats, "monthlyApplications": series})
}

func (b *fakeBackend) setSessionHeaders(w http.ResponseWriter, u *backendUser) {
	blob, err := json.Marshal(u.asUser())
	if err != nil {
		panic(err)
	}
	w.Header().Set("user", string(blob))
	w.Header().Set("token", b.token)
}

func (u *backendUser) asUser() store.User {
	return store.User{ID: u.id, Name: u.name, Email: u.email, Location: u.location}
}

func writeErr(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"message": message}); err != nil {
		log.Printf("[WARN] failed to write error response: %v", err)
	}
}
