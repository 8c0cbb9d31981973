// Package store holds the application state tree and the pure reducer
// transforming it. All mutations go through Store.Dispatch; consumers read
// point-in-time snapshots via Store.State.
package store

import "time"

// User is the authenticated identity returned by the backend. Replaced
// wholesale on login/update, cleared on logout.
type User struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Location string `json:"location"`
}

// Job is a single tracked job application. The client never mutates list
// entries in place, the list is replaced by re-fetching after create/edit/delete.
type Job struct {
	ID        string    `json:"_id"`
	Position  string    `json:"position"`
	Company   string    `json:"company"`
	Status    JobStatus `json:"status"`
	JobType   JobType   `json:"jobType"`
	CreatedAt time.Time `json:"createdAt"`
}

// MonthlyCount is one point of the monthly applications series.
type MonthlyCount struct {
	Month string `json:"month"`
	Year  int    `json:"year"`
	Count int    `json:"count"`
}

// AppState is the single state tree. It is passed and stored by value;
// reductions replace slice and map fields wholesale and never mutate them
// in place, so a returned snapshot stays stable.
type AppState struct {
	// session
	User         *User
	Token        string
	UserLocation string

	// ui flags
	IsLoading   bool
	ShowAlert   bool
	AlertText   string
	AlertType   AlertType
	ShowSidebar bool

	// job draft
	IsEditing   bool
	EditJobID   string
	Position    string
	Company     string
	JobLocation string
	JobType     JobType
	Status      JobStatus

	// job list
	Jobs       []Job
	TotalJobs  int
	NumOfPages int
	Page       int

	// filtering, sorting, pagination
	Search          string
	FilterByStatus  string // JobStatus value or FilterAll
	FilterByJobType string // JobType value or FilterAll
	Sort            SortMode

	// statistics
	Statistics          map[JobStatus]int
	MonthlyApplications []MonthlyCount
}

// Default returns the initial state with no session.
func Default() AppState {
	return AppState{
		JobType:         JobTypeFullTime,
		Status:          StatusPending,
		NumOfPages:      1,
		Page:            1,
		FilterByStatus:  FilterAll,
		FilterByJobType: FilterAll,
		Sort:            SortLatest,
	}
}

// Initial returns the default state seeded with a previously persisted
// session. Empty token or nil user degrade to the logged-out default,
// session validity is atomic.
func Initial(user *User, token, location string) AppState {
	st := Default()
	if user == nil || token == "" {
		return st
	}
	st.User = user
	st.Token = token
	st.UserLocation = location
	st.JobLocation = location
	return st
}

// snapshot returns a copy safe to hand out, slice and map fields are cloned.
func (s AppState) snapshot() AppState {
	if s.Jobs != nil {
		jobs := make([]Job, len(s.Jobs))
		copy(jobs, s.Jobs)
		s.Jobs = jobs
	}
	if s.Statistics != nil {
		stats := make(map[JobStatus]int, len(s.Statistics))
		for k, v := range s.Statistics {
			stats[k] = v
		}
		s.Statistics = stats
	}
	if s.MonthlyApplications != nil {
		monthly := make([]MonthlyCount, len(s.MonthlyApplications))
		copy(monthly, s.MonthlyApplications)
		s.MonthlyApplications = monthly
	}
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
