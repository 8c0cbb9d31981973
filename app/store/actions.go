package store

// ActionType tags a reduction. Every dispatched Action carries exactly one tag
// and the reducer maps each tag to a fixed partial update of the state tree.
type ActionType string

// action tags
const (
	ActionDisplayAlert  ActionType = "DISPLAY_ALERT"
	ActionHideAlert     ActionType = "HIDE_ALERT"
	ActionToggleSidebar ActionType = "TOGGLE_SIDEBAR"
	ActionHandleChange  ActionType = "HANDLE_CHANGE"
	ActionClearValues   ActionType = "CLEAR_VALUES"
	ActionSetEditJob    ActionType = "SET_EDIT_JOB"
	ActionClearFilters  ActionType = "CLEAR_FILTERS"
	ActionChangePage    ActionType = "CHANGE_PAGE"

	ActionSetupUserBegin   ActionType = "SETUP_USER_BEGIN"
	ActionSetupUserSuccess ActionType = "SETUP_USER_SUCCESS"
	ActionSetupUserError   ActionType = "SETUP_USER_ERROR"

	ActionUpdateUserBegin   ActionType = "UPDATE_USER_BEGIN"
	ActionUpdateUserSuccess ActionType = "UPDATE_USER_SUCCESS"
	ActionUpdateUserError   ActionType = "UPDATE_USER_ERROR"

	ActionLogoutUser ActionType = "LOGOUT_USER"

	ActionCreateJobBegin   ActionType = "CREATE_JOB_BEGIN"
	ActionCreateJobSuccess ActionType = "CREATE_JOB_SUCCESS"
	ActionCreateJobError   ActionType = "CREATE_JOB_ERROR"

	ActionEditJobBegin   ActionType = "EDIT_JOB_BEGIN"
	ActionEditJobSuccess ActionType = "EDIT_JOB_SUCCESS"
	ActionEditJobError   ActionType = "EDIT_JOB_ERROR"

	ActionDeleteJobBegin ActionType = "DELETE_JOB_BEGIN"

	ActionGetJobsBegin   ActionType = "GET_JOBS_BEGIN"
	ActionGetJobsSuccess ActionType = "GET_JOBS_SUCCESS"

	ActionShowStatsBegin   ActionType = "SHOW_STATS_BEGIN"
	ActionShowStatsSuccess ActionType = "SHOW_STATS_SUCCESS"
)

// SessionPayload carries the authenticated identity for session-changing
// success actions.
type SessionPayload struct {
	User     *User
	Token    string
	Location string
}

// JobsPayload carries a fetched page of the job list.
type JobsPayload struct {
	Jobs       []Job
	TotalJobs  int
	NumOfPages int
}

// StatsPayload carries fetched aggregated statistics.
type StatsPayload struct {
	Statistics map[JobStatus]int
	Monthly    []MonthlyCount
}

// Action is a reduction request. Type is always set, the payload fields are
// populated per tag: Msg carries alert or error text, Session / Jobs / Stats
// the corresponding success payloads, Field+Value a form-field write, Page a
// pagination change and JobID an edit target.
type Action struct {
	Type      ActionType
	Msg       string
	AlertType AlertType
	Session   *SessionPayload
	Jobs      *JobsPayload
	Stats     *StatsPayload
	Field     string
	Value     string
	Page      int
	JobID     string
}
