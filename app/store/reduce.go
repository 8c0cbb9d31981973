package store

import "fmt"

// reduce is the pure reduction function: no I/O, no mutation of the input,
// each tag touches only its own named fields. Unknown tags are a programming
// error and panic.
func reduce(s AppState, a Action) AppState {
	switch a.Type {
	case ActionDisplayAlert:
		s.ShowAlert = true
		s.AlertText = a.Msg
		s.AlertType = a.AlertType
		if s.AlertType == "" {
			s.AlertType = AlertDanger
		}
		return s

	case ActionHideAlert:
		s.ShowAlert = false
		s.AlertText = ""
		s.AlertType = ""
		return s

	case ActionToggleSidebar:
		s.ShowSidebar = !s.ShowSidebar
		return s

	case ActionHandleChange:
		res, ok := applyField(s, a.Field, a.Value)
		if !ok { // unknown field or invalid enum value, leave state untouched
			return s
		}
		return res

	case ActionClearValues:
		s.IsEditing = false
		s.EditJobID = ""
		s.Position = ""
		s.Company = ""
		s.JobLocation = s.UserLocation
		s.JobType = JobTypeFullTime
		s.Status = StatusPending
		return s

	case ActionSetEditJob:
		for _, job := range s.Jobs {
			if job.ID != a.JobID {
				continue
			}
			s.IsEditing = true
			s.EditJobID = job.ID
			s.Position = job.Position
			s.Company = job.Company
			s.JobType = job.JobType
			s.Status = job.Status
			return s
		}
		return s // target job not in current list, nothing to edit

	case ActionClearFilters:
		s.Search = ""
		s.FilterByStatus = FilterAll
		s.FilterByJobType = FilterAll
		s.Sort = SortLatest
		return s

	case ActionChangePage:
		if a.Page >= 1 && a.Page <= s.NumOfPages {
			s.Page = a.Page
		}
		return s

	case ActionSetupUserBegin, ActionUpdateUserBegin:
		s.IsLoading = true
		return s

	case ActionSetupUserSuccess, ActionUpdateUserSuccess:
		s.IsLoading = false
		s.User = a.Session.User
		s.Token = a.Session.Token
		s.UserLocation = a.Session.Location
		s.JobLocation = a.Session.Location
		s.ShowAlert = true
		s.AlertType = AlertSuccess
		s.AlertText = a.Msg
		return s

	case ActionSetupUserError, ActionUpdateUserError,
		ActionCreateJobError, ActionEditJobError:
		s.IsLoading = false
		s.ShowAlert = true
		s.AlertType = AlertDanger
		s.AlertText = a.Msg
		return s

	case ActionLogoutUser:
		// full reset, nothing from the previous session may survive
		return Default()

	case ActionCreateJobBegin, ActionEditJobBegin, ActionDeleteJobBegin:
		s.IsLoading = true
		return s

	case ActionCreateJobSuccess:
		s.IsLoading = false
		s.ShowAlert = true
		s.AlertType = AlertSuccess
		s.AlertText = a.Msg
		return s

	case ActionEditJobSuccess:
		s.IsLoading = false
		s.ShowAlert = true
		s.AlertType = AlertSuccess
		s.AlertText = a.Msg
		return s

	case ActionGetJobsBegin, ActionShowStatsBegin:
		s.IsLoading = true
		s.ShowAlert = false
		return s

	case ActionGetJobsSuccess:
		s.IsLoading = false
		s.Jobs = a.Jobs.Jobs
		s.TotalJobs = a.Jobs.TotalJobs
		s.NumOfPages = a.Jobs.NumOfPages
		if s.NumOfPages < 1 {
			s.NumOfPages = 1
		}
		if s.Page > s.NumOfPages { // filters may have shrunk the list
			s.Page = s.NumOfPages
		}
		return s

	case ActionShowStatsSuccess:
		s.IsLoading = false
		s.Statistics = a.Stats.Statistics
		s.MonthlyApplications = a.Stats.Monthly
		return s
	}

	panic(fmt.Sprintf("unknown action type %q", a.Type))
}

// applyField writes a single named form field. Unknown names and invalid enum
// values are rejected, the second return reports whether the write happened.
func applyField(s AppState, field, value string) (AppState, bool) {
	switch field {
	case "position":
		s.Position = value
	case "company":
		s.Company = value
	case "jobLocation":
		s.JobLocation = value
	case "search":
		s.Search = value
	case "jobType":
		v, err := ParseJobType(value)
		if err != nil {
			return s, false
		}
		s.JobType = v
	case "status":
		v, err := ParseJobStatus(value)
		if err != nil {
			return s, false
		}
		s.Status = v
	case "filterByStatus":
		v, err := parseFilterStatus(value)
		if err != nil {
			return s, false
		}
		s.FilterByStatus = v
	case "filterByJobType":
		v, err := parseFilterJobType(value)
		if err != nil {
			return s, false
		}
		s.FilterByJobType = v
	case "sort":
		v, err := ParseSortMode(value)
		if err != nil {
			return s, false
		}
		s.Sort = v
	default:
		return s, false
	}
	return s, true
}
