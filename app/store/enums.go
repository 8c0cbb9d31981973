package store

import "fmt"

// FilterAll is the wildcard value accepted by the status and job-type filters
// in addition to their regular enum values.
const FilterAll = "all"

// JobStatus represents the application progress of a job.
type JobStatus string

// job status values
const (
	StatusPending   JobStatus = "pending"
	StatusInterview JobStatus = "interview"
	StatusDeclined  JobStatus = "declined"
)

// ParseJobStatus converts a string to JobStatus, rejecting unknown values.
func ParseJobStatus(s string) (JobStatus, error) {
	switch JobStatus(s) {
	case StatusPending, StatusInterview, StatusDeclined:
		return JobStatus(s), nil
	}
	return "", fmt.Errorf("invalid job status %q", s)
}

// JobType represents the employment type of a job.
type JobType string

// job type values
const (
	JobTypeFullTime   JobType = "full-time"
	JobTypePartTime   JobType = "part-time"
	JobTypeRemote     JobType = "remote"
	JobTypeInternship JobType = "internship"
)

// ParseJobType converts a string to JobType, rejecting unknown values.
func ParseJobType(s string) (JobType, error) {
	switch JobType(s) {
	case JobTypeFullTime, JobTypePartTime, JobTypeRemote, JobTypeInternship:
		return JobType(s), nil
	}
	return "", fmt.Errorf("invalid job type %q", s)
}

// SortMode represents the job list ordering.
type SortMode string

// sort modes
const (
	SortLatest SortMode = "latest"
	SortOldest SortMode = "oldest"
	SortAZ     SortMode = "a-z"
	SortZA     SortMode = "z-a"
)

// ParseSortMode converts a string to SortMode, rejecting unknown values.
func ParseSortMode(s string) (SortMode, error) {
	switch SortMode(s) {
	case SortLatest, SortOldest, SortAZ, SortZA:
		return SortMode(s), nil
	}
	return "", fmt.Errorf("invalid sort mode %q", s)
}

// AlertType is the severity of a transient alert.
type AlertType string

// alert severities
const (
	AlertSuccess AlertType = "success"
	AlertDanger  AlertType = "danger"
)

// parseFilterStatus accepts a JobStatus value or the "all" wildcard.
func parseFilterStatus(s string) (string, error) {
	if s == FilterAll {
		return s, nil
	}
	if _, err := ParseJobStatus(s); err != nil {
		return "", fmt.Errorf("invalid status filter %q", s)
	}
	return s, nil
}

// parseFilterJobType accepts a JobType value or the "all" wildcard.
func parseFilterJobType(s string) (string, error) {
	if s == FilterAll {
		return s, nil
	}
	if _, err := ParseJobType(s); err != nil {
		return "", fmt.Errorf("invalid job type filter %q", s)
	}
	return s, nil
}
