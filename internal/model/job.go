package model

import "time"

type JobStatus string

const (
	JobStatusScheduled  JobStatus = "scheduled"
	JobStatusEnRoute    JobStatus = "en_route"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
	JobStatusNoShow     JobStatus = "no_show"
)

// OccupiesCalendar reports whether a job in this status blocks new bookings.
// Completed, cancelled and no-show jobs free their time.
func (s JobStatus) OccupiesCalendar() bool {
	switch s {
	case JobStatusScheduled, JobStatusEnRoute, JobStatusInProgress:
		return true
	default:
		return false
	}
}

// Job is a detailing appointment. Scheduled times come from booking; actual
// times are recorded by the crew from the field and may spill past the
// scheduled window.
type Job struct {
	ID            string
	OrgID         string
	ServiceID     string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	VehicleDesc   string
	Status        JobStatus
	ScheduledAt   time.Time
	ActualStartAt *time.Time
	ActualEndAt   *time.Time

	// ServiceDurationMins is joined from the service record; 0 when the
	// service reference is missing.
	ServiceDurationMins int

	CancelledAt  *time.Time
	CancelReason string
	CreatedAt    time.Time
}
