package appointments

import (
	"errors"
	"fmt"
	"time"
)

// Status represents the lifecycle state of an appointment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusScheduled Status = "scheduled"
	StatusCanceled  Status = "canceled"
)

// Action is the intent a patient or admin submits through the booking form.
type Action string

const (
	ActionCreate   Action = "create"
	ActionSchedule Action = "schedule"
	ActionCancel   Action = "cancel"
)

var (
	// ErrUnknownAction indicates an action outside the closed enum.
	ErrUnknownAction = errors.New("appointments: unknown action")
	// ErrMissingAppointmentID indicates a schedule/cancel submission without a target.
	ErrMissingAppointmentID = errors.New("appointments: appointment id required for update")
	// ErrNotFound indicates the requested appointment does not exist.
	ErrNotFound = errors.New("appointments: appointment not found")
)

// ParseAction validates a wire-level action string.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionCreate, ActionSchedule, ActionCancel:
		return Action(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}

// DeriveStatus maps a submitted action to the status it persists.
// The mapping is total over the Action enum; any other value is an error.
func DeriveStatus(action Action) (Status, error) {
	switch action {
	case ActionCreate:
		return StatusPending, nil
	case ActionSchedule:
		return StatusScheduled, nil
	case ActionCancel:
		return StatusCanceled, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}

// Appointment is the persisted booking document. The store assigns the id
// and creation timestamp; status only moves through explicit actions.
type Appointment struct {
	ID                 string    `dynamodbav:"id" json:"id"`
	UserID             string    `dynamodbav:"userId" json:"userId"`
	PatientID          string    `dynamodbav:"patientId" json:"patientId"`
	PrimaryPhysician   string    `dynamodbav:"primaryPhysician" json:"primaryPhysician"`
	Schedule           time.Time `dynamodbav:"schedule" json:"schedule"`
	Reason             string    `dynamodbav:"reason" json:"reason"`
	Note               string    `dynamodbav:"note,omitempty" json:"note,omitempty"`
	Status             Status    `dynamodbav:"status" json:"status"`
	CancellationReason string    `dynamodbav:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`
	CreatedAt          string    `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt          string    `dynamodbav:"updatedAt" json:"updatedAt"`
}

// Submission carries one booking-form submission through the workflow.
type Submission struct {
	Action        Action `json:"action"`
	UserID        string `json:"userId"`
	PatientID     string `json:"patientId,omitempty"`
	AppointmentID string `json:"appointmentId,omitempty"`
	// TimeZone is the caller's IANA zone, used to localize notification text.
	TimeZone string `json:"timeZone,omitempty"`

	PrimaryPhysician   string    `json:"primaryPhysician,omitempty"`
	Schedule           time.Time `json:"schedule,omitempty"`
	Reason             string    `json:"reason,omitempty"`
	Note               string    `json:"note,omitempty"`
	CancellationReason string    `json:"cancellationReason,omitempty"`
}

// Update is the partial document written by schedule/cancel actions.
type Update struct {
	PrimaryPhysician   string
	Schedule           time.Time
	Status             Status
	CancellationReason string
}

// RecentList is the admin dashboard payload: newest first plus status counts.
type RecentList struct {
	TotalCount     int           `json:"totalCount"`
	ScheduledCount int           `json:"scheduledCount"`
	PendingCount   int           `json:"pendingCount"`
	CancelledCount int           `json:"cancelledCount"`
	Documents      []Appointment `json:"documents"`
}
