package events

import "time"

// AppointmentChangedV1 announces a persisted appointment write so downstream
// views (the admin feed, the audit trail) can refresh without polling the
// document store.
type AppointmentChangedV1 struct {
	EventID       string    `json:"eventId"`
	AppointmentID string    `json:"appointmentId"`
	UserID        string    `json:"userId"`
	PatientID     string    `json:"patientId,omitempty"`
	Action        string    `json:"action"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// EventType identifies the versioned payload on the wire.
func (AppointmentChangedV1) EventType() string { return "appointment.changed.v1" }
