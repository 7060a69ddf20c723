package notify

import (
	"fmt"
	"time"
)

// dateTimeLayout mirrors the booking UI's short month, 12-hour format.
const dateTimeLayout = "Jan 2, 2006, 3:04 PM"

// AppointmentUpdate carries the fields of a schedule/cancel outcome that the
// dispatcher turns into a patient-facing message.
type AppointmentUpdate struct {
	// Action is "schedule" for confirmations; anything else renders the
	// cancellation template.
	Action             string
	UserID             string
	PrimaryPhysician   string
	Schedule           time.Time
	TimeZone           string
	CancellationReason string
}

// FormatDateTime renders a timestamp in the caller's IANA time zone.
// Unknown zones fall back to UTC rather than failing the notification.
func FormatDateTime(t time.Time, timeZone string) string {
	loc, err := time.LoadLocation(timeZone)
	if err != nil || timeZone == "" {
		loc = time.UTC
	}
	return t.In(loc).Format(dateTimeLayout)
}

// FormatMessage composes the SMS body for an appointment update. It is a pure
// function of its input: identical updates always produce identical text.
func FormatMessage(u AppointmentUpdate) string {
	dateTime := FormatDateTime(u.Schedule, u.TimeZone)
	if u.Action == "schedule" {
		return fmt.Sprintf("Greetings from CarePulse. Your appointment is confirmed for %s with Dr. %s.",
			dateTime, u.PrimaryPhysician)
	}
	return fmt.Sprintf("Greetings from CarePulse. We regret to inform that your appointment for %s is cancelled. Reason: %s.",
		dateTime, u.CancellationReason)
}
