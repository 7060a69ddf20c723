package notify

import (
	"context"
	"fmt"

	"github.com/carepulse/booking-api/internal/observability/metrics"
	"github.com/carepulse/booking-api/internal/users"
	"github.com/carepulse/booking-api/pkg/logging"
)

// UserDirectory resolves the notification recipient for an owning user id.
type UserDirectory interface {
	Get(ctx context.Context, userID string) (*users.User, error)
}

// Dispatcher composes a message from an appointment update and requests
// delivery on the owning user's registered channels. SMS is the primary
// channel; email is an optional confirmation copy.
type Dispatcher struct {
	sms     SMSSender
	email   EmailSender
	users   UserDirectory
	metrics *metrics.BookingMetrics
	logger  *logging.Logger
}

// NewDispatcher creates a notification dispatcher.
func NewDispatcher(sms SMSSender, email EmailSender, directory UserDirectory, m *metrics.BookingMetrics, logger *logging.Logger) *Dispatcher {
	if sms == nil {
		panic("notify: sms sender cannot be nil")
	}
	if directory == nil {
		panic("notify: user directory cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{
		sms:     sms,
		email:   email,
		users:   directory,
		metrics: m,
		logger:  logger,
	}
}

// AppointmentUpdated sends the schedule/cancel message to the owning user.
// The returned error is informational: callers log it and move on, the
// triggering update is already persisted.
func (d *Dispatcher) AppointmentUpdated(ctx context.Context, u AppointmentUpdate) error {
	body := FormatMessage(u)

	user, err := d.users.Get(ctx, u.UserID)
	if err != nil {
		d.metrics.ObserveNotification("sms", "recipient_error")
		return fmt.Errorf("notify: resolve recipient %s: %w", u.UserID, err)
	}

	if err := d.sms.SendSMS(ctx, user.Phone, body); err != nil {
		d.metrics.ObserveNotification("sms", "error")
		return fmt.Errorf("notify: send sms to user %s: %w", u.UserID, err)
	}
	d.metrics.ObserveNotification("sms", "ok")
	d.logger.Info("appointment notification sent",
		"user_id", u.UserID, "action", u.Action)

	// Email copy is strictly best-effort on top of an already best-effort
	// channel; its failure never bubbles past this method.
	if d.email != nil && user.Email != "" {
		msg := EmailMessage{
			To:      user.Email,
			ToName:  user.Name,
			Subject: emailSubject(u.Action),
			Body:    body,
		}
		if err := d.email.Send(ctx, msg); err != nil {
			d.metrics.ObserveNotification("email", "error")
			d.logger.Error("appointment email failed", "error", err, "user_id", u.UserID)
		} else {
			d.metrics.ObserveNotification("email", "ok")
		}
	}

	return nil
}

func emailSubject(action string) string {
	if action == "schedule" {
		return "Your appointment is confirmed"
	}
	return "Your appointment has been cancelled"
}
