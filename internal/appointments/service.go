package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/carepulse/booking-api/internal/events"
	"github.com/carepulse/booking-api/internal/notify"
	"github.com/carepulse/booking-api/internal/observability/metrics"
	"github.com/carepulse/booking-api/internal/patients"
	"github.com/carepulse/booking-api/pkg/logging"
)

// Storage is the document-store surface the workflow needs.
type Storage interface {
	Create(ctx context.Context, appt *Appointment) (*Appointment, error)
	Update(ctx context.Context, id string, upd Update) (*Appointment, error)
}

// PatientResolver verifies that a patient exists before a booking is created.
type PatientResolver interface {
	GetByID(ctx context.Context, patientID string) (*patients.Patient, error)
}

// Notifier delivers the post-update message to the owning user.
type Notifier interface {
	AppointmentUpdated(ctx context.Context, u notify.AppointmentUpdate) error
}

// EventPublisher announces persisted writes to the admin feed.
type EventPublisher interface {
	AppointmentChanged(ctx context.Context, evt events.AppointmentChangedV1) error
}

// Service orchestrates the appointment workflow: derive the status for the
// submitted action, persist exactly one write, then fire the best-effort
// side effects (notification on updates, change event on every write).
type Service struct {
	store     Storage
	patients  PatientResolver
	notifier  Notifier
	publisher EventPublisher
	metrics   *metrics.BookingMetrics
	logger    *logging.Logger
}

// NewService creates the workflow service. The publisher may be nil when no
// event queue is configured; store, patients and notifier are mandatory.
func NewService(store Storage, resolver PatientResolver, notifier Notifier, publisher EventPublisher, m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if store == nil {
		panic("appointments: storage cannot be nil")
	}
	if resolver == nil {
		panic("appointments: patient resolver cannot be nil")
	}
	if notifier == nil {
		panic("appointments: notifier cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:     store,
		patients:  resolver,
		notifier:  notifier,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// Submit runs one booking-form submission through the workflow and returns
// the persisted appointment. Errors are typed for the caller; the HTTP layer
// decides how much of that detail reaches the user.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Appointment, error) {
	status, err := DeriveStatus(sub.Action)
	if err != nil {
		s.metrics.ObserveSubmission(string(sub.Action), "invalid_action")
		return nil, err
	}

	if sub.Action == ActionCreate {
		return s.create(ctx, sub, status)
	}
	return s.update(ctx, sub, status)
}

func (s *Service) create(ctx context.Context, sub Submission, status Status) (*Appointment, error) {
	if sub.PatientID == "" {
		s.metrics.ObserveSubmission(string(sub.Action), "precondition")
		return nil, fmt.Errorf("%w: patient id required for create", patients.ErrNotFound)
	}

	// The patient must resolve before anything is written; absence aborts
	// the whole submission with zero persistence calls.
	patient, err := s.patients.GetByID(ctx, sub.PatientID)
	if err != nil {
		if errors.Is(err, patients.ErrNotFound) {
			s.metrics.ObserveSubmission(string(sub.Action), "patient_not_found")
			s.logger.Warn("create aborted, no patient found", "patient_id", sub.PatientID)
			return nil, err
		}
		s.metrics.ObserveSubmission(string(sub.Action), "error")
		return nil, fmt.Errorf("appointments: resolve patient %s: %w", sub.PatientID, err)
	}

	created, err := s.store.Create(ctx, &Appointment{
		UserID:           sub.UserID,
		PatientID:        patient.ID,
		PrimaryPhysician: sub.PrimaryPhysician,
		Schedule:         sub.Schedule,
		Reason:           sub.Reason,
		Note:             sub.Note,
		Status:           status,
	})
	if err != nil {
		s.metrics.ObserveSubmission(string(sub.Action), "error")
		s.logger.Error("failed to create appointment", "error", err, "patient_id", patient.ID)
		return nil, err
	}

	s.metrics.ObserveSubmission(string(sub.Action), "success")
	s.logger.Info("appointment created",
		"appointment_id", created.ID, "patient_id", created.PatientID, "status", created.Status)

	s.publishChange(ctx, created, sub.Action)
	return created, nil
}

func (s *Service) update(ctx context.Context, sub Submission, status Status) (*Appointment, error) {
	if sub.AppointmentID == "" {
		s.metrics.ObserveSubmission(string(sub.Action), "precondition")
		return nil, ErrMissingAppointmentID
	}

	updated, err := s.store.Update(ctx, sub.AppointmentID, Update{
		PrimaryPhysician:   sub.PrimaryPhysician,
		Schedule:           sub.Schedule,
		Status:             status,
		CancellationReason: sub.CancellationReason,
	})
	if err != nil {
		s.metrics.ObserveSubmission(string(sub.Action), "error")
		s.logger.Error("failed to update appointment",
			"error", err, "appointment_id", sub.AppointmentID, "action", sub.Action)
		return nil, err
	}

	s.metrics.ObserveSubmission(string(sub.Action), "success")
	s.logger.Info("appointment updated",
		"appointment_id", updated.ID, "status", updated.Status)

	// The dispatch attempt is mandatory on every successful update, but its
	// outcome never changes the result of the update itself.
	if err := s.notifier.AppointmentUpdated(ctx, notify.AppointmentUpdate{
		Action:             string(sub.Action),
		UserID:             sub.UserID,
		PrimaryPhysician:   updated.PrimaryPhysician,
		Schedule:           updated.Schedule,
		TimeZone:           sub.TimeZone,
		CancellationReason: updated.CancellationReason,
	}); err != nil {
		s.logger.Error("appointment notification failed",
			"error", err, "appointment_id", updated.ID, "action", sub.Action)
	}

	s.publishChange(ctx, updated, sub.Action)
	return updated, nil
}

// publishChange emits the admin-feed event; failures are logged, never returned.
func (s *Service) publishChange(ctx context.Context, appt *Appointment, action Action) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.AppointmentChanged(ctx, events.AppointmentChangedV1{
		AppointmentID: appt.ID,
		UserID:        appt.UserID,
		PatientID:     appt.PatientID,
		Action:        string(action),
		Status:        string(appt.Status),
	})
	if err != nil {
		s.metrics.ObserveEvent("published", "error")
		s.logger.Error("failed to publish appointment event",
			"error", err, "appointment_id", appt.ID)
		return
	}
	s.metrics.ObserveEvent("published", "ok")
}
