package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/carepulse/booking-api/internal/users"
	"github.com/carepulse/booking-api/pkg/logging"
)

type mockSMS struct {
	to   []string
	body []string
	err  error
}

func (m *mockSMS) SendSMS(ctx context.Context, to, body string) error {
	m.to = append(m.to, to)
	m.body = append(m.body, body)
	return m.err
}

type mockEmail struct {
	sent []EmailMessage
	err  error
}

func (m *mockEmail) Send(ctx context.Context, msg EmailMessage) error {
	m.sent = append(m.sent, msg)
	return m.err
}

type stubDirectory struct {
	user *users.User
	err  error
}

func (s *stubDirectory) Get(ctx context.Context, userID string) (*users.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func scheduleUpdate() AppointmentUpdate {
	return AppointmentUpdate{
		Action:           "schedule",
		UserID:           "user-1",
		PrimaryPhysician: "Green",
		Schedule:         time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC),
	}
}

func TestDispatcher_SendsSMSToOwner(t *testing.T) {
	sms := &mockSMS{}
	dir := &stubDirectory{user: &users.User{ID: "user-1", Phone: "+15551234567", Email: "jamie@example.com"}}
	d := NewDispatcher(sms, nil, dir, nil, logging.Default())

	if err := d.AppointmentUpdated(context.Background(), scheduleUpdate()); err != nil {
		t.Fatalf("AppointmentUpdated returned error: %v", err)
	}

	if len(sms.to) != 1 {
		t.Fatalf("expected 1 SMS, got %d", len(sms.to))
	}
	if sms.to[0] != "+15551234567" {
		t.Fatalf("expected owner's phone, got %s", sms.to[0])
	}
	if !strings.Contains(sms.body[0], "Dr. Green") {
		t.Fatalf("expected message to name the physician, got %s", sms.body[0])
	}
}

func TestDispatcher_UnknownRecipient(t *testing.T) {
	sms := &mockSMS{}
	d := NewDispatcher(sms, nil, &stubDirectory{err: users.ErrNotFound}, nil, logging.Default())

	err := d.AppointmentUpdated(context.Background(), scheduleUpdate())
	if err == nil {
		t.Fatal("expected error for unknown recipient")
	}
	if !errors.Is(err, users.ErrNotFound) {
		t.Fatalf("expected wrapped ErrNotFound, got %v", err)
	}
	if len(sms.to) != 0 {
		t.Fatal("no SMS may be sent without a recipient")
	}
}

func TestDispatcher_SMSFailureSurfaces(t *testing.T) {
	sms := &mockSMS{err: errors.New("gateway down")}
	email := &mockEmail{}
	dir := &stubDirectory{user: &users.User{ID: "user-1", Phone: "+15551234567", Email: "jamie@example.com"}}
	d := NewDispatcher(sms, email, dir, nil, logging.Default())

	if err := d.AppointmentUpdated(context.Background(), scheduleUpdate()); err == nil {
		t.Fatal("expected error from failed SMS")
	}
	if len(email.sent) != 0 {
		t.Fatal("email copy must not be sent when the primary channel fails")
	}
}

func TestDispatcher_EmailCopyIsBestEffort(t *testing.T) {
	sms := &mockSMS{}
	email := &mockEmail{err: errors.New("sendgrid down")}
	dir := &stubDirectory{user: &users.User{ID: "user-1", Phone: "+15551234567", Email: "jamie@example.com", Name: "Jamie"}}
	d := NewDispatcher(sms, email, dir, nil, logging.Default())

	if err := d.AppointmentUpdated(context.Background(), scheduleUpdate()); err != nil {
		t.Fatalf("email failure must not surface, got %v", err)
	}
	if len(email.sent) != 1 {
		t.Fatalf("expected 1 email attempt, got %d", len(email.sent))
	}
	if email.sent[0].To != "jamie@example.com" {
		t.Fatalf("unexpected email recipient: %s", email.sent[0].To)
	}
	if email.sent[0].Subject != "Your appointment is confirmed" {
		t.Fatalf("unexpected subject: %s", email.sent[0].Subject)
	}
}

func TestDispatcher_NoEmailWithoutAddress(t *testing.T) {
	sms := &mockSMS{}
	email := &mockEmail{}
	dir := &stubDirectory{user: &users.User{ID: "user-1", Phone: "+15551234567"}}
	d := NewDispatcher(sms, email, dir, nil, logging.Default())

	if err := d.AppointmentUpdated(context.Background(), scheduleUpdate()); err != nil {
		t.Fatalf("AppointmentUpdated returned error: %v", err)
	}
	if len(email.sent) != 0 {
		t.Fatal("no email expected for a user without an address")
	}
}

func TestDispatcher_CancellationSubject(t *testing.T) {
	sms := &mockSMS{}
	email := &mockEmail{}
	dir := &stubDirectory{user: &users.User{ID: "user-1", Phone: "+15551234567", Email: "jamie@example.com"}}
	d := NewDispatcher(sms, email, dir, nil, logging.Default())

	u := scheduleUpdate()
	u.Action = "cancel"
	u.CancellationReason = "Physician unavailable"

	if err := d.AppointmentUpdated(context.Background(), u); err != nil {
		t.Fatalf("AppointmentUpdated returned error: %v", err)
	}
	if !strings.Contains(sms.body[0], "Physician unavailable") {
		t.Fatalf("expected message to carry the reason, got %s", sms.body[0])
	}
	if email.sent[0].Subject != "Your appointment has been cancelled" {
		t.Fatalf("unexpected subject: %s", email.sent[0].Subject)
	}
}
