package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/carepulse/booking-api/pkg/logging"
)

type stubQueue struct {
	sent    []string
	sendErr error
	deleted []string
}

func (s *stubQueue) Send(ctx context.Context, body string) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, body)
	return nil
}

func (s *stubQueue) Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]Message, error) {
	return nil, context.Canceled
}

func (s *stubQueue) Delete(ctx context.Context, receiptHandle string) error {
	s.deleted = append(s.deleted, receiptHandle)
	return nil
}

func TestPublisher_AppointmentChangedFillsDefaults(t *testing.T) {
	queue := &stubQueue{}
	publisher := NewPublisher(queue, logging.Default())

	err := publisher.AppointmentChanged(context.Background(), AppointmentChangedV1{
		AppointmentID: "appt-1",
		UserID:        "user-1",
		Action:        "schedule",
		Status:        "scheduled",
	})
	if err != nil {
		t.Fatalf("AppointmentChanged returned error: %v", err)
	}

	if len(queue.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(queue.sent))
	}

	var evt AppointmentChangedV1
	if err := json.Unmarshal([]byte(queue.sent[0]), &evt); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if evt.EventID == "" {
		t.Fatal("expected event id to be assigned")
	}
	if evt.OccurredAt.IsZero() {
		t.Fatal("expected timestamp to be assigned")
	}
	if evt.AppointmentID != "appt-1" || evt.Action != "schedule" || evt.Status != "scheduled" {
		t.Fatalf("unexpected event: %+v", evt)
	}
}

func TestPublisher_AppointmentChangedRequiresAppointmentID(t *testing.T) {
	publisher := NewPublisher(&stubQueue{}, logging.Default())

	if err := publisher.AppointmentChanged(context.Background(), AppointmentChangedV1{}); err == nil {
		t.Fatal("expected error for missing appointment id")
	}
}

func TestPublisher_AppointmentChangedSurfacesQueueError(t *testing.T) {
	publisher := NewPublisher(&stubQueue{sendErr: errors.New("queue unreachable")}, logging.Default())

	err := publisher.AppointmentChanged(context.Background(), AppointmentChangedV1{AppointmentID: "appt-1"})
	if err == nil {
		t.Fatal("expected error from failed send")
	}
}
