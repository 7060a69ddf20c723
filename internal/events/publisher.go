package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carepulse/booking-api/pkg/logging"
)

// Publisher emits appointment change events onto the queue.
type Publisher struct {
	queue  Queue
	logger *logging.Logger
}

// NewPublisher creates a queue-backed publisher.
func NewPublisher(queue Queue, logger *logging.Logger) *Publisher {
	if queue == nil {
		panic("events: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{
		queue:  queue,
		logger: logger,
	}
}

// AppointmentChanged publishes an AppointmentChangedV1 event, filling in the
// event id and timestamp when the caller left them zero.
func (p *Publisher) AppointmentChanged(ctx context.Context, evt AppointmentChangedV1) error {
	if evt.AppointmentID == "" {
		return fmt.Errorf("events: appointment id required")
	}
	if evt.EventID == "" {
		evt.EventID = uuid.NewString()
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}

	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("events: failed to marshal event: %w", err)
	}
	if err := p.queue.Send(ctx, string(body)); err != nil {
		return err
	}

	p.logger.Debug("appointment event published",
		"event_id", evt.EventID, "appointment_id", evt.AppointmentID, "action", evt.Action)
	return nil
}
