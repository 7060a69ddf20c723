package adminfeed

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/carepulse/booking-api/internal/events"
	"github.com/carepulse/booking-api/internal/observability/metrics"
	"github.com/carepulse/booking-api/pkg/logging"
)

// Archiver persists consumed events for the audit trail.
type Archiver interface {
	RecordChange(ctx context.Context, evt events.AppointmentChangedV1) error
}

const (
	defaultReceiveMax  = 5
	defaultReceiveWait = 2 // seconds
	maxReceiveWait     = 20
)

// Worker drains appointment change events from the queue and refreshes the
// admin feed's backing audit trail. Failed messages stay on the queue and are
// retried after the SQS visibility timeout.
type Worker struct {
	queue    events.Queue
	archiver Archiver
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger

	receiveMax  int
	receiveWait int
	idleDelay   time.Duration
}

// Option configures the worker.
type Option func(*Worker)

// WithReceiveWaitSeconds sets the long-poll wait time for queue receives.
func WithReceiveWaitSeconds(seconds int) Option {
	return func(w *Worker) {
		if seconds < 0 {
			return
		}
		if seconds > maxReceiveWait {
			seconds = maxReceiveWait
		}
		w.receiveWait = seconds
	}
}

// WithReceiveBatchSize overrides how many messages each poll should return.
func WithReceiveBatchSize(size int) Option {
	return func(w *Worker) {
		if size > 0 && size <= 10 {
			w.receiveMax = size
		}
	}
}

// WithPollInterval sets how long the worker idles after an empty receive,
// on top of SQS long polling.
func WithPollInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.idleDelay = d
		}
	}
}

// NewWorker wires a queue consumer around the audit archiver.
func NewWorker(queue events.Queue, archiver Archiver, m *metrics.BookingMetrics, logger *logging.Logger, opts ...Option) *Worker {
	if queue == nil {
		panic("adminfeed: queue cannot be nil")
	}
	if archiver == nil {
		panic("adminfeed: archiver cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	w := &Worker{
		queue:       queue,
		archiver:    archiver,
		metrics:     m,
		logger:      logger,
		receiveMax:  defaultReceiveMax,
		receiveWait: defaultReceiveWait,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls the queue until ctx is canceled.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("admin feed worker started",
		"receive_max", w.receiveMax,
		"receive_wait_seconds", w.receiveWait,
		"idle_delay", w.idleDelay,
	)

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("admin feed worker stopping")
			return
		default:
		}

		messages, err := w.queue.Receive(ctx, w.receiveMax, w.receiveWait)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			w.logger.Error("failed to receive appointment events", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 5*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if len(messages) == 0 {
			if w.idleDelay > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(w.idleDelay):
				}
			}
			continue
		}

		for _, msg := range messages {
			w.handleMessage(ctx, msg)
		}
	}
}

func (w *Worker) handleMessage(ctx context.Context, msg events.Message) {
	var evt events.AppointmentChangedV1
	if err := json.Unmarshal([]byte(msg.Body), &evt); err != nil {
		// Malformed payloads will never succeed; drop them.
		w.logger.Error("failed to decode appointment event", "error", err, "message_id", msg.ID)
		w.metrics.ObserveEvent("consumed", "decode_error")
		w.deleteMessage(msg)
		return
	}

	if err := w.archiver.RecordChange(ctx, evt); err != nil {
		w.logger.Error("failed to archive appointment event",
			"error", err,
			"event_id", evt.EventID,
			"appointment_id", evt.AppointmentID,
		)
		w.metrics.ObserveEvent("consumed", "error")
		return
	}

	w.metrics.ObserveEvent("consumed", "ok")
	w.logger.Info("appointment event consumed",
		"event_id", evt.EventID,
		"appointment_id", evt.AppointmentID,
		"action", evt.Action,
		"status", evt.Status,
	)
	w.deleteMessage(msg)
}

func (w *Worker) deleteMessage(msg events.Message) {
	deleteCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.queue.Delete(deleteCtx, msg.ReceiptHandle); err != nil {
		w.logger.Error("failed to delete appointment event", "error", err, "message_id", msg.ID)
	}
}
