// Package notify publishes best-effort event summaries to the background
// queue. Delivery is never allowed to fail a stock operation.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the queue name for notification jobs.
	QueueDefault = "default"
	// TaskTypeEvent is the asynq task type for event notifications.
	TaskTypeEvent = "notify:event"
)

// Event is a summary of a completed inventory operation.
type Event struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Resource   string    `json:"resource"`
	ResourceID int64     `json:"resource_id"`
	Message    string    `json:"message"`
	At         time.Time `json:"at"`
}

// Event kinds emitted by the lifecycle services.
const (
	KindDispatchCreated = "dispatch.created"
	KindDispatchDeleted = "dispatch.deleted"
	KindStatusChanged   = "status.changed"
	KindDamageReported  = "damage.reported"
	KindStockRecovered  = "stock.recovered"
	KindTransferCreated = "transfer.created"
)

// Notifier publishes events.
type Notifier interface {
	Notify(ctx context.Context, evt Event)
}

// NewEventTask constructs an asynq task for an event.
func NewEventTask(evt Event) (*asynq.Task, error) {
	data, err := json.Marshal(evt)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeEvent, data), nil
}

// Queue publishes events through asynq.
type Queue struct {
	client *asynq.Client
	logger *slog.Logger
}

// NewQueue constructs a queue-backed notifier.
func NewQueue(redisOpts asynq.RedisClientOpt, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{client: asynq.NewClient(redisOpts), logger: logger}
}

// Notify enqueues the event. Failures are logged and swallowed.
func (q *Queue) Notify(ctx context.Context, evt Event) {
	if q == nil || q.client == nil {
		return
	}
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}
	task, err := NewEventTask(evt)
	if err != nil {
		q.logger.Warn("notify marshal failed", slog.Any("error", err))
		return
	}
	if _, err := q.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault)); err != nil {
		q.logger.Warn("notify enqueue failed",
			slog.String("kind", evt.Kind),
			slog.Any("error", err))
	}
}

// Close releases client resources.
func (q *Queue) Close() error {
	if q == nil || q.client == nil {
		return nil
	}
	return q.client.Close()
}

// Nop discards all events.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(context.Context, Event) {}
