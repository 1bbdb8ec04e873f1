package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/wareline/wareline/internal/notify"
	"github.com/wareline/wareline/internal/shared"
)

// EventJob consumes queued notification events: each event is logged and
// mirrored into the audit sink for operators to query later.
type EventJob struct {
	audit  *shared.AuditLogger
	logger *slog.Logger
}

// NewEventJob constructs an EventJob.
func NewEventJob(audit *shared.AuditLogger, logger *slog.Logger) *EventJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventJob{audit: audit, logger: logger}
}

// Handle processes one notify:event task.
func (j *EventJob) Handle(ctx context.Context, task *asynq.Task) error {
	var evt notify.Event
	if err := json.Unmarshal(task.Payload(), &evt); err != nil {
		j.logger.Error("notify event payload malformed", slog.Any("error", err))
		// malformed payloads never succeed on retry
		return nil
	}

	j.logger.Info("event",
		slog.String("id", evt.ID),
		slog.String("kind", evt.Kind),
		slog.String("resource", evt.Resource),
		slog.Int64("resource_id", evt.ResourceID),
		slog.String("message", evt.Message))

	if j.audit != nil {
		if err := j.audit.Record(ctx, shared.AuditLog{
			Action:     "event:" + evt.Kind,
			Resource:   evt.Resource,
			ResourceID: evt.ID,
			Details: map[string]any{
				"resource_id": evt.ResourceID,
				"message":     evt.Message,
			},
			At: evt.At,
		}); err != nil {
			return err
		}
	}
	return nil
}
