package shared

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditLog represents a record stored in audit_logs.
type AuditLog struct {
	Actor      string
	Action     string
	Resource   string
	ResourceID string
	Details    map[string]any
	IP         string
	UserAgent  string
	At         time.Time
}

// AuditLogger writes records into audit_logs. Failures are the caller's
// problem to swallow; audit is a best-effort sink.
type AuditLogger struct {
	pool *pgxpool.Pool
}

// NewAuditLogger returns a new AuditLogger.
func NewAuditLogger(pool *pgxpool.Pool) *AuditLogger {
	return &AuditLogger{pool: pool}
}

// Record persists the log entry.
func (l *AuditLogger) Record(ctx context.Context, log AuditLog) error {
	if l == nil {
		return errors.New("audit logger not initialised")
	}
	if log.Action == "" || log.Resource == "" || log.ResourceID == "" {
		return errors.New("audit log requires action/resource/resource_id")
	}
	detailsJSON, err := json.Marshal(log.Details)
	if err != nil {
		return err
	}
	at := log.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err = l.pool.Exec(ctx, `INSERT INTO audit_logs (id, actor, action, resource, resource_id, details, ip, user_agent, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.NewString(), log.Actor, log.Action, log.Resource, log.ResourceID, detailsJSON, log.IP, log.UserAgent, at)
	return err
}
