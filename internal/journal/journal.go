package journal

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Journal appends ledger entries outside of lifecycle transactions. A write
// failure here is logged and swallowed: losing a history row is acceptable,
// blocking or rolling back a committed stock mutation is not.
type Journal struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New constructs a Journal.
func New(pool *pgxpool.Pool, logger *slog.Logger) *Journal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Journal{pool: pool, logger: logger}
}

// Append inserts one ledger entry with event_time set to now when unset.
func (j *Journal) Append(ctx context.Context, entry Entry) {
	if j == nil || j.pool == nil {
		return
	}
	if entry.EventTime.IsZero() {
		entry.EventTime = time.Now().UTC()
	}
	_, err := j.pool.Exec(ctx,
		`INSERT INTO inventory_ledger_base (event_time, movement_type, barcode, product_name, location_code, qty, direction, reference)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		entry.EventTime, string(entry.MovementType), entry.Barcode, entry.ProductName,
		entry.LocationCode, entry.Qty, string(entry.Direction), entry.Reference)
	if err != nil {
		j.logger.Warn("ledger append failed",
			slog.String("movement_type", string(entry.MovementType)),
			slog.String("reference", entry.Reference),
			slog.Any("error", err))
	}
}
