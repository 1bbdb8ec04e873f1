package damage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wareline/wareline/internal/platform/db"
	"github.com/wareline/wareline/internal/stock"
)

const logColumns = `id, product_type, barcode, inventory_location, action_type, quantity, created_at`

// Repository persists damage and recovery logs in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the transactional operations the damage service
// composes with stock mutations.
type TxRepository interface {
	InsertLog(ctx context.Context, log Log) (int64, error)

	ActiveBatches(ctx context.Context, barcode, warehouse string) ([]stock.Batch, error)
	RecentBatches(ctx context.Context, barcode, warehouse string) ([]stock.Batch, error)
	ApplyBatchUpdates(ctx context.Context, updates []stock.BatchUpdate) error
	InsertBatch(ctx context.Context, b stock.Batch) (int64, error)
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("damage repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// GetByID loads one damage_recovery_log row.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Log, error) {
	if r == nil {
		return nil, errors.New("damage repository not initialised")
	}
	var l Log
	err := r.pool.QueryRow(ctx, `SELECT `+logColumns+` FROM damage_recovery_log WHERE id=$1`, id).
		Scan(&l.ID, &l.ProductType, &l.Barcode, &l.InventoryLocation, &l.ActionType, &l.Quantity, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

// List returns log rows newest-first, optionally filtered by barcode.
func (r *Repository) List(ctx context.Context, barcode string, limit, offset int) ([]Log, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+logColumns+` FROM damage_recovery_log
		WHERE ($1 = '' OR barcode = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		barcode, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []Log{}
	for rows.Next() {
		var l Log
		if err := rows.Scan(&l.ID, &l.ProductType, &l.Barcode, &l.InventoryLocation, &l.ActionType, &l.Quantity, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (t *txRepository) InsertLog(ctx context.Context, log Log) (int64, error) {
	return InsertLog(ctx, t.tx, log)
}

func (t *txRepository) ActiveBatches(ctx context.Context, barcode, warehouse string) ([]stock.Batch, error) {
	return stock.ActiveBatchesForUpdate(ctx, t.tx, barcode, warehouse)
}

func (t *txRepository) RecentBatches(ctx context.Context, barcode, warehouse string) ([]stock.Batch, error) {
	return stock.RecentBatchesForUpdate(ctx, t.tx, barcode, warehouse)
}

func (t *txRepository) ApplyBatchUpdates(ctx context.Context, updates []stock.BatchUpdate) error {
	return stock.ApplyUpdates(ctx, t.tx, updates)
}

func (t *txRepository) InsertBatch(ctx context.Context, b stock.Batch) (int64, error) {
	return stock.InsertBatch(ctx, t.tx, b)
}
