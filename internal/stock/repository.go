package stock

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const batchColumns = `id, barcode, warehouse, product_name, qty_available, status, created_at, batch_ref, source_type`

// RecentBatchLimit caps how many batches restoration considers.
const RecentBatchLimit = 10

// Repository reads batch state outside of lifecycle transactions.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// AvailableQty sums qty_available over active batches for a barcode across
// all warehouses.
func (r *Repository) AvailableQty(ctx context.Context, barcode string) (int64, error) {
	if r == nil {
		return 0, errors.New("stock repository not initialised")
	}
	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(qty_available), 0) FROM stock_batches WHERE barcode=$1 AND status='active'`,
		barcode).Scan(&total)
	return total, err
}

// ListBatches returns all batches for a barcode at a warehouse, oldest first.
func (r *Repository) ListBatches(ctx context.Context, barcode, warehouse string) ([]Batch, error) {
	if r == nil {
		return nil, errors.New("stock repository not initialised")
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+batchColumns+` FROM stock_batches WHERE barcode=$1 AND warehouse=$2 ORDER BY created_at ASC, id ASC`,
		barcode, warehouse)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBatches(rows)
}

// ActiveBatchesForUpdate locks and returns active batches oldest-first for
// FIFO deduction inside the caller's transaction.
func ActiveBatchesForUpdate(ctx context.Context, tx pgx.Tx, barcode, warehouse string) ([]Batch, error) {
	rows, err := tx.Query(ctx,
		`SELECT `+batchColumns+` FROM stock_batches
WHERE barcode=$1 AND warehouse=$2 AND status='active'
ORDER BY created_at ASC, id ASC
FOR UPDATE`,
		barcode, warehouse)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBatches(rows)
}

// RecentBatchesForUpdate locks and returns the most recently created batches
// regardless of status, newest first, for restoration.
func RecentBatchesForUpdate(ctx context.Context, tx pgx.Tx, barcode, warehouse string) ([]Batch, error) {
	rows, err := tx.Query(ctx,
		`SELECT `+batchColumns+` FROM stock_batches
WHERE barcode=$1 AND warehouse=$2
ORDER BY created_at DESC, id DESC
LIMIT $3
FOR UPDATE`,
		barcode, warehouse, RecentBatchLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBatches(rows)
}

// ApplyUpdates persists planned quantity/status mutations.
func ApplyUpdates(ctx context.Context, tx pgx.Tx, updates []BatchUpdate) error {
	for _, u := range updates {
		tag, err := tx.Exec(ctx,
			`UPDATE stock_batches SET qty_available=$1, status=$2 WHERE id=$3`,
			u.QtyAvailable, string(u.Status), u.ID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errors.New("stock: batch row vanished during update")
		}
	}
	return nil
}

// InsertBatch creates a new batch row and returns its id.
func InsertBatch(ctx context.Context, tx pgx.Tx, b Batch) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx,
		`INSERT INTO stock_batches (barcode, warehouse, product_name, qty_available, status, created_at, batch_ref, source_type)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`,
		b.Barcode, b.Warehouse, b.ProductName, b.QtyAvailable, string(b.Status), b.CreatedAt, b.BatchRef, b.SourceType).Scan(&id)
	return id, err
}

func scanBatches(rows pgx.Rows) ([]Batch, error) {
	var batches []Batch
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.ID, &b.Barcode, &b.Warehouse, &b.ProductName, &b.QtyAvailable, &b.Status, &b.CreatedAt, &b.BatchRef, &b.SourceType); err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return batches, nil
}
