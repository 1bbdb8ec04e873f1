package transfer

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wareline/wareline/internal/platform/db"
	"github.com/wareline/wareline/internal/stock"
)

const transferColumns = `id, created_at, barcode, product_name, qty, from_warehouse, to_warehouse, status, remarks`

// Repository persists self-transfer records in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the transactional operations the transfer service
// composes into one atomic unit.
type TxRepository interface {
	InsertTransfer(ctx context.Context, t Transfer) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error

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
		return errors.New("transfer repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// GetByID loads one self-transfer record.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Transfer, error) {
	if r == nil {
		return nil, errors.New("transfer repository not initialised")
	}
	row := r.pool.QueryRow(ctx, `SELECT `+transferColumns+` FROM warehouse_self_transfer WHERE id=$1`, id)
	t, err := scanTransfer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// List returns self-transfer records newest-first.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]Transfer, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+transferColumns+` FROM warehouse_self_transfer ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transfers := []Transfer{}
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, *t)
	}
	return transfers, rows.Err()
}

func (t *txRepository) InsertTransfer(ctx context.Context, tr Transfer) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO warehouse_self_transfer (created_at, barcode, product_name, qty, from_warehouse, to_warehouse, status, remarks)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id`,
		tr.CreatedAt, tr.Barcode, tr.ProductName, tr.Qty, tr.FromWarehouse, tr.ToWarehouse, string(tr.Status), tr.Remarks,
	).Scan(&id)
	return id, err
}

func (t *txRepository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := t.tx.Exec(ctx, `UPDATE warehouse_self_transfer SET status=$1 WHERE id=$2`, string(status), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransfer(row rowScanner) (*Transfer, error) {
	var t Transfer
	err := row.Scan(&t.ID, &t.CreatedAt, &t.Barcode, &t.ProductName, &t.Qty,
		&t.FromWarehouse, &t.ToWarehouse, &t.Status, &t.Remarks)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
