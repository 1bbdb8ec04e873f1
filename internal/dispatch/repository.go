package dispatch

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wareline/wareline/internal/damage"
	"github.com/wareline/wareline/internal/platform/db"
	"github.com/wareline/wareline/internal/stock"
)

const dispatchColumns = `id, timestamp, warehouse, order_ref, customer, barcode, product_name, qty, awb, logistics, parcel_type,
length, width, height, weight, payment_mode, invoice_amount, status, processed_by, remarks`

const itemColumns = `id, dispatch_id, barcode, product_name, qty, variant, selling_price`

// Repository persists dispatch data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the transactional operations the lifecycle service
// composes into atomic units of work.
type TxRepository interface {
	GetForUpdate(ctx context.Context, id int64) (*Dispatch, error)
	InsertDispatch(ctx context.Context, d Dispatch) (int64, error)
	InsertItem(ctx context.Context, item Item) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	DeleteItems(ctx context.Context, dispatchID int64) (int64, error)
	DeleteDispatch(ctx context.Context, id int64) error

	InsertDamageLog(ctx context.Context, log damage.Log) (int64, error)

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
		return errors.New("dispatch repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// GetByID loads a dispatch header with its item rows.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Dispatch, error) {
	if r == nil {
		return nil, errors.New("dispatch repository not initialised")
	}
	row := r.pool.QueryRow(ctx, `SELECT `+dispatchColumns+` FROM warehouse_dispatch WHERE id=$1`, id)
	d, err := scanDispatch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Items = items
	return d, nil
}

// List returns dispatch headers newest-first.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]Dispatch, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+dispatchColumns+` FROM warehouse_dispatch ORDER BY timestamp DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dispatches := []Dispatch{}
	for rows.Next() {
		d, err := scanDispatch(rows)
		if err != nil {
			return nil, err
		}
		dispatches = append(dispatches, *d)
	}
	return dispatches, rows.Err()
}

// ResolveRecord decides which table owns an id: warehouse_dispatch first,
// then warehouse_self_transfer.
func (r *Repository) ResolveRecord(ctx context.Context, id int64) (RecordRef, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM warehouse_dispatch WHERE id=$1)`, id).Scan(&exists); err != nil {
		return RecordRef{}, err
	}
	if exists {
		return RecordRef{Kind: RecordDispatch, ID: id}, nil
	}
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM warehouse_self_transfer WHERE id=$1)`, id).Scan(&exists); err != nil {
		return RecordRef{}, err
	}
	if exists {
		return RecordRef{Kind: RecordSelfTransfer, ID: id}, nil
	}
	return RecordRef{}, ErrNotFound
}

func (r *Repository) listItems(ctx context.Context, dispatchID int64) ([]Item, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+itemColumns+` FROM warehouse_dispatch_items WHERE dispatch_id=$1 ORDER BY id ASC`, dispatchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDispatch(row rowScanner) (*Dispatch, error) {
	var d Dispatch
	err := row.Scan(
		&d.ID, &d.Timestamp, &d.Warehouse, &d.OrderRef, &d.Customer, &d.Barcode, &d.ProductName, &d.Qty,
		&d.AWB, &d.Logistics, &d.ParcelType,
		&d.Dimensions.Length, &d.Dimensions.Width, &d.Dimensions.Height, &d.Dimensions.Weight,
		&d.PaymentMode, &d.InvoiceAmount, &d.Status, &d.ProcessedBy, &d.Remarks,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func scanItems(rows pgx.Rows) ([]Item, error) {
	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.DispatchID, &it.Barcode, &it.ProductName, &it.Qty, &it.Variant, &it.SellingPrice); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
