package dispatch

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/wareline/wareline/internal/damage"
	"github.com/wareline/wareline/internal/stock"
)

// GetForUpdate locks the header row and loads it with its items.
func (t *txRepository) GetForUpdate(ctx context.Context, id int64) (*Dispatch, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+dispatchColumns+` FROM warehouse_dispatch WHERE id=$1 FOR UPDATE`, id)
	d, err := scanDispatch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	rows, err := t.tx.Query(ctx,
		`SELECT `+itemColumns+` FROM warehouse_dispatch_items WHERE dispatch_id=$1 ORDER BY id ASC FOR UPDATE`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items, err := scanItems(rows)
	if err != nil {
		return nil, err
	}
	d.Items = items
	return d, nil
}

// InsertDispatch creates the header row.
func (t *txRepository) InsertDispatch(ctx context.Context, d Dispatch) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO warehouse_dispatch (
			timestamp, warehouse, order_ref, customer, barcode, product_name, qty,
			awb, logistics, parcel_type, length, width, height, weight,
			payment_mode, invoice_amount, status, processed_by, remarks
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		RETURNING id`,
		d.Timestamp, d.Warehouse, d.OrderRef, d.Customer, d.Barcode, d.ProductName, d.Qty,
		d.AWB, d.Logistics, d.ParcelType,
		d.Dimensions.Length, d.Dimensions.Width, d.Dimensions.Height, d.Dimensions.Weight,
		d.PaymentMode, d.InvoiceAmount, string(d.Status), d.ProcessedBy, d.Remarks,
	).Scan(&id)
	return id, err
}

// InsertItem creates one item row.
func (t *txRepository) InsertItem(ctx context.Context, item Item) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO warehouse_dispatch_items (dispatch_id, barcode, product_name, qty, variant, selling_price)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id`,
		item.DispatchID, item.Barcode, item.ProductName, item.Qty, item.Variant, item.SellingPrice,
	).Scan(&id)
	return id, err
}

// UpdateStatus writes status on the header row only.
func (t *txRepository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := t.tx.Exec(ctx, `UPDATE warehouse_dispatch SET status=$1 WHERE id=$2`, string(status), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteItems removes all item rows and reports how many were deleted.
func (t *txRepository) DeleteItems(ctx context.Context, dispatchID int64) (int64, error) {
	tag, err := t.tx.Exec(ctx, `DELETE FROM warehouse_dispatch_items WHERE dispatch_id=$1`, dispatchID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteDispatch removes the header row.
func (t *txRepository) DeleteDispatch(ctx context.Context, id int64) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM warehouse_dispatch WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertDamageLog appends a damage_recovery_log row in this transaction.
func (t *txRepository) InsertDamageLog(ctx context.Context, log damage.Log) (int64, error) {
	return damage.InsertLog(ctx, t.tx, log)
}

// ActiveBatches locks active batches oldest-first for FIFO deduction.
func (t *txRepository) ActiveBatches(ctx context.Context, barcode, warehouse string) ([]stock.Batch, error) {
	return stock.ActiveBatchesForUpdate(ctx, t.tx, barcode, warehouse)
}

// RecentBatches locks recent batches newest-first for restoration.
func (t *txRepository) RecentBatches(ctx context.Context, barcode, warehouse string) ([]stock.Batch, error) {
	return stock.RecentBatchesForUpdate(ctx, t.tx, barcode, warehouse)
}

// ApplyBatchUpdates persists planned batch mutations.
func (t *txRepository) ApplyBatchUpdates(ctx context.Context, updates []stock.BatchUpdate) error {
	return stock.ApplyUpdates(ctx, t.tx, updates)
}

// InsertBatch creates a new batch row.
func (t *txRepository) InsertBatch(ctx context.Context, b stock.Batch) (int64, error) {
	return stock.InsertBatch(ctx, t.tx, b)
}
