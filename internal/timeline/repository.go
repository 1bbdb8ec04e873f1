package timeline

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads the four timeline sources from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ResolveDispatch looks a dispatch up by numeric id, order_ref or awb. With
// multiple matches the lowest id wins, deterministically.
func (r *Repository) ResolveDispatch(ctx context.Context, key string) (*Header, error) {
	if r == nil {
		return nil, errors.New("timeline repository not initialised")
	}
	id, _ := strconv.ParseInt(key, 10, 64)
	var h Header
	err := r.pool.QueryRow(ctx, `
		SELECT id, timestamp, warehouse, order_ref, awb, barcode, product_name, qty, status
		FROM warehouse_dispatch
		WHERE id = $1 OR order_ref = $2 OR awb = $2
		ORDER BY id ASC
		LIMIT 1`,
		id, key).Scan(&h.ID, &h.Timestamp, &h.Warehouse, &h.OrderRef, &h.AWB, &h.Barcode, &h.ProductName, &h.Qty, &h.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	seen := map[string]bool{}
	if h.Barcode != "" {
		h.Barcodes = append(h.Barcodes, h.Barcode)
		seen[h.Barcode] = true
	}
	rows, err := r.pool.Query(ctx,
		`SELECT barcode FROM warehouse_dispatch_items WHERE dispatch_id=$1 ORDER BY id ASC`, h.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var bc string
		if err := rows.Scan(&bc); err != nil {
			return nil, err
		}
		if !seen[bc] {
			h.Barcodes = append(h.Barcodes, bc)
			seen[bc] = true
		}
	}
	return &h, rows.Err()
}

// DamageEvents returns damage_recovery_log rows for the barcodes.
func (r *Repository) DamageEvents(ctx context.Context, barcodes []string) ([]Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT created_at, action_type, barcode, product_type, inventory_location, quantity
		FROM damage_recovery_log
		WHERE barcode = ANY($1)
		ORDER BY created_at DESC, id DESC`,
		barcodes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.EventTime, &e.MovementType, &e.Barcode, &e.ProductName, &e.LocationCode, &e.Qty); err != nil {
			return nil, err
		}
		e.Source = SourceDamageRecovery
		events = append(events, e)
	}
	return events, rows.Err()
}

// TransferEvents returns self-transfer ledger legs for the barcodes.
func (r *Repository) TransferEvents(ctx context.Context, barcodes []string) ([]Event, error) {
	return r.ledgerQuery(ctx, barcodes, true)
}

// LedgerEvents returns all other ledger entries for the barcodes; the
// assembler filters them against the reference contract.
func (r *Repository) LedgerEvents(ctx context.Context, barcodes []string) ([]Event, error) {
	return r.ledgerQuery(ctx, barcodes, false)
}

func (r *Repository) ledgerQuery(ctx context.Context, barcodes []string, selfTransfer bool) ([]Event, error) {
	op := "<>"
	if selfTransfer {
		op = "="
	}
	rows, err := r.pool.Query(ctx, `
		SELECT event_time, movement_type, barcode, product_name, location_code, qty, direction, reference
		FROM inventory_ledger_base
		WHERE barcode = ANY($1) AND movement_type `+op+` 'SELF_TRANSFER'
		ORDER BY event_time DESC, id DESC`,
		barcodes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	source := SourceLedger
	if selfTransfer {
		source = SourceSelfTransfer
	}
	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.EventTime, &e.MovementType, &e.Barcode, &e.ProductName, &e.LocationCode, &e.Qty, &e.Direction, &e.Reference); err != nil {
			return nil, err
		}
		e.Source = source
		events = append(events, e)
	}
	return events, rows.Err()
}

// ActiveStock sums active batch quantity for one barcode across warehouses.
func (r *Repository) ActiveStock(ctx context.Context, barcode string) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(qty_available), 0) FROM stock_batches WHERE barcode=$1 AND status='active'`,
		barcode).Scan(&total)
	return total, err
}
