package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wareline/wareline/internal/damage"
	"github.com/wareline/wareline/internal/journal"
	"github.com/wareline/wareline/internal/notify"
	"github.com/wareline/wareline/internal/shared"
	"github.com/wareline/wareline/internal/stock"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetByID(ctx context.Context, id int64) (*Dispatch, error)
	List(ctx context.Context, limit, offset int) ([]Dispatch, error)
	ResolveRecord(ctx context.Context, id int64) (RecordRef, error)
}

// JournalPort appends movement history best-effort.
type JournalPort interface {
	Append(ctx context.Context, entry journal.Entry)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// TransferPort routes status writes that resolve to a self-transfer record.
type TransferPort interface {
	UpdateStatus(ctx context.Context, id int64, status string) error
}

// Service coordinates the dispatch lifecycle.
type Service struct {
	repo      RepositoryPort
	journal   JournalPort
	audit     AuditPort
	notifier  notify.Notifier
	transfers TransferPort
	logger    *slog.Logger
}

// NewService builds Service.
func NewService(repo RepositoryPort, jrnl JournalPort, audit AuditPort, notifier notify.Notifier, logger *slog.Logger) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, journal: jrnl, audit: audit, notifier: notifier, logger: logger}
}

// SetTransfers wires the self-transfer status port.
func (s *Service) SetTransfers(t TransferPort) {
	s.transfers = t
}

// Create inserts a dispatch with its items and deducts stock FIFO per
// product, all in one transaction. Ledger legs, audit and notification
// happen after commit and never fail the operation.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Dispatch, error) {
	if err := ValidateCreateRequest(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	header := Dispatch{
		Timestamp:     now,
		Warehouse:     req.Warehouse,
		OrderRef:      req.OrderRef,
		Customer:      req.Customer,
		Barcode:       req.Barcode,
		ProductName:   req.ProductName,
		Qty:           req.Qty,
		AWB:           req.AWB,
		Logistics:     req.Logistics,
		ParcelType:    req.ParcelType,
		Dimensions:    req.Dimensions,
		PaymentMode:   req.PaymentMode,
		InvoiceAmount: req.InvoiceAmount,
		Status:        StatusPending,
		ProcessedBy:   req.ProcessedBy,
		Remarks:       req.Remarks,
	}

	products := requestProducts(req)

	var id int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		id, err = tx.InsertDispatch(ctx, header)
		if err != nil {
			return fmt.Errorf("insert dispatch: %w", err)
		}
		for _, item := range req.Items {
			line := Item{
				DispatchID:   id,
				Barcode:      item.Barcode,
				ProductName:  item.ProductName,
				Qty:          item.Qty,
				Variant:      item.Variant,
				SellingPrice: item.SellingPrice,
			}
			if _, err := tx.InsertItem(ctx, line); err != nil {
				return fmt.Errorf("insert item: %w", err)
			}
		}
		for _, p := range products {
			batches, err := tx.ActiveBatches(ctx, p.Barcode, req.Warehouse)
			if err != nil {
				return err
			}
			plan, err := stock.PlanDeduction(batches, p.Qty)
			if err != nil {
				return fmt.Errorf("deduct %s: %w", p.Barcode, err)
			}
			if plan.Shortfall > 0 {
				s.logger.Warn("dispatch deducted past available stock",
					slog.String("barcode", p.Barcode),
					slog.Int64("shortfall", plan.Shortfall))
			}
			if err := tx.ApplyBatchUpdates(ctx, plan.Updates); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, p := range products {
		s.journal.Append(ctx, journal.Entry{
			MovementType: journal.MovementDispatch,
			Barcode:      p.Barcode,
			ProductName:  p.ProductName,
			LocationCode: req.Warehouse,
			Qty:          p.Qty,
			Direction:    journal.DirectionOut,
			Reference:    journal.DispatchRef(id, req.AWB),
		})
	}
	s.recordAudit(ctx, req.ProcessedBy, "dispatch:create", id, map[string]any{
		"order_ref": req.OrderRef,
		"awb":       req.AWB,
		"products":  len(products),
	})
	s.notifier.Notify(ctx, notify.Event{
		Kind:       notify.KindDispatchCreated,
		Resource:   "warehouse_dispatch",
		ResourceID: id,
		Message:    fmt.Sprintf("dispatch %d created for order %s", id, req.OrderRef),
	})

	return s.repo.GetByID(ctx, id)
}

// UpdateStatus resolves which table owns the id and validates the new status
// against that table's set. For dispatches the status is written at the
// header level only, even when a barcode scopes the request.
func (s *Service) UpdateStatus(ctx context.Context, id int64, req UpdateStatusRequest) error {
	if err := ValidateUpdateStatusRequest(req); err != nil {
		return err
	}

	ref, err := s.repo.ResolveRecord(ctx, id)
	if err != nil {
		return err
	}
	if ref.Kind == RecordSelfTransfer {
		if s.transfers == nil {
			return fmt.Errorf("self-transfer %d: %w", id, ErrNotFound)
		}
		return s.transfers.UpdateStatus(ctx, id, req.Status)
	}

	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	next := Status(req.Status)
	if !next.IsValid() {
		return fmt.Errorf("%q: %w", req.Status, ErrInvalidStatus)
	}
	if req.Barcode != nil && !d.HasBarcode(*req.Barcode) {
		return fmt.Errorf("%q: %w", *req.Barcode, ErrBarcodeMismatch)
	}
	if !d.Status.CanTransitionTo(next) {
		return fmt.Errorf("%s -> %s: %w", d.Status, next, ErrStatusNotAllowed)
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateStatus(ctx, id, next)
	})
	if err != nil {
		return err
	}

	s.recordAudit(ctx, d.ProcessedBy, "dispatch:status", id, map[string]any{
		"from": string(d.Status),
		"to":   string(next),
	})
	s.notifier.Notify(ctx, notify.Event{
		Kind:       notify.KindStatusChanged,
		Resource:   "warehouse_dispatch",
		ResourceID: id,
		Message:    fmt.Sprintf("dispatch %d moved to %s", id, next),
	})
	return nil
}

// ReportDamage appends a damage log row and deducts the damaged quantity
// FIFO inside one transaction. When no active batch exists the whole
// operation rolls back, including the damage row.
func (s *Service) ReportDamage(ctx context.Context, dispatchID int64, req ReportDamageRequest) (int64, error) {
	if err := ValidateReportDamageRequest(req); err != nil {
		return 0, err
	}
	if _, err := s.repo.GetByID(ctx, dispatchID); err != nil {
		return 0, err
	}

	var damageID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		damageID, err = tx.InsertDamageLog(ctx, damage.Log{
			ProductType:       req.Product,
			Barcode:           req.Barcode,
			InventoryLocation: req.Warehouse,
			ActionType:        damage.ActionDamage,
			Quantity:          req.Qty,
		})
		if err != nil {
			return fmt.Errorf("insert damage log: %w", err)
		}
		batches, err := tx.ActiveBatches(ctx, req.Barcode, req.Warehouse)
		if err != nil {
			return err
		}
		plan, err := stock.PlanDeduction(batches, req.Qty)
		if err != nil {
			return err
		}
		return tx.ApplyBatchUpdates(ctx, plan.Updates)
	})
	if err != nil {
		return 0, err
	}

	s.journal.Append(ctx, journal.Entry{
		MovementType: journal.MovementDispatchDamage,
		Barcode:      req.Barcode,
		ProductName:  req.Product,
		LocationCode: req.Warehouse,
		Qty:          req.Qty,
		Direction:    journal.DirectionOut,
		Reference:    journal.DispatchDamageRef(damageID),
	})
	s.recordAudit(ctx, "", "dispatch:damage", dispatchID, map[string]any{
		"damage_id": damageID,
		"barcode":   req.Barcode,
		"qty":       req.Qty,
		"reason":    req.Reason,
	})
	s.notifier.Notify(ctx, notify.Event{
		Kind:       notify.KindDamageReported,
		Resource:   "warehouse_dispatch",
		ResourceID: dispatchID,
		Message:    fmt.Sprintf("damage of %d x %s reported on dispatch %d", req.Qty, req.Barcode, dispatchID),
	})
	return damageID, nil
}

// Delete removes a dispatch and its items after restoring stock for every
// product, one restore per product, in a single transaction. Ledger and
// batch history persist; the reversal is logged, not erased.
func (s *Service) Delete(ctx context.Context, id int64) (*DeleteResult, error) {
	now := time.Now().UTC()

	var (
		deleted      *Dispatch
		products     []Item
		itemsDeleted int64
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		d, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		deleted = d
		products = d.Products()

		for _, p := range products {
			recent, err := tx.RecentBatches(ctx, p.Barcode, d.Warehouse)
			if err != nil {
				return err
			}
			plan, err := stock.PlanRestoration(recent, stock.RestoreRequest{
				Barcode:     p.Barcode,
				Warehouse:   d.Warehouse,
				ProductName: p.ProductName,
				Qty:         p.Qty,
				DispatchID:  id,
			}, now)
			if err != nil {
				return fmt.Errorf("restore %s: %w", p.Barcode, err)
			}
			if plan.Update != nil {
				if err := tx.ApplyBatchUpdates(ctx, []stock.BatchUpdate{*plan.Update}); err != nil {
					return err
				}
			}
			if plan.NewBatch != nil {
				if _, err := tx.InsertBatch(ctx, *plan.NewBatch); err != nil {
					return err
				}
			}
		}

		itemsDeleted, err = tx.DeleteItems(ctx, id)
		if err != nil {
			return err
		}
		return tx.DeleteDispatch(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	for _, p := range products {
		s.journal.Append(ctx, journal.Entry{
			MovementType: journal.MovementDispatchReversal,
			Barcode:      p.Barcode,
			ProductName:  p.ProductName,
			LocationCode: deleted.Warehouse,
			Qty:          p.Qty,
			Direction:    journal.DirectionIn,
			Reference:    journal.DispatchDeleteRef(id),
		})
	}
	s.recordAudit(ctx, deleted.ProcessedBy, "dispatch:delete", id, map[string]any{
		"order_ref": deleted.OrderRef,
		"restored":  len(products),
	})
	s.notifier.Notify(ctx, notify.Event{
		Kind:       notify.KindDispatchDeleted,
		Resource:   "warehouse_dispatch",
		ResourceID: id,
		Message:    fmt.Sprintf("dispatch %d deleted, %d product(s) restored", id, len(products)),
	})

	return &DeleteResult{
		DispatchID:   id,
		ItemsDeleted: int(itemsDeleted),
		Restored:     len(products),
	}, nil
}

// GetByID retrieves a dispatch with items.
func (s *Service) GetByID(ctx context.Context, id int64) (*Dispatch, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns dispatch headers newest-first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Dispatch, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) recordAudit(ctx context.Context, actor, action string, id int64, details map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Actor:      actor,
		Action:     action,
		Resource:   "warehouse_dispatch",
		ResourceID: fmt.Sprintf("%d", id),
		Details:    details,
	})
}

func requestProducts(req CreateRequest) []Item {
	if len(req.Items) > 0 {
		products := make([]Item, 0, len(req.Items))
		for _, it := range req.Items {
			products = append(products, Item{
				Barcode:      it.Barcode,
				ProductName:  it.ProductName,
				Qty:          it.Qty,
				Variant:      it.Variant,
				SellingPrice: it.SellingPrice,
			})
		}
		return products
	}
	return []Item{{Barcode: req.Barcode, ProductName: req.ProductName, Qty: req.Qty}}
}
