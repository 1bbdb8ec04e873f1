package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wareline/wareline/internal/journal"
	"github.com/wareline/wareline/internal/notify"
	"github.com/wareline/wareline/internal/shared"
	"github.com/wareline/wareline/internal/stock"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetByID(ctx context.Context, id int64) (*Transfer, error)
	List(ctx context.Context, limit, offset int) ([]Transfer, error)
}

// JournalPort appends movement history best-effort.
type JournalPort interface {
	Append(ctx context.Context, entry journal.Entry)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates self-transfer creation and status updates.
type Service struct {
	repo     RepositoryPort
	journal  JournalPort
	audit    AuditPort
	notifier notify.Notifier
	logger   *slog.Logger
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

// Create inserts the transfer record, deducts FIFO at the source warehouse
// and restores at the destination, all in one transaction. Both movements
// commit or neither does. Ledger legs follow after commit best-effort.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Transfer, error) {
	if err := ValidateCreateRequest(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := Transfer{
		CreatedAt:     now,
		Barcode:       req.Barcode,
		ProductName:   req.ProductName,
		Qty:           req.Qty,
		FromWarehouse: req.FromWarehouse,
		ToWarehouse:   req.ToWarehouse,
		Status:        StatusPending,
		Remarks:       req.Remarks,
	}

	var id int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		id, err = tx.InsertTransfer(ctx, record)
		if err != nil {
			return fmt.Errorf("insert transfer: %w", err)
		}

		batches, err := tx.ActiveBatches(ctx, req.Barcode, req.FromWarehouse)
		if err != nil {
			return err
		}
		plan, err := stock.PlanDeduction(batches, req.Qty)
		if err != nil {
			return fmt.Errorf("deduct at %s: %w", req.FromWarehouse, err)
		}
		if plan.Shortfall > 0 {
			s.logger.Warn("transfer deducted past available stock",
				slog.String("barcode", req.Barcode),
				slog.Int64("shortfall", plan.Shortfall))
		}
		if err := tx.ApplyBatchUpdates(ctx, plan.Updates); err != nil {
			return err
		}

		recent, err := tx.RecentBatches(ctx, req.Barcode, req.ToWarehouse)
		if err != nil {
			return err
		}
		inbound, err := stock.PlanInbound(recent, stock.InboundRequest{
			Barcode:     req.Barcode,
			Warehouse:   req.ToWarehouse,
			ProductName: req.ProductName,
			Qty:         req.Qty,
			BatchRef:    fmt.Sprintf("SELF_TRANSFER_%d_%d", id, now.Unix()),
			SourceType:  stock.SourceTransferIn,
		}, now)
		if err != nil {
			return fmt.Errorf("restore at %s: %w", req.ToWarehouse, err)
		}
		if inbound.Update != nil {
			if err := tx.ApplyBatchUpdates(ctx, []stock.BatchUpdate{*inbound.Update}); err != nil {
				return err
			}
		}
		if inbound.NewBatch != nil {
			if _, err := tx.InsertBatch(ctx, *inbound.NewBatch); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ref := journal.SelfTransferRef(id)
	s.journal.Append(ctx, journal.Entry{
		MovementType: journal.MovementSelfTransfer,
		Barcode:      req.Barcode,
		ProductName:  req.ProductName,
		LocationCode: req.FromWarehouse,
		Qty:          req.Qty,
		Direction:    journal.DirectionOut,
		Reference:    ref,
	})
	s.journal.Append(ctx, journal.Entry{
		MovementType: journal.MovementSelfTransfer,
		Barcode:      req.Barcode,
		ProductName:  req.ProductName,
		LocationCode: req.ToWarehouse,
		Qty:          req.Qty,
		Direction:    journal.DirectionIn,
		Reference:    ref,
	})
	s.recordAudit(ctx, req.ProcessedBy, "transfer:create", id, map[string]any{
		"barcode": req.Barcode,
		"qty":     req.Qty,
		"from":    req.FromWarehouse,
		"to":      req.ToWarehouse,
	})
	s.notifier.Notify(ctx, notify.Event{
		Kind:       notify.KindTransferCreated,
		Resource:   "warehouse_self_transfer",
		ResourceID: id,
		Message:    fmt.Sprintf("transfer %d moved %d x %s from %s to %s", id, req.Qty, req.Barcode, req.FromWarehouse, req.ToWarehouse),
	})

	return s.repo.GetByID(ctx, id)
}

// UpdateStatus validates a status write against the self-transfer set. The
// signature takes the status as a string so dispatch status routing can call
// it through a port without importing this package's types.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) error {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	next := Status(status)
	if !next.IsValid() {
		return fmt.Errorf("%q: %w", status, ErrInvalidStatus)
	}
	if !t.Status.CanTransitionTo(next) {
		return fmt.Errorf("%s -> %s: %w", t.Status, next, ErrStatusNotAllowed)
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateStatus(ctx, id, next)
	})
	if err != nil {
		return err
	}

	s.recordAudit(ctx, "", "transfer:status", id, map[string]any{
		"from": string(t.Status),
		"to":   string(next),
	})
	s.notifier.Notify(ctx, notify.Event{
		Kind:       notify.KindStatusChanged,
		Resource:   "warehouse_self_transfer",
		ResourceID: id,
		Message:    fmt.Sprintf("transfer %d moved to %s", id, next),
	})
	return nil
}

// GetByID retrieves one self-transfer record.
func (s *Service) GetByID(ctx context.Context, id int64) (*Transfer, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns self-transfer records newest-first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Transfer, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) recordAudit(ctx context.Context, actor, action string, id int64, details map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Actor:      actor,
		Action:     action,
		Resource:   "warehouse_self_transfer",
		ResourceID: fmt.Sprintf("%d", id),
		Details:    details,
	})
}
