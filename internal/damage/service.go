package damage

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
	GetByID(ctx context.Context, id int64) (*Log, error)
	List(ctx context.Context, barcode string, limit, offset int) ([]Log, error)
}

// JournalPort appends movement history best-effort.
type JournalPort interface {
	Append(ctx context.Context, entry journal.Entry)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service records standalone damage and recovery actions against warehouse
// stock, without a dispatch in the picture.
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

// ReportDamage appends a damage row and deducts the quantity FIFO in one
// transaction. With no active stock the whole operation rolls back.
func (s *Service) ReportDamage(ctx context.Context, req ActionRequest) (int64, error) {
	if err := ValidateActionRequest(req); err != nil {
		return 0, err
	}

	var logID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		logID, err = tx.InsertLog(ctx, Log{
			ProductType:       req.Product,
			Barcode:           req.Barcode,
			InventoryLocation: req.Warehouse,
			ActionType:        ActionDamage,
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
		MovementType: journal.MovementDamage,
		Barcode:      req.Barcode,
		ProductName:  req.Product,
		LocationCode: req.Warehouse,
		Qty:          req.Qty,
		Direction:    journal.DirectionOut,
		Reference:    journal.ActionRef(string(ActionDamage), logID),
	})
	s.recordAudit(ctx, "damage:report", logID, req)
	s.notifier.Notify(ctx, notify.Event{
		Kind:       notify.KindDamageReported,
		Resource:   "damage_recovery_log",
		ResourceID: logID,
		Message:    fmt.Sprintf("damage of %d x %s at %s", req.Qty, req.Barcode, req.Warehouse),
	})
	return logID, nil
}

// Recover appends a recovery row and restores the quantity into the most
// recent batch, synthesizing one when none exist, in one transaction.
func (s *Service) Recover(ctx context.Context, req ActionRequest) (int64, error) {
	if err := ValidateActionRequest(req); err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	var logID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		logID, err = tx.InsertLog(ctx, Log{
			ProductType:       req.Product,
			Barcode:           req.Barcode,
			InventoryLocation: req.Warehouse,
			ActionType:        ActionRecover,
			Quantity:          req.Qty,
		})
		if err != nil {
			return fmt.Errorf("insert recovery log: %w", err)
		}
		recent, err := tx.RecentBatches(ctx, req.Barcode, req.Warehouse)
		if err != nil {
			return err
		}
		plan, err := stock.PlanInbound(recent, stock.InboundRequest{
			Barcode:     req.Barcode,
			Warehouse:   req.Warehouse,
			ProductName: req.Product,
			Qty:         req.Qty,
			BatchRef:    fmt.Sprintf("RECOVERY_%d_%d", logID, now.Unix()),
			SourceType:  stock.SourceRecovery,
		}, now)
		if err != nil {
			return err
		}
		if plan.Update != nil {
			return tx.ApplyBatchUpdates(ctx, []stock.BatchUpdate{*plan.Update})
		}
		_, err = tx.InsertBatch(ctx, *plan.NewBatch)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.journal.Append(ctx, journal.Entry{
		MovementType: journal.MovementRecovery,
		Barcode:      req.Barcode,
		ProductName:  req.Product,
		LocationCode: req.Warehouse,
		Qty:          req.Qty,
		Direction:    journal.DirectionIn,
		Reference:    journal.ActionRef(string(ActionRecover), logID),
	})
	s.recordAudit(ctx, "damage:recover", logID, req)
	s.notifier.Notify(ctx, notify.Event{
		Kind:       notify.KindStockRecovered,
		Resource:   "damage_recovery_log",
		ResourceID: logID,
		Message:    fmt.Sprintf("recovered %d x %s at %s", req.Qty, req.Barcode, req.Warehouse),
	})
	return logID, nil
}

// GetByID retrieves one log row.
func (s *Service) GetByID(ctx context.Context, id int64) (*Log, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns log rows newest-first, optionally filtered by barcode.
func (s *Service) List(ctx context.Context, barcode string, limit, offset int) ([]Log, error) {
	return s.repo.List(ctx, barcode, limit, offset)
}

func (s *Service) recordAudit(ctx context.Context, action string, id int64, req ActionRequest) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Action:     action,
		Resource:   "damage_recovery_log",
		ResourceID: fmt.Sprintf("%d", id),
		Details: map[string]any{
			"barcode":   req.Barcode,
			"warehouse": req.Warehouse,
			"qty":       req.Qty,
			"reason":    req.Reason,
		},
	})
}
