package stock

import (
	"fmt"
	"time"
)

// DeductionResult describes batch mutations for a FIFO deduction.
type DeductionResult struct {
	Updates  []BatchUpdate
	Deducted int64
	// Shortfall is the requested quantity that could not be covered by the
	// available batches. Deduction deducts down to zero and reports the
	// remainder; callers decide whether to treat it as an error.
	Shortfall int64
}

// PlanDeduction walks active batches oldest-first and deducts qty across
// them. A batch is marked exhausted iff its resulting quantity is exactly
// zero. The input slice must already be ordered by created_at ascending.
func PlanDeduction(batches []Batch, qty int64) (DeductionResult, error) {
	if qty <= 0 {
		return DeductionResult{}, ErrInvalidQuantity
	}

	hasActive := false
	for _, b := range batches {
		if b.Status == BatchActive && b.QtyAvailable > 0 {
			hasActive = true
			break
		}
	}
	if !hasActive {
		return DeductionResult{}, ErrNoActiveStock
	}

	remaining := qty
	var updates []BatchUpdate
	for _, b := range batches {
		if remaining == 0 {
			break
		}
		if b.Status != BatchActive || b.QtyAvailable <= 0 {
			continue
		}
		take := remaining
		if b.QtyAvailable < take {
			take = b.QtyAvailable
		}
		newQty := b.QtyAvailable - take
		status := BatchActive
		if newQty == 0 {
			status = BatchExhausted
		}
		updates = append(updates, BatchUpdate{ID: b.ID, QtyAvailable: newQty, Status: status})
		remaining -= take
	}

	return DeductionResult{
		Updates:   updates,
		Deducted:  qty - remaining,
		Shortfall: remaining,
	}, nil
}

// RestoreRequest carries the identity of the product being restored.
type RestoreRequest struct {
	Barcode     string
	Warehouse   string
	ProductName string
	Qty         int64
	DispatchID  int64
}

// RestorationResult is either an update to an existing batch or a new
// synthetic batch when nothing exists to restore into.
type RestorationResult struct {
	Update   *BatchUpdate
	NewBatch *Batch
}

// PlanRestoration restores the entire quantity into the most recent batch,
// forcing it active. The input slice must be ordered by created_at
// descending; only the first entry is used. Restoration does not reverse the
// original deduction distribution, batches are fungible per barcode and
// warehouse, so the reversal stays O(1).
func PlanRestoration(recent []Batch, req RestoreRequest, now time.Time) (RestorationResult, error) {
	return PlanInbound(recent, InboundRequest{
		Barcode:     req.Barcode,
		Warehouse:   req.Warehouse,
		ProductName: req.ProductName,
		Qty:         req.Qty,
		BatchRef:    fmt.Sprintf("RESTORE_DISPATCH_%d_%d", req.DispatchID, now.Unix()),
		SourceType:  SourceDispatchReversal,
	}, now)
}

// InboundRequest describes quantity arriving at a warehouse from any source:
// a dispatch reversal, a recovery action, or the inbound leg of a transfer.
type InboundRequest struct {
	Barcode     string
	Warehouse   string
	ProductName string
	Qty         int64
	BatchRef    string
	SourceType  string
}

// PlanInbound adds the quantity to the most recent batch regardless of its
// status, forcing it active, or synthesizes a new batch when none exist.
func PlanInbound(recent []Batch, req InboundRequest, now time.Time) (RestorationResult, error) {
	if req.Qty <= 0 {
		return RestorationResult{}, ErrInvalidQuantity
	}

	if len(recent) == 0 {
		return RestorationResult{
			NewBatch: &Batch{
				Barcode:      req.Barcode,
				Warehouse:    req.Warehouse,
				ProductName:  req.ProductName,
				QtyAvailable: req.Qty,
				Status:       BatchActive,
				CreatedAt:    now,
				BatchRef:     req.BatchRef,
				SourceType:   req.SourceType,
			},
		}, nil
	}

	target := recent[0]
	return RestorationResult{
		Update: &BatchUpdate{
			ID:           target.ID,
			QtyAvailable: target.QtyAvailable + req.Qty,
			Status:       BatchActive,
		},
	}, nil
}
