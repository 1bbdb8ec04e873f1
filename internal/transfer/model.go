// Package transfer moves stock between two warehouses as a self-transfer
// record: one deduction at the source and one inbound at the destination,
// committed together.
package transfer

import "time"

// Status enumerates the self-transfer status set. It is smaller than the
// dispatch set; which set applies is decided by the table owning the id.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusConfirmed  Status = "Confirmed"
	StatusCompleted  Status = "Completed"
	StatusCancelled  Status = "Cancelled"
)

var statusOrder = map[Status]int{
	StatusPending:    0,
	StatusProcessing: 1,
	StatusConfirmed:  2,
	StatusCompleted:  3,
}

// IsValid reports whether s belongs to the self-transfer status set.
func (s Status) IsValid() bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := statusOrder[s]
	return ok
}

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo allows forward movement along the chain; Cancelled is
// reachable from any non-terminal state.
func (s Status) CanTransitionTo(next Status) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	cur, ok := statusOrder[s]
	if !ok {
		return false
	}
	nxt, ok := statusOrder[next]
	if !ok {
		return false
	}
	return nxt > cur
}

// Transfer is one warehouse_self_transfer row.
type Transfer struct {
	ID            int64     `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	Barcode       string    `json:"barcode"`
	ProductName   string    `json:"product_name"`
	Qty           int64     `json:"qty"`
	FromWarehouse string    `json:"from_warehouse"`
	ToWarehouse   string    `json:"to_warehouse"`
	Status        Status    `json:"status"`
	Remarks       string    `json:"remarks,omitempty"`
}
