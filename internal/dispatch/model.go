// Package dispatch owns the dispatch lifecycle: creation with stock
// deduction, header-level status transitions, damage reporting, and
// deletion with compensating stock restoration.
package dispatch

import (
	"time"
)

// Status represents the lifecycle of a dispatch. Status lives only on the
// header, never per item; a multi-item dispatch has one status governing all
// items.
type Status string

const (
	StatusPending        Status = "Pending"
	StatusProcessing     Status = "Processing"
	StatusConfirmed      Status = "Confirmed"
	StatusPacked         Status = "Packed"
	StatusDispatched     Status = "Dispatched"
	StatusInTransit      Status = "In Transit"
	StatusOutForDelivery Status = "Out for Delivery"
	StatusDelivered      Status = "Delivered"
	StatusCancelled      Status = "Cancelled"
	StatusReturned       Status = "Returned"
)

var statusOrder = map[Status]int{
	StatusPending:        0,
	StatusProcessing:     1,
	StatusConfirmed:      2,
	StatusPacked:         3,
	StatusDispatched:     4,
	StatusInTransit:      5,
	StatusOutForDelivery: 6,
	StatusDelivered:      7,
}

// IsValid checks if the status belongs to the dispatch status set.
func (s Status) IsValid() bool {
	if s == StatusCancelled || s == StatusReturned {
		return true
	}
	_, ok := statusOrder[s]
	return ok
}

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusReturned
}

// CanTransitionTo validates a status move. Progression is forward-only along
// the chain; Cancelled and Returned are reachable from any non-terminal
// status.
func (s Status) CanTransitionTo(next Status) bool {
	if !next.IsValid() || s.IsTerminal() {
		return false
	}
	if next == StatusCancelled || next == StatusReturned {
		return true
	}
	cur, ok := statusOrder[s]
	if !ok {
		return false
	}
	nxt := statusOrder[next]
	return nxt > cur
}

// Dimensions of the parcel.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Weight float64 `json:"weight"`
}

// Dispatch is the header row of warehouse_dispatch. Barcode/ProductName/Qty
// on the header describe the single product of a pre-multi-item dispatch and
// stay populated for backward compatibility.
type Dispatch struct {
	ID            int64      `json:"id"`
	Timestamp     time.Time  `json:"timestamp"`
	Warehouse     string     `json:"warehouse"`
	OrderRef      string     `json:"order_ref"`
	Customer      string     `json:"customer"`
	Barcode       string     `json:"barcode"`
	ProductName   string     `json:"product_name"`
	Qty           int64      `json:"qty"`
	AWB           string     `json:"awb"`
	Logistics     string     `json:"logistics"`
	ParcelType    string     `json:"parcel_type"`
	Dimensions    Dimensions `json:"dimensions"`
	PaymentMode   string     `json:"payment_mode"`
	InvoiceAmount float64    `json:"invoice_amount"`
	Status        Status     `json:"status"`
	ProcessedBy   string     `json:"processed_by"`
	Remarks       string     `json:"remarks"`
	Items         []Item     `json:"items,omitempty"`
}

// Item is one product line of a multi-product dispatch.
type Item struct {
	ID           int64   `json:"id"`
	DispatchID   int64   `json:"dispatch_id"`
	Barcode      string  `json:"barcode"`
	ProductName  string  `json:"product_name"`
	Qty          int64   `json:"qty"`
	Variant      string  `json:"variant,omitempty"`
	SellingPrice float64 `json:"selling_price"`
}

// Products returns the item lines when present, otherwise the header product.
// Pre-multi-item dispatches have no item rows.
func (d *Dispatch) Products() []Item {
	if len(d.Items) > 0 {
		return d.Items
	}
	return []Item{{
		DispatchID:  d.ID,
		Barcode:     d.Barcode,
		ProductName: d.ProductName,
		Qty:         d.Qty,
	}}
}

// HasBarcode reports whether the barcode appears on the header or any item.
func (d *Dispatch) HasBarcode(barcode string) bool {
	if d.Barcode == barcode {
		return true
	}
	for _, it := range d.Items {
		if it.Barcode == barcode {
			return true
		}
	}
	return false
}

// RecordKind tags which table owns a record id.
type RecordKind string

const (
	RecordDispatch     RecordKind = "dispatch"
	RecordSelfTransfer RecordKind = "self_transfer"
)

// RecordRef is the resolved owner of an id, decided once at entry instead of
// re-querying both tables at each step.
type RecordRef struct {
	Kind RecordKind
	ID   int64
}
