// Package timeline reconstructs the movement history of a dispatch by
// joining the dispatch header, damage/recovery logs, self-transfer legs and
// generic ledger entries into one ordered view with summary counters.
package timeline

import (
	"errors"
	"time"
)

// Event sources.
const (
	SourceDispatch       = "dispatch"
	SourceDamageRecovery = "damage_recovery"
	SourceSelfTransfer   = "self_transfer"
	SourceLedger         = "ledger"
)

// Event is one row of the assembled timeline.
type Event struct {
	EventTime    time.Time `json:"event_time"`
	Source       string    `json:"source"`
	MovementType string    `json:"movement_type,omitempty"`
	Barcode      string    `json:"barcode"`
	ProductName  string    `json:"product_name,omitempty"`
	LocationCode string    `json:"location_code,omitempty"`
	Qty          int64     `json:"qty"`
	Direction    string    `json:"direction,omitempty"`
	Reference    string    `json:"reference,omitempty"`
	Status       string    `json:"status,omitempty"`
}

// Summary holds derived counters over the assembled events plus the current
// active stock figure for the dispatch's primary barcode.
type Summary struct {
	Dispatched     int64 `json:"dispatched"`
	Damaged        int64 `json:"damaged"`
	Recovered      int64 `json:"recovered"`
	TransferredIn  int64 `json:"transferred_in"`
	TransferredOut int64 `json:"transferred_out"`
	CurrentStock   int64 `json:"current_stock"`
}

// Header is the resolved dispatch the timeline is anchored on.
type Header struct {
	ID          int64     `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Warehouse   string    `json:"warehouse"`
	OrderRef    string    `json:"order_ref"`
	AWB         string    `json:"awb"`
	Barcode     string    `json:"barcode"`
	ProductName string    `json:"product_name"`
	Qty         int64     `json:"qty"`
	Status      string    `json:"status"`
	// Barcodes covers the header barcode plus every item barcode; the
	// secondary lookups scan all of them.
	Barcodes []string `json:"-"`
}

// Timeline is the full response for one dispatch key.
type Timeline struct {
	Dispatch Header  `json:"dispatch"`
	Events   []Event `json:"events"`
	Summary  Summary `json:"summary"`
}

// ErrNotFound indicates no dispatch matched the lookup key.
var ErrNotFound = errors.New("timeline: dispatch not found")
