// Package stock maintains available quantity per (barcode, warehouse) as an
// ordered set of batches. Deduction walks batches oldest-first; restoration
// targets the most recent batch regardless of status.
package stock

import (
	"errors"
	"time"
)

// BatchStatus enumerates the lifecycle of a stock batch.
type BatchStatus string

const (
	// BatchActive means the batch still holds available quantity.
	BatchActive BatchStatus = "active"
	// BatchExhausted means qty_available reached exactly zero.
	BatchExhausted BatchStatus = "exhausted"
)

// Source types recorded on batch creation.
const (
	SourceReceiving        = "RECEIVING"
	SourceDispatchReversal = "DISPATCH_REVERSAL"
	SourceRecovery         = "RECOVERY"
	SourceTransferIn       = "SELF_TRANSFER_IN"
)

// Batch is one quantity of one product at one warehouse, tracked as a unit
// for FIFO consumption. Batches are never physically deleted; exhausted
// batches remain as history.
type Batch struct {
	ID           int64       `json:"id"`
	Barcode      string      `json:"barcode"`
	Warehouse    string      `json:"warehouse"`
	ProductName  string      `json:"product_name"`
	QtyAvailable int64       `json:"qty_available"`
	Status       BatchStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	BatchRef     string      `json:"batch_ref"`
	SourceType   string      `json:"source_type"`
}

// BatchUpdate describes the new quantity and status for one batch row.
type BatchUpdate struct {
	ID           int64
	QtyAvailable int64
	Status       BatchStatus
}

var (
	// ErrNoActiveStock indicates no active batches exist for the product at
	// the warehouse; the enclosing operation must abort.
	ErrNoActiveStock = errors.New("stock: no active batches for product at warehouse")
	// ErrInvalidQuantity indicates a non-positive quantity.
	ErrInvalidQuantity = errors.New("stock: quantity must be positive")
)
