// Package journal is the append-only record of stock-affecting events used
// for audit and timeline reconstruction.
package journal

import "time"

// MovementType enumerates supported ledger movements.
type MovementType string

const (
	MovementDispatch         MovementType = "DISPATCH"
	MovementDispatchDamage   MovementType = "DISPATCH_DAMAGE"
	MovementDispatchReversal MovementType = "DISPATCH_REVERSAL"
	MovementSelfTransfer     MovementType = "SELF_TRANSFER"
	MovementDamage           MovementType = "DAMAGE"
	MovementRecovery         MovementType = "RECOVERY"
)

// Direction of a movement relative to the location.
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// Entry is one row of inventory_ledger_base. Rows are never updated or
// deleted once written.
type Entry struct {
	ID           int64        `json:"id"`
	EventTime    time.Time    `json:"event_time"`
	MovementType MovementType `json:"movement_type"`
	Barcode      string       `json:"barcode"`
	ProductName  string       `json:"product_name"`
	LocationCode string       `json:"location_code"`
	Qty          int64        `json:"qty"`
	Direction    Direction    `json:"direction"`
	Reference    string       `json:"reference"`
}
