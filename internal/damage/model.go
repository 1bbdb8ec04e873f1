// Package damage records damage and recovery actions against warehouse
// stock, both standalone and as part of a dispatch.
package damage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// ActionType distinguishes damage reports from recovery actions.
type ActionType string

const (
	ActionDamage  ActionType = "damage"
	ActionRecover ActionType = "recover"
)

// Log is one immutable row of damage_recovery_log.
type Log struct {
	ID                int64      `json:"id"`
	ProductType       string     `json:"product_type"`
	Barcode           string     `json:"barcode"`
	InventoryLocation string     `json:"inventory_location"`
	ActionType        ActionType `json:"action_type"`
	Quantity          int64      `json:"quantity"`
	CreatedAt         time.Time  `json:"created_at"`
}

// ErrNotFound indicates the damage log row does not exist.
var ErrNotFound = errors.New("damage log not found")

// InsertLog appends one damage_recovery_log row inside the caller's
// transaction and returns its id.
func InsertLog(ctx context.Context, tx pgx.Tx, log Log) (int64, error) {
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	var id int64
	err := tx.QueryRow(ctx,
		`INSERT INTO damage_recovery_log (product_type, barcode, inventory_location, action_type, quantity, created_at)
VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
		log.ProductType, log.Barcode, log.InventoryLocation, string(log.ActionType), log.Quantity, log.CreatedAt).Scan(&id)
	return id, err
}
