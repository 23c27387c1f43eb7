package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type MovementDirection string

const (
	MovementIn  MovementDirection = "IN"
	MovementOut MovementDirection = "OUT"
)

// StockMovement is an append-only ledger entry. Rows are never edited or
// deleted; a correction is a new compensating movement with ReversalOfID
// pointing at the original.
type StockMovement struct {
	ID           uint              `json:"id" gorm:"primaryKey"`
	ProductID    uint              `json:"product_id" gorm:"not null;index"`
	ColdRoomID   uint              `json:"cold_room_id" gorm:"not null;index"`
	QuantityKg   decimal.Decimal   `json:"quantity_kg" gorm:"type:decimal(14,2);not null"`
	Direction    MovementDirection `json:"direction" gorm:"type:varchar(5);not null"`
	Reason       string            `json:"reason"`
	ReversalOfID *uint             `json:"reversal_of_id" gorm:"index"`
	ActorID      uint              `json:"actor_id" gorm:"not null"`
	CreatedAt    time.Time         `json:"created_at"`
}

// SignedQuantity is the movement's contribution to the product balance.
func (m *StockMovement) SignedQuantity() decimal.Decimal {
	if m.Direction == MovementOut {
		return m.QuantityKg.Neg()
	}
	return m.QuantityKg
}
