package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem snapshots the product name and unit price at order creation.
// Later price changes never alter an existing order.
type OrderItem struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	OrderID     uint            `json:"order_id" gorm:"not null;index"`
	ProductID   uint            `json:"product_id" gorm:"not null"`
	ProductName string          `json:"product_name" gorm:"not null"`
	QuantityKg  decimal.Decimal `json:"quantity_kg" gorm:"type:decimal(14,2);not null"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:decimal(14,2);not null"`
	Subtotal    decimal.Decimal `json:"subtotal" gorm:"type:decimal(14,2);not null"`
	CreatedAt   time.Time       `json:"created_at"`
}
