package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InvoiceStatus string

const (
	InvoiceUnpaid InvoiceStatus = "UNPAID"
	InvoicePaid   InvoiceStatus = "PAID"
	InvoiceVoid   InvoiceStatus = "VOID"
)

type InvoiceSourceType string

const (
	InvoiceSourceOrder  InvoiceSourceType = "ORDER"
	InvoiceSourceRental InvoiceSourceType = "RENTAL"
)

// Invoice is immutable once issued except for PaidAmount/Status. The
// unique indexes on OrderID and RentalID guarantee at most one invoice
// per source regardless of retries.
type Invoice struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	InvoiceNumber string          `json:"invoice_number" gorm:"unique;not null"`
	OrderID       *uint           `json:"order_id" gorm:"uniqueIndex"`
	RentalID      *uint           `json:"rental_id" gorm:"uniqueIndex"`
	ClientID      uint            `json:"client_id" gorm:"not null;index"`
	SiteID        uint            `json:"site_id" gorm:"not null;index"`
	Subtotal      decimal.Decimal `json:"subtotal" gorm:"type:decimal(14,2);not null"`
	TaxAmount     decimal.Decimal `json:"tax_amount" gorm:"type:decimal(14,2);not null"`
	TotalAmount   decimal.Decimal `json:"total_amount" gorm:"type:decimal(14,2);not null"`
	PaidAmount    decimal.Decimal `json:"paid_amount" gorm:"type:decimal(14,2);not null"`
	Status        InvoiceStatus   `json:"status" gorm:"type:varchar(20);default:'UNPAID'"`
	DueDate       time.Time       `json:"due_date"`
	VoidReason    string          `json:"void_reason"`
	Items         []InvoiceItem   `json:"items" gorm:"foreignKey:InvoiceID"`
	CreatedBy     uint            `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `json:"deleted_at" gorm:"index"`
}

// InvoiceItem is a snapshot copied from the source at generation time,
// not a live reference to order or rental lines.
type InvoiceItem struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	InvoiceID   uint            `json:"invoice_id" gorm:"not null;index"`
	Description string          `json:"description" gorm:"not null"`
	QuantityKg  decimal.Decimal `json:"quantity_kg" gorm:"type:decimal(14,2)"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:decimal(14,2)"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(14,2);not null"`
	CreatedAt   time.Time       `json:"created_at"`
}
