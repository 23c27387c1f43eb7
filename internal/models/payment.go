package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

type PaymentMethod string

const (
	PaymentMobileMoney PaymentMethod = "MOBILE_MONEY"
	PaymentManual      PaymentMethod = "MANUAL"
)

// Payment is one settlement attempt against an invoice. The unique
// gateway transaction ref is the idempotency key for webhook delivery.
type Payment struct {
	ID                    uint            `json:"id" gorm:"primaryKey"`
	InvoiceID             uint            `json:"invoice_id" gorm:"not null;index"`
	Amount                decimal.Decimal `json:"amount" gorm:"type:decimal(14,2);not null"`
	Method                PaymentMethod   `json:"method" gorm:"type:varchar(20);not null"`
	Status                PaymentStatus   `json:"status" gorm:"type:varchar(20);default:'PENDING'"`
	PhoneNumber           string          `json:"phone_number"`
	GatewayTransactionRef string          `json:"gateway_transaction_ref" gorm:"unique;not null"`
	FailureReason         string          `json:"failure_reason"`
	InitiatedBy           *uint           `json:"initiated_by"`
	PaidAt                *time.Time      `json:"paid_at"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}
