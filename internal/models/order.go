package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderRequested OrderStatus = "REQUESTED"
	OrderApproved  OrderStatus = "APPROVED"
	OrderRejected  OrderStatus = "REJECTED"
	OrderInvoiced  OrderStatus = "INVOICED"
	OrderCompleted OrderStatus = "COMPLETED"
)

// orderTransitions is the complete transition table. REJECTED and
// COMPLETED are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderRequested: {OrderApproved, OrderRejected},
	OrderApproved:  {OrderInvoiced, OrderCompleted},
	OrderInvoiced:  {OrderCompleted},
}

// CanTransitionOrder reports whether from -> to is a legal order
// state change.
func CanTransitionOrder(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	ClientID        uint            `json:"client_id" gorm:"not null;index"`
	SiteID          uint            `json:"site_id" gorm:"not null;index"`
	TotalAmount     decimal.Decimal `json:"total_amount" gorm:"type:decimal(14,2);not null"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(20);default:'REQUESTED'"`
	ApprovedBy      *uint           `json:"approved_by"`
	ApprovedAt      *time.Time      `json:"approved_at"`
	RejectionReason string          `json:"rejection_reason"`
	RejectedAt      *time.Time      `json:"rejected_at"`
	Items           []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `json:"deleted_at" gorm:"index"`
}
