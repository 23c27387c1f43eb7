package models

import (
	"time"

	"gorm.io/gorm"
)

// Site is the tenant boundary. Inventory, orders, rentals and invoices
// are always scoped to one site, and the invoice number sequence is
// serialized by locking this row.
type Site struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"unique;not null"`
	Region    string         `json:"region"`
	Address   string         `json:"address"`
	IsActive  bool           `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}
