package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductStatus string

const (
	ProductInStock    ProductStatus = "IN_STOCK"
	ProductOutOfStock ProductStatus = "OUT_OF_STOCK"
)

// Product is perishable inventory stored in a cold room. QuantityOnHandKg
// is a cached balance; it is only ever written by the stock ledger and the
// signed sum of the product's movements reconstructs it.
type Product struct {
	ID                  uint            `json:"id" gorm:"primaryKey"`
	SiteID              uint            `json:"site_id" gorm:"not null;index"`
	ColdRoomID          uint            `json:"cold_room_id" gorm:"not null;index"`
	Name                string          `json:"name" gorm:"not null"`
	QuantityOnHandKg    decimal.Decimal `json:"quantity_on_hand_kg" gorm:"type:decimal(14,2);not null"`
	SellingPricePerUnit decimal.Decimal `json:"selling_price_per_unit" gorm:"type:decimal(14,2);not null"`
	Status              ProductStatus   `json:"status" gorm:"type:varchar(20);default:'IN_STOCK'"`
	CreatedBy           uint            `json:"created_by"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
	DeletedAt           gorm.DeletedAt  `json:"deleted_at" gorm:"index"`
}
