package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AssetType string

const (
	AssetColdBox   AssetType = "COLD_BOX"
	AssetColdPlate AssetType = "COLD_PLATE"
	AssetTricycle  AssetType = "TRICYCLE"
	AssetColdRoom  AssetType = "COLD_ROOM"
)

type AssetStatus string

const (
	AssetAvailable   AssetStatus = "AVAILABLE"
	AssetRented      AssetStatus = "RENTED"
	AssetUnavailable AssetStatus = "UNAVAILABLE"
)

// RentableAsset is the closed set of physical units a client can rent.
// Status is exclusively owned by the availability tracker.
type RentableAsset interface {
	GetID() uint
	GetSiteID() uint
	GetStatus() AssetStatus
}

type ColdBox struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	SiteID       uint           `json:"site_id" gorm:"not null;index"`
	SerialNumber string         `json:"serial_number" gorm:"unique;not null"`
	CapacityKg   decimal.Decimal `json:"capacity_kg" gorm:"type:decimal(14,2)"`
	Status       AssetStatus    `json:"status" gorm:"type:varchar(20);default:'AVAILABLE'"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

func (a *ColdBox) GetID() uint            { return a.ID }
func (a *ColdBox) GetSiteID() uint        { return a.SiteID }
func (a *ColdBox) GetStatus() AssetStatus { return a.Status }

type ColdPlate struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	SiteID       uint           `json:"site_id" gorm:"not null;index"`
	SerialNumber string         `json:"serial_number" gorm:"unique;not null"`
	Status       AssetStatus    `json:"status" gorm:"type:varchar(20);default:'AVAILABLE'"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

func (a *ColdPlate) GetID() uint            { return a.ID }
func (a *ColdPlate) GetSiteID() uint        { return a.SiteID }
func (a *ColdPlate) GetStatus() AssetStatus { return a.Status }

type Tricycle struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	SiteID      uint           `json:"site_id" gorm:"not null;index"`
	PlateNumber string         `json:"plate_number" gorm:"unique;not null"`
	Status      AssetStatus    `json:"status" gorm:"type:varchar(20);default:'AVAILABLE'"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

func (a *Tricycle) GetID() uint            { return a.ID }
func (a *Tricycle) GetSiteID() uint        { return a.SiteID }
func (a *Tricycle) GetStatus() AssetStatus { return a.Status }

// ColdRoom doubles as a storage location for products and a rentable
// asset. UsedCapacityKg is maintained by the stock ledger and must stay
// within [0, TotalCapacityKg].
type ColdRoom struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	SiteID          uint            `json:"site_id" gorm:"not null;index"`
	Name            string          `json:"name" gorm:"not null"`
	TotalCapacityKg decimal.Decimal `json:"total_capacity_kg" gorm:"type:decimal(14,2);not null"`
	UsedCapacityKg  decimal.Decimal `json:"used_capacity_kg" gorm:"type:decimal(14,2);not null"`
	Status          AssetStatus     `json:"status" gorm:"type:varchar(20);default:'AVAILABLE'"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `json:"deleted_at" gorm:"index"`
}

func (a *ColdRoom) GetID() uint            { return a.ID }
func (a *ColdRoom) GetSiteID() uint        { return a.SiteID }
func (a *ColdRoom) GetStatus() AssetStatus { return a.Status }
