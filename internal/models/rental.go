package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RentalStatus string

const (
	RentalRequested RentalStatus = "REQUESTED"
	RentalApproved  RentalStatus = "APPROVED"
	RentalActive    RentalStatus = "ACTIVE"
	RentalCompleted RentalStatus = "COMPLETED"
)

// rentalTransitions is strictly linear; no state may be skipped.
var rentalTransitions = map[RentalStatus]RentalStatus{
	RentalRequested: RentalApproved,
	RentalApproved:  RentalActive,
	RentalActive:    RentalCompleted,
}

func CanTransitionRental(from, to RentalStatus) bool {
	return rentalTransitions[from] == to
}

// Rental tracks one asset hire. Exactly one of the asset foreign keys is
// set, and it must agree with AssetType.
type Rental struct {
	ID              uint             `json:"id" gorm:"primaryKey"`
	ClientID        uint             `json:"client_id" gorm:"not null;index"`
	SiteID          uint             `json:"site_id" gorm:"not null;index"`
	AssetType       AssetType        `json:"asset_type" gorm:"type:varchar(20);not null"`
	ColdBoxID       *uint            `json:"cold_box_id" gorm:"index"`
	ColdPlateID     *uint            `json:"cold_plate_id" gorm:"index"`
	TricycleID      *uint            `json:"tricycle_id" gorm:"index"`
	ColdRoomID      *uint            `json:"cold_room_id" gorm:"index"`
	RentalStartDate time.Time        `json:"rental_start_date" gorm:"not null"`
	RentalEndDate   time.Time        `json:"rental_end_date" gorm:"not null"`
	EstimatedFee    decimal.Decimal  `json:"estimated_fee" gorm:"type:decimal(14,2);not null"`
	ActualFee       *decimal.Decimal `json:"actual_fee" gorm:"type:decimal(14,2)"`
	Status          RentalStatus     `json:"status" gorm:"type:varchar(20);default:'REQUESTED'"`
	ApprovedBy      *uint            `json:"approved_by"`
	ApprovedAt      *time.Time       `json:"approved_at"`
	ActivatedAt     *time.Time       `json:"activated_at"`
	CompletedAt     *time.Time       `json:"completed_at"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	DeletedAt       gorm.DeletedAt   `json:"deleted_at" gorm:"index"`
}

// AssetID returns the single asset reference matching AssetType, or 0 if
// the reference for that type is unset.
func (r *Rental) AssetID() uint {
	var ref *uint
	switch r.AssetType {
	case AssetColdBox:
		ref = r.ColdBoxID
	case AssetColdPlate:
		ref = r.ColdPlateID
	case AssetTricycle:
		ref = r.TricycleID
	case AssetColdRoom:
		ref = r.ColdRoomID
	}
	if ref == nil {
		return 0
	}
	return *ref
}

// ReferenceCount counts how many asset foreign keys are set. A valid
// rental has exactly one.
func (r *Rental) ReferenceCount() int {
	count := 0
	for _, ref := range []*uint{r.ColdBoxID, r.ColdPlateID, r.TricycleID, r.ColdRoomID} {
		if ref != nil {
			count++
		}
	}
	return count
}
