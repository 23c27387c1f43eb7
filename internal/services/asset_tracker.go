package services

import (
	"errors"

	"coldchain/internal/models"
	"coldchain/internal/repository"

	"gorm.io/gorm"
)

// AssetTracker owns the status field of every rentable asset. Status
// writes always happen inside the caller's transaction so the asset and
// the owning rental commit or abort together.
type AssetTracker interface {
	// CheckAvailability is true iff the asset exists, belongs to siteID,
	// is not soft-deleted and its status is AVAILABLE.
	CheckAvailability(tx *gorm.DB, assetType models.AssetType, assetID, siteID uint) (bool, error)
	MarkRented(tx *gorm.DB, assetType models.AssetType, assetID uint) error
	MarkAvailable(tx *gorm.DB, assetType models.AssetType, assetID uint) error
}

type assetTracker struct {
	assetRepo repository.AssetRepository
}

func NewAssetTracker(assetRepo repository.AssetRepository) AssetTracker {
	return &assetTracker{assetRepo: assetRepo}
}

func (t *assetTracker) CheckAvailability(tx *gorm.DB, assetType models.AssetType, assetID, siteID uint) (bool, error) {
	asset, err := t.assetRepo.Get(tx, assetType, assetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	if asset.GetSiteID() != siteID {
		return false, nil
	}
	return asset.GetStatus() == models.AssetAvailable, nil
}

func (t *assetTracker) MarkRented(tx *gorm.DB, assetType models.AssetType, assetID uint) error {
	return t.assetRepo.UpdateStatus(tx, assetType, assetID, models.AssetRented)
}

func (t *assetTracker) MarkAvailable(tx *gorm.DB, assetType models.AssetType, assetID uint) error {
	return t.assetRepo.UpdateStatus(tx, assetType, assetID, models.AssetAvailable)
}
