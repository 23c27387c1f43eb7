package repository

import (
	"coldchain/internal/apperrors"
	"coldchain/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AssetRepository resolves the closed set of rentable asset variants with
// a typed switch. No dynamic model lookup by string key.
type AssetRepository interface {
	// Create persists a concrete asset; the interface value must hold a
	// pointer to one of the variant structs.
	Create(asset models.RentableAsset) error
	Get(tx *gorm.DB, assetType models.AssetType, id uint) (models.RentableAsset, error)
	GetForUpdate(tx *gorm.DB, assetType models.AssetType, id uint) (models.RentableAsset, error)
	UpdateStatus(tx *gorm.DB, assetType models.AssetType, id uint, status models.AssetStatus) error
}

type assetRepository struct {
	db *gorm.DB
}

func NewAssetRepository(db *gorm.DB) AssetRepository {
	return &assetRepository{db: db}
}

func (r *assetRepository) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func fetchAsset[T any, PT interface {
	models.RentableAsset
	*T
}](db *gorm.DB, id uint) (models.RentableAsset, error) {
	var asset T
	if err := db.First(&asset, id).Error; err != nil {
		return nil, err
	}
	return PT(&asset), nil
}

func (r *assetRepository) get(db *gorm.DB, assetType models.AssetType, id uint) (models.RentableAsset, error) {
	switch assetType {
	case models.AssetColdBox:
		return fetchAsset[models.ColdBox](db, id)
	case models.AssetColdPlate:
		return fetchAsset[models.ColdPlate](db, id)
	case models.AssetTricycle:
		return fetchAsset[models.Tricycle](db, id)
	case models.AssetColdRoom:
		return fetchAsset[models.ColdRoom](db, id)
	default:
		return nil, apperrors.BadRequest("unknown asset type %q", assetType)
	}
}

func (r *assetRepository) Create(asset models.RentableAsset) error {
	return r.db.Create(asset).Error
}

func (r *assetRepository) Get(tx *gorm.DB, assetType models.AssetType, id uint) (models.RentableAsset, error) {
	return r.get(r.handle(tx), assetType, id)
}

func (r *assetRepository) GetForUpdate(tx *gorm.DB, assetType models.AssetType, id uint) (models.RentableAsset, error) {
	return r.get(r.handle(tx).Clauses(clause.Locking{Strength: "UPDATE"}), assetType, id)
}

func (r *assetRepository) UpdateStatus(tx *gorm.DB, assetType models.AssetType, id uint, status models.AssetStatus) error {
	db := r.handle(tx)
	var err error
	switch assetType {
	case models.AssetColdBox:
		err = db.Model(&models.ColdBox{}).Where("id = ?", id).Update("status", status).Error
	case models.AssetColdPlate:
		err = db.Model(&models.ColdPlate{}).Where("id = ?", id).Update("status", status).Error
	case models.AssetTricycle:
		err = db.Model(&models.Tricycle{}).Where("id = ?", id).Update("status", status).Error
	case models.AssetColdRoom:
		err = db.Model(&models.ColdRoom{}).Where("id = ?", id).Update("status", status).Error
	default:
		return apperrors.BadRequest("unknown asset type %q", assetType)
	}
	return err
}
