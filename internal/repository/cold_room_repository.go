package repository

import (
	"coldchain/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ColdRoomRepository is the capacity-tracking view of cold rooms used by
// the stock ledger. Status writes still go through AssetRepository.
type ColdRoomRepository interface {
	Create(room *models.ColdRoom) error
	GetByID(siteID, id uint) (*models.ColdRoom, error)
	GetByIDForUpdate(tx *gorm.DB, id uint) (*models.ColdRoom, error)
	GetBySite(siteID uint) ([]models.ColdRoom, error)
	Save(tx *gorm.DB, room *models.ColdRoom) error
}

type coldRoomRepository struct {
	db *gorm.DB
}

func NewColdRoomRepository(db *gorm.DB) ColdRoomRepository {
	return &coldRoomRepository{db: db}
}

func (r *coldRoomRepository) Create(room *models.ColdRoom) error {
	return r.db.Create(room).Error
}

func (r *coldRoomRepository) GetByID(siteID, id uint) (*models.ColdRoom, error) {
	var room models.ColdRoom
	err := r.db.Where("site_id = ?", siteID).First(&room, id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *coldRoomRepository) GetByIDForUpdate(tx *gorm.DB, id uint) (*models.ColdRoom, error) {
	var room models.ColdRoom
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&room, id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *coldRoomRepository) GetBySite(siteID uint) ([]models.ColdRoom, error) {
	var rooms []models.ColdRoom
	err := r.db.Where("site_id = ?", siteID).Find(&rooms).Error
	return rooms, err
}

func (r *coldRoomRepository) Save(tx *gorm.DB, room *models.ColdRoom) error {
	return tx.Save(room).Error
}
