package repository

import (
	"coldchain/internal/models"

	"gorm.io/gorm"
)

type RentalRepository interface {
	Create(rental *models.Rental) error
	GetByID(siteID, id uint) (*models.Rental, error)
	GetByIDTx(tx *gorm.DB, siteID, id uint) (*models.Rental, error)
	// GetByIDAnySite loads a rental without tenant scoping; see
	// OrderRepository.GetByIDAnySite for the masking contract.
	GetByIDAnySite(tx *gorm.DB, id uint) (*models.Rental, error)
	GetBySite(siteID uint) ([]models.Rental, error)
	// UpdateStatusIf is the optimistic concurrency gate: the row is only
	// touched when it is still in the expected state, and the affected
	// row count tells the caller whether it won the race.
	UpdateStatusIf(tx *gorm.DB, id uint, from, to models.RentalStatus, updates map[string]interface{}) (int64, error)
}

type rentalRepository struct {
	db *gorm.DB
}

func NewRentalRepository(db *gorm.DB) RentalRepository {
	return &rentalRepository{db: db}
}

func (r *rentalRepository) Create(rental *models.Rental) error {
	return r.db.Create(rental).Error
}

func (r *rentalRepository) GetByID(siteID, id uint) (*models.Rental, error) {
	return r.GetByIDTx(r.db, siteID, id)
}

func (r *rentalRepository) GetByIDTx(tx *gorm.DB, siteID, id uint) (*models.Rental, error) {
	var rental models.Rental
	err := tx.Where("site_id = ?", siteID).First(&rental, id).Error
	if err != nil {
		return nil, err
	}
	return &rental, nil
}

func (r *rentalRepository) GetByIDAnySite(tx *gorm.DB, id uint) (*models.Rental, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	var rental models.Rental
	err := db.First(&rental, id).Error
	if err != nil {
		return nil, err
	}
	return &rental, nil
}

func (r *rentalRepository) GetBySite(siteID uint) ([]models.Rental, error) {
	var rentals []models.Rental
	err := r.db.Where("site_id = ?", siteID).Find(&rentals).Error
	return rentals, err
}

func (r *rentalRepository) UpdateStatusIf(tx *gorm.DB, id uint, from, to models.RentalStatus, updates map[string]interface{}) (int64, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = to
	result := tx.Model(&models.Rental{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}
