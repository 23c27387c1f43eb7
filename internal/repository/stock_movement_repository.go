package repository

import (
	"coldchain/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StockMovementRepository interface {
	Create(tx *gorm.DB, movement *models.StockMovement) error
	GetByID(id uint) (*models.StockMovement, error)
	GetByProduct(productID uint) ([]models.StockMovement, error)
	// SumSigned reconstructs a product balance from its ledger entries.
	SumSigned(productID uint) (decimal.Decimal, error)
}

type stockMovementRepository struct {
	db *gorm.DB
}

func NewStockMovementRepository(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepository{db: db}
}

func (r *stockMovementRepository) Create(tx *gorm.DB, movement *models.StockMovement) error {
	return tx.Create(movement).Error
}

func (r *stockMovementRepository) GetByID(id uint) (*models.StockMovement, error) {
	var movement models.StockMovement
	err := r.db.First(&movement, id).Error
	if err != nil {
		return nil, err
	}
	return &movement, nil
}

func (r *stockMovementRepository) GetByProduct(productID uint) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	err := r.db.Where("product_id = ?", productID).Order("id").Find(&movements).Error
	return movements, err
}

func (r *stockMovementRepository) SumSigned(productID uint) (decimal.Decimal, error) {
	var raw *string
	err := r.db.Model(&models.StockMovement{}).
		Where("product_id = ?", productID).
		Select("SUM(CASE WHEN direction = 'IN' THEN quantity_kg ELSE -quantity_kg END)").
		Scan(&raw).Error
	if err != nil {
		return decimal.Zero, err
	}
	if raw == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(*raw)
}
