package repository

import (
	"coldchain/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	Create(product *models.Product) error
	GetByID(siteID, id uint) (*models.Product, error)
	GetByIDs(siteID uint, ids []uint) ([]models.Product, error)
	GetBySite(siteID uint) ([]models.Product, error)
	// GetByIDForUpdate takes a write lock on the product row; the stock
	// ledger uses it so concurrent reservations serialize on the balance.
	GetByIDForUpdate(tx *gorm.DB, id uint) (*models.Product, error)
	Save(tx *gorm.DB, product *models.Product) error
	Delete(siteID, id uint) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepository) GetByID(siteID, id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.Where("site_id = ?", siteID).First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) GetByIDs(siteID uint, ids []uint) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Where("site_id = ? AND id IN ?", siteID, ids).Find(&products).Error
	return products, err
}

func (r *productRepository) GetBySite(siteID uint) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Where("site_id = ?", siteID).Find(&products).Error
	return products, err
}

func (r *productRepository) GetByIDForUpdate(tx *gorm.DB, id uint) (*models.Product, error) {
	var product models.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) Save(tx *gorm.DB, product *models.Product) error {
	return tx.Save(product).Error
}

func (r *productRepository) Delete(siteID, id uint) error {
	return r.db.Where("site_id = ?", siteID).Delete(&models.Product{}, id).Error
}
