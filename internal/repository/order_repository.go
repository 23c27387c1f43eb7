package repository

import (
	"coldchain/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	// Create persists the order together with its item snapshot.
	Create(order *models.Order) error
	GetByID(siteID, id uint) (*models.Order, error)
	// GetByIDForUpdate locks the order row inside tx and loads its items.
	GetByIDForUpdate(tx *gorm.DB, siteID, id uint) (*models.Order, error)
	// GetByIDAnySite loads an order without tenant scoping. Callers that
	// act on behalf of a site must compare SiteID themselves and mask a
	// mismatch as not-found.
	GetByIDAnySite(tx *gorm.DB, id uint) (*models.Order, error)
	GetBySite(siteID uint) ([]models.Order, error)
	GetByClient(clientID uint) ([]models.Order, error)
	Save(tx *gorm.DB, order *models.Order) error
	Delete(siteID, id uint) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

func (r *orderRepository) GetByID(siteID, id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").Where("site_id = ?", siteID).First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByIDForUpdate(tx *gorm.DB, siteID, id uint) (*models.Order, error) {
	var order models.Order
	err := tx.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "orders"}}).
		Preload("Items").
		Where("site_id = ?", siteID).
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByIDAnySite(tx *gorm.DB, id uint) (*models.Order, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	var order models.Order
	err := db.Preload("Items").First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetBySite(siteID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").Where("site_id = ?", siteID).Find(&orders).Error
	return orders, err
}

func (r *orderRepository) GetByClient(clientID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").Where("client_id = ?", clientID).Find(&orders).Error
	return orders, err
}

func (r *orderRepository) Save(tx *gorm.DB, order *models.Order) error {
	return tx.Omit("Items").Save(order).Error
}

func (r *orderRepository) Delete(siteID, id uint) error {
	return r.db.Where("site_id = ?", siteID).Delete(&models.Order{}, id).Error
}
