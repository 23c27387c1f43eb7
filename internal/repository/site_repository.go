package repository

import (
	"coldchain/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SiteRepository interface {
	Create(site *models.Site) error
	GetByID(id uint) (*models.Site, error)
	// GetByIDForUpdate locks the site row for the duration of tx. It is
	// the serialization point for invoice numbering.
	GetByIDForUpdate(tx *gorm.DB, id uint) (*models.Site, error)
	GetAll() ([]models.Site, error)
}

type siteRepository struct {
	db *gorm.DB
}

func NewSiteRepository(db *gorm.DB) SiteRepository {
	return &siteRepository{db: db}
}

func (r *siteRepository) Create(site *models.Site) error {
	return r.db.Create(site).Error
}

func (r *siteRepository) GetByID(id uint) (*models.Site, error) {
	var site models.Site
	err := r.db.First(&site, id).Error
	if err != nil {
		return nil, err
	}
	return &site, nil
}

func (r *siteRepository) GetByIDForUpdate(tx *gorm.DB, id uint) (*models.Site, error) {
	var site models.Site
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&site, id).Error
	if err != nil {
		return nil, err
	}
	return &site, nil
}

func (r *siteRepository) GetAll() ([]models.Site, error) {
	var sites []models.Site
	err := r.db.Find(&sites).Error
	return sites, err
}
