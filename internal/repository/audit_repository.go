package repository

import (
	"coldchain/internal/models"

	"gorm.io/gorm"
)

type AuditRepository interface {
	Create(event *models.AuditEvent) error
	GetByEntity(entityType string, entityID uint) ([]models.AuditEvent, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(event *models.AuditEvent) error {
	return r.db.Create(event).Error
}

func (r *auditRepository) GetByEntity(entityType string, entityID uint) ([]models.AuditEvent, error) {
	var events []models.AuditEvent
	err := r.db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("id").Find(&events).Error
	return events, err
}
