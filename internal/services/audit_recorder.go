package services

import (
	"coldchain/internal/config"
	"coldchain/internal/models"
	"coldchain/internal/repository"

	"github.com/sirupsen/logrus"
)

// AuditRecorder appends audit facts after the business transaction has
// committed. A failed append is logged and swallowed; it never rolls
// back or fails the operation it describes.
type AuditRecorder interface {
	Record(actorID uint, action, entityType string, entityID uint, details string)
}

type auditRecorder struct {
	auditRepo repository.AuditRepository
	logger    *logrus.Logger
}

func NewAuditRecorder(auditRepo repository.AuditRepository, logger *logrus.Logger) AuditRecorder {
	return &auditRecorder{auditRepo: auditRepo, logger: logger}
}

func (a *auditRecorder) Record(actorID uint, action, entityType string, entityID uint, details string) {
	event := &models.AuditEvent{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	}
	if err := a.auditRepo.Create(event); err != nil {
		config.LogError(a.logger, "audit_recorder.go", "Record", action, event, err)
	}
}
