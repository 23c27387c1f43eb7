package models

import "time"

// AuditEvent is a fire-and-forget fact appended after a state
// transition commits. It is never part of the business transaction.
type AuditEvent struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ActorID    uint      `json:"actor_id" gorm:"index"`
	Action     string    `json:"action" gorm:"not null"`
	EntityType string    `json:"entity_type" gorm:"not null;index"`
	EntityID   uint      `json:"entity_id" gorm:"index"`
	Details    string    `json:"details" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`
}
