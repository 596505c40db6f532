package models

import (
	"time"

	"github.com/google/uuid"
)

// SyncDLQ holds outbox events that failed to index into Elasticsearch.
type SyncDLQ struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	OutboxID   int64     `gorm:"index"`
	EntityType string
	EntityID   string
	Op         string
	ErrorMsg   string
	Payload    []byte    `gorm:"type:bytea"`
	CreatedAt  time.Time `gorm:"default:CURRENT_TIMESTAMP"`
	RetriedAt  *time.Time
	Resolved   bool `gorm:"default:false"`
}

// NotificationDLQ holds per-recipient formation notifications that the
// delivery channel rejected. Enough identifiers are kept for manual
// follow-up (which hackathon, which team, which recipient).
type NotificationDLQ struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	HackathonID uuid.UUID `gorm:"type:uuid;index"`
	TeamID      uuid.UUID `gorm:"type:uuid;index"`
	RecipientID uuid.UUID `gorm:"type:uuid;index"`
	Payload     []byte    `gorm:"type:bytea"` // marshalled notify.Payload
	ErrorMsg    string
	CreatedAt   time.Time `gorm:"default:CURRENT_TIMESTAMP"`
	RetriedAt   *time.Time
	Resolved    bool `gorm:"default:false"`
}
