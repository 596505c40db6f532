package services

import (
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/hackorbit/team-service/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AddOutboxEvent inserts one search-sync event. Callers pass their open
// transaction so the event commits together with the entity change.
func AddOutboxEvent(tx *gorm.DB, entityType string, entityID uuid.UUID, op string, payload any) error {
	data, _ := json.Marshal(payload)

	event := models.Outbox{
		EntityType: entityType,
		EntityID:   entityID,
		Op:         op,
		Payload:    datatypes.JSON(data),
	}

	if err := tx.Create(&event).Error; err != nil {
		log.Printf("❌ Failed to create outbox event: %v", err)
		return err
	}
	return nil
}

// AddBatchOutboxEvents inserts multiple events efficiently.
// Used for cascading updates (e.g., reindex all teams of a hackathon).
func AddBatchOutboxEvents(tx *gorm.DB, entityType string, op string, ids []uuid.UUID) error {
	for _, id := range ids {
		event := models.Outbox{
			EntityType: entityType,
			EntityID:   id,
			Op:         op,
		}
		if err := tx.Create(&event).Error; err != nil {
			log.Printf("❌ Failed to insert batch outbox for %s: %v", entityType, err)
			return err
		}
	}
	log.Printf("📦 %d outbox events created for %s", len(ids), entityType)
	return nil
}
