package utils

import (
	"log"
	"psm/src/lib"
	"psm/src/models"
	"psm/src/types"

	"gorm.io/gorm"
)

// RecordAudit writes an audit row inside the caller's transaction so the
// trail commits or rolls back with the change it describes. The Kafka copy
// is best effort.
func RecordAudit(tx *gorm.DB, action string, actor string, entity string, entityID string, before types.JSONB, after types.JSONB) error {
	trail := models.AuditLog{
		Action:   action,
		Actor:    actor,
		Entity:   entity,
		EntityID: entityID,
		Before:   before,
		After:    after,
	}
	if err := tx.Create(&trail).Error; err != nil {
		log.Printf("Error recording audit trail: %s\n", err.Error())
		return err
	}
	go func() {
		payload := map[string]any{
			"action":    action,
			"actor":     actor,
			"entity":    entity,
			"entity_id": entityID,
			"before":    before,
			"after":     after,
		}
		if err := lib.KafkaProduceMessage("AuditTrailProducer", "AuditTrail", payload); err != nil {
			log.Printf("Error producing audit message: %s\n", err.Error())
		}
	}()
	return nil
}
