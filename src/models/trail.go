package models

import (
	"psm/src/types"

	"github.com/google/uuid"
)

type AuditLog struct {
	ID        uuid.UUID   `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	Action    string      `json:"action,omitempty"`
	Actor     string      `json:"actor,omitempty"`
	Entity    string      `json:"entity,omitempty"`
	EntityID  string      `json:"entity_id,omitempty"`
	Before    types.JSONB `gorm:"type:jsonb" json:"before,omitempty"`
	After     types.JSONB `gorm:"type:jsonb" json:"after,omitempty"`

	types.Timestamps
}
