package models

import (
	"psm/src/types"
	"time"
)

type User struct {
	ID            uint         `gorm:"primarykey" json:"id"`
	Name          string       `json:"name,omitempty"`
	Email         string       `gorm:"uniqueIndex" json:"email,omitempty"`
	Role          types.Role   `gorm:"default:'client'" json:"role,omitempty"`
	UID           string       `json:"uid,omitempty"`
	EmailVerified bool         `json:"email_verified,omitempty"`
	VerifiedAt    *time.Time   `json:"verified_at,omitempty"`
	Metadata      *types.JSONB `gorm:"type:jsonb"`

	Bookings     []Booking     `gorm:"foreignKey:client_id" json:"bookings,omitempty"`
	Professional *Professional `gorm:"foreignKey:user_id" json:"professional,omitempty"`

	types.Timestamps
}
