package models

import (
	"psm/src/types"
	"time"
)

type Dispute struct {
	ID          uint                `gorm:"primarykey" json:"id"`
	BookingID   *uint               `json:"booking_id,omitempty"`
	RaisedByID  uint                `json:"raised_by,omitempty"`
	Type        types.DisputeType   `json:"type,omitempty"`
	Status      types.DisputeStatus `gorm:"default:'open'" json:"status,omitempty"`
	Description string              `json:"description,omitempty"`

	// NewStart is only set on reschedule requests.
	NewStart *time.Time `json:"new_start,omitempty"`

	Decision     types.DisputeDecision `json:"decision,omitempty"`
	ResolvedByID *uint                 `json:"resolved_by,omitempty"`
	ResolvedAt   *time.Time            `json:"resolved_at,omitempty"`
	Note         string                `json:"note,omitempty"`

	Booking    *Booking `gorm:"foreignKey:booking_id" json:"booking,omitempty"`
	RaisedBy   User     `gorm:"foreignKey:raised_by_id" json:"-"`
	ResolvedBy *User    `gorm:"foreignKey:resolved_by_id" json:"-"`

	types.Timestamps
}
