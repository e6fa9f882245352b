package models

import (
	"psm/src/types"
	"time"
)

type Professional struct {
	ID         uint                     `gorm:"primarykey" json:"id"`
	UserID     uint                     `gorm:"uniqueIndex" json:"user_id,omitempty"`
	Title      string                   `json:"title,omitempty"`
	Bio        string                   `json:"bio,omitempty"`
	Slug       string                   `gorm:"uniqueIndex" json:"slug,omitempty"`
	HourlyRate int64                    `json:"hourly_rate,omitempty"`
	Currency   string                   `gorm:"default:'BDT'" json:"currency,omitempty"`
	Status     types.ProfessionalStatus `gorm:"default:'pending'" json:"status,omitempty"`
	VerifiedAt *time.Time               `json:"verified_at,omitempty"`
	ApprovedAt *time.Time               `json:"approved_at,omitempty"`

	// Weekly is the live availability schedule, keyed by weekday name with
	// a list of HH:MM windows. ProposedChanges holds a pending profile edit
	// awaiting moderator review; the live columns stay serving until then.
	Weekly          types.JSONB  `gorm:"type:jsonb" json:"weekly,omitempty"`
	ProposedChanges *types.JSONB `gorm:"type:jsonb" json:"proposed_changes,omitempty"`

	User     User      `gorm:"foreignKey:user_id" json:"-"`
	Bookings []Booking `gorm:"foreignKey:professional_id" json:"bookings,omitempty"`

	types.Timestamps
}
