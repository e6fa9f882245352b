package models

import (
	"psm/src/types"
	"time"
)

type Booking struct {
	ID             uint                `gorm:"primarykey" json:"id"`
	ClientID       uint                `json:"client_id,omitempty"`
	ProfessionalID uint                `gorm:"index:idx_bookings_prof_window" json:"professional_id,omitempty"`
	Status         types.BookingStatus `gorm:"default:'pending'" json:"status,omitempty"`
	StartTime      time.Time           `gorm:"index:idx_bookings_prof_window" json:"start_time,omitempty"`
	EndTime        time.Time           `json:"end_time,omitempty"`
	Amount         int64               `json:"amount,omitempty"`
	Currency       string              `json:"currency,omitempty"`
	Notes          string              `json:"notes,omitempty"`
	CancelReason   string              `json:"cancel_reason,omitempty"`
	CancelledBy    string              `json:"cancelled_by,omitempty"`

	// HoldExpiresAt bounds how long a pending booking occupies its slot.
	// EarningsCredited flips exactly once, when completion pays out.
	HoldExpiresAt    *time.Time `json:"hold_expires_at,omitempty"`
	EarningsCredited bool       `gorm:"default:false" json:"-"`

	Client       User         `gorm:"foreignKey:client_id" json:"-"`
	Professional Professional `gorm:"foreignKey:professional_id" json:"-"`
	Payments     []Payment    `gorm:"foreignKey:booking_id" json:"payments,omitempty"`
	Disputes     []Dispute    `gorm:"foreignKey:booking_id" json:"disputes,omitempty"`

	types.Timestamps
}
