package models

import (
	"psm/src/types"
	"time"
)

type Earning struct {
	ID             uint   `gorm:"primarykey" json:"id"`
	ProfessionalID uint   `gorm:"uniqueIndex" json:"professional_id,omitempty"`
	Currency       string `json:"currency,omitempty"`

	// Total = Pending + Withdrawn holds after every ledger operation.
	// Credits raise Total and Pending together; an approved withdrawal
	// moves the amount from Pending to Withdrawn and leaves Total alone.
	Total     int64 `gorm:"default:0" json:"total"`
	Pending   int64 `gorm:"default:0" json:"pending"`
	Withdrawn int64 `gorm:"default:0" json:"withdrawn"`

	Professional Professional `gorm:"foreignKey:professional_id" json:"-"`

	types.Timestamps
}

type WithdrawRequest struct {
	ID             uint                 `gorm:"primarykey" json:"id"`
	ProfessionalID uint                 `json:"professional_id,omitempty"`
	Amount         int64                `json:"amount,omitempty"`
	Currency       string               `json:"currency,omitempty"`
	Method         string               `json:"method,omitempty"`
	Status         types.WithdrawStatus `gorm:"default:'pending'" json:"status,omitempty"`
	Reason         string               `json:"reason,omitempty"`
	ProcessedByID  *uint                `json:"processed_by,omitempty"`
	ProcessedAt    *time.Time           `json:"processed_at,omitempty"`

	Professional Professional `gorm:"foreignKey:professional_id" json:"-"`
	ProcessedBy  *User        `gorm:"foreignKey:processed_by_id" json:"-"`

	types.Timestamps
}
