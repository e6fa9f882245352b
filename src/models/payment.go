package models

import (
	"psm/src/types"

	"github.com/google/uuid"
)

type Payment struct {
	ID uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`

	BookingID uint                `json:"booking_id,omitempty"`
	Method    types.PaymentMethod `json:"method,omitempty"`
	Status    types.PaymentStatus `gorm:"default:'pending'" json:"status,omitempty"`
	Amount    int64               `json:"amount,omitempty"`
	Currency  string              `json:"currency,omitempty"`

	// TransactionID is the gateway's reference. Callbacks are keyed on it,
	// so it carries a unique index to keep replays idempotent.
	TransactionID string      `gorm:"uniqueIndex" json:"transaction_id,omitempty"`
	GatewayURL    string      `json:"gateway_url,omitempty"`
	RefundAmount  int64       `json:"refund_amount,omitempty"`
	RefundTrxID   string      `json:"refund_trx_id,omitempty"`
	Metadata      types.JSONB `gorm:"type:jsonb" json:"metadata,omitempty"`

	types.Timestamps

	Booking Booking `gorm:"foreignKey:booking_id" json:"-"`
}
