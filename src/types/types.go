package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type Metadata map[string]any

type Env string

const (
	Local      Env = "local"
	Test       Env = "test"
	Production Env = "production"
)

type BookingStatus string

const (
	BOOKING_PENDING   BookingStatus = "pending"
	BOOKING_PAID      BookingStatus = "paid"
	BOOKING_CONFIRMED BookingStatus = "confirmed"
	BOOKING_COMPLETED BookingStatus = "completed"
	BOOKING_CANCELED  BookingStatus = "canceled"
)

// SlotOccupyingStatuses are the Booking states that block other clients
// from claiming the same interval.
var SlotOccupyingStatuses = []BookingStatus{
	BOOKING_PENDING,
	BOOKING_PAID,
	BOOKING_CONFIRMED,
}

type PaymentStatus string

const (
	PAYMENT_PENDING  PaymentStatus = "pending"
	PAYMENT_PAID     PaymentStatus = "paid"
	PAYMENT_FAILED   PaymentStatus = "failed"
	PAYMENT_REFUNDED PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	METHOD_BKASH       PaymentMethod = "bkash"
	METHOD_SSL_COMMERZ PaymentMethod = "ssl_commerz"
	METHOD_STRIPE      PaymentMethod = "stripe"
	METHOD_CASH        PaymentMethod = "cash"
)

type DisputeStatus string

const (
	DISPUTE_OPEN     DisputeStatus = "open"
	DISPUTE_RESOLVED DisputeStatus = "resolved"
	DISPUTE_REJECTED DisputeStatus = "rejected"
)

type DisputeType string

const (
	DISPUTE_BOOKING_CANCEL_REQUEST DisputeType = "booking_cancel_request"
	DISPUTE_RESCHEDULE_REQUEST     DisputeType = "reschedule_request"
	DISPUTE_USER_REPORT            DisputeType = "user_report"
	DISPUTE_GENERAL                DisputeType = "general"
)

type DisputeDecision string

const (
	DECISION_APPROVED DisputeDecision = "approved"
	DECISION_REJECTED DisputeDecision = "rejected"
)

type WithdrawStatus string

const (
	WITHDRAW_PENDING   WithdrawStatus = "pending"
	WITHDRAW_PROCESSED WithdrawStatus = "processed"
	WITHDRAW_REJECTED  WithdrawStatus = "rejected"
)

type ProfessionalStatus string

const (
	PROFESSIONAL_PENDING  ProfessionalStatus = "pending"
	PROFESSIONAL_VERIFIED ProfessionalStatus = "verified"
	PROFESSIONAL_APPROVED ProfessionalStatus = "approved"
	PROFESSIONAL_REJECTED ProfessionalStatus = "rejected"
)

type Role string

const (
	ROLE_CLIENT       Role = "client"
	ROLE_PROFESSIONAL Role = "professional"
	ROLE_MODERATOR    Role = "moderator"
	ROLE_ADMIN        Role = "admin"
)

// Capability is a closed set of moderation/admin actions. Roles map onto
// capabilities here instead of carrying free-form permission strings on the
// user row.
type Capability string

const (
	CAP_RESOLVE_DISPUTE     Capability = "resolve_dispute"
	CAP_APPROVE_WITHDRAW    Capability = "approve_withdraw"
	CAP_VERIFY_PROFESSIONAL Capability = "verify_professional"
	CAP_REVIEW_PROFILE      Capability = "review_profile"
)

var roleCapabilities = map[Role][]Capability{
	ROLE_MODERATOR: {
		CAP_RESOLVE_DISPUTE,
	},
	ROLE_ADMIN: {
		CAP_RESOLVE_DISPUTE,
		CAP_APPROVE_WITHDRAW,
		CAP_VERIFY_PROFESSIONAL,
		CAP_REVIEW_PROFILE,
	},
}

func RoleHasCapability(role Role, cap Capability) bool {
	for _, c := range roleCapabilities[role] {
		if c == cap {
			return true
		}
	}
	return false
}

type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	UID      string `json:"uid"`
	jwt.RegisteredClaims
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type ListSlotsQuery struct {
	Date string `form:"date" binding:"required"`
}

type ReserveSlotRequestBody struct {
	ProfessionalID uint   `json:"professional" binding:"required"`
	StartTime      string `json:"start_time" binding:"required,bookabledate" time_format:"2006-01-02 15:04:05 -07:00"`
	Notes          string `json:"notes,omitempty"`
}

type CreateCheckoutRequestBody struct {
	BookingID uint          `json:"booking" binding:"required"`
	Method    PaymentMethod `json:"method" binding:"required,oneof=bkash ssl_commerz stripe cash"`
}

type GatewayCallbackParams struct {
	Method PaymentMethod `uri:"method" binding:"required,oneof=bkash ssl_commerz"`
}

type CancelBookingRequestBody struct {
	Reason string `json:"reason,omitempty"`
}

type CreateDisputeRequestBody struct {
	BookingID   *uint       `json:"booking,omitempty"`
	Type        DisputeType `json:"type" binding:"required,oneof=booking_cancel_request reschedule_request user_report general"`
	Description string      `json:"description" binding:"required"`
	NewStart    *string     `json:"new_start,omitempty" binding:"omitempty,bookabledate" time_format:"2006-01-02 15:04:05 -07:00"`
}

type ResolveDisputeRequestBody struct {
	Decision     DisputeDecision `json:"decision" binding:"required,oneof=approved rejected"`
	Note         string          `json:"note,omitempty"`
	RefundAmount *int64          `json:"refund_amount,omitempty" binding:"omitempty,gt=0"`
}

type CreateWithdrawRequestBody struct {
	Amount int64  `json:"amount" binding:"required,gt=0"`
	Method string `json:"method" binding:"required"`
}

type RejectWithdrawRequestBody struct {
	Reason string `json:"reason" binding:"required"`
}

type CreateProfessionalRequestBody struct {
	Title      string `json:"title" binding:"required"`
	HourlyRate int64  `json:"hourly_rate" binding:"required,gt=0"`
	Currency   string `json:"currency" binding:"required"`
}

type AvailabilityWindowBody struct {
	Start string `json:"start" binding:"required"`
	End   string `json:"end" binding:"required"`
}

type UpdateAvailabilityRequestBody struct {
	Weekly map[string][]AvailabilityWindowBody `json:"weekly" binding:"required"`
}

type UpdateProfileRequestBody struct {
	Name       *string `json:"name,omitempty"`
	Bio        *string `json:"bio,omitempty"`
	HourlyRate *int64  `json:"hourly_rate,omitempty" binding:"omitempty,gt=0"`
	Currency   *string `json:"currency,omitempty"`
}

type VerifyProfessionalRequestBody struct {
	Decision DisputeDecision `json:"decision" binding:"required,oneof=approved rejected"`
	Note     string          `json:"note,omitempty"`
}
