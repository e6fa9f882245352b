package utils

import (
	"context"
	"fmt"
	"log"
	"psm/src/db"
	"psm/src/lib"
	"psm/src/models"
	"psm/src/types"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateCheckout opens a gateway session for a pending booking and records
// the payment attempt. The gateway round trip happens before the insert so
// no half-open payment row survives a gateway failure.
func CreateCheckout(userId uint, params *types.CreateCheckoutRequestBody) (*models.Payment, error) {
	conn := db.GetDb()
	var booking models.Booking
	if err := conn.
		Where(&models.Booking{ID: params.BookingID}).
		Preload("Client").
		First(&booking).Error; err != nil {
		return nil, types.ErrNotFound
	}
	if booking.ClientID != userId {
		return nil, types.ErrPermissionDenied
	}
	if booking.Status != types.BOOKING_PENDING {
		return nil, types.ErrStateConflict
	}
	if booking.HoldExpiresAt != nil && booking.HoldExpiresAt.Before(time.Now()) {
		return nil, types.ErrStateConflict
	}

	gateway, err := lib.GetPaymentGateway(params.Method)
	if err != nil {
		return nil, err
	}
	paymentId := uuid.New()
	session, err := gateway.Initiate(context.Background(), &lib.InitiatePaymentInput{
		PaymentID: paymentId,
		BookingID: booking.ID,
		Amount:    booking.Amount,
		Currency:  booking.Currency,
		Payer:     booking.Client.Name,
	})
	if err != nil {
		log.Printf("Gateway initiate failed: %s\n", err.Error())
		return nil, err
	}

	payment := models.Payment{
		ID:            paymentId,
		BookingID:     booking.ID,
		Method:        params.Method,
		Status:        types.PAYMENT_PENDING,
		Amount:        booking.Amount,
		Currency:      booking.Currency,
		TransactionID: session.TransactionID,
		GatewayURL:    session.RedirectURL,
	}
	err = conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		return RecordAudit(tx, "payment.checkout", fmt.Sprintf("user:%d", userId), "payments", payment.ID.String(), nil, types.JSONB{
			"method":         payment.Method,
			"transaction_id": payment.TransactionID,
		})
	})
	if err != nil {
		return nil, err
	}

	if rdb := lib.GetRedisClient(); rdb != nil {
		go func() {
			key := fmt.Sprintf("payments:trx:%s", session.TransactionID)
			if err := rdb.Set(context.Background(), key, paymentId.String(), 24*time.Hour).Err(); err != nil {
				log.Printf("Failed to cache transaction key %s: %s\n", key, err.Error())
			}
		}()
	}
	return &payment, nil
}

// ApplyGatewayResult settles a payment by its gateway reference. Replays of
// an already-applied outcome are no-ops; conflicting outcomes surface as
// state conflicts. A success landing after the booking's hold lapsed is
// stale: the slot may already belong to someone else, so it must not
// resurrect the booking.
func ApplyGatewayResult(transactionId string, paid bool, raw types.JSONB) error {
	conn := db.GetDb()
	var settledBooking uint
	err := conn.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Payment{TransactionID: transactionId}).
			First(&payment).Error; err != nil {
			return types.ErrNotFound
		}
		if payment.Status != types.PAYMENT_PENDING {
			if (paid && payment.Status == types.PAYMENT_PAID) || (!paid && payment.Status == types.PAYMENT_FAILED) {
				return nil
			}
			return types.ErrStateConflict
		}
		if paid {
			var booking models.Booking
			if err := tx.
				Clauses(clause.Locking{Strength: "UPDATE"}).
				Where(&models.Booking{ID: payment.BookingID}).
				First(&booking).Error; err != nil {
				return types.ErrNotFound
			}
			if booking.HoldExpiresAt != nil && booking.HoldExpiresAt.Before(time.Now()) {
				return types.ErrStateConflict
			}
		}

		newStatus := types.PAYMENT_FAILED
		if paid {
			newStatus = types.PAYMENT_PAID
		}
		if err := tx.
			Model(&models.Payment{}).
			Where(&models.Payment{ID: payment.ID}).
			Updates(map[string]any{
				"status":   newStatus,
				"metadata": raw,
			}).Error; err != nil {
			return err
		}

		if paid {
			if err := transitionBooking(tx, payment.BookingID, types.BOOKING_PENDING, types.BOOKING_PAID, map[string]any{
				"hold_expires_at": nil,
			}); err != nil {
				return err
			}
		} else {
			if err := transitionBooking(tx, payment.BookingID, types.BOOKING_PENDING, types.BOOKING_CANCELED, map[string]any{
				"cancel_reason": "payment failed",
				"cancelled_by":  fmt.Sprintf("gateway:%s", payment.Method),
			}); err != nil {
				return err
			}
		}
		settledBooking = payment.BookingID
		return RecordAudit(tx, "payment.settle", fmt.Sprintf("gateway:%s", payment.Method), "payments", payment.ID.String(), types.JSONB{
			"status": types.PAYMENT_PENDING,
		}, types.JSONB{
			"status": newStatus,
		})
	})
	if err != nil {
		return err
	}
	if settledBooking != 0 {
		if paid {
			NotifyBookingByID(settledBooking, "Payment received", "Your payment was received and the booking is awaiting confirmation")
		} else {
			NotifyBookingByID(settledBooking, "Payment failed", "The payment did not go through and the booking was released")
		}
	}
	return nil
}

// VerifyGatewayCallback re-checks a callback against the gateway before
// settling. Callback parameters alone are never trusted.
func VerifyGatewayCallback(method types.PaymentMethod, transactionId string) error {
	gateway, err := lib.GetPaymentGateway(method)
	if err != nil {
		return err
	}
	result, err := gateway.Verify(context.Background(), transactionId)
	if err != nil {
		return err
	}
	return ApplyGatewayResult(result.TransactionID, result.Paid, result.Raw)
}

// ConfirmCashPayment is the professional acknowledging cash received for a
// pending cash checkout.
func ConfirmCashPayment(profUserId uint, bookingId uint) error {
	conn := db.GetDb()
	err := conn.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Payment{BookingID: bookingId, Method: types.METHOD_CASH, Status: types.PAYMENT_PENDING}).
			Preload("Booking.Professional").
			First(&payment).Error; err != nil {
			return types.ErrNotFound
		}
		if payment.Booking.Professional.UserID != profUserId {
			return types.ErrPermissionDenied
		}
		if payment.Booking.HoldExpiresAt != nil && payment.Booking.HoldExpiresAt.Before(time.Now()) {
			return types.ErrStateConflict
		}
		if err := tx.
			Model(&models.Payment{}).
			Where(&models.Payment{ID: payment.ID}).
			Update("status", types.PAYMENT_PAID).Error; err != nil {
			return err
		}
		if err := transitionBooking(tx, bookingId, types.BOOKING_PENDING, types.BOOKING_PAID, map[string]any{
			"hold_expires_at": nil,
		}); err != nil {
			return err
		}
		return RecordAudit(tx, "payment.cash_confirm", fmt.Sprintf("user:%d", profUserId), "payments", payment.ID.String(), types.JSONB{
			"status": types.PAYMENT_PENDING,
		}, types.JSONB{
			"status": types.PAYMENT_PAID,
		})
	})
	if err != nil {
		return err
	}
	NotifyBookingByID(bookingId, "Payment received", "The cash payment was confirmed and the booking is awaiting confirmation")
	return nil
}

// RefundBookingPayment flags the booking's paid payment refunded. A nil
// amount refunds in full; a partial amount may not exceed what was paid.
// Runs inside the caller's transaction.
func RefundBookingPayment(tx *gorm.DB, bookingId uint, amount *int64) error {
	var payment models.Payment
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(&models.Payment{BookingID: bookingId, Status: types.PAYMENT_PAID}).
		First(&payment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}
	refund := payment.Amount
	if amount != nil {
		if *amount > payment.Amount {
			return types.ErrStateConflict
		}
		refund = *amount
	}
	refundTrx := fmt.Sprintf("refund-%s", uuid.NewString())
	if err := tx.
		Model(&models.Payment{}).
		Where(&models.Payment{ID: payment.ID}).
		Updates(map[string]any{
			"status":        types.PAYMENT_REFUNDED,
			"refund_amount": refund,
			"refund_trx_id": refundTrx,
		}).Error; err != nil {
		return err
	}
	return RecordAudit(tx, "payment.refund", "system", "payments", payment.ID.String(), types.JSONB{
		"status": types.PAYMENT_PAID,
	}, types.JSONB{
		"status":        types.PAYMENT_REFUNDED,
		"refund_amount": refund,
		"refund_trx_id": refundTrx,
	})
}
