package utils

import (
	"fmt"
	"log"
	"psm/src/config"
	"psm/src/db"
	"psm/src/models"
	"psm/src/types"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// transitionBooking performs a guarded state change: the UPDATE carries the
// expected source status in its WHERE clause, so a concurrent transition
// makes RowsAffected come back zero instead of clobbering the row.
func transitionBooking(tx *gorm.DB, id uint, from types.BookingStatus, to types.BookingStatus, updates map[string]any) error {
	if updates == nil {
		updates = map[string]any{}
	}
	updates["status"] = to
	res := tx.
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.Booking{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return types.ErrNotFound
		}
		return types.ErrStateConflict
	}
	return nil
}

// ReserveSlot places a pending hold on one slot. Reservations for the same
// professional serialize on the professional row lock, so the overlap check
// and the insert are atomic against concurrent attempts.
func ReserveSlot(userId uint, params *types.ReserveSlotRequestBody) (*models.Booking, error) {
	start, err := time.Parse(config.TIME_PARSE_FORMAT, params.StartTime)
	if err != nil {
		log.Printf("Error parsing start_time: %s\n", err.Error())
		return nil, err
	}
	start = start.In(config.ScheduleLocation())
	duration := time.Duration(config.SessionDuration()) * time.Minute
	end := start.Add(duration)
	now := time.Now()
	if start.Before(now.Add(time.Duration(config.SlotLeadTime()) * time.Minute)) {
		return nil, types.ErrSlotConflict
	}

	conn := db.GetDb()
	var booking models.Booking
	err = conn.Transaction(func(tx *gorm.DB) error {
		var prof models.Professional
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Professional{ID: params.ProfessionalID}).
			First(&prof).Error; err != nil {
			return types.ErrNotFound
		}
		if prof.Status != types.PROFESSIONAL_APPROVED {
			return types.ErrStateConflict
		}
		weekly, err := ParseWeekly(prof.Weekly)
		if err != nil {
			return err
		}
		if !SlotMatchesSchedule(weekly, start, duration) {
			return types.ErrSlotConflict
		}

		var count int64
		if err := occupiedScope(tx, prof.ID, now).
			Where("start_time < ? AND end_time > ?", end, start).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return types.ErrSlotConflict
		}

		holdExpiresAt := now.Add(time.Duration(config.BookingHold()) * time.Minute)
		booking = models.Booking{
			ClientID:       userId,
			ProfessionalID: prof.ID,
			Status:         types.BOOKING_PENDING,
			StartTime:      start,
			EndTime:        end,
			Amount:         prof.HourlyRate * int64(duration.Minutes()) / 60,
			Currency:       prof.Currency,
			Notes:          params.Notes,
			HoldExpiresAt:  &holdExpiresAt,
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		return RecordAudit(tx, "booking.reserve", fmt.Sprintf("user:%d", userId), "bookings", fmt.Sprint(booking.ID), nil, types.JSONB{
			"status":     booking.Status,
			"start_time": booking.StartTime,
		})
	})
	if err != nil {
		return nil, err
	}
	InvalidateSlotCache(booking.ProfessionalID, start)
	return &booking, nil
}

// ConfirmBooking lets the professional accept a paid booking.
func ConfirmBooking(profUserId uint, bookingId uint) error {
	conn := db.GetDb()
	err := conn.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Booking{ID: bookingId}).
			Preload("Professional").
			First(&booking).Error; err != nil {
			return types.ErrNotFound
		}
		if booking.Professional.UserID != profUserId {
			return types.ErrPermissionDenied
		}
		if err := transitionBooking(tx, bookingId, types.BOOKING_PAID, types.BOOKING_CONFIRMED, nil); err != nil {
			return err
		}
		return RecordAudit(tx, "booking.confirm", fmt.Sprintf("user:%d", profUserId), "bookings", fmt.Sprint(bookingId), types.JSONB{
			"status": types.BOOKING_PAID,
		}, types.JSONB{
			"status": types.BOOKING_CONFIRMED,
		})
	})
	if err != nil {
		return err
	}
	NotifyBookingByID(bookingId, "Booking confirmed", "The professional has accepted the booking")
	return nil
}

// CompleteBooking marks a confirmed booking done and credits the
// professional's earnings. The earnings_credited guard in the WHERE clause
// keeps the credit at most once even if completion is retried.
func CompleteBooking(profUserId uint, bookingId uint) error {
	conn := db.GetDb()
	err := conn.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Booking{ID: bookingId}).
			Preload("Professional").
			First(&booking).Error; err != nil {
			return types.ErrNotFound
		}
		if booking.Professional.UserID != profUserId {
			return types.ErrPermissionDenied
		}
		if time.Now().Before(booking.StartTime) {
			return types.ErrStateConflict
		}
		res := tx.
			Model(&models.Booking{}).
			Where("id = ? AND status = ? AND earnings_credited = ?", bookingId, types.BOOKING_CONFIRMED, false).
			Updates(map[string]any{
				"status":            types.BOOKING_COMPLETED,
				"earnings_credited": true,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.ErrStateConflict
		}
		if err := CreditOnCompletion(tx, &booking); err != nil {
			return err
		}
		return RecordAudit(tx, "booking.complete", fmt.Sprintf("user:%d", profUserId), "bookings", fmt.Sprint(bookingId), types.JSONB{
			"status": types.BOOKING_CONFIRMED,
		}, types.JSONB{
			"status": types.BOOKING_COMPLETED,
		})
	})
	if err != nil {
		return err
	}
	NotifyBookingByID(bookingId, "Booking completed", "The session was marked complete")
	return nil
}

// CancelBooking lets the client walk away from a booking they have not yet
// paid for. Once money is held, cancellation must go through a dispute so a
// moderator adjudicates the refund; neither party can cancel unilaterally.
func CancelBooking(userId uint, bookingId uint, reason string) error {
	conn := db.GetDb()
	err := conn.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Booking{ID: bookingId}).
			First(&booking).Error; err != nil {
			return types.ErrNotFound
		}
		if booking.ClientID != userId {
			return types.ErrPermissionDenied
		}

		actor := fmt.Sprintf("user:%d", userId)
		if err := transitionBooking(tx, bookingId, types.BOOKING_PENDING, types.BOOKING_CANCELED, map[string]any{
			"cancel_reason": reason,
			"cancelled_by":  actor,
		}); err != nil {
			return err
		}
		return RecordAudit(tx, "booking.cancel", actor, "bookings", fmt.Sprint(bookingId), types.JSONB{
			"status": types.BOOKING_PENDING,
		}, types.JSONB{
			"status": types.BOOKING_CANCELED,
			"reason": reason,
		})
	})
	if err != nil {
		return err
	}
	NotifyBookingByID(bookingId, "Booking canceled", "The booking was canceled before payment")
	return nil
}

// ExpirePendingBookings releases slots whose payment hold lapsed. The
// scheduler runs it on a fixed interval.
func ExpirePendingBookings() {
	conn := db.GetDb()
	now := time.Now()
	err := conn.Transaction(func(tx *gorm.DB) error {
		var stale []models.Booking
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("status = ? AND hold_expires_at < ?", types.BOOKING_PENDING, now).
			Find(&stale).Error; err != nil {
			return err
		}
		for _, b := range stale {
			if err := transitionBooking(tx, b.ID, types.BOOKING_PENDING, types.BOOKING_CANCELED, map[string]any{
				"cancel_reason": "payment hold expired",
				"cancelled_by":  "system:reaper",
			}); err != nil {
				return err
			}
			if err := tx.
				Model(&models.Payment{}).
				Where(&models.Payment{BookingID: b.ID, Status: types.PAYMENT_PENDING}).
				Update("status", types.PAYMENT_FAILED).Error; err != nil {
				return err
			}
			if err := RecordAudit(tx, "booking.expire", "system:reaper", "bookings", fmt.Sprint(b.ID), types.JSONB{
				"status": types.BOOKING_PENDING,
			}, types.JSONB{
				"status": types.BOOKING_CANCELED,
			}); err != nil {
				return err
			}
		}
		if len(stale) > 0 {
			log.Printf("Expired %d pending bookings\n", len(stale))
		}
		return nil
	})
	if err != nil {
		log.Printf("ExpirePendingBookings failed: %s\n", err.Error())
	}
}
