package utils

import (
	"fmt"
	"psm/src/config"
	"psm/src/db"
	"psm/src/models"
	"psm/src/types"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateDispute opens a dispute. Booking-bound types must come from one of
// the booking's parties, and reschedule requests carry the proposed start.
func CreateDispute(userId uint, params *types.CreateDisputeRequestBody) (*models.Dispute, error) {
	conn := db.GetDb()
	var dispute models.Dispute
	err := conn.Transaction(func(tx *gorm.DB) error {
		var newStart *time.Time
		if params.Type == types.DISPUTE_BOOKING_CANCEL_REQUEST || params.Type == types.DISPUTE_RESCHEDULE_REQUEST {
			if params.BookingID == nil {
				return types.ErrStateConflict
			}
			var booking models.Booking
			if err := tx.
				Where(&models.Booking{ID: *params.BookingID}).
				Preload("Professional").
				First(&booking).Error; err != nil {
				return types.ErrNotFound
			}
			if booking.ClientID != userId && booking.Professional.UserID != userId {
				return types.ErrPermissionDenied
			}
			if booking.Status != types.BOOKING_PAID && booking.Status != types.BOOKING_CONFIRMED {
				return types.ErrStateConflict
			}
			if params.Type == types.DISPUTE_RESCHEDULE_REQUEST {
				if params.NewStart == nil {
					return types.ErrStateConflict
				}
				start, err := time.Parse(config.TIME_PARSE_FORMAT, *params.NewStart)
				if err != nil {
					return err
				}
				newStart = &start
			}
		}
		dispute = models.Dispute{
			BookingID:   params.BookingID,
			RaisedByID:  userId,
			Type:        params.Type,
			Status:      types.DISPUTE_OPEN,
			Description: params.Description,
			NewStart:    newStart,
		}
		if err := tx.Create(&dispute).Error; err != nil {
			return err
		}
		return RecordAudit(tx, "dispute.open", fmt.Sprintf("user:%d", userId), "disputes", fmt.Sprint(dispute.ID), nil, types.JSONB{
			"type":       dispute.Type,
			"booking_id": dispute.BookingID,
		})
	})
	if err != nil {
		return nil, err
	}
	return &dispute, nil
}

// ResolveDispute applies a moderator decision. Approving a reschedule
// re-runs the slot availability check against the proposed time; a conflict
// rolls the whole resolution back and the dispute stays open.
func ResolveDispute(moderatorId uint, disputeId uint, params *types.ResolveDisputeRequestBody) error {
	conn := db.GetDb()
	var bookingId *uint
	err := conn.Transaction(func(tx *gorm.DB) error {
		var dispute models.Dispute
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Dispute{ID: disputeId}).
			First(&dispute).Error; err != nil {
			return types.ErrNotFound
		}
		bookingId = dispute.BookingID
		if dispute.Status != types.DISPUTE_OPEN {
			return types.ErrStateConflict
		}

		if params.Decision == types.DECISION_APPROVED {
			switch dispute.Type {
			case types.DISPUTE_BOOKING_CANCEL_REQUEST:
				if err := approveCancelRequest(tx, &dispute, params.RefundAmount); err != nil {
					return err
				}
			case types.DISPUTE_RESCHEDULE_REQUEST:
				if err := approveReschedule(tx, &dispute); err != nil {
					return err
				}
			}
		}

		newStatus := types.DISPUTE_REJECTED
		if params.Decision == types.DECISION_APPROVED {
			newStatus = types.DISPUTE_RESOLVED
		}
		now := time.Now()
		if err := tx.
			Model(&models.Dispute{}).
			Where("id = ? AND status = ?", disputeId, types.DISPUTE_OPEN).
			Updates(map[string]any{
				"status":         newStatus,
				"decision":       params.Decision,
				"note":           params.Note,
				"resolved_by_id": moderatorId,
				"resolved_at":    now,
			}).Error; err != nil {
			return err
		}
		return RecordAudit(tx, "dispute.resolve", fmt.Sprintf("user:%d", moderatorId), "disputes", fmt.Sprint(disputeId), types.JSONB{
			"status": types.DISPUTE_OPEN,
		}, types.JSONB{
			"status":   newStatus,
			"decision": params.Decision,
		})
	})
	if err != nil {
		return err
	}
	if bookingId != nil {
		NotifyBookingByID(*bookingId, "Dispute resolved", fmt.Sprintf("A moderator %s the dispute on this booking", params.Decision))
	}
	return nil
}

func approveCancelRequest(tx *gorm.DB, dispute *models.Dispute, refundAmount *int64) error {
	var booking models.Booking
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(&models.Booking{ID: *dispute.BookingID}).
		First(&booking).Error; err != nil {
		return types.ErrNotFound
	}
	if booking.Status != types.BOOKING_PAID && booking.Status != types.BOOKING_CONFIRMED {
		return types.ErrStateConflict
	}
	if err := transitionBooking(tx, booking.ID, booking.Status, types.BOOKING_CANCELED, map[string]any{
		"cancel_reason": "canceled by dispute resolution",
		"cancelled_by":  fmt.Sprintf("dispute:%d", dispute.ID),
	}); err != nil {
		return err
	}
	return RefundBookingPayment(tx, booking.ID, refundAmount)
}

func approveReschedule(tx *gorm.DB, dispute *models.Dispute) error {
	if dispute.NewStart == nil {
		return types.ErrStateConflict
	}
	var booking models.Booking
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(&models.Booking{ID: *dispute.BookingID}).
		First(&booking).Error; err != nil {
		return types.ErrNotFound
	}
	if booking.Status != types.BOOKING_PAID && booking.Status != types.BOOKING_CONFIRMED {
		return types.ErrStateConflict
	}

	var prof models.Professional
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(&models.Professional{ID: booking.ProfessionalID}).
		First(&prof).Error; err != nil {
		return types.ErrNotFound
	}
	weekly, err := ParseWeekly(prof.Weekly)
	if err != nil {
		return err
	}
	duration := booking.EndTime.Sub(booking.StartTime)
	start := dispute.NewStart.In(config.ScheduleLocation())
	end := start.Add(duration)
	if !SlotMatchesSchedule(weekly, start, duration) {
		return types.ErrSlotConflict
	}
	var count int64
	if err := occupiedScope(tx, prof.ID, time.Now()).
		Where("id <> ?", booking.ID).
		Where("start_time < ? AND end_time > ?", end, start).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return types.ErrSlotConflict
	}
	return tx.
		Model(&models.Booking{}).
		Where(&models.Booking{ID: booking.ID}).
		Updates(map[string]any{
			"start_time": start,
			"end_time":   end,
		}).Error
}
