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

// NetShare is the professional's cut of a gross amount after the platform
// commission, in the smallest currency unit. Integer math rounds down, so
// the platform keeps the remainder.
func NetShare(gross int64, ratePercent int64) int64 {
	return gross * (100 - ratePercent) / 100
}

// CreditOnCompletion adds the net share of a completed booking to the
// professional's pending balance. The upsert keys on professional_id so the
// first completion creates the ledger row.
func CreditOnCompletion(tx *gorm.DB, booking *models.Booking) error {
	net := NetShare(booking.Amount, config.CommissionRate())
	earning := models.Earning{
		ProfessionalID: booking.ProfessionalID,
		Currency:       booking.Currency,
		Total:          net,
		Pending:        net,
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "professional_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"total":   gorm.Expr("earnings.total + ?", net),
			"pending": gorm.Expr("earnings.pending + ?", net),
		}),
	}).Create(&earning).Error; err != nil {
		return err
	}
	return RecordAudit(tx, "earnings.credit", "system", "earnings", fmt.Sprint(booking.ProfessionalID), nil, types.JSONB{
		"booking_id": booking.ID,
		"net":        net,
	})
}

func GetEarnings(professionalId uint) (*models.Earning, error) {
	conn := db.GetDb()
	var earning models.Earning
	err := conn.Where(&models.Earning{ProfessionalID: professionalId}).First(&earning).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &models.Earning{ProfessionalID: professionalId}, nil
		}
		return nil, err
	}
	return &earning, nil
}

// CreateWithdrawRequest records a payout request. The balance is only
// debited at approval time, so the request is re-checked then.
func CreateWithdrawRequest(profUserId uint, params *types.CreateWithdrawRequestBody) (*models.WithdrawRequest, error) {
	conn := db.GetDb()
	var request models.WithdrawRequest
	err := conn.Transaction(func(tx *gorm.DB) error {
		var prof models.Professional
		if err := tx.Where(&models.Professional{UserID: profUserId}).First(&prof).Error; err != nil {
			return types.ErrNotFound
		}
		var earning models.Earning
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Earning{ProfessionalID: prof.ID}).
			First(&earning).Error; err != nil {
			return types.ErrInsufficientBalance
		}
		if params.Amount > earning.Pending {
			return types.ErrInsufficientBalance
		}
		request = models.WithdrawRequest{
			ProfessionalID: prof.ID,
			Amount:         params.Amount,
			Currency:       earning.Currency,
			Method:         params.Method,
			Status:         types.WITHDRAW_PENDING,
		}
		if err := tx.Create(&request).Error; err != nil {
			return err
		}
		return RecordAudit(tx, "withdraw.request", fmt.Sprintf("user:%d", profUserId), "withdraw_requests", fmt.Sprint(request.ID), nil, types.JSONB{
			"amount": request.Amount,
		})
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// ApproveWithdraw moves the amount from pending to withdrawn. Both rows are
// locked and the balance is re-checked, since completions and other
// withdrawals may have landed since the request was made.
func ApproveWithdraw(adminId uint, requestId uint) error {
	conn := db.GetDb()
	return conn.Transaction(func(tx *gorm.DB) error {
		var request models.WithdrawRequest
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.WithdrawRequest{ID: requestId}).
			First(&request).Error; err != nil {
			return types.ErrNotFound
		}
		if request.Status != types.WITHDRAW_PENDING {
			return types.ErrStateConflict
		}
		var earning models.Earning
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Earning{ProfessionalID: request.ProfessionalID}).
			First(&earning).Error; err != nil {
			return types.ErrInsufficientBalance
		}
		if request.Amount > earning.Pending {
			return types.ErrInsufficientBalance
		}
		if err := tx.
			Model(&models.Earning{}).
			Where(&models.Earning{ID: earning.ID}).
			Updates(map[string]any{
				"pending":   gorm.Expr("pending - ?", request.Amount),
				"withdrawn": gorm.Expr("withdrawn + ?", request.Amount),
			}).Error; err != nil {
			return err
		}
		now := time.Now()
		if err := tx.
			Model(&models.WithdrawRequest{}).
			Where("id = ? AND status = ?", requestId, types.WITHDRAW_PENDING).
			Updates(map[string]any{
				"status":          types.WITHDRAW_PROCESSED,
				"processed_by_id": adminId,
				"processed_at":    now,
			}).Error; err != nil {
			return err
		}
		return RecordAudit(tx, "withdraw.approve", fmt.Sprintf("user:%d", adminId), "withdraw_requests", fmt.Sprint(requestId), types.JSONB{
			"status": types.WITHDRAW_PENDING,
		}, types.JSONB{
			"status": types.WITHDRAW_PROCESSED,
			"amount": request.Amount,
		})
	})
}

func RejectWithdraw(adminId uint, requestId uint, reason string) error {
	conn := db.GetDb()
	return conn.Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.WithdrawRequest{}).
			Where("id = ? AND status = ?", requestId, types.WITHDRAW_PENDING).
			Updates(map[string]any{
				"status":          types.WITHDRAW_REJECTED,
				"reason":          reason,
				"processed_by_id": adminId,
				"processed_at":    time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.WithdrawRequest{}).Where("id = ?", requestId).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return types.ErrNotFound
			}
			return types.ErrStateConflict
		}
		return RecordAudit(tx, "withdraw.reject", fmt.Sprintf("user:%d", adminId), "withdraw_requests", fmt.Sprint(requestId), types.JSONB{
			"status": types.WITHDRAW_PENDING,
		}, types.JSONB{
			"status": types.WITHDRAW_REJECTED,
			"reason": reason,
		})
	})
}
