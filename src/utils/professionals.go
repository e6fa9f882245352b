package utils

import (
	"fmt"
	"psm/src/db"
	"psm/src/models"
	"psm/src/types"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateProfessionalProfile enrolls a user as a professional. The profile
// starts pending and cannot take bookings until verified and approved.
func CreateProfessionalProfile(userId uint, title string, hourlyRate int64, currency string) (*models.Professional, error) {
	conn := db.GetDb()
	var prof models.Professional
	err := conn.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where(&models.User{ID: userId}).First(&user).Error; err != nil {
			return types.ErrNotFound
		}
		prof = models.Professional{
			UserID:     userId,
			Title:      title,
			Slug:       slug.Make(fmt.Sprintf("%s-%d", user.Name, userId)),
			HourlyRate: hourlyRate,
			Currency:   currency,
			Status:     types.PROFESSIONAL_PENDING,
			Weekly:     types.JSONB{},
		}
		if err := tx.Create(&prof).Error; err != nil {
			return err
		}
		if err := tx.
			Model(&models.User{}).
			Where(&models.User{ID: userId}).
			Update("role", types.ROLE_PROFESSIONAL).Error; err != nil {
			return err
		}
		return RecordAudit(tx, "professional.enroll", fmt.Sprintf("user:%d", userId), "professionals", fmt.Sprint(prof.ID), nil, types.JSONB{
			"status": prof.Status,
		})
	})
	if err != nil {
		return nil, err
	}
	return &prof, nil
}

// ProposeProfileChanges stages a profile edit for moderator review. The
// live columns keep serving until the proposal is approved.
func ProposeProfileChanges(profUserId uint, params *types.UpdateProfileRequestBody) error {
	changes := types.JSONB{}
	if params.Name != nil {
		changes["name"] = *params.Name
	}
	if params.Bio != nil {
		changes["bio"] = *params.Bio
	}
	if params.HourlyRate != nil {
		changes["hourly_rate"] = *params.HourlyRate
	}
	if params.Currency != nil {
		changes["currency"] = *params.Currency
	}
	if len(changes) == 0 {
		return types.ErrStateConflict
	}
	conn := db.GetDb()
	return conn.Transaction(func(tx *gorm.DB) error {
		var prof models.Professional
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Professional{UserID: profUserId}).
			First(&prof).Error; err != nil {
			return types.ErrNotFound
		}
		if err := tx.
			Model(&models.Professional{}).
			Where(&models.Professional{ID: prof.ID}).
			Update("proposed_changes", &changes).Error; err != nil {
			return err
		}
		return RecordAudit(tx, "professional.propose", fmt.Sprintf("user:%d", profUserId), "professionals", fmt.Sprint(prof.ID), nil, changes)
	})
}

// ReviewProfileChanges applies or discards a staged profile edit.
func ReviewProfileChanges(reviewerId uint, professionalId uint, approve bool) error {
	conn := db.GetDb()
	return conn.Transaction(func(tx *gorm.DB) error {
		var prof models.Professional
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Professional{ID: professionalId}).
			First(&prof).Error; err != nil {
			return types.ErrNotFound
		}
		if prof.ProposedChanges == nil {
			return types.ErrStateConflict
		}
		updates := map[string]any{
			"proposed_changes": nil,
		}
		if approve {
			changes := *prof.ProposedChanges
			if v, ok := changes["bio"].(string); ok {
				updates["bio"] = v
			}
			if v, ok := changes["hourly_rate"].(float64); ok {
				updates["hourly_rate"] = int64(v)
			}
			if v, ok := changes["currency"].(string); ok {
				updates["currency"] = v
			}
			if v, ok := changes["name"].(string); ok {
				updates["title"] = v
			}
		}
		if err := tx.
			Model(&models.Professional{}).
			Where(&models.Professional{ID: prof.ID}).
			Updates(updates).Error; err != nil {
			return err
		}
		return RecordAudit(tx, "professional.review", fmt.Sprintf("user:%d", reviewerId), "professionals", fmt.Sprint(prof.ID), *prof.ProposedChanges, types.JSONB{
			"approved": approve,
		})
	})
}

// VerifyProfessional walks a pending profile through verification and
// approval. Verified marks the identity check, approved opens bookings.
func VerifyProfessional(adminId uint, professionalId uint, decision types.DisputeDecision) error {
	conn := db.GetDb()
	return conn.Transaction(func(tx *gorm.DB) error {
		var prof models.Professional
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Professional{ID: professionalId}).
			First(&prof).Error; err != nil {
			return types.ErrNotFound
		}
		now := time.Now()
		updates := map[string]any{}
		var newStatus types.ProfessionalStatus
		if decision == types.DECISION_REJECTED {
			newStatus = types.PROFESSIONAL_REJECTED
		} else {
			switch prof.Status {
			case types.PROFESSIONAL_PENDING:
				newStatus = types.PROFESSIONAL_VERIFIED
				updates["verified_at"] = now
			case types.PROFESSIONAL_VERIFIED:
				newStatus = types.PROFESSIONAL_APPROVED
				updates["approved_at"] = now
			default:
				return types.ErrStateConflict
			}
		}
		updates["status"] = newStatus
		if err := tx.
			Model(&models.Professional{}).
			Where(&models.Professional{ID: prof.ID}).
			Updates(updates).Error; err != nil {
			return err
		}
		return RecordAudit(tx, "professional.verify", fmt.Sprintf("user:%d", adminId), "professionals", fmt.Sprint(prof.ID), types.JSONB{
			"status": prof.Status,
		}, types.JSONB{
			"status": newStatus,
		})
	})
}

// UpdateAvailability replaces the weekly schedule. Existing bookings keep
// their slots; the schedule only constrains new reservations.
func UpdateAvailability(profUserId uint, params *types.UpdateAvailabilityRequestBody) error {
	weekly := types.JSONB{}
	for day, windows := range params.Weekly {
		entries := []any{}
		for _, w := range windows {
			entries = append(entries, map[string]any{"start": w.Start, "end": w.End})
		}
		weekly[day] = entries
	}
	if _, err := ParseWeekly(weekly); err != nil {
		return err
	}
	conn := db.GetDb()
	return conn.Transaction(func(tx *gorm.DB) error {
		var prof models.Professional
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Professional{UserID: profUserId}).
			First(&prof).Error; err != nil {
			return types.ErrNotFound
		}
		if err := tx.
			Model(&models.Professional{}).
			Where(&models.Professional{ID: prof.ID}).
			Update("weekly", weekly).Error; err != nil {
			return err
		}
		return RecordAudit(tx, "professional.availability", fmt.Sprintf("user:%d", profUserId), "professionals", fmt.Sprint(prof.ID), prof.Weekly, weekly)
	})
}
