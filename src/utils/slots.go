package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"psm/src/config"
	"psm/src/db"
	"psm/src/lib"
	"psm/src/models"
	"psm/src/types"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ClockWindow is one availability window within a day, in minutes since
// midnight. End is exclusive.
type ClockWindow struct {
	Start int
	End   int
}

func parseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value: %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, err
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock value out of range: %q", s)
	}
	return h*60 + m, nil
}

// ParseWeekly converts a stored weekly schedule into windows keyed by
// lowercase weekday name. Malformed windows fail the whole parse rather
// than being skipped silently.
func ParseWeekly(weekly types.JSONB) (map[string][]ClockWindow, error) {
	out := map[string][]ClockWindow{}
	for day, raw := range weekly {
		entries, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("invalid schedule for %s", day)
		}
		windows := []ClockWindow{}
		for _, e := range entries {
			entry, ok := e.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("invalid window for %s", day)
			}
			startRaw, _ := entry["start"].(string)
			endRaw, _ := entry["end"].(string)
			start, err := parseClock(startRaw)
			if err != nil {
				return nil, err
			}
			end, err := parseClock(endRaw)
			if err != nil {
				return nil, err
			}
			if end <= start {
				return nil, fmt.Errorf("window ends before it starts: %s %s-%s", day, startRaw, endRaw)
			}
			windows = append(windows, ClockWindow{Start: start, End: end})
		}
		out[strings.ToLower(day)] = windows
	}
	return out, nil
}

func weekdayKey(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}

// DaySlots lists the slot start times a schedule offers on the given day.
// Slots step from each window's start by the session duration and must fit
// entirely inside the window.
func DaySlots(weekly map[string][]ClockWindow, day time.Time, duration time.Duration) []time.Time {
	step := int(duration.Minutes())
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	slots := []time.Time{}
	for _, w := range weekly[weekdayKey(day)] {
		for at := w.Start; at+step <= w.End; at += step {
			slots = append(slots, midnight.Add(time.Duration(at)*time.Minute))
		}
	}
	return slots
}

// SlotMatchesSchedule reports whether a start time lands exactly on one of
// the schedule's slot boundaries for that day.
func SlotMatchesSchedule(weekly map[string][]ClockWindow, start time.Time, duration time.Duration) bool {
	for _, slot := range DaySlots(weekly, start, duration) {
		if slot.Equal(start) {
			return true
		}
	}
	return false
}

// Overlaps reports whether two half-open intervals intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

/// occupiedScope narrows bookings to the ones that still hold their slot:
// paid and confirmed always do, pending only while the hold lasts.
func occupiedScope(tx *gorm.DB, professionalID uint, now time.Time) *gorm.DB {
	return tx.
		Model(&models.Booking{}).
		Where(&models.Booking{ProfessionalID: professionalID}).
		Where("status IN ?", types.SlotOccupyingStatuses).
		Where("(status <> ? OR hold_expires_at > ?)", types.BOOKING_PENDING, now)
}

type SlotView struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

func slotCacheKey(professionalID uint, date string) string {
	return fmt.Sprintf("slots:%d:%s", professionalID, date)
}

// InvalidateSlotCache drops the cached slot list for one professional-day.
// Called after a reservation claims a slot.
func InvalidateSlotCache(professionalID uint, day time.Time) {
	rdb := lib.GetRedisClient()
	if rdb == nil {
		return
	}
	key := slotCacheKey(professionalID, day.Format(config.DATE_PARSE_FORMAT))
	if err := rdb.Del(context.Background(), key).Err(); err != nil {
		log.Printf("Failed to invalidate slot cache %s: %s\n", key, err.Error())
	}
}

// ListOpenSlots returns the bookable slots of a professional for one date.
// A slot is open when it sits inside the weekly schedule, respects the
// lead time, and no live booking overlaps it. Results are cached briefly;
// reservations invalidate the day's entry.
func ListOpenSlots(professionalID uint, date string) ([]SlotView, error) {
	day, err := time.ParseInLocation(config.DATE_PARSE_FORMAT, date, config.ScheduleLocation())
	if err != nil {
		log.Printf("Error parsing date: %s\n", err.Error())
		return nil, err
	}
	if day.AddDate(0, 0, 1).Before(time.Now()) {
		return nil, types.ErrSlotConflict
	}
	rdb := lib.GetRedisClient()
	if rdb != nil {
		if cached, err := rdb.Get(context.Background(), slotCacheKey(professionalID, date)).Result(); err == nil {
			var open []SlotView
			if err := json.Unmarshal([]byte(cached), &open); err == nil {
				return open, nil
			}
		}
	}
	conn := db.GetDb()
	var prof models.Professional
	if err := conn.Where(&models.Professional{ID: professionalID}).First(&prof).Error; err != nil {
		return nil, types.ErrNotFound
	}
	if prof.Status != types.PROFESSIONAL_APPROVED {
		return nil, types.ErrStateConflict
	}
	weekly, err := ParseWeekly(prof.Weekly)
	if err != nil {
		return nil, err
	}
	duration := time.Duration(config.SessionDuration()) * time.Minute
	now := time.Now()
	earliest := now.Add(time.Duration(config.SlotLeadTime()) * time.Minute)

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	var booked []models.Booking
	if err := occupiedScope(conn, professionalID, now).
		Where("start_time < ? AND end_time > ?", dayEnd, dayStart).
		Find(&booked).Error; err != nil {
		return nil, err
	}

	open := []SlotView{}
	for _, slot := range DaySlots(weekly, day, duration) {
		if slot.Before(earliest) {
			continue
		}
		end := slot.Add(duration)
		taken := false
		for _, b := range booked {
			if Overlaps(slot, end, b.StartTime, b.EndTime) {
				taken = true
				break
			}
		}
		if !taken {
			open = append(open, SlotView{StartTime: slot, EndTime: end})
		}
	}
	if rdb != nil {
		if encoded, err := json.Marshal(open); err == nil {
			if err := rdb.Set(context.Background(), slotCacheKey(professionalID, date), encoded, time.Minute).Err(); err != nil {
				log.Printf("Failed to cache slot list: %s\n", err.Error())
			}
		}
	}
	return open, nil
}
