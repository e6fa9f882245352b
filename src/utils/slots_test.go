package utils

import (
	"psm/src/types"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func weekdaySchedule() map[string][]ClockWindow {
	return map[string][]ClockWindow{
		"monday": {
			{Start: 9 * 60, End: 12 * 60},
			{Start: 14 * 60, End: 17 * 60},
		},
	}
}

func TestParseClock(t *testing.T) {
	v, err := parseClock("09:30")
	assert.NoError(t, err)
	assert.Equal(t, 9*60+30, v)

	v, err = parseClock("00:00")
	assert.NoError(t, err)
	assert.Equal(t, 0, v)

	_, err = parseClock("24:00")
	assert.Error(t, err)
	_, err = parseClock("9am")
	assert.Error(t, err)
	_, err = parseClock("09:61")
	assert.Error(t, err)
}

func TestParseWeekly(t *testing.T) {
	weekly, err := ParseWeekly(types.JSONB{
		"Monday": []any{
			map[string]any{"start": "09:00", "end": "12:00"},
		},
	})
	assert.NoError(t, err)
	assert.Len(t, weekly["monday"], 1)
	assert.Equal(t, ClockWindow{Start: 9 * 60, End: 12 * 60}, weekly["monday"][0])

	_, err = ParseWeekly(types.JSONB{
		"monday": []any{
			map[string]any{"start": "12:00", "end": "09:00"},
		},
	})
	assert.Error(t, err)

	_, err = ParseWeekly(types.JSONB{"monday": "not a list"})
	assert.Error(t, err)
}

func TestDaySlots(t *testing.T) {
	// 2026-08-31 is a Monday
	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	slots := DaySlots(weekdaySchedule(), monday, time.Hour)
	assert.Len(t, slots, 6)
	assert.Equal(t, time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC), slots[0])
	assert.Equal(t, time.Date(2026, 8, 31, 11, 0, 0, 0, time.UTC), slots[2])
	assert.Equal(t, time.Date(2026, 8, 31, 14, 0, 0, 0, time.UTC), slots[3])
	assert.Equal(t, time.Date(2026, 8, 31, 16, 0, 0, 0, time.UTC), slots[5])

	tuesday := monday.AddDate(0, 0, 1)
	assert.Empty(t, DaySlots(weekdaySchedule(), tuesday, time.Hour))

	// a 90 minute session only fits twice in a 3 hour window
	slots = DaySlots(weekdaySchedule(), monday, 90*time.Minute)
	assert.Len(t, slots, 4)
}

func TestSlotMatchesSchedule(t *testing.T) {
	weekly := weekdaySchedule()
	monday9 := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	assert.True(t, SlotMatchesSchedule(weekly, monday9, time.Hour))

	monday930 := time.Date(2026, 8, 31, 9, 30, 0, 0, time.UTC)
	assert.False(t, SlotMatchesSchedule(weekly, monday930, time.Hour))

	monday12 := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	assert.False(t, SlotMatchesSchedule(weekly, monday12, time.Hour))

	tuesday9 := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	assert.False(t, SlotMatchesSchedule(weekly, tuesday9, time.Hour))
}

func TestListOpenSlotsRejectsPastDate(t *testing.T) {
	_, err := ListOpenSlots(42, "2020-01-01")
	assert.ErrorIs(t, err, types.ErrSlotConflict)
}

func TestOverlaps(t *testing.T) {
	at := func(h int) time.Time {
		return time.Date(2026, 8, 31, h, 0, 0, 0, time.UTC)
	}
	assert.True(t, Overlaps(at(9), at(10), at(9), at(10)))
	assert.True(t, Overlaps(at(9), at(11), at(10), at(12)))
	assert.True(t, Overlaps(at(10), at(12), at(9), at(11)))
	assert.False(t, Overlaps(at(9), at(10), at(10), at(11)))
	assert.False(t, Overlaps(at(10), at(11), at(9), at(10)))
}
