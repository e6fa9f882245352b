package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const TIME_PARSE_FORMAT = "2006-01-02 15:04:05 -07:00"
const DATE_PARSE_FORMAT = "2006-01-02"
const CLOCK_PARSE_FORMAT = "15:04"

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// CommissionRate is the platform cut in whole percent applied when a
// completed booking is credited to the professional.
func CommissionRate() int64 {
	return int64(envInt("COMMISSION_RATE", 15))
}

// SessionDuration is the fixed length of a bookable slot.
func SessionDuration() int {
	return envInt("SESSION_DURATION_MINUTES", 60)
}

// SlotLeadTime is the minimum number of minutes between now and a slot's
// start for the slot to still be reservable.
func SlotLeadTime() int {
	return envInt("SLOT_LEAD_MINUTES", 60)
}

// BookingHold is how long a pending booking keeps its slot before the
// reaper releases it.
func BookingHold() int {
	return envInt("BOOKING_HOLD_MINUTES", 15)
}

// ScheduleLocation is the timezone weekly availability windows are
// interpreted in.
func ScheduleLocation() *time.Location {
	name := os.Getenv("SCHEDULE_TIMEZONE")
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
