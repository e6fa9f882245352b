package utils

import (
	"psm/src/db"
	"psm/src/types"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	db.NewDB(gormDB)
	return gormDB, mock
}

func TestReserveSlotRejectsMalformedStartTime(t *testing.T) {
	_, err := ReserveSlot(1, &types.ReserveSlotRequestBody{
		ProfessionalID: 1,
		StartTime:      "next tuesday",
	})
	assert.Error(t, err)
}

func TestReserveSlotRejectsShortLeadTime(t *testing.T) {
	_, err := ReserveSlot(1, &types.ReserveSlotRequestBody{
		ProfessionalID: 1,
		StartTime:      "2020-01-06 09:00:00 +00:00",
	})
	assert.ErrorIs(t, err, types.ErrSlotConflict)
}

func TestReserveSlotUnknownProfessional(t *testing.T) {
	_, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "professionals"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := ReserveSlot(1, &types.ReserveSlotRequestBody{
		ProfessionalID: 42,
		StartTime:      "2030-01-07 09:00:00 +00:00",
	})
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveSlotUnapprovedProfessional(t *testing.T) {
	_, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "professionals"`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "user_id", "status", "hourly_rate", "currency", "weekly"}).
			AddRow(42, 7, "pending", 5000, "BDT", []byte(`{}`)))
	mock.ExpectRollback()

	_, err := ReserveSlot(1, &types.ReserveSlotRequestBody{
		ProfessionalID: 42,
		StartTime:      "2030-01-07 09:00:00 +00:00",
	})
	assert.ErrorIs(t, err, types.ErrStateConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveSlotConflictOnOccupiedSlot(t *testing.T) {
	_, mock := newMockDB(t)
	mock.ExpectBegin()
	// 2030-01-07 is a Monday
	mock.ExpectQuery(`SELECT (.+) FROM "professionals"`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "user_id", "status", "hourly_rate", "currency", "weekly"}).
			AddRow(42, 7, "approved", 5000, "BDT", []byte(`{"monday":[{"start":"09:00","end":"17:00"}]}`)))
	mock.ExpectQuery(`SELECT count(.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err := ReserveSlot(1, &types.ReserveSlotRequestBody{
		ProfessionalID: 42,
		StartTime:      "2030-01-07 09:00:00 +00:00",
	})
	assert.ErrorIs(t, err, types.ErrSlotConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveSlotOutsideSchedule(t *testing.T) {
	_, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "professionals"`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "user_id", "status", "hourly_rate", "currency", "weekly"}).
			AddRow(42, 7, "approved", 5000, "BDT", []byte(`{"monday":[{"start":"09:00","end":"17:00"}]}`)))
	mock.ExpectRollback()

	// 2030-01-08 is a Tuesday, the schedule has no Tuesday windows
	_, err := ReserveSlot(1, &types.ReserveSlotRequestBody{
		ProfessionalID: 42,
		StartTime:      "2030-01-08 09:00:00 +00:00",
	})
	assert.ErrorIs(t, err, types.ErrSlotConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveSlotAcceptsOffsetStartTime(t *testing.T) {
	_, mock := newMockDB(t)
	mock.ExpectBegin()
	// 2030-01-07 09:00 UTC expressed in a +05:45 offset
	mock.ExpectQuery(`SELECT (.+) FROM "professionals"`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "user_id", "status", "hourly_rate", "currency", "weekly"}).
			AddRow(42, 7, "approved", 5000, "BDT", []byte(`{"monday":[{"start":"09:00","end":"17:00"}]}`)))
	mock.ExpectQuery(`SELECT count(.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err := ReserveSlot(1, &types.ReserveSlotRequestBody{
		ProfessionalID: 42,
		StartTime:      "2030-01-07 14:45:00 +05:45",
	})
	assert.ErrorIs(t, err, types.ErrSlotConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteBookingCreditsAtMostOnce(t *testing.T) {
	_, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "client_id", "professional_id", "status", "start_time", "earnings_credited"}).
			AddRow(5, 1, 42, "completed", time.Now().Add(-2*time.Hour), true))
	mock.ExpectQuery(`SELECT (.+) FROM "professionals"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).AddRow(42, 7))
	mock.ExpectExec(`UPDATE "bookings"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := CompleteBooking(7, 5)
	assert.ErrorIs(t, err, types.ErrStateConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelBookingRequiresOwnership(t *testing.T) {
	_, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "client_id", "status"}).
			AddRow(5, 99, "pending"))
	mock.ExpectRollback()

	err := CancelBooking(1, 5, "changed my mind")
	assert.ErrorIs(t, err, types.ErrPermissionDenied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelBookingRejectsPaidBooking(t *testing.T) {
	_, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "client_id", "status"}).
			AddRow(5, 1, "paid"))
	mock.ExpectExec(`UPDATE "bookings"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count(.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := CancelBooking(1, 5, "changed my mind")
	assert.ErrorIs(t, err, types.ErrStateConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionBookingStateConflict(t *testing.T) {
	gormDB, mock := newMockDB(t)
	mock.ExpectExec(`UPDATE "bookings"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count(.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err := transitionBooking(gormDB, 5, types.BOOKING_PENDING, types.BOOKING_PAID, nil)
	assert.ErrorIs(t, err, types.ErrStateConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionBookingNotFound(t *testing.T) {
	gormDB, mock := newMockDB(t)
	mock.ExpectExec(`UPDATE "bookings"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count(.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	err := transitionBooking(gormDB, 5, types.BOOKING_PENDING, types.BOOKING_PAID, nil)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
