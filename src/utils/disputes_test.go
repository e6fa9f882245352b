package utils

import (
	"psm/src/types"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestResolveDisputeUnknownDispute(t *testing.T) {
	_, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "disputes"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := ResolveDispute(1, 9, &types.ResolveDisputeRequestBody{Decision: types.DECISION_APPROVED})
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveDisputeAlreadyClosed(t *testing.T) {
	_, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "disputes"`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "status", "type"}).
			AddRow(9, "resolved", "general"))
	mock.ExpectRollback()

	err := ResolveDispute(1, 9, &types.ResolveDisputeRequestBody{Decision: types.DECISION_REJECTED})
	assert.ErrorIs(t, err, types.ErrStateConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// An approved reschedule that collides with another booking must roll the
// whole resolution back so the dispute stays open.
func TestResolveDisputeRescheduleConflictRollsBack(t *testing.T) {
	_, mock := newMockDB(t)

	// 2030-01-07 is a Monday
	newStart := time.Date(2030, 1, 7, 10, 0, 0, 0, time.UTC)
	bookingStart := time.Date(2030, 1, 7, 14, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "disputes"`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "booking_id", "status", "type", "new_start"}).
			AddRow(9, 5, "open", "reschedule_request", newStart))
	mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "client_id", "professional_id", "status", "start_time", "end_time"}).
			AddRow(5, 1, 42, "paid", bookingStart, bookingStart.Add(time.Hour)))
	mock.ExpectQuery(`SELECT (.+) FROM "professionals"`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "user_id", "status", "weekly"}).
			AddRow(42, 7, "approved", []byte(`{"monday":[{"start":"09:00","end":"17:00"}]}`)))
	mock.ExpectQuery(`SELECT count(.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := ResolveDispute(3, 9, &types.ResolveDisputeRequestBody{Decision: types.DECISION_APPROVED})
	assert.ErrorIs(t, err, types.ErrSlotConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
