package utils

import (
	"psm/src/types"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestApplyGatewayResultUnknownTransaction(t *testing.T) {
	_, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := ApplyGatewayResult("TRX-missing", true, nil)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyGatewayResultReplayIsNoop(t *testing.T) {
	_, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "payments"`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "booking_id", "status", "transaction_id"}).
			AddRow(uuid.NewString(), 9, "paid", "TRX-1"))
	mock.ExpectCommit()

	err := ApplyGatewayResult("TRX-1", true, nil)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyGatewayResultConflictingOutcome(t *testing.T) {
	_, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "payments"`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "booking_id", "status", "transaction_id"}).
			AddRow(uuid.NewString(), 9, "paid", "TRX-1"))
	mock.ExpectRollback()

	err := ApplyGatewayResult("TRX-1", false, nil)
	assert.ErrorIs(t, err, types.ErrStateConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyGatewayResultStaleCallbackAfterHoldExpiry(t *testing.T) {
	_, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "payments"`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "booking_id", "status", "transaction_id"}).
			AddRow(uuid.NewString(), 9, "pending", "TRX-LATE"))
	mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "status", "hold_expires_at"}).
			AddRow(9, "pending", time.Now().Add(-10*time.Minute)))
	mock.ExpectRollback()

	err := ApplyGatewayResult("TRX-LATE", true, nil)
	assert.ErrorIs(t, err, types.ErrStateConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCheckoutUnknownBooking(t *testing.T) {
	_, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := CreateCheckout(1, &types.CreateCheckoutRequestBody{
		BookingID: 99,
		Method:    types.METHOD_BKASH,
	})
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
