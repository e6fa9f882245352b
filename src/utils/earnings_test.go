package utils

import (
	"psm/src/types"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestNetShare(t *testing.T) {
	assert.Equal(t, int64(8500), NetShare(10000, 15))
	assert.Equal(t, int64(10000), NetShare(10000, 0))
	assert.Equal(t, int64(0), NetShare(10000, 100))

	// integer division rounds the professional's share down
	assert.Equal(t, int64(84), NetShare(99, 15))
	assert.Equal(t, int64(0), NetShare(1, 15))
}

func TestApproveWithdrawInsufficientBalance(t *testing.T) {
	_, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "withdraw_requests"`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "professional_id", "amount", "status"}).
			AddRow(3, 42, 10000, "pending"))
	mock.ExpectQuery(`SELECT (.+) FROM "earnings"`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "professional_id", "total", "pending", "withdrawn"}).
			AddRow(1, 42, 10500, 500, 10000))
	mock.ExpectRollback()

	err := ApproveWithdraw(7, 3)
	assert.ErrorIs(t, err, types.ErrInsufficientBalance)
	assert.NoError(t, mock.ExpectationsWereMet())
}
