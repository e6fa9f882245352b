package lib

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestNewRedisClientOverridesSingleton(t *testing.T) {
	client, mock := redismock.NewClientMock()
	NewRedisClient(client)
	assert.Equal(t, client, GetRedisClient())

	mock.ExpectSet("payments:trx:TRX-1", "abc", 24*time.Hour).SetVal("OK")
	err := GetRedisClient().Set(context.Background(), "payments:trx:TRX-1", "abc", 24*time.Hour).Err()
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
