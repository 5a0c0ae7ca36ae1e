package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryBackoff(t *testing.T) {
	assert.Equal(t, time.Minute, RetryBackoff(0))
	assert.Equal(t, time.Minute, RetryBackoff(1))
	assert.Equal(t, 2*time.Minute, RetryBackoff(2))
	assert.Equal(t, 16*time.Minute, RetryBackoff(5))
	assert.Equal(t, time.Hour, RetryBackoff(7))
	assert.Equal(t, time.Hour, RetryBackoff(80))
}

func TestOutboxClaimQuery(t *testing.T) {
	r := NewOutboxRelay(nil, 0, nil)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	sql, args, err := r.claimQuery(now).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM sys_outbox WHERE status = $1 AND (next_retry_at IS NULL OR next_retry_at <= $2)")
	assert.Contains(t, sql, "ORDER BY created_at LIMIT 100 FOR UPDATE SKIP LOCKED")
	assert.Equal(t, []any{OutboxStatusPending, now}, args)
}
