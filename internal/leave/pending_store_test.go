package leave_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go-leavechat/internal/leave"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var frozenNow = time.Date(2026, 1, 13, 10, 0, 0, 0, time.UTC)

func newPendingStore(t *testing.T, ttl time.Duration) (leave.PendingStore, redismock.ClientMock) {
	t.Helper()
	rdb, mock := redismock.NewClientMock()
	store := leave.NewRedisPendingStore(rdb, ttl, func() time.Time { return frozenNow })
	return store, mock
}

func TestPendingStore_SetWritesWithTTL(t *testing.T) {
	store, mock := newPendingStore(t, 15*time.Minute)

	pending := &leave.PendingLeave{
		LeaveType: leave.TypeSick,
		StartDate: time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 1, 21, 0, 0, 0, 0, time.UTC),
		DaysCount: 2,
	}
	want := *pending
	want.ExpiresAt = frozenNow.Add(15 * time.Minute)
	payload, err := json.Marshal(&want)
	require.NoError(t, err)

	mock.ExpectSet("pending:EMP001", payload, 15*time.Minute).SetVal("OK")

	err = store.Set(context.Background(), "EMP001", pending)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPendingStore_GetReturnsStored(t *testing.T) {
	store, mock := newPendingStore(t, 15*time.Minute)

	stored := leave.PendingLeave{
		LeaveType: leave.TypeCasual,
		StartDate: time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC),
		DaysCount: 1,
		ExpiresAt: frozenNow.Add(10 * time.Minute),
	}
	payload, err := json.Marshal(&stored)
	require.NoError(t, err)
	mock.ExpectGet("pending:EMP001").SetVal(string(payload))

	got, err := store.Get(context.Background(), "EMP001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, leave.TypeCasual, got.LeaveType)
	assert.Equal(t, 1, got.DaysCount)
}

func TestPendingStore_GetMissingIsNil(t *testing.T) {
	store, mock := newPendingStore(t, 15*time.Minute)

	mock.ExpectGet("pending:EMP404").RedisNil()

	got, err := store.Get(context.Background(), "EMP404")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPendingStore_GetExpiredIsDroppedAndNil(t *testing.T) {
	store, mock := newPendingStore(t, 15*time.Minute)

	stale := leave.PendingLeave{
		LeaveType: leave.TypeSick,
		DaysCount: 1,
		ExpiresAt: frozenNow.Add(-time.Minute),
	}
	payload, err := json.Marshal(&stale)
	require.NoError(t, err)
	mock.ExpectGet("pending:EMP001").SetVal(string(payload))
	mock.ExpectDel("pending:EMP001").SetVal(1)

	got, err := store.Get(context.Background(), "EMP001")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPendingStore_TakeClaimsAndDeletes(t *testing.T) {
	store, mock := newPendingStore(t, 15*time.Minute)

	stored := leave.PendingLeave{
		LeaveType: leave.TypeSick,
		StartDate: time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 1, 21, 0, 0, 0, 0, time.UTC),
		DaysCount: 2,
		ExpiresAt: frozenNow.Add(10 * time.Minute),
	}
	payload, err := json.Marshal(&stored)
	require.NoError(t, err)
	mock.ExpectGetDel("pending:EMP001").SetVal(string(payload))

	got, err := store.Take(context.Background(), "EMP001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.DaysCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPendingStore_TakeMissingIsNil(t *testing.T) {
	store, mock := newPendingStore(t, 15*time.Minute)

	mock.ExpectGetDel("pending:EMP404").RedisNil()

	got, err := store.Take(context.Background(), "EMP404")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPendingStore_TakeExpiredIsNil(t *testing.T) {
	store, mock := newPendingStore(t, 15*time.Minute)

	stale := leave.PendingLeave{
		LeaveType: leave.TypeSick,
		DaysCount: 1,
		ExpiresAt: frozenNow.Add(-time.Minute),
	}
	payload, err := json.Marshal(&stale)
	require.NoError(t, err)
	mock.ExpectGetDel("pending:EMP001").SetVal(string(payload))

	got, err := store.Take(context.Background(), "EMP001")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPendingStore_Clear(t *testing.T) {
	store, mock := newPendingStore(t, 15*time.Minute)

	mock.ExpectDel("pending:EMP001").SetVal(1)

	err := store.Clear(context.Background(), "EMP001")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
