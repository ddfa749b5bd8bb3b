package leave

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PendingStore holds at most one staged leave application per employee.
// Setting always replaces whatever was there before. Take atomically
// claims the record: of two concurrent confirmations only one gets it.
type PendingStore interface {
	Set(ctx context.Context, employeeID string, pending *PendingLeave) error
	Get(ctx context.Context, employeeID string) (*PendingLeave, error)
	Take(ctx context.Context, employeeID string) (*PendingLeave, error)
	Clear(ctx context.Context, employeeID string) error
}

type redisPendingStore struct {
	rdb redis.Cmdable
	ttl time.Duration
	now func() time.Time
}

// NewRedisPendingStore keeps pending confirmations in redis under a TTL,
// so abandoned requests disappear on their own. An optional clock makes
// expiry deterministic in tests.
func NewRedisPendingStore(rdb redis.Cmdable, ttl time.Duration, clock ...func() time.Time) PendingStore {
	now := time.Now
	if len(clock) > 0 && clock[0] != nil {
		now = clock[0]
	}
	return &redisPendingStore{rdb: rdb, ttl: ttl, now: now}
}

func pendingKey(employeeID string) string {
	return fmt.Sprintf("pending:%s", employeeID)
}

func (s *redisPendingStore) Set(ctx context.Context, employeeID string, pending *PendingLeave) error {
	pending.ExpiresAt = s.now().Add(s.ttl)
	payload, err := json.Marshal(pending)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, pendingKey(employeeID), payload, s.ttl).Err()
}

// Get returns nil when no pending request exists. ExpiresAt is re-checked
// here as well: redis expiry is precise enough in practice, but the record
// carries its own deadline and that one is authoritative.
func (s *redisPendingStore) Get(ctx context.Context, employeeID string) (*PendingLeave, error) {
	val, err := s.rdb.Get(ctx, pendingKey(employeeID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var pending PendingLeave
	if err := json.Unmarshal([]byte(val), &pending); err != nil {
		return nil, err
	}
	if s.now().After(pending.ExpiresAt) {
		_ = s.rdb.Del(ctx, pendingKey(employeeID)).Err()
		return nil, nil
	}
	return &pending, nil
}

// Take removes and returns the pending record in one GETDEL round trip,
// so concurrent confirmations cannot both claim it.
func (s *redisPendingStore) Take(ctx context.Context, employeeID string) (*PendingLeave, error) {
	val, err := s.rdb.GetDel(ctx, pendingKey(employeeID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var pending PendingLeave
	if err := json.Unmarshal([]byte(val), &pending); err != nil {
		return nil, err
	}
	if s.now().After(pending.ExpiresAt) {
		return nil, nil
	}
	return &pending, nil
}

func (s *redisPendingStore) Clear(ctx context.Context, employeeID string) error {
	return s.rdb.Del(ctx, pendingKey(employeeID)).Err()
}
