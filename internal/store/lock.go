package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RunLock is a Redis-backed single-instance lock for batch jobs. The TTL
// bounds how long a crashed holder can block the next run.
type RunLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRunLock creates a lock on the given key.
func NewRunLock(client *redis.Client, key string, ttl time.Duration) *RunLock {
	if key == "" {
		key = "schoolattend:reconcile:lock"
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RunLock{client: client, key: key, ttl: ttl}
}

// Acquire takes the lock if free; false means another run holds it.
func (l *RunLock) Acquire(ctx context.Context) (bool, error) {
	return l.client.SetNX(ctx, l.key, "1", l.ttl).Result()
}

// Release frees the lock.
func (l *RunLock) Release(ctx context.Context) error {
	return l.client.Del(ctx, l.key).Err()
}
