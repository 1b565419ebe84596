package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// PoolLock is an advisory per-pool lock in Redis, used to serialise
// "generate if empty" and "regenerate when exhausted" across instances.
type PoolLock interface {
	// Acquire tries once to take the lock. The returned token releases it.
	Acquire(ctx context.Context, poolKey string) (token string, ok bool, err error)
	Release(ctx context.Context, poolKey, token string) error
	// Wait polls until the lock is free or maxWait elapses. It reports whether the lock was seen free.
	Wait(ctx context.Context, poolKey string, maxWait time.Duration) (bool, error)
}

type poolLock struct {
	client       redis.UniversalClient
	ttl          time.Duration
	pollInterval time.Duration
}

// Only the holder's token may delete the key
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewPoolLock creates a new pool lock; ttl bounds how long a crashed holder blocks others
func NewPoolLock(client redis.UniversalClient, ttl time.Duration) PoolLock {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &poolLock{
		client:       client,
		ttl:          ttl,
		pollInterval: 200 * time.Millisecond,
	}
}

func (c *poolLock) key(poolKey string) string {
	return fmt.Sprintf("reviewpool:%s:lock", poolKey)
}

func (c *poolLock) Acquire(ctx context.Context, poolKey string) (string, bool, error) {
	token := uuid.NewString()
	ok, err := c.client.SetNX(ctx, c.key(poolKey), token, c.ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (c *poolLock) Release(ctx context.Context, poolKey, token string) error {
	err := releaseScript.Run(ctx, c.client, []string{c.key(poolKey)}, token).Err()
	if err == redis.Nil {
		return nil
	}
	return err
}

func (c *poolLock) Wait(ctx context.Context, poolKey string, maxWait time.Duration) (bool, error) {
	deadline := time.Now().Add(maxWait)
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		n, err := c.client.Exists(ctx, c.key(poolKey)).Result()
		if err != nil {
			return false, err
		}
		if n == 0 {
			return true, nil
		}
		if time.Now().After(deadline) {
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-ticker.C:
		}
	}
}
