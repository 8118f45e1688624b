package slotlock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	obsmetrics "github.com/smallbiznis/pumpops/internal/observability/metrics"
)

const lockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

const (
	defaultTTL   = 5 * time.Second
	retryBackoff = 25 * time.Millisecond
)

// RedisLocker holds slot keys with SET NX and releases them only when the
// stored token still matches, so an expired holder cannot drop a newer lock.
type RedisLocker struct {
	client  redis.UniversalClient
	script  *redis.Script
	ttl     time.Duration
	metrics *obsmetrics.CoreMetrics
}

func NewRedisLocker(client redis.UniversalClient, ttl time.Duration, metrics *obsmetrics.CoreMetrics) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisLocker{
		client:  client,
		script:  redis.NewScript(lockReleaseScript),
		ttl:     ttl,
		metrics: metrics,
	}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string) (string, bool, error) {
	if l == nil || l.client == nil {
		return "", false, errors.New("lock client not configured")
	}
	if key == "" {
		return "", false, errors.New("lock key is empty")
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

func (l *RedisLocker) Release(ctx context.Context, key, token string) error {
	if l == nil || l.client == nil || key == "" || token == "" {
		return nil
	}
	return l.script.Run(ctx, l.client, []string{key}, token).Err()
}

// Acquire polls until the key is free, the context ends, or one TTL passes
// (the previous holder's lock has expired by then).
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	start := time.Now()
	waitCtx, cancel := waitBudget(ctx, l.ttl)
	defer cancel()

	ticker := time.NewTicker(retryBackoff)
	defer ticker.Stop()

	for {
		token, ok, err := l.TryLock(waitCtx, key)
		if err != nil {
			l.metrics.IncLockAttempt(obsmetrics.LockBackendRedis, obsmetrics.LockOutcomeError)
			return nil, err
		}
		if ok {
			l.metrics.IncLockAttempt(obsmetrics.LockBackendRedis, obsmetrics.LockOutcomeAcquired)
			l.metrics.ObserveLockWait(obsmetrics.LockBackendRedis, time.Since(start))
			return func() {
				// the caller's context may already be done; release on a fresh one
				releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				_ = l.Release(releaseCtx, key, token)
			}, nil
		}

		select {
		case <-waitCtx.Done():
			l.metrics.IncLockAttempt(obsmetrics.LockBackendRedis, obsmetrics.LockOutcomeTimeout)
			return nil, ErrLockTimeout
		case <-ticker.C:
		}
	}
}
