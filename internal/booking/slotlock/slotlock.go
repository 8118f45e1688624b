package slotlock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/pumpops/internal/config"
	obsmetrics "github.com/smallbiznis/pumpops/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const keySlot = "pumpops:slot:%s:%s:%s"

var ErrLockTimeout = errors.New("slot_lock_timeout")

// Locker serializes writers claiming the same booking slot. The unique index
// on bookings stays the source of truth; the lock only makes the loser wait
// for the winner so it can report who holds the slot.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Key builds the lock key for a (pump, date, time) slot.
func Key(pumpID, date, slotTime string) string {
	return fmt.Sprintf(keySlot, strings.TrimSpace(pumpID), strings.TrimSpace(date), strings.TrimSpace(slotTime))
}

type Params struct {
	fx.In

	Cfg         config.Config
	Log         *zap.Logger
	CoreMetrics *obsmetrics.CoreMetrics `optional:"true"`
}

// Provide picks the Redis locker when REDIS_URL is configured and falls back
// to an in-process keyed mutex otherwise.
func Provide(lc fx.Lifecycle, p Params) (Locker, error) {
	log := p.Log.Named("booking.slotlock")
	url := strings.TrimSpace(p.Cfg.RedisURL)
	if url == "" {
		log.Info("slot lock backend selected", zap.String("backend", obsmetrics.LockBackendMemory))
		return NewMemoryLocker(p.CoreMetrics), nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if lc != nil {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return client.Ping(ctx).Err()
			},
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
	}

	log.Info("slot lock backend selected",
		zap.String("backend", obsmetrics.LockBackendRedis),
		zap.String("addr", opts.Addr),
		zap.Duration("ttl", p.Cfg.SlotLockTTL),
	)
	return NewRedisLocker(client, p.Cfg.SlotLockTTL, p.CoreMetrics), nil
}

func waitBudget(ctx context.Context, fallback time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, fallback)
}
