package slotlock

import (
	"context"
	"sync"
	"time"

	obsmetrics "github.com/smallbiznis/pumpops/internal/observability/metrics"
)

const memoryWait = 5 * time.Second

// MemoryLocker is a keyed mutex for single-process deployments.
type MemoryLocker struct {
	mu      sync.Mutex
	slots   map[string]*slot
	metrics *obsmetrics.CoreMetrics
}

type slot struct {
	ch   chan struct{}
	refs int
}

func NewMemoryLocker(metrics *obsmetrics.CoreMetrics) *MemoryLocker {
	return &MemoryLocker{
		slots:   make(map[string]*slot),
		metrics: metrics,
	}
}

func (l *MemoryLocker) Acquire(ctx context.Context, key string) (func(), error) {
	start := time.Now()
	s := l.ref(key)

	waitCtx, cancel := waitBudget(ctx, memoryWait)
	defer cancel()

	select {
	case s.ch <- struct{}{}:
	case <-waitCtx.Done():
		l.unref(key, s)
		l.metrics.IncLockAttempt(obsmetrics.LockBackendMemory, obsmetrics.LockOutcomeTimeout)
		return nil, ErrLockTimeout
	}

	l.metrics.IncLockAttempt(obsmetrics.LockBackendMemory, obsmetrics.LockOutcomeAcquired)
	l.metrics.ObserveLockWait(obsmetrics.LockBackendMemory, time.Since(start))

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.unref(key, s)
		})
	}, nil
}

func (l *MemoryLocker) ref(key string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

func (l *MemoryLocker) unref(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}

// held reports how many keys are currently tracked; used by tests.
func (l *MemoryLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
