package notify

import (
	"context"
	"sync"
	"time"

	obsmetrics "github.com/smallbiznis/pumpops/internal/observability/metrics"
	"go.uber.org/zap"
)

const (
	outcomeDelivered = "delivered"
	outcomeFailed    = "failed"
	outcomeDropped   = "dropped"
)

// Dispatcher delivers notices in the background. Failures are logged and
// counted; they never reach the caller.
type Dispatcher struct {
	sender      Sender
	log         *zap.Logger
	timeout     time.Duration
	obsMetrics  *obsmetrics.Metrics
	coreMetrics *obsmetrics.CoreMetrics

	mu      sync.Mutex
	closed  bool
	pending sync.WaitGroup
}

type DispatcherOption func(*Dispatcher)

func WithMetrics(obs *obsmetrics.Metrics, core *obsmetrics.CoreMetrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.obsMetrics = obs
		d.coreMetrics = core
	}
}

func NewDispatcher(sender Sender, log *zap.Logger, timeout time.Duration, opts ...DispatcherOption) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	d := &Dispatcher{
		sender:  sender,
		log:     log.Named("notify.dispatcher"),
		timeout: timeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) Notify(ctx context.Context, notice Notice) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.obsMetrics.RecordNotice(ctx, string(notice.Kind), outcomeDropped)
		d.log.Warn("notice dropped after shutdown",
			zap.String("notice_id", notice.ID),
			zap.String("kind", string(notice.Kind)),
		)
		return
	}
	d.pending.Add(1)
	d.mu.Unlock()

	// detach from the request so delivery outlives the handler
	base := context.WithoutCancel(ctx)
	go func() {
		defer d.pending.Done()
		sendCtx, cancel := context.WithTimeout(base, d.timeout)
		defer cancel()

		if err := d.sender.Send(sendCtx, notice); err != nil {
			d.obsMetrics.RecordNotice(base, string(notice.Kind), outcomeFailed)
			d.coreMetrics.IncNoticeFailure(string(notice.Kind))
			d.log.Warn("notice delivery failed",
				zap.String("notice_id", notice.ID),
				zap.String("kind", string(notice.Kind)),
				zap.String("pump_id", notice.PumpID.String()),
				zap.Error(err),
			)
			return
		}
		d.obsMetrics.RecordNotice(base, string(notice.Kind), outcomeDelivered)
	}()
}

// Wait blocks until in-flight deliveries finish.
func (d *Dispatcher) Wait() {
	d.pending.Wait()
}

// Close stops accepting notices and waits for in-flight ones or ctx, whichever
// comes first.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
