package notify

import (
	"github.com/smallbiznis/pumpops/internal/config"
	obsmetrics "github.com/smallbiznis/pumpops/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Cfg         config.Config
	Log         *zap.Logger
	ObsMetrics  *obsmetrics.Metrics     `optional:"true"`
	CoreMetrics *obsmetrics.CoreMetrics `optional:"true"`
}

var Module = fx.Module("notify",
	fx.Provide(NewSenderFromConfig),
	fx.Provide(provideDispatcher),
	fx.Provide(func(d *Dispatcher) Notifier { return d }),
)

// NewSenderFromConfig routes each kind to its webhook, or to the log when no
// endpoint is configured.
func NewSenderFromConfig(p Params) Sender {
	log := p.Log.Named("notify")
	fallback := NewLogSender(log)
	routes := map[Kind]Sender{
		KindFinancial: fallback,
		KindCalendar:  fallback,
	}
	if url := p.Cfg.Notify.FinanceWebhookURL; url != "" {
		routes[KindFinancial] = NewWebhookSender(url, p.Cfg.Notify.Timeout)
	}
	if url := p.Cfg.Notify.CalendarWebhookURL; url != "" {
		routes[KindCalendar] = NewWebhookSender(url, p.Cfg.Notify.Timeout)
	}
	return NewRouter(routes)
}

func provideDispatcher(lc fx.Lifecycle, p Params, sender Sender) *Dispatcher {
	d := NewDispatcher(sender, p.Log, p.Cfg.Notify.Timeout, WithMetrics(p.ObsMetrics, p.CoreMetrics))
	lc.Append(fx.StopHook(d.Close))
	return d
}
