package service

import (
	"context"
	"time"

	alertdomain "github.com/smallbiznis/pumpops/internal/alert/domain"
	"github.com/smallbiznis/pumpops/internal/config"
	kpidomain "github.com/smallbiznis/pumpops/internal/kpi/domain"
	obsmetrics "github.com/smallbiznis/pumpops/internal/observability/metrics"
	"go.uber.org/fx"
)

type Params struct {
	fx.In

	Policy     *config.PolicyHolder
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	policy     *config.PolicyHolder
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) alertdomain.Service {
	return &Service{
		policy:     p.Policy,
		obsMetrics: p.ObsMetrics,
	}
}

// Evaluate reads the current policy once and delegates to the pure Evaluate.
func (s *Service) Evaluate(ctx context.Context, snap kpidomain.Snapshot, today time.Time) []alertdomain.Alert {
	alerts := Evaluate(snap, today, s.policy.Get())
	for _, a := range alerts {
		s.obsMetrics.RecordAlert(ctx, string(a.Type), string(a.Severity))
	}
	return alerts
}
