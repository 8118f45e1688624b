package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/pumpops/internal/config"
	jobdomain "github.com/smallbiznis/pumpops/internal/jobvolume/domain"
	kpidomain "github.com/smallbiznis/pumpops/internal/kpi/domain"
	ledgerdomain "github.com/smallbiznis/pumpops/internal/ledger/domain"
	obsmetrics "github.com/smallbiznis/pumpops/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log         *zap.Logger
	Policy      *config.PolicyHolder
	LedgerSvc   ledgerdomain.Service
	VolumeSvc   jobdomain.Service
	ObsMetrics  *obsmetrics.Metrics     `optional:"true"`
	CoreMetrics *obsmetrics.CoreMetrics `optional:"true"`
}

type Service struct {
	log         *zap.Logger
	policy      *config.PolicyHolder
	ledgerSvc   ledgerdomain.Service
	volumeSvc   jobdomain.Service
	obsMetrics  *obsmetrics.Metrics
	coreMetrics *obsmetrics.CoreMetrics
}

func NewService(p Params) kpidomain.Service {
	return &Service{
		log:         p.Log.Named("kpi.service"),
		policy:      p.Policy,
		ledgerSvc:   p.LedgerSvc,
		volumeSvc:   p.VolumeSvc,
		obsMetrics:  p.ObsMetrics,
		coreMetrics: p.CoreMetrics,
	}
}

func (s *Service) ComputeKPIs(ctx context.Context, pumpID snowflake.ID) (*kpidomain.Snapshot, error) {
	start := time.Now()
	defer func() { s.coreMetrics.ObserveKPICompute(time.Since(start)) }()

	// The ledger is authoritative: failing to read it fails the snapshot.
	events, err := s.ledgerSvc.ListByPump(ctx, pumpID)
	if err != nil {
		return nil, err
	}

	var degraded []string
	volume, err := s.volumeSvc.SumVolumeForPump(ctx, pumpID)
	if err != nil {
		derr := &kpidomain.DegradedDataError{Source: kpidomain.SourceJobVolume, Err: err}
		s.log.Warn("volume source unavailable, reporting zero volume",
			zap.String("pump_id", pumpID.String()),
			zap.Error(derr),
		)
		s.obsMetrics.RecordDegradedRead(ctx, kpidomain.SourceJobVolume)
		volume = decimal.Zero
		degraded = append(degraded, kpidomain.SourceJobVolume)
	}

	snap := Aggregate(pumpID, events, volume, kpidomain.Options{
		MaintenanceIntervalDays: s.policy.Get().MaintenanceIntervalDays,
	})
	if len(degraded) > 0 {
		snap.Degraded = true
		snap.DegradedSources = degraded
	}
	return &snap, nil
}
