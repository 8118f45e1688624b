package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pumpops/internal/clock"
	ledgerdomain "github.com/smallbiznis/pumpops/internal/ledger/domain"
	obsmetrics "github.com/smallbiznis/pumpops/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       ledgerdomain.Repository
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       ledgerdomain.Repository
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) ledgerdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("ledger.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) Append(ctx context.Context, req ledgerdomain.AppendRequest) (*ledgerdomain.Event, error) {
	if req.PumpID <= 0 {
		return nil, ledgerdomain.ErrInvalidPump
	}
	if req.OccurredOn.IsZero() {
		return nil, ledgerdomain.ErrInvalidOccurredOn
	}

	payload, amount, err := normalizePayload(req.Payload, req.Amount)
	if err != nil {
		return nil, err
	}
	raw, err := ledgerdomain.EncodePayload(payload)
	if err != nil {
		return nil, err
	}

	record := &ledgerdomain.EventRecord{
		ID:         s.genID.Generate(),
		PumpID:     req.PumpID,
		Category:   payload.Category(),
		Amount:     amount,
		OccurredOn: clock.DateOf(req.OccurredOn),
		Payload:    datatypes.JSON(raw),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, s.db, record); err != nil {
		return nil, err
	}

	s.obsMetrics.RecordLedgerEvent(ctx, string(record.Category))
	s.log.Debug("ledger event appended",
		zap.String("event_id", record.ID.String()),
		zap.String("pump_id", record.PumpID.String()),
		zap.String("category", string(record.Category)),
		zap.String("amount", record.Amount.String()),
	)

	return &ledgerdomain.Event{
		ID:         record.ID,
		PumpID:     record.PumpID,
		Category:   record.Category,
		Amount:     record.Amount,
		OccurredOn: record.OccurredOn,
		Payload:    payload,
		CreatedAt:  record.CreatedAt,
	}, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*ledgerdomain.Event, error) {
	record, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ledgerdomain.ErrNotFound
	}
	event, err := record.ToEvent()
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *Service) ListByPump(ctx context.Context, pumpID snowflake.ID) ([]ledgerdomain.Event, error) {
	if pumpID <= 0 {
		return nil, ledgerdomain.ErrInvalidPump
	}
	records, err := s.repo.ListByPump(ctx, s.db, pumpID)
	if err != nil {
		return nil, err
	}

	events := make([]ledgerdomain.Event, 0, len(records))
	for _, record := range records {
		event, err := record.ToEvent()
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}
