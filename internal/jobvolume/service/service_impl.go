package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/pumpops/internal/clock"
	jobdomain "github.com/smallbiznis/pumpops/internal/jobvolume/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  jobdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  jobdomain.Repository
}

func NewService(p Params) jobdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("jobvolume.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, req jobdomain.RecordRequest) (*jobdomain.JobCompletion, error) {
	if req.PumpID <= 0 {
		return nil, jobdomain.ErrInvalidPump
	}
	if !req.Volume.IsPositive() {
		return nil, jobdomain.ErrInvalidVolume
	}
	if req.CompletedOn.IsZero() {
		return nil, jobdomain.ErrInvalidCompletedOn
	}

	job := &jobdomain.JobCompletion{
		ID:          s.genID.Generate(),
		PumpID:      req.PumpID,
		BookingID:   req.BookingID,
		Volume:      req.Volume,
		CompletedOn: clock.DateOf(req.CompletedOn),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, s.db, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *Service) SumVolumeForPump(ctx context.Context, pumpID snowflake.ID) (decimal.Decimal, error) {
	if pumpID <= 0 {
		return decimal.Zero, jobdomain.ErrInvalidPump
	}
	return s.repo.SumVolume(ctx, s.db, pumpID)
}
