package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	pumpdomain "github.com/smallbiznis/pumpops/internal/pump/domain"
	"github.com/smallbiznis/pumpops/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  pumpdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  pumpdomain.Repository
	genID *snowflake.Node
}

func New(p Params) pumpdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("pump.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req pumpdomain.CreateRequest) (*pumpdomain.Pump, error) {
	prefix := normalizePrefix(req.Prefix)
	if prefix == "" {
		return nil, pumpdomain.ErrInvalidPrefix
	}

	owner := strings.TrimSpace(req.OwnerID)
	if owner == "" {
		return nil, pumpdomain.ErrInvalidOwner
	}

	status := pumpdomain.StatusAvailable
	if req.Status != "" {
		status = pumpdomain.Status(strings.ToLower(strings.TrimSpace(string(req.Status))))
		if !status.Valid() {
			return nil, pumpdomain.ErrInvalidStatus
		}
	}

	now := time.Now().UTC()
	p := &pumpdomain.Pump{
		ID:        s.genID.Generate(),
		Prefix:    prefix,
		Status:    status,
		OwnerID:   owner,
		Model:     strings.TrimSpace(req.Model),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, p); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, pumpdomain.ErrPrefixTaken
		}
		return nil, err
	}

	s.log.Info("pump registered", zap.String("pump_id", p.ID.String()), zap.String("prefix", p.Prefix))
	return p, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*pumpdomain.Pump, error) {
	if id <= 0 {
		return nil, pumpdomain.ErrInvalidID
	}
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, pumpdomain.ErrNotFound
	}
	return item, nil
}

func (s *Service) GetByPrefix(ctx context.Context, prefix string) (*pumpdomain.Pump, error) {
	prefix = normalizePrefix(prefix)
	if prefix == "" {
		return nil, pumpdomain.ErrInvalidPrefix
	}
	item, err := s.repo.FindByPrefix(ctx, s.db, prefix)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, pumpdomain.ErrNotFound
	}
	return item, nil
}

func (s *Service) List(ctx context.Context) ([]pumpdomain.Pump, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []pumpdomain.Pump{}
	}
	return items, nil
}

func (s *Service) SetStatus(ctx context.Context, id snowflake.ID, status pumpdomain.Status) (*pumpdomain.Pump, error) {
	status = pumpdomain.Status(strings.ToLower(strings.TrimSpace(string(status))))
	if !status.Valid() {
		return nil, pumpdomain.ErrInvalidStatus
	}

	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Status == status {
		return item, nil
	}

	from := item.Status
	item.Status = status
	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateStatus(ctx, s.db, item); err != nil {
		return nil, err
	}

	s.log.Info("pump status changed",
		zap.String("pump_id", item.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(status)),
	)
	return item, nil
}

// Prefixes are painted on the truck, so "px-01 " and "PX-01" are the same pump.
func normalizePrefix(prefix string) string {
	return strings.ToUpper(strings.TrimSpace(prefix))
}
