package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	pumpdomain "github.com/smallbiznis/pumpops/internal/pump/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() pumpdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, p *pumpdomain.Pump) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO pumps (id, prefix, status, owner_id, model, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.Prefix,
		p.Status,
		p.OwnerID,
		p.Model,
		p.CreatedAt,
		p.UpdatedAt,
	).Error
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, p *pumpdomain.Pump) error {
	return db.WithContext(ctx).Exec(
		`UPDATE pumps SET status = ?, updated_at = ? WHERE id = ?`,
		p.Status,
		p.UpdatedAt,
		p.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*pumpdomain.Pump, error) {
	var pump pumpdomain.Pump
	err := db.WithContext(ctx).Raw(
		`SELECT id, prefix, status, owner_id, model, created_at, updated_at
		 FROM pumps WHERE id = ?`,
		id,
	).Scan(&pump).Error
	if err != nil {
		return nil, err
	}
	if pump.ID == 0 {
		return nil, nil
	}
	return &pump, nil
}

func (r *repo) FindByPrefix(ctx context.Context, db *gorm.DB, prefix string) (*pumpdomain.Pump, error) {
	var pump pumpdomain.Pump
	err := db.WithContext(ctx).Raw(
		`SELECT id, prefix, status, owner_id, model, created_at, updated_at
		 FROM pumps WHERE prefix = ?`,
		prefix,
	).Scan(&pump).Error
	if err != nil {
		return nil, err
	}
	if pump.ID == 0 {
		return nil, nil
	}
	return &pump, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]pumpdomain.Pump, error) {
	var pumps []pumpdomain.Pump
	err := db.WithContext(ctx).Raw(
		`SELECT id, prefix, status, owner_id, model, created_at, updated_at
		 FROM pumps ORDER BY prefix ASC`,
	).Scan(&pumps).Error
	if err != nil {
		return nil, err
	}
	return pumps, nil
}
