package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	jobdomain "github.com/smallbiznis/pumpops/internal/jobvolume/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() jobdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, j *jobdomain.JobCompletion) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO job_completions (id, pump_id, booking_id, volume, completed_on, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		j.ID,
		j.PumpID,
		j.BookingID,
		j.Volume,
		j.CompletedOn,
		j.CreatedAt,
	).Error
}

func (r *repo) SumVolume(ctx context.Context, db *gorm.DB, pumpID snowflake.ID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	row := db.WithContext(ctx).Raw(
		`SELECT SUM(volume) FROM job_completions WHERE pump_id = ?`,
		pumpID,
	).Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
