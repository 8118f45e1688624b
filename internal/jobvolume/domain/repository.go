package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, job *JobCompletion) error
	SumVolume(ctx context.Context, db *gorm.DB, pumpID snowflake.ID) (decimal.Decimal, error)
}
