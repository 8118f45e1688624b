package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, record *EventRecord) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*EventRecord, error)
	// ListByPump returns every event for the pump in insertion order.
	ListByPump(ctx context.Context, db *gorm.DB, pumpID snowflake.ID) ([]EventRecord, error)
}
