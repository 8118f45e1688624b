package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, b *Booking) error
	UpdateSlot(ctx context.Context, db *gorm.DB, id snowflake.ID, date *time.Time, slotTime *string, updatedAt time.Time) error
	Update(ctx context.Context, db *gorm.DB, b *Booking) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
	FindBySlot(ctx context.Context, db *gorm.DB, slot Slot, exclude *snowflake.ID) (*Booking, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Booking, error)
	ListByPump(ctx context.Context, db *gorm.DB, pumpID snowflake.ID, limit int) ([]Booking, error)
}
