package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	CheckConflict(ctx context.Context, slot Slot, exclude *snowflake.ID) (bool, error)
	Create(ctx context.Context, draft Draft) (*Booking, error)
	Move(ctx context.Context, id snowflake.ID, date time.Time, slotTime *string) (*Booking, error)
	Update(ctx context.Context, id snowflake.ID, draft Draft) (*Booking, error)
	Delete(ctx context.Context, id snowflake.ID) error
	Get(ctx context.Context, id snowflake.ID) (*Booking, error)
	ListByPump(ctx context.Context, pumpID snowflake.ID, limit int) ([]Booking, error)
}
