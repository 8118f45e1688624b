package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Service is the job-completion source. It is not authoritative for any
// financial figure; readers are expected to tolerate its failures.
type Service interface {
	Record(ctx context.Context, req RecordRequest) (*JobCompletion, error)
	SumVolumeForPump(ctx context.Context, pumpID snowflake.ID) (decimal.Decimal, error)
}

type RecordRequest struct {
	PumpID      snowflake.ID
	BookingID   *snowflake.ID
	Volume      decimal.Decimal
	CompletedOn time.Time
}

var (
	ErrInvalidPump        = errors.New("invalid_pump_id")
	ErrInvalidVolume      = errors.New("invalid_volume")
	ErrInvalidCompletedOn = errors.New("invalid_completed_on")
)
