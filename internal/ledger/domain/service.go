package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	Append(ctx context.Context, req AppendRequest) (*Event, error)
	Get(ctx context.Context, id snowflake.ID) (*Event, error)
	ListByPump(ctx context.Context, pumpID snowflake.ID) ([]Event, error)
}

// AppendRequest carries one new event. Amount is ignored for fuel unless set,
// in which case it must equal the derived fill cost.
type AppendRequest struct {
	PumpID     snowflake.ID
	OccurredOn time.Time
	Amount     decimal.Decimal
	Payload    Payload
}

var (
	ErrInvalidPump              = errors.New("invalid_pump_id")
	ErrInvalidOccurredOn        = errors.New("invalid_occurred_on")
	ErrInvalidAmount            = errors.New("invalid_amount")
	ErrInvalidPayload           = errors.New("invalid_payload")
	ErrInvalidCategory          = errors.New("invalid_category")
	ErrInvalidLiters            = errors.New("invalid_liters_filled")
	ErrInvalidCostPerLiter      = errors.New("invalid_cost_per_liter")
	ErrInvalidDiscount          = errors.New("invalid_discount")
	ErrInvalidOdometer          = errors.New("invalid_odometer")
	ErrAmountMismatch           = errors.New("fuel_amount_mismatch")
	ErrInvalidLabel             = errors.New("invalid_label")
	ErrInvalidMaintenanceKind   = errors.New("invalid_maintenance_kind")
	ErrInvalidMaintenanceStatus = errors.New("invalid_maintenance_status")
	ErrInvalidName              = errors.New("invalid_name")
	ErrInvalidDescription       = errors.New("invalid_description")
	ErrNotFound                 = errors.New("ledger_event_not_found")
)
