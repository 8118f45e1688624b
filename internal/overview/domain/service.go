package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	jobdomain "github.com/smallbiznis/pumpops/internal/jobvolume/domain"
	ledgerdomain "github.com/smallbiznis/pumpops/internal/ledger/domain"
)

// Service is the single surface the operator UI talks to for a pump.
type Service interface {
	GetPumpOverview(ctx context.Context, pumpID snowflake.ID) (*Overview, error)
	RecordMaintenance(ctx context.Context, pumpID snowflake.ID, req MaintenanceRequest) (*ledgerdomain.Event, error)
	RecordFuel(ctx context.Context, pumpID snowflake.ID, req FuelRequest) (*ledgerdomain.Event, error)
	RecordInvestment(ctx context.Context, pumpID snowflake.ID, req InvestmentRequest) (*ledgerdomain.Event, error)
	RecordExpense(ctx context.Context, pumpID snowflake.ID, req ExpenseRequest) (*ledgerdomain.Event, error)
	RecordJobCompletion(ctx context.Context, pumpID snowflake.ID, req JobCompletionRequest) (*jobdomain.JobCompletion, error)
}

var ErrBookingPumpMismatch = errors.New("booking_pump_mismatch")
