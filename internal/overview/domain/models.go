package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	alertdomain "github.com/smallbiznis/pumpops/internal/alert/domain"
	bookingdomain "github.com/smallbiznis/pumpops/internal/booking/domain"
	kpidomain "github.com/smallbiznis/pumpops/internal/kpi/domain"
	ledgerdomain "github.com/smallbiznis/pumpops/internal/ledger/domain"
	pumpdomain "github.com/smallbiznis/pumpops/internal/pump/domain"
)

// SourceBookings marks an overview whose booking list could not be read.
const SourceBookings = "bookings"

// Overview is everything an operator sees for one pump on one day.
type Overview struct {
	Pump            pumpdomain.Pump         `json:"pump"`
	KPIs            kpidomain.Snapshot      `json:"kpis"`
	Alerts          []alertdomain.Alert     `json:"alerts"`
	RecentBookings  []bookingdomain.Booking `json:"recent_bookings"`
	AsOf            time.Time               `json:"as_of"`
	Degraded        bool                    `json:"degraded"`
	DegradedSources []string                `json:"degraded_sources,omitempty"`
}

// OccurredOn defaults to today when zero.
type MaintenanceRequest struct {
	OccurredOn  time.Time
	Amount      decimal.Decimal
	Maintenance ledgerdomain.Maintenance
}

// Amount is optional for fuel; when set it must match the fill.
type FuelRequest struct {
	OccurredOn time.Time
	Amount     decimal.Decimal
	Fuel       ledgerdomain.Fuel
}

type InvestmentRequest struct {
	OccurredOn time.Time
	Amount     decimal.Decimal
	Investment ledgerdomain.Investment
}

type ExpenseRequest struct {
	OccurredOn time.Time
	Amount     decimal.Decimal
	Expense    ledgerdomain.Other
}

type JobCompletionRequest struct {
	BookingID   *snowflake.ID
	Volume      decimal.Decimal
	CompletedOn time.Time
}
