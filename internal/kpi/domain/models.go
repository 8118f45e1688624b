package domain

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Snapshot is the derived operational picture of one pump. It is recomputed
// from the full ledger on every read and never stored.
type Snapshot struct {
	PumpID                       snowflake.ID     `json:"pump_id"`
	TotalVolumePumped            decimal.Decimal  `json:"total_volume_pumped"`
	TotalFuelLiters              decimal.Decimal  `json:"total_fuel_liters"`
	TotalMaintenanceCost         decimal.Decimal  `json:"total_maintenance_cost"`
	TotalFuelCost                decimal.Decimal  `json:"total_fuel_cost"`
	TotalInvestmentCost          decimal.Decimal  `json:"total_investment_cost"`
	TotalOtherCost               decimal.Decimal  `json:"total_other_cost"`
	TotalCost                    decimal.Decimal  `json:"total_cost"`
	AverageFuelPerVolumeUnit     decimal.Decimal  `json:"average_fuel_per_volume_unit"`
	FuelPer1000Distance          *decimal.Decimal `json:"fuel_per_1000_distance,omitempty"`
	LastMaintenanceDate          *time.Time       `json:"last_maintenance_date,omitempty"`
	PredictedNextMaintenanceDate *time.Time       `json:"predicted_next_maintenance_date,omitempty"`
	EventCount                   int              `json:"event_count"`
	Degraded                     bool             `json:"degraded"`
	DegradedSources              []string         `json:"degraded_sources,omitempty"`
}

// Options parameterizes the aggregation.
type Options struct {
	MaintenanceIntervalDays int
}

const SourceJobVolume = "job_volume"

// DegradedDataError reports a non-authoritative source that could not be
// read. It is logged by the caller, never returned from a read.
type DegradedDataError struct {
	Source string
	Err    error
}

func (e *DegradedDataError) Error() string {
	return fmt.Sprintf("degraded data from %s: %v", e.Source, e.Err)
}

func (e *DegradedDataError) Unwrap() error { return e.Err }
