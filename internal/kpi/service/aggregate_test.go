package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	kpidomain "github.com/smallbiznis/pumpops/internal/kpi/domain"
	ledgerdomain "github.com/smallbiznis/pumpops/internal/ledger/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var opts = kpidomain.Options{MaintenanceIntervalDays: 180}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func fuel(on time.Time, liters, cpl string, odometer *decimal.Decimal) ledgerdomain.Event {
	f := ledgerdomain.Fuel{LitersFilled: dec(liters), CostPerLiter: dec(cpl), Odometer: odometer}
	return ledgerdomain.Event{Category: ledgerdomain.CategoryFuel, Amount: f.Amount(), OccurredOn: on, Payload: f}
}

func maintenance(on time.Time, amount string, status ledgerdomain.MaintenanceStatus, label string) ledgerdomain.Event {
	return ledgerdomain.Event{
		Category:   ledgerdomain.CategoryMaintenance,
		Amount:     dec(amount),
		OccurredOn: on,
		Payload:    ledgerdomain.Maintenance{Label: label, Kind: ledgerdomain.MaintenanceKindPreventive, Status: status},
	}
}

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

func TestAggregateEmptyLedger(t *testing.T) {
	snap := Aggregate(1, nil, decimal.Zero, opts)
	assert.True(t, snap.TotalVolumePumped.IsZero())
	assert.True(t, snap.AverageFuelPerVolumeUnit.IsZero())
	assert.Nil(t, snap.LastMaintenanceDate)
	assert.Nil(t, snap.PredictedNextMaintenanceDate)
	assert.Nil(t, snap.FuelPer1000Distance)
	assert.Equal(t, 0, snap.EventCount)
}

func TestAggregateFuelAddsLitersTimesCost(t *testing.T) {
	base := []ledgerdomain.Event{fuel(date(2026, 1, 1), "40", "6", nil)}
	before := Aggregate(1, base, dec("100"), opts)

	after := Aggregate(1, append(base, fuel(date(2026, 1, 2), "12.5", "5.8", nil)), dec("100"), opts)

	assert.True(t, after.TotalFuelCost.Sub(before.TotalFuelCost).Equal(dec("72.5")))
	assert.True(t, after.TotalFuelLiters.Sub(before.TotalFuelLiters).Equal(dec("12.5")))
	assert.True(t, after.AverageFuelPerVolumeUnit.Equal(dec("0.525")), after.AverageFuelPerVolumeUnit.String())
}

func TestAggregateTotalsByCategory(t *testing.T) {
	events := []ledgerdomain.Event{
		maintenance(date(2026, 2, 1), "300", ledgerdomain.MaintenanceDone, "hydraulics"),
		fuel(date(2026, 2, 2), "10", "5", nil),
		{Category: ledgerdomain.CategoryInvestment, Amount: dec("15000"), OccurredOn: date(2026, 2, 3), Payload: ledgerdomain.Investment{Name: "boom"}},
		{Category: ledgerdomain.CategoryOther, Amount: dec("45.10"), OccurredOn: date(2026, 2, 4), Payload: ledgerdomain.Other{Description: "toll"}},
	}
	snap := Aggregate(1, events, decimal.Zero, opts)

	assert.True(t, snap.TotalMaintenanceCost.Equal(dec("300")))
	assert.True(t, snap.TotalFuelCost.Equal(dec("50")))
	assert.True(t, snap.TotalInvestmentCost.Equal(dec("15000")))
	assert.True(t, snap.TotalOtherCost.Equal(dec("45.10")))
	assert.True(t, snap.TotalCost.Equal(dec("15395.10")))
	assert.True(t, snap.AverageFuelPerVolumeUnit.IsZero(), "zero volume means zero average")
	assert.Equal(t, 4, snap.EventCount)
}

func TestAggregatePredictsNextMaintenance(t *testing.T) {
	events := []ledgerdomain.Event{
		maintenance(date(2026, 1, 10), "100", ledgerdomain.MaintenanceDone, "a"),
		maintenance(date(2026, 3, 1), "100", ledgerdomain.MaintenanceDone, "b"),
		// recorded later but dated earlier: does not move the last date back
		maintenance(date(2026, 2, 1), "100", ledgerdomain.MaintenanceDone, "c"),
	}
	snap := Aggregate(1, events, decimal.Zero, opts)

	require.NotNil(t, snap.LastMaintenanceDate)
	assert.True(t, date(2026, 3, 1).Equal(*snap.LastMaintenanceDate))
	require.NotNil(t, snap.PredictedNextMaintenanceDate)
	assert.True(t, date(2026, 3, 1).AddDate(0, 0, 180).Equal(*snap.PredictedNextMaintenanceDate))
}

func TestAggregateIgnoresUnperformedMaintenanceForCadence(t *testing.T) {
	events := []ledgerdomain.Event{
		maintenance(date(2026, 1, 10), "100", ledgerdomain.MaintenanceDone, "done"),
		maintenance(date(2026, 4, 1), "80", ledgerdomain.MaintenanceCancelled, "cancelled"),
		maintenance(date(2026, 5, 1), "0", ledgerdomain.MaintenanceScheduled, "planned"),
	}
	snap := Aggregate(1, events, decimal.Zero, opts)

	require.NotNil(t, snap.LastMaintenanceDate)
	assert.True(t, date(2026, 1, 10).Equal(*snap.LastMaintenanceDate))
	assert.True(t, snap.TotalMaintenanceCost.Equal(dec("180")))
}

func TestAggregateOnlyCancelledMaintenanceHasNoPrediction(t *testing.T) {
	events := []ledgerdomain.Event{maintenance(date(2026, 1, 10), "0", ledgerdomain.MaintenanceCancelled, "x")}
	snap := Aggregate(1, events, decimal.Zero, opts)
	assert.Nil(t, snap.PredictedNextMaintenanceDate)
}

func TestAggregateUsesConfiguredInterval(t *testing.T) {
	events := []ledgerdomain.Event{maintenance(date(2026, 1, 1), "0", ledgerdomain.MaintenanceDone, "x")}
	snap := Aggregate(1, events, decimal.Zero, kpidomain.Options{MaintenanceIntervalDays: 90})
	require.NotNil(t, snap.PredictedNextMaintenanceDate)
	assert.True(t, date(2026, 4, 1).Equal(*snap.PredictedNextMaintenanceDate))
}

func TestAggregateFuelPer1000Distance(t *testing.T) {
	events := []ledgerdomain.Event{
		fuel(date(2026, 1, 1), "100", "5", ptr(dec("10000"))),
		fuel(date(2026, 1, 5), "60", "5", ptr(dec("10200"))),
		fuel(date(2026, 1, 9), "40", "5", ptr(dec("10400"))),
		fuel(date(2026, 1, 9), "15", "5", nil),
	}
	snap := Aggregate(1, events, decimal.Zero, opts)

	require.NotNil(t, snap.FuelPer1000Distance)
	// (60 + 40) liters over 400 distance units
	assert.True(t, snap.FuelPer1000Distance.Equal(dec("250")), snap.FuelPer1000Distance.String())
	assert.True(t, snap.TotalFuelLiters.Equal(dec("215")))
}

func TestAggregateSingleOdometerReading(t *testing.T) {
	events := []ledgerdomain.Event{fuel(date(2026, 1, 1), "100", "5", ptr(dec("10000")))}
	assert.Nil(t, Aggregate(1, events, decimal.Zero, opts).FuelPer1000Distance)
}
