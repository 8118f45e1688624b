package service

import (
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	kpidomain "github.com/smallbiznis/pumpops/internal/kpi/domain"
	ledgerdomain "github.com/smallbiznis/pumpops/internal/ledger/domain"
)

const ratioPlaces = 4

var thousand = decimal.NewFromInt(1000)

// Aggregate reduces a pump's events into a snapshot. events must be in
// insertion order. The function reads nothing but its arguments.
func Aggregate(pumpID snowflake.ID, events []ledgerdomain.Event, volume decimal.Decimal, opts kpidomain.Options) kpidomain.Snapshot {
	snap := kpidomain.Snapshot{
		PumpID:                   pumpID,
		TotalVolumePumped:        volume,
		TotalFuelLiters:          decimal.Zero,
		TotalMaintenanceCost:     decimal.Zero,
		TotalFuelCost:            decimal.Zero,
		TotalInvestmentCost:      decimal.Zero,
		TotalOtherCost:           decimal.Zero,
		TotalCost:                decimal.Zero,
		AverageFuelPerVolumeUnit: decimal.Zero,
		EventCount:               len(events),
	}

	var (
		lastMaintenance *time.Time
		readings        []odometerReading
	)
	for i, event := range events {
		switch p := event.Payload.(type) {
		case ledgerdomain.Maintenance:
			snap.TotalMaintenanceCost = snap.TotalMaintenanceCost.Add(event.Amount)
			// >= lets a later insertion win a same-day tie
			if p.Performed() && (lastMaintenance == nil || !event.OccurredOn.Before(*lastMaintenance)) {
				on := event.OccurredOn
				lastMaintenance = &on
			}
		case ledgerdomain.Fuel:
			snap.TotalFuelCost = snap.TotalFuelCost.Add(event.Amount)
			snap.TotalFuelLiters = snap.TotalFuelLiters.Add(p.LitersFilled)
			if p.Odometer != nil {
				readings = append(readings, odometerReading{
					seq:    i,
					on:     event.OccurredOn,
					value:  *p.Odometer,
					liters: p.LitersFilled,
				})
			}
		case ledgerdomain.Investment:
			snap.TotalInvestmentCost = snap.TotalInvestmentCost.Add(event.Amount)
		case ledgerdomain.Other:
			snap.TotalOtherCost = snap.TotalOtherCost.Add(event.Amount)
		}
	}

	snap.TotalCost = snap.TotalMaintenanceCost.
		Add(snap.TotalFuelCost).
		Add(snap.TotalInvestmentCost).
		Add(snap.TotalOtherCost)

	if volume.IsPositive() {
		snap.AverageFuelPerVolumeUnit = snap.TotalFuelLiters.DivRound(volume, ratioPlaces)
	}

	snap.FuelPer1000Distance = fuelPer1000Distance(readings)

	if lastMaintenance != nil {
		snap.LastMaintenanceDate = lastMaintenance
		next := lastMaintenance.AddDate(0, 0, opts.MaintenanceIntervalDays)
		snap.PredictedNextMaintenanceDate = &next
	}

	return snap
}

type odometerReading struct {
	seq    int
	on     time.Time
	value  decimal.Decimal
	liters decimal.Decimal
}

// fuelPer1000Distance needs two readings. The first fill only sets the
// baseline, so its liters are not counted against the distance.
func fuelPer1000Distance(readings []odometerReading) *decimal.Decimal {
	if len(readings) < 2 {
		return nil
	}
	sort.SliceStable(readings, func(i, j int) bool {
		if !readings[i].on.Equal(readings[j].on) {
			return readings[i].on.Before(readings[j].on)
		}
		return readings[i].seq < readings[j].seq
	})

	first, last := readings[0], readings[len(readings)-1]
	distance := last.value.Sub(first.value)
	if !distance.IsPositive() {
		return nil
	}

	liters := decimal.Zero
	for _, r := range readings[1:] {
		liters = liters.Add(r.liters)
	}
	ratio := liters.Mul(thousand).DivRound(distance, ratioPlaces)
	return &ratio
}
