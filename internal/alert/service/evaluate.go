package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	alertdomain "github.com/smallbiznis/pumpops/internal/alert/domain"
	"github.com/smallbiznis/pumpops/internal/clock"
	"github.com/smallbiznis/pumpops/internal/config"
	kpidomain "github.com/smallbiznis/pumpops/internal/kpi/domain"
)

const dateLayout = "2006-01-02"

// Evaluate derives the alerts for snap as of today. Same inputs, same output.
func Evaluate(snap kpidomain.Snapshot, today time.Time, policy config.Policy) []alertdomain.Alert {
	alerts := make([]alertdomain.Alert, 0, 2)
	if a, ok := maintenanceDue(snap, clock.DateOf(today), policy.MaintenanceHorizonDays); ok {
		alerts = append(alerts, a)
	}
	if a, ok := fuelAnomaly(snap, policy); ok {
		alerts = append(alerts, a)
	}
	return alerts
}

func maintenanceDue(snap kpidomain.Snapshot, today time.Time, horizonDays int) (alertdomain.Alert, bool) {
	if snap.PredictedNextMaintenanceDate == nil {
		return alertdomain.Alert{}, false
	}
	due := clock.DateOf(*snap.PredictedNextMaintenanceDate)
	days := daysBetween(today, due)

	switch {
	case days < 0:
		return alertdomain.Alert{
			PumpID:         snap.PumpID,
			Type:           alertdomain.AlertTypeMaintenanceDue,
			Severity:       alertdomain.SeverityError,
			Message:        fmt.Sprintf("Maintenance overdue by %d days (was due %s)", -days, due.Format(dateLayout)),
			ActionRequired: true,
		}, true
	case days == 0:
		return alertdomain.Alert{
			PumpID:         snap.PumpID,
			Type:           alertdomain.AlertTypeMaintenanceDue,
			Severity:       alertdomain.SeverityWarning,
			Message:        fmt.Sprintf("Maintenance due today (%s)", due.Format(dateLayout)),
			ActionRequired: true,
		}, true
	case days <= horizonDays:
		return alertdomain.Alert{
			PumpID:         snap.PumpID,
			Type:           alertdomain.AlertTypeMaintenanceDue,
			Severity:       alertdomain.SeverityWarning,
			Message:        fmt.Sprintf("Maintenance due in %d days (%s)", days, due.Format(dateLayout)),
			ActionRequired: true,
		}, true
	default:
		return alertdomain.Alert{}, false
	}
}

// fuelAnomaly prefers the distance-based ratio; without odometer data it
// falls back to liters per unit of concrete pumped.
func fuelAnomaly(snap kpidomain.Snapshot, policy config.Policy) (alertdomain.Alert, bool) {
	var (
		value decimal.Decimal
		limit decimal.Decimal
		unit  string
	)
	if snap.FuelPer1000Distance != nil {
		value = *snap.FuelPer1000Distance
		limit = decimal.NewFromFloat(policy.FuelPer1000DistanceLimit)
		unit = "L per 1000 distance units"
	} else {
		value = snap.AverageFuelPerVolumeUnit
		limit = decimal.NewFromFloat(policy.FuelPerVolumeThreshold)
		unit = "L per volume unit"
	}
	if !value.GreaterThan(limit) {
		return alertdomain.Alert{}, false
	}
	return alertdomain.Alert{
		PumpID:         snap.PumpID,
		Type:           alertdomain.AlertTypeFuelAnomaly,
		Severity:       alertdomain.SeverityWarning,
		Message:        fmt.Sprintf("Fuel consumption %s %s exceeds %s", value.String(), unit, limit.String()),
		ActionRequired: false,
	}, true
}

// Both arguments are UTC midnights, so the hour count is an exact multiple of 24.
func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
