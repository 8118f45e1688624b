package service

import (
	"strings"

	"github.com/shopspring/decimal"
	ledgerdomain "github.com/smallbiznis/pumpops/internal/ledger/domain"
)

// normalizePayload trims and validates p, returning the canonical payload and
// the amount to persist.
func normalizePayload(p ledgerdomain.Payload, amount decimal.Decimal) (ledgerdomain.Payload, decimal.Decimal, error) {
	switch v := p.(type) {
	case ledgerdomain.Fuel:
		return normalizeFuel(v, amount)
	case ledgerdomain.Maintenance:
		m, err := normalizeMaintenance(v)
		return m, amount, nonNegative(amount, err)
	case ledgerdomain.Investment:
		v.Name = strings.TrimSpace(v.Name)
		v.Supplier = strings.TrimSpace(v.Supplier)
		if v.Name == "" {
			return nil, decimal.Zero, ledgerdomain.ErrInvalidName
		}
		return v, amount, nonNegative(amount, nil)
	case ledgerdomain.Other:
		v.Description = strings.TrimSpace(v.Description)
		if v.Description == "" {
			return nil, decimal.Zero, ledgerdomain.ErrInvalidDescription
		}
		return v, amount, nonNegative(amount, nil)
	default:
		return nil, decimal.Zero, ledgerdomain.ErrInvalidPayload
	}
}

func normalizeFuel(f ledgerdomain.Fuel, amount decimal.Decimal) (ledgerdomain.Payload, decimal.Decimal, error) {
	if !f.LitersFilled.IsPositive() {
		return nil, decimal.Zero, ledgerdomain.ErrInvalidLiters
	}
	if f.CostPerLiter.IsNegative() {
		return nil, decimal.Zero, ledgerdomain.ErrInvalidCostPerLiter
	}
	if f.Discount.IsNegative() {
		return nil, decimal.Zero, ledgerdomain.ErrInvalidDiscount
	}
	if f.Odometer != nil && f.Odometer.IsNegative() {
		return nil, decimal.Zero, ledgerdomain.ErrInvalidOdometer
	}

	derived := f.Amount()
	if derived.IsNegative() {
		return nil, decimal.Zero, ledgerdomain.ErrInvalidDiscount
	}
	if !amount.IsZero() && !amount.Equal(derived) {
		return nil, decimal.Zero, ledgerdomain.ErrAmountMismatch
	}
	return f, derived, nil
}

func normalizeMaintenance(m ledgerdomain.Maintenance) (ledgerdomain.Payload, error) {
	m.Label = strings.TrimSpace(m.Label)
	m.Supplier = strings.TrimSpace(m.Supplier)
	if m.Label == "" {
		return nil, ledgerdomain.ErrInvalidLabel
	}

	m.Kind = ledgerdomain.MaintenanceKind(strings.ToLower(strings.TrimSpace(string(m.Kind))))
	switch m.Kind {
	case ledgerdomain.MaintenanceKindPreventive, ledgerdomain.MaintenanceKindCorrective:
	default:
		return nil, ledgerdomain.ErrInvalidMaintenanceKind
	}

	m.Status = ledgerdomain.MaintenanceStatus(strings.ToLower(strings.TrimSpace(string(m.Status))))
	if m.Status == "" {
		m.Status = ledgerdomain.MaintenanceDone
	}
	switch m.Status {
	case ledgerdomain.MaintenanceScheduled, ledgerdomain.MaintenanceInProgress,
		ledgerdomain.MaintenanceDone, ledgerdomain.MaintenanceCancelled:
	default:
		return nil, ledgerdomain.ErrInvalidMaintenanceStatus
	}
	return m, nil
}

func nonNegative(amount decimal.Decimal, err error) error {
	if err != nil {
		return err
	}
	if amount.IsNegative() {
		return ledgerdomain.ErrInvalidAmount
	}
	return nil
}
