package domain

import (
	"encoding/json"
	"fmt"
)

// EncodePayload serializes p for storage.
func EncodePayload(p Payload) ([]byte, error) {
	if p == nil {
		return nil, ErrInvalidPayload
	}
	return json.Marshal(p)
}

// DecodePayload rebuilds the typed payload for category from raw JSON.
func DecodePayload(category Category, raw []byte) (Payload, error) {
	switch category {
	case CategoryMaintenance:
		var m Maintenance
		err := json.Unmarshal(raw, &m)
		return m, err
	case CategoryFuel:
		var f Fuel
		err := json.Unmarshal(raw, &f)
		return f, err
	case CategoryInvestment:
		var i Investment
		err := json.Unmarshal(raw, &i)
		return i, err
	case CategoryOther:
		var o Other
		err := json.Unmarshal(raw, &o)
		return o, err
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
}

// ToEvent converts a stored row into its typed form.
func (r EventRecord) ToEvent() (Event, error) {
	payload, err := DecodePayload(r.Category, r.Payload)
	if err != nil {
		return Event{}, fmt.Errorf("decode ledger event %s: %w", r.ID, err)
	}
	return Event{
		ID:         r.ID,
		PumpID:     r.PumpID,
		Category:   r.Category,
		Amount:     r.Amount,
		OccurredOn: r.OccurredOn.UTC(),
		Payload:    payload,
		CreatedAt:  r.CreatedAt,
	}, nil
}
