package notify

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/oklog/ulid/v2"
)

// Kind routes a notice to its downstream system.
type Kind string

const (
	KindFinancial Kind = "financial"
	KindCalendar  Kind = "calendar"
)

// Notice is a one-way message to an external system. ID is unique per
// emission and doubles as the idempotency key on delivery; Key is stable for
// the thing being announced so receivers can upsert.
type Notice struct {
	ID         string         `json:"id"`
	Kind       Kind           `json:"kind"`
	Key        string         `json:"key"`
	PumpID     snowflake.ID   `json:"pump_id"`
	Subject    string         `json:"subject"`
	Payload    map[string]any `json:"payload,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

func NewNotice(kind Kind, key string, pumpID snowflake.ID, subject string, payload map[string]any) Notice {
	return Notice{
		ID:         ulid.Make().String(),
		Kind:       kind,
		Key:        key,
		PumpID:     pumpID,
		Subject:    subject,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}

// CalendarKey builds a readable, URL-safe key such as "px-01-oil-change-2026-03-14".
func CalendarKey(parts ...string) string {
	return slug.Make(strings.Join(parts, " "))
}

// Notifier publishes notices without blocking or failing the caller.
//
//go:generate mockgen -source=notice.go -destination=./mocks/mock_notifier.go -package=mocks
type Notifier interface {
	Notify(ctx context.Context, notice Notice)
}

// Sender delivers a single notice and reports the outcome.
type Sender interface {
	Send(ctx context.Context, notice Notice) error
}
