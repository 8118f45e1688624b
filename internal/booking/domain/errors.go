package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrInvalidID   = errors.New("invalid_booking_id")
	ErrInvalidPump = errors.New("invalid_pump_id")
	ErrNotFound    = errors.New("booking_not_found")
	ErrSlotTaken   = errors.New("slot_taken")
	ErrValidation  = errors.New("booking_validation_failed")
)

const (
	CodeRequired          = "required"
	CodeInvalid           = "invalid"
	CodeInvalidTransition = "invalid_transition"
)

type FieldViolation struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError lists every violated field of a draft, not just the first.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	return "booking validation failed: " + strings.Join(e.Fields(), ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Fields returns the violated field names in order.
func (e *ValidationError) Fields() []string {
	out := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		out = append(out, v.Field)
	}
	return out
}

func (e *ValidationError) add(field, code, message string) {
	e.Violations = append(e.Violations, FieldViolation{Field: field, Code: code, Message: message})
}

// Append records an already-built violation.
func (e *ValidationError) Append(v FieldViolation) {
	e.Violations = append(e.Violations, v)
}

func (e *ValidationError) Required(field string) {
	e.add(field, CodeRequired, field+" is required")
}

func (e *ValidationError) Invalid(field, message string) {
	e.add(field, CodeInvalid, message)
}

func (e *ValidationError) Transition(field, message string) {
	e.add(field, CodeInvalidTransition, message)
}

// Err returns nil when no violation was recorded.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Violations) == 0 {
		return nil
	}
	return e
}

// ConflictError names the booking already holding the requested slot.
type ConflictError struct {
	BookingID snowflake.ID
	Slot      Slot
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("slot %s %s %s is held by booking %s",
		e.Slot.PumpID, e.Slot.DateString(), e.Slot.Time, e.BookingID)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrSlotTaken
}
