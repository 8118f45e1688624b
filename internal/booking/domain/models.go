package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// LifecycleState of a booking. Reserved holds a client commitment; Planned is
// fully staffed and placed on a pump slot.
type LifecycleState string

const (
	LifecycleReserved LifecycleState = "reserved"
	LifecyclePlanned  LifecycleState = "planned"
)

func (s LifecycleState) Valid() bool {
	switch s {
	case LifecycleReserved, LifecyclePlanned:
		return true
	default:
		return false
	}
}

// TimeLayout is the wall-clock format of a slot time.
const TimeLayout = "15:04"

// DateLayout is the calendar format used on the wire.
const DateLayout = "2006-01-02"

// Booking claims a pump for a point-in-time slot. NULL slot times are not
// unique-constrained, so several unscheduled reservations may share a date.
type Booking struct {
	ID                snowflake.ID                `gorm:"primaryKey" json:"id"`
	PumpID            *snowflake.ID               `gorm:"uniqueIndex:ux_bookings_pump_slot,priority:1" json:"pump_id,omitempty"`
	SlotDate          *time.Time                  `gorm:"uniqueIndex:ux_bookings_pump_slot,priority:2" json:"-"`
	SlotTime          *string                     `gorm:"type:varchar(5);uniqueIndex:ux_bookings_pump_slot,priority:3" json:"time,omitempty"`
	LifecycleState    LifecycleState              `gorm:"type:varchar(16);not null" json:"lifecycle_state"`
	ClientID          string                      `gorm:"type:text;not null" json:"client_id"`
	ResponsiblePerson string                      `gorm:"type:text;not null" json:"responsible_person"`
	CompanyID         string                      `gorm:"type:text;not null" json:"company_id"`
	Address           string                      `gorm:"type:text" json:"address,omitempty"`
	AddressNumber     string                      `gorm:"type:text" json:"address_number,omitempty"`
	CrewAssistants    datatypes.JSONSlice[string] `json:"crew_assistants"`
	Notes             string                      `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt         time.Time                   `json:"created_at"`
	UpdatedAt         time.Time                   `json:"updated_at"`

	// Date is the wire form of SlotDate.
	Date string `gorm:"-" json:"date,omitempty"`
}

func (Booking) TableName() string { return "bookings" }

// HasSlot reports whether the booking occupies a constrained slot.
func (b Booking) HasSlot() bool {
	return b.PumpID != nil && b.SlotDate != nil && b.SlotTime != nil
}

// Fill copies SlotDate into the wire field.
func (b *Booking) Fill() {
	if b.SlotDate != nil {
		b.Date = b.SlotDate.UTC().Format(DateLayout)
	} else {
		b.Date = ""
	}
	if b.CrewAssistants == nil {
		b.CrewAssistants = datatypes.JSONSlice[string]{}
	}
}

// Draft is the caller-editable part of a booking.
type Draft struct {
	PumpID            *snowflake.ID
	Date              *time.Time
	Time              *string
	LifecycleState    LifecycleState
	ClientID          string
	ResponsiblePerson string
	CompanyID         string
	Address           string
	AddressNumber     string
	CrewAssistants    []string
	Notes             string

	// Unparsed holds fields the caller received but could not decode, so they
	// are reported together with every other violation of the draft.
	Unparsed []FieldViolation
}

// UnparsedField returns the decode failure recorded for field, if any.
func (d Draft) UnparsedField(field string) (FieldViolation, bool) {
	for _, v := range d.Unparsed {
		if v.Field == field {
			return v, true
		}
	}
	return FieldViolation{}, false
}

// Slot is a concrete (pump, date, time) triple.
type Slot struct {
	PumpID snowflake.ID
	Date   time.Time
	Time   string
}

func (s Slot) DateString() string {
	return s.Date.UTC().Format(DateLayout)
}
