package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status is the operational state of a pump.
type Status string

const (
	StatusAvailable     Status = "available"
	StatusInUse         Status = "in_use"
	StatusInMaintenance Status = "in_maintenance"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusInUse, StatusInMaintenance:
		return true
	default:
		return false
	}
}

// Pump is the aggregate root that bookings and ledger events reference by id.
type Pump struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Prefix    string       `json:"prefix" gorm:"type:text;not null;uniqueIndex:ux_pumps_prefix"`
	Status    Status       `json:"status" gorm:"type:text;not null;default:available"`
	OwnerID   string       `json:"owner_id" gorm:"type:text;not null"`
	Model     string       `json:"model,omitempty" gorm:"type:text"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null"`
}

// TableName sets the database table name.
func (Pump) TableName() string { return "pumps" }
