package domain

import (
	"github.com/bwmarrin/snowflake"
)

type AlertType string

const (
	AlertTypeMaintenanceDue AlertType = "maintenance_due"
	AlertTypeFuelAnomaly    AlertType = "fuel_anomaly"
)

type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Alert is transient: it is rebuilt on every read and never persisted.
type Alert struct {
	PumpID         snowflake.ID `json:"pump_id"`
	Type           AlertType    `json:"type"`
	Severity       Severity     `json:"severity"`
	Message        string       `json:"message"`
	ActionRequired bool         `json:"action_required"`
}
