package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Category tags a ledger event with the kind of payload it carries.
type Category string

const (
	CategoryMaintenance Category = "maintenance"
	CategoryFuel        Category = "fuel"
	CategoryInvestment  Category = "investment"
	CategoryOther       Category = "other"
)

type MaintenanceKind string

const (
	MaintenanceKindPreventive MaintenanceKind = "preventive"
	MaintenanceKindCorrective MaintenanceKind = "corrective"
)

type MaintenanceStatus string

const (
	MaintenanceScheduled  MaintenanceStatus = "scheduled"
	MaintenanceInProgress MaintenanceStatus = "in_progress"
	MaintenanceDone       MaintenanceStatus = "done"
	MaintenanceCancelled  MaintenanceStatus = "cancelled"
)

// Payload is the category-specific body of a ledger event. The set of
// implementations is closed: Maintenance, Fuel, Investment and Other.
type Payload interface {
	Category() Category
	isPayload()
}

// Maintenance records a service performed (or planned) on a pump.
type Maintenance struct {
	Label    string            `json:"label"`
	Kind     MaintenanceKind   `json:"kind"`
	Status   MaintenanceStatus `json:"status"`
	Supplier string            `json:"supplier,omitempty"`
}

// Fuel records a fill-up. Its amount is always derived from the fill.
type Fuel struct {
	LitersFilled decimal.Decimal  `json:"liters_filled"`
	CostPerLiter decimal.Decimal  `json:"cost_per_liter"`
	Discount     decimal.Decimal  `json:"discount"`
	Odometer     *decimal.Decimal `json:"odometer,omitempty"`
}

// Investment records a capital expense on a pump.
type Investment struct {
	Name     string `json:"name"`
	Supplier string `json:"supplier,omitempty"`
}

// Other records an expense that fits none of the other categories.
type Other struct {
	Description string `json:"description"`
}

func (Maintenance) Category() Category { return CategoryMaintenance }
func (Fuel) Category() Category        { return CategoryFuel }
func (Investment) Category() Category  { return CategoryInvestment }
func (Other) Category() Category       { return CategoryOther }

func (Maintenance) isPayload() {}
func (Fuel) isPayload()        {}
func (Investment) isPayload()  {}
func (Other) isPayload()       {}

// Amount is litersFilled × costPerLiter − discount.
func (f Fuel) Amount() decimal.Decimal {
	return f.LitersFilled.Mul(f.CostPerLiter).Sub(f.Discount)
}

// Performed reports whether the service actually happened. Scheduled and
// cancelled entries carry cost but do not reset the service cadence.
func (m Maintenance) Performed() bool {
	return m.Status == MaintenanceDone || m.Status == MaintenanceInProgress
}

// Event is an immutable dated record attached to a pump.
type Event struct {
	ID         snowflake.ID    `json:"id"`
	PumpID     snowflake.ID    `json:"pump_id"`
	Category   Category        `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredOn time.Time       `json:"occurred_on"`
	Payload    Payload         `json:"payload"`
	CreatedAt  time.Time       `json:"created_at"`
}

// EventRecord is the persisted row; the payload is stored as JSON next to
// the category tag that selects its decoder.
type EventRecord struct {
	ID         snowflake.ID    `gorm:"primaryKey;index:ix_ledger_events_pump,priority:2"`
	PumpID     snowflake.ID    `gorm:"not null;index:ix_ledger_events_pump,priority:1"`
	Category   Category        `gorm:"type:text;not null"`
	Amount     decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	OccurredOn time.Time       `gorm:"not null"`
	Payload    datatypes.JSON  `gorm:"not null"`
	CreatedAt  time.Time       `gorm:"not null"`
}

// TableName sets the database table name.
func (EventRecord) TableName() string { return "ledger_events" }
