package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// JobCompletion records the concrete volume a pump delivered on one job.
type JobCompletion struct {
	ID          snowflake.ID    `json:"id" gorm:"primaryKey"`
	PumpID      snowflake.ID    `json:"pump_id" gorm:"not null;index:ix_job_completions_pump"`
	BookingID   *snowflake.ID   `json:"booking_id,omitempty"`
	Volume      decimal.Decimal `json:"volume" gorm:"type:numeric(18,4);not null"`
	CompletedOn time.Time       `json:"completed_on" gorm:"not null"`
	CreatedAt   time.Time       `json:"created_at" gorm:"not null"`
}

// TableName sets the database table name.
func (JobCompletion) TableName() string { return "job_completions" }
