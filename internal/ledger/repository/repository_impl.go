package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	ledgerdomain "github.com/smallbiznis/pumpops/internal/ledger/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() ledgerdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, e *ledgerdomain.EventRecord) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO ledger_events (id, pump_id, category, amount, occurred_on, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.PumpID,
		e.Category,
		e.Amount,
		e.OccurredOn,
		e.Payload,
		e.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ledgerdomain.EventRecord, error) {
	var record ledgerdomain.EventRecord
	err := db.WithContext(ctx).Raw(
		`SELECT id, pump_id, category, amount, occurred_on, payload, created_at
		 FROM ledger_events WHERE id = ?`,
		id,
	).Scan(&record).Error
	if err != nil {
		return nil, err
	}
	if record.ID == 0 {
		return nil, nil
	}
	return &record, nil
}

// Ids come from one snowflake node per process and grow monotonically,
// so ordering by id is insertion order.
func (r *repo) ListByPump(ctx context.Context, db *gorm.DB, pumpID snowflake.ID) ([]ledgerdomain.EventRecord, error) {
	var records []ledgerdomain.EventRecord
	err := db.WithContext(ctx).Raw(
		`SELECT id, pump_id, category, amount, occurred_on, payload, created_at
		 FROM ledger_events WHERE pump_id = ? ORDER BY id ASC`,
		pumpID,
	).Scan(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
