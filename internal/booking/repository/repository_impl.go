package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	bookingdomain "github.com/smallbiznis/pumpops/internal/booking/domain"
	"gorm.io/gorm"
)

const selectColumns = `SELECT id, pump_id, slot_date, slot_time, lifecycle_state, client_id,
	responsible_person, company_id, address, address_number, crew_assistants, notes,
	created_at, updated_at
	FROM bookings`

type repo struct{}

func Provide() bookingdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, b *bookingdomain.Booking) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO bookings (
			id, pump_id, slot_date, slot_time, lifecycle_state, client_id,
			responsible_person, company_id, address, address_number, crew_assistants, notes,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID,
		b.PumpID,
		b.SlotDate,
		b.SlotTime,
		b.LifecycleState,
		b.ClientID,
		b.ResponsiblePerson,
		b.CompanyID,
		b.Address,
		b.AddressNumber,
		b.CrewAssistants,
		b.Notes,
		b.CreatedAt,
		b.UpdatedAt,
	).Error
}

func (r *repo) UpdateSlot(ctx context.Context, db *gorm.DB, id snowflake.ID, date *time.Time, slotTime *string, updatedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE bookings SET slot_date = ?, slot_time = ?, updated_at = ? WHERE id = ?`,
		date,
		slotTime,
		updatedAt,
		id,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, b *bookingdomain.Booking) error {
	return db.WithContext(ctx).Exec(
		`UPDATE bookings SET
			pump_id = ?, slot_date = ?, slot_time = ?, lifecycle_state = ?, client_id = ?,
			responsible_person = ?, company_id = ?, address = ?, address_number = ?,
			crew_assistants = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		b.PumpID,
		b.SlotDate,
		b.SlotTime,
		b.LifecycleState,
		b.ClientID,
		b.ResponsiblePerson,
		b.CompanyID,
		b.Address,
		b.AddressNumber,
		b.CrewAssistants,
		b.Notes,
		b.UpdatedAt,
		b.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM bookings WHERE id = ?`, id)
	return res.RowsAffected, res.Error
}

func (r *repo) FindBySlot(ctx context.Context, db *gorm.DB, slot bookingdomain.Slot, exclude *snowflake.ID) (*bookingdomain.Booking, error) {
	query := selectColumns + ` WHERE pump_id = ? AND slot_date = ? AND slot_time = ?`
	args := []any{slot.PumpID, slot.Date, slot.Time}
	if exclude != nil {
		query += ` AND id <> ?`
		args = append(args, *exclude)
	}
	query += ` LIMIT 1`

	var booking bookingdomain.Booking
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&booking).Error; err != nil {
		return nil, err
	}
	if booking.ID == 0 {
		return nil, nil
	}
	booking.Fill()
	return &booking, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*bookingdomain.Booking, error) {
	var booking bookingdomain.Booking
	err := db.WithContext(ctx).Raw(selectColumns+` WHERE id = ?`, id).Scan(&booking).Error
	if err != nil {
		return nil, err
	}
	if booking.ID == 0 {
		return nil, nil
	}
	booking.Fill()
	return &booking, nil
}

func (r *repo) ListByPump(ctx context.Context, db *gorm.DB, pumpID snowflake.ID, limit int) ([]bookingdomain.Booking, error) {
	query := selectColumns + ` WHERE pump_id = ? ORDER BY id DESC`
	args := []any{pumpID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var items []bookingdomain.Booking
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&items).Error; err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Fill()
	}
	return items, nil
}
