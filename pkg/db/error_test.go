package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "gorm", err: fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), want: true},
		{name: "pgconn", err: &pgconn.PgError{Code: "23505"}, want: true},
		{name: "pgconn other code", err: &pgconn.PgError{Code: "40001"}, want: false},
		{name: "pgconn foreign key", err: &pgconn.PgError{Code: "23503"}, want: false},
		{name: "sqlite", err: errors.New("constraint failed: UNIQUE constraint failed: bookings.pump_id (2067)"), want: true},
		{name: "mysql", err: errors.New("Error 1062: Duplicate entry"), want: true},
		{name: "other", err: errors.New("boom"), want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsDuplicateKeyErr(tc.err))
		})
	}
}

func TestIsForeignKeyErr(t *testing.T) {
	assert.True(t, IsForeignKeyErr(&pgconn.PgError{Code: "23503", ConstraintName: "bookings_pump_id_fkey"}))
	assert.True(t, IsForeignKeyErr(fmt.Errorf("insert: %w", gorm.ErrForeignKeyViolated)))
	assert.True(t, IsForeignKeyErr(errors.New("FOREIGN KEY constraint failed (787)")))
	assert.True(t, IsForeignKeyErr(errors.New("Error 1452: Cannot add or update a child row")))
	assert.False(t, IsForeignKeyErr(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsForeignKeyErr(nil))
}

func TestClassifyConstraintNames(t *testing.T) {
	v, ok := ClassifyConstraint(&pgconn.PgError{Code: "23505", ConstraintName: "ux_bookings_pump_slot"})
	assert.True(t, ok)
	assert.Equal(t, "ux_bookings_pump_slot", v.Constraint)

	v, ok = ClassifyConstraint(errors.New("UNIQUE constraint failed: bookings.pump_id, bookings.slot_date, bookings.slot_time (2067)"))
	assert.True(t, ok)
	assert.Equal(t, "bookings.pump_id, bookings.slot_date, bookings.slot_time", v.Constraint)

	v, ok = ClassifyConstraint(errors.New("Error 1062 (23000): Duplicate entry '1-2026-03-14-08:00' for key 'ux_bookings_pump_slot'"))
	assert.True(t, ok)
	assert.Equal(t, "ux_bookings_pump_slot", v.Constraint)

	_, ok = ClassifyConstraint(errors.New("connection reset"))
	assert.False(t, ok)
}
