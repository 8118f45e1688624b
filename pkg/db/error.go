package db

import (
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes for integrity violations.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var (
	mysqlKeyName     = regexp.MustCompile(`for key '([^']+)'`)
	sqliteUniqueCols = regexp.MustCompile(`UNIQUE constraint failed: ([^()]+)`)
)

// ConstraintViolation describes an integrity error raised by the database,
// whatever dialect produced it.
type ConstraintViolation struct {
	Unique     bool
	ForeignKey bool
	// Constraint is the index or constraint name when the driver reports it.
	// SQLite only names the columns, so it holds "table.col, table.col".
	Constraint string
}

// ClassifyConstraint inspects err for a unique or foreign key violation.
func ClassifyConstraint(err error) (ConstraintViolation, bool) {
	if err == nil {
		return ConstraintViolation{}, false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ConstraintViolation{Unique: true, Constraint: pgErr.ConstraintName}, true
		case pgForeignKeyViolation:
			return ConstraintViolation{ForeignKey: true, Constraint: pgErr.ConstraintName}, true
		}
		return ConstraintViolation{}, false
	}

	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return ConstraintViolation{ForeignKey: true}, true
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		v := ConstraintViolation{Unique: true}
		if m := sqliteUniqueCols.FindStringSubmatch(msg); m != nil {
			v.Constraint = strings.TrimSpace(m[1])
		}
		return v, true
	case strings.Contains(msg, "FOREIGN KEY constraint failed"),
		strings.Contains(msg, "Error 1452"):
		return ConstraintViolation{ForeignKey: true}, true
	case strings.Contains(msg, "Error 1062"):
		v := ConstraintViolation{Unique: true}
		if m := mysqlKeyName.FindStringSubmatch(msg); m != nil {
			v.Constraint = m[1]
		}
		return v, true
	case strings.Contains(msg, "duplicate key value violates unique constraint"):
		return ConstraintViolation{Unique: true}, true
	}

	// gorm's TranslateError maps the dialect error onto ErrDuplicatedKey and
	// drops the original message.
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ConstraintViolation{Unique: true}, true
	}
	return ConstraintViolation{}, false
}

func IsDuplicateKeyErr(err error) bool {
	v, ok := ClassifyConstraint(err)
	return ok && v.Unique
}

func IsForeignKeyErr(err error) bool {
	v, ok := ClassifyConstraint(err)
	return ok && v.ForeignKey
}
