package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique constraint violation from
// Postgres or SQLite. When hint is provided the constraint name (Postgres) or
// the failing column list (SQLite) must contain it.
func IsUniqueViolation(err error, hint string) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return false
		}
		return hint == "" || strings.Contains(pgErr.ConstraintName, hint) || strings.Contains(pgErr.Message, hint)
	}

	msg := err.Error()
	if !strings.Contains(msg, "duplicate key value") && !strings.Contains(msg, "UNIQUE constraint failed") {
		return false
	}
	return hint == "" || strings.Contains(msg, hint)
}
