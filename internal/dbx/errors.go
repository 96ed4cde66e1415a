package dbx

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/feedbox/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// StoreError marks err as a persistence failure so callers can match it
// with errors.Is(err, common.ErrorStore) while keeping the driver error.
func StoreError(err error) error {
	return fmt.Errorf("%w: %w", common.ErrorStore, err)
}

// IsUniqueViolation reports whether err comes from a violated UNIQUE
// constraint.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
