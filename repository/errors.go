package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

var (
	// ErrNotFound is returned when no row matches the requested identity.
	ErrNotFound = errors.New("record not found")

	// ErrStorageUnavailable wraps driver-level failures. Repositories never
	// retry; retry policy, if any, belongs to the caller.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// wrapQueryError maps pgx errors onto the repository error taxonomy.
func wrapQueryError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrStorageUnavailable, err)
}
