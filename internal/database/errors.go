package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"
)

// Storage failure modes surfaced to callers. The service layer maps these to
// its own taxonomy; anything else is treated as internal.
var (
	// ErrNotFound means the requested entity, or the parent of a cascade
	// operation, does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict means a write violated a uniqueness constraint.
	ErrConflict = errors.New("conflicting write")

	// ErrUnavailable means a transient infrastructure failure; the whole
	// operation is safe to retry.
	ErrUnavailable = errors.New("storage unavailable")
)

const pqUniqueViolation = "23505"

// classify maps driver-level errors onto the store's failure modes.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, ErrUnavailable)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w", op, ErrUnavailable)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == pqUniqueViolation {
			return fmt.Errorf("%s: %w", op, ErrConflict)
		}
		// Class 08 covers connection exceptions
		if pqErr.Code.Class() == "08" {
			return fmt.Errorf("%s: %w", op, ErrUnavailable)
		}
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("%s: %w", op, ErrUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}
