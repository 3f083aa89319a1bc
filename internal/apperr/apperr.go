// Package apperr holds the error kinds shared by every module and their
// mapping onto HTTP status codes.
package apperr

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/lib/pq"
)

var (
	ErrInvalidFormat     = errors.New("invalid format")
	ErrInvalidCheckDigit = errors.New("invalid check digit")
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrConflict          = errors.New("conflict")
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint violations.
const uniqueViolation = "23505"

// Status returns the HTTP status code for err.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidFormat),
		errors.Is(err, ErrInvalidCheckDigit),
		errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text a client may see for err. Errors outside the
// taxonomy are logged and replaced by a generic message so driver and SQL
// details stay server side.
func Message(ctx context.Context, err error) string {
	if Status(err) != http.StatusInternalServerError {
		return err.Error()
	}
	slog.ErrorContext(ctx, "request failed", "error", err)
	return http.StatusText(http.StatusInternalServerError)
}

// Invalid wraps ErrInvalidInput with a formatted message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// NotFound wraps ErrNotFound with the name of the missing entity.
func NotFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

// FromDB translates driver errors into the taxonomy. sql.ErrNoRows becomes
// a NotFound for entity and unique violations become ErrConflict; anything
// else is returned unchanged.
func FromDB(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return NotFound(entity)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return fmt.Errorf("%s already exists: %w", entity, ErrConflict)
	}
	return err
}
