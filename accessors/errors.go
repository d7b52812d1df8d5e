package accessors

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrMissingArgument is returned when a required argument is omitted
	ErrMissingArgument = errors.New("missing required argument")

	// ErrInvalidPageSize is returned when a page size is not a positive integer
	ErrInvalidPageSize = errors.New("invalid page size")

	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrUnresolved is returned when a many-to-many relation is traversed
	// before both sides of its join could be resolved
	ErrUnresolved = errors.New("many-to-many relation not fully resolved")

	// ErrUnknownTable is returned when a query references a missing table
	ErrUnknownTable = errors.New("unknown table")

	// ErrUnknownColumn is returned when a query references a missing column
	ErrUnknownColumn = errors.New("unknown column")
)

// ConvertDBError converts database-specific errors to accessor errors
func ConvertDBError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42P01": // undefined_table
			return fmt.Errorf("%w: %s", ErrUnknownTable, pgErr.Message)
		case "42703": // undefined_column
			return fmt.Errorf("%w: %s", ErrUnknownColumn, pgErr.Message)
		}
	}

	return err
}

// IsInvalidPageSize returns true if the error is ErrInvalidPageSize
func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}

// IsMissingArgument returns true if the error is ErrMissingArgument
func IsMissingArgument(err error) bool {
	return errors.Is(err, ErrMissingArgument)
}
