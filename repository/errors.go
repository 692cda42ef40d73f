package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Sentinel errors returned by repositories. Callers match them with errors.Is.
var (
	ErrNotFound  = errors.New("not found")
	ErrConflict  = errors.New("already exists")
	ErrInUse     = errors.New("is still referenced")
	ErrIntegrity = errors.New("integrity failure")
	ErrInvalid   = errors.New("invalid input")
)

// Error names the entity a sentinel applies to. Its message never includes
// the driver cause, which stays reachable through errors.Is/As for logging.
type Error struct {
	Entity string
	Kind   error
	Cause  error
}

func (e *Error) Error() string {
	return e.Entity + " " + e.Kind.Error()
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// notFound names the missing entity, e.g. "part type not found".
func notFound(entity string) error {
	return &Error{Entity: entity, Kind: ErrNotFound}
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalid, msg)
}

func conflict(entity string, cause error) error {
	return &Error{Entity: entity, Kind: ErrConflict, Cause: cause}
}

func inUse(entity string, cause error) error {
	return &Error{Entity: entity, Kind: ErrInUse, Cause: cause}
}

// isUniqueViolation reports whether err is a unique/primary key violation on
// either supported driver.
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pe *pq.Error
	if errors.As(err, &pe) {
		return pe.Code == "23505"
	}
	return false
}

// isForeignKeyViolation reports whether err is a foreign key violation on either
// supported driver.
func isForeignKeyViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	var pe *pq.Error
	if errors.As(err, &pe) {
		return pe.Code == "23503"
	}
	return false
}
