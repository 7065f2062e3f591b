package errs

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrDatabaseQuery             = fmt.Errorf("database query failed: %w", ErrInternal)
	ErrUniqueConstraintViolation = fmt.Errorf("unique constraint violation: %w", ErrConflict)
	ErrForeignKeyConstraint      = fmt.Errorf("foreign key constraint violation: %w", ErrBadRequest)
	ErrNotNullViolation          = fmt.Errorf("not null violation: %w", ErrBadRequest)
	ErrRowLevelSecurity          = fmt.Errorf("row level security violation: %w", ErrForbidden)
)

// SQLSTATE codes the store is known to raise.
const (
	pgUniqueViolation       = "23505"
	pgForeignKeyViolation   = "23503"
	pgNotNullViolation      = "23502"
	pgInsufficientPrivilege = "42501"
)

// NewDatabaseError is the fallback for store failures with no more specific kind.
func NewDatabaseError(operation, entity string, cause error) *ApiErr {
	e := newWrapped(KindDatabase, ErrDatabaseQuery, "database error")
	return e.WithDetail("operation", fmt.Sprintf("%s %s", operation, entity)).WithCause(cause)
}

// FromStore converts a store failure into an ApiErr. Recognized faults keep
// their kind, anything else becomes a DatabaseError.
func FromStore(operation, entity string, cause error) *ApiErr {
	if cause == nil {
		return nil
	}
	translated := Translate(cause)
	if translated.Kind != KindInternal {
		return translated
	}
	return NewDatabaseError(operation, entity, cause)
}

// fromPgError maps a Postgres error to its kind; ok is false for unknown codes.
func fromPgError(pgErr *pgconn.PgError) (*ApiErr, bool) {
	switch pgErr.Code {
	case pgUniqueViolation:
		e := NewConflictError("resource already exists")
		e.sentinel = ErrUniqueConstraintViolation
		if pgErr.ConstraintName != "" {
			e.WithDetail("constraint", pgErr.ConstraintName)
		}
		return e.WithCause(pgErr), true
	case pgForeignKeyViolation:
		e := NewValidationError("invalid reference", map[string]string{})
		e.sentinel = ErrForeignKeyConstraint
		return e.WithCause(pgErr), true
	case pgNotNullViolation:
		fields := map[string]string{}
		if pgErr.ColumnName != "" {
			fields[pgErr.ColumnName] = "is required"
		}
		e := NewValidationError("missing required field", fields)
		e.sentinel = ErrNotNullViolation
		return e.WithCause(pgErr), true
	case pgInsufficientPrivilege:
		e := NewAuthorizationError("")
		e.sentinel = ErrRowLevelSecurity
		return e.WithCause(pgErr), true
	}
	return nil, false
}

func IsUniqueConstraintViolationError(err error) bool {
	return errors.Is(err, ErrUniqueConstraintViolation)
}

func IsForeignKeyConstraintError(err error) bool {
	return errors.Is(err, ErrForeignKeyConstraint)
}
