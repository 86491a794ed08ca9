package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/locvowork/employee_records/internal/domain"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// translateError maps driver constraint failures to domain errors and wraps
// everything else with op. fkReason describes a foreign-key violation from
// the caller's point of view.
func translateError(err error, op, entity, fkReason string) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return &domain.ConflictError{Entity: entity, Reason: uniqueReason(pqErr.Constraint)}
		case pqForeignKeyViolation:
			return &domain.ConflictError{Entity: entity, Reason: fkReason}
		}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return &domain.ConflictError{Entity: entity, Reason: uniqueReason(liteErr.Error())}
		case sqlite3.ErrConstraintForeignKey:
			return &domain.ConflictError{Entity: entity, Reason: fkReason}
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}

// uniqueReason names the duplicated column from a pq constraint name
// ("employees_employee_id_key") or a sqlite message
// ("UNIQUE constraint failed: employees.employee_id").
func uniqueReason(detail string) string {
	switch {
	case strings.Contains(detail, "employee_id"):
		return "employeeId already exists"
	case strings.Contains(detail, "name"):
		return "name already exists"
	default:
		return "record already exists"
	}
}

func notFoundOr(err error, op, entity string, key interface{}) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Entity: entity, Key: key}
	}
	return fmt.Errorf("%s: %w", op, err)
}
