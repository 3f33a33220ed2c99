package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the repositories translate into domain errors
const (
	sqlStateForeignKey = "23503"
	sqlStateUnique     = "23505"
	sqlStateCheck      = "23514"

	sqlStateSerialization = "40001"
	sqlStateDeadlock      = "40P01"
)

func hasSQLState(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// IsPgDuplicateError reports a unique constraint violation (duplicate ref or name)
func IsPgDuplicateError(err error) bool { return hasSQLState(err, sqlStateUnique) }

// IsPgForeignKeyError reports a foreign key violation, either a dangling
// reference on write or a still-referenced row on delete
func IsPgForeignKeyError(err error) bool { return hasSQLState(err, sqlStateForeignKey) }

// IsPgCheckViolation reports a CHECK failure, e.g. an unknown material type or status
func IsPgCheckViolation(err error) bool { return hasSQLState(err, sqlStateCheck) }

// IsPgNoRowsError reports an empty QueryRow result
func IsPgNoRowsError(err error) bool { return errors.Is(err, pgx.ErrNoRows) }

// isRetryableTxError reports failures where rerunning the whole transaction can succeed,
// typically two reorders locking the same sibling rows in different orders
func isRetryableTxError(err error) bool {
	return hasSQLState(err, sqlStateSerialization) || hasSQLState(err, sqlStateDeadlock)
}
