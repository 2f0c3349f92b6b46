package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/Zhima-Mochi/minishop-bookshop/internal/domain/inventory"
)

var (
	ErrNilDatabaseConnection = errors.New("postgres: nil database connection")
	ErrBuildingQueryFailed   = errors.New("postgres: building query failed")
	ErrBeginTxFailed         = errors.New("postgres: begin transaction failed")
	ErrCommitFailed          = errors.New("postgres: commit failed")
	ErrQueryFailed           = errors.New("postgres: query failed")
	ErrScanFailed            = errors.New("postgres: scanning row failed")
	ErrForeignKeyViolation   = errors.New("postgres: referenced row does not exist")
)

const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateLockNotAvailable     = "55P03"
	sqlStateForeignKeyViolation  = "23503"
	sqlStateCheckViolation       = "23514"
)

// sqlState extracts the SQLSTATE from either driver's error type.
func sqlState(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), true
	}
	return "", false
}

// mapDBError translates driver errors into domain sentinels, keeping the driver error in the chain.
func mapDBError(err error) error {
	if err == nil {
		return nil
	}
	code, ok := sqlState(err)
	if !ok {
		return err
	}
	switch code {
	case sqlStateSerializationFailure, sqlStateDeadlockDetected, sqlStateLockNotAvailable:
		return fmt.Errorf("%w: %w", inventory.ErrConcurrencyConflict, err)
	case sqlStateForeignKeyViolation:
		return fmt.Errorf("%w: %w", ErrForeignKeyViolation, err)
	case sqlStateCheckViolation:
		return fmt.Errorf("%w: %w", inventory.ErrInsufficientStock, err)
	default:
		return err
	}
}
