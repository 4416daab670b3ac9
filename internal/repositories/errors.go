package repositories

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrBalanceNotFound     = errors.New("balance not found")
	ErrHoldNotFound        = errors.New("hold not found")
	ErrAssetNotFound       = errors.New("asset not found")
	ErrDuplicateAsset      = errors.New("asset already exists")
	ErrDuplicateActiveHold = errors.New("active hold already exists for reference")
	ErrHoldConflict        = errors.New("hold is no longer active")
	ErrLockTimeout         = errors.New("row lock wait timed out")
)

const (
	pgUniqueViolation     = "23505"
	pgLockNotAvailable    = "55P03"
	pgDeadlockDetected    = "40P01"
	pgSerializationFailed = "40001"
)

// translateError maps driver-level lock failures onto ErrLockTimeout so the
// service can report them as contention rather than store failures.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgLockNotAvailable, pgDeadlockDetected, pgSerializationFailed:
			return fmt.Errorf("%w: %s", ErrLockTimeout, pgErr.Message)
		}
	}
	return err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	// sqlite3: "UNIQUE constraint failed: holds.user_id, ..."
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
