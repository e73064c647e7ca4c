package repository

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/roomhive/service-reservation/internal/common/domain"
)

// Postgres SQLSTATE codes that indicate a retryable condition.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgConnectionClass      = "08"
)

// classify wraps retryable persistence failures as transient domain errors
// so the retry coordinator can recognize them. Everything else passes
// through untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if IsTransientPersistenceError(err) {
		return domain.NewTransientError("transient persistence failure", err)
	}
	return err
}

// IsTransientPersistenceError reports whether err is worth retrying:
// serialization conflicts, deadlocks, lock timeouts, connection drops, and
// deadline expiry. Constraint violations and validation failures are not.
func IsTransientPersistenceError(err error) bool {
	if err == nil {
		return false
	}
	if domain.IsTransient(err) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return true
		}
		return strings.HasPrefix(pgErr.Code, pgConnectionClass)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}
