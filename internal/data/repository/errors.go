package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrSerialization means the transaction lost a concurrency race and may
	// be retried from the start.
	ErrSerialization = errors.New("serialization failure")

	// ErrOverlap means the store itself rejected a booking whose dates
	// collide with a live booking for the same car.
	ErrOverlap = errors.New("overlapping booking")
)

const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateExclusionViolation   = "23P01"
)

// classify maps Postgres failures the engine reacts to onto sentinel errors.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case sqlStateSerializationFailure, sqlStateDeadlockDetected:
		return fmt.Errorf("%w: %s", ErrSerialization, pgErr.Message)
	case sqlStateExclusionViolation:
		return fmt.Errorf("%w: %s", ErrOverlap, pgErr.ConstraintName)
	}
	return err
}
