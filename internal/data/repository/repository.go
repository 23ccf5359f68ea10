package repository

import (
	"context"

	"car-rental/pkg/database"

	"go.uber.org/zap"
)

// Transactor runs fn inside one atomic unit. The Repository passed to fn is
// bound to that unit; fn's error rolls everything back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(tx *Repository) error) error
}

type Repository struct {
	Car     CarRepository
	Booking BookingRepository

	tx Transactor
}

// New assembles a Repository from store implementations. A nil transactor
// means the stores are already inside a transaction and WithinTx runs inline.
func New(car CarRepository, booking BookingRepository, tx Transactor) *Repository {
	return &Repository{
		Car:     car,
		Booking: booking,
		tx:      tx,
	}
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return New(
		NewCarRepository(db, log),
		NewBookingRepository(db, log),
		newPgTransactor(db, log),
	)
}

func (r *Repository) WithinTx(ctx context.Context, fn func(tx *Repository) error) error {
	if r.tx == nil {
		return fn(r)
	}
	return r.tx.WithinTx(ctx, fn)
}
