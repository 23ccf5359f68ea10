// Package memory is an in-process implementation of the repository
// interfaces. Transactions copy the whole state, run against the copy and
// swap it in on success, holding the store lock throughout.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type state struct {
	cars     map[uuid.UUID]entity.Car
	bookings map[uuid.UUID]entity.Booking
}

func newState() *state {
	return &state{
		cars:     make(map[uuid.UUID]entity.Car),
		bookings: make(map[uuid.UUID]entity.Booking),
	}
}

func (s *state) clone() *state {
	c := newState()
	for id, car := range s.cars {
		c.cars[id] = car
	}
	for id, booking := range s.bookings {
		c.bookings[id] = booking
	}
	return c
}

type Store struct {
	mu  sync.Mutex
	st  *state
	log *zap.Logger
	now func() time.Time
}

func NewStore(log *zap.Logger) *Store {
	return &Store{
		st:  newState(),
		log: log.With(zap.String("repository", "memory")),
		now: time.Now,
	}
}

// NewRepository returns a Repository backed by a fresh in-memory store.
func NewRepository(log *zap.Logger) *repository.Repository {
	return NewStore(log).Repository()
}

func (s *Store) Repository() *repository.Repository {
	return repository.New(&carRepository{store: s}, &bookingRepository{store: s}, s)
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx *repository.Repository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	draft := s.st.clone()
	txRepo := repository.New(
		&carRepository{store: s, tx: draft},
		&bookingRepository{store: s, tx: draft},
		nil,
	)

	if err := fn(txRepo); err != nil {
		s.log.Debug("Transaction rolled back", zap.Error(err))
		return err
	}

	s.st = draft
	return nil
}

// view runs fn against the transaction draft when there is one, otherwise
// against the committed state under the store lock.
func (s *Store) view(ctx context.Context, tx *state, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if tx != nil {
		return fn(tx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

func sortBookings(bookings []*entity.Booking, less func(a, b *entity.Booking) bool) {
	sort.SliceStable(bookings, func(i, j int) bool {
		return less(bookings[i], bookings[j])
	})
}
