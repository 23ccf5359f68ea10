package memory

import (
	"context"
	"fmt"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"

	"github.com/google/uuid"
)

type bookingRepository struct {
	store *Store
	tx    *state
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	return r.store.view(ctx, r.tx, func(st *state) error {
		if _, exists := st.bookings[booking.ID]; exists {
			return fmt.Errorf("create booking %s: duplicate id", booking.ID.String())
		}
		// same guarantee as the exclusion constraint in the Postgres schema
		if booking.Blocks() {
			for _, other := range st.bookings {
				if other.CarID == booking.CarID && other.Blocks() && other.Overlaps(booking.StartDate, booking.EndDate) {
					return fmt.Errorf("create booking for car %s: %w", booking.CarID.String(), repository.ErrOverlap)
				}
			}
		}
		st.bookings[booking.ID] = *booking
		return nil
	})
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	var found *entity.Booking
	err := r.store.view(ctx, r.tx, func(st *state) error {
		if booking, ok := st.bookings[id]; ok {
			found = &booking
		}
		return nil
	})
	return found, err
}

func (r *bookingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.FindByID(ctx, id)
}

func (r *bookingRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.Booking, error) {
	bookings, err := r.filter(ctx, func(*entity.Booking) bool { return true })
	if err != nil {
		return nil, err
	}

	sortBookings(bookings, func(a, b *entity.Booking) bool {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID.String() < b.ID.String()
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	if offset >= len(bookings) {
		return nil, nil
	}
	end := offset + limit
	if end > len(bookings) {
		end = len(bookings)
	}
	return bookings[offset:end], nil
}

func (r *bookingRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.store.view(ctx, r.tx, func(st *state) error {
		count = int64(len(st.bookings))
		return nil
	})
	return count, err
}

func (r *bookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.store.view(ctx, r.tx, func(st *state) error {
		if _, ok := st.bookings[id]; !ok {
			return fmt.Errorf("booking %s not found", id.String())
		}
		delete(st.bookings, id)
		return nil
	})
}

func (r *bookingRepository) FindOverlapping(ctx context.Context, carID uuid.UUID, start, end time.Time) ([]*entity.Booking, error) {
	bookings, err := r.filter(ctx, func(b *entity.Booking) bool {
		return b.CarID == carID && b.Blocks() && b.Overlaps(start, end)
	})
	if err != nil {
		return nil, err
	}

	sortBookings(bookings, func(a, b *entity.Booking) bool {
		if a.StartDate.Equal(b.StartDate) {
			return a.ID.String() < b.ID.String()
		}
		return a.StartDate.Before(b.StartDate)
	})
	return bookings, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, bookingID uuid.UUID, status entity.BookingStatus) error {
	return r.store.view(ctx, r.tx, func(st *state) error {
		booking, ok := st.bookings[bookingID]
		if !ok {
			return fmt.Errorf("booking %s not found", bookingID.String())
		}
		booking.Status = status
		booking.UpdatedAt = r.store.now()
		st.bookings[bookingID] = booking
		return nil
	})
}

func (r *bookingRepository) CancelActiveByCarID(ctx context.Context, carID uuid.UUID) (int64, error) {
	var cancelled int64
	err := r.store.view(ctx, r.tx, func(st *state) error {
		now := r.store.now()
		for id, booking := range st.bookings {
			if booking.CarID != carID || booking.Status.IsTerminal() {
				continue
			}
			booking.Status = entity.BookingStatusCancelled
			booking.UpdatedAt = now
			st.bookings[id] = booking
			cancelled++
		}
		return nil
	})
	return cancelled, err
}

func (r *bookingRepository) filter(ctx context.Context, keep func(*entity.Booking) bool) ([]*entity.Booking, error) {
	var bookings []*entity.Booking
	err := r.store.view(ctx, r.tx, func(st *state) error {
		for _, booking := range st.bookings {
			booking := booking
			if keep(&booking) {
				bookings = append(bookings, &booking)
			}
		}
		return nil
	})
	return bookings, err
}
