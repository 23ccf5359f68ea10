package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.Booking, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Business queries

	// FindOverlapping returns the non-cancelled bookings of a car that share
	// at least one day with [start, end], ordered by start date.
	FindOverlapping(ctx context.Context, carID uuid.UUID, start, end time.Time) ([]*entity.Booking, error)
	UpdateStatus(ctx context.Context, bookingID uuid.UUID, status entity.BookingStatus) error
	// CancelActiveByCarID cancels every pending or confirmed booking of a car
	// and returns how many rows changed.
	CancelActiveByCarID(ctx context.Context, carID uuid.UUID) (int64, error)
}

type bookingRepository struct {
	db  database.DBTX
	log *zap.Logger
}

func NewBookingRepository(db database.DBTX, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, car_id, customer_name, customer_email, customer_address, customer_phone,
		start_date, end_date, number_of_days, total_amount, status, created_at, updated_at`

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, car_id, customer_name, customer_email, customer_address, customer_phone,
			start_date, end_date, number_of_days, total_amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.CarID,
		booking.CustomerName,
		booking.CustomerEmail,
		booking.CustomerAddress,
		booking.CustomerPhone,
		booking.StartDate,
		booking.EndDate,
		booking.NumberOfDays,
		booking.TotalAmount,
		booking.Status,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		err = classify(err)
		if errors.Is(err, ErrOverlap) || errors.Is(err, ErrSerialization) {
			r.log.Warn("Booking rejected by store",
				zap.Error(err),
				zap.String("car_id", booking.CarID.String()),
			)
		} else {
			r.log.Error("Failed to create booking",
				zap.Error(err),
				zap.String("car_id", booking.CarID.String()),
			)
		}
		return fmt.Errorf("create booking for car %s: %w", booking.CarID.String(), err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *bookingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`
	return r.findOne(ctx, query, id)
}

func (r *bookingRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*entity.Booking, error) {
	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), classify(err))
	}

	return booking, nil
}

func (r *bookingRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find bookings: %w", err)
	}

	return collectBookings(rows, r.log)
}

func (r *bookingRepository) Count(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings`

	var count int64
	if err := r.db.QueryRow(ctx, query).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings", zap.Error(err))
		return 0, fmt.Errorf("count bookings: %w", err)
	}

	return count, nil
}

func (r *bookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM bookings WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete booking",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return fmt.Errorf("delete booking %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", id.String())
	}

	r.log.Info("Booking deleted", zap.String("booking_id", id.String()))
	return nil
}

func (r *bookingRepository) FindOverlapping(ctx context.Context, carID uuid.UUID, start, end time.Time) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE car_id = $1
		  AND status <> 'cancelled'
		  AND start_date <= $3
		  AND end_date >= $2
		ORDER BY start_date, id
	`

	rows, err := r.db.Query(ctx, query, carID, start, end)
	if err != nil {
		r.log.Error("Failed to find overlapping bookings",
			zap.Error(err),
			zap.String("car_id", carID.String()),
			zap.Time("start_date", start),
			zap.Time("end_date", end),
		)
		return nil, fmt.Errorf("find overlapping bookings for car %s: %w", carID.String(), classify(err))
	}

	return collectBookings(rows, r.log)
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, bookingID uuid.UUID, status entity.BookingStatus) error {
	query := `UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, bookingID, status)
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update booking %s status to %s: %w", bookingID.String(), string(status), classify(err))
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", bookingID.String())
	}

	return nil
}

func (r *bookingRepository) CancelActiveByCarID(ctx context.Context, carID uuid.UUID) (int64, error) {
	query := `
		UPDATE bookings
		SET status = 'cancelled', updated_at = NOW()
		WHERE car_id = $1 AND status IN ('pending', 'confirmed')
	`

	result, err := r.db.Exec(ctx, query, carID)
	if err != nil {
		r.log.Error("Failed to cancel active bookings",
			zap.Error(err),
			zap.String("car_id", carID.String()),
		)
		return 0, fmt.Errorf("cancel active bookings for car %s: %w", carID.String(), classify(err))
	}

	return result.RowsAffected(), nil
}

func collectBookings(rows pgx.Rows, log *zap.Logger) ([]*entity.Booking, error) {
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking rows: %w", classify(err))
	}

	return bookings, nil
}

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.CarID,
		&booking.CustomerName,
		&booking.CustomerEmail,
		&booking.CustomerAddress,
		&booking.CustomerPhone,
		&booking.StartDate,
		&booking.EndDate,
		&booking.NumberOfDays,
		&booking.TotalAmount,
		&booking.Status,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}
