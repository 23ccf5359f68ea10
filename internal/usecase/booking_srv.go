package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"
	"car-rental/internal/dto/event"
	"car-rental/internal/dto/request"
	"car-rental/internal/dto/response"
	"car-rental/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// a lost serialization race is retried once before surfacing as a conflict
const maxCreateAttempts = 2

// maxBookingDays bounds one reservation, inclusive of both ends.
const maxBookingDays = 365

// maxTotalAmount is the largest value bookings.total_amount NUMERIC(12,2) holds.
var maxTotalAmount = decimal.RequireFromString("9999999999.99")

type BookingService interface {
	CreateBooking(ctx context.Context, req *request.CreateBookingRequest) (*response.BookingResponse, error)

	// Admin endpoints
	GetBookingByID(ctx context.Context, bookingID string) (*response.BookingResponse, error)
	ListBookings(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	SetStatus(ctx context.Context, bookingID string, req *request.UpdateBookingStatusRequest) (*response.BookingResponse, error)
	DeleteBooking(ctx context.Context, bookingID string) error
}

type bookingService struct {
	repo      *repository.Repository
	locks     *carLocks
	publisher EventPublisher
	cache     BlockedDaysCache
	log       *zap.Logger
	now       func() time.Time
}

func NewBookingService(repo *repository.Repository, locks *carLocks, publisher EventPublisher, cache BlockedDaysCache, log *zap.Logger) BookingService {
	return &bookingService{
		repo:      repo,
		locks:     locks,
		publisher: publisher,
		cache:     cache,
		log:       log.With(zap.String("service", "booking")),
		now:       time.Now,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	// Validate request
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, invalid("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	carID, err := uuid.Parse(req.CarID)
	if err != nil {
		return nil, invalid("invalid car ID format %s", req.CarID)
	}

	start, err := utils.ParseDate(req.StartDate)
	if err != nil {
		return nil, invalid("invalid start date %s", req.StartDate)
	}
	end, err := utils.ParseDate(req.EndDate)
	if err != nil {
		return nil, invalid("invalid end date %s", req.EndDate)
	}

	if end.Before(start) {
		return nil, invalid("end date must be on or after start date")
	}
	if start.Before(utils.DateOf(s.now())) {
		return nil, invalid("start date cannot be in the past")
	}
	if utils.InclusiveDays(start, end) > maxBookingDays {
		return nil, invalid("booking cannot exceed %d days", maxBookingDays)
	}

	unlock := s.locks.Lock(carID)
	defer unlock()

	var (
		booking *entity.Booking
		car     *entity.Car
	)
	for attempt := 1; ; attempt++ {
		booking, car, err = s.createInTx(ctx, carID, req, start, end)
		if err == nil || !errors.Is(err, repository.ErrSerialization) || attempt == maxCreateAttempts {
			break
		}
		s.log.Warn("Booking transaction lost a concurrent race, retrying",
			zap.Error(err),
			zap.String("car_id", req.CarID),
			zap.Int("attempt", attempt),
		)
	}

	if err != nil {
		var svcErr *Error
		switch {
		case errors.As(err, &svcErr):
			s.log.Warn("Booking rejected",
				zap.String("reason", svcErr.Msg),
				zap.String("car_id", req.CarID),
				zap.String("start_date", req.StartDate),
				zap.String("end_date", req.EndDate),
			)
			return nil, err
		case errors.Is(err, repository.ErrOverlap):
			return nil, conflict("date range already booked")
		case errors.Is(err, repository.ErrSerialization):
			return nil, conflict("date range is being booked concurrently, please retry")
		}
		s.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("car_id", req.CarID),
		)
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.cache.Invalidate(ctx, carID)

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("car_id", req.CarID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
		zap.Int("number_of_days", booking.NumberOfDays),
		zap.String("total_amount", booking.TotalAmount.StringFixed(2)),
	)

	publishEvent(ctx, s.publisher, s.log, event.RoutingBookingCreated, event.BookingCreated{
		BookingID:    booking.ID.String(),
		CarID:        booking.CarID.String(),
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		NumberOfDays: booking.NumberOfDays,
		TotalAmount:  booking.TotalAmount.StringFixed(2),
		CreatedAt:    booking.CreatedAt,
	})

	resp := response.BookingToResponse(booking, car)
	return &resp, nil
}

// createInTx re-checks the car and the calendar while holding the car row
// lock, then inserts the booking in the same transaction.
func (s *bookingService) createInTx(ctx context.Context, carID uuid.UUID, req *request.CreateBookingRequest, start, end time.Time) (*entity.Booking, *entity.Car, error) {
	var (
		booking *entity.Booking
		car     *entity.Car
	)

	err := s.repo.WithinTx(ctx, func(tx *repository.Repository) error {
		c, err := tx.Car.FindByIDForUpdate(ctx, carID)
		if err != nil {
			return err
		}
		if c == nil {
			return notFound("car not found")
		}
		if !c.Active {
			return conflict("car not available")
		}

		overlapping, err := tx.Booking.FindOverlapping(ctx, carID, start, end)
		if err != nil {
			return err
		}
		if len(overlapping) > 0 {
			return conflict("date range already booked")
		}

		days := utils.InclusiveDays(start, end)
		total := c.DailyRate.Mul(decimal.NewFromInt(int64(days)))
		if total.GreaterThan(maxTotalAmount) {
			return invalid("total amount %s exceeds the allowed maximum", total.StringFixed(2))
		}

		now := s.now()
		b := &entity.Booking{
			Base: entity.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			CarID:           carID,
			CustomerName:    req.CustomerName,
			CustomerEmail:   req.CustomerEmail,
			CustomerAddress: req.CustomerAddress,
			CustomerPhone:   req.CustomerPhone,
			StartDate:       start,
			EndDate:         end,
			NumberOfDays:    days,
			TotalAmount:     total,
			Status:          entity.BookingStatusPending,
		}

		if err := tx.Booking.Create(ctx, b); err != nil {
			return err
		}

		booking, car = b, c
		return nil
	})

	return booking, car, err
}

// ==================== ADMIN METHODS ====================

func (s *bookingService) GetBookingByID(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, invalid("invalid booking ID format %s", bookingID)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking %s: %w", bookingID, err)
	}
	if booking == nil {
		return nil, notFound("booking %s not found", bookingID)
	}

	car, err := s.repo.Car.FindByID(ctx, booking.CarID)
	if err != nil {
		s.log.Warn("Failed to load car for booking",
			zap.Error(err),
			zap.String("booking_id", bookingID),
		)
	}

	resp := response.BookingToResponse(booking, car)
	return &resp, nil
}

func (s *bookingService) ListBookings(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	bookings, err := s.repo.Booking.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to list bookings",
			zap.Error(err),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	total, err := s.repo.Booking.Count(ctx)
	if err != nil {
		s.log.Error("Failed to count bookings", zap.Error(err))
		return nil, fmt.Errorf("count bookings: %w", err)
	}

	data := make([]response.BookingResponse, len(bookings))
	for i, booking := range bookings {
		data[i] = response.BookingToResponse(booking, nil)
	}

	return response.NewPaginatedResponse(data, req.Page, req.Limit(), total), nil
}

func (s *bookingService) SetStatus(ctx context.Context, bookingID string, req *request.UpdateBookingStatusRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, invalid("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, invalid("invalid booking ID format %s", bookingID)
	}

	status, ok := entity.ParseBookingStatus(req.Status)
	if !ok {
		return nil, invalid("unknown booking status %s", req.Status)
	}

	var (
		updated  *entity.Booking
		previous entity.BookingStatus
	)
	err = s.repo.WithinTx(ctx, func(tx *repository.Repository) error {
		booking, err := tx.Booking.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if booking == nil {
			return notFound("booking %s not found", bookingID)
		}

		if !booking.Status.CanTransitionTo(status) {
			return newError(ErrInvalidTransition, "booking status is %s, cannot change to %s", booking.Status, status)
		}

		if err := tx.Booking.UpdateStatus(ctx, id, status); err != nil {
			return err
		}

		previous = booking.Status
		booking.Status = status
		booking.UpdatedAt = s.now()
		updated = booking
		return nil
	})
	if err != nil {
		var svcErr *Error
		if errors.As(err, &svcErr) {
			s.log.Warn("Booking status change rejected",
				zap.String("reason", svcErr.Msg),
				zap.String("booking_id", bookingID),
			)
			return nil, err
		}
		s.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", bookingID),
		)
		return nil, fmt.Errorf("update booking %s status: %w", bookingID, err)
	}

	if status == entity.BookingStatusCancelled {
		s.cache.Invalidate(ctx, updated.CarID)
	}

	s.log.Info("Booking status changed",
		zap.String("booking_id", bookingID),
		zap.String("from", string(previous)),
		zap.String("to", string(status)),
	)

	publishEvent(ctx, s.publisher, s.log, event.RoutingBookingStatusChanged, event.BookingStatusChanged{
		BookingID: bookingID,
		CarID:     updated.CarID.String(),
		From:      string(previous),
		To:        string(status),
		ChangedAt: updated.UpdatedAt,
	})

	resp := response.BookingToResponse(updated, nil)
	return &resp, nil
}

func (s *bookingService) DeleteBooking(ctx context.Context, bookingID string) error {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return invalid("invalid booking ID format %s", bookingID)
	}

	var carID uuid.UUID
	err = s.repo.WithinTx(ctx, func(tx *repository.Repository) error {
		booking, err := tx.Booking.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if booking == nil {
			return notFound("booking %s not found", bookingID)
		}
		carID = booking.CarID
		return tx.Booking.Delete(ctx, id)
	})
	if err != nil {
		var svcErr *Error
		if errors.As(err, &svcErr) {
			return err
		}
		s.log.Error("Failed to delete booking",
			zap.Error(err),
			zap.String("booking_id", bookingID),
		)
		return fmt.Errorf("delete booking %s: %w", bookingID, err)
	}

	s.cache.Invalidate(ctx, carID)
	return nil
}
