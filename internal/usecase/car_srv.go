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

type CarService interface {
	GetCar(ctx context.Context, carID string) (*response.CarResponse, error)
	ListActiveCars(ctx context.Context) ([]response.CarResponse, error)

	// Admin endpoints
	CreateCar(ctx context.Context, req *request.CreateCarRequest) (*response.CarResponse, error)
	ListCars(ctx context.Context) ([]response.CarResponse, error)
	// UpdateCar cancels every pending or confirmed booking of the car when it
	// is deactivated, atomically with the update.
	UpdateCar(ctx context.Context, carID string, req *request.UpdateCarRequest) (*response.CarUpdateResponse, error)
}

type carService struct {
	repo      *repository.Repository
	locks     *carLocks
	publisher EventPublisher
	cache     BlockedDaysCache
	log       *zap.Logger
	now       func() time.Time
}

func NewCarService(repo *repository.Repository, locks *carLocks, publisher EventPublisher, cache BlockedDaysCache, log *zap.Logger) CarService {
	return &carService{
		repo:      repo,
		locks:     locks,
		publisher: publisher,
		cache:     cache,
		log:       log.With(zap.String("service", "car")),
		now:       time.Now,
	}
}

func (s *carService) GetCar(ctx context.Context, carID string) (*response.CarResponse, error) {
	id, err := uuid.Parse(carID)
	if err != nil {
		return nil, invalid("invalid car ID format %s", carID)
	}

	car, err := s.repo.Car.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to get car",
			zap.Error(err),
			zap.String("car_id", carID),
		)
		return nil, fmt.Errorf("get car %s: %w", carID, err)
	}
	if car == nil {
		return nil, notFound("car %s not found", carID)
	}

	resp := response.CarToResponse(car)
	return &resp, nil
}

func (s *carService) ListActiveCars(ctx context.Context) ([]response.CarResponse, error) {
	cars, err := s.repo.Car.FindAllActive(ctx)
	if err != nil {
		s.log.Error("Failed to list active cars", zap.Error(err))
		return nil, fmt.Errorf("list active cars: %w", err)
	}
	return carsToResponse(cars), nil
}

// ==================== ADMIN METHODS ====================

func (s *carService) CreateCar(ctx context.Context, req *request.CreateCarRequest) (*response.CarResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create car validation failed", zap.Any("errors", errs))
		return nil, invalid("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	rate, err := parseDailyRate(req.DailyRate)
	if err != nil {
		return nil, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := s.now()
	car := &entity.Car{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Brand:     req.Brand,
		Model:     req.Model,
		DailyRate: rate,
		ImagePath: req.ImagePath,
		Active:    active,
	}

	if err := s.repo.Car.Create(ctx, car); err != nil {
		return nil, fmt.Errorf("create car: %w", err)
	}

	s.log.Info("Car created",
		zap.String("car_id", car.ID.String()),
		zap.String("brand", car.Brand),
		zap.String("model", car.Model),
	)

	resp := response.CarToResponse(car)
	return &resp, nil
}

func (s *carService) ListCars(ctx context.Context) ([]response.CarResponse, error) {
	cars, err := s.repo.Car.FindAll(ctx)
	if err != nil {
		s.log.Error("Failed to list cars", zap.Error(err))
		return nil, fmt.Errorf("list cars: %w", err)
	}
	return carsToResponse(cars), nil
}

func (s *carService) UpdateCar(ctx context.Context, carID string, req *request.UpdateCarRequest) (*response.CarUpdateResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update car validation failed", zap.Any("errors", errs))
		return nil, invalid("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	id, err := uuid.Parse(carID)
	if err != nil {
		return nil, invalid("invalid car ID format %s", carID)
	}

	rate, err := parseDailyRate(req.DailyRate)
	if err != nil {
		return nil, err
	}

	// a deactivation must not interleave with a booking being created for the same car
	unlock := s.locks.Lock(id)
	defer unlock()

	var (
		updated     *entity.Car
		cancelled   int64
		deactivated bool
	)
	err = s.repo.WithinTx(ctx, func(tx *repository.Repository) error {
		car, err := tx.Car.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if car == nil {
			return notFound("car %s not found", carID)
		}

		deactivated = car.Active && !*req.Active

		car.Brand = req.Brand
		car.Model = req.Model
		car.DailyRate = rate
		car.ImagePath = req.ImagePath
		car.Active = *req.Active
		car.UpdatedAt = s.now()

		if err := tx.Car.Update(ctx, car); err != nil {
			return err
		}

		if deactivated {
			n, err := tx.Booking.CancelActiveByCarID(ctx, id)
			if err != nil {
				return err
			}
			cancelled = n
		}

		updated = car
		return nil
	})
	if err != nil {
		var svcErr *Error
		if errors.As(err, &svcErr) {
			return nil, err
		}
		s.log.Error("Failed to update car",
			zap.Error(err),
			zap.String("car_id", carID),
		)
		return nil, fmt.Errorf("update car %s: %w", carID, err)
	}

	s.log.Info("Car updated",
		zap.String("car_id", carID),
		zap.Bool("active", updated.Active),
		zap.Int64("cancelled_bookings", cancelled),
	)

	if deactivated {
		s.cache.Invalidate(ctx, id)
		publishEvent(ctx, s.publisher, s.log, event.RoutingCarDeactivated, event.CarDeactivated{
			CarID:             carID,
			CancelledBookings: cancelled,
			DeactivatedAt:     updated.UpdatedAt,
		})
	}

	return &response.CarUpdateResponse{
		Car:               response.CarToResponse(updated),
		CancelledBookings: cancelled,
	}, nil
}

// maxDailyRate keeps rate * maxBookingDays within bookings.total_amount.
var maxDailyRate = decimal.RequireFromString("1000000")

// parseDailyRate accepts positive amounts with at most two decimals.
func parseDailyRate(value string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, invalid("invalid daily rate %s", value)
	}
	if !rate.IsPositive() {
		return decimal.Zero, invalid("daily rate must be greater than 0")
	}
	if rate.GreaterThan(maxDailyRate) {
		return decimal.Zero, invalid("daily rate must not exceed %s", maxDailyRate.StringFixed(2))
	}
	if rate.Exponent() < -2 && !rate.Equal(rate.Round(2)) {
		return decimal.Zero, invalid("daily rate must have at most 2 decimal places")
	}
	return rate.Round(2), nil
}

func carsToResponse(cars []*entity.Car) []response.CarResponse {
	result := make([]response.CarResponse, len(cars))
	for i, car := range cars {
		result[i] = response.CarToResponse(car)
	}
	return result
}
