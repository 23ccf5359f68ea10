package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"
	"car-rental/internal/dto/response"
	"car-rental/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AvailabilityService interface {
	// IsAvailable is false for unknown or inactive cars. start <= end is the caller's concern.
	IsAvailable(ctx context.Context, carID string, start, end time.Time) (bool, error)
	// BlockedDays lists, ascending and without duplicates, every day covered by a
	// live booking that overlaps [from, to].
	BlockedDays(ctx context.Context, carID string, from, to time.Time) ([]time.Time, error)
	// UpcomingBlockedDays is BlockedDays from today over the configured horizon.
	UpcomingBlockedDays(ctx context.Context, carID string) ([]time.Time, error)
	// AvailableCars lists active cars, restricted to the ones free on
	// [start, end] when both dates are given.
	AvailableCars(ctx context.Context, start, end *time.Time) ([]response.CarResponse, error)
}

type availabilityService struct {
	repo        *repository.Repository
	cache       BlockedDaysCache
	horizonDays int
	log         *zap.Logger
	now         func() time.Time
}

func NewAvailabilityService(repo *repository.Repository, cache BlockedDaysCache, horizonDays int, log *zap.Logger) AvailabilityService {
	return &availabilityService{
		repo:        repo,
		cache:       cache,
		horizonDays: horizonDays,
		log:         log.With(zap.String("service", "availability")),
		now:         time.Now,
	}
}

func (s *availabilityService) IsAvailable(ctx context.Context, carID string, start, end time.Time) (bool, error) {
	id, err := uuid.Parse(carID)
	if err != nil {
		return false, invalid("invalid car ID format %s", carID)
	}

	car, err := s.repo.Car.FindByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("check availability: %w", err)
	}
	if car == nil || !car.Active {
		return false, nil
	}

	overlapping, err := s.repo.Booking.FindOverlapping(ctx, id, utils.DateOf(start), utils.DateOf(end))
	if err != nil {
		return false, fmt.Errorf("check availability: %w", err)
	}

	return len(overlapping) == 0, nil
}

func (s *availabilityService) BlockedDays(ctx context.Context, carID string, from, to time.Time) ([]time.Time, error) {
	id, err := uuid.Parse(carID)
	if err != nil {
		return nil, invalid("invalid car ID format %s", carID)
	}
	from, to = utils.DateOf(from), utils.DateOf(to)

	car, err := s.repo.Car.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get blocked days: %w", err)
	}
	if car == nil || !car.Active {
		return []time.Time{}, nil
	}

	if days, ok := s.cache.Get(ctx, id, from, to); ok {
		return days, nil
	}

	bookings, err := s.repo.Booking.FindOverlapping(ctx, id, from, to)
	if err != nil {
		return nil, fmt.Errorf("get blocked days: %w", err)
	}

	days := ExpandBlockedDays(bookings)
	s.cache.Set(ctx, id, from, to, days)

	s.log.Debug("Blocked days computed",
		zap.String("car_id", carID),
		zap.Int("bookings", len(bookings)),
		zap.Int("days", len(days)),
	)

	return days, nil
}

func (s *availabilityService) UpcomingBlockedDays(ctx context.Context, carID string) ([]time.Time, error) {
	today := utils.DateOf(s.now())
	return s.BlockedDays(ctx, carID, today, today.AddDate(0, 0, s.horizonDays))
}

func (s *availabilityService) AvailableCars(ctx context.Context, start, end *time.Time) ([]response.CarResponse, error) {
	cars, err := s.repo.Car.FindAllActive(ctx)
	if err != nil {
		s.log.Error("Failed to get active cars", zap.Error(err))
		return nil, fmt.Errorf("get active cars: %w", err)
	}

	filter := start != nil && end != nil
	if filter && end.Before(*start) {
		return nil, invalid("end date must be on or after start date")
	}

	result := make([]response.CarResponse, 0, len(cars))
	for _, car := range cars {
		if filter {
			overlapping, err := s.repo.Booking.FindOverlapping(ctx, car.ID, utils.DateOf(*start), utils.DateOf(*end))
			if err != nil {
				return nil, fmt.Errorf("check availability of car %s: %w", car.ID.String(), err)
			}
			if len(overlapping) > 0 {
				continue
			}
		}
		result = append(result, response.CarToResponse(car))
	}

	return result, nil
}

// ExpandBlockedDays turns live bookings into the sorted set of days they cover.
// Cancelled bookings are ignored.
func ExpandBlockedDays(bookings []*entity.Booking) []time.Time {
	seen := make(map[time.Time]struct{})
	days := make([]time.Time, 0)

	for _, booking := range bookings {
		if !booking.Blocks() {
			continue
		}
		last := utils.DateOf(booking.EndDate)
		for day := utils.DateOf(booking.StartDate); !day.After(last); day = day.AddDate(0, 0, 1) {
			if _, ok := seen[day]; ok {
				continue
			}
			seen[day] = struct{}{}
			days = append(days, day)
		}
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}
