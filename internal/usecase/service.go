package usecase

import (
	"context"

	"car-rental/internal/data/repository"
	"car-rental/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Car          CarService
	Availability AvailabilityService
	Booking      BookingService
}

// Infra groups optional collaborators. Nil fields fall back to no-ops.
type Infra struct {
	Publisher EventPublisher
	Cache     BlockedDaysCache
}

func NewService(repo *repository.Repository, config *utils.Config, infra Infra, log *zap.Logger) *Service {
	publisher := infra.Publisher
	if publisher == nil {
		publisher = noopPublisher{}
	}
	cache := infra.Cache
	if cache == nil {
		cache = noopCache{}
	}

	horizonDays := 365
	if config != nil && config.Booking.HorizonDays > 0 {
		horizonDays = config.Booking.HorizonDays
	}

	// booking creation and car deactivation must contend on the same per-car locks
	locks := newCarLocks()

	return &Service{
		Car:          NewCarService(repo, locks, publisher, cache, log),
		Availability: NewAvailabilityService(repo, cache, horizonDays, log),
		Booking:      NewBookingService(repo, locks, publisher, cache, log),
	}
}

// publishEvent never fails the caller: the state change is already committed.
func publishEvent(ctx context.Context, publisher EventPublisher, log *zap.Logger, routingKey string, payload any) {
	if err := publisher.Publish(ctx, routingKey, payload); err != nil {
		log.Warn("Failed to publish event",
			zap.Error(err),
			zap.String("routing_key", routingKey),
		)
	}
}
