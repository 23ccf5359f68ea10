package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventPublisher sends domain events after a transaction commits.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// BlockedDaysCache memoises BlockedDays results per car and horizon.
type BlockedDaysCache interface {
	Get(ctx context.Context, carID uuid.UUID, from, to time.Time) ([]time.Time, bool)
	Set(ctx context.Context, carID uuid.UUID, from, to time.Time, days []time.Time)
	Invalidate(ctx context.Context, carID uuid.UUID)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, any) error { return nil }

type noopCache struct{}

func (noopCache) Get(context.Context, uuid.UUID, time.Time, time.Time) ([]time.Time, bool) {
	return nil, false
}

func (noopCache) Set(context.Context, uuid.UUID, time.Time, time.Time, []time.Time) {}

func (noopCache) Invalidate(context.Context, uuid.UUID) {}
