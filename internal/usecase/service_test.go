package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"car-rental/internal/data/repository"
	"car-rental/internal/data/repository/memory"
	"car-rental/internal/dto/request"
	"car-rental/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type publishedEvent struct {
	routingKey string
	payload    any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{routingKey, payload})
	return p.err
}

func (p *fakePublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, len(p.events))
	for i, e := range p.events {
		keys[i] = e.routingKey
	}
	return keys
}

type fakeCache struct {
	mu          sync.Mutex
	entries     map[string][]time.Time
	hits        int
	invalidated []uuid.UUID
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]time.Time)}
}

func cacheKey(carID uuid.UUID, from, to time.Time) string {
	return carID.String() + from.Format("2006-01-02") + to.Format("2006-01-02")
}

func (c *fakeCache) Get(_ context.Context, carID uuid.UUID, from, to time.Time) ([]time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	days, ok := c.entries[cacheKey(carID, from, to)]
	if ok {
		c.hits++
	}
	return days, ok
}

func (c *fakeCache) Set(_ context.Context, carID uuid.UUID, from, to time.Time, days []time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(carID, from, to)] = days
}

func (c *fakeCache) Invalidate(_ context.Context, carID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k[:36] == carID.String() {
			delete(c.entries, k)
		}
	}
	c.invalidated = append(c.invalidated, carID)
}

type testEnv struct {
	svc       *Service
	repo      *repository.Repository
	publisher *fakePublisher
	cache     *fakeCache
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithRepo(t, memory.NewRepository(zap.NewNop()))
}

func newTestEnvWithRepo(t *testing.T, repo *repository.Repository) *testEnv {
	t.Helper()
	env := &testEnv{
		repo:      repo,
		publisher: &fakePublisher{},
		cache:     newFakeCache(),
	}
	env.svc = NewService(repo, nil, Infra{Publisher: env.publisher, Cache: env.cache}, zap.NewNop())
	return env
}

func (e *testEnv) createCar(t *testing.T, rate string) *response.CarResponse {
	t.Helper()
	car, err := e.svc.Car.CreateCar(context.Background(), &request.CreateCarRequest{
		Brand:     "Toyota",
		Model:     "Corolla",
		DailyRate: rate,
	})
	if err != nil {
		t.Fatalf("create car: %v", err)
	}
	return car
}

func bookingRequest(carID, start, end string) *request.CreateBookingRequest {
	return &request.CreateBookingRequest{
		CarID:           carID,
		CustomerName:    "Jane Doe",
		CustomerEmail:   "jane@example.com",
		CustomerAddress: "1 Main Street",
		CustomerPhone:   "+36301234567",
		StartDate:       start,
		EndDate:         end,
	}
}

func (e *testEnv) book(t *testing.T, carID, start, end string) *response.BookingResponse {
	t.Helper()
	b, err := e.svc.Booking.CreateBooking(context.Background(), bookingRequest(carID, start, end))
	if err != nil {
		t.Fatalf("create booking %s..%s: %v", start, end, err)
	}
	return b
}

func active(v bool) *bool { return &v }

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
