package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"
	"car-rental/internal/data/repository/memory"
	"car-rental/internal/dto/event"
	"car-rental/internal/dto/request"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func TestCreateBookingPricing(t *testing.T) {
	tests := []struct {
		name       string
		rate       string
		start, end string
		wantDays   int
		wantAmount string
	}{
		{"single day", "100.00", "2099-02-10", "2099-02-10", 1, "100.00"},
		{"five days", "100.00", "2099-02-10", "2099-02-14", 5, "500.00"},
		{"three days at 500", "500.00", "2099-03-01", "2099-03-03", 3, "1500.00"},
		{"fractional rate", "49.99", "2099-03-01", "2099-03-03", 3, "149.97"},
		{"across month end", "10.00", "2099-02-27", "2099-03-02", 4, "40.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			car := env.createCar(t, tt.rate)

			b := env.book(t, car.ID, tt.start, tt.end)
			if b.NumberOfDays != tt.wantDays {
				t.Errorf("number_of_days = %d, want %d", b.NumberOfDays, tt.wantDays)
			}
			if b.TotalAmount != tt.wantAmount {
				t.Errorf("total_amount = %s, want %s", b.TotalAmount, tt.wantAmount)
			}
			if b.Status != entity.BookingStatusPending {
				t.Errorf("status = %s, want pending", b.Status)
			}
			if b.Car == nil || b.Car.ID != car.ID {
				t.Error("response should embed the booked car")
			}
		})
	}
}

func TestCreateBookingConflicts(t *testing.T) {
	env := newTestEnv(t)
	car := env.createCar(t, "100.00")
	env.book(t, car.ID, "2099-02-10", "2099-02-15")

	_, err := env.svc.Booking.CreateBooking(context.Background(), bookingRequest(car.ID, "2099-02-12", "2099-02-20"))
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("overlapping range: want ErrConflict, got %v", err)
	}

	_, err = env.svc.Booking.CreateBooking(context.Background(), bookingRequest(car.ID, "2099-02-15", "2099-02-15"))
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("shared last day: want ErrConflict, got %v", err)
	}

	env.book(t, car.ID, "2099-02-16", "2099-02-20")
}

func TestCreateBookingRejections(t *testing.T) {
	env := newTestEnv(t)
	car := env.createCar(t, "100.00")

	inactive := env.createCar(t, "100.00")
	_, err := env.svc.Car.UpdateCar(context.Background(), inactive.ID, &request.UpdateCarRequest{
		Brand: "Toyota", Model: "Corolla", DailyRate: "100.00", Active: active(false),
	})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		req  *request.CreateBookingRequest
		want error
	}{
		{"end before start", bookingRequest(car.ID, "2099-02-15", "2099-02-10"), ErrValidation},
		{"start in the past", bookingRequest(car.ID, "2000-01-01", "2000-01-03"), ErrValidation},
		{"malformed date", bookingRequest(car.ID, "2099-2-1", "2099-02-03"), ErrValidation},
		{"longer than a year", bookingRequest(car.ID, "2099-01-01", "2100-01-01"), ErrValidation},
		{"multi-century range", bookingRequest(car.ID, "2099-01-01", "2499-01-01"), ErrValidation},
		{"malformed car id", bookingRequest("not-a-uuid", "2099-02-01", "2099-02-03"), ErrValidation},
		{"unknown car", bookingRequest(uuid.NewString(), "2099-02-01", "2099-02-03"), ErrNotFound},
		{"inactive car", bookingRequest(inactive.ID, "2099-02-01", "2099-02-03"), ErrConflict},
		{"bad email", func() *request.CreateBookingRequest {
			r := bookingRequest(car.ID, "2099-02-01", "2099-02-03")
			r.CustomerEmail = "nope"
			return r
		}(), ErrValidation},
		{"bad phone", func() *request.CreateBookingRequest {
			r := bookingRequest(car.ID, "2099-02-01", "2099-02-03")
			r.CustomerPhone = "12-34"
			return r
		}(), ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Booking.CreateBooking(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("want %v, got %v", tt.want, err)
			}
		})
	}

	if n, _ := env.repo.Booking.Count(context.Background()); n != 0 {
		t.Fatalf("rejected requests must not store bookings, count = %d", n)
	}
}

func TestCreateBookingLengthLimit(t *testing.T) {
	env := newTestEnv(t)
	car := env.createCar(t, "1000000")

	b := env.book(t, car.ID, "2099-01-01", "2099-12-31")
	if b.NumberOfDays != maxBookingDays || b.TotalAmount != "365000000.00" {
		t.Fatalf("longest booking: days = %d, total = %s", b.NumberOfDays, b.TotalAmount)
	}

	days, err := env.svc.Availability.BlockedDays(context.Background(), car.ID, day("2000-01-01"), day("2999-12-31"))
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != maxBookingDays {
		t.Fatalf("blocked days = %d, want %d", len(days), maxBookingDays)
	}
}

func TestCreateBookingRejectsTotalAboveColumnLimit(t *testing.T) {
	env := newTestEnv(t)

	// a rate stored before the daily rate limit existed
	now := time.Now()
	car := &entity.Car{
		Base:      entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Brand:     "Bugatti",
		Model:     "Chiron",
		DailyRate: decimal.RequireFromString("99999999.99"),
		Active:    true,
	}
	if err := env.repo.Car.Create(context.Background(), car); err != nil {
		t.Fatal(err)
	}

	_, err := env.svc.Booking.CreateBooking(context.Background(), bookingRequest(car.ID.String(), "2099-01-01", "2099-12-31"))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
	if n, _ := env.repo.Booking.Count(context.Background()); n != 0 {
		t.Fatalf("count = %d, want 0", n)
	}
}

func TestCreateBookingConcurrentIdenticalRequests(t *testing.T) {
	env := newTestEnv(t)
	car := env.createCar(t, "100.00")

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.Booking.CreateBooking(context.Background(), bookingRequest(car.ID, "2099-05-01", "2099-05-07"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 || conflicts != workers-1 {
		t.Fatalf("succeeded = %d, conflicts = %d", succeeded, conflicts)
	}
}

// flakyTransactor fails the first n transactions with a serialization error.
type flakyTransactor struct {
	inner    repository.Transactor
	failures int
	calls    int
}

func (f *flakyTransactor) WithinTx(ctx context.Context, fn func(tx *repository.Repository) error) error {
	f.calls++
	if f.failures > 0 {
		f.failures--
		return fmt.Errorf("commit transaction: %w", repository.ErrSerialization)
	}
	return f.inner.WithinTx(ctx, fn)
}

func newFlakyEnv(t *testing.T, failures int) (*testEnv, *flakyTransactor) {
	store := memory.NewStore(zap.NewNop())
	base := store.Repository()
	flaky := &flakyTransactor{inner: store}
	env := newTestEnvWithRepo(t, repository.New(base.Car, base.Booking, flaky))
	return env, flaky
}

func TestCreateBookingRetriesSerializationFailureOnce(t *testing.T) {
	env, flaky := newFlakyEnv(t, 0)
	car := env.createCar(t, "100.00")

	flaky.failures, flaky.calls = 1, 0
	env.book(t, car.ID, "2099-06-01", "2099-06-02")
	if flaky.calls != 2 {
		t.Fatalf("transaction attempts = %d, want 2", flaky.calls)
	}

	flaky.failures, flaky.calls = 2, 0
	_, err := env.svc.Booking.CreateBooking(context.Background(), bookingRequest(car.ID, "2099-07-01", "2099-07-02"))
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("second serialization failure: want ErrConflict, got %v", err)
	}
	if flaky.calls != 2 {
		t.Fatalf("transaction attempts = %d, want 2", flaky.calls)
	}
}

func TestCreateBookingPublishesAndInvalidates(t *testing.T) {
	env := newTestEnv(t)
	car := env.createCar(t, "100.00")
	b := env.book(t, car.ID, "2099-02-10", "2099-02-11")

	keys := env.publisher.keys()
	if len(keys) != 1 || keys[0] != event.RoutingBookingCreated {
		t.Fatalf("published %v", keys)
	}
	payload := env.publisher.events[0].payload.(event.BookingCreated)
	if payload.BookingID != b.ID || payload.TotalAmount != "200.00" {
		t.Errorf("unexpected payload %+v", payload)
	}

	if len(env.cache.invalidated) != 1 || env.cache.invalidated[0].String() != car.ID {
		t.Errorf("cache invalidations = %v", env.cache.invalidated)
	}
}

func TestCreateBookingSurvivesPublishFailure(t *testing.T) {
	env := newTestEnv(t)
	env.publisher.err = errors.New("broker down")
	car := env.createCar(t, "100.00")

	env.book(t, car.ID, "2099-02-10", "2099-02-11")
	if n, _ := env.repo.Booking.Count(context.Background()); n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}
}

func TestSetStatus(t *testing.T) {
	tests := []struct {
		name  string
		steps []string
		want  error
	}{
		{"pending to confirmed", []string{"confirmed"}, nil},
		{"pending to cancelled", []string{"cancelled"}, nil},
		{"confirmed to cancelled", []string{"confirmed", "cancelled"}, nil},
		{"upper case accepted", []string{"CONFIRMED"}, nil},
		{"same status", []string{"pending"}, ErrInvalidTransition},
		{"confirmed back to pending", []string{"confirmed", "pending"}, ErrInvalidTransition},
		{"out of cancelled", []string{"cancelled", "confirmed"}, ErrInvalidTransition},
		{"unknown status", []string{"finished"}, ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			car := env.createCar(t, "100.00")
			b := env.book(t, car.ID, "2099-02-10", "2099-02-11")

			var err error
			for _, status := range tt.steps {
				_, err = env.svc.Booking.SetStatus(context.Background(), b.ID, &request.UpdateBookingStatusRequest{Status: status})
			}
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("want %v, got %v", tt.want, err)
			}
		})
	}
}

func TestInvalidTransitionIsAConflict(t *testing.T) {
	if !errors.Is(newError(ErrInvalidTransition, "x"), ErrConflict) {
		t.Fatal("invalid transition should match ErrConflict")
	}
}

func TestSetStatusUnknownBooking(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Booking.SetStatus(context.Background(), uuid.NewString(), &request.UpdateBookingStatusRequest{Status: "confirmed"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestCancelledBookingFreesDates(t *testing.T) {
	env := newTestEnv(t)
	car := env.createCar(t, "100.00")
	b := env.book(t, car.ID, "2099-02-10", "2099-02-15")

	if _, err := env.svc.Booking.SetStatus(context.Background(), b.ID, &request.UpdateBookingStatusRequest{Status: "cancelled"}); err != nil {
		t.Fatal(err)
	}

	env.book(t, car.ID, "2099-02-12", "2099-02-13")

	keys := env.publisher.keys()
	if len(keys) != 3 || keys[1] != event.RoutingBookingStatusChanged {
		t.Fatalf("published %v", keys)
	}
}

func TestGetListDeleteBookings(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	car := env.createCar(t, "100.00")

	var ids []string
	for i := 1; i <= 3; i++ {
		b := env.book(t, car.ID, fmt.Sprintf("2099-04-%02d", i*3), fmt.Sprintf("2099-04-%02d", i*3+1))
		ids = append(ids, b.ID)
	}

	got, err := env.svc.Booking.GetBookingByID(ctx, ids[0])
	if err != nil {
		t.Fatal(err)
	}
	if got.Car == nil || got.Car.ID != car.ID {
		t.Error("booking detail should embed its car")
	}

	page, err := env.svc.Booking.ListBookings(ctx, &request.PaginatedRequest{Page: 1, PerPage: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Data) != 2 || page.Pagination.Total != 3 || page.Pagination.TotalPages != 2 {
		t.Fatalf("unexpected page %+v", page.Pagination)
	}

	if err := env.svc.Booking.DeleteBooking(ctx, ids[1]); err != nil {
		t.Fatal(err)
	}
	if _, err := env.svc.Booking.GetBookingByID(ctx, ids[1]); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted booking: want ErrNotFound, got %v", err)
	}
	if err := env.svc.Booking.DeleteBooking(ctx, ids[1]); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound, got %v", err)
	}
	if err := env.svc.Booking.DeleteBooking(ctx, "bogus"); !errors.Is(err, ErrValidation) {
		t.Fatalf("bad id: want ErrValidation, got %v", err)
	}
}
