package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func newCar(active bool) *entity.Car {
	now := time.Now()
	return &entity.Car{
		Base:      entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Brand:     "Toyota",
		Model:     "Corolla",
		DailyRate: decimal.RequireFromString("100.00"),
		Active:    active,
	}
}

func newBooking(carID uuid.UUID, start, end string, status entity.BookingStatus) *entity.Booking {
	now := time.Now()
	return &entity.Booking{
		Base:      entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		CarID:     carID,
		StartDate: day(start),
		EndDate:   day(end),
		Status:    status,
	}
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(zap.NewNop())
	car := newCar(true)
	if err := repo.Car.Create(ctx, car); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err := repo.WithinTx(ctx, func(tx *repository.Repository) error {
		car.Active = false
		if err := tx.Car.Update(ctx, car); err != nil {
			return err
		}
		if err := tx.Booking.Create(ctx, newBooking(car.ID, "2025-03-01", "2025-03-03", entity.BookingStatusPending)); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}

	got, _ := repo.Car.FindByID(ctx, car.ID)
	if !got.Active {
		t.Error("car update should have been rolled back")
	}
	if n, _ := repo.Booking.Count(ctx); n != 0 {
		t.Errorf("booking insert should have been rolled back, count = %d", n)
	}
}

func TestWithinTxCommits(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(zap.NewNop())
	car := newCar(true)

	err := repo.WithinTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Car.Create(ctx, car); err != nil {
			return err
		}
		return tx.Booking.Create(ctx, newBooking(car.ID, "2025-03-01", "2025-03-03", entity.BookingStatusPending))
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, _ := repo.Car.FindByID(ctx, car.ID); got == nil {
		t.Error("car should be committed")
	}
	if n, _ := repo.Booking.Count(ctx); n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestBookingCreateRejectsOverlap(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(zap.NewNop())
	carID := uuid.New()

	if err := repo.Booking.Create(ctx, newBooking(carID, "2025-02-10", "2025-02-15", entity.BookingStatusConfirmed)); err != nil {
		t.Fatal(err)
	}

	err := repo.Booking.Create(ctx, newBooking(carID, "2025-02-12", "2025-02-20", entity.BookingStatusPending))
	if !errors.Is(err, repository.ErrOverlap) {
		t.Fatalf("want ErrOverlap, got %v", err)
	}

	// adjacent range and a different car are both fine
	if err := repo.Booking.Create(ctx, newBooking(carID, "2025-02-16", "2025-02-20", entity.BookingStatusPending)); err != nil {
		t.Fatalf("adjacent booking: %v", err)
	}
	if err := repo.Booking.Create(ctx, newBooking(uuid.New(), "2025-02-12", "2025-02-20", entity.BookingStatusPending)); err != nil {
		t.Fatalf("other car: %v", err)
	}
}

func TestFindOverlappingIgnoresCancelled(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(zap.NewNop())
	carID := uuid.New()

	cancelled := newBooking(carID, "2025-03-01", "2025-03-05", entity.BookingStatusCancelled)
	live := newBooking(carID, "2025-03-10", "2025-03-12", entity.BookingStatusPending)
	for _, b := range []*entity.Booking{cancelled, live} {
		if err := repo.Booking.Create(ctx, b); err != nil {
			t.Fatal(err)
		}
	}

	got, err := repo.Booking.FindOverlapping(ctx, carID, day("2025-03-01"), day("2025-03-31"))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != live.ID {
		t.Fatalf("want only the live booking, got %d bookings", len(got))
	}
}

func TestCancelActiveByCarID(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(zap.NewNop())
	carID := uuid.New()

	for _, b := range []*entity.Booking{
		newBooking(carID, "2025-03-01", "2025-03-02", entity.BookingStatusPending),
		newBooking(carID, "2025-03-05", "2025-03-06", entity.BookingStatusConfirmed),
		newBooking(carID, "2025-03-08", "2025-03-09", entity.BookingStatusCancelled),
		newBooking(uuid.New(), "2025-03-01", "2025-03-02", entity.BookingStatusPending),
	} {
		if err := repo.Booking.Create(ctx, b); err != nil {
			t.Fatal(err)
		}
	}

	n, err := repo.Booking.CancelActiveByCarID(ctx, carID)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("cancelled = %d, want 2", n)
	}

	left, _ := repo.Booking.FindOverlapping(ctx, carID, day("2025-01-01"), day("2025-12-31"))
	if len(left) != 0 {
		t.Fatalf("%d bookings still block the car", len(left))
	}
}

func TestFindAllPagesNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewStore(zap.NewNop())
	repo := store.Repository()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		b := newBooking(uuid.New(), "2025-03-01", "2025-03-02", entity.BookingStatusPending)
		b.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		ids = append(ids, b.ID)
		if err := repo.Booking.Create(ctx, b); err != nil {
			t.Fatal(err)
		}
	}

	page, err := repo.Booking.FindAll(ctx, 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 || page[0].ID != ids[4] || page[1].ID != ids[3] {
		t.Fatal("first page should hold the two newest bookings")
	}

	last, _ := repo.Booking.FindAll(ctx, 2, 4)
	if len(last) != 1 || last[0].ID != ids[0] {
		t.Fatal("last page should hold the oldest booking")
	}

	if beyond, _ := repo.Booking.FindAll(ctx, 2, 10); len(beyond) != 0 {
		t.Fatal("offset past the end should be empty")
	}
}

func TestCanceledContextIsRejected(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := NewRepository(zap.NewNop())
	if _, err := repo.Car.FindAll(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}
