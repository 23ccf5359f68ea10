package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// allowed status changes; cancelled has no outgoing edges
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCancelled},
}

// ParseBookingStatus accepts any letter case.
func ParseBookingStatus(s string) (BookingStatus, bool) {
	status := BookingStatus(strings.ToLower(strings.TrimSpace(s)))
	switch status {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled:
		return status, true
	}
	return "", false
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCancelled
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Booking struct {
	Base
	CarID           uuid.UUID       `db:"car_id"`
	CustomerName    string          `db:"customer_name"`
	CustomerEmail   string          `db:"customer_email"`
	CustomerAddress string          `db:"customer_address"`
	CustomerPhone   string          `db:"customer_phone"`
	StartDate       time.Time       `db:"start_date"`
	EndDate         time.Time       `db:"end_date"`
	NumberOfDays    int             `db:"number_of_days"`
	TotalAmount     decimal.Decimal `db:"total_amount"`
	Status          BookingStatus   `db:"status"`
}

// Overlaps reports whether the booking shares at least one day with
// [start, end]. Both ranges are inclusive.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return !b.StartDate.After(end) && !b.EndDate.Before(start)
}

// Blocks reports whether the booking holds its dates.
func (b *Booking) Blocks() bool {
	return b.Status != BookingStatusCancelled
}
