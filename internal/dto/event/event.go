// Package event holds the payloads published to the message broker.
package event

import "time"

const (
	RoutingBookingCreated       = "booking.created"
	RoutingBookingStatusChanged = "booking.status_changed"
	RoutingCarDeactivated       = "car.deactivated"
)

type BookingCreated struct {
	BookingID    string    `json:"booking_id"`
	CarID        string    `json:"car_id"`
	StartDate    string    `json:"start_date"`
	EndDate      string    `json:"end_date"`
	NumberOfDays int       `json:"number_of_days"`
	TotalAmount  string    `json:"total_amount"`
	CreatedAt    time.Time `json:"created_at"`
}

type BookingStatusChanged struct {
	BookingID string    `json:"booking_id"`
	CarID     string    `json:"car_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ChangedAt time.Time `json:"changed_at"`
}

type CarDeactivated struct {
	CarID             string    `json:"car_id"`
	CancelledBookings int64     `json:"cancelled_bookings"`
	DeactivatedAt     time.Time `json:"deactivated_at"`
}
