package response

import (
	"time"

	"car-rental/internal/data/entity"
	"car-rental/pkg/utils"
)

type BookingResponse struct {
	ID              string               `json:"id"`
	CarID           string               `json:"car_id"`
	Car             *CarResponse         `json:"car,omitempty"`
	CustomerName    string               `json:"customer_name"`
	CustomerEmail   string               `json:"customer_email"`
	CustomerAddress string               `json:"customer_address"`
	CustomerPhone   string               `json:"customer_phone"`
	StartDate       string               `json:"start_date"`
	EndDate         string               `json:"end_date"`
	NumberOfDays    int                  `json:"number_of_days"`
	TotalAmount     string               `json:"total_amount"`
	Status          entity.BookingStatus `json:"status"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// BookingToResponse converts a booking; car may be nil.
func BookingToResponse(booking *entity.Booking, car *entity.Car) BookingResponse {
	resp := BookingResponse{
		ID:              booking.ID.String(),
		CarID:           booking.CarID.String(),
		CustomerName:    booking.CustomerName,
		CustomerEmail:   booking.CustomerEmail,
		CustomerAddress: booking.CustomerAddress,
		CustomerPhone:   booking.CustomerPhone,
		StartDate:       utils.FormatDate(booking.StartDate),
		EndDate:         utils.FormatDate(booking.EndDate),
		NumberOfDays:    booking.NumberOfDays,
		TotalAmount:     booking.TotalAmount.StringFixed(2),
		Status:          booking.Status,
		CreatedAt:       booking.CreatedAt,
		UpdatedAt:       booking.UpdatedAt,
	}
	if car != nil {
		carResp := CarToResponse(car)
		resp.Car = &carResp
	}
	return resp
}
