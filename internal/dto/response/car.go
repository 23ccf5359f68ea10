package response

import (
	"time"

	"car-rental/internal/data/entity"
)

type CarResponse struct {
	ID        string    `json:"id"`
	Brand     string    `json:"brand"`
	Model     string    `json:"model"`
	DailyRate string    `json:"daily_rate"`
	ImagePath *string   `json:"image_path,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CarUpdateResponse struct {
	Car               CarResponse `json:"car"`
	CancelledBookings int64       `json:"cancelled_bookings"`
}

type AvailabilityResponse struct {
	CarID     string `json:"car_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Available bool   `json:"available"`
}

type UnavailableDatesResponse struct {
	CarID            string   `json:"car_id"`
	UnavailableDates []string `json:"unavailable_dates"`
}

func CarToResponse(car *entity.Car) CarResponse {
	return CarResponse{
		ID:        car.ID.String(),
		Brand:     car.Brand,
		Model:     car.Model,
		DailyRate: car.DailyRate.StringFixed(2),
		ImagePath: car.ImagePath,
		Active:    car.Active,
		CreatedAt: car.CreatedAt,
		UpdatedAt: car.UpdatedAt,
	}
}
