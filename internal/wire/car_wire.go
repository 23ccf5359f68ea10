package wire

import (
	"net/http"

	"car-rental/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireCar(
	r chi.Router,
	carHandler *adaptor.CarHandler,
	admin func(http.Handler) http.Handler,
) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/cars - Active cars, optionally ?start_date&end_date
	r.Get("/api/cars", carHandler.GetCars)
	r.Get("/api/cars/{id}", carHandler.GetCarByID)

	// GET /api/cars/{id}/availability?start_date=2025-02-10&end_date=2025-02-15
	r.Get("/api/cars/{id}/availability", carHandler.CheckAvailability)

	// GET /api/cars/{id}/unavailable-dates - Optional ?from&to, defaults to the booking horizon
	r.Get("/api/cars/{id}/unavailable-dates", carHandler.GetUnavailableDates)

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/cars", func(r chi.Router) {
		r.Use(admin)

		r.Get("/", carHandler.GetAllCars)
		r.Post("/", carHandler.CreateCar)

		// PUT /api/admin/cars/{id} - Deactivation cancels the car's open bookings
		r.Put("/{id}", carHandler.UpdateCar)
	})
}
