package wire

import (
	"net/http"

	"car-rental/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	admin func(http.Handler) http.Handler,
) {
	// ==================== PUBLIC ROUTES ====================
	// POST /api/bookings - Create a booking, starts as pending
	r.Post("/api/bookings", bookingHandler.CreateBooking)

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/bookings", func(r chi.Router) {
		r.Use(admin)

		// GET /api/admin/bookings?page=1&per_page=10 - Newest first
		r.Get("/", bookingHandler.GetBookings)
		r.Get("/{id}", bookingHandler.GetBookingByID)

		// PUT /api/admin/bookings/{id}/status - {"status": "confirmed" | "cancelled"}
		r.Put("/{id}/status", bookingHandler.UpdateBookingStatus)

		r.Delete("/{id}", bookingHandler.DeleteBooking)
	})
}
