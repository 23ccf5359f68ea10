package adaptor

import (
	"encoding/json"
	"net/http"
	"time"

	"car-rental/internal/dto/request"
	"car-rental/internal/dto/response"
	"car-rental/internal/usecase"
	"car-rental/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CarHandler struct {
	service      usecase.CarService
	availability usecase.AvailabilityService
	log          *zap.Logger
}

func NewCarHandler(service usecase.CarService, availability usecase.AvailabilityService, log *zap.Logger) *CarHandler {
	return &CarHandler{
		service:      service,
		availability: availability,
		log:          log.With(zap.String("handler", "car")),
	}
}

// GetCars handles GET /api/cars (public)
// Optional ?start_date=2025-02-10&end_date=2025-02-15 keeps only cars free on that range.
func (h *CarHandler) GetCars(w http.ResponseWriter, r *http.Request) {
	start, err := parseDateParam(r, "start_date")
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid start_date, expected YYYY-MM-DD", nil)
		return
	}
	end, err := parseDateParam(r, "end_date")
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid end_date, expected YYYY-MM-DD", nil)
		return
	}

	cars, err := h.availability.AvailableCars(r.Context(), start, end)
	if err != nil {
		handleServiceError(w, h.log, err, "get cars")
		return
	}

	utils.ResponseSuccess(w, "success", cars)
}

// GetCarByID handles GET /api/cars/{id} (public)
func (h *CarHandler) GetCarByID(w http.ResponseWriter, r *http.Request) {
	carID := chi.URLParam(r, "id")
	if carID == "" {
		utils.ResponseBadRequest(w, "Car ID is required", nil)
		return
	}

	car, err := h.service.GetCar(r.Context(), carID)
	if err != nil {
		handleServiceError(w, h.log, err, "get car by ID")
		return
	}

	utils.ResponseSuccess(w, "success", car)
}

// CheckAvailability handles GET /api/cars/{id}/availability (public)
// Requires query params: ?start_date=2025-02-10&end_date=2025-02-15
func (h *CarHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	carID := chi.URLParam(r, "id")

	start, err := parseDateParam(r, "start_date")
	if err != nil || start == nil {
		utils.ResponseBadRequest(w, "start_date is required, expected YYYY-MM-DD", nil)
		return
	}
	end, err := parseDateParam(r, "end_date")
	if err != nil || end == nil {
		utils.ResponseBadRequest(w, "end_date is required, expected YYYY-MM-DD", nil)
		return
	}
	if end.Before(*start) {
		utils.ResponseBadRequest(w, "end_date must be on or after start_date", nil)
		return
	}

	available, err := h.availability.IsAvailable(r.Context(), carID, *start, *end)
	if err != nil {
		handleServiceError(w, h.log, err, "check availability")
		return
	}

	utils.ResponseSuccess(w, "success", response.AvailabilityResponse{
		CarID:     carID,
		StartDate: utils.FormatDate(*start),
		EndDate:   utils.FormatDate(*end),
		Available: available,
	})
}

// GetUnavailableDates handles GET /api/cars/{id}/unavailable-dates (public)
// Without ?from&to the window is today through the booking horizon.
func (h *CarHandler) GetUnavailableDates(w http.ResponseWriter, r *http.Request) {
	carID := chi.URLParam(r, "id")

	from, err := parseDateParam(r, "from")
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid from, expected YYYY-MM-DD", nil)
		return
	}
	to, err := parseDateParam(r, "to")
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid to, expected YYYY-MM-DD", nil)
		return
	}

	var days []time.Time
	switch {
	case from != nil && to != nil:
		if to.Before(*from) {
			utils.ResponseBadRequest(w, "to must be on or after from", nil)
			return
		}
		days, err = h.availability.BlockedDays(r.Context(), carID, *from, *to)
	case from == nil && to == nil:
		days, err = h.availability.UpcomingBlockedDays(r.Context(), carID)
	default:
		utils.ResponseBadRequest(w, "from and to must be given together", nil)
		return
	}
	if err != nil {
		handleServiceError(w, h.log, err, "get unavailable dates")
		return
	}

	dates := make([]string, len(days))
	for i, day := range days {
		dates[i] = utils.FormatDate(day)
	}

	utils.ResponseSuccess(w, "success", response.UnavailableDatesResponse{
		CarID:            carID,
		UnavailableDates: dates,
	})
}

// ==================== ADMIN METHODS ====================

// GetAllCars handles GET /api/admin/cars (admin only)
func (h *CarHandler) GetAllCars(w http.ResponseWriter, r *http.Request) {
	cars, err := h.service.ListCars(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "get all cars")
		return
	}

	utils.ResponseSuccess(w, "success", cars)
}

// CreateCar handles POST /api/admin/cars (admin only)
func (h *CarHandler) CreateCar(w http.ResponseWriter, r *http.Request) {
	var req request.CreateCarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	// Validate request
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	car, err := h.service.CreateCar(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create car")
		return
	}

	utils.ResponseCreated(w, "success", car)
}

// UpdateCar handles PUT /api/admin/cars/{id} (admin only)
// Deactivating a car cancels its pending and confirmed bookings.
func (h *CarHandler) UpdateCar(w http.ResponseWriter, r *http.Request) {
	carID := chi.URLParam(r, "id")
	if carID == "" {
		utils.ResponseBadRequest(w, "Car ID is required", nil)
		return
	}

	var req request.UpdateCarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	result, err := h.service.UpdateCar(r.Context(), carID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update car")
		return
	}

	utils.ResponseSuccess(w, "success", result)
}
