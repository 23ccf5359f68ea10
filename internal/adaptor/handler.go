package adaptor

import (
	"errors"
	"net/http"
	"time"

	"car-rental/internal/usecase"
	"car-rental/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Car     *CarHandler
	Booking *BookingHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Car:     NewCarHandler(service.Car, service.Availability, log),
		Booking: NewBookingHandler(service.Booking, log),
	}
}

// handleServiceError maps service error kinds onto HTTP statuses.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var svcErr *usecase.Error
	msg := "Internal server error"
	if errors.As(err, &svcErr) {
		msg = svcErr.Msg
	}

	switch {
	case errors.Is(err, usecase.ErrValidation):
		log.Warn(operation+" validation failed",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseBadRequest(w, msg, nil)

	case errors.Is(err, usecase.ErrNotFound):
		log.Warn(operation+" failed - not found",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseNotFound(w, msg)

	case errors.Is(err, usecase.ErrConflict):
		log.Warn(operation+" failed - conflict",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseConflict(w, msg)

	default:
		log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, msg)
	}
}

// parseDateParam reads an optional YYYY-MM-DD query parameter.
func parseDateParam(r *http.Request, name string) (*time.Time, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return nil, nil
	}
	date, err := utils.ParseDate(value)
	if err != nil {
		return nil, err
	}
	return &date, nil
}
