// internal/wire/wire.go
package wire

import (
	"net/http"

	"car-rental/internal/adaptor"
	"car-rental/internal/data/repository"
	"car-rental/internal/usecase"
	"car-rental/pkg/middleware"
	"car-rental/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the wired router and services.
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Wiring builds services, handlers and routes on top of repo.
func Wiring(repo *repository.Repository, config *utils.Config, infra usecase.Infra, logger *zap.Logger) *App {
	service := usecase.NewService(repo, config, infra, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, config, logger)

	return &App{
		Router:  router,
		Service: service,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))

	admin := middleware.AdminToken(config.Admin.TokenHash, logger)

	// Apply routes
	wireCar(r, handler.Car, admin)
	wireBooking(r, handler.Booking, admin)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
