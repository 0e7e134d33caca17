package climate

import (
	"database/sql"
	"log/slog"
	"net/http"

	"climate-server/internal/config"
	"climate-server/internal/modules/climate/controller"
	"climate-server/internal/modules/climate/repository"
	"climate-server/internal/modules/climate/service"
)

// RegisterFeature wires the climate routes and returns the service so callers
// can attach refresh triggers to it.
func RegisterFeature(mux *http.ServeMux, db *sql.DB, cfg config.Config, logger *slog.Logger) *service.Service {
	climateRepository := repository.NewRepository(db)

	var spans service.SpanResolver
	switch cfg.DateWindowPolicy {
	case config.WindowPolicyCached:
		spans = service.NewCachedSpan(climateRepository, cfg.DateWindowTTL)
	default:
		spans = service.NewPerRequestSpan(climateRepository)
	}
	logger.Info("date window policy", "policy", cfg.DateWindowPolicy, "ttl", cfg.DateWindowTTL)

	climateService := service.NewService(climateRepository, spans, logger.With("module", "climate"))
	climateController := controller.NewClimateController(climateService)
	climateController.RegisterRoutes(mux)
	return climateService
}
