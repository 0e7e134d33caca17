package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"climate-server/internal/config"
)

// Handler assembles the middleware chain around mux.
func Handler(mux *http.ServeMux, metrics *Metrics, logger *slog.Logger) http.Handler {
	return requestID(logger)(requestLogger(metrics.Middleware(mux)))
}

func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
