package controller

import (
	"context"
	"net/http"

	"climate-server/internal/modules/climate/types"
)

// ClimateService is the query surface the HTTP handlers depend on.
type ClimateService interface {
	Stations(ctx context.Context) ([]types.Station, error)
	StationActivity(ctx context.Context) ([]types.StationActivity, error)
	DatasetSpan(ctx context.Context) (types.DateSpan, error)
	PrecipitationLastYear(ctx context.Context) ([]types.PrecipitationObservation, error)
	TemperatureObservationsLastYear(ctx context.Context) ([]types.TemperatureObservation, error)
	TemperatureStats(ctx context.Context, start, end string) (types.TemperatureStats, error)
}

type ClimateController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type climateControllerImpl struct {
	service ClimateService
}

func NewClimateController(service ClimateService) ClimateController {
	return &climateControllerImpl{service: service}
}

func (c *climateControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleIndex)
	mux.HandleFunc("GET /api/v1.0/precipitation", c.handlePrecipitation)
	mux.HandleFunc("GET /api/v1.0/stations", c.handleStations)
	mux.HandleFunc("GET /api/v1.0/stations/activity", c.handleStationActivity)
	mux.HandleFunc("GET /api/v1.0/tobs", c.handleTemperatureObservations)
	mux.HandleFunc("GET /api/v1.0/{start}", c.handleTemperatureStats)
	mux.HandleFunc("GET /api/v1.0/{start}/{end}", c.handleTemperatureStats)
}
