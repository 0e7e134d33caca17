package controller

import (
	"errors"
	"net/http"

	"climate-server/internal/logging"
	"climate-server/internal/modules/climate/service"
	"climate-server/internal/modules/climate/views"
	"climate-server/internal/utils"
)

const (
	msgNoData     = "No temperature data found for the requested date range."
	msgBadRequest = "Bad request: dates must be formatted as yyyy-mm-dd."
	msgBadRange   = "Bad request: start date must not be after end date."
	msgStoreError = "Unable to query the climate dataset."
)

var indexRoutes = []views.Route{
	{Path: "/api/v1.0/precipitation", Description: "precipitation for the last year of data"},
	{Path: "/api/v1.0/stations", Description: "all weather stations"},
	{Path: "/api/v1.0/stations/activity", Description: "stations ordered by number of observations"},
	{Path: "/api/v1.0/tobs", Description: "temperature observations for the last year of data"},
	{Path: "/api/v1.0/<start>", Description: "min, average and max temperature from start (yyyy-mm-dd)"},
	{Path: "/api/v1.0/<start>/<end>", Description: "min, average and max temperature from start to end inclusive; a start after end is rejected with 400"},
}

// writeStatsOutcome turns a TemperatureStats failure into its plain-text response.
// Internal detail is logged, never returned.
func writeStatsOutcome(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.FromContext(r.Context())
	switch {
	case errors.Is(err, service.ErrNoData):
		logger.Info("temperature stats: no data", "path", r.URL.Path)
		utils.WriteText(w, http.StatusNotFound, msgNoData)
	case errors.Is(err, service.ErrInvalidRange):
		logger.Info("temperature stats: reversed range", "path", r.URL.Path, "error", err)
		utils.WriteText(w, http.StatusBadRequest, msgBadRange)
	case errors.Is(err, service.ErrInvalidInput):
		logger.Info("temperature stats: invalid input", "path", r.URL.Path, "error", err)
		utils.WriteText(w, http.StatusBadRequest, msgBadRequest)
	default:
		logger.Error("temperature stats failed", "path", r.URL.Path, "error", err)
		utils.WriteText(w, http.StatusInternalServerError, msgStoreError)
	}
}

func writeListFailure(w http.ResponseWriter, r *http.Request, what string, err error) {
	logging.FromContext(r.Context()).Error(what+" failed", "error", err)
	utils.WriteError(w, http.StatusInternalServerError, "failed to load "+what)
}
