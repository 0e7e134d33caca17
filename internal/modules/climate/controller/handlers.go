package controller

import (
	"bytes"
	"errors"
	"net/http"

	"climate-server/internal/logging"
	"climate-server/internal/modules/climate/service"
	"climate-server/internal/modules/climate/views"
	"climate-server/internal/utils"
)

func (c *climateControllerImpl) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := views.IndexData{Routes: indexRoutes}

	span, err := c.service.DatasetSpan(r.Context())
	switch {
	case err == nil:
		data.HasData = true
		data.FirstDate = span.First
		data.LastDate = span.Last
	case errors.Is(err, service.ErrEmptyStore):
	default:
		// The usage page still renders without dataset dates.
		logging.FromContext(r.Context()).Warn("index: dataset span unavailable", "error", err)
	}

	var buf bytes.Buffer
	if err := views.RenderIndex(&buf, &data); err != nil {
		logging.FromContext(r.Context()).Error("index template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		logging.FromContext(r.Context()).Error("index: write response failed", "error", err)
	}
}

func (c *climateControllerImpl) handlePrecipitation(w http.ResponseWriter, r *http.Request) {
	out, err := c.service.PrecipitationLastYear(r.Context())
	if err != nil {
		writeListFailure(w, r, "precipitation", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

func (c *climateControllerImpl) handleStations(w http.ResponseWriter, r *http.Request) {
	out, err := c.service.Stations(r.Context())
	if err != nil {
		writeListFailure(w, r, "stations", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

func (c *climateControllerImpl) handleStationActivity(w http.ResponseWriter, r *http.Request) {
	out, err := c.service.StationActivity(r.Context())
	if err != nil {
		writeListFailure(w, r, "station activity", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

func (c *climateControllerImpl) handleTemperatureObservations(w http.ResponseWriter, r *http.Request) {
	out, err := c.service.TemperatureObservationsLastYear(r.Context())
	if err != nil {
		writeListFailure(w, r, "temperature observations", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

// handleTemperatureStats serves both /{start} and /{start}/{end}; end is empty for the former.
func (c *climateControllerImpl) handleTemperatureStats(w http.ResponseWriter, r *http.Request) {
	start := r.PathValue("start")
	end := r.PathValue("end")

	stats, err := c.service.TemperatureStats(r.Context(), start, end)
	if err != nil {
		writeStatsOutcome(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stats)
}
