package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"climate-server/internal/modules/climate/repository"
	"climate-server/internal/modules/climate/types"
)

type Service struct {
	repository repository.ClimateRepository
	spans      SpanResolver
	logger     *slog.Logger
}

func NewService(repository repository.ClimateRepository, spans SpanResolver, logger *slog.Logger) *Service {
	if spans == nil {
		spans = NewPerRequestSpan(repository)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repository: repository, spans: spans, logger: logger}
}

// InvalidateWindow forces the next window resolution to read the store.
func (s *Service) InvalidateWindow() {
	s.spans.Invalidate()
}

func (s *Service) Stations(ctx context.Context) ([]types.Station, error) {
	stations, err := s.repository.GetStations(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return stations, nil
}

// StationActivity lists stations by observation count, most active first.
func (s *Service) StationActivity(ctx context.Context) ([]types.StationActivity, error) {
	activity, err := s.repository.GetStationActivity(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return activity, nil
}

func (s *Service) DatasetSpan(ctx context.Context) (types.DateSpan, error) {
	return s.spans.Span(ctx)
}

// LastYearWindow resolves the trailing window ending at the latest observation.
func (s *Service) LastYearWindow(ctx context.Context) (types.Window, error) {
	span, err := s.spans.Span(ctx)
	if err != nil {
		return types.Window{}, err
	}
	w, err := WindowFor(span.Last)
	if err != nil {
		// The store holds a date that is not yyyy-mm-dd.
		return types.Window{}, storeError(err)
	}
	return w, nil
}

func (s *Service) PrecipitationLastYear(ctx context.Context) ([]types.PrecipitationObservation, error) {
	w, err := s.LastYearWindow(ctx)
	if errors.Is(err, ErrEmptyStore) {
		return []types.PrecipitationObservation{}, nil
	}
	if err != nil {
		return nil, err
	}
	out, err := s.repository.GetPrecipitation(ctx, w.Start, w.End)
	if err != nil {
		return nil, storeError(err)
	}
	s.logger.Debug("precipitation window", "start", w.Start, "end", w.End, "rows", len(out))
	return out, nil
}

// TemperatureObservationsLastYear covers every station; no station filter is applied.
func (s *Service) TemperatureObservationsLastYear(ctx context.Context) ([]types.TemperatureObservation, error) {
	w, err := s.LastYearWindow(ctx)
	if errors.Is(err, ErrEmptyStore) {
		return []types.TemperatureObservation{}, nil
	}
	if err != nil {
		return nil, err
	}
	out, err := s.repository.GetTemperatureObservations(ctx, w.Start, w.End)
	if err != nil {
		return nil, storeError(err)
	}
	s.logger.Debug("temperature window", "start", w.Start, "end", w.End, "rows", len(out))
	return out, nil
}

// TemperatureStats aggregates temperatures with date >= start and, when end
// is non-empty, date <= end. Both dates must be yyyy-mm-dd.
func (s *Service) TemperatureStats(ctx context.Context, start, end string) (types.TemperatureStats, error) {
	from, err := parseDate("start", start)
	if err != nil {
		return types.TemperatureStats{}, err
	}
	if end != "" {
		to, err := parseDate("end", end)
		if err != nil {
			return types.TemperatureStats{}, err
		}
		if from.After(to) {
			return types.TemperatureStats{}, fmt.Errorf("%w (%s > %s)", ErrInvalidRange, start, end)
		}
	}

	stats, ok, err := s.repository.GetTemperatureStats(ctx, start, end)
	if err != nil {
		return types.TemperatureStats{}, storeError(err)
	}
	if !ok {
		return types.TemperatureStats{}, ErrNoData
	}
	return stats, nil
}

func parseDate(name, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, invalidInput("%s %q is not a yyyy-mm-dd date", name, value)
	}
	return t, nil
}
