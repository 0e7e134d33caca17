package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"climate-server/internal/logging"
	"climate-server/internal/modules/climate/types"
)

//go:embed sql/get-stations.sql
var getStationsSQL string

//go:embed sql/get-station-activity.sql
var getStationActivitySQL string

//go:embed sql/get-date-span.sql
var getDateSpanSQL string

//go:embed sql/get-precipitation.sql
var getPrecipitationSQL string

//go:embed sql/get-temperature-observations.sql
var getTemperatureObservationsSQL string

//go:embed sql/get-temperature-stats.sql
var getTemperatureStatsSQL string

// ClimateRepository reads the climate dataset. Date bounds are yyyy-mm-dd
// strings and are compared lexicographically by the store.
type ClimateRepository interface {
	GetStations(ctx context.Context) ([]types.Station, error)
	GetStationActivity(ctx context.Context) ([]types.StationActivity, error)
	// GetDateSpan reports ok=false when there are no observations.
	GetDateSpan(ctx context.Context) (span types.DateSpan, ok bool, err error)
	GetPrecipitation(ctx context.Context, from, to string) ([]types.PrecipitationObservation, error)
	GetTemperatureObservations(ctx context.Context, from, to string) ([]types.TemperatureObservation, error)
	// GetTemperatureStats reports ok=false when no observation matched.
	// An empty to leaves the range open above.
	GetTemperatureStats(ctx context.Context, from, to string) (stats types.TemperatureStats, ok bool, err error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) ClimateRepository {
	return &repositoryImpl{db: db}
}

// withConn checks a connection out of the pool for the duration of fn and
// always returns it, whatever fn does.
func (r *repositoryImpl) withConn(ctx context.Context, op string, fn func(conn *sql.Conn) error) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("%s: acquire connection: %w", op, err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logging.FromContext(ctx).Error("release connection", "op", op, "error", err)
		}
	}()
	if err := fn(conn); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func closeRows(ctx context.Context, rows *sql.Rows, what string) {
	if err := rows.Close(); err != nil {
		logging.FromContext(ctx).Error("close "+what+" rows", "error", err)
	}
}

func (r *repositoryImpl) GetStations(ctx context.Context) ([]types.Station, error) {
	out := []types.Station{}
	err := r.withConn(ctx, "get stations", func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, getStationsSQL)
		if err != nil {
			return err
		}
		defer closeRows(ctx, rows, "stations")
		for rows.Next() {
			var s types.Station
			if err := rows.Scan(&s.ID, &s.Name); err != nil {
				return err
			}
			out = append(out, s)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repositoryImpl) GetStationActivity(ctx context.Context) ([]types.StationActivity, error) {
	out := []types.StationActivity{}
	err := r.withConn(ctx, "get station activity", func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, getStationActivitySQL)
		if err != nil {
			return err
		}
		defer closeRows(ctx, rows, "station activity")
		for rows.Next() {
			var s types.StationActivity
			if err := rows.Scan(&s.ID, &s.Name, &s.Observations); err != nil {
				return err
			}
			out = append(out, s)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repositoryImpl) GetDateSpan(ctx context.Context) (types.DateSpan, bool, error) {
	var first, last sql.NullString
	err := r.withConn(ctx, "get date span", func(conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, getDateSpanSQL).Scan(&first, &last)
	})
	if err != nil {
		return types.DateSpan{}, false, err
	}
	if !first.Valid || !last.Valid {
		return types.DateSpan{}, false, nil
	}
	return types.DateSpan{First: first.String, Last: last.String}, true, nil
}

func (r *repositoryImpl) GetPrecipitation(ctx context.Context, from, to string) ([]types.PrecipitationObservation, error) {
	out := []types.PrecipitationObservation{}
	err := r.withConn(ctx, "get precipitation", func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, getPrecipitationSQL, from, to)
		if err != nil {
			return err
		}
		defer closeRows(ctx, rows, "precipitation")
		for rows.Next() {
			var (
				rec  types.PrecipitationObservation
				prcp sql.NullFloat64
			)
			if err := rows.Scan(&rec.Date, &prcp); err != nil {
				return err
			}
			if prcp.Valid {
				v := prcp.Float64
				rec.Precipitation = &v
			}
			out = append(out, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repositoryImpl) GetTemperatureObservations(ctx context.Context, from, to string) ([]types.TemperatureObservation, error) {
	out := []types.TemperatureObservation{}
	err := r.withConn(ctx, "get temperature observations", func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, getTemperatureObservationsSQL, from, to)
		if err != nil {
			return err
		}
		defer closeRows(ctx, rows, "temperature")
		for rows.Next() {
			var rec types.TemperatureObservation
			if err := rows.Scan(&rec.Date, &rec.Temperature); err != nil {
				return err
			}
			out = append(out, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repositoryImpl) GetTemperatureStats(ctx context.Context, from, to string) (types.TemperatureStats, bool, error) {
	var upper any
	if to != "" {
		upper = to
	}
	var lo, avg, hi sql.NullFloat64
	err := r.withConn(ctx, "get temperature stats", func(conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, getTemperatureStatsSQL, from, upper).Scan(&lo, &avg, &hi)
	})
	if err != nil {
		return types.TemperatureStats{}, false, err
	}
	// MIN over zero rows is NULL.
	if !lo.Valid || !avg.Valid || !hi.Valid {
		return types.TemperatureStats{}, false, nil
	}
	return types.TemperatureStats{Min: lo.Float64, Avg: avg.Float64, Max: hi.Float64}, true, nil
}
