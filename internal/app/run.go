package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"climate-server/internal/config"
	"climate-server/internal/db"
	"climate-server/internal/httpapi"
	"climate-server/internal/migrate"
	"climate-server/internal/modules/climate"
	climateviews "climate-server/internal/modules/climate/views"
	"climate-server/internal/mqtt"
)

func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"sqliteDriver", cfg.SQLiteDriver,
		"sqlitePath", cfg.SQLitePath,
		"sqliteReadOnly", cfg.SQLiteReadOnly,
		"sqliteMigrate", cfg.SQLiteMigrate,
		"sqliteMaxOpenConns", cfg.SQLiteMaxOpenConns,
		"sqliteMaxIdleConns", cfg.SQLiteMaxIdleConns,
		"sqliteConnMaxLifetime", cfg.SQLiteConnMaxLifetime,
		"dateWindowPolicy", cfg.DateWindowPolicy,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttRefreshTopic", cfg.MQTTRefreshTopic,
	)
	dbConn, err := db.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(dbConn); closeErr != nil {
			logger.Error("db close", "error", closeErr)
		}
	}()

	if cfg.SQLiteMigrate {
		applied, err := migrate.Run(ctx, dbConn)
		if err != nil {
			return err
		}
		logger.Info("migrations applied", "count", applied)
	}

	var ok int
	if err := dbConn.QueryRowContext(ctx, `SELECT 1`).Scan(&ok); err != nil {
		return err
	}
	if ok != 1 {
		return errors.New("database connection failed")
	}
	logger.Info("database connection successful")

	if err := climateviews.LoadTemplates(); err != nil {
		return err
	}

	metrics := httpapi.NewMetrics()
	mux := httpapi.NewMux(dbConn, metrics)
	climateService := climate.RegisterFeature(mux, dbConn, cfg, logger)

	var subscriber *mqtt.Subscriber
	if cfg.MQTTBroker != "" {
		subscriber = mqtt.NewSubscriber(cfg, logger.With("component", "mqtt"))
		// Attach before Connect so a notice queued on the broker is not missed.
		climate.AttachRefreshHandler(subscriber, climateService, logger)

		// Short timeout so a missing broker does not block startup.
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		err := subscriber.Connect(connectCtx)
		connectCancel()
		if err != nil {
			logger.Warn("mqtt connection failed (continuing without refresh notices)", "error", err)
		}
	} else {
		logger.Info("mqtt disabled; dataset refresh notices will not be received")
	}

	srv := httpapi.NewServer(cfg, httpapi.Handler(mux, metrics, logger))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if subscriber != nil {
		logger.Info("mqtt disconnecting")
		subscriber.Disconnect()
	}

	logger.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
