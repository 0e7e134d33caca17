package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	WindowPolicyPerRequest = "per-request"
	WindowPolicyCached     = "cached"
)

type Config struct {
	AppEnv          string
	LogLevel        slog.Level
	HTTPAddr        string
	ShutdownTimeout time.Duration

	SQLiteDriver          string
	SQLiteDSN             string
	SQLitePath            string
	SQLiteReadOnly        bool
	SQLiteMigrate         bool
	SQLiteLogSQL          bool
	SQLiteMaxOpenConns    int
	SQLiteMaxIdleConns    int
	SQLiteConnMaxLifetime time.Duration

	// DateWindowPolicy controls how the latest-date window is resolved:
	// "per-request" queries the store on every call, "cached" keeps the
	// resolved window until DateWindowTTL elapses or a refresh arrives over MQTT.
	DateWindowPolicy string
	DateWindowTTL    time.Duration

	// MQTTBroker is optional; when empty the refresh subscriber is not started.
	MQTTBroker       string
	MQTTPort         int
	MQTTClientID     string
	MQTTRefreshTopic string
}

func LoadFromEnv() (Config, error) {
	appEnv := envOr("APP_ENV", "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}

	// The dataset is opened read-only unless writes are asked for explicitly.
	readOnly, err := parseBool("SQLITE_READ_ONLY", "true")
	if err != nil {
		return Config{}, err
	}
	migrate, err := parseBool("SQLITE_MIGRATE", "false")
	if err != nil {
		return Config{}, err
	}
	if readOnly && migrate {
		return Config{}, errors.New("SQLITE_MIGRATE requires SQLITE_READ_ONLY=false")
	}
	logSQL, err := parseBool("SQLITE_LOG_SQL", "false")
	if err != nil {
		return Config{}, err
	}

	maxOpenConns, err := parseInt("SQLITE_MAX_OPEN_CONNS", "4")
	if err != nil {
		return Config{}, err
	}
	maxIdleConns, err := parseInt("SQLITE_MAX_IDLE_CONNS", "4")
	if err != nil {
		return Config{}, err
	}
	connMaxLifetime, err := parseDuration("SQLITE_CONN_MAX_LIFETIME", "0s")
	if err != nil {
		return Config{}, err
	}

	policy := strings.ToLower(envOr("DATE_WINDOW_POLICY", WindowPolicyPerRequest))
	switch policy {
	case WindowPolicyPerRequest, WindowPolicyCached:
	default:
		return Config{}, fmt.Errorf("invalid DATE_WINDOW_POLICY %q (allowed: %s, %s)", policy, WindowPolicyPerRequest, WindowPolicyCached)
	}
	windowTTL, err := parseDuration("DATE_WINDOW_TTL", "0s")
	if err != nil {
		return Config{}, err
	}
	if windowTTL < 0 {
		return Config{}, fmt.Errorf("invalid DATE_WINDOW_TTL %q: must not be negative", windowTTL)
	}

	mqttPort, err := parseInt("MQTT_PORT", "1883")
	if err != nil {
		return Config{}, err
	}
	if mqttPort <= 0 || mqttPort > 65535 {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %d (allowed: 1-65535)", mqttPort)
	}

	return Config{
		AppEnv:          appEnv,
		LogLevel:        level,
		HTTPAddr:        envOr("HTTP_ADDR", ":8080"),
		ShutdownTimeout: shutdownTimeout,

		SQLiteDriver:          envOr("SQLITE_DRIVER", "sqlite3"),
		SQLiteDSN:             strings.TrimSpace(os.Getenv("SQLITE_DSN")),
		SQLitePath:            envOr("SQLITE_PATH", "Resources/hawaii.sqlite"),
		SQLiteReadOnly:        readOnly,
		SQLiteMigrate:         migrate,
		SQLiteLogSQL:          logSQL,
		SQLiteMaxOpenConns:    maxOpenConns,
		SQLiteMaxIdleConns:    maxIdleConns,
		SQLiteConnMaxLifetime: connMaxLifetime,

		DateWindowPolicy: policy,
		DateWindowTTL:    windowTTL,

		MQTTBroker:       strings.TrimSpace(os.Getenv("MQTT_BROKER")),
		MQTTPort:         mqttPort,
		MQTTClientID:     envOr("MQTT_CLIENT_ID", "climate-server"),
		MQTTRefreshTopic: envOr("MQTT_REFRESH_TOPIC", "climate/dataset/refresh"),
	}, nil
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func parseInt(key, def string) (int, error) {
	s := envOr(key, def)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func parseBool(key, def string) (bool, error) {
	s := envOr(key, def)
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return b, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	s := envOr(key, def)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return d, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
