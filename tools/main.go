package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"climate-server/internal/config"
	"climate-server/internal/db"
	"climate-server/internal/logging"
	"climate-server/internal/migrate"
	"climate-server/internal/mqtt"
)

const (
	appName = "climate-tools"
	version = "dev"
)

const usage = `usage: %s <command>
  migrate                             apply pending schema migrations
  notify-refresh [source] [latest]    announce a dataset reload over MQTT
`

var errUsage = errors.New("usage")

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "env file error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg, version, appName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], cfg, logger, os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, usage, os.Args[0])
		} else {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, cfg config.Config, logger *slog.Logger, out io.Writer) error {
	if len(args) < 1 {
		return errUsage
	}

	switch args[0] {
	case "migrate":
		return runMigrate(ctx, cfg, logger, out)
	case "notify-refresh":
		source := "climate-tools"
		if len(args) > 1 {
			source = args[1]
		}
		var latest string
		if len(args) > 2 {
			latest = args[2]
		}
		return runNotifyRefresh(ctx, cfg, logger, source, latest, out)
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
}

func runMigrate(ctx context.Context, cfg config.Config, logger *slog.Logger, out io.Writer) error {
	if cfg.SQLiteReadOnly {
		return errors.New("migrate: set SQLITE_READ_ONLY=false to apply migrations")
	}
	conn, err := db.Open(cfg, logger)
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	defer func() {
		if closeErr := db.Close(conn); closeErr != nil {
			logger.Error("db close", "err", closeErr)
		}
	}()

	applied, err := migrate.Run(ctx, conn)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	fmt.Fprintf(out, "migrations applied: %d\n", applied)
	return nil
}

func runNotifyRefresh(ctx context.Context, cfg config.Config, logger *slog.Logger, source, latest string, out io.Writer) error {
	if cfg.MQTTBroker == "" {
		return errors.New("notify-refresh: MQTT_BROKER is not set")
	}
	msg := mqtt.DatasetRefresh{Source: source, Timestamp: time.Now().UTC(), LatestDate: latest}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("notify-refresh: %w", err)
	}

	pub := mqtt.NewPublisher(cfg, logger)
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pub.Connect(connectCtx); err != nil {
		return err
	}
	defer pub.Disconnect()

	if err := pub.PublishRefresh(connectCtx, msg); err != nil {
		return err
	}
	fmt.Fprintf(out, "refresh published to %s\n", cfg.MQTTRefreshTopic)
	return nil
}
