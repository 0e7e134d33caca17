package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"climate-server/internal/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher sends dataset refresh notices; used by the operator tools after a load.
type Publisher struct {
	client mqtt.Client
	cfg    config.Config
	logger *slog.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewPublisher(cfg config.Config, logger *slog.Logger) *Publisher {
	opts := clientOptions(cfg, cfg.MQTTClientID+"-publisher")
	opts.SetConnectRetry(false)
	return &Publisher{
		client: mqtt.NewClient(opts),
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

func (p *Publisher) Connect(ctx context.Context) error {
	return waitConnect(ctx, p.client, p.stopCh)
}

func (p *Publisher) PublishRefresh(ctx context.Context, msg DatasetRefresh) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode refresh: %w", err)
	}

	token := p.client.Publish(p.cfg.MQTTRefreshTopic, 1, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", p.cfg.MQTTRefreshTopic, err)
	}
	p.logger.Info("refresh published", "topic", p.cfg.MQTTRefreshTopic, "source", msg.Source)
	return nil
}

func (p *Publisher) Disconnect() {
	p.stopOnce.Do(func() { close(p.stopCh) })
	p.client.Disconnect(250)
}
