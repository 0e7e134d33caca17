package mqtt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"climate-server/internal/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

var errStopped = errors.New("mqtt: client stopped")

// RefreshSubscriber attaches a handler for dataset refresh notices.
type RefreshSubscriber interface {
	SetRefreshHandler(handler func(msg DatasetRefresh) error)
}

// Subscriber listens on the refresh topic and hands valid notices to its handler.
type Subscriber struct {
	client    mqtt.Client
	cfg       config.Config
	logger    *slog.Logger
	mu        sync.RWMutex
	connected bool
	handler   func(msg DatasetRefresh) error

	stopCh   chan struct{}
	stopOnce sync.Once
}

func clientOptions(cfg config.Config, clientID string) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort))
	opts.SetClientID(clientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	return opts
}

func NewSubscriber(cfg config.Config, logger *slog.Logger) *Subscriber {
	s := &Subscriber{
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
	}

	opts := clientOptions(cfg, cfg.MQTTClientID)
	// Subscribe from the connect callback so reconnects restore the subscription.
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		s.setConnected(true)
		logger.Info("mqtt connected", "broker", cfg.MQTTBroker, "port", cfg.MQTTPort)
		if err := s.subscribe(); err != nil {
			logger.Error("mqtt subscribe failed", "topic", cfg.MQTTRefreshTopic, "error", err)
		}
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	s.client = mqtt.NewClient(opts)
	return s
}

func (s *Subscriber) SetRefreshHandler(handler func(msg DatasetRefresh) error) {
	s.mu.Lock()
	s.handler = handler
	s.mu.Unlock()
}

// Connect waits for the first connection, honouring ctx and Disconnect.
func (s *Subscriber) Connect(ctx context.Context) error {
	return waitConnect(ctx, s.client, s.stopCh)
}

func waitConnect(ctx context.Context, client mqtt.Client, stopCh <-chan struct{}) error {
	select {
	case <-stopCh:
		return errStopped
	default:
	}
	if client.IsConnected() {
		return nil
	}

	token := client.Connect()
	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			return nil
		}
		select {
		case <-ctx.Done():
			client.Disconnect(0)
			return ctx.Err()
		case <-stopCh:
			client.Disconnect(0)
			return errStopped
		default:
		}
	}
}

func (s *Subscriber) subscribe() error {
	topic := s.cfg.MQTTRefreshTopic
	const qos = byte(1)

	token := s.client.Subscribe(topic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		s.handleMessage(msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("subscribe timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, err)
	}
	s.logger.Info("subscribed to mqtt topic", "topic", topic, "qos", qos)
	return nil
}

func (s *Subscriber) handleMessage(topic string, payload []byte) {
	s.logger.Debug("received mqtt message", "topic", topic, "size", len(payload))

	msg, err := decodeRefresh(payload)
	if err != nil {
		s.logger.Warn("ignoring refresh message", "topic", topic, "error", err)
		return
	}

	s.mu.RLock()
	handler := s.handler
	s.mu.RUnlock()
	if handler == nil {
		return
	}
	if err := handler(msg); err != nil {
		s.logger.Error("refresh handler failed", "topic", topic, "source", msg.Source, "error", err)
	}
}

func (s *Subscriber) IsConnected() bool {
	s.mu.RLock()
	connected := s.connected
	s.mu.RUnlock()
	return connected && s.client.IsConnected()
}

// Disconnect is idempotent.
func (s *Subscriber) Disconnect() {
	s.stopOnce.Do(func() { close(s.stopCh) })

	if s.IsConnected() {
		s.client.Unsubscribe(s.cfg.MQTTRefreshTopic).WaitTimeout(2 * time.Second)
	}
	s.client.Disconnect(250)
	s.setConnected(false)
	s.logger.Info("mqtt subscriber disconnected")
}

func (s *Subscriber) setConnected(v bool) {
	s.mu.Lock()
	s.connected = v
	s.mu.Unlock()
}
