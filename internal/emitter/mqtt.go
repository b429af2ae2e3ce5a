package emitter

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Timeouts for broker operations.
const (
	ConnectTimeout = 5 * time.Second
	PublishTimeout = 2 * time.Second
)

// ErrNotConnected is returned when publishing while the broker is unreachable.
var ErrNotConnected = errors.New("emitter: mqtt not connected")

// MQTTConfig holds the broker settings.
type MQTTConfig struct {
	Broker   string
	ClientID string
	QoS      byte

	// Timeout bounds the initial connect. Zero means ConnectTimeout.
	Timeout time.Duration
}

// MQTTSink publishes events to an MQTT broker.
type MQTTSink struct {
	client mqtt.Client
	qos    byte
	logger *slog.Logger

	mu        sync.RWMutex
	connected bool
}

// Connect dials the broker. The client reconnects on its own after a lost connection.
// A failed initial connect stops the client before returning.
func Connect(cfg MQTTConfig, logger *slog.Logger) (*MQTTSink, error) {
	s := newMQTTSink(cfg, logger)
	if err := s.connect(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

func newMQTTSink(cfg MQTTConfig, logger *slog.Logger) *MQTTSink {
	s := &MQTTSink{qos: cfg.QoS, logger: logger.With("component", "mqtt")}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.OnConnect = func(c mqtt.Client) {
		s.setConnected(true)
		s.logger.Info("mqtt connection established", "broker", cfg.Broker, "client_id", cfg.ClientID)
	}
	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		s.setConnected(false)
		s.logger.Warn("mqtt connection lost, will auto-reconnect", "broker", cfg.Broker, "error", err)
	}

	s.client = mqtt.NewClient(opts)
	return s
}

func (s *MQTTSink) connect(cfg MQTTConfig) error {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = ConnectTimeout
	}

	s.logger.Info("connecting to mqtt broker", "broker", cfg.Broker)
	token := s.client.Connect()
	if !token.WaitTimeout(timeout) {
		// The retrying client keeps dialing until told to stop.
		s.client.Disconnect(0)
		return fmt.Errorf("mqtt connection timeout")
	}
	if err := token.Error(); err != nil {
		s.client.Disconnect(0)
		return fmt.Errorf("mqtt connection failed: %w", err)
	}
	s.setConnected(true)

	return nil
}

func (s *MQTTSink) setConnected(v bool) {
	s.mu.Lock()
	s.connected = v
	s.mu.Unlock()
}

// Send implements Sink.
func (s *MQTTSink) Send(topic string, payload []byte) error {
	s.mu.RLock()
	connected := s.connected
	s.mu.RUnlock()
	if !connected {
		return ErrNotConnected
	}

	token := s.client.Publish(topic, s.qos, false, payload)
	if !token.WaitTimeout(PublishTimeout) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}
	return nil
}

// Close disconnects from the broker.
func (s *MQTTSink) Close() {
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(250)
	}
	s.setConnected(false)
}
