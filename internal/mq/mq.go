package mq

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mobilecollector/backoffice/config"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
)

// Message represents a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker-agnostic operations used by the app.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// MQ wraps a backend with a circuit breaker on the publish path, so that a
// broker outage fails publishes fast instead of stalling requests.
type MQ struct {
	backend Backend
	breaker *gobreaker.CircuitBreaker[string]
}

// New constructs an MQ wrapper for the provided backend.
func New(name string, backend Backend) *MQ {
	return &MQ{backend: backend, breaker: newBreaker(name)}
}

func newBreaker(name string) *gobreaker.CircuitBreaker[string] {
	var st gobreaker.Settings
	st.Name = name
	st.Timeout = 30 * time.Second
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
		return counts.Requests >= 3 && failureRatio >= 0.6
	}
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("mq circuit breaker state changed")
	}
	return gobreaker.NewCircuitBreaker[string](st)
}

// Open connects to the backend selected by cfg.Backend. It returns a nil
// MQ when messaging is disabled.
func Open(ctx context.Context, cfg config.MQConfig) (*MQ, error) {
	var (
		backend Backend
		err     error
	)
	name := strings.ToLower(strings.TrimSpace(cfg.Backend))
	switch name {
	case "", "none":
		return nil, nil
	case "rabbitmq":
		backend, err = NewRabbitMQClient(cfg.RabbitMQ)
	case "pubsub":
		backend, err = NewPubSubClient(ctx, cfg.PubSub)
	case "kafka":
		backend, err = NewKafkaClient(cfg.Kafka)
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", name, err)
	}
	return New(name, backend), nil
}

// Publish sends a message to the named channel.
func (m *MQ) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	return m.breaker.Execute(func() (string, error) {
		return m.backend.Publish(ctx, channel, data, attrs)
	})
}

// Subscribe consumes messages from the named channel until ctx is done.
func (m *MQ) Subscribe(ctx context.Context, channel string, handler Handler) error {
	return m.backend.Subscribe(ctx, channel, handler)
}

// Close closes the underlying backend.
func (m *MQ) Close() error {
	return m.backend.Close()
}
