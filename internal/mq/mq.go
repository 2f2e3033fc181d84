// Package mq publishes committed point events to a message broker.
package mq

import (
	"context"
	"fmt"
	"strings"

	"club-points-ledger/internal/models"
)

// Message represents a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker operations used by the relay and clubctl.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// NewBackend builds the configured broker. It returns nil, nil when no broker is configured.
func NewBackend(ctx context.Context, cfg models.MQConfig) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "none":
		return nil, nil
	case "rabbitmq":
		client, err := NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "pubsub":
		client, err := NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported mq backend %q", cfg.Backend)
	}
}
