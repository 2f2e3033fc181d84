package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"club-points-ledger/internal/models"
)

const (
	AttrEventKey = "event_key"
	AttrUserId   = "user_id"
	AttrDelta    = "delta"
)

// PointEventMessage is the JSON body published for each point event
type PointEventMessage struct {
	Key          string    `json:"key"`
	TargetUserId string    `json:"targetUserId"`
	Delta        int64     `json:"delta"`
	Applied      int64     `json:"applied"`
	PointsBefore int64     `json:"pointsBefore"`
	PointsAfter  int64     `json:"pointsAfter"`
	CreatedAt    time.Time `json:"createdAt"`
}

// EventPublisher delivers point events to a broker channel
type EventPublisher struct {
	backend Backend
	channel string
}

func NewEventPublisher(backend Backend, channel string) (*EventPublisher, error) {
	if backend == nil {
		return nil, errors.New("mq backend is required")
	}
	if strings.TrimSpace(channel) == "" {
		return nil, errors.New("mq channel is required")
	}
	return &EventPublisher{backend: backend, channel: channel}, nil
}

func (p *EventPublisher) Name() string {
	return "mq:" + p.channel
}

// Deliver publishes one event. Consumers dedupe on the event_key attribute.
func (p *EventPublisher) Deliver(ctx context.Context, event models.PointEvent) error {
	body, err := json.Marshal(NewPointEventMessage(event))
	if err != nil {
		return fmt.Errorf("failed to encode point event: %w", err)
	}
	attrs := map[string]string{
		AttrEventKey: event.Key,
		AttrUserId:   event.TargetUserId,
		AttrDelta:    strconv.FormatInt(event.Delta, 10),
	}
	if _, err := p.backend.Publish(ctx, p.channel, body, attrs); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Key, err)
	}
	return nil
}

func NewPointEventMessage(event models.PointEvent) PointEventMessage {
	return PointEventMessage{
		Key:          event.Key,
		TargetUserId: event.TargetUserId,
		Delta:        event.Delta,
		Applied:      event.Applied(),
		PointsBefore: event.PointsBefore,
		PointsAfter:  event.PointsAfter,
		CreatedAt:    event.CreatedAt,
	}
}

// DecodePointEvent parses a message published by EventPublisher.
func DecodePointEvent(msg Message) (PointEventMessage, error) {
	var event PointEventMessage
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		return PointEventMessage{}, fmt.Errorf("failed to decode point event: %w", err)
	}
	if event.Key == "" {
		event.Key = msg.Attributes[AttrEventKey]
	}
	return event, nil
}
