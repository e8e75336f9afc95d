package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// EventTypeStatusChange marks events originating from the monitor loop.
const EventTypeStatusChange = "status_change"

// Subscriber consumes monitor status-change events from Redis and forwards
// each one into the hub on the patient's topic.
type Subscriber struct {
	redis   *redis.Client
	hub     *Hub
	channel string
	logger  zerolog.Logger
}

// NewSubscriber wires a Redis channel to a hub.
func NewSubscriber(rdb *redis.Client, hub *Hub, channel string, logger zerolog.Logger) *Subscriber {
	return &Subscriber{
		redis:   rdb,
		hub:     hub,
		channel: channel,
		logger:  logger,
	}
}

// Start consumes the status channel until ctx is cancelled.
func (s *Subscriber) Start(ctx context.Context) {
	sub := s.redis.Subscribe(ctx, s.channel)
	defer sub.Close()
	ch := sub.Channel()

	s.logger.Info().Str("channel", s.channel).Msg("status subscriber started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("status subscriber stopped")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			s.forward([]byte(msg.Payload))
		}
	}
}

// forward extracts the patient ID from a status-change payload and
// broadcasts the event on that patient's topic.
func (s *Subscriber) forward(payload []byte) {
	var envelope struct {
		PatientID uuid.UUID `json:"patient_id"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil || envelope.PatientID == uuid.Nil {
		s.logger.Warn().Err(err).Msg("dropping malformed status event")
		return
	}

	topic := PatientTopic(envelope.PatientID)
	s.hub.Broadcast(topic, Event{
		Type:      EventTypeStatusChange,
		Topic:     topic,
		Timestamp: time.Now().UTC(),
		Data:      json.RawMessage(payload),
	})
}
