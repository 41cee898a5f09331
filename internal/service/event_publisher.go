// Package service provides the event publisher used by handlers to
// announce catalog mutations.  Publish failures are logged and returned so
// callers can ignore them without interrupting the request.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/siddu-catalog/internal/events"
)

// Publisher announces catalog events.
type Publisher interface {
	Publish(ctx context.Context, ev events.CatalogEvent) error
}

// NopPublisher drops every event.  It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, events.CatalogEvent) error { return nil }

// RabbitPublisher publishes persistent JSON messages to the catalog.events
// queue, dialing the broker per message.
type RabbitPublisher struct {
	URL string
}

// NewRabbitPublisher returns a publisher for the broker at url.
func NewRabbitPublisher(url string) *RabbitPublisher { return &RabbitPublisher{URL: url} }

func (p *RabbitPublisher) Publish(ctx context.Context, ev events.CatalogEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Error().Err(err).Msg("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Error().Err(err).Msg("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(events.QueueName, true, false, false, false, nil); err != nil {
		log.Error().Err(err).Msg("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", events.QueueName, false, false, pub); err != nil {
		log.Error().Err(err).Str("type", ev.Type).Msg("rabbitmq: publish failed")
		return err
	}
	return nil
}

// Emit publishes ev with a bounded timeout and only logs failures.  The
// mutation it describes has already committed.
func Emit(ctx context.Context, p Publisher, ev events.CatalogEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := p.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("type", ev.Type).Msg("catalog event dropped")
	}
}
