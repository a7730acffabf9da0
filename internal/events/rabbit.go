package events

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/vibecommerce/storefront/internal/sequence"
)

const (
	EventsExchange              = "storefront.events"
	CheckoutCompletedRoutingKey = "checkout.completed.v1"
)

// RabbitPublisher publishes checkout events to a durable topic exchange.
type RabbitPublisher struct {
	ch       *amqp.Channel
	seqRepo  sequence.Repository
	producer string
}

func NewRabbitPublisher(conn *amqp.Connection, seqRepo sequence.Repository) (*RabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}

	return &RabbitPublisher{ch: ch, seqRepo: seqRepo, producer: StorefrontProducer}, nil
}

func (p *RabbitPublisher) Close() error {
	return p.ch.Close()
}

func (p *RabbitPublisher) PublishCheckoutCompleted(ctx context.Context, userID string, payload CheckoutCompletedPayload) error {
	seq, err := p.seqRepo.Next(ctx, "events:"+userID)
	if err != nil {
		return fmt.Errorf("event sequence: %w", err)
	}

	ev := BuildCheckoutCompleted(userID, seq, payload, EnvelopeOptions{Producer: p.producer})

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal CheckoutCompleted: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		EventsExchange,
		CheckoutCompletedRoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
			MessageId:   ev.EventID,
			Timestamp:   ev.OccurredAt,
		},
	)
	if err != nil {
		return fmt.Errorf("publish CheckoutCompleted: %w", err)
	}
	return nil
}

// NoopPublisher is wired when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishCheckoutCompleted(context.Context, string, CheckoutCompletedPayload) error {
	return nil
}
