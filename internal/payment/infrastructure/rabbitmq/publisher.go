package rabbitmq

import (
	"context"
	"encoding/json"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/2024mt03579/ums-payment-service/internal/payment/domain"
	"github.com/2024mt03579/ums-payment-service/pkg/tracing"
)

// Publisher publishes one event per connection against the topic exchange.
// Publish is fire-and-forget: every failure is logged and swallowed, so
// callers must not assume delivery.
type Publisher struct {
	log  *slog.Logger
	url  string
	dial DialFunc
}

func NewPublisher(log *slog.Logger, url string) *Publisher {
	return &Publisher{log: log, url: url, dial: Dial}
}

func (p *Publisher) Publish(ctx context.Context, routingKey string, event domain.Envelope) {
	body, err := json.Marshal(event)
	if err != nil {
		p.log.Error("event marshal failed", "routing_key", routingKey, "err", err)
		return
	}

	conn, err := p.dial(p.url)
	if err != nil {
		p.log.Error("publish dial failed", "routing_key", routingKey, "err", err)
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Error("publish channel failed", "routing_key", routingKey, "err", err)
		return
	}
	defer ch.Close()

	if err := declareExchange(ch); err != nil {
		p.log.Error("exchange declare failed", "routing_key", routingKey, "err", err)
		return
	}

	err = ch.PublishWithContext(ctx, Exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Headers:     tracing.InjectAMQPHeaders(ctx, nil),
		Body:        body,
	})
	if err != nil {
		p.log.Error("event publish failed", "routing_key", routingKey, "type", event.Type, "err", err)
		return
	}
	p.log.Info("event published", "routing_key", routingKey, "type", event.Type)
}
