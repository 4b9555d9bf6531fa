package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/2024mt03579/ums-payment-service/internal/payment/domain"
	"github.com/2024mt03579/ums-payment-service/pkg/tracing"
)

// Processor handles one decoded inbound event. A returned error drops the
// message permanently (nack without requeue).
type Processor interface {
	Handle(ctx context.Context, env domain.Envelope) error
}

// Consumer owns the bus side of inbound event handling: connect, declare,
// bind, consume with prefetch 1, ack/nack, and reconnect with a fixed
// backoff on any connection-level error. The loop only exits when the
// context is cancelled.
type Consumer struct {
	log       *slog.Logger
	url       string
	queueName string
	processor Processor
	dial      DialFunc
	backoff   time.Duration
	tracer    trace.Tracer
	started   atomic.Bool
}

// NewConsumer builds a consumer bound to the enrollment event stream. An
// empty queueName requests an anonymous exclusive queue.
func NewConsumer(log *slog.Logger, url, queueName string, processor Processor) *Consumer {
	return &Consumer{
		log:       log,
		url:       url,
		queueName: queueName,
		processor: processor,
		dial:      Dial,
		backoff:   3 * time.Second,
		tracer:    otel.Tracer("payment-consumer"),
	}
}

// Start launches the run loop in its own goroutine. Only the first call has
// any effect; the process runs exactly one consumer loop.
func (c *Consumer) Start(ctx context.Context) {
	if !c.started.CompareAndSwap(false, true) {
		c.log.Warn("consumer already started, ignoring")
		return
	}
	go c.run(ctx)
}

func (c *Consumer) run(ctx context.Context) {
	for {
		err := c.consume(ctx)
		if ctx.Err() != nil {
			c.log.Info("consumer stopped")
			return
		}
		if err != nil {
			c.log.Error("consumer connection error", "err", err)
		}

		c.log.Info("consumer reconnecting after backoff", "backoff", c.backoff)
		select {
		case <-ctx.Done():
			c.log.Info("consumer stopped")
			return
		case <-time.After(c.backoff):
		}
	}
}

// consume runs one connection's lifetime: CONNECTING, BOUND, CONSUMING.
// Returning an error sends the run loop into backoff.
func (c *Consumer) consume(ctx context.Context) error {
	conn, err := c.dial(c.url)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := declareExchange(ch); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	var q amqp.Queue
	if c.queueName != "" {
		q, err = ch.QueueDeclare(c.queueName, true, false, false, false, nil)
	} else {
		q, err = ch.QueueDeclare("", false, false, true, false, nil)
	}
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, domain.EnrollmentEventsPattern, Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	// One unacknowledged message at a time keeps inbound handling sequential.
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	deliveries, err := ch.Consume(q.Name, "payment-consumer-"+uuid.NewString(), false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consume: %w", err)
	}
	c.log.Info("consumer bound", "queue", q.Name, "exchange", Exchange, "pattern", domain.EnrollmentEventsPattern)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.dispatch(ctx, msg)
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, msg amqp.Delivery) {
	msgCtx := tracing.ExtractAMQPHeaders(ctx, msg.Headers)
	msgCtx, span := c.tracer.Start(msgCtx, "ConsumeEnrollmentEvent")
	defer span.End()

	var env domain.Envelope
	if err := json.Unmarshal(msg.Body, &env); err != nil {
		c.log.Error("malformed event dropped", "err", err)
		c.nack(msg)
		return
	}

	if err := c.processor.Handle(msgCtx, env); err != nil {
		c.log.Error("event processing failed, dropping message", "type", env.Type, "err", err)
		c.nack(msg)
		return
	}

	if err := msg.Ack(false); err != nil {
		c.log.Error("ack failed", "type", env.Type, "err", err)
	}
}

func (c *Consumer) nack(msg amqp.Delivery) {
	if err := msg.Nack(false, false); err != nil {
		c.log.Error("nack failed", "err", err)
	}
}
