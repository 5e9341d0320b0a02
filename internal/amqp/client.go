package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker"
)

const publishTimeout = 5 * time.Second

// channel is the part of *amqp091.Channel the client uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp091.Table) (<-chan amqp091.Delivery, error)
	Close() error
}

type Client struct {
	conn         *amqp091.Connection
	channel      channel
	exchangeName string
	queueName    string
	breaker      *gobreaker.CircuitBreaker
	onPublish    func(result string)
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareTopology(ch, exchangeName, queueName); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	client := newClient(ch, exchangeName, queueName)
	client.conn = conn
	return client, nil
}

func newClient(ch channel, exchangeName, queueName string) *Client {
	return &Client{
		channel:      ch,
		exchangeName: exchangeName,
		queueName:    queueName,
		breaker:      newPublishBreaker("amqp-publish"),
	}
}

// newPublishBreaker opens after at least 5 publishes in a 30s window with 60% failing,
// then tries again after 10s.
func newPublishBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

func declareTopology(ch *amqp091.Channel, exchangeName, queueName string) error {
	err := ch.ExchangeDeclare(
		exchangeName, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Routing key is the queue name on a direct exchange.
	if err := ch.QueueBind(queueName, queueName, exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// PublishInvoiceEvent sends ev as a persistent JSON message. Publishing
// fails fast with gobreaker.ErrOpenState while the broker is considered down.
func (c *Client) PublishInvoiceEvent(ctx context.Context, ev *InvoiceEvent) error {
	if c.channel == nil {
		return errors.New("amqp channel not open")
	}
	body, err := ev.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	_, err = c.breaker.Execute(func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()
		return nil, c.channel.PublishWithContext(
			ctx,
			c.exchangeName, // exchange
			c.queueName,    // routing key
			false,          // mandatory
			false,          // immediate
			amqp091.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp091.Persistent,
				Timestamp:    ev.Timestamp,
				Type:         string(ev.Type),
				Body:         body,
			},
		)
	})
	c.report(err)
	if err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}

	slog.InfoContext(ctx, "Published invoice event",
		"type", ev.Type,
		"invoice_id", ev.InvoiceID,
		"exchange", c.exchangeName,
		"queue", c.queueName)
	return nil
}

// OnPublish registers a callback told "ok" or "failed" after every publish attempt.
func (c *Client) OnPublish(fn func(result string)) {
	c.onPublish = fn
}

func (c *Client) report(err error) {
	if c.onPublish == nil {
		return
	}
	if err != nil {
		c.onPublish("failed")
		return
	}
	c.onPublish("ok")
}

// BreakerState reports the publish circuit state.
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

// ConsumeInvoiceEvents delivers events to handler until ctx is done.
// Undecodable messages are dropped; handler failures are requeued.
func (c *Client) ConsumeInvoiceEvents(ctx context.Context, handler func(context.Context, *InvoiceEvent) error) error {
	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming invoice events", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed")
			}

			ev, err := InvoiceEventFromJSON(delivery.Body)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to unmarshal message", "error", err)
				delivery.Nack(false, false)
				continue
			}

			if err := handler(ctx, ev); err != nil {
				slog.ErrorContext(ctx, "Failed to handle invoice event",
					"error", err,
					"type", ev.Type,
					"invoice_id", ev.InvoiceID)
				delivery.Nack(false, true)
				continue
			}

			delivery.Ack(false)
		}
	}
}

func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}
