package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/RubachokBoss/kattis-report/internal/models"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const publishTimeout = 5 * time.Second

type RabbitMQClient interface {
	PublishReportGenerated(ctx context.Context, event *models.ReportGeneratedEvent) error
	Close() error
}

// amqpChannel is the part of *amqp091.Channel the client uses.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// topology is one durable direct exchange with a single bound queue.
type topology struct {
	Exchange   string
	RoutingKey string
	Queue      string
}

func (t topology) declare(ch amqpChannel) (string, error) {
	if err := ch.ExchangeDeclare(t.Exchange, amqp091.ExchangeDirect, true, false, false, false, nil); err != nil {
		return "", fmt.Errorf("failed to declare exchange %s: %w", t.Exchange, err)
	}

	queue, err := ch.QueueDeclare(t.Queue, true, false, false, false, nil)
	if err != nil {
		return "", fmt.Errorf("failed to declare queue %s: %w", t.Queue, err)
	}

	if err := ch.QueueBind(queue.Name, t.RoutingKey, t.Exchange, false, nil); err != nil {
		return "", fmt.Errorf("failed to bind queue %s: %w", queue.Name, err)
	}

	return queue.Name, nil
}

type rabbitMQClient struct {
	conn       *amqp091.Connection
	channel    amqpChannel
	exchange   string
	routingKey string
	logger     zerolog.Logger
}

// NewRabbitMQClient dials the broker and declares the report topology.
func NewRabbitMQClient(url, exchange, routingKey, queueName string, logger zerolog.Logger) (RabbitMQClient, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, &TransportError{Op: "RabbitMQ", URL: url, Err: err}
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	client, err := newRabbitMQClient(channel, topology{
		Exchange:   exchange,
		RoutingKey: routingKey,
		Queue:      queueName,
	}, logger)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	client.conn = conn
	return client, nil
}

func newRabbitMQClient(ch amqpChannel, t topology, logger zerolog.Logger) (*rabbitMQClient, error) {
	queue, err := t.declare(ch)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("exchange", t.Exchange).
		Str("queue", queue).
		Str("routing_key", t.RoutingKey).
		Msg("Connected to RabbitMQ")

	return &rabbitMQClient{
		channel:    ch,
		exchange:   t.Exchange,
		routingKey: t.RoutingKey,
		logger:     logger,
	}, nil
}

func (c *rabbitMQClient) PublishReportGenerated(ctx context.Context, event *models.ReportGeneratedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	msg := amqp091.Publishing{
		ContentType:  "application/json",
		MessageId:    event.ID,
		Body:         body,
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Unix(event.Timestamp, 0),
	}
	if err := c.channel.PublishWithContext(ctx, c.exchange, c.routingKey, false, false, msg); err != nil {
		return &TransportError{Op: "Publish", URL: c.exchange, Err: err}
	}

	c.logger.Info().
		Str("event_id", event.ID).
		Str("kind", string(event.Kind)).
		Str("target", event.Target).
		Int("lines", len(event.Lines)).
		Msg("Report generated event published")

	return nil
}

// Close releases the channel and connection. Failures are logged, not returned.
func (c *rabbitMQClient) Close() error {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Failed to close RabbitMQ channel")
		}
	}

	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}

	return nil
}
