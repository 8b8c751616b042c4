package rabbitmq

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Default queue names.
const (
	DefaultEventsQueue  = "catalog_events"
	DefaultRebuildQueue = "catalog_rebuild"
)

// ErrChannelUnavailable is returned when the client has no open channel.
var ErrChannelUnavailable = errors.New("RabbitMQ channel is not available")

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn         *amqp.Connection
	channel      *amqp.Channel
	eventsQueue  string
	rebuildQueue string
	logger       *zap.Logger
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL          string
	EventsQueue  string // catalog.synced events are published here
	RebuildQueue string // rebuild requests are consumed from here
}

func (c Config) withDefaults() Config {
	if c.EventsQueue == "" {
		c.EventsQueue = DefaultEventsQueue
	}
	if c.RebuildQueue == "" {
		c.RebuildQueue = DefaultRebuildQueue
	}
	return c
}

// NewClient connects to RabbitMQ, opens a channel and declares both queues.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	for _, queue := range []string{cfg.EventsQueue, cfg.RebuildQueue} {
		if _, err := declare(ch, queue); err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to declare %s: %w", queue, err)
		}
	}

	logger.Info("RabbitMQ client connected",
		zap.String("events_queue", cfg.EventsQueue),
		zap.String("rebuild_queue", cfg.RebuildQueue),
	)

	return &Client{
		conn:         conn,
		channel:      ch,
		eventsQueue:  cfg.EventsQueue,
		rebuildQueue: cfg.RebuildQueue,
		logger:       logger,
	}, nil
}

// declare makes a durable, non-exclusive queue.
func declare(ch *amqp.Channel, name string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		name,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// PublishCatalogSynced publishes a snapshot build result, marshaled to JSON,
// to the events queue.
func (c *Client) PublishCatalogSynced(event interface{}) error {
	return c.publish(c.eventsQueue, "catalog.synced", event)
}

func (c *Client) publish(queue, eventType string, payload interface{}) error {
	if c.channel == nil {
		return ErrChannelUnavailable
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}

	err = c.channel.Publish(
		"",    // default exchange
		queue, // routing key: the queue name
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         eventType,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	c.logger.Debug("Published event", zap.String("type", eventType), zap.String("queue", queue))
	return nil
}

// ConsumeRebuildRequests delivers every message of the rebuild queue to
// handler in a background goroutine. Messages are acked when handler returns
// nil and rejected without requeue otherwise, so a poison message cannot loop.
func (c *Client) ConsumeRebuildRequests(handler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return ErrChannelUnavailable
	}

	msgs, err := c.channel.Consume(
		c.rebuildQueue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("Waiting for rebuild requests", zap.String("queue", c.rebuildQueue))

	go func() {
		for msg := range msgs {
			Dispatch(msg, handler, c.logger)
		}
		c.logger.Info("Rebuild request consumer stopped")
	}()

	return nil
}

// Acknowledger is the part of amqp.Delivery used to settle a message.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// Dispatch runs handler for one delivery and settles it.
func Dispatch(msg amqp.Delivery, handler func(msg amqp.Delivery) error, logger *zap.Logger) {
	settle(msg, msg.DeliveryTag, handler(msg), logger)
}

func settle(ack Acknowledger, tag uint64, handlerErr error, logger *zap.Logger) {
	if handlerErr != nil {
		logger.Warn("Error processing message", zap.Uint64("delivery_tag", tag), zap.Error(handlerErr))
		if err := ack.Nack(false, false); err != nil {
			logger.Error("Error nacking message", zap.Uint64("delivery_tag", tag), zap.Error(err))
		}
		return
	}
	if err := ack.Ack(false); err != nil {
		logger.Error("Error acking message", zap.Uint64("delivery_tag", tag), zap.Error(err))
	}
}
