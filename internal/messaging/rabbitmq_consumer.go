package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/walletquest/gamification-service/internal/ledger"
)

// Config describes where transaction events are consumed from.
type Config struct {
	URL        string
	Exchange   string
	Queue      string
	RoutingKey string
}

// Recorder stores decoded transactions.
type Recorder interface {
	RecordTransaction(ctx context.Context, input ledger.RecordInput) (*ledger.Transaction, error)
}

// outcome is what the consumer does with a delivery once handled.
type outcome int

const (
	outcomeAck outcome = iota
	outcomeRequeue
	outcomeDiscard
)

// Consumer records bank transaction events delivered over RabbitMQ.
type Consumer struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	config   Config
	recorder Recorder
	logger   *slog.Logger
}

// NewConsumer connects to RabbitMQ and declares the topic exchange, the durable queue and
// its binding.
func NewConsumer(cfg Config, recorder Recorder, logger *slog.Logger) (*Consumer, error) {
	if recorder == nil {
		return nil, fmt.Errorf("recorder is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	queue, err := channel.QueueDeclare(cfg.Queue, true, false, false, false, nil)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := channel.QueueBind(queue.Name, cfg.RoutingKey, cfg.Exchange, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	logger.Info("rabbitmq consumer initialized",
		"exchange", cfg.Exchange,
		"queue", cfg.Queue,
		"routingKey", cfg.RoutingKey,
	)

	return &Consumer{
		conn:     conn,
		channel:  channel,
		config:   cfg,
		recorder: recorder,
		logger:   logger,
	}, nil
}

// Start consumes until ctx is cancelled or the broker closes the delivery channel.
func (c *Consumer) Start(ctx context.Context) error {
	msgs, err := c.channel.Consume(c.config.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("rabbitmq consumer started", "queue", c.config.Queue)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("stopping rabbitmq consumer")
			return nil

		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			var ackErr error
			switch c.handle(ctx, msg.Body) {
			case outcomeAck:
				ackErr = msg.Ack(false)
			case outcomeRequeue:
				ackErr = msg.Nack(false, true)
			case outcomeDiscard:
				ackErr = msg.Nack(false, false)
			}
			if ackErr != nil {
				c.logger.Error("failed to acknowledge delivery", "deliveryTag", msg.DeliveryTag, "error", ackErr)
			}
		}
	}
}

// handle records one delivery body and decides its acknowledgement.
func (c *Consumer) handle(ctx context.Context, body []byte) outcome {
	input, err := DecodeEvent(body)
	if err != nil {
		c.logger.Warn("discarding malformed transaction event", "error", err)
		return outcomeDiscard
	}

	tx, err := c.recorder.RecordTransaction(ctx, input)
	switch {
	case err == nil:
		c.logger.Info("recorded transaction event", "userId", tx.UserID, "transactionId", tx.ID, "type", tx.Type)
		return outcomeAck
	case errors.Is(err, ledger.ErrConflict):
		c.logger.Info("duplicate transaction event", "userId", input.UserID, "transactionId", input.ID)
		return outcomeAck
	case errors.Is(err, ledger.ErrInvalidInput), errors.Is(err, ledger.ErrMissingUserID):
		c.logger.Warn("discarding invalid transaction event", "userId", input.UserID, "transactionId", input.ID, "error", err)
		return outcomeDiscard
	default:
		c.logger.Error("failed to record transaction event", "userId", input.UserID, "transactionId", input.ID, "error", err)
		return outcomeRequeue
	}
}

// Close closes the channel and connection.
func (c *Consumer) Close() error {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Warn("error closing channel", "error", err)
		}
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
