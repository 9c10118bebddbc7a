// Package service holds the outbound integrations of the ingestion job.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/config"
	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/db/models"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const confirmTimeout = 5 * time.Second

// VideoIngestedEvent is the message body published for every committed video.
type VideoIngestedEvent struct {
	EventID    uuid.UUID     `json:"eventId"`
	RunID      uuid.UUID     `json:"runId"`
	Video      *models.Video `json:"video"`
	OccurredAt time.Time     `json:"occurredAt"`
}

// VideoPublisher announces committed videos on a topic exchange with publisher confirms.
type VideoPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	confirms chan amqp.Confirmation
	config   *config.RabbitMQConfig
	logger   *zap.Logger
	mu       sync.Mutex
}

// NewVideoPublisher connects to the broker and declares the exchange, queue and binding.
func NewVideoPublisher(cfg *config.RabbitMQConfig, logger *zap.Logger) (*VideoPublisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	vp := &VideoPublisher{
		config: cfg,
		logger: logger,
	}

	if err := vp.connect(); err != nil {
		return nil, err
	}

	return vp, nil
}

func (vp *VideoPublisher) connect() error {
	vp.mu.Lock()
	defer vp.mu.Unlock()

	conn, err := amqp.Dial(vp.config.AMQPURL())
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	// Enable publisher confirms
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	if err := ch.ExchangeDeclare(
		vp.config.Exchange, // name
		"topic",            // type
		true,               // durable
		false,              // auto-deleted
		false,              // internal
		false,              // no-wait
		nil,                // arguments
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = ch.QueueDeclare(
		vp.config.Queue, // name
		true,            // durable
		false,           // delete when unused
		false,           // exclusive
		false,           // no-wait
		amqp.Table{
			"x-message-ttl": 7 * 86400000, // 7 days
			"x-max-length":  50000,
		},
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(
		vp.config.Queue,      // queue name
		vp.config.RoutingKey, // routing key
		vp.config.Exchange,   // exchange
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	vp.conn = conn
	vp.channel = ch
	vp.confirms = ch.NotifyPublish(make(chan amqp.Confirmation, 1))

	vp.logger.Info("Connected to RabbitMQ",
		zap.String("exchange", vp.config.Exchange),
		zap.String("queue", vp.config.Queue),
	)

	return nil
}

// PublishVideos publishes one event per video and waits for each broker ack.
// It stops at the first failure.
func (vp *VideoPublisher) PublishVideos(ctx context.Context, runID uuid.UUID, videos []*models.Video) error {
	vp.mu.Lock()
	defer vp.mu.Unlock()

	if vp.channel == nil {
		return fmt.Errorf("channel is not initialized")
	}

	for _, video := range videos {
		if err := vp.publish(ctx, runID, video); err != nil {
			return fmt.Errorf("publish video %s: %w", video.VideoID, err)
		}
	}

	vp.logger.Debug("Published ingested videos",
		zap.String("run_id", runID.String()),
		zap.Int("count", len(videos)),
		zap.String("routing_key", vp.config.RoutingKey),
	)

	return nil
}

func (vp *VideoPublisher) publish(ctx context.Context, runID uuid.UUID, video *models.Video) error {
	event := VideoIngestedEvent{
		EventID:    uuid.New(),
		RunID:      runID,
		Video:      video,
		OccurredAt: time.Now().UTC(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = vp.channel.PublishWithContext(
		ctx,
		vp.config.Exchange,   // exchange
		vp.config.RoutingKey, // routing key
		false,                // mandatory
		false,                // immediate
		amqp.Publishing{
			ContentType:   "application/json",
			Body:          body,
			DeliveryMode:  amqp.Persistent,
			Timestamp:     event.OccurredAt,
			MessageId:     event.EventID.String(),
			CorrelationId: runID.String(),
			Type:          "video.ingested",
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	select {
	case confirm, ok := <-vp.confirms:
		if !ok {
			return fmt.Errorf("channel closed before publish confirmation")
		}
		if !confirm.Ack {
			return fmt.Errorf("message was not acknowledged by broker")
		}
	case <-time.After(confirmTimeout):
		return fmt.Errorf("timeout waiting for publish confirmation")
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

// Close closes the channel and the connection.
func (vp *VideoPublisher) Close() error {
	vp.mu.Lock()
	defer vp.mu.Unlock()

	var errs []error
	if vp.channel != nil && !vp.channel.IsClosed() {
		if err := vp.channel.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if vp.conn != nil && !vp.conn.IsClosed() {
		if err := vp.conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing publisher: %v", errs)
	}

	vp.logger.Info("RabbitMQ publisher closed")
	return nil
}

// IsHealthy reports whether the broker connection is open.
func (vp *VideoPublisher) IsHealthy() bool {
	vp.mu.Lock()
	defer vp.mu.Unlock()

	return vp.conn != nil && !vp.conn.IsClosed() && vp.channel != nil && !vp.channel.IsClosed()
}
