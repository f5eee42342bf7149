package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/algopool-labs/staking-pool-engine/internal/config"
	"github.com/algopool-labs/staking-pool-engine/internal/observability/metrics"
)

type EventType string

const (
	EventPoolDeployed    EventType = "staking.pool.deployed"
	EventPoolInitialized EventType = "staking.pool.initialized"
	EventRewardsFunded   EventType = "staking.pool.rewards_funded"
	EventDeposited       EventType = "staking.pool.deposited"
	EventWithdrawn       EventType = "staking.pool.withdrawn"
	EventPoolConfigured  EventType = "staking.pool.configured"
)

// PoolEvent is emitted after an entry point's state commit succeeds.
type PoolEvent struct {
	EventType EventType `json:"event_type"`
	PoolID    string    `json:"pool_id"`
	Address   string    `json:"address,omitempty"`
	AssetID   uint64    `json:"asset_id,omitempty"`
	Amount    uint64    `json:"amount,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

//go:generate mockery --name=EventPublisher --output=../../tests/mocks --outpkg=mocks --filename=mock_event_publisher.go
type EventPublisher interface {
	PushPoolEvent(ctx context.Context, event *PoolEvent) error
	Shutdown()
}

type QueueManager struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewQueueManager(cfg *config.QueueConfig) (*QueueManager, error) {
	conn, err := amqp.Dial(cfg.Url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}

	if err := channel.ExchangeDeclare(
		cfg.Exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	return &QueueManager{
		conn:     conn,
		channel:  channel,
		exchange: cfg.Exchange,
	}, nil
}

func (qm *QueueManager) PushPoolEvent(ctx context.Context, event *PoolEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal pool event: %w", err)
	}

	err = qm.channel.PublishWithContext(
		ctx,
		qm.exchange,
		string(event.EventType), // routing key
		false,                   // mandatory
		false,                   // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		metrics.RecordQueuePublishError()
		return fmt.Errorf("failed to publish pool event: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the interaction with the queue, ensuring all
// resources are properly released.
func (qm *QueueManager) Shutdown() {
	log.Info().Msg("Shutting down queue manager")
	if err := qm.channel.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close rabbitmq channel")
	}
	if err := qm.conn.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close rabbitmq connection")
	}
}

// NoopPublisher drops events; used when no queue is configured.
type NoopPublisher struct{}

func (NoopPublisher) PushPoolEvent(_ context.Context, _ *PoolEvent) error {
	return nil
}

func (NoopPublisher) Shutdown() {}
