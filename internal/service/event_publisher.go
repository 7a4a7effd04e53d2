package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/prestiqx/ticket-ledger/internal/domain"
	"github.com/prestiqx/ticket-ledger/pkg/kafka"
	"github.com/prestiqx/ticket-ledger/pkg/retry"
)

// LedgerPublisher defines the interface for publishing ledger events
type LedgerPublisher interface {
	// PublishEventCreated announces a new draft event
	PublishEventCreated(ctx context.Context, eventID int64) error

	// PublishEventPublished announces a publish transition
	PublishEventPublished(ctx context.Context, eventID int64) error

	// PublishEventEnded announces an end transition
	PublishEventEnded(ctx context.Context, eventID int64) error

	// PublishPurchaseCompleted announces a completed ticket sale
	PublishPurchaseCompleted(ctx context.Context, ticket *domain.Ticket) error

	// Close closes the publisher
	Close() error
}

// KafkaLedgerPublisher implements LedgerPublisher using Kafka
type KafkaLedgerPublisher struct {
	producer    *kafka.Producer
	topic       string
	serviceName string
	retryCfg    *retry.Config
}

// LedgerPublisherConfig contains configuration for the publisher
type LedgerPublisherConfig struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
}

// NewKafkaLedgerPublisher creates a new Kafka ledger publisher
func NewKafkaLedgerPublisher(ctx context.Context, cfg *LedgerPublisherConfig) (*KafkaLedgerPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("ledger publisher config is required")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "ticket-events"
	}
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "ticket-ledger"
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "ticket-ledger-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
		BatchSize:     100,
		LingerMs:      10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaLedgerPublisher{
		producer:    producer,
		topic:       topic,
		serviceName: serviceName,
		retryCfg: &retry.Config{
			MaxRetries:      2,
			InitialInterval: 200 * time.Millisecond,
			MaxInterval:     2 * time.Second,
			Multiplier:      2.0,
			JitterFactor:    0.1,
		},
	}, nil
}

// PublishEventCreated announces a new draft event
func (p *KafkaLedgerPublisher) PublishEventCreated(ctx context.Context, eventID int64) error {
	return p.publish(ctx, domain.NewCatalogEvent(domain.LedgerEventEventCreated, eventID, uuid.New().String()))
}

// PublishEventPublished announces a publish transition
func (p *KafkaLedgerPublisher) PublishEventPublished(ctx context.Context, eventID int64) error {
	return p.publish(ctx, domain.NewCatalogEvent(domain.LedgerEventEventPublished, eventID, uuid.New().String()))
}

// PublishEventEnded announces an end transition
func (p *KafkaLedgerPublisher) PublishEventEnded(ctx context.Context, eventID int64) error {
	return p.publish(ctx, domain.NewCatalogEvent(domain.LedgerEventEventEnded, eventID, uuid.New().String()))
}

// PublishPurchaseCompleted announces a completed ticket sale
func (p *KafkaLedgerPublisher) PublishPurchaseCompleted(ctx context.Context, ticket *domain.Ticket) error {
	return p.publish(ctx, domain.NewPurchaseEvent(ticket, uuid.New().String()))
}

// Close closes the publisher
func (p *KafkaLedgerPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

func (p *KafkaLedgerPublisher) publish(ctx context.Context, event *domain.LedgerEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	headers := map[string]string{
		"event_type":   string(event.Type),
		"event_id":     event.EventID,
		"source":       p.serviceName,
		"content_type": "application/json",
	}

	msg := &kafka.Message{
		Topic:     p.topic,
		Key:       []byte(event.Key()),
		Value:     value,
		Headers:   headers,
		Timestamp: event.Timestamp,
	}

	err = retry.Do(ctx, p.retryCfg, func(ctx context.Context) error {
		return p.producer.Produce(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}

	return nil
}

// NoOpLedgerPublisher is a no-op implementation of LedgerPublisher
// for testing and single-node deployments without Kafka
type NoOpLedgerPublisher struct{}

// NewNoOpLedgerPublisher creates a new no-op publisher
func NewNoOpLedgerPublisher() *NoOpLedgerPublisher {
	return &NoOpLedgerPublisher{}
}

// PublishEventCreated is a no-op
func (p *NoOpLedgerPublisher) PublishEventCreated(ctx context.Context, eventID int64) error {
	return nil
}

// PublishEventPublished is a no-op
func (p *NoOpLedgerPublisher) PublishEventPublished(ctx context.Context, eventID int64) error {
	return nil
}

// PublishEventEnded is a no-op
func (p *NoOpLedgerPublisher) PublishEventEnded(ctx context.Context, eventID int64) error {
	return nil
}

// PublishPurchaseCompleted is a no-op
func (p *NoOpLedgerPublisher) PublishPurchaseCompleted(ctx context.Context, ticket *domain.Ticket) error {
	return nil
}

// Close is a no-op
func (p *NoOpLedgerPublisher) Close() error {
	return nil
}

var (
	_ LedgerPublisher = (*KafkaLedgerPublisher)(nil)
	_ LedgerPublisher = (*NoOpLedgerPublisher)(nil)
)
