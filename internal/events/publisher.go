package events

import (
	"context"
	"fmt"

	"deltaoption/internal/adapters/kafka"
)

// Publisher is the outbound event port for the ledger and price feed
type Publisher interface {
	PublishOption(ctx context.Context, event *OptionEvent) error
	PublishTick(ctx context.Context, event *PriceTickEvent) error
}

// KafkaPublisher implements Publisher on top of the Kafka producer
type KafkaPublisher struct {
	producer *kafka.Producer
}

// Compile-time check
var _ Publisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a new Kafka-backed publisher
func NewKafkaPublisher(producer *kafka.Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

// PublishOption sends a lifecycle event keyed by the ledger key
func (p *KafkaPublisher) PublishOption(ctx context.Context, event *OptionEvent) error {
	key := fmt.Sprintf("%s:%d", event.Symbol, event.OptionID)
	return p.producer.Publish(ctx, kafka.TopicOptionLifecycle, key, event)
}

// PublishTick sends a price tick event keyed by symbol
func (p *KafkaPublisher) PublishTick(ctx context.Context, event *PriceTickEvent) error {
	return p.producer.Publish(ctx, kafka.TopicPriceTicks, event.Symbol, event)
}

// NoopPublisher discards events; used when Kafka is not configured
type NoopPublisher struct{}

var _ Publisher = (*NoopPublisher)(nil)

func (NoopPublisher) PublishOption(ctx context.Context, event *OptionEvent) error { return nil }
func (NoopPublisher) PublishTick(ctx context.Context, event *PriceTickEvent) error { return nil }
