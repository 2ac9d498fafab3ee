package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"railbooker/pkg/logger"
)

// Publisher interface defines the contract for publishing booking events
type Publisher interface {
	Publish(ctx context.Context, event *BookingEvent) error
	Close() error
}

// KafkaConfig contains configuration for the Kafka booking-event producer
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	RetryMax     int
	Timeout      time.Duration
	RequiredAcks sarama.RequiredAcks
}

// DefaultKafkaConfig returns a default producer configuration
func DefaultKafkaConfig(brokers []string, topic string) *KafkaConfig {
	return &KafkaConfig{
		Brokers:      brokers,
		Topic:        topic,
		RetryMax:     3,
		Timeout:      10 * time.Second,
		RequiredAcks: sarama.WaitForAll,
	}
}

// kafkaPublisher publishes booking events through a sarama SyncProducer
type kafkaPublisher struct {
	producer sarama.SyncProducer
	config   *KafkaConfig
	log      *logger.Logger
}

// NewKafkaPublisher creates a Kafka booking-event publisher
func NewKafkaPublisher(config *KafkaConfig, log *logger.Logger) (Publisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = config.Timeout
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &kafkaPublisher{
		producer: producer,
		config:   config,
		log:      log,
	}, nil
}

// Publish sends one booking event
func (p *kafkaPublisher) Publish(ctx context.Context, event *BookingEvent) error {
	messageBytes, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal booking event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.config.Topic,
		Key:   sarama.StringEncoder(event.PartitionKey()),
		Value: sarama.ByteEncoder(messageBytes),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_id"), Value: []byte(event.ID.String())},
			{Key: []byte("event_type"), Value: []byte(event.Type)},
			{Key: []byte("created_at"), Value: []byte(event.CreatedAt.Format(time.RFC3339))},
		},
		Timestamp: event.CreatedAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send booking event to Kafka: %w", err)
	}

	p.log.WithFields(map[string]interface{}{
		"topic":     p.config.Topic,
		"partition": partition,
		"offset":    offset,
		"type":      string(event.Type),
	}).Debug("booking event published")

	return nil
}

// Close closes the underlying producer
func (p *kafkaPublisher) Close() error {
	if p.producer != nil {
		if err := p.producer.Close(); err != nil {
			return fmt.Errorf("failed to close Kafka producer: %w", err)
		}
	}
	return nil
}

// NopPublisher discards events, used when Kafka is disabled
type NopPublisher struct{}

// Publish discards the event
func (NopPublisher) Publish(ctx context.Context, event *BookingEvent) error { return nil }

// Close is a no-op
func (NopPublisher) Close() error { return nil }
