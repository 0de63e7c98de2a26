package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"

	"loan-ledger/internal/pkg/config"
	"loan-ledger/internal/pkg/logger"
)

const deliveryTimeout = 10 * time.Second

// ProducerInterface is the part of *kafka.Producer we depend on.
type ProducerInterface interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Flush(timeoutMs int) int
	Close()
}

// KafkaProducer publishes keyed messages to one topic and waits for the delivery report.
type KafkaProducer struct {
	producer ProducerInterface
	topic    string
}

func NewKafkaProducer(cfg config.KafkaConfig) (*KafkaProducer, error) {
	kafkaConfig := producerConfig(cfg)

	producer, err := kafka.NewProducer(kafkaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	logger.Info("Kafka producer created", zap.String("topic", cfg.LoanEventsTopic))

	return NewKafkaProducerWithProducer(producer, cfg.LoanEventsTopic), nil
}

// producerConfig leaves the security keys out unless configured so plaintext
// brokers keep librdkafka's defaults.
func producerConfig(cfg config.KafkaConfig) *kafka.ConfigMap {
	kafkaConfig := kafka.ConfigMap{
		"bootstrap.servers":  cfg.Server,
		"client.id":          cfg.ClientID,
		"session.timeout.ms": cfg.SessionTimeoutMs,
		"acks":               "all",
	}
	if cfg.SecurityProtocol != "" {
		kafkaConfig["security.protocol"] = cfg.SecurityProtocol
	}
	if cfg.SASLMechanism != "" {
		kafkaConfig["sasl.mechanisms"] = cfg.SASLMechanism
		kafkaConfig["sasl.username"] = cfg.SASLUsername
		kafkaConfig["sasl.password"] = cfg.SASLPassword
	}
	return &kafkaConfig
}

func NewKafkaProducerWithProducer(producer ProducerInterface, topic string) *KafkaProducer {
	return &KafkaProducer{producer: producer, topic: topic}
}

func (kp *KafkaProducer) Topic() string {
	return kp.topic
}

// Publish sends value under key. Messages with the same key keep their order.
func (kp *KafkaProducer) Publish(ctx context.Context, key, value []byte) error {
	deliveryChan := make(chan kafka.Event, 1)

	err := kp.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &kp.topic, Partition: kafka.PartitionAny},
		Key:            key,
		Value:          value,
	}, deliveryChan)
	if err != nil {
		return err
	}

	timer := time.NewTimer(deliveryTimeout)
	defer timer.Stop()

	select {
	case ev := <-deliveryChan:
		m, ok := ev.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected event type %T", ev)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("delivery failed: %w", m.TopicPartition.Error)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return errors.New("timeout waiting for Kafka delivery report")
	}
}

// Close flushes and closes the Kafka producer.
func (kp *KafkaProducer) Close() error {
	if remaining := kp.producer.Flush(5000); remaining > 0 {
		logger.Warn("Kafka producer closed with undelivered messages", zap.Int("remaining", remaining))
	}
	kp.producer.Close()
	return nil
}
