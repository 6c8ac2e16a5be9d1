package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"revenue-ledger/internal/domain"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	log "github.com/sirupsen/logrus"
)

// KafkaPublisher emits ledger events (transaction_recorded,
// audit_completed) to a single topic, keyed by entity id so events for one
// transaction stay ordered within a partition.
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaPublisher(bootstrapServers, topic string) (*KafkaPublisher, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{"bootstrap.servers": bootstrapServers})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.WithField("topic", topic).Info("Ledger event Kafka producer created")

	return &KafkaPublisher{producer: p, topic: topic}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger event: %w", err)
	}

	deliveryChan := make(chan kafka.Event, 1)
	defer close(deliveryChan)

	if err := p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.EntityID),
		Value:          payload,
		Opaque:         deliveryChan,
	}, nil); err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}

	select {
	case e := <-deliveryChan:
		msg, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected event type: %T", e)
		}
		if msg.TopicPartition.Error != nil {
			return fmt.Errorf("delivery failed: %w", msg.TopicPartition.Error)
		}
		return nil
	case <-time.After(10 * time.Second):
		return fmt.Errorf("delivery timeout")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *KafkaPublisher) Close() {
	log.Info("Closing ledger event Kafka producer...")
	p.producer.Flush(15 * 1000)
	p.producer.Close()
}
