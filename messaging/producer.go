package messaging

import (
	"fmt"

	"github.com/IBM/sarama"
)

// NewSyncProducer creates a Kafka producer configured for the outbox
// publisher: full-ISR acks and idempotence, since every outbox row must reach
// the broker exactly once from this producer's point of view.
func NewSyncProducer(brokers []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1
	config.Producer.Compression = sarama.CompressionSnappy

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return producer, nil
}
