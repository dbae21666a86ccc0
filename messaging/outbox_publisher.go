package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"bookmaker/models"
)

// OutboxStore is the slice of outbox persistence the publisher needs
type OutboxStore interface {
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*models.OutboxEvent, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
	IncrementRetryCount(ctx context.Context, id uuid.UUID, lastError string) error
}

// OutboxPublisher polls the outbox table and publishes events to Kafka.
// Rows are marked processed only after the broker acknowledges, so delivery
// is at-least-once and consumers must deduplicate on the event id.
type OutboxPublisher struct {
	store        OutboxStore
	producer     sarama.SyncProducer
	pollInterval time.Duration
	batchSize    int
	topicMap     map[string]string
}

// NewOutboxPublisher creates a new outbox publisher
func NewOutboxPublisher(store OutboxStore, producer sarama.SyncProducer) *OutboxPublisher {
	return &OutboxPublisher{
		store:        store,
		producer:     producer,
		pollInterval: 100 * time.Millisecond,
		batchSize:    100,
		topicMap: map[string]string{
			models.OutboxEventCreated:   "bookmaker.events",
			models.OutboxEventSettled:   "bookmaker.settlements",
			models.OutboxBetPlaced:      "bookmaker.bets",
			models.OutboxOddsChanged:    "bookmaker.events",
			models.OutboxPayoutRecorded: "bookmaker.settlements",
		},
	}
}

// Start polls until the context is cancelled
func (p *OutboxPublisher) Start(ctx context.Context) {
	log.Info("Outbox publisher started")
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.publishPending(ctx)
		case <-ctx.Done():
			log.Info("Outbox publisher stopping")
			return
		}
	}
}

func (p *OutboxPublisher) publishPending(ctx context.Context) {
	events, err := p.store.GetUnprocessedEvents(ctx, p.batchSize)
	if err != nil {
		log.WithError(err).Error("Failed to get unprocessed outbox events")
		return
	}

	for _, event := range events {
		if publishErr := p.publishEvent(event); publishErr != nil {
			log.WithError(publishErr).WithFields(log.Fields{
				"eventID":   event.ID,
				"eventType": event.EventType,
			}).Error("Failed to publish outbox event")

			if err := p.store.IncrementRetryCount(ctx, event.ID, publishErr.Error()); err != nil {
				log.WithError(err).Error("Failed to increment outbox retry count")
			}
			continue
		}

		if err := p.store.MarkProcessed(ctx, event.ID); err != nil {
			log.WithError(err).WithField("eventID", event.ID).Error("Failed to mark outbox event processed")
		}
	}
}

func (p *OutboxPublisher) publishEvent(event *models.OutboxEvent) error {
	topic, ok := p.topicMap[event.EventType]
	if !ok {
		topic = "bookmaker.events"
	}

	payload, err := json.Marshal(event.EventPayload)
	if err != nil {
		return fmt.Errorf("failed to marshal outbox payload: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		// Key by aggregate so all events for one event/bet land in order
		// on the same partition
		Key:   sarama.StringEncoder(strconv.FormatInt(event.AggregateID, 10)),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_id"), Value: []byte(event.ID.String())},
			{Key: []byte("event_type"), Value: []byte(event.EventType)},
			{Key: []byte("aggregate_type"), Value: []byte(event.AggregateType)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send to kafka: %w", err)
	}

	log.WithFields(log.Fields{
		"eventType": event.EventType,
		"topic":     topic,
		"partition": partition,
		"offset":    offset,
	}).Debug("Published outbox event to Kafka")

	return nil
}
