package models

import (
	"time"

	"github.com/google/uuid"
)

// OutboxEvent is a row in the transactional outbox. It is written in the same
// transaction as the state change it describes and published to Kafka by the
// background publisher.
type OutboxEvent struct {
	ID            uuid.UUID      `db:"id"`
	AggregateID   int64          `db:"aggregate_id"`
	AggregateType string         `db:"aggregate_type"`
	EventType     string         `db:"event_type"`
	EventPayload  map[string]any `db:"event_payload"`
	CreatedAt     time.Time      `db:"created_at"`
	ProcessedAt   *time.Time     `db:"processed_at"`
	RetryCount    int            `db:"retry_count"`
	MaxRetries    int            `db:"max_retries"`
	LastError     *string        `db:"last_error"`
}

// IsProcessed returns true if the event has been successfully published
func (e *OutboxEvent) IsProcessed() bool {
	return e.ProcessedAt != nil
}

// CanRetry returns true if the event can be retried
func (e *OutboxEvent) CanRetry() bool {
	return e.RetryCount < e.MaxRetries
}

// Aggregate types
const (
	AggregateTypeEvent  = "event"
	AggregateTypeBet    = "bet"
	AggregateTypePayout = "payout"
)

// Outbox event types
const (
	OutboxEventCreated   = "event.created"
	OutboxEventSettled   = "event.settled"
	OutboxBetPlaced      = "bet.placed"
	OutboxOddsChanged    = "odds.changed"
	OutboxPayoutRecorded = "payout.recorded"
)
