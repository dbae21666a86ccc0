package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bookmaker/database"
	"bookmaker/models"
)

// OutboxRepository implements the OutboxRepository interface
type OutboxRepository struct {
	q queryable
}

// NewOutboxRepository creates a new outbox repository
func NewOutboxRepository(db *database.DB) *OutboxRepository {
	return &OutboxRepository{q: db.Pool}
}

// newOutboxRepositoryWithTx creates a new outbox repository with a transaction
func newOutboxRepositoryWithTx(tx queryable) *OutboxRepository {
	return &OutboxRepository{q: tx}
}

// Create inserts an outbox event. Called inside the same transaction as the
// state change the event describes.
func (r *OutboxRepository) Create(ctx context.Context, event *models.OutboxEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.MaxRetries == 0 {
		event.MaxRetries = 5
	}

	payload, err := json.Marshal(event.EventPayload)
	if err != nil {
		return fmt.Errorf("failed to marshal outbox payload: %w", err)
	}

	query := `
		INSERT INTO outbox_events (id, aggregate_id, aggregate_type, event_type, event_payload, max_retries)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err = r.q.QueryRow(ctx, query,
		event.ID,
		event.AggregateID,
		event.AggregateType,
		event.EventType,
		payload,
		event.MaxRetries,
	).Scan(&event.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create outbox event %s: %w", event.EventType, err)
	}

	return nil
}

// GetUnprocessedEvents returns up to limit unpublished events, oldest first.
// Events that have exhausted their retries are skipped.
func (r *OutboxRepository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*models.OutboxEvent, error) {
	query := `
		SELECT id, aggregate_id, aggregate_type, event_type, event_payload,
		       created_at, processed_at, retry_count, max_retries, last_error
		FROM outbox_events
		WHERE processed_at IS NULL AND retry_count < max_retries
		ORDER BY created_at
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get unprocessed outbox events: %w", err)
	}
	defer rows.Close()

	var events []*models.OutboxEvent
	for rows.Next() {
		var event models.OutboxEvent
		var payload []byte
		err := rows.Scan(
			&event.ID,
			&event.AggregateID,
			&event.AggregateType,
			&event.EventType,
			&payload,
			&event.CreatedAt,
			&event.ProcessedAt,
			&event.RetryCount,
			&event.MaxRetries,
			&event.LastError,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		if err := json.Unmarshal(payload, &event.EventPayload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal outbox payload %s: %w", event.ID, err)
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outbox events: %w", err)
	}

	return events, nil
}

// MarkProcessed records a successful publish
func (r *OutboxRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	result, err := r.q.Exec(ctx,
		`UPDATE outbox_events SET processed_at = $1 WHERE id = $2`,
		time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark outbox event %s processed: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("outbox event %s not found", id)
	}

	return nil
}

// IncrementRetryCount records a failed publish attempt
func (r *OutboxRepository) IncrementRetryCount(ctx context.Context, id uuid.UUID, lastError string) error {
	_, err := r.q.Exec(ctx,
		`UPDATE outbox_events SET retry_count = retry_count + 1, last_error = $1 WHERE id = $2`,
		lastError, id,
	)
	if err != nil {
		return fmt.Errorf("failed to increment retry count for outbox event %s: %w", id, err)
	}

	return nil
}
