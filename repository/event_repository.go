package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"bookmaker/database"
	"bookmaker/models"
)

// EventRepository implements the EventRepository interface
type EventRepository struct {
	q queryable
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{q: db.Pool}
}

// newEventRepositoryWithTx creates a new event repository with a transaction
func newEventRepositoryWithTx(tx queryable) *EventRepository {
	return &EventRepository{q: tx}
}

const eventColumns = `id, event_name, event_date, event_end_date, event_type, status,
	       first_team_id, second_team_id, winning_team_id, created_at`

// Create persists a new event
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (event_name, event_date, event_type, status, first_team_id, second_team_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		event.Name,
		event.EventDate,
		event.EventType,
		event.Status,
		event.FirstTeamID,
		event.SecondTeamID,
	).Scan(&event.ID, &event.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create event %q: %w", event.Name, err)
	}

	return nil
}

// GetByID retrieves an event by id
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		WHERE id = $1
	`, eventColumns)

	return r.scanOne(ctx, query, id)
}

// GetByIDForUpdate retrieves an event by id holding a row lock for the
// duration of the transaction. Settlement and bet acceptance both start from
// this lock, so a second settlement and bets arriving mid-settlement all
// queue behind the status transition instead of racing it.
func (r *EventRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		WHERE id = $1
		FOR UPDATE
	`, eventColumns)

	return r.scanOne(ctx, query, id)
}

func (r *EventRepository) scanOne(ctx context.Context, query string, id int64) (*models.Event, error) {
	var event models.Event
	err := r.q.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.Name,
		&event.EventDate,
		&event.EndDate,
		&event.EventType,
		&event.Status,
		&event.FirstTeamID,
		&event.SecondTeamID,
		&event.WinningTeamID,
		&event.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event %d: %w", id, err)
	}

	return &event, nil
}

// Update updates an event's end date, winner and status
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	query := `
		UPDATE events
		SET event_end_date = $1, status = $2, winning_team_id = $3
		WHERE id = $4
	`

	result, err := r.q.Exec(ctx, query,
		event.EndDate,
		event.Status,
		event.WinningTeamID,
		event.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event %d: %w", event.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("event %d: %w", event.ID, models.ErrEventNotFound)
	}

	return nil
}

// GetOngoing returns all events still accepting bets, newest first
func (r *EventRepository) GetOngoing(ctx context.Context) ([]*models.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		WHERE status = $1
		ORDER BY id DESC
	`, eventColumns)

	rows, err := r.q.Query(ctx, query, models.EventStatusOngoing)
	if err != nil {
		return nil, fmt.Errorf("failed to get ongoing events: %w", err)
	}
	defer rows.Close()

	var eventList []*models.Event
	for rows.Next() {
		var event models.Event
		err := rows.Scan(
			&event.ID,
			&event.Name,
			&event.EventDate,
			&event.EndDate,
			&event.EventType,
			&event.Status,
			&event.FirstTeamID,
			&event.SecondTeamID,
			&event.WinningTeamID,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		eventList = append(eventList, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	return eventList, nil
}
