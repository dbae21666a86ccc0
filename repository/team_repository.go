package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"bookmaker/database"
	"bookmaker/models"
)

// TeamRepository implements the TeamRepository interface
type TeamRepository struct {
	q queryable
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *database.DB) *TeamRepository {
	return &TeamRepository{q: db.Pool}
}

// newTeamRepositoryWithTx creates a new team repository with a transaction
func newTeamRepositoryWithTx(tx queryable) *TeamRepository {
	return &TeamRepository{q: tx}
}

// Create persists a new team
func (r *TeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO team (team_name, squad_list, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		team.Name,
		team.SquadList,
		team.Description,
	).Scan(&team.ID, &team.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create team %q: %w", team.Name, err)
	}

	return nil
}

// GetByID retrieves a team by id
func (r *TeamRepository) GetByID(ctx context.Context, id int64) (*models.Team, error) {
	query := `
		SELECT id, team_name, squad_list, description, created_at
		FROM team
		WHERE id = $1
	`

	var team models.Team
	err := r.q.QueryRow(ctx, query, id).Scan(
		&team.ID,
		&team.Name,
		&team.SquadList,
		&team.Description,
		&team.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team %d: %w", id, err)
	}

	return &team, nil
}

// GetAll returns all teams
func (r *TeamRepository) GetAll(ctx context.Context) ([]*models.Team, error) {
	query := `
		SELECT id, team_name, squad_list, description, created_at
		FROM team
		ORDER BY team_name
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		var team models.Team
		err := rows.Scan(
			&team.ID,
			&team.Name,
			&team.SquadList,
			&team.Description,
			&team.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, &team)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate teams: %w", err)
	}

	return teams, nil
}
