package service

import (
	"context"
	"fmt"

	"bookmaker/models"
)

type teamService struct {
	uowFactory UnitOfWorkFactory
}

// NewTeamService creates a new team service
func NewTeamService(uowFactory UnitOfWorkFactory) TeamService {
	return &teamService{
		uowFactory: uowFactory,
	}
}

// CreateTeam creates a new team
func (s *teamService) CreateTeam(ctx context.Context, name string, squadList []string, description string) (*models.Team, error) {
	if name == "" {
		return nil, fmt.Errorf("team name cannot be empty")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	team := &models.Team{
		Name:        name,
		SquadList:   squadList,
		Description: description,
	}
	if err := uow.TeamRepository().Create(ctx, team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return team, nil
}

// GetTeamByID retrieves a team by ID
func (s *teamService) GetTeamByID(ctx context.Context, teamID int64) (*models.Team, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	team, err := uow.TeamRepository().GetByID(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	if team == nil {
		return nil, fmt.Errorf("team %d: %w", teamID, models.ErrTeamNotFound)
	}

	return team, nil
}

// GetTeams returns all teams
func (s *teamService) GetTeams(ctx context.Context) ([]*models.Team, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	teams, err := uow.TeamRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get teams: %w", err)
	}

	return teams, nil
}
