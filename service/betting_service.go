package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"bookmaker/events"
	"bookmaker/models"
)

type bettingService struct {
	uowFactory UnitOfWorkFactory
	engine     *OddsEngine
}

// NewBettingService creates a new betting service
func NewBettingService(uowFactory UnitOfWorkFactory, engine *OddsEngine) BettingService {
	return &bettingService{
		uowFactory: uowFactory,
		engine:     engine,
	}
}

// PlaceBet runs the bet acceptance pipeline: validate the wager against event
// state, capture the quoted odds, persist the bet and shrink the backed
// side's odds, all in one transaction. The event row is locked first so
// acceptance conflicts with settlement: a bet can never slip in after
// settlement has read the event's bets but before it flips the status. The
// odds row is then locked so concurrent bets on the same event serialize
// their read-modify-write instead of applying against stale values.
// Settlement also starts from the event lock, so the two paths cannot
// deadlock.
func (s *bettingService) PlaceBet(ctx context.Context, userID, eventID, teamID int64, amount decimal.Decimal) (*models.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	event, err := uow.EventRepository().GetByIDForUpdate(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, fmt.Errorf("event %d: %w", eventID, models.ErrEventNotFound)
	}
	if !event.IsOngoing() {
		return nil, fmt.Errorf("event %d: %w", eventID, models.ErrEventCompleted)
	}

	side, ok := event.Side(teamID)
	if !ok {
		return nil, fmt.Errorf("team %d: %w", teamID, models.ErrTeamNotInEvent)
	}

	pair, err := uow.OddsRepository().GetByEventIDForUpdate(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get odds: %w", err)
	}
	if pair == nil {
		return nil, fmt.Errorf("event %d: %w", eventID, models.ErrOddsNotFound)
	}

	// Capture the quoted odds; this value is frozen on the bet regardless of
	// where the pair moves afterwards
	oddsValue := pair.Odds(side)
	if oddsValue.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("event %d side %s: %w", eventID, side, models.ErrInvalidOdds)
	}

	bet, err := models.NewBet(userID, eventID, teamID, amount, oddsValue, time.Now())
	if err != nil {
		return nil, err
	}

	if err := uow.BetRepository().Create(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}

	if err := s.engine.Adjust(pair, side, amount); err != nil {
		return nil, fmt.Errorf("failed to adjust odds: %w", err)
	}
	if err := uow.OddsRepository().Update(ctx, pair); err != nil {
		return nil, fmt.Errorf("failed to update odds: %w", err)
	}

	if err := uow.OutboxRepository().Create(ctx, &models.OutboxEvent{
		AggregateID:   bet.ID,
		AggregateType: models.AggregateTypeBet,
		EventType:     models.OutboxBetPlaced,
		EventPayload: map[string]any{
			"bet_id":   bet.ID,
			"user_id":  userID,
			"event_id": eventID,
			"team_id":  teamID,
			"amount":   amount.String(),
			"odds":     oddsValue.String(),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to write outbox event: %w", err)
	}

	uow.EventBus().Publish(events.BetPlacedEvent{
		BetID:   bet.ID,
		UserID:  userID,
		EventID: eventID,
		Side:    side,
		Amount:  amount,
		Odds:    oddsValue,
	})
	uow.EventBus().Publish(events.OddsChangedEvent{
		EventID:    eventID,
		Side:       side,
		FirstOdds:  pair.FirstOdds,
		SecondOdds: pair.SecondOdds,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"betID":   bet.ID,
		"eventID": eventID,
		"userID":  userID,
		"side":    side,
		"amount":  amount.String(),
		"odds":    oddsValue.String(),
	}).Info("Bet accepted")

	return bet, nil
}

// GetBetByID retrieves a bet by ID
func (s *bettingService) GetBetByID(ctx context.Context, betID int64) (*models.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bet, err := uow.BetRepository().GetByID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if bet == nil {
		return nil, fmt.Errorf("bet %d: %w", betID, models.ErrBetNotFound)
	}

	return bet, nil
}

// GetBetsByUser returns a user's bets, newest first
func (s *bettingService) GetBetsByUser(ctx context.Context, userID int64, limit int) ([]*models.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bets, err := uow.BetRepository().GetByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets: %w", err)
	}

	return bets, nil
}
