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

type eventService struct {
	uowFactory UnitOfWorkFactory
	engine     *OddsEngine
}

// NewEventService creates a new event service
func NewEventService(uowFactory UnitOfWorkFactory, engine *OddsEngine) EventService {
	return &eventService{
		uowFactory: uowFactory,
		engine:     engine,
	}
}

// CreateEvent creates an event and its initial odds pair as one transactional
// operation. Every event has exactly one odds pair; the pair never exists
// independently.
func (s *eventService) CreateEvent(ctx context.Context, name string, eventDate time.Time, eventType string, firstTeamID, secondTeamID int64) (*models.Event, error) {
	if name == "" {
		return nil, fmt.Errorf("event name cannot be empty")
	}
	if firstTeamID == secondTeamID {
		return nil, fmt.Errorf("an event needs two distinct teams")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	for _, teamID := range []int64{firstTeamID, secondTeamID} {
		team, err := uow.TeamRepository().GetByID(ctx, teamID)
		if err != nil {
			return nil, fmt.Errorf("failed to get team: %w", err)
		}
		if team == nil {
			return nil, fmt.Errorf("team %d: %w", teamID, models.ErrTeamNotFound)
		}
	}

	event := &models.Event{
		Name:         name,
		EventDate:    eventDate,
		EventType:    eventType,
		Status:       models.EventStatusOngoing,
		FirstTeamID:  firstTeamID,
		SecondTeamID: secondTeamID,
	}
	if err := uow.EventRepository().Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	pair := s.engine.InitialPair(event.ID)
	if err := uow.OddsRepository().Create(ctx, pair); err != nil {
		return nil, fmt.Errorf("failed to create odds: %w", err)
	}

	if err := uow.OutboxRepository().Create(ctx, &models.OutboxEvent{
		AggregateID:   event.ID,
		AggregateType: models.AggregateTypeEvent,
		EventType:     models.OutboxEventCreated,
		EventPayload: map[string]any{
			"event_id":    event.ID,
			"event_name":  name,
			"first_odds":  pair.FirstOdds.String(),
			"second_odds": pair.SecondOdds.String(),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to write outbox event: %w", err)
	}

	uow.EventBus().Publish(events.EventCreatedEvent{
		EventID:    event.ID,
		Name:       name,
		FirstOdds:  pair.FirstOdds,
		SecondOdds: pair.SecondOdds,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"eventID":    event.ID,
		"name":       name,
		"firstOdds":  pair.FirstOdds.String(),
		"secondOdds": pair.SecondOdds.String(),
	}).Info("Event created")

	return event, nil
}

// UpdateEvent applies an end date if present and runs settlement when a
// winning team is supplied. The event row is locked for the duration, so
// settlement can neither run twice nor overlap a bet acceptance on the same
// event.
func (s *eventService) UpdateEvent(ctx context.Context, eventID int64, endDate *time.Time, winningTeamID *int64) (*models.Event, error) {
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

	if winningTeamID == nil {
		// No winner declared: only the end date may change
		if endDate != nil {
			event.EndDate = endDate
			if err := uow.EventRepository().Update(ctx, event); err != nil {
				return nil, fmt.Errorf("failed to update event: %w", err)
			}
		}
	} else {
		if err := s.settle(ctx, uow, event, winningTeamID, endDate); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return event, nil
}

// settle transitions an ongoing event to completed and pays out every bet:
// a winning bet nets stake*odds - stake at the odds captured when it was
// placed, a losing bet forfeits its stake. Runs entirely inside the caller's
// transaction; an error at any point leaves the event ongoing with zero
// payout rows written.
func (s *eventService) settle(ctx context.Context, uow UnitOfWork, event *models.Event, winningTeamID *int64, endDate *time.Time) error {
	if winningTeamID == nil {
		// Caller-side contract violation, not a normal user error
		log.WithField("eventID", event.ID).Error("Settlement invoked without a declared winner")
		return fmt.Errorf("event %d: %w", event.ID, models.ErrWinnerRequired)
	}
	if !event.IsOngoing() {
		return fmt.Errorf("event %d: %w", event.ID, models.ErrEventCompleted)
	}
	if !event.HasParticipant(*winningTeamID) {
		return fmt.Errorf("team %d: %w", *winningTeamID, models.ErrWinnerNotInEvent)
	}

	now := time.Now()
	event.WinningTeamID = winningTeamID
	event.Status = models.EventStatusCompleted
	if endDate != nil {
		event.EndDate = endDate
	} else {
		event.EndDate = &now
	}
	if err := uow.EventRepository().Update(ctx, event); err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	bets, err := uow.BetRepository().GetByEvent(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("failed to load bets: %w", err)
	}

	totalPaidOut := decimal.Zero
	for _, bet := range bets {
		amount := settlementAmount(bet, *winningTeamID)

		payout := &models.Payout{
			BetID:      bet.ID,
			UserID:     bet.UserID,
			Amount:     amount,
			PayoutDate: now,
		}
		if err := uow.PayoutRepository().Create(ctx, payout); err != nil {
			return fmt.Errorf("failed to create payout for bet %d: %w", bet.ID, err)
		}

		newBalance, err := uow.UserRepository().AddBalance(ctx, bet.UserID, amount)
		if err != nil {
			return fmt.Errorf("failed to apply payout to user %d: %w", bet.UserID, err)
		}

		if err := uow.OutboxRepository().Create(ctx, &models.OutboxEvent{
			AggregateID:   payout.ID,
			AggregateType: models.AggregateTypePayout,
			EventType:     models.OutboxPayoutRecorded,
			EventPayload: map[string]any{
				"payout_id": payout.ID,
				"bet_id":    bet.ID,
				"user_id":   bet.UserID,
				"amount":    amount.String(),
			},
		}); err != nil {
			return fmt.Errorf("failed to write outbox event: %w", err)
		}

		uow.EventBus().Publish(events.BalanceChangeEvent{
			UserID:       bet.UserID,
			BetID:        bet.ID,
			ChangeAmount: amount,
			NewBalance:   newBalance,
		})

		totalPaidOut = totalPaidOut.Add(amount)
	}

	if err := uow.OutboxRepository().Create(ctx, &models.OutboxEvent{
		AggregateID:   event.ID,
		AggregateType: models.AggregateTypeEvent,
		EventType:     models.OutboxEventSettled,
		EventPayload: map[string]any{
			"event_id":        event.ID,
			"winning_team_id": *winningTeamID,
			"bet_count":       len(bets),
			"total_paid_out":  totalPaidOut.String(),
		},
	}); err != nil {
		return fmt.Errorf("failed to write outbox event: %w", err)
	}

	uow.EventBus().Publish(events.EventSettledEvent{
		EventID:       event.ID,
		WinningTeamID: *winningTeamID,
		BetCount:      len(bets),
		TotalPaidOut:  totalPaidOut,
	})

	log.WithFields(log.Fields{
		"eventID":       event.ID,
		"winningTeamID": *winningTeamID,
		"betCount":      len(bets),
		"totalPaidOut":  totalPaidOut.String(),
	}).Info("Event settled")

	return nil
}

// settlementAmount computes the signed payout for a bet given the declared
// winner: stake*odds - stake at captured odds for a win, the full stake
// forfeited for a loss.
func settlementAmount(bet *models.Bet, winningTeamID int64) decimal.Decimal {
	if bet.WinTeamID == winningTeamID {
		return bet.Amount.Mul(bet.Odds).Sub(bet.Amount).Round(2)
	}
	return bet.Amount.Neg()
}

// GetEventByID retrieves an event by ID
func (s *eventService) GetEventByID(ctx context.Context, eventID int64) (*models.Event, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	event, err := uow.EventRepository().GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, fmt.Errorf("event %d: %w", eventID, models.ErrEventNotFound)
	}

	return event, nil
}

// GetOngoingEvents returns all events still accepting bets
func (s *eventService) GetOngoingEvents(ctx context.Context) ([]*models.Event, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	eventList, err := uow.EventRepository().GetOngoing(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get ongoing events: %w", err)
	}

	return eventList, nil
}

// GetEventOdds returns the current odds pair for an event
func (s *eventService) GetEventOdds(ctx context.Context, eventID int64) (*models.OddsPair, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	pair, err := uow.OddsRepository().GetByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get odds: %w", err)
	}
	if pair == nil {
		return nil, fmt.Errorf("event %d: %w", eventID, models.ErrOddsNotFound)
	}

	return pair, nil
}
