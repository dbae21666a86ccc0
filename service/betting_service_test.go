package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bookmaker/config"
	"bookmaker/events"
	"bookmaker/models"
)

type betTestMocks struct {
	factory    *MockUnitOfWorkFactory
	uow        *MockUnitOfWork
	eventRepo  *MockEventRepository
	oddsRepo   *MockOddsRepository
	betRepo    *MockBetRepository
	outboxRepo *MockOutboxRepository
	bus        *MockEventPublisher
}

func setupBetTest(t *testing.T) (BettingService, *betTestMocks) {
	t.Helper()

	m := &betTestMocks{
		factory:    new(MockUnitOfWorkFactory),
		uow:        new(MockUnitOfWork),
		eventRepo:  new(MockEventRepository),
		oddsRepo:   new(MockOddsRepository),
		betRepo:    new(MockBetRepository),
		outboxRepo: new(MockOutboxRepository),
		bus:        new(MockEventPublisher),
	}
	m.uow.SetRepositories(nil, nil, m.eventRepo, m.oddsRepo, m.betRepo, nil, m.outboxRepo, m.bus)
	m.factory.On("Create").Return(m.uow)

	engine := NewOddsEngine(config.DefaultOddsSettings(), nil)
	return NewBettingService(m.factory, engine), m
}

func ongoingEvent() *models.Event {
	return &models.Event{
		ID:           10,
		Name:         "alpha vs beta",
		Status:       models.EventStatusOngoing,
		FirstTeamID:  1,
		SecondTeamID: 2,
	}
}

func TestBettingService_PlaceBet_Success(t *testing.T) {
	ctx := context.Background()
	svc, m := setupBetTest(t)

	pair := &models.OddsPair{
		ID:         5,
		EventID:    10,
		FirstOdds:  decimal.RequireFromString("2.00"),
		SecondOdds: decimal.RequireFromString("1.95"),
	}

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)

	m.eventRepo.On("GetByIDForUpdate", ctx, int64(10)).Return(ongoingEvent(), nil)
	m.oddsRepo.On("GetByEventIDForUpdate", ctx, int64(10)).Return(pair, nil)

	m.betRepo.On("Create", ctx, mock.MatchedBy(func(bet *models.Bet) bool {
		return bet.UserID == 7 &&
			bet.EventID == 10 &&
			bet.WinTeamID == 1 &&
			bet.Amount.Equal(decimal.RequireFromString("100")) &&
			bet.Odds.Equal(decimal.RequireFromString("2.00"))
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Bet).ID = 42
	}).Return(nil)

	// 100 staked on the first side shrinks it by 1%
	m.oddsRepo.On("Update", ctx, mock.MatchedBy(func(p *models.OddsPair) bool {
		return p.FirstOdds.Equal(decimal.RequireFromString("1.98")) &&
			p.SecondOdds.Equal(decimal.RequireFromString("1.95"))
	})).Return(nil)

	m.outboxRepo.On("Create", ctx, mock.MatchedBy(func(e *models.OutboxEvent) bool {
		return e.EventType == models.OutboxBetPlaced && e.AggregateID == 42
	})).Return(nil)

	m.bus.On("Publish", mock.AnythingOfType("events.BetPlacedEvent")).Return()
	m.bus.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		changed, ok := e.(events.OddsChangedEvent)
		return ok && changed.FirstOdds.Equal(decimal.RequireFromString("1.98"))
	})).Return()

	bet, err := svc.PlaceBet(ctx, 7, 10, 1, decimal.RequireFromString("100"))

	require.NoError(t, err)
	require.NotNil(t, bet)
	assert.Equal(t, int64(42), bet.ID)
	// The bet carries the odds quoted before the adjustment
	assert.True(t, bet.Odds.Equal(decimal.RequireFromString("2.00")))

	m.eventRepo.AssertExpectations(t)
	m.oddsRepo.AssertExpectations(t)
	m.betRepo.AssertExpectations(t)
	m.outboxRepo.AssertExpectations(t)
	m.uow.AssertExpectations(t)
}

func TestBettingService_PlaceBet_EventNotFound(t *testing.T) {
	ctx := context.Background()
	svc, m := setupBetTest(t)

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.eventRepo.On("GetByIDForUpdate", ctx, int64(10)).Return(nil, nil)

	_, err := svc.PlaceBet(ctx, 7, 10, 1, decimal.RequireFromString("100"))

	assert.ErrorIs(t, err, models.ErrEventNotFound)
	m.uow.AssertNotCalled(t, "Commit")
	m.betRepo.AssertNotCalled(t, "Create")
}

func TestBettingService_PlaceBet_EventCompleted(t *testing.T) {
	ctx := context.Background()
	svc, m := setupBetTest(t)

	winner := int64(1)
	completed := ongoingEvent()
	completed.Status = models.EventStatusCompleted
	completed.WinningTeamID = &winner

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.eventRepo.On("GetByIDForUpdate", ctx, int64(10)).Return(completed, nil)

	_, err := svc.PlaceBet(ctx, 7, 10, 1, decimal.RequireFromString("100"))

	assert.ErrorIs(t, err, models.ErrEventCompleted)
	m.uow.AssertNotCalled(t, "Commit")
	m.oddsRepo.AssertNotCalled(t, "GetByEventIDForUpdate")
}

func TestBettingService_PlaceBet_TeamNotInEvent(t *testing.T) {
	ctx := context.Background()
	svc, m := setupBetTest(t)

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.eventRepo.On("GetByIDForUpdate", ctx, int64(10)).Return(ongoingEvent(), nil)

	_, err := svc.PlaceBet(ctx, 7, 10, 999, decimal.RequireFromString("100"))

	assert.ErrorIs(t, err, models.ErrTeamNotInEvent)
	m.uow.AssertNotCalled(t, "Commit")
	m.oddsRepo.AssertNotCalled(t, "GetByEventIDForUpdate")
}

func TestBettingService_PlaceBet_OddsMissing(t *testing.T) {
	ctx := context.Background()
	svc, m := setupBetTest(t)

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.eventRepo.On("GetByIDForUpdate", ctx, int64(10)).Return(ongoingEvent(), nil)
	m.oddsRepo.On("GetByEventIDForUpdate", ctx, int64(10)).Return(nil, nil)

	_, err := svc.PlaceBet(ctx, 7, 10, 1, decimal.RequireFromString("100"))

	assert.ErrorIs(t, err, models.ErrOddsNotFound)
	m.uow.AssertNotCalled(t, "Commit")
}

func TestBettingService_PlaceBet_NonPositiveStake(t *testing.T) {
	ctx := context.Background()
	svc, m := setupBetTest(t)

	pair := &models.OddsPair{
		EventID:    10,
		FirstOdds:  decimal.RequireFromString("2.00"),
		SecondOdds: decimal.RequireFromString("1.95"),
	}

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.eventRepo.On("GetByIDForUpdate", ctx, int64(10)).Return(ongoingEvent(), nil)
	m.oddsRepo.On("GetByEventIDForUpdate", ctx, int64(10)).Return(pair, nil)

	for _, stake := range []string{"0", "-5"} {
		_, err := svc.PlaceBet(ctx, 7, 10, 1, decimal.RequireFromString(stake))
		assert.ErrorIs(t, err, models.ErrInvalidStake, "stake %s", stake)
	}

	m.uow.AssertNotCalled(t, "Commit")
	m.betRepo.AssertNotCalled(t, "Create")
}

func TestBettingService_PlaceBet_PersistFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	svc, m := setupBetTest(t)

	pair := &models.OddsPair{
		EventID:    10,
		FirstOdds:  decimal.RequireFromString("2.00"),
		SecondOdds: decimal.RequireFromString("1.95"),
	}

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.eventRepo.On("GetByIDForUpdate", ctx, int64(10)).Return(ongoingEvent(), nil)
	m.oddsRepo.On("GetByEventIDForUpdate", ctx, int64(10)).Return(pair, nil)
	m.betRepo.On("Create", ctx, mock.Anything).Return(errors.New("insert failed"))

	_, err := svc.PlaceBet(ctx, 7, 10, 1, decimal.RequireFromString("100"))

	assert.Error(t, err)
	m.uow.AssertNotCalled(t, "Commit")
	m.oddsRepo.AssertNotCalled(t, "Update")
}

func TestBettingService_GetBetByID(t *testing.T) {
	ctx := context.Background()
	svc, m := setupBetTest(t)

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)

	t.Run("found", func(t *testing.T) {
		bet := &models.Bet{ID: 42, UserID: 7}
		m.betRepo.On("GetByID", ctx, int64(42)).Return(bet, nil).Once()

		got, err := svc.GetBetByID(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, bet, got)
	})

	t.Run("missing", func(t *testing.T) {
		m.betRepo.On("GetByID", ctx, int64(43)).Return(nil, nil).Once()

		_, err := svc.GetBetByID(ctx, 43)
		assert.ErrorIs(t, err, models.ErrBetNotFound)
	})
}
