package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookmaker/config"
	"bookmaker/events"
	"bookmaker/models"
	"bookmaker/repository"
	"bookmaker/repository/testutil"
	"bookmaker/service"
)

func TestSettlement_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	userRepo := repository.NewUserRepository(testDB.DB)
	teamRepo := repository.NewTeamRepository(testDB.DB)
	eventRepo := repository.NewEventRepository(testDB.DB)
	oddsRepo := repository.NewOddsRepository(testDB.DB)
	payoutRepo := repository.NewPayoutRepository(testDB.DB)

	uowFactory := repository.NewUnitOfWorkFactory(testDB.DB, events.NewBus())
	engine := service.NewOddsEngine(config.DefaultOddsSettings(), nil)
	bettingService := service.NewBettingService(uowFactory, engine)
	eventService := service.NewEventService(uowFactory, engine)

	// Seed two users, two teams and an ongoing event quoting 2.00 / 1.90
	winner := testutil.CreateTestUser("winner")
	require.NoError(t, userRepo.Create(ctx, winner))
	loser := testutil.CreateTestUser("loser")
	require.NoError(t, userRepo.Create(ctx, loser))

	firstTeam := testutil.CreateTestTeam("Reds")
	require.NoError(t, teamRepo.Create(ctx, firstTeam))
	secondTeam := testutil.CreateTestTeam("Blues")
	require.NoError(t, teamRepo.Create(ctx, secondTeam))

	event := testutil.CreateTestEvent("Reds vs Blues", firstTeam.ID, secondTeam.ID)
	require.NoError(t, eventRepo.Create(ctx, event))
	require.NoError(t, oddsRepo.Create(ctx, testutil.CreateTestOddsPair(event.ID, "2.00", "1.90")))

	// One bet on each side; each captures the odds quoted at acceptance
	winningBet, err := bettingService.PlaceBet(ctx, winner.ID, event.ID, firstTeam.ID, decimal.RequireFromString("100"))
	require.NoError(t, err)
	assert.True(t, winningBet.Odds.Equal(decimal.RequireFromString("2.00")))

	losingBet, err := bettingService.PlaceBet(ctx, loser.ID, event.ID, secondTeam.ID, decimal.RequireFromString("50"))
	require.NoError(t, err)
	assert.True(t, losingBet.Odds.Equal(decimal.RequireFromString("1.90")))

	t.Run("settlement pays winners and debits losers atomically", func(t *testing.T) {
		settled, err := eventService.UpdateEvent(ctx, event.ID, nil, &firstTeam.ID)
		require.NoError(t, err)

		assert.Equal(t, models.EventStatusCompleted, settled.Status)
		require.NotNil(t, settled.WinningTeamID)
		assert.Equal(t, firstTeam.ID, *settled.WinningTeamID)
		assert.NotNil(t, settled.EndDate)

		// Winner nets stake*odds - stake at the captured 2.00
		winnerPayouts, err := payoutRepo.GetByUser(ctx, winner.ID)
		require.NoError(t, err)
		require.Len(t, winnerPayouts, 1)
		assert.Equal(t, winningBet.ID, winnerPayouts[0].BetID)
		assert.True(t, winnerPayouts[0].Amount.Equal(decimal.RequireFromString("100.00")))

		loserPayouts, err := payoutRepo.GetByUser(ctx, loser.ID)
		require.NoError(t, err)
		require.Len(t, loserPayouts, 1)
		assert.Equal(t, losingBet.ID, loserPayouts[0].BetID)
		assert.True(t, loserPayouts[0].Amount.Equal(decimal.RequireFromString("-50.00")))

		winnerAfter, err := userRepo.GetByID(ctx, winner.ID)
		require.NoError(t, err)
		assert.True(t, winnerAfter.Balance.Equal(decimal.RequireFromString("1100.00")))

		loserAfter, err := userRepo.GetByID(ctx, loser.ID)
		require.NoError(t, err)
		assert.True(t, loserAfter.Balance.Equal(decimal.RequireFromString("950.00")))
	})

	t.Run("completed event rejects re-settlement", func(t *testing.T) {
		_, err := eventService.UpdateEvent(ctx, event.ID, nil, &secondTeam.ID)
		require.ErrorIs(t, err, models.ErrEventCompleted)

		// No duplicate payouts, balances untouched
		winnerPayouts, err := payoutRepo.GetByUser(ctx, winner.ID)
		require.NoError(t, err)
		assert.Len(t, winnerPayouts, 1)

		winnerAfter, err := userRepo.GetByID(ctx, winner.ID)
		require.NoError(t, err)
		assert.True(t, winnerAfter.Balance.Equal(decimal.RequireFromString("1100.00")))
	})

	t.Run("completed event rejects new bets", func(t *testing.T) {
		_, err := bettingService.PlaceBet(ctx, loser.ID, event.ID, firstTeam.ID, decimal.RequireFromString("25"))
		require.ErrorIs(t, err, models.ErrEventCompleted)

		// The rejected bet never moved the pair
		pair, err := oddsRepo.GetByEventID(ctx, event.ID)
		require.NoError(t, err)
		assert.True(t, pair.FirstOdds.Equal(decimal.RequireFromString("1.98")))
	})
}

// A bet racing settlement must queue behind the event row lock and find the
// event completed, never commit against an already-settled book.
func TestSettlement_ExcludesConcurrentBets_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	userRepo := repository.NewUserRepository(testDB.DB)
	teamRepo := repository.NewTeamRepository(testDB.DB)
	eventRepo := repository.NewEventRepository(testDB.DB)
	oddsRepo := repository.NewOddsRepository(testDB.DB)
	betRepo := repository.NewBetRepository(testDB.DB)

	uowFactory := repository.NewUnitOfWorkFactory(testDB.DB, events.NewBus())
	engine := service.NewOddsEngine(config.DefaultOddsSettings(), nil)
	bettingService := service.NewBettingService(uowFactory, engine)
	eventService := service.NewEventService(uowFactory, engine)

	user := testutil.CreateTestUser("latecomer")
	require.NoError(t, userRepo.Create(ctx, user))
	firstTeam := testutil.CreateTestTeam("Reds")
	require.NoError(t, teamRepo.Create(ctx, firstTeam))
	secondTeam := testutil.CreateTestTeam("Blues")
	require.NoError(t, teamRepo.Create(ctx, secondTeam))

	event := testutil.CreateTestEvent("Reds vs Blues", firstTeam.ID, secondTeam.ID)
	require.NoError(t, eventRepo.Create(ctx, event))
	require.NoError(t, oddsRepo.Create(ctx, testutil.CreateTestOddsPair(event.ID, "2.00", "1.90")))

	// Hold the event row lock the way a mid-flight settlement does, then fire
	// a bet at the locked event. The bet must block until the settlement
	// commits and then be rejected.
	lockTx, err := testDB.DB.Begin(ctx)
	require.NoError(t, err)

	var lockedID int64
	err = lockTx.QueryRow(ctx,
		"SELECT id FROM events WHERE id = $1 FOR UPDATE", event.ID,
	).Scan(&lockedID)
	require.NoError(t, err)

	betResult := make(chan error, 1)
	go func() {
		_, err := bettingService.PlaceBet(ctx, user.ID, event.ID, firstTeam.ID, decimal.RequireFromString("100"))
		betResult <- err
	}()

	select {
	case err := <-betResult:
		t.Fatalf("bet committed while the event row was locked: %v", err)
	case <-time.After(500 * time.Millisecond):
		// Blocked on the event lock, as required
	}

	_, err = lockTx.Exec(ctx,
		"UPDATE events SET status = $1, winning_team_id = $2, event_end_date = NOW() WHERE id = $3",
		models.EventStatusCompleted, firstTeam.ID, event.ID,
	)
	require.NoError(t, err)
	require.NoError(t, lockTx.Commit(ctx))

	select {
	case err := <-betResult:
		require.ErrorIs(t, err, models.ErrEventCompleted)
	case <-time.After(5 * time.Second):
		t.Fatal("bet did not resolve after the settlement committed")
	}

	// Nothing leaked from the rejected acceptance
	bets, err := betRepo.GetByEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Empty(t, bets)

	pair, err := oddsRepo.GetByEventID(ctx, event.ID)
	require.NoError(t, err)
	assert.True(t, pair.FirstOdds.Equal(decimal.RequireFromString("2.00")))

	// And settlement of the empty book still succeeds afterwards through the
	// service path on a fresh event
	event2 := testutil.CreateTestEvent("Reds vs Blues II", firstTeam.ID, secondTeam.ID)
	require.NoError(t, eventRepo.Create(ctx, event2))
	require.NoError(t, oddsRepo.Create(ctx, testutil.CreateTestOddsPair(event2.ID, "2.00", "1.90")))

	settled, err := eventService.UpdateEvent(ctx, event2.ID, nil, &firstTeam.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusCompleted, settled.Status)
}
