package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookmaker/repository/testutil"
)

func TestPayoutRepository_Create(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	betRepo := NewBetRepository(testDB.DB)
	repo := NewPayoutRepository(testDB.DB)
	ctx := context.Background()

	fixture := seedEventFixture(t, testDB, "payout_create")

	bet := testutil.CreateTestBet(fixture.User.ID, fixture.Event.ID, fixture.FirstTeam.ID, "100.00", "1.98")
	require.NoError(t, betRepo.Create(ctx, bet))

	t.Run("winning payout", func(t *testing.T) {
		payout := testutil.CreateTestPayout(fixture.User.ID, bet.ID, "98.00")
		err := repo.Create(ctx, payout)
		require.NoError(t, err)
		assert.NotZero(t, payout.ID)

		got, err := repo.GetByID(ctx, payout.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.Amount.Equal(decimal.RequireFromString("98.00")))
	})

	t.Run("one payout per bet", func(t *testing.T) {
		dup := testutil.CreateTestPayout(fixture.User.ID, bet.ID, "98.00")
		err := repo.Create(ctx, dup)
		assert.Error(t, err)
	})

	t.Run("negative amount allowed", func(t *testing.T) {
		losing := testutil.CreateTestBet(fixture.User.ID, fixture.Event.ID, fixture.SecondTeam.ID, "50.00", "2.10")
		require.NoError(t, betRepo.Create(ctx, losing))

		payout := testutil.CreateTestPayout(fixture.User.ID, losing.ID, "-50.00")
		require.NoError(t, repo.Create(ctx, payout))

		got, err := repo.GetByID(ctx, payout.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.Amount.IsNegative())
	})
}

func TestPayoutRepository_GetByUser(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	betRepo := NewBetRepository(testDB.DB)
	repo := NewPayoutRepository(testDB.DB)
	ctx := context.Background()

	fixture := seedEventFixture(t, testDB, "payout_by_user")

	t.Run("no payouts", func(t *testing.T) {
		payouts, err := repo.GetByUser(ctx, fixture.User.ID)
		require.NoError(t, err)
		assert.Empty(t, payouts)
	})

	for _, amount := range []string{"10.00", "-20.00", "30.00"} {
		bet := testutil.CreateTestBet(fixture.User.ID, fixture.Event.ID, fixture.FirstTeam.ID, "20.00", "1.50")
		require.NoError(t, betRepo.Create(ctx, bet))

		payout := testutil.CreateTestPayout(fixture.User.ID, bet.ID, amount)
		require.NoError(t, repo.Create(ctx, payout))
	}

	payouts, err := repo.GetByUser(ctx, fixture.User.ID)
	require.NoError(t, err)
	assert.Len(t, payouts, 3)
}
