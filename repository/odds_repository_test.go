package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookmaker/repository/testutil"
)

func TestOddsRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewOddsRepository(testDB.DB)
	ctx := context.Background()

	fixture := seedEventFixture(t, testDB, "odds_create")

	t.Run("no pair found", func(t *testing.T) {
		pair, err := repo.GetByEventID(ctx, fixture.Event.ID)
		require.NoError(t, err)
		assert.Nil(t, pair)
	})

	t.Run("create and retrieve", func(t *testing.T) {
		pair := testutil.CreateTestOddsPair(fixture.Event.ID, "2.50", "1.62")
		err := repo.Create(ctx, pair)
		require.NoError(t, err)
		assert.NotZero(t, pair.ID)
		assert.False(t, pair.UpdatedAt.IsZero())

		got, err := repo.GetByEventID(ctx, fixture.Event.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.FirstOdds.Equal(decimal.RequireFromString("2.50")))
		assert.True(t, got.SecondOdds.Equal(decimal.RequireFromString("1.62")))
	})

	t.Run("one pair per event", func(t *testing.T) {
		dup := testutil.CreateTestOddsPair(fixture.Event.ID, "3.00", "1.20")
		err := repo.Create(ctx, dup)
		assert.Error(t, err)
	})
}

func TestOddsRepository_Update(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewOddsRepository(testDB.DB)
	ctx := context.Background()

	fixture := seedEventFixture(t, testDB, "odds_update")

	pair := testutil.CreateTestOddsPair(fixture.Event.ID, "2.00", "1.95")
	require.NoError(t, repo.Create(ctx, pair))

	t.Run("writes both sides back", func(t *testing.T) {
		pair.FirstOdds = decimal.RequireFromString("1.98")
		pair.SecondOdds = decimal.RequireFromString("1.96")
		err := repo.Update(ctx, pair)
		require.NoError(t, err)

		got, err := repo.GetByEventID(ctx, fixture.Event.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.FirstOdds.Equal(decimal.RequireFromString("1.98")))
		assert.True(t, got.SecondOdds.Equal(decimal.RequireFromString("1.96")))
	})

	t.Run("missing pair", func(t *testing.T) {
		missing := testutil.CreateTestOddsPair(fixture.Event.ID, "2.00", "1.95")
		missing.ID = pair.ID + 1000
		err := repo.Update(ctx, missing)
		assert.Error(t, err)
	})
}

func TestOddsRepository_ForUpdateLock(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()

	fixture := seedEventFixture(t, testDB, "odds_lock")

	pair := testutil.CreateTestOddsPair(fixture.Event.ID, "2.00", "1.95")
	require.NoError(t, NewOddsRepository(testDB.DB).Create(ctx, pair))

	// Two transactions read-modify-write the same pair; the row lock must
	// serialize them so neither update is lost.
	tx1, err := testDB.DB.Begin(ctx)
	require.NoError(t, err)
	defer tx1.Rollback(ctx)

	repo1 := newOddsRepositoryWithTx(tx1)
	locked, err := repo1.GetByEventIDForUpdate(ctx, fixture.Event.ID)
	require.NoError(t, err)
	require.NotNil(t, locked)

	second := make(chan decimal.Decimal, 1)
	go func() {
		_ = testDB.DB.WithTransaction(ctx, func(tx pgx.Tx) error {
			p, err := newOddsRepositoryWithTx(tx).GetByEventIDForUpdate(ctx, fixture.Event.ID)
			if err != nil {
				return err
			}
			second <- p.FirstOdds
			return nil
		})
	}()

	locked.FirstOdds = decimal.RequireFromString("1.90")
	require.NoError(t, repo1.Update(ctx, locked))
	require.NoError(t, tx1.Commit(ctx))

	// The second transaction only acquires the lock after tx1 commits, so it
	// must observe the committed value.
	got := <-second
	assert.True(t, got.Equal(decimal.RequireFromString("1.90")))
}
