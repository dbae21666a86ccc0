package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookmaker/models"
	"bookmaker/repository/testutil"
)

func TestUserRepository_Create(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("successful creation", func(t *testing.T) {
		user := testutil.CreateTestUser("alice")
		err := repo.Create(ctx, user)
		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.False(t, user.CreatedAt.IsZero())
	})

	t.Run("duplicate username", func(t *testing.T) {
		user := testutil.CreateTestUser("alice")
		err := repo.Create(ctx, user)
		assert.Error(t, err)
	})
}

func TestUserRepository_GetByUsername(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("no user found", func(t *testing.T) {
		user, err := repo.GetByUsername(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("user found", func(t *testing.T) {
		created := testutil.CreateTestUserWithBalance("bob", decimal.RequireFromString("250.00"))
		require.NoError(t, repo.Create(ctx, created))

		user, err := repo.GetByUsername(ctx, "bob")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, created.ID, user.ID)
		assert.True(t, user.Balance.Equal(decimal.RequireFromString("250.00")))
	})
}

func TestUserRepository_AddBalance(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	user := testutil.CreateTestUserWithBalance("carol", decimal.RequireFromString("100.00"))
	require.NoError(t, repo.Create(ctx, user))

	t.Run("credit", func(t *testing.T) {
		newBalance, err := repo.AddBalance(ctx, user.ID, decimal.RequireFromString("98.00"))
		require.NoError(t, err)
		assert.True(t, newBalance.Equal(decimal.RequireFromString("198.00")))
	})

	t.Run("debit", func(t *testing.T) {
		newBalance, err := repo.AddBalance(ctx, user.ID, decimal.RequireFromString("-50.00"))
		require.NoError(t, err)
		assert.True(t, newBalance.Equal(decimal.RequireFromString("148.00")))
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := repo.AddBalance(ctx, 99999, decimal.RequireFromString("10.00"))
		assert.ErrorIs(t, err, models.ErrUserNotFound)
	})
}
