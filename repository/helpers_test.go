package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"bookmaker/models"
	"bookmaker/repository/testutil"
)

// eventFixture is a persisted user, two teams and an ongoing event between them
type eventFixture struct {
	User       *models.User
	FirstTeam  *models.Team
	SecondTeam *models.Team
	Event      *models.Event
}

func seedEventFixture(t *testing.T, testDB *testutil.TestDatabase, name string) *eventFixture {
	t.Helper()
	ctx := context.Background()

	userRepo := NewUserRepository(testDB.DB)
	teamRepo := NewTeamRepository(testDB.DB)
	eventRepo := NewEventRepository(testDB.DB)

	user := testutil.CreateTestUser(name + "_user")
	require.NoError(t, userRepo.Create(ctx, user))

	first := testutil.CreateTestTeam(name + "_first")
	require.NoError(t, teamRepo.Create(ctx, first))

	second := testutil.CreateTestTeam(name + "_second")
	require.NoError(t, teamRepo.Create(ctx, second))

	event := testutil.CreateTestEvent(name, first.ID, second.ID)
	require.NoError(t, eventRepo.Create(ctx, event))

	return &eventFixture{
		User:       user,
		FirstTeam:  first,
		SecondTeam: second,
		Event:      event,
	}
}
