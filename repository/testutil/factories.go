package testutil

import (
	"time"

	"github.com/shopspring/decimal"

	"bookmaker/models"
)

// CreateTestUser creates a test user with default values
func CreateTestUser(username string) *models.User {
	return &models.User{
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Balance:   decimal.RequireFromString("1000.00"),
		Active:    true,
	}
}

// CreateTestUserWithBalance creates a test user with a specific balance
func CreateTestUserWithBalance(username string, balance decimal.Decimal) *models.User {
	user := CreateTestUser(username)
	user.Balance = balance
	return user
}

// CreateTestTeam creates a test team with default values
func CreateTestTeam(name string) *models.Team {
	return &models.Team{
		Name:        name,
		SquadList:   []string{"alice", "bob", "carol"},
		Description: "test team",
	}
}

// CreateTestEvent creates an ongoing test event between two teams
func CreateTestEvent(name string, firstTeamID, secondTeamID int64) *models.Event {
	return &models.Event{
		Name:         name,
		EventDate:    time.Now().Add(24 * time.Hour),
		EventType:    "match",
		Status:       models.EventStatusOngoing,
		FirstTeamID:  firstTeamID,
		SecondTeamID: secondTeamID,
	}
}

// CreateTestOddsPair creates an odds pair for an event
func CreateTestOddsPair(eventID int64, first, second string) *models.OddsPair {
	return &models.OddsPair{
		EventID:    eventID,
		FirstOdds:  decimal.RequireFromString(first),
		SecondOdds: decimal.RequireFromString(second),
	}
}

// CreateTestBet creates a test bet with a captured odds value
func CreateTestBet(userID, eventID, winTeamID int64, amount, odds string) *models.Bet {
	return &models.Bet{
		UserID:    userID,
		EventID:   eventID,
		WinTeamID: winTeamID,
		Amount:    decimal.RequireFromString(amount),
		Odds:      decimal.RequireFromString(odds),
		BetDate:   time.Now(),
	}
}

// CreateTestPayout creates a test payout ledger entry
func CreateTestPayout(userID, betID int64, amount string) *models.Payout {
	return &models.Payout{
		UserID:     userID,
		BetID:      betID,
		Amount:     decimal.RequireFromString(amount),
		PayoutDate: time.Now(),
	}
}
