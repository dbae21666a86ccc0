package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bet represents a user's wager on one side of an event. Odds holds the value
// captured at acceptance time, not a live reference; settlement pays out
// against it regardless of where the pair moved afterwards. Immutable after
// creation.
type Bet struct {
	ID        int64           `db:"id" json:"id"`
	UserID    int64           `db:"user_id" json:"user_id"`
	EventID   int64           `db:"event_id" json:"event_id"`
	WinTeamID int64           `db:"win_team_id" json:"win_team_id"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	Odds      decimal.Decimal `db:"odds" json:"odds"`
	BetDate   time.Time       `db:"bet_date" json:"bet_date"`
}

// NewBet constructs a bet, enforcing stake positivity. Odds must be the value
// quoted for the backed side at the moment of acceptance.
func NewBet(userID, eventID, winTeamID int64, amount, odds decimal.Decimal, betDate time.Time) (*Bet, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidStake
	}
	return &Bet{
		UserID:    userID,
		EventID:   eventID,
		WinTeamID: winTeamID,
		Amount:    amount,
		Odds:      odds,
		BetDate:   betDate,
	}, nil
}
