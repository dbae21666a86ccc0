package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side identifies one of the two sides of an event's odds pair
type Side string

const (
	SideFirst  Side = "first"
	SideSecond Side = "second"
)

// MinOdds is the hard floor for any quoted odds value. A wager is never
// quoted at or below break-even.
var MinOdds = decimal.RequireFromString("1.01")

// OddsPair holds the two live payout multipliers for an event. Exactly one
// pair exists per event, created atomically with it. Only the current
// snapshot is kept; mutations happen in place under the event's transaction.
type OddsPair struct {
	ID         int64           `db:"id" json:"id"`
	EventID    int64           `db:"event_id" json:"event_id"`
	FirstOdds  decimal.Decimal `db:"first_win_odds" json:"first_win_odds"`
	SecondOdds decimal.Decimal `db:"second_win_odds" json:"second_win_odds"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}

// Odds returns the current multiplier for a side
func (p *OddsPair) Odds(side Side) decimal.Decimal {
	if side == SideFirst {
		return p.FirstOdds
	}
	return p.SecondOdds
}

// SetOdds replaces the multiplier for a side, rejecting non-positive values.
// Callers apply the MinOdds floor before calling.
func (p *OddsPair) SetOdds(side Side, value decimal.Decimal) error {
	if value.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidOdds
	}
	if side == SideFirst {
		p.FirstOdds = value
	} else {
		p.SecondOdds = value
	}
	return nil
}
