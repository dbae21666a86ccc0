package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payout is the ledger entry produced once per bet at settlement. Amount is
// signed: positive for net winnings credited, negative for a forfeited stake.
// Never mutated after creation.
type Payout struct {
	ID         int64           `db:"id" json:"id"`
	BetID      int64           `db:"bet_id" json:"bet_id"`
	UserID     int64           `db:"user_id" json:"user_id"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	PayoutDate time.Time       `db:"payout_date" json:"payout_date"`
}
