package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a bettor with a running balance
type User struct {
	ID        int64           `db:"id" json:"id"`
	Username  string          `db:"username" json:"username"`
	FirstName string          `db:"first_name" json:"first_name"`
	LastName  string          `db:"last_name" json:"last_name"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
	Active    bool            `db:"active" json:"active"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
