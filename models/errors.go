package models

import "errors"

// Lookup misses
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrTeamNotFound   = errors.New("team not found")
	ErrEventNotFound  = errors.New("event not found")
	ErrBetNotFound    = errors.New("bet not found")
	ErrPayoutNotFound = errors.New("payout not found")
	ErrOddsNotFound   = errors.New("odds not configured for event")
)

// Validation failures
var (
	ErrTeamNotInEvent   = errors.New("team not in event")
	ErrInvalidStake     = errors.New("stake amount must be positive")
	ErrInvalidOdds      = errors.New("odds value must be positive")
	ErrWinnerNotInEvent = errors.New("winning team not in event")
	ErrEventCompleted   = errors.New("event already completed")

	// ErrWinnerRequired signals a caller-side contract violation: settlement
	// was invoked without a declared winner. The transaction is aborted with
	// state unchanged.
	ErrWinnerRequired = errors.New("settlement requires a winning team")
)
