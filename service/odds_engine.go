package service

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"bookmaker/config"
	"bookmaker/models"
)

var one = decimal.NewFromInt(1)

// OddsEngine generates an event's starting odds and moves them as bets
// arrive. All policy knobs live in the OddsSettings passed at construction.
// Pure computation over decimals; persistence is the caller's job.
type OddsEngine struct {
	cfg config.OddsSettings

	mu  sync.Mutex
	rng *rand.Rand
}

// NewOddsEngine creates an odds engine. A nil rng falls back to a
// time-seeded source; tests inject a fixed seed to pin the draw.
func NewOddsEngine(cfg config.OddsSettings, rng *rand.Rand) *OddsEngine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &OddsEngine{cfg: cfg, rng: rng}
}

// InitialPair generates the starting odds pair for a new event. The first
// side is drawn uniformly from [InitialMin, InitialMax] and the second side
// derived so the implied probabilities sum to 1+Margin. Both sides are
// floored at the configured minimum after rounding.
func (e *OddsEngine) InitialPair(eventID int64) *models.OddsPair {
	e.mu.Lock()
	draw := e.rng.Float64()
	e.mu.Unlock()

	span := e.cfg.InitialMax.Sub(e.cfg.InitialMin)
	first := e.cfg.InitialMin.Add(span.Mul(decimal.NewFromFloat(draw))).Round(2)
	first = e.floored(first)

	// second = (1 / (1 - margin)) * (1 / first), keeping the book's total
	// implied probability above 1
	second := one.Div(one.Sub(e.cfg.Margin)).Div(first).Round(2)
	second = e.floored(second)

	return &models.OddsPair{
		EventID:    eventID,
		FirstOdds:  first,
		SecondOdds: second,
	}
}

// Adjust shrinks the odds of the side just backed, proportional to stake
// size. The opposite side is left untouched. The mutation must be persisted
// in the same transaction as the bet that caused it.
func (e *OddsEngine) Adjust(pair *models.OddsPair, side models.Side, stake decimal.Decimal) error {
	factor := stake.Div(e.cfg.AdjustmentUnit).Mul(e.cfg.AdjustmentRate)
	adjusted := pair.Odds(side).Mul(one.Sub(factor))
	adjusted = e.floored(adjusted.Round(2))

	if err := pair.SetOdds(side, adjusted); err != nil {
		return fmt.Errorf("failed to apply adjusted odds for event %d: %w", pair.EventID, err)
	}
	return nil
}

func (e *OddsEngine) floored(v decimal.Decimal) decimal.Decimal {
	if v.LessThan(e.cfg.Floor) {
		return e.cfg.Floor
	}
	return v
}
