package events

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"bookmaker/models"
)

// EventType represents different types of domain events in the system
type EventType string

const (
	EventTypeEventCreated  EventType = "event_created"
	EventTypeOddsChanged   EventType = "odds_changed"
	EventTypeBetPlaced     EventType = "bet_placed"
	EventTypeEventSettled  EventType = "event_settled"
	EventTypeBalanceChange EventType = "balance_change"
)

// Event is the base interface for all domain events
type Event interface {
	Type() EventType
}

// EventCreatedEvent is emitted when a new betting event and its odds pair are created
type EventCreatedEvent struct {
	EventID    int64
	Name       string
	FirstOdds  decimal.Decimal
	SecondOdds decimal.Decimal
}

func (e EventCreatedEvent) Type() EventType {
	return EventTypeEventCreated
}

// OddsChangedEvent is emitted whenever an accepted bet moves an odds pair
type OddsChangedEvent struct {
	EventID    int64
	Side       models.Side
	FirstOdds  decimal.Decimal
	SecondOdds decimal.Decimal
}

func (e OddsChangedEvent) Type() EventType {
	return EventTypeOddsChanged
}

// BetPlacedEvent is emitted when a bet has been accepted and persisted
type BetPlacedEvent struct {
	BetID   int64
	UserID  int64
	EventID int64
	Side    models.Side
	Amount  decimal.Decimal
	Odds    decimal.Decimal
}

func (e BetPlacedEvent) Type() EventType {
	return EventTypeBetPlaced
}

// EventSettledEvent is emitted after an event's settlement transaction commits
type EventSettledEvent struct {
	EventID       int64
	WinningTeamID int64
	BetCount      int
	TotalPaidOut  decimal.Decimal
}

func (e EventSettledEvent) Type() EventType {
	return EventTypeEventSettled
}

// BalanceChangeEvent represents a settlement credit or debit on a user balance
type BalanceChangeEvent struct {
	UserID       int64
	BetID        int64
	ChangeAmount decimal.Decimal
	NewBalance   decimal.Decimal
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking
	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler)
	}
}

// TransactionalBus stashes events published by a unit of work until its
// transaction commits, then flushes them to the underlying bus. Discarded on
// rollback, so subscribers never see events for state that was never written.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush is called after a successful DB commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	// Events are processed independently of the transaction lifecycle, so a
	// background context avoids issues with request context expiration
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard is called after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
