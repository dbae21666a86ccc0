package events

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"bookmaker/models"
)

func TestBus_Emit(t *testing.T) {
	bus := NewBus()
	received := make(chan Event, 1)

	bus.Subscribe(EventTypeBetPlaced, func(ctx context.Context, e Event) {
		received <- e
	})

	bus.Emit(context.Background(), BetPlacedEvent{
		BetID:  42,
		Side:   models.SideFirst,
		Amount: decimal.RequireFromString("100.00"),
	})

	select {
	case e := <-received:
		placed, ok := e.(BetPlacedEvent)
		assert.True(t, ok)
		assert.Equal(t, int64(42), placed.BetID)
	case <-time.After(time.Second):
		t.Fatal("handler never invoked")
	}
}

func TestBus_EmitIgnoresOtherTypes(t *testing.T) {
	bus := NewBus()
	received := make(chan Event, 1)

	bus.Subscribe(EventTypeEventSettled, func(ctx context.Context, e Event) {
		received <- e
	})

	bus.Emit(context.Background(), BetPlacedEvent{BetID: 42})

	select {
	case <-received:
		t.Fatal("handler invoked for unrelated event type")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTransactionalBus_FlushAfterCommit(t *testing.T) {
	bus := NewBus()
	received := make(chan Event, 2)
	bus.Subscribe(EventTypeOddsChanged, func(ctx context.Context, e Event) {
		received <- e
	})

	txBus := NewTransactionalBus(bus)
	txBus.Publish(OddsChangedEvent{EventID: 1})
	txBus.Publish(OddsChangedEvent{EventID: 2})

	// Nothing reaches subscribers until the flush
	select {
	case <-received:
		t.Fatal("event leaked before flush")
	case <-time.After(50 * time.Millisecond):
	}

	txBus.Flush(context.Background())

	for i := 0; i < 2; i++ {
		select {
		case <-received:
		case <-time.After(time.Second):
			t.Fatal("flushed event never arrived")
		}
	}
}

func TestTransactionalBus_DiscardDropsPending(t *testing.T) {
	bus := NewBus()
	received := make(chan Event, 1)
	bus.Subscribe(EventTypeOddsChanged, func(ctx context.Context, e Event) {
		received <- e
	})

	txBus := NewTransactionalBus(bus)
	txBus.Publish(OddsChangedEvent{EventID: 1})
	txBus.Discard()
	txBus.Flush(context.Background())

	select {
	case <-received:
		t.Fatal("discarded event was delivered")
	case <-time.After(50 * time.Millisecond):
	}
}
