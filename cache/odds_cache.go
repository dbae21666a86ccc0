package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"bookmaker/events"
)

// snapshotTTL bounds staleness if an invalidation is lost
const snapshotTTL = 10 * time.Minute

// ConnectRedis creates and pings a redis client
func ConnectRedis(addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return rdb, nil
}

// OddsSnapshot is the cached view of an event's current odds pair
type OddsSnapshot struct {
	EventID    int64           `json:"event_id"`
	FirstOdds  decimal.Decimal `json:"first_win_odds"`
	SecondOdds decimal.Decimal `json:"second_win_odds"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// OddsCache keeps the latest odds pair per event in redis so read traffic
// never touches the odds row that bet acceptance locks.
type OddsCache struct {
	rdb *redis.Client
}

// NewOddsCache creates a new odds cache
func NewOddsCache(rdb *redis.Client) *OddsCache {
	return &OddsCache{rdb: rdb}
}

func keyEvent(eventID int64) string {
	return "odds:event:" + strconv.FormatInt(eventID, 10)
}

// Get returns the cached snapshot for an event, or found=false on a miss
func (c *OddsCache) Get(ctx context.Context, eventID int64) (*OddsSnapshot, bool, error) {
	b, err := c.rdb.Get(ctx, keyEvent(eventID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read odds snapshot for event %d: %w", eventID, err)
	}

	var snapshot OddsSnapshot
	if err := json.Unmarshal(b, &snapshot); err != nil {
		return nil, false, fmt.Errorf("failed to decode odds snapshot for event %d: %w", eventID, err)
	}
	return &snapshot, true, nil
}

// Set stores the snapshot for an event
func (c *OddsCache) Set(ctx context.Context, snapshot *OddsSnapshot) error {
	b, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode odds snapshot for event %d: %w", snapshot.EventID, err)
	}

	if err := c.rdb.Set(ctx, keyEvent(snapshot.EventID), b, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("failed to write odds snapshot for event %d: %w", snapshot.EventID, err)
	}
	return nil
}

// Invalidate drops the snapshot for an event
func (c *OddsCache) Invalidate(ctx context.Context, eventID int64) error {
	if err := c.rdb.Del(ctx, keyEvent(eventID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate odds snapshot for event %d: %w", eventID, err)
	}
	return nil
}

// SubscribeTo wires the cache to the domain event bus: snapshots are written
// when odds are created or move, and dropped when the event settles.
func (c *OddsCache) SubscribeTo(bus *events.Bus) {
	bus.Subscribe(events.EventTypeEventCreated, func(ctx context.Context, e events.Event) {
		created, ok := e.(events.EventCreatedEvent)
		if !ok {
			return
		}
		err := c.Set(ctx, &OddsSnapshot{
			EventID:    created.EventID,
			FirstOdds:  created.FirstOdds,
			SecondOdds: created.SecondOdds,
			UpdatedAt:  time.Now(),
		})
		if err != nil {
			log.WithError(err).WithField("eventID", created.EventID).Warn("Failed to cache initial odds")
		}
	})

	bus.Subscribe(events.EventTypeOddsChanged, func(ctx context.Context, e events.Event) {
		changed, ok := e.(events.OddsChangedEvent)
		if !ok {
			return
		}
		err := c.Set(ctx, &OddsSnapshot{
			EventID:    changed.EventID,
			FirstOdds:  changed.FirstOdds,
			SecondOdds: changed.SecondOdds,
			UpdatedAt:  time.Now(),
		})
		if err != nil {
			log.WithError(err).WithField("eventID", changed.EventID).Warn("Failed to cache odds change")
		}
	})

	bus.Subscribe(events.EventTypeEventSettled, func(ctx context.Context, e events.Event) {
		settled, ok := e.(events.EventSettledEvent)
		if !ok {
			return
		}
		if err := c.Invalidate(ctx, settled.EventID); err != nil {
			log.WithError(err).WithField("eventID", settled.EventID).Warn("Failed to invalidate odds snapshot")
		}
	})
}
