package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"bookmaker/events"
)

// Metrics holds all Prometheus metrics for the bookmaker core
type Metrics struct {
	BetsPlacedTotal      *prometheus.CounterVec
	BetAmountTotal       prometheus.Counter
	OddsAdjustmentsTotal *prometheus.CounterVec
	EventsCreatedTotal   prometheus.Counter
	EventsSettledTotal   prometheus.Counter
	PayoutAmountTotal    prometheus.Counter
	SettledBetsTotal     prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default registry
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates metrics with a custom registry (useful for testing)
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		BetsPlacedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookmaker_bets_placed_total",
				Help: "Total number of bets accepted",
			},
			[]string{"side"},
		),
		BetAmountTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "bookmaker_bet_amount_total",
				Help: "Total stake of all accepted bets",
			},
		),
		OddsAdjustmentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookmaker_odds_adjustments_total",
				Help: "Total number of odds adjustments applied",
			},
			[]string{"side"},
		),
		EventsCreatedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "bookmaker_events_created_total",
				Help: "Total number of events opened for betting",
			},
		),
		EventsSettledTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "bookmaker_events_settled_total",
				Help: "Total number of events settled",
			},
		),
		PayoutAmountTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "bookmaker_payout_amount_total",
				Help: "Net amount paid out across settlements",
			},
		),
		SettledBetsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "bookmaker_settled_bets_total",
				Help: "Total number of bets resolved at settlement",
			},
		),
	}
}

// SubscribeTo records domain bus traffic into the counters
func (m *Metrics) SubscribeTo(bus *events.Bus) {
	bus.Subscribe(events.EventTypeBetPlaced, func(ctx context.Context, e events.Event) {
		placed, ok := e.(events.BetPlacedEvent)
		if !ok {
			return
		}
		m.BetsPlacedTotal.WithLabelValues(string(placed.Side)).Inc()
		amount, _ := placed.Amount.Float64()
		m.BetAmountTotal.Add(amount)
	})

	bus.Subscribe(events.EventTypeOddsChanged, func(ctx context.Context, e events.Event) {
		changed, ok := e.(events.OddsChangedEvent)
		if !ok {
			return
		}
		m.OddsAdjustmentsTotal.WithLabelValues(string(changed.Side)).Inc()
	})

	bus.Subscribe(events.EventTypeEventCreated, func(ctx context.Context, e events.Event) {
		m.EventsCreatedTotal.Inc()
	})

	bus.Subscribe(events.EventTypeEventSettled, func(ctx context.Context, e events.Event) {
		settled, ok := e.(events.EventSettledEvent)
		if !ok {
			return
		}
		m.EventsSettledTotal.Inc()
		m.SettledBetsTotal.Add(float64(settled.BetCount))
		paid, _ := settled.TotalPaidOut.Float64()
		m.PayoutAmountTotal.Add(paid)
	})
}

// Serve exposes /metrics until the context is cancelled
func Serve(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()

	log.WithField("addr", addr).Info("Metrics server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Error("Metrics server failed")
	}
}
