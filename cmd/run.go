package cmd

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"bookmaker/api"
	"bookmaker/cache"
	"bookmaker/config"
	"bookmaker/database"
	"bookmaker/events"
	"bookmaker/messaging"
	"bookmaker/metrics"
	"bookmaker/repository"
	"bookmaker/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()

	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	}

	log.Info("Starting bookmaker core...")

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	engine := service.NewOddsEngine(cfg.Odds, nil)

	eventService := service.NewEventService(uowFactory, engine)
	bettingService := service.NewBettingService(uowFactory, engine)
	payoutService := service.NewPayoutService(uowFactory)
	userService := service.NewUserService(uowFactory, cfg.StartingBalance)
	teamService := service.NewTeamService(uowFactory)

	// Odds snapshot cache, fed from the domain bus
	if cfg.RedisAddr != "" {
		log.Info("Connecting to redis...")
		rdb, err := cache.ConnectRedis(cfg.RedisAddr)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer rdb.Close()

		cache.NewOddsCache(rdb).SubscribeTo(eventBus)
	}

	// Outbox publisher drains committed events to Kafka
	if len(cfg.KafkaBrokers) > 0 {
		log.Info("Connecting to kafka...")
		producer, err := messaging.NewSyncProducer(cfg.KafkaBrokers)
		if err != nil {
			return fmt.Errorf("failed to connect to kafka: %w", err)
		}
		defer producer.Close()

		publisher := messaging.NewOutboxPublisher(repository.NewOutboxRepository(db), producer)
		go publisher.Start(ctx)
	}

	if cfg.MetricsAddr != "" {
		m := metrics.NewMetrics()
		m.SubscribeTo(eventBus)
		go metrics.Serve(ctx, cfg.MetricsAddr)
	}

	server := api.NewServer(eventService, bettingService, payoutService, userService, teamService)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Listen(ctx, cfg.HTTPAddr)
	}()

	log.WithField("environment", cfg.Environment).Info("Bookmaker core is running")
	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Info("Shutdown completed")
	}

	return nil
}
