package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"bookmaker/database"
	"bookmaker/events"
	"bookmaker/service"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus
	userRepo         service.UserRepository
	teamRepo         service.TeamRepository
	eventRepo        service.EventRepository
	oddsRepo         service.OddsRepository
	betRepo          service.BetRepository
	payoutRepo       service.PayoutRepository
	outboxRepo       service.OutboxRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories with the transaction
	u.userRepo = newUserRepositoryWithTx(tx)
	u.teamRepo = newTeamRepositoryWithTx(tx)
	u.eventRepo = newEventRepositoryWithTx(tx)
	u.oddsRepo = newOddsRepositoryWithTx(tx)
	u.betRepo = newBetRepositoryWithTx(tx)
	u.payoutRepo = newPayoutRepositoryWithTx(tx)
	u.outboxRepo = newOutboxRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Flush pending events after successful commit
	if u.transactionalBus != nil {
		u.transactionalBus.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	// Discard pending events on rollback
	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

// UserRepository returns the user repository for this unit of work
func (u *unitOfWork) UserRepository() service.UserRepository {
	if u.userRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.userRepo
}

// TeamRepository returns the team repository for this unit of work
func (u *unitOfWork) TeamRepository() service.TeamRepository {
	if u.teamRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.teamRepo
}

// EventRepository returns the event repository for this unit of work
func (u *unitOfWork) EventRepository() service.EventRepository {
	if u.eventRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.eventRepo
}

// OddsRepository returns the odds repository for this unit of work
func (u *unitOfWork) OddsRepository() service.OddsRepository {
	if u.oddsRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.oddsRepo
}

// BetRepository returns the bet repository for this unit of work
func (u *unitOfWork) BetRepository() service.BetRepository {
	if u.betRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.betRepo
}

// PayoutRepository returns the payout repository for this unit of work
func (u *unitOfWork) PayoutRepository() service.PayoutRepository {
	if u.payoutRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.payoutRepo
}

// OutboxRepository returns the outbox repository for this unit of work
func (u *unitOfWork) OutboxRepository() service.OutboxRepository {
	if u.outboxRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.outboxRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
