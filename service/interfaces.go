package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"bookmaker/events"
	"bookmaker/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by id
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByUsername retrieves a user by username
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// Create persists a new user
	Create(ctx context.Context, user *models.User) error

	// AddBalance applies a signed delta to a user's balance atomically and
	// returns the new balance
	AddBalance(ctx context.Context, userID int64, delta decimal.Decimal) (decimal.Decimal, error)
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	// Create persists a new team
	Create(ctx context.Context, team *models.Team) error

	// GetByID retrieves a team by id
	GetByID(ctx context.Context, id int64) (*models.Team, error)

	// GetAll returns all teams
	GetAll(ctx context.Context) ([]*models.Team, error)
}

// EventRepository defines the interface for event data access
type EventRepository interface {
	// Create persists a new event
	Create(ctx context.Context, event *models.Event) error

	// GetByID retrieves an event by id
	GetByID(ctx context.Context, id int64) (*models.Event, error)

	// GetByIDForUpdate retrieves an event by id holding a row lock for the
	// duration of the transaction
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Event, error)

	// Update updates an event's end date, winner and status
	Update(ctx context.Context, event *models.Event) error

	// GetOngoing returns all events still accepting bets
	GetOngoing(ctx context.Context) ([]*models.Event, error)
}

// OddsRepository defines the interface for odds pair data access
type OddsRepository interface {
	// Create persists a new odds pair
	Create(ctx context.Context, pair *models.OddsPair) error

	// GetByEventID retrieves the odds pair for an event
	GetByEventID(ctx context.Context, eventID int64) (*models.OddsPair, error)

	// GetByEventIDForUpdate retrieves the odds pair for an event holding a
	// row lock, serializing concurrent read-modify-write cycles
	GetByEventIDForUpdate(ctx context.Context, eventID int64) (*models.OddsPair, error)

	// Update writes the pair's current values back
	Update(ctx context.Context, pair *models.OddsPair) error
}

// BetRepository defines the interface for bet data access
type BetRepository interface {
	// Create creates a new bet record
	Create(ctx context.Context, bet *models.Bet) error

	// GetByID retrieves a bet by its ID
	GetByID(ctx context.Context, id int64) (*models.Bet, error)

	// GetByEvent returns every bet referencing an event
	GetByEvent(ctx context.Context, eventID int64) ([]*models.Bet, error)

	// GetByUser returns bets for a specific user, newest first
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.Bet, error)

	// Delete removes a bet
	Delete(ctx context.Context, id int64) error
}

// PayoutRepository defines the interface for payout ledger data access
type PayoutRepository interface {
	// Create creates a new payout entry
	Create(ctx context.Context, payout *models.Payout) error

	// GetByID retrieves a payout by its ID
	GetByID(ctx context.Context, id int64) (*models.Payout, error)

	// GetByUser returns all payouts for a user, newest first
	GetByUser(ctx context.Context, userID int64) ([]*models.Payout, error)
}

// OutboxRepository defines the interface for the transactional outbox
type OutboxRepository interface {
	// Create inserts an outbox event within the unit of work's transaction
	Create(ctx context.Context, event *models.OutboxEvent) error
}

// EventService defines the interface for event lifecycle operations
type EventService interface {
	// CreateEvent creates an event together with its initial odds pair as
	// one transactional operation
	CreateEvent(ctx context.Context, name string, eventDate time.Time, eventType string, firstTeamID, secondTeamID int64) (*models.Event, error)

	// UpdateEvent applies an end date if present and runs settlement when a
	// winning team is supplied
	UpdateEvent(ctx context.Context, eventID int64, endDate *time.Time, winningTeamID *int64) (*models.Event, error)

	// GetEventByID retrieves an event by id
	GetEventByID(ctx context.Context, eventID int64) (*models.Event, error)

	// GetOngoingEvents returns all events still accepting bets
	GetOngoingEvents(ctx context.Context) ([]*models.Event, error)

	// GetEventOdds returns the current odds pair for an event
	GetEventOdds(ctx context.Context, eventID int64) (*models.OddsPair, error)
}

// BettingService defines the interface for the bet acceptance pipeline
type BettingService interface {
	// PlaceBet validates the wager, captures the current odds for the backed
	// side, persists the bet and adjusts the odds, all in one transaction
	PlaceBet(ctx context.Context, userID, eventID, teamID int64, amount decimal.Decimal) (*models.Bet, error)

	// GetBetByID retrieves a bet by id
	GetBetByID(ctx context.Context, betID int64) (*models.Bet, error)

	// GetBetsByUser returns a user's bets, newest first
	GetBetsByUser(ctx context.Context, userID int64, limit int) ([]*models.Bet, error)
}

// PayoutService defines the interface for payout reads
type PayoutService interface {
	// GetPayoutsByUser returns all payouts for a user, newest first
	GetPayoutsByUser(ctx context.Context, userID int64) ([]*models.Payout, error)

	// GetPayoutByID retrieves a payout by id
	GetPayoutByID(ctx context.Context, payoutID int64) (*models.Payout, error)
}

// UserService defines the interface for user operations
type UserService interface {
	// CreateUser creates a new user with the configured starting balance
	CreateUser(ctx context.Context, username, firstName, lastName string) (*models.User, error)

	// GetUserByID retrieves a user by id
	GetUserByID(ctx context.Context, userID int64) (*models.User, error)
}

// TeamService defines the interface for team operations
type TeamService interface {
	// CreateTeam creates a new team
	CreateTeam(ctx context.Context, name string, squadList []string, description string) (*models.Team, error)

	// GetTeamByID retrieves a team by id
	GetTeamByID(ctx context.Context, teamID int64) (*models.Team, error)

	// GetTeams returns all teams
	GetTeams(ctx context.Context) ([]*models.Team, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	TeamRepository() TeamRepository
	EventRepository() EventRepository
	OddsRepository() OddsRepository
	BetRepository() BetRepository
	PayoutRepository() PayoutRepository
	OutboxRepository() OutboxRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
