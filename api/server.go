package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"bookmaker/models"
	"bookmaker/service"
)

// Server is the HTTP surface over the service layer
type Server struct {
	app            *fiber.App
	eventService   service.EventService
	bettingService service.BettingService
	payoutService  service.PayoutService
	userService    service.UserService
	teamService    service.TeamService
}

// NewServer wires all routes onto a fiber app
func NewServer(
	eventService service.EventService,
	bettingService service.BettingService,
	payoutService service.PayoutService,
	userService service.UserService,
	teamService service.TeamService,
) *Server {
	s := &Server{
		app:            fiber.New(),
		eventService:   eventService,
		bettingService: bettingService,
		payoutService:  payoutService,
		userService:    userService,
		teamService:    teamService,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	s.app.Post("/users", s.createUser)
	s.app.Get("/users/:id", s.getUser)
	s.app.Get("/users/:id/bets", s.getUserBets)
	s.app.Get("/users/:id/payouts", s.getUserPayouts)

	s.app.Post("/teams", s.createTeam)
	s.app.Get("/teams", s.listTeams)
	s.app.Get("/teams/:id", s.getTeam)

	s.app.Post("/events", s.createEvent)
	s.app.Get("/events", s.listOngoingEvents)
	s.app.Get("/events/:id", s.getEvent)
	s.app.Patch("/events/:id", s.updateEvent)
	s.app.Get("/events/:id/odds", s.getEventOdds)

	s.app.Post("/bets", s.placeBet)
	s.app.Get("/bets/:id", s.getBet)

	s.app.Get("/payouts/:id", s.getPayout)
}

// Listen serves until the context is cancelled
func (s *Server) Listen(ctx context.Context, addr string) error {
	go func() {
		<-ctx.Done()
		if err := s.app.Shutdown(); err != nil {
			log.WithError(err).Warn("HTTP server shutdown failed")
		}
	}()

	log.WithField("addr", addr).Info("HTTP server listening")
	return s.app.Listen(addr)
}

// errorResponse maps domain sentinels onto HTTP statuses
func errorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrTeamNotFound),
		errors.Is(err, models.ErrEventNotFound),
		errors.Is(err, models.ErrBetNotFound),
		errors.Is(err, models.ErrPayoutNotFound),
		errors.Is(err, models.ErrOddsNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})

	case errors.Is(err, models.ErrEventCompleted):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})

	case errors.Is(err, models.ErrTeamNotInEvent),
		errors.Is(err, models.ErrInvalidStake),
		errors.Is(err, models.ErrInvalidOdds),
		errors.Is(err, models.ErrWinnerNotInEvent),
		errors.Is(err, models.ErrWinnerRequired):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	log.WithError(err).Error("Request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}
