package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

const defaultBetListLimit = 50

func parseID(c *fiber.Ctx, name string) (int64, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return int64(id), nil
}

type createUserRequest struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (s *Server) createUser(c *fiber.Ctx) error {
	var req createUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	user, err := s.userService.CreateUser(c.Context(), req.Username, req.FirstName, req.LastName)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (s *Server) getUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	user, err := s.userService.GetUserByID(c.Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(user)
}

func (s *Server) getUserBets(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	limit := c.QueryInt("limit", defaultBetListLimit)
	bets, err := s.bettingService.GetBetsByUser(c.Context(), id, limit)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(bets)
}

func (s *Server) getUserPayouts(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	payouts, err := s.payoutService.GetPayoutsByUser(c.Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(payouts)
}

type createTeamRequest struct {
	Name        string   `json:"team_name"`
	SquadList   []string `json:"squad_list"`
	Description string   `json:"description"`
}

func (s *Server) createTeam(c *fiber.Ctx) error {
	var req createTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	team, err := s.teamService.CreateTeam(c.Context(), req.Name, req.SquadList, req.Description)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(team)
}

func (s *Server) listTeams(c *fiber.Ctx) error {
	teams, err := s.teamService.GetTeams(c.Context())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(teams)
}

func (s *Server) getTeam(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	team, err := s.teamService.GetTeamByID(c.Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(team)
}

type createEventRequest struct {
	Name         string    `json:"event_name"`
	EventDate    time.Time `json:"event_date"`
	EventType    string    `json:"event_type"`
	FirstTeamID  int64     `json:"first_team_id"`
	SecondTeamID int64     `json:"second_team_id"`
}

func (s *Server) createEvent(c *fiber.Ctx) error {
	var req createEventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	event, err := s.eventService.CreateEvent(c.Context(), req.Name, req.EventDate, req.EventType, req.FirstTeamID, req.SecondTeamID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

func (s *Server) listOngoingEvents(c *fiber.Ctx) error {
	events, err := s.eventService.GetOngoingEvents(c.Context())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(events)
}

func (s *Server) getEvent(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	event, err := s.eventService.GetEventByID(c.Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(event)
}

type updateEventRequest struct {
	EndDate       *time.Time `json:"event_end_date"`
	WinningTeamID *int64     `json:"winning_team_id"`
}

func (s *Server) updateEvent(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req updateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	event, err := s.eventService.UpdateEvent(c.Context(), id, req.EndDate, req.WinningTeamID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(event)
}

func (s *Server) getEventOdds(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	odds, err := s.eventService.GetEventOdds(c.Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(odds)
}

type placeBetRequest struct {
	UserID    int64           `json:"user_id"`
	EventID   int64           `json:"event_id"`
	WinTeamID int64           `json:"win_team_id"`
	Amount    decimal.Decimal `json:"amount"`
}

func (s *Server) placeBet(c *fiber.Ctx) error {
	var req placeBetRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	bet, err := s.bettingService.PlaceBet(c.Context(), req.UserID, req.EventID, req.WinTeamID, req.Amount)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(bet)
}

func (s *Server) getBet(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	bet, err := s.bettingService.GetBetByID(c.Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(bet)
}

func (s *Server) getPayout(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	payout, err := s.payoutService.GetPayoutByID(c.Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(payout)
}
