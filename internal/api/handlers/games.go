/**
 * @description
 * Games API Handlers.
 * Schedule lookups over the canonical game catalog, with current odds
 * attached to the single-game view.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend/internal/services
 */

package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gridline-project/backend/internal/services"
)

type GamesHandler struct {
	Games *services.GameService
	Odds  *services.OddsService
}

func NewGamesHandler(games *services.GameService, odds *services.OddsService) *GamesHandler {
	return &GamesHandler{Games: games, Odds: odds}
}

// GetToday returns today's non-completed games
// GET /api/v1/games/today
func (h *GamesHandler) GetToday(c *fiber.Ctx) error {
	games, err := h.Games.TodaysGames(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch today's games",
		})
	}
	return c.JSON(games)
}

// GetByDate returns games on one calendar day
// GET /api/v1/games/date/:date  (YYYY-MM-DD)
func (h *GamesHandler) GetByDate(c *fiber.Ctx) error {
	date, err := time.Parse("2006-01-02", c.Params("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid date format",
		})
	}
	games, err := h.Games.GamesByDate(c.Context(), date)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch games",
		})
	}
	return c.JSON(games)
}

// GetUpcomingWeek returns the next seven days of games
// GET /api/v1/games/upcoming/week
func (h *GamesHandler) GetUpcomingWeek(c *fiber.Ctx) error {
	games, err := h.Games.UpcomingWeek(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch upcoming games",
		})
	}
	return c.JSON(games)
}

// GetByTeam returns all games a team appears in
// GET /api/v1/games/team/:teamName
func (h *GamesHandler) GetByTeam(c *fiber.Ctx) error {
	games, err := h.Games.GamesByTeam(c.Context(), pathParam(c, "teamName"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch games",
		})
	}
	return c.JSON(games)
}

// GetByWeek returns one week's slate
// GET /api/v1/games/week/:week/:season
func (h *GamesHandler) GetByWeek(c *fiber.Ctx) error {
	week, err := strconv.Atoi(c.Params("week"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid week"})
	}
	season, err := strconv.Atoi(c.Params("season"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid season"})
	}

	games, err := h.Games.GamesByWeek(c.Context(), week, season)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch games",
		})
	}
	return c.JSON(games)
}

// GetGame returns one game with its current odds attached
// GET /api/v1/games/:gameID
func (h *GamesHandler) GetGame(c *fiber.Ctx) error {
	gameID := c.Params("gameID")

	game, err := h.Games.GetGame(c.Context(), gameID)
	if errors.Is(err, services.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Game not found",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch game",
		})
	}

	odds, err := h.Odds.GetCurrentOdds(c.Context(), gameID)
	if err != nil {
		// The game view still renders without its odds
		odds = nil
	}

	return c.JSON(fiber.Map{
		"game": game,
		"odds": odds,
	})
}
