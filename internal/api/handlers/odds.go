/**
 * @description
 * Odds API Handlers.
 * Exposes the current board, best price, cross-book comparison, history
 * replay, today's line movements, and the synchronous ingest endpoint.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend/internal/services
 */

package handlers

import (
	"encoding/json"
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/gridline-project/backend/internal/services"
	"github.com/gridline-project/backend/internal/sources"
)

// pathParam returns a path parameter with percent-encoding undone; Fiber
// leaves params escaped, which would make sources with a space in their
// name ("ESPN BET") unreachable.
func pathParam(c *fiber.Ctx, name string) string {
	raw := c.Params(name)
	if unescaped, err := url.PathUnescape(raw); err == nil {
		return unescaped
	}
	return raw
}

type OddsHandler struct {
	Service *services.OddsService
}

func NewOddsHandler(service *services.OddsService) *OddsHandler {
	return &OddsHandler{Service: service}
}

// GetGameOdds returns the current record per source for a game
// GET /api/v1/odds/game/:gameID
func (h *OddsHandler) GetGameOdds(c *fiber.Ctx) error {
	recs, err := h.Service.GetCurrentOdds(c.Context(), c.Params("gameID"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch odds",
		})
	}
	return c.JSON(recs)
}

// GetBestPrice returns the most favorable current quote for a market/side
// GET /api/v1/odds/best/:gameID/:market/:side
func (h *OddsHandler) GetBestPrice(c *fiber.Ctx) error {
	best, err := h.Service.GetBestPrice(c.Context(), c.Params("gameID"), c.Params("market"), c.Params("side"))
	if errors.Is(err, services.ErrNoPrices) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No prices available for this market",
		})
	}
	if errors.Is(err, services.ErrInvalidMarket) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch best price",
		})
	}
	return c.JSON(best)
}

// GetComparison returns one row per source for a market, keeping sources
// with a fully absent market visible as unavailable
// GET /api/v1/odds/compare/:gameID/:market
func (h *OddsHandler) GetComparison(c *fiber.Ctx) error {
	rows, err := h.Service.GetComparison(c.Context(), c.Params("gameID"), c.Params("market"))
	if errors.Is(err, services.ErrInvalidMarket) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch comparison",
		})
	}
	return c.JSON(rows)
}

// GetHistory replays the capped history for one (game, source) pair
// GET /api/v1/odds/history/:gameID/:source
func (h *OddsHandler) GetHistory(c *fiber.Ctx) error {
	view, err := h.Service.GetHistory(c.Context(), c.Params("gameID"), pathParam(c, "source"))
	if errors.Is(err, services.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Odds not found",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch history",
		})
	}
	return c.JSON(view)
}

// GetPlayerProps returns the stored player props per source for a game
// GET /api/v1/odds/props/players/:gameID
func (h *OddsHandler) GetPlayerProps(c *fiber.Ctx) error {
	rows, err := h.Service.GetPlayerProps(c.Context(), c.Params("gameID"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch player props",
		})
	}
	return c.JSON(rows)
}

// GetTodaysMovements returns today's records with a moved tracked line
// GET /api/v1/odds/movements/today
func (h *OddsHandler) GetTodaysMovements(c *fiber.Ctx) error {
	recs, err := h.Service.GetTodaysMovements(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch movements",
		})
	}
	return c.JSON(recs)
}

// ingestRequest is the body of the synchronous ingest endpoint. Either a
// game id or a team-name pair must be present.
type ingestRequest struct {
	GameID   string          `json:"game_id"`
	HomeTeam string          `json:"home_team"`
	AwayTeam string          `json:"away_team"`
	Kind     string          `json:"kind"`
	Payload  json.RawMessage `json:"payload"`
}

// Ingest accepts one raw quote for a source
// POST /api/v1/odds/ingest/:source
func (h *OddsHandler) Ingest(c *fiber.Ctx) error {
	var req ingestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	kind := sources.Kind(req.Kind)
	if kind == "" {
		kind = sources.KindBookTable
	}
	source := pathParam(c, "source")

	quote := sources.RawQuote{
		Kind:     kind,
		Source:   source,
		HomeTeam: req.HomeTeam,
		AwayTeam: req.AwayTeam,
		Payload:  req.Payload,
	}

	var (
		rejection *services.Rejection
		err       error
	)
	if req.GameID != "" {
		_, rejection, err = h.Service.IngestForGame(c.Context(), req.GameID, source, quote)
	} else {
		_, rejection, err = h.Service.IngestQuote(c.Context(), quote)
	}

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Ingest failed",
		})
	}
	if rejection != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"status":   "rejected",
			"rejected": rejection,
		})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "ok"})
}
