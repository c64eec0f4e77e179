/**
 * @description
 * API Route definitions.
 * Wires the pipeline (catalog → matcher → store → services) and assigns
 * handlers to router groups.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend/internal/api/handlers
 * - backend/internal/services
 */

package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gridline-project/backend/internal/api/handlers"
	"github.com/gridline-project/backend/internal/catalog"
	"github.com/gridline-project/backend/internal/config"
	"github.com/gridline-project/backend/internal/matcher"
	"github.com/gridline-project/backend/internal/services"
	"github.com/gridline-project/backend/internal/store"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, db *gorm.DB, rdb *redis.Client, cfg *config.Config) {
	// 1. Initialize the pipeline
	cat := catalog.New(db, rdb, cfg.Odds.CacheTTL)
	match := matcher.New(cat, cfg.Odds.MatchWindowDays)
	oddsStore := store.New(store.NewGormRepository(db), cat, rdb, cfg.Odds.MaxHistory)

	// 2. Initialize Services
	gameService := services.NewGameService(db, cat, cfg)
	oddsService := services.NewOddsService(db, rdb, oddsStore, match, gameService, cfg.Odds.CacheTTL)

	// 3. Initialize Handlers
	oddsHandler := handlers.NewOddsHandler(oddsService)
	gamesHandler := handlers.NewGamesHandler(gameService, oddsService)

	// 4. Define Routes
	api := app.Group("/api")
	v1 := api.Group("/v1")

	v1.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	odds := v1.Group("/odds")
	odds.Get("/game/:gameID", oddsHandler.GetGameOdds)
	odds.Get("/best/:gameID/:market/:side", oddsHandler.GetBestPrice)
	odds.Get("/compare/:gameID/:market", oddsHandler.GetComparison)
	odds.Get("/history/:gameID/:source", oddsHandler.GetHistory)
	odds.Get("/props/players/:gameID", oddsHandler.GetPlayerProps)
	odds.Get("/movements/today", oddsHandler.GetTodaysMovements)
	odds.Post("/ingest/:source", oddsHandler.Ingest)

	games := v1.Group("/games")
	games.Get("/today", gamesHandler.GetToday)
	games.Get("/date/:date", gamesHandler.GetByDate)
	games.Get("/week/:week/:season", gamesHandler.GetByWeek)
	games.Get("/upcoming/week", gamesHandler.GetUpcomingWeek)
	games.Get("/team/:teamName", gamesHandler.GetByTeam)
	games.Get("/:gameID", gamesHandler.GetGame)
}
