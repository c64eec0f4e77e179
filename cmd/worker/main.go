/**
 * @description
 * Worker Service Entry Point.
 * Responsible for background ingestion:
 * 1. Syncing the game catalog from the scoreboard.
 * 2. Running periodic scatter/gather ingestion cycles over the enabled
 *    source adapters.
 *
 * @dependencies
 * - backend/internal/config
 * - backend/internal/db
 * - backend/internal/ingest
 * - backend/internal/sources
 * - backend/internal/services
 */

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gridline-project/backend/internal/catalog"
	"github.com/gridline-project/backend/internal/config"
	"github.com/gridline-project/backend/internal/db"
	"github.com/gridline-project/backend/internal/ingest"
	"github.com/gridline-project/backend/internal/logger"
	"github.com/gridline-project/backend/internal/matcher"
	"github.com/gridline-project/backend/internal/services"
	"github.com/gridline-project/backend/internal/sources"
	"github.com/gridline-project/backend/internal/store"
)

func main() {
	logger.Info("🔥 Starting Gridline Worker...")

	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	// 2. Connect DBs
	pgDB, err := db.ConnectPostgres(cfg)
	if err != nil {
		logger.Fatal("Postgres connection failed: %v", err)
	}

	redisClient, err := db.ConnectRedis(cfg)
	if err != nil {
		logger.Fatal("Redis connection failed: %v", err)
	}

	// 3. Build the pipeline
	cat := catalog.New(pgDB, redisClient, cfg.Odds.CacheTTL)
	match := matcher.New(cat, cfg.Odds.MatchWindowDays)
	oddsStore := store.New(store.NewGormRepository(pgDB), cat, redisClient, cfg.Odds.MaxHistory)
	gameService := services.NewGameService(pgDB, cat, cfg)
	oddsService := services.NewOddsService(pgDB, redisClient, oddsStore, match, gameService, cfg.Odds.CacheTTL)

	runner := ingest.NewRunner(buildAdapters(cfg), oddsService, cfg.Sources.IngestInterval)

	// 4. Context with Cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 5. Catalog sync loop: keeps the matcher's window fresh
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		if err := gameService.SyncSchedule(ctx); err != nil {
			logger.Error("Failed initial schedule sync: %v", err)
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := gameService.SyncSchedule(ctx); err != nil {
					logger.Error("Failed schedule sync: %v", err)
				}
			}
		}
	}()

	// 6. Ingestion loop
	go runner.Start(ctx)

	// 7. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	cancel()

	time.Sleep(1 * time.Second) // Let the in-flight cycle drain
	logger.Info("Worker exited.")
}

// buildAdapters instantiates the adapters named in ENABLED_ADAPTERS.
func buildAdapters(cfg *config.Config) []sources.Adapter {
	var adapters []sources.Adapter
	for _, name := range cfg.Sources.EnabledAdapters {
		switch sources.Kind(name) {
		case sources.KindOddsAPI:
			if cfg.Sources.OddsAPIKey == "" {
				logger.Info("⚠️ Skipping oddsapi adapter: no API key configured")
				continue
			}
			adapters = append(adapters, sources.NewOddsAPIAdapter(cfg))
		case sources.KindESPN:
			adapters = append(adapters, sources.NewESPNAdapter(cfg))
		case sources.KindBookTable:
			if cfg.Sources.BookTableURL == "" {
				logger.Info("⚠️ Skipping booktable adapter: no endpoint configured")
				continue
			}
			adapters = append(adapters, sources.NewBookTableAdapter(cfg))
		default:
			logger.Error("Unknown adapter %q in ENABLED_ADAPTERS", name)
		}
	}
	return adapters
}
