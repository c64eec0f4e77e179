package main

import (
	"context"
	"log"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gridline-project/backend/internal/catalog"
	"github.com/gridline-project/backend/internal/config"
	"github.com/gridline-project/backend/internal/db"
	"github.com/gridline-project/backend/internal/models"
	"github.com/gridline-project/backend/internal/services"
	"github.com/redis/go-redis/v9"
)

func main() {
	log.Println("🚀 Starting manual schedule sync from the scoreboard...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	pgDB, err := db.ConnectPostgres(cfg)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}

	mr, err := miniredis.Run()
	if err != nil {
		log.Fatalf("failed to start in-memory redis: %v", err)
	}
	defer mr.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cat := catalog.New(pgDB, redisClient, cfg.Odds.CacheTTL)
	service := services.NewGameService(pgDB, cat, cfg)

	ctx := context.Background()

	if err := service.SyncSchedule(ctx); err != nil {
		log.Fatalf("schedule sync failed: %v", err)
	}

	var upcoming int64
	if err := pgDB.Model(&models.Game{}).Where("status <> ?", models.GameCompleted).Count(&upcoming).Error; err == nil {
		log.Printf("✅ Upcoming games stored in Postgres: %d", upcoming)
	} else {
		log.Printf("⚠️ Failed to count upcoming games: %v", err)
	}

	log.Println("✅ Manual schedule sync completed successfully.")
}
