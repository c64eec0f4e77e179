/**
 * @description
 * Read side of the canonical game catalog.
 * The odds pipeline joins against games by stable id; this layer answers
 * existence/status/window queries, fronted by an explicit Redis cache with
 * a defined TTL and an invalidation call. Nothing here mutates games.
 *
 * @dependencies
 * - gorm.io/gorm
 * - github.com/redis/go-redis/v9
 */

package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gridline-project/backend/internal/logger"
	"github.com/gridline-project/backend/internal/models"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	cacheKeyWindow  = "catalog:window"
	statusKeyPrefix = "catalog:status:"
)

// Catalog answers read-only queries about canonical games.
type Catalog struct {
	DB    *gorm.DB
	Redis *redis.Client
	TTL   time.Duration
}

func New(db *gorm.DB, rdb *redis.Client, ttl time.Duration) *Catalog {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Catalog{DB: db, Redis: rdb, TTL: ttl}
}

// Exists reports whether a game id is present in the catalog.
func (c *Catalog) Exists(ctx context.Context, gameID string) (bool, error) {
	status, err := c.Status(ctx, gameID)
	if err != nil {
		return false, err
	}
	return status != "", nil
}

// Status returns the lifecycle state of a game, or "" when the id is unknown.
func (c *Catalog) Status(ctx context.Context, gameID string) (string, error) {
	key := statusKeyPrefix + gameID
	if val, err := c.Redis.Get(ctx, key).Result(); err == nil {
		if val == "!" { // cached miss
			return "", nil
		}
		return val, nil
	}

	var game models.Game
	err := c.DB.WithContext(ctx).Select("status").Where("id = ?", gameID).First(&game).Error
	if err == gorm.ErrRecordNotFound {
		// Cache the miss too so a bad feed can't hammer the DB
		if err := c.Redis.Set(ctx, key, "!", c.TTL).Err(); err != nil {
			logger.Error("catalog: failed to cache status miss: %v", err)
		}
		return "", nil
	}
	if err != nil {
		return "", err
	}

	if err := c.Redis.Set(ctx, key, game.Status, c.TTL).Err(); err != nil {
		logger.Error("catalog: failed to cache status: %v", err)
	}
	return game.Status, nil
}

// cachedWindow wraps the cached slice with the bounds it was fetched for, so
// a narrower cached window is never served for a wider request.
type cachedWindow struct {
	From  time.Time     `json:"from"`
	To    time.Time     `json:"to"`
	Games []models.Game `json:"games"`
}

// GamesInWindow returns games scheduled between from and to, inclusive.
// The window slice is cached as one entry since every matcher call wants the
// same few days of games. The cached bounds are quantized to hour marks: a
// raw [now-W, now+W] window would slide forward with every call and never be
// covered by the previous write, so the DB is queried (and the entry cached)
// for the enclosing hour-aligned superset instead.
func (c *Catalog) GamesInWindow(ctx context.Context, from, to time.Time) ([]models.Game, error) {
	qFrom := from.Truncate(time.Hour)
	qTo := to.Truncate(time.Hour).Add(time.Hour)

	if val, err := c.Redis.Get(ctx, cacheKeyWindow).Result(); err == nil {
		var cached cachedWindow
		if err := json.Unmarshal([]byte(val), &cached); err == nil &&
			!cached.From.After(from) && !cached.To.Before(to) {
			return filterWindow(cached.Games, from, to), nil
		}
		// Corrupt or too-narrow cache entry: fall through to DB
	}

	var games []models.Game
	if err := c.DB.WithContext(ctx).
		Where("game_time BETWEEN ? AND ?", qFrom, qTo).
		Order("game_time ASC").
		Find(&games).Error; err != nil {
		return nil, err
	}

	if data, err := json.Marshal(cachedWindow{From: qFrom, To: qTo, Games: games}); err == nil {
		if err := c.Redis.Set(ctx, cacheKeyWindow, data, c.TTL).Err(); err != nil {
			logger.Error("catalog: failed to cache window: %v", err)
		}
	}

	return filterWindow(games, from, to), nil
}

// Invalidate drops the cached window and any cached statuses for the given
// game ids. Called by the catalog sync after it writes games.
func (c *Catalog) Invalidate(ctx context.Context, gameIDs ...string) {
	keys := make([]string, 0, len(gameIDs)+1)
	keys = append(keys, cacheKeyWindow)
	for _, id := range gameIDs {
		keys = append(keys, statusKeyPrefix+id)
	}
	if err := c.Redis.Del(ctx, keys...).Err(); err != nil {
		logger.Error("catalog: failed to invalidate cache: %v", err)
	}
}

func filterWindow(games []models.Game, from, to time.Time) []models.Game {
	result := make([]models.Game, 0, len(games))
	for _, g := range games {
		if !g.GameTime.Before(from) && !g.GameTime.After(to) {
			result = append(result, g)
		}
	}
	return result
}
