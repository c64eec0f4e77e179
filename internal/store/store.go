/**
 * @description
 * Price store.
 * Owns the read-modify-write cycle for odds records: fetch the previous
 * record, classify line movement, append the pre-update snapshot to the
 * capped history, overwrite the current fields, persist. The whole cycle is
 * serialized per (game, source) key through striped mutexes; writes for
 * different keys run in parallel.
 *
 * @dependencies
 * - backend/internal/movement
 * - backend/internal/normalize
 * - github.com/redis/go-redis/v9 (cache invalidation + movement notices)
 *
 * @notes
 * - A write for a game id the catalog does not know is a data-quality error:
 *   rejected with ErrUnknownGame, logged by the caller, never stored.
 * - An identical re-ingest classifies as no movement and does not grow
 *   history; only the updated_at watermark advances.
 */

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/gridline-project/backend/internal/logger"
	"github.com/gridline-project/backend/internal/models"
	"github.com/gridline-project/backend/internal/movement"
	"github.com/gridline-project/backend/internal/normalize"
	"github.com/redis/go-redis/v9"
)

const (
	// MovementChannel carries JSON movement notices for operator tooling.
	MovementChannel = "odds:movements"

	cacheKeyGamePrefix = "odds:game:"

	lockStripes = 64
)

// ErrUnknownGame rejects ingests referencing a game id absent from the catalog.
var ErrUnknownGame = errors.New("unknown game id")

// GameChecker reports catalog membership. Satisfied by *catalog.Catalog.
type GameChecker interface {
	Exists(ctx context.Context, gameID string) (bool, error)
}

// CacheKeyGame is the Redis key holding the cached current records of a game.
func CacheKeyGame(gameID string) string {
	return cacheKeyGamePrefix + gameID
}

// MovementNotice is published on MovementChannel when a write moves a line.
type MovementNotice struct {
	GameID         string          `json:"game_id"`
	Source         string          `json:"source"`
	SpreadMovement models.Movement `json:"spread_movement"`
	TotalMovement  models.Movement `json:"total_movement"`
	SpreadHomeLine *float64        `json:"spread_home_line"`
	TotalLine      *float64        `json:"total_line"`
}

// Store coordinates upserts and reads over the repository.
type Store struct {
	Repo       Repository
	Games      GameChecker
	Redis      *redis.Client
	MaxHistory int

	locks [lockStripes]sync.Mutex
	now   func() time.Time
}

func New(repo Repository, games GameChecker, rdb *redis.Client, maxHistory int) *Store {
	if maxHistory < 1 {
		maxHistory = 50
	}
	return &Store{
		Repo:       repo,
		Games:      games,
		Redis:      rdb,
		MaxHistory: maxHistory,
		now:        time.Now,
	}
}

// Upsert runs one atomic read-modify-write cycle for a (game, source) key.
func (s *Store) Upsert(ctx context.Context, gameID, source string, triplet normalize.MarketTriplet) (*models.OddsRecord, error) {
	exists, err := s.Games.Exists(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("catalog lookup for game %s: %w", gameID, err)
	}
	if !exists {
		return nil, fmt.Errorf("game %s: %w", gameID, ErrUnknownGame)
	}

	lock := s.lockFor(gameID, source)
	lock.Lock()
	defer lock.Unlock()

	prev, err := s.Repo.Load(ctx, gameID, source)
	if err != nil {
		return nil, fmt.Errorf("load record %s/%s: %w", gameID, source, err)
	}

	moves := movement.Detect(prev, triplet)
	now := s.now()

	var rec *models.OddsRecord
	if prev == nil {
		rec = &models.OddsRecord{GameID: gameID, Source: source}
	} else {
		rec = prev
		if !sameValues(prev, triplet) {
			rec.History = appendCapped(rec.History, prev.Snapshot(now), s.MaxHistory)
		}
	}

	applyTriplet(rec, triplet)
	rec.SpreadMovement = moves.Spread
	rec.TotalMovement = moves.Total
	rec.UpdatedAt = now

	if err := s.Repo.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save record %s/%s: %w", gameID, source, err)
	}

	s.afterWrite(ctx, rec, moves)
	return rec, nil
}

// Get returns the current record for one key, or nil when none exists.
func (s *Store) Get(ctx context.Context, gameID, source string) (*models.OddsRecord, error) {
	return s.Repo.Load(ctx, gameID, source)
}

// ListByGame returns all current records for one game.
func (s *Store) ListByGame(ctx context.Context, gameID string) ([]models.OddsRecord, error) {
	return s.Repo.ListByGame(ctx, gameID)
}

// ListMoved returns the moved records among the given games, newest first.
func (s *Store) ListMoved(ctx context.Context, gameIDs []string) ([]models.OddsRecord, error) {
	return s.Repo.ListMoved(ctx, gameIDs)
}

// afterWrite invalidates the per-game read cache and, when a tracked line
// moved, publishes a notice. Both are best-effort.
func (s *Store) afterWrite(ctx context.Context, rec *models.OddsRecord, moves movement.Movements) {
	if s.Redis == nil {
		return
	}

	if err := s.Redis.Del(ctx, CacheKeyGame(rec.GameID)).Err(); err != nil {
		logger.Error("store: failed to invalidate odds cache for game %s: %v", rec.GameID, err)
	}

	if moves.Spread == models.MoveNone && moves.Total == models.MoveNone {
		return
	}
	notice := MovementNotice{
		GameID:         rec.GameID,
		Source:         rec.Source,
		SpreadMovement: moves.Spread,
		TotalMovement:  moves.Total,
		SpreadHomeLine: rec.SpreadHomeLine,
		TotalLine:      rec.TotalLine,
	}
	payload, err := json.Marshal(notice)
	if err != nil {
		return
	}
	if err := s.Redis.Publish(ctx, MovementChannel, payload).Err(); err != nil {
		logger.Error("store: failed to publish movement notice: %v", err)
	}
}

func (s *Store) lockFor(gameID, source string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(gameID))
	h.Write([]byte{0})
	h.Write([]byte(source))
	return &s.locks[h.Sum32()%lockStripes]
}

// appendCapped appends snap and evicts oldest-first past the cap.
func appendCapped(history models.SnapshotList, snap models.OddsSnapshot, max int) models.SnapshotList {
	history = append(history, snap)
	if len(history) > max {
		history = history[len(history)-max:]
	}
	return history
}

// applyTriplet overwrites the record's current market fields.
func applyTriplet(rec *models.OddsRecord, t normalize.MarketTriplet) {
	rec.SpreadHomeLine = t.Spread.HomeLine
	rec.SpreadAwayLine = t.Spread.AwayLine
	rec.SpreadHomePrice = t.Spread.HomePrice
	rec.SpreadAwayPrice = t.Spread.AwayPrice
	rec.MoneylineHome = t.Moneyline.HomePrice
	rec.MoneylineAway = t.Moneyline.AwayPrice
	rec.TotalLine = t.Total.Line
	rec.TotalOverPrice = t.Total.OverPrice
	rec.TotalUnderPrice = t.Total.UnderPrice
	if t.PlayerProps != nil {
		rec.PlayerProps = t.PlayerProps
	}
}

// sameValues reports whether the triplet carries exactly the record's
// current market values (pointer-aware; nil only equals nil).
func sameValues(rec *models.OddsRecord, t normalize.MarketTriplet) bool {
	return eq(rec.SpreadHomeLine, t.Spread.HomeLine) &&
		eq(rec.SpreadAwayLine, t.Spread.AwayLine) &&
		eq(rec.SpreadHomePrice, t.Spread.HomePrice) &&
		eq(rec.SpreadAwayPrice, t.Spread.AwayPrice) &&
		eq(rec.MoneylineHome, t.Moneyline.HomePrice) &&
		eq(rec.MoneylineAway, t.Moneyline.AwayPrice) &&
		eq(rec.TotalLine, t.Total.Line) &&
		eq(rec.TotalOverPrice, t.Total.OverPrice) &&
		eq(rec.TotalUnderPrice, t.Total.UnderPrice)
}

func eq(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
