/**
 * @description
 * Service layer for odds data.
 * Front door for the ingest pipeline (normalize → match → movement-aware
 * upsert) and the read-side aggregation queries (current board, best price,
 * cross-book comparison, history replay), with a Redis TTL cache on the
 * hot per-game read.
 *
 * @dependencies
 * - backend/internal/store
 * - backend/internal/normalize
 * - backend/internal/matcher (via the GameMatcher interface)
 * - gorm.io/gorm
 * - github.com/redis/go-redis/v9
 */

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gridline-project/backend/internal/logger"
	"github.com/gridline-project/backend/internal/models"
	"github.com/gridline-project/backend/internal/normalize"
	"github.com/gridline-project/backend/internal/oddsmath"
	"github.com/gridline-project/backend/internal/sources"
	"github.com/gridline-project/backend/internal/store"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Markets and sides accepted by the aggregation queries.
const (
	MarketSpread    = "spread"
	MarketMoneyline = "moneyline"
	MarketTotal     = "total"

	SideHome  = "home"
	SideAway  = "away"
	SideOver  = "over"
	SideUnder = "under"
)

// Ingest rejection reasons, surfaced to callers as data, not errors.
const (
	ReasonUnknownSource = "unknown_source"
	ReasonMalformed     = "malformed_payload"
	ReasonEmptyQuote    = "empty_quote"
	ReasonNoMatch       = "no_matching_game"
	ReasonUnknownGame   = "unknown_game"
)

// ErrNoPrices means no source currently quotes the requested market/side.
var ErrNoPrices = errors.New("no prices available")

// ErrInvalidMarket means the requested market/side combination is not one
// the aggregation queries answer.
var ErrInvalidMarket = errors.New("invalid market request")

// ErrNotFound means the requested record does not exist.
var ErrNotFound = errors.New("odds record not found")

// Rejection describes why a quote was dropped. A nil Rejection with a nil
// error means the quote was stored.
type Rejection struct {
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// GameMatcher resolves a team-name pair to a game id. Satisfied by
// *matcher.Matcher.
type GameMatcher interface {
	Match(ctx context.Context, homeCandidate, awayCandidate string) (string, bool, error)
}

// ESPNResolver resolves a feed-stable ESPN id to a game id. Satisfied by
// *GameService.
type ESPNResolver interface {
	ResolveESPNID(ctx context.Context, espnID string) (string, error)
}

// OddsService orchestrates the pipeline and the read-side queries.
type OddsService struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Store    *store.Store
	Matcher  GameMatcher
	Resolver ESPNResolver
	CacheTTL time.Duration
}

func NewOddsService(db *gorm.DB, rdb *redis.Client, st *store.Store, m GameMatcher, resolver ESPNResolver, cacheTTL time.Duration) *OddsService {
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &OddsService{
		DB:       db,
		Redis:    rdb,
		Store:    st,
		Matcher:  m,
		Resolver: resolver,
		CacheTTL: cacheTTL,
	}
}

// IngestQuote runs one raw quote through the full pipeline. Returns the
// stored record, or a Rejection when the quote was dropped for a data
// reason, or an error for infrastructure failures.
func (s *OddsService) IngestQuote(ctx context.Context, q sources.RawQuote) (*models.OddsRecord, *Rejection, error) {
	if !models.KnownSource(q.Source) {
		return nil, &Rejection{Reason: ReasonUnknownSource, Detail: q.Source}, nil
	}

	triplet, err := normalize.Quote(q)
	if err != nil {
		return nil, &Rejection{Reason: ReasonMalformed, Detail: err.Error()}, nil
	}
	if triplet.Empty() {
		return nil, &Rejection{Reason: ReasonEmptyQuote}, nil
	}

	gameID, rejection, err := s.resolveGame(ctx, q)
	if err != nil || rejection != nil {
		return nil, rejection, err
	}

	return s.upsert(ctx, gameID, q.Source, triplet)
}

// IngestForGame stores a quote whose game id is already known, e.g. from the
// HTTP ingest endpoint.
func (s *OddsService) IngestForGame(ctx context.Context, gameID, source string, q sources.RawQuote) (*models.OddsRecord, *Rejection, error) {
	if !models.KnownSource(source) {
		return nil, &Rejection{Reason: ReasonUnknownSource, Detail: source}, nil
	}
	q.Source = source

	triplet, err := normalize.Quote(q)
	if err != nil {
		return nil, &Rejection{Reason: ReasonMalformed, Detail: err.Error()}, nil
	}
	if triplet.Empty() {
		return nil, &Rejection{Reason: ReasonEmptyQuote}, nil
	}

	return s.upsert(ctx, gameID, source, triplet)
}

func (s *OddsService) resolveGame(ctx context.Context, q sources.RawQuote) (string, *Rejection, error) {
	// A feed-stable id short-circuits the fuzzy matcher.
	if q.ESPNGameID != "" && s.Resolver != nil {
		if id, err := s.Resolver.ResolveESPNID(ctx, q.ESPNGameID); err == nil && id != "" {
			return id, nil, nil
		}
	}

	id, ok, err := s.Matcher.Match(ctx, q.HomeTeam, q.AwayTeam)
	if err != nil {
		return "", nil, fmt.Errorf("match %q vs %q: %w", q.HomeTeam, q.AwayTeam, err)
	}
	if !ok {
		logger.Info("⚠️ No matching game for %s @ %s (%s)", q.AwayTeam, q.HomeTeam, q.Source)
		return "", &Rejection{Reason: ReasonNoMatch, Detail: fmt.Sprintf("%s @ %s", q.AwayTeam, q.HomeTeam)}, nil
	}
	return id, nil, nil
}

func (s *OddsService) upsert(ctx context.Context, gameID, source string, triplet normalize.MarketTriplet) (*models.OddsRecord, *Rejection, error) {
	rec, err := s.Store.Upsert(ctx, gameID, source, triplet)
	if errors.Is(err, store.ErrUnknownGame) {
		logger.Info("⚠️ Dropping quote for unknown game %s (%s)", gameID, source)
		return nil, &Rejection{Reason: ReasonUnknownGame, Detail: gameID}, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return rec, nil, nil
}

// GetCurrentOdds returns the current record per source for a game,
// preferring Cache -> Store.
func (s *OddsService) GetCurrentOdds(ctx context.Context, gameID string) ([]models.OddsRecord, error) {
	cacheKey := store.CacheKeyGame(gameID)
	if val, err := s.Redis.Get(ctx, cacheKey).Result(); err == nil {
		var recs []models.OddsRecord
		if err := json.Unmarshal([]byte(val), &recs); err == nil {
			return recs, nil
		}
		// If unmarshal fails, fall through to the store
	}

	recs, err := s.Store.ListByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(recs); err == nil {
		if err := s.Redis.Set(ctx, cacheKey, data, s.CacheTTL).Err(); err != nil {
			logger.Error("Failed to set odds cache for game %s: %v", gameID, err)
		}
	}

	return recs, nil
}

// BestPrice is the most favorable current quote for one market/side.
type BestPrice struct {
	Source    string    `json:"source"`
	Price     float64   `json:"price"`
	Line      *float64  `json:"line,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetBestPrice selects, across all sources, the price paying out the most
// for a bettor on the requested market/side, by American-odds comparison.
// Ties break toward the most recently updated source.
func (s *OddsService) GetBestPrice(ctx context.Context, gameID, market, side string) (*BestPrice, error) {
	if err := validateMarketSide(market, side); err != nil {
		return nil, err
	}

	recs, err := s.GetCurrentOdds(ctx, gameID)
	if err != nil {
		return nil, err
	}

	var best *BestPrice
	for _, rec := range recs {
		price, line := priceFor(&rec, market, side)
		if price == nil {
			continue
		}
		candidate := &BestPrice{
			Source:    rec.Source,
			Price:     *price,
			Line:      line,
			UpdatedAt: rec.UpdatedAt,
		}
		if best == nil ||
			oddsmath.Better(candidate.Price, best.Price) ||
			(candidate.Price == best.Price && candidate.UpdatedAt.After(best.UpdatedAt)) {
			best = candidate
		}
	}

	if best == nil {
		return nil, ErrNoPrices
	}
	return best, nil
}

// SpreadQuote, MoneylineQuote, TotalQuote are the per-market comparison views.
type SpreadQuote struct {
	HomeLine  *float64 `json:"home_line"`
	AwayLine  *float64 `json:"away_line"`
	HomePrice *float64 `json:"home_price"`
	AwayPrice *float64 `json:"away_price"`
}

type MoneylineQuote struct {
	HomePrice *float64 `json:"home_price"`
	AwayPrice *float64 `json:"away_price"`
}

type TotalQuote struct {
	Line       *float64 `json:"line"`
	OverPrice  *float64 `json:"over_price"`
	UnderPrice *float64 `json:"under_price"`
}

// ComparisonRow is one source's view of a requested market. Sources whose
// market is fully absent stay in the result with Available=false so dead
// feeds remain visible to operators.
type ComparisonRow struct {
	Source    string          `json:"source"`
	Available bool            `json:"available"`
	Spread    *SpreadQuote    `json:"spread,omitempty"`
	Moneyline *MoneylineQuote `json:"moneyline,omitempty"`
	Total     *TotalQuote     `json:"total,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// GetComparison returns one row per source for the requested market.
func (s *OddsService) GetComparison(ctx context.Context, gameID, market string) ([]ComparisonRow, error) {
	if market != MarketSpread && market != MarketMoneyline && market != MarketTotal {
		return nil, fmt.Errorf("%w: unknown market %q", ErrInvalidMarket, market)
	}

	recs, err := s.GetCurrentOdds(ctx, gameID)
	if err != nil {
		return nil, err
	}

	rows := make([]ComparisonRow, 0, len(recs))
	for _, rec := range recs {
		row := ComparisonRow{Source: rec.Source, UpdatedAt: rec.UpdatedAt}
		switch market {
		case MarketSpread:
			q := SpreadQuote{
				HomeLine:  rec.SpreadHomeLine,
				AwayLine:  rec.SpreadAwayLine,
				HomePrice: rec.SpreadHomePrice,
				AwayPrice: rec.SpreadAwayPrice,
			}
			if q.HomeLine != nil || q.AwayLine != nil || q.HomePrice != nil || q.AwayPrice != nil {
				row.Available = true
				row.Spread = &q
			}
		case MarketMoneyline:
			q := MoneylineQuote{HomePrice: rec.MoneylineHome, AwayPrice: rec.MoneylineAway}
			if q.HomePrice != nil || q.AwayPrice != nil {
				row.Available = true
				row.Moneyline = &q
			}
		case MarketTotal:
			q := TotalQuote{Line: rec.TotalLine, OverPrice: rec.TotalOverPrice, UnderPrice: rec.TotalUnderPrice}
			if q.Line != nil || q.OverPrice != nil || q.UnderPrice != nil {
				row.Available = true
				row.Total = &q
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// HistoryView is one key's capped history plus its current record.
type HistoryView struct {
	GameID  string              `json:"game_id"`
	Source  string              `json:"source"`
	Current *models.OddsRecord  `json:"current"`
	History models.SnapshotList `json:"history"`
}

// GetHistory replays the capped history for one (game, source) pair in
// chronological order.
func (s *OddsService) GetHistory(ctx context.Context, gameID, source string) (*HistoryView, error) {
	rec, err := s.Store.Get(ctx, gameID, source)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return &HistoryView{
		GameID:  gameID,
		Source:  source,
		Current: rec,
		History: rec.History,
	}, nil
}

// PlayerPropsRow is one source's player props for a game.
type PlayerPropsRow struct {
	Source      string                `json:"source"`
	PlayerProps models.PlayerPropList `json:"player_props"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// GetPlayerProps returns the stored player props per source. Sources that
// never quoted props are omitted; props carry no movement tracking.
func (s *OddsService) GetPlayerProps(ctx context.Context, gameID string) ([]PlayerPropsRow, error) {
	recs, err := s.GetCurrentOdds(ctx, gameID)
	if err != nil {
		return nil, err
	}

	rows := make([]PlayerPropsRow, 0, len(recs))
	for _, rec := range recs {
		if len(rec.PlayerProps) == 0 {
			continue
		}
		rows = append(rows, PlayerPropsRow{
			Source:      rec.Source,
			PlayerProps: rec.PlayerProps,
			UpdatedAt:   rec.UpdatedAt,
		})
	}
	return rows, nil
}

// GetTodaysMovements returns records for today's games whose last write
// moved a tracked line, newest first.
func (s *OddsService) GetTodaysMovements(ctx context.Context) ([]models.OddsRecord, error) {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	var ids []string
	if err := s.DB.WithContext(ctx).Model(&models.Game{}).
		Where("game_time >= ? AND game_time < ?", dayStart, dayEnd).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}

	return s.Store.ListMoved(ctx, ids)
}

func validateMarketSide(market, side string) error {
	switch market {
	case MarketSpread, MarketMoneyline:
		if side != SideHome && side != SideAway {
			return fmt.Errorf("%w: market %q takes side home|away, got %q", ErrInvalidMarket, market, side)
		}
	case MarketTotal:
		if side != SideOver && side != SideUnder {
			return fmt.Errorf("%w: market %q takes side over|under, got %q", ErrInvalidMarket, market, side)
		}
	default:
		return fmt.Errorf("%w: unknown market %q", ErrInvalidMarket, market)
	}
	return nil
}

// priceFor extracts the quoted price (and its line, when the market has one)
// for a market/side. Nil price means the source does not quote it.
func priceFor(rec *models.OddsRecord, market, side string) (price, line *float64) {
	switch market {
	case MarketSpread:
		if side == SideHome {
			return rec.SpreadHomePrice, rec.SpreadHomeLine
		}
		return rec.SpreadAwayPrice, rec.SpreadAwayLine
	case MarketMoneyline:
		if side == SideHome {
			return rec.MoneylineHome, nil
		}
		return rec.MoneylineAway, nil
	case MarketTotal:
		if side == SideOver {
			return rec.TotalOverPrice, rec.TotalLine
		}
		return rec.TotalUnderPrice, rec.TotalLine
	}
	return nil, nil
}
