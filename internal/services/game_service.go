/**
 * @description
 * Service layer for the game catalog.
 * Syncs canonical games from the ESPN scoreboard into Postgres and exposes
 * the schedule query surface (today, by date, by week). The odds pipeline
 * only reads games; this is the one writer.
 *
 * @dependencies
 * - backend/internal/catalog (cache invalidation after sync)
 * - backend/internal/models
 * - github.com/google/uuid: ids for newly discovered games
 * - gorm.io/gorm
 */

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gridline-project/backend/internal/catalog"
	"github.com/gridline-project/backend/internal/config"
	"github.com/gridline-project/backend/internal/logger"
	"github.com/gridline-project/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GameService owns catalog writes and schedule queries.
type GameService struct {
	DB         *gorm.DB
	Catalog    *catalog.Catalog
	Scoreboard string
	HTTPClient *http.Client
}

func NewGameService(db *gorm.DB, cat *catalog.Catalog, cfg *config.Config) *GameService {
	timeout := cfg.Sources.FetchTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GameService{
		DB:         db,
		Catalog:    cat,
		Scoreboard: cfg.Sources.ESPNScoreboard,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// scoreboard response, schedule fields only
type scheduleBoard struct {
	Events []scheduleEvent `json:"events"`
	Week   struct {
		Number int `json:"number"`
	} `json:"week"`
	Season struct {
		Year int `json:"year"`
	} `json:"season"`
}

type scheduleEvent struct {
	ID           string    `json:"id"`
	Date         time.Time `json:"date"`
	Status       struct {
		Type struct {
			State     string `json:"state"` // "pre", "in", "post"
			Completed bool   `json:"completed"`
		} `json:"type"`
	} `json:"status"`
	Competitions []struct {
		Venue struct {
			FullName string `json:"fullName"`
		} `json:"venue"`
		Broadcasts []struct {
			Names []string `json:"names"`
		} `json:"broadcasts"`
		Competitors []struct {
			HomeAway string `json:"homeAway"`
			Team     struct {
				DisplayName  string `json:"displayName"`
				Abbreviation string `json:"abbreviation"`
			} `json:"team"`
		} `json:"competitors"`
	} `json:"competitions"`
}

// SyncSchedule pulls the current scoreboard and upserts games by espn_id.
func (s *GameService) SyncSchedule(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", s.Scoreboard, nil)
	if err != nil {
		return err
	}
	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch scoreboard: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("scoreboard error: status %d", resp.StatusCode)
	}

	var board scheduleBoard
	if err := json.NewDecoder(resp.Body).Decode(&board); err != nil {
		return fmt.Errorf("decode scoreboard: %w", err)
	}

	espnIDs := make([]string, 0, len(board.Events))
	for _, event := range board.Events {
		espnIDs = append(espnIDs, event.ID)
	}
	existing, err := s.existingGameIDs(ctx, espnIDs)
	if err != nil {
		return fmt.Errorf("load existing games: %w", err)
	}

	games := make([]models.Game, 0, len(board.Events))
	for _, event := range board.Events {
		game, ok := toGame(event, board.Week.Number, board.Season.Year, existing)
		if !ok {
			continue
		}
		games = append(games, game)
	}
	if len(games) == 0 {
		return nil
	}

	err = s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "espn_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"home_name", "home_abbr", "away_name", "away_abbr",
			"game_time", "week", "season", "venue", "tv_broadcast",
			"status", "updated_at",
		}),
	}).CreateInBatches(games, 100).Error
	if err != nil {
		return fmt.Errorf("upsert games: %w", err)
	}

	if s.Catalog != nil {
		ids := make([]string, 0, len(games))
		for _, g := range games {
			ids = append(ids, g.ID)
		}
		s.Catalog.Invalidate(ctx, ids...)
	}

	logger.Info("✅ Synced %d games from the scoreboard", len(games))
	return nil
}

// existingGameIDs loads the ids of already-known games in one query, keyed
// by espn_id.
func (s *GameService) existingGameIDs(ctx context.Context, espnIDs []string) (map[string]string, error) {
	ids := make(map[string]string, len(espnIDs))
	if len(espnIDs) == 0 {
		return ids, nil
	}
	var games []models.Game
	err := s.DB.WithContext(ctx).
		Select("id", "espn_id").
		Where("espn_id IN ?", espnIDs).
		Find(&games).Error
	if err != nil {
		return nil, err
	}
	for _, g := range games {
		ids[g.ESPNID] = g.ID
	}
	return ids, nil
}

func toGame(event scheduleEvent, week, season int, existing map[string]string) (models.Game, bool) {
	if len(event.Competitions) == 0 {
		return models.Game{}, false
	}
	comp := event.Competitions[0]

	game := models.Game{
		ESPNID:   event.ID,
		GameTime: event.Date,
		Week:     week,
		Season:   season,
		Venue:    comp.Venue.FullName,
		Status:   scoreboardStatus(event.Status.Type.State, event.Status.Type.Completed),
	}
	if len(comp.Broadcasts) > 0 && len(comp.Broadcasts[0].Names) > 0 {
		game.TVBroadcast = comp.Broadcasts[0].Names[0]
	}

	for _, c := range comp.Competitors {
		switch c.HomeAway {
		case "home":
			game.HomeName = c.Team.DisplayName
			game.HomeAbbr = c.Team.Abbreviation
		case "away":
			game.AwayName = c.Team.DisplayName
			game.AwayAbbr = c.Team.Abbreviation
		}
	}
	if game.HomeName == "" || game.AwayName == "" {
		return models.Game{}, false
	}

	// Keep the existing id when the game is already known; mint one otherwise.
	if id, ok := existing[event.ID]; ok {
		game.ID = id
	} else {
		game.ID = uuid.NewString()
	}

	return game, true
}

func scoreboardStatus(state string, completed bool) string {
	if completed {
		return models.GameCompleted
	}
	if state == "in" {
		return models.GameInProgress
	}
	return models.GameScheduled
}

// ResolveESPNID maps a feed-stable ESPN id to the canonical game id.
func (s *GameService) ResolveESPNID(ctx context.Context, espnID string) (string, error) {
	var game models.Game
	err := s.DB.WithContext(ctx).Select("id").Where("espn_id = ?", espnID).First(&game).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return game.ID, nil
}

// TodaysGames returns today's non-completed games in kickoff order.
func (s *GameService) TodaysGames(ctx context.Context) ([]models.Game, error) {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.gamesBetween(ctx, dayStart, dayStart.Add(24*time.Hour), true)
}

// GamesByDate returns all games on one calendar day.
func (s *GameService) GamesByDate(ctx context.Context, date time.Time) ([]models.Game, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return s.gamesBetween(ctx, dayStart, dayStart.Add(24*time.Hour), false)
}

func (s *GameService) gamesBetween(ctx context.Context, from, to time.Time, skipCompleted bool) ([]models.Game, error) {
	q := s.DB.WithContext(ctx).
		Where("game_time >= ? AND game_time < ?", from, to).
		Order("game_time ASC")
	if skipCompleted {
		q = q.Where("status <> ?", models.GameCompleted)
	}
	var games []models.Game
	err := q.Find(&games).Error
	return games, err
}

// UpcomingWeek returns the next seven days of non-completed games in
// kickoff order.
func (s *GameService) UpcomingWeek(ctx context.Context) ([]models.Game, error) {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.gamesBetween(ctx, dayStart, dayStart.Add(7*24*time.Hour), true)
}

// GamesByTeam returns all stored games a team appears in, on either side,
// matched case-insensitively by partial name.
func (s *GameService) GamesByTeam(ctx context.Context, team string) ([]models.Game, error) {
	pattern := "%" + team + "%"
	var games []models.Game
	err := s.DB.WithContext(ctx).
		Where("home_name ILIKE ? OR away_name ILIKE ?", pattern, pattern).
		Order("game_time ASC").
		Find(&games).Error
	return games, err
}

// GamesByWeek returns a week's slate for a season.
func (s *GameService) GamesByWeek(ctx context.Context, week, season int) ([]models.Game, error) {
	var games []models.Game
	err := s.DB.WithContext(ctx).
		Where("week = ? AND season = ?", week, season).
		Order("game_time ASC").
		Find(&games).Error
	return games, err
}

// GetGame returns one game, or ErrNotFound.
func (s *GameService) GetGame(ctx context.Context, gameID string) (*models.Game, error) {
	var game models.Game
	err := s.DB.WithContext(ctx).Where("id = ?", gameID).First(&game).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &game, nil
}
