/**
 * @description
 * HTTP adapter for the ESPN scoreboard API.
 * The scoreboard carries a consensus line per competition; quotes from it
 * are tagged with the ESPN game id so the pipeline can skip fuzzy matching.
 *
 * @dependencies
 * - net/http
 * - encoding/json
 * - backend/internal/config
 */

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gridline-project/backend/internal/config"
)

// ESPNAdapter polls the ESPN scoreboard for consensus odds.
type ESPNAdapter struct {
	URL        string
	HTTPClient *http.Client
}

func NewESPNAdapter(cfg *config.Config) *ESPNAdapter {
	timeout := cfg.Sources.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ESPNAdapter{
		URL:        cfg.Sources.ESPNScoreboard,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

func (a *ESPNAdapter) Kind() Kind {
	return KindESPN
}

type espnScoreboard struct {
	Events []espnEvent `json:"events"`
}

type espnEvent struct {
	ID           string            `json:"id"`
	Competitions []espnCompetition `json:"competitions"`
}

type espnCompetition struct {
	Competitors []espnCompetitor  `json:"competitors"`
	Odds        []json.RawMessage `json:"odds"`
}

type espnCompetitor struct {
	HomeAway string   `json:"homeAway"`
	Team     espnTeam `json:"team"`
}

type espnTeam struct {
	DisplayName string `json:"displayName"`
}

// Fetch returns one RawQuote per scoreboard competition that carries odds.
func (a *ESPNAdapter) Fetch(ctx context.Context) ([]RawQuote, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", a.URL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("espn scoreboard error: status %d", resp.StatusCode)
	}

	var board espnScoreboard
	if err := json.NewDecoder(resp.Body).Decode(&board); err != nil {
		return nil, err
	}

	now := time.Now()
	var quotes []RawQuote
	for _, event := range board.Events {
		if len(event.Competitions) == 0 {
			continue
		}
		comp := event.Competitions[0]

		var home, away string
		for _, c := range comp.Competitors {
			switch c.HomeAway {
			case "home":
				home = c.Team.DisplayName
			case "away":
				away = c.Team.DisplayName
			}
		}

		for _, odds := range comp.Odds {
			quotes = append(quotes, RawQuote{
				Kind:       KindESPN,
				Source:     "ESPN",
				HomeTeam:   home,
				AwayTeam:   away,
				ESPNGameID: event.ID,
				Payload:    odds,
				FetchedAt:  now,
			})
		}
	}

	return quotes, nil
}
