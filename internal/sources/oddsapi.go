/**
 * @description
 * HTTP adapter for The Odds API (v4).
 * Fetches the odds board for one sport and splits it into one RawQuote per
 * (event, bookmaker).
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
	"net/url"
	"time"

	"github.com/gridline-project/backend/internal/config"
)

const DefaultTimeout = 10 * time.Second

// OddsAPIAdapter polls The Odds API odds board.
type OddsAPIAdapter struct {
	BaseURL    string
	APIKey     string
	Sport      string
	Bookmakers string
	HTTPClient *http.Client
}

func NewOddsAPIAdapter(cfg *config.Config) *OddsAPIAdapter {
	timeout := cfg.Sources.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OddsAPIAdapter{
		BaseURL:    cfg.Sources.OddsAPIBaseURL,
		APIKey:     cfg.Sources.OddsAPIKey,
		Sport:      cfg.Sources.OddsAPISport,
		Bookmakers: cfg.Sources.OddsAPIBooks,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

func (a *OddsAPIAdapter) Kind() Kind {
	return KindOddsAPI
}

// oddsAPIEvent mirrors the upstream response shape.
type oddsAPIEvent struct {
	ID         string             `json:"id"`
	HomeTeam   string             `json:"home_team"`
	AwayTeam   string             `json:"away_team"`
	Bookmakers []oddsAPIBookmaker `json:"bookmakers"`
}

type oddsAPIBookmaker struct {
	Key     string          `json:"key"`
	Markets json.RawMessage `json:"markets"`
}

// Fetch returns one RawQuote per (event, bookmaker) on the current board.
func (a *OddsAPIAdapter) Fetch(ctx context.Context) ([]RawQuote, error) {
	if a.APIKey == "" {
		return nil, fmt.Errorf("oddsapi: api key not configured")
	}

	u, err := url.Parse(fmt.Sprintf("%s/sports/%s/odds", a.BaseURL, a.Sport))
	if err != nil {
		return nil, err
	}

	q := u.Query()
	q.Set("api_key", a.APIKey)
	q.Set("regions", "us")
	q.Set("markets", "h2h,spreads,totals")
	q.Set("oddsFormat", "american")
	if a.Bookmakers != "" {
		q.Set("bookmakers", a.Bookmakers)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oddsapi error: status %d", resp.StatusCode)
	}

	var events []oddsAPIEvent
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, err
	}

	now := time.Now()
	var quotes []RawQuote
	for _, event := range events {
		for _, book := range event.Bookmakers {
			source := CanonicalBook(book.Key)
			if source == "" {
				continue
			}
			quotes = append(quotes, RawQuote{
				Kind:      KindOddsAPI,
				Source:    source,
				HomeTeam:  event.HomeTeam,
				AwayTeam:  event.AwayTeam,
				Payload:   book.Markets,
				FetchedAt: now,
			})
		}
	}

	return quotes, nil
}
