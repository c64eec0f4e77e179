/**
 * @description
 * HTTP adapter for pre-scraped odds tables.
 * Consumes a JSON endpoint produced by an external table scraper; each row
 * is one matchup with "line"/"odds" keyed markets for one book.
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
	"github.com/gridline-project/backend/internal/models"
)

// BookTableAdapter polls a scraped odds-table endpoint.
type BookTableAdapter struct {
	URL        string
	HTTPClient *http.Client
}

func NewBookTableAdapter(cfg *config.Config) *BookTableAdapter {
	timeout := cfg.Sources.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &BookTableAdapter{
		URL:        cfg.Sources.BookTableURL,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

func (a *BookTableAdapter) Kind() Kind {
	return KindBookTable
}

type bookTableRow struct {
	Book     string          `json:"book"`
	HomeTeam string          `json:"home_team"`
	AwayTeam string          `json:"away_team"`
	Markets  json.RawMessage `json:"markets"`
}

// Fetch returns one RawQuote per table row with a recognized book.
func (a *BookTableAdapter) Fetch(ctx context.Context) ([]RawQuote, error) {
	if a.URL == "" {
		return nil, fmt.Errorf("booktable: endpoint not configured")
	}

	req, err := http.NewRequestWithContext(ctx, "GET", a.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("booktable error: status %d", resp.StatusCode)
	}

	var rows []bookTableRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, err
	}

	now := time.Now()
	var quotes []RawQuote
	for _, row := range rows {
		if !models.KnownSource(row.Book) {
			continue
		}
		quotes = append(quotes, RawQuote{
			Kind:      KindBookTable,
			Source:    row.Book,
			HomeTeam:  row.HomeTeam,
			AwayTeam:  row.AwayTeam,
			Payload:   row.Markets,
			FetchedAt: now,
		})
	}

	return quotes, nil
}
