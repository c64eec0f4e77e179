/**
 * @description
 * Normalizer for scraped book-table payloads.
 * These rows use the "line"/"odds" key family and may carry player props.
 */

package normalize

import (
	"encoding/json"

	"github.com/gridline-project/backend/internal/models"
)

type bookTableMarkets struct {
	Spread *struct {
		Line     *float64 `json:"line"`
		Odds     *float64 `json:"odds"`
		AwayLine *float64 `json:"away_line"`
		AwayOdds *float64 `json:"away_odds"`
	} `json:"spread"`
	Moneyline *struct {
		HomeOdds *float64 `json:"home_odds"`
		AwayOdds *float64 `json:"away_odds"`
	} `json:"moneyline"`
	Total *struct {
		Line      *float64 `json:"line"`
		OverOdds  *float64 `json:"over_odds"`
		UnderOdds *float64 `json:"under_odds"`
	} `json:"total"`
	PlayerProps []struct {
		PlayerName string   `json:"player_name"`
		Team       string   `json:"team"`
		Market     string   `json:"market"`
		Line       *float64 `json:"line"`
		OverOdds   *float64 `json:"over_odds"`
		UnderOdds  *float64 `json:"under_odds"`
	} `json:"player_props"`
}

// BookTable translates one scraped row's markets into the canonical triplet.
func BookTable(payload json.RawMessage) (MarketTriplet, error) {
	var m bookTableMarkets
	if err := json.Unmarshal(payload, &m); err != nil {
		return MarketTriplet{}, err
	}

	var t MarketTriplet
	if m.Spread != nil {
		t.Spread.HomeLine = m.Spread.Line
		t.Spread.HomePrice = m.Spread.Odds
		t.Spread.AwayLine = m.Spread.AwayLine
		t.Spread.AwayPrice = m.Spread.AwayOdds
	}
	if m.Moneyline != nil {
		t.Moneyline.HomePrice = m.Moneyline.HomeOdds
		t.Moneyline.AwayPrice = m.Moneyline.AwayOdds
	}
	if m.Total != nil {
		t.Total.Line = m.Total.Line
		t.Total.OverPrice = m.Total.OverOdds
		t.Total.UnderPrice = m.Total.UnderOdds
	}
	for _, p := range m.PlayerProps {
		t.PlayerProps = append(t.PlayerProps, models.PlayerProp{
			PlayerName: p.PlayerName,
			Team:       p.Team,
			Market:     p.Market,
			Line:       p.Line,
			OverPrice:  p.OverOdds,
			UnderPrice: p.UnderOdds,
		})
	}

	return t, nil
}
