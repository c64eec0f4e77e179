/**
 * @description
 * Normalizer for The Odds API bookmaker payloads.
 * Payload is the bookmaker's markets array: h2h outcomes keyed by team name,
 * spreads/totals outcomes carrying "price" and "point".
 */

package normalize

import (
	"encoding/json"
	"strings"
)

type oddsAPIMarket struct {
	Key      string           `json:"key"`
	Outcomes []oddsAPIOutcome `json:"outcomes"`
}

type oddsAPIOutcome struct {
	Name  string   `json:"name"`
	Price *float64 `json:"price"`
	Point *float64 `json:"point"`
}

// OddsAPI translates a markets array into the canonical triplet. Outcomes are
// assigned to sides by matching the outcome name against the event's team
// names (case-insensitive); totals use the fixed Over/Under names.
func OddsAPI(payload json.RawMessage, homeTeam, awayTeam string) (MarketTriplet, error) {
	var markets []oddsAPIMarket
	if err := json.Unmarshal(payload, &markets); err != nil {
		return MarketTriplet{}, err
	}

	var t MarketTriplet
	for _, market := range markets {
		switch market.Key {
		case "h2h":
			if o := findOutcome(market.Outcomes, homeTeam); o != nil {
				t.Moneyline.HomePrice = o.Price
			}
			if o := findOutcome(market.Outcomes, awayTeam); o != nil {
				t.Moneyline.AwayPrice = o.Price
			}
		case "spreads":
			if o := findOutcome(market.Outcomes, homeTeam); o != nil {
				t.Spread.HomeLine = o.Point
				t.Spread.HomePrice = o.Price
			}
			if o := findOutcome(market.Outcomes, awayTeam); o != nil {
				t.Spread.AwayLine = o.Point
				t.Spread.AwayPrice = o.Price
			}
		case "totals":
			if o := findOutcome(market.Outcomes, "Over"); o != nil {
				t.Total.Line = o.Point
				t.Total.OverPrice = o.Price
			}
			if o := findOutcome(market.Outcomes, "Under"); o != nil {
				t.Total.UnderPrice = o.Price
			}
		}
	}

	return t, nil
}

func findOutcome(outcomes []oddsAPIOutcome, name string) *oddsAPIOutcome {
	for i := range outcomes {
		if strings.EqualFold(outcomes[i].Name, name) {
			return &outcomes[i]
		}
	}
	return nil
}
