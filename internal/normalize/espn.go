/**
 * @description
 * Normalizer for ESPN scoreboard odds payloads.
 * The scoreboard quotes a home spread and an over/under with no prices; the
 * standard -110 juice is filled in explicitly, matching how the feed is
 * conventionally read. Lines the feed omits stay nil.
 */

package normalize

import (
	"encoding/json"
)

// espnJuice is the assumed price on scoreboard lines, which carry no prices
// of their own.
const espnJuice = -110.0

type espnOdds struct {
	Spread    *float64 `json:"spread"`
	OverUnder *float64 `json:"overUnder"`
}

// ESPN translates one scoreboard odds object into the canonical triplet.
func ESPN(payload json.RawMessage) (MarketTriplet, error) {
	var odds espnOdds
	if err := json.Unmarshal(payload, &odds); err != nil {
		return MarketTriplet{}, err
	}

	var t MarketTriplet
	if odds.Spread != nil {
		t.Spread.HomeLine = odds.Spread
		t.Spread.AwayLine = ptr(-*odds.Spread)
		t.Spread.HomePrice = ptr(espnJuice)
		t.Spread.AwayPrice = ptr(espnJuice)
	}
	if odds.OverUnder != nil {
		t.Total.Line = odds.OverUnder
		t.Total.OverPrice = ptr(espnJuice)
		t.Total.UnderPrice = ptr(espnJuice)
	}

	return t, nil
}
