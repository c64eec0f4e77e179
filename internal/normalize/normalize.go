/**
 * @description
 * Market normalizer.
 * Translates a source-shaped raw payload into the canonical market triplet
 * (spread / moneyline / total). Purely structural: numeric values pass
 * through unmodified in American-odds convention, and fields the source did
 * not quote stay nil all the way to storage and movement detection.
 *
 * @notes
 * - Dispatch is by the quote's enumerated Kind tag, never payload sniffing.
 */

package normalize

import (
	"fmt"

	"github.com/gridline-project/backend/internal/models"
	"github.com/gridline-project/backend/internal/sources"
)

// Spread is the point-spread side of the triplet. Nil = absent.
type Spread struct {
	HomeLine  *float64 `json:"home_line"`
	AwayLine  *float64 `json:"away_line"`
	HomePrice *float64 `json:"home_price"`
	AwayPrice *float64 `json:"away_price"`
}

// Moneyline holds the straight-win prices. Nil = absent.
type Moneyline struct {
	HomePrice *float64 `json:"home_price"`
	AwayPrice *float64 `json:"away_price"`
}

// Total is the over/under side of the triplet. Nil = absent.
type Total struct {
	Line       *float64 `json:"line"`
	OverPrice  *float64 `json:"over_price"`
	UnderPrice *float64 `json:"under_price"`
}

// MarketTriplet is the canonical per-quote market schema.
type MarketTriplet struct {
	Spread      Spread
	Moneyline   Moneyline
	Total       Total
	PlayerProps []models.PlayerProp
}

// Empty reports whether the quote carried no usable market at all.
func (t MarketTriplet) Empty() bool {
	return t.Spread.HomeLine == nil && t.Spread.AwayLine == nil &&
		t.Spread.HomePrice == nil && t.Spread.AwayPrice == nil &&
		t.Moneyline.HomePrice == nil && t.Moneyline.AwayPrice == nil &&
		t.Total.Line == nil && t.Total.OverPrice == nil && t.Total.UnderPrice == nil &&
		len(t.PlayerProps) == 0
}

// Quote translates one raw quote into the canonical triplet.
func Quote(q sources.RawQuote) (MarketTriplet, error) {
	switch q.Kind {
	case sources.KindOddsAPI:
		return OddsAPI(q.Payload, q.HomeTeam, q.AwayTeam)
	case sources.KindESPN:
		return ESPN(q.Payload)
	case sources.KindBookTable:
		return BookTable(q.Payload)
	default:
		return MarketTriplet{}, fmt.Errorf("normalize: unknown source kind %q", q.Kind)
	}
}

func ptr(v float64) *float64 {
	return &v
}
