/**
 * @description
 * Source adapter contract.
 * One adapter per upstream quote feed; each Fetch yields the cycle's raw
 * quotes in the feed's own payload shape, tagged with an enumerated Kind so
 * normalization dispatches on the tag and never sniffs payload structure.
 *
 * @notes
 * - Adapters are isolation boundaries: a fetch error or timeout yields zero
 *   quotes for the cycle and must never affect sibling adapters.
 */

package sources

import (
	"context"
	"encoding/json"
	"time"
)

// Kind enumerates the supported payload shapes.
type Kind string

const (
	KindOddsAPI   Kind = "oddsapi"
	KindESPN      Kind = "espn"
	KindBookTable Kind = "booktable"
)

// RawQuote is one per-(event, book) unit of upstream data prior to
// normalization. Payload keeps the source's native shape.
type RawQuote struct {
	Kind       Kind
	Source     string // canonical book name (models.Source*)
	HomeTeam   string
	AwayTeam   string
	ESPNGameID string // set when the feed carries a catalog-stable id
	Payload    json.RawMessage
	FetchedAt  time.Time
}

// Adapter is the per-feed fetch contract.
type Adapter interface {
	Kind() Kind
	Fetch(ctx context.Context) ([]RawQuote, error)
}

// CanonicalBook maps an upstream bookmaker key to the canonical source name.
// Unknown keys map to "" and the quote is dropped during normalization.
func CanonicalBook(key string) string {
	switch key {
	case "draftkings":
		return "DraftKings"
	case "fanduel":
		return "FanDuel"
	case "betmgm":
		return "BetMGM"
	case "caesars":
		return "Caesars"
	case "betrivers":
		return "BetRivers"
	case "espnbet":
		return "ESPN BET"
	case "bet365":
		return "Bet365"
	}
	return ""
}
