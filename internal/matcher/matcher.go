/**
 * @description
 * Event matcher.
 * Resolves the team-name pair of a raw quote to a canonical game id among
 * games scheduled inside a bounded look-back/forward window. Matching is a
 * heuristic behind the Strategy interface so it stays swappable and testable
 * in isolation; the resolution rules around it are fixed:
 *   - both sides of the quote must correspond to both sides of one game
 *     (order-insensitive, feeds disagree about home/away),
 *   - several candidates: prefer the game whose kickoff is closest to now,
 *   - still tied: ambiguous, report no match rather than guess.
 *
 * @notes
 * - Pure lookup, no writes. "No match" is a skip signal, never an error.
 */

package matcher

import (
	"context"
	"strings"
	"time"

	"github.com/gridline-project/backend/internal/models"
)

// GameSource provides the candidate games for a window. Satisfied by
// *catalog.Catalog.
type GameSource interface {
	GamesInWindow(ctx context.Context, from, to time.Time) ([]models.Game, error)
}

// Strategy decides whether a quote-side team name refers to a stored team.
type Strategy interface {
	TeamMatches(candidate, name, abbr string) bool
}

// SubstringStrategy is the default heuristic: case-insensitive containment
// in either direction against the name, or exact abbreviation equality.
type SubstringStrategy struct{}

func (SubstringStrategy) TeamMatches(candidate, name, abbr string) bool {
	cand := strings.TrimSpace(strings.ToLower(candidate))
	if cand == "" {
		return false
	}
	stored := strings.ToLower(name)
	if strings.Contains(stored, cand) || strings.Contains(cand, stored) {
		return true
	}
	return abbr != "" && strings.EqualFold(candidate, abbr)
}

// Matcher resolves quotes to games.
type Matcher struct {
	Games    GameSource
	Strategy Strategy
	Window   time.Duration // look-back and look-forward from now
	now      func() time.Time
}

func New(games GameSource, windowDays int) *Matcher {
	if windowDays < 1 {
		windowDays = 7
	}
	return &Matcher{
		Games:    games,
		Strategy: SubstringStrategy{},
		Window:   time.Duration(windowDays) * 24 * time.Hour,
		now:      time.Now,
	}
}

// Match returns the id of the single best-matching game, or ok=false when no
// unambiguous match exists.
func (m *Matcher) Match(ctx context.Context, homeCandidate, awayCandidate string) (string, bool, error) {
	now := m.now()
	games, err := m.Games.GamesInWindow(ctx, now.Add(-m.Window), now.Add(m.Window))
	if err != nil {
		return "", false, err
	}

	var best *models.Game
	bestDist := time.Duration(-1)
	ambiguous := false

	for i := range games {
		g := &games[i]
		if !m.pairMatches(homeCandidate, awayCandidate, g) {
			continue
		}

		dist := now.Sub(g.GameTime)
		if dist < 0 {
			dist = -dist
		}

		switch {
		case best == nil || dist < bestDist:
			best = g
			bestDist = dist
			ambiguous = false
		case dist == bestDist:
			ambiguous = true
		}
	}

	if best == nil || ambiguous {
		return "", false, nil
	}
	return best.ID, true, nil
}

// pairMatches requires both candidates to land on opposite sides of the same
// game, trying the straight assignment then the swapped one.
func (m *Matcher) pairMatches(homeCand, awayCand string, g *models.Game) bool {
	straight := m.Strategy.TeamMatches(homeCand, g.HomeName, g.HomeAbbr) &&
		m.Strategy.TeamMatches(awayCand, g.AwayName, g.AwayAbbr)
	if straight {
		return true
	}
	swapped := m.Strategy.TeamMatches(homeCand, g.AwayName, g.AwayAbbr) &&
		m.Strategy.TeamMatches(awayCand, g.HomeName, g.HomeAbbr)
	return swapped
}
