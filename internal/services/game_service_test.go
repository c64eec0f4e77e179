package services

import (
	"encoding/json"
	"testing"

	"github.com/gridline-project/backend/internal/models"
)

const scoreboardEventJSON = `{
	"id": "401520281",
	"date": "2025-10-04T19:30:00Z",
	"status": {"type": {"state": "pre", "completed": false}},
	"competitions": [{
		"venue": {"fullName": "Sanford Stadium"},
		"broadcasts": [{"names": ["CBS"]}],
		"competitors": [
			{"homeAway": "home", "team": {"displayName": "Georgia Bulldogs", "abbreviation": "UGA"}},
			{"homeAway": "away", "team": {"displayName": "Alabama Crimson Tide", "abbreviation": "ALA"}}
		]
	}]
}`

func decodeEvent(t *testing.T, raw string) scheduleEvent {
	t.Helper()
	var event scheduleEvent
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	return event
}

func TestToGameMapsScoreboardEvent(t *testing.T) {
	event := decodeEvent(t, scoreboardEventJSON)

	game, ok := toGame(event, 6, 2025, nil)
	if !ok {
		t.Fatal("expected a game from a complete event")
	}
	if game.ESPNID != "401520281" {
		t.Errorf("espn id: got %q", game.ESPNID)
	}
	if game.HomeName != "Georgia Bulldogs" || game.HomeAbbr != "UGA" {
		t.Errorf("home side: got %q/%q", game.HomeName, game.HomeAbbr)
	}
	if game.AwayName != "Alabama Crimson Tide" || game.AwayAbbr != "ALA" {
		t.Errorf("away side: got %q/%q", game.AwayName, game.AwayAbbr)
	}
	if game.Week != 6 || game.Season != 2025 {
		t.Errorf("week/season: got %d/%d", game.Week, game.Season)
	}
	if game.Venue != "Sanford Stadium" || game.TVBroadcast != "CBS" {
		t.Errorf("venue/broadcast: got %q/%q", game.Venue, game.TVBroadcast)
	}
	if game.Status != models.GameScheduled {
		t.Errorf("status: got %q, want scheduled", game.Status)
	}
	if game.ID == "" {
		t.Error("an unknown event must get a minted id")
	}
}

func TestToGameReusesExistingID(t *testing.T) {
	event := decodeEvent(t, scoreboardEventJSON)
	existing := map[string]string{"401520281": "id-already-stored"}

	game, ok := toGame(event, 6, 2025, existing)
	if !ok {
		t.Fatal("expected a game")
	}
	if game.ID != "id-already-stored" {
		t.Errorf("known espn id must keep its stored id, got %q", game.ID)
	}
}

func TestToGameSkipsIncompleteEvents(t *testing.T) {
	noCompetitions := decodeEvent(t, `{"id":"1","competitions":[]}`)
	if _, ok := toGame(noCompetitions, 6, 2025, nil); ok {
		t.Error("event without competitions must be skipped")
	}

	oneSided := decodeEvent(t, `{
		"id": "2",
		"competitions": [{"competitors": [
			{"homeAway": "home", "team": {"displayName": "Georgia Bulldogs"}}
		]}]
	}`)
	if _, ok := toGame(oneSided, 6, 2025, nil); ok {
		t.Error("event missing a side must be skipped")
	}
}

func TestScoreboardStatus(t *testing.T) {
	tests := []struct {
		state     string
		completed bool
		want      string
	}{
		{"pre", false, models.GameScheduled},
		{"in", false, models.GameInProgress},
		{"post", true, models.GameCompleted},
		{"in", true, models.GameCompleted},
	}
	for _, tt := range tests {
		if got := scoreboardStatus(tt.state, tt.completed); got != tt.want {
			t.Errorf("scoreboardStatus(%q, %v) = %q, want %q", tt.state, tt.completed, got, tt.want)
		}
	}
}
