package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gridline-project/backend/internal/models"
	"github.com/gridline-project/backend/internal/services"
	"github.com/gridline-project/backend/internal/store"
	"github.com/redis/go-redis/v9"
)

type memRepo struct {
	mu      sync.Mutex
	recs    map[string]*models.OddsRecord
	listErr error
}

func newMemRepo() *memRepo {
	return &memRepo{recs: make(map[string]*models.OddsRecord)}
}

func (m *memRepo) Load(_ context.Context, gameID, source string) (*models.OddsRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[gameID+"|"+source]
	if !ok {
		return nil, nil
	}
	clone := *rec
	return &clone, nil
}

func (m *memRepo) Save(_ context.Context, rec *models.OddsRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *rec
	m.recs[rec.GameID+"|"+rec.Source] = &clone
	return nil
}

func (m *memRepo) ListByGame(_ context.Context, gameID string) ([]models.OddsRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.OddsRecord
	for _, rec := range m.recs {
		if rec.GameID == gameID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (m *memRepo) ListMoved(_ context.Context, _ []string) ([]models.OddsRecord, error) {
	return nil, nil
}

type allGames struct{}

func (allGames) Exists(_ context.Context, _ string) (bool, error) { return true, nil }

type noMatch struct{}

func (noMatch) Match(_ context.Context, _, _ string) (string, bool, error) {
	return "", false, nil
}

func newTestApp(t *testing.T) (*fiber.App, *memRepo) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := newMemRepo()
	st := store.New(repo, allGames{}, rdb, 10)
	service := services.NewOddsService(nil, rdb, st, noMatch{}, nil, time.Minute)

	handler := NewOddsHandler(service)
	app := fiber.New()
	odds := app.Group("/api/v1/odds")
	odds.Get("/game/:gameID", handler.GetGameOdds)
	odds.Get("/best/:gameID/:market/:side", handler.GetBestPrice)
	odds.Get("/compare/:gameID/:market", handler.GetComparison)
	odds.Get("/history/:gameID/:source", handler.GetHistory)
	odds.Get("/props/players/:gameID", handler.GetPlayerProps)
	odds.Post("/ingest/:source", handler.Ingest)

	return app, repo
}

func fptr(v float64) *float64 { return &v }

func seed(t *testing.T, repo *memRepo, rec models.OddsRecord) {
	t.Helper()
	if err := repo.Save(context.Background(), &rec); err != nil {
		t.Fatalf("seed record: %v", err)
	}
}

func doRequest(t *testing.T, app *fiber.App, method, target, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	return resp
}

func TestGetGameOddsReturnsBoard(t *testing.T) {
	app, repo := newTestApp(t)
	seed(t, repo, models.OddsRecord{
		GameID: "g1", Source: models.SourceDraftKings,
		MoneylineHome: fptr(-110),
		UpdatedAt:     time.Now(),
	})

	resp := doRequest(t, app, http.MethodGet, "/api/v1/odds/game/g1", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}
	var recs []models.OddsRecord
	if err := json.NewDecoder(resp.Body).Decode(&recs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(recs) != 1 || recs[0].Source != models.SourceDraftKings {
		t.Errorf("unexpected board: %+v", recs)
	}
}

func TestGetBestPriceReturnsBestSource(t *testing.T) {
	app, repo := newTestApp(t)
	seed(t, repo, models.OddsRecord{
		GameID: "g1", Source: models.SourceDraftKings,
		MoneylineHome: fptr(-110),
		UpdatedAt:     time.Now(),
	})
	seed(t, repo, models.OddsRecord{
		GameID: "g1", Source: models.SourceFanDuel,
		MoneylineHome: fptr(150),
		UpdatedAt:     time.Now(),
	})

	resp := doRequest(t, app, http.MethodGet, "/api/v1/odds/best/g1/moneyline/home", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}
	var best services.BestPrice
	if err := json.NewDecoder(resp.Body).Decode(&best); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if best.Source != models.SourceFanDuel || best.Price != 150 {
		t.Errorf("best: got %s @ %v, want FanDuel @ 150", best.Source, best.Price)
	}
}

func TestGetBestPriceNoPricesIs404(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doRequest(t, app, http.MethodGet, "/api/v1/odds/best/g1/moneyline/home", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestGetBestPriceBadSideIs400(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doRequest(t, app, http.MethodGet, "/api/v1/odds/best/g1/spread/over", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", resp.StatusCode)
	}
}

func TestGetComparisonUnknownMarketIs400(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doRequest(t, app, http.MethodGet, "/api/v1/odds/compare/g1/props", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", resp.StatusCode)
	}
}

func TestGetBestPriceInfraFailureIs500(t *testing.T) {
	app, repo := newTestApp(t)
	repo.listErr = errors.New("connection refused")

	resp := doRequest(t, app, http.MethodGet, "/api/v1/odds/best/g1/moneyline/home", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", resp.StatusCode)
	}
}

func TestGetHistorySourceWithSpace(t *testing.T) {
	app, repo := newTestApp(t)
	seed(t, repo, models.OddsRecord{
		GameID: "g1", Source: models.SourceESPNBet,
		MoneylineHome: fptr(-110),
		UpdatedAt:     time.Now(),
	})

	resp := doRequest(t, app, http.MethodGet, "/api/v1/odds/history/g1/ESPN%20BET", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}
	var view services.HistoryView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Source != models.SourceESPNBet {
		t.Errorf("source: got %q, want %q", view.Source, models.SourceESPNBet)
	}
}

func TestGetPlayerPropsReturnsRowsPerSource(t *testing.T) {
	app, repo := newTestApp(t)
	seed(t, repo, models.OddsRecord{
		GameID: "g1", Source: models.SourceDraftKings,
		PlayerProps: models.PlayerPropList{
			{PlayerName: "J. Milroe", Team: "away", Market: "passing_yards", Line: fptr(245.5)},
		},
		UpdatedAt: time.Now(),
	})
	seed(t, repo, models.OddsRecord{
		GameID: "g1", Source: models.SourceFanDuel,
		MoneylineHome: fptr(150), // no props quoted
		UpdatedAt:     time.Now(),
	})

	resp := doRequest(t, app, http.MethodGet, "/api/v1/odds/props/players/g1", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}
	var rows []services.PlayerPropsRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 1 || rows[0].Source != models.SourceDraftKings {
		t.Fatalf("expected one DraftKings row, got %+v", rows)
	}
	if len(rows[0].PlayerProps) != 1 || rows[0].PlayerProps[0].Market != "passing_yards" {
		t.Errorf("unexpected props: %+v", rows[0].PlayerProps)
	}
}

func TestGetHistoryMissingIs404(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doRequest(t, app, http.MethodGet, "/api/v1/odds/history/g1/DraftKings", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestIngestAcceptsQuoteForKnownGame(t *testing.T) {
	app, repo := newTestApp(t)

	body := `{"game_id":"g1","payload":{"spread":{"line":-3.5,"odds":-110}}}`
	resp := doRequest(t, app, http.MethodPost, "/api/v1/odds/ingest/DraftKings", body)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status: got %d, want 202", resp.StatusCode)
	}
	recs, _ := repo.ListByGame(context.Background(), "g1")
	if len(recs) != 1 {
		t.Fatalf("expected one stored record, got %d", len(recs))
	}
	if recs[0].SpreadHomeLine == nil || *recs[0].SpreadHomeLine != -3.5 {
		t.Errorf("stored line: got %v", recs[0].SpreadHomeLine)
	}
}

func TestIngestSourceWithSpace(t *testing.T) {
	app, repo := newTestApp(t)

	body := `{"game_id":"g1","payload":{"spread":{"line":-3.5,"odds":-110}}}`
	resp := doRequest(t, app, http.MethodPost, "/api/v1/odds/ingest/ESPN%20BET", body)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status: got %d, want 202", resp.StatusCode)
	}
	rec, err := repo.Load(context.Background(), "g1", models.SourceESPNBet)
	if err != nil || rec == nil {
		t.Fatalf("record must be stored under the unescaped source, got %v (err %v)", rec, err)
	}
}

func TestIngestUnknownSourceIs422(t *testing.T) {
	app, _ := newTestApp(t)

	body := `{"game_id":"g1","payload":{"spread":{"line":-3.5,"odds":-110}}}`
	resp := doRequest(t, app, http.MethodPost, "/api/v1/odds/ingest/Bovada", body)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want 422", resp.StatusCode)
	}
	var out struct {
		Status   string              `json:"status"`
		Rejected *services.Rejection `json:"rejected"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Status != "rejected" || out.Rejected == nil || out.Rejected.Reason != services.ReasonUnknownSource {
		t.Errorf("unexpected rejection body: %+v", out)
	}
}

func TestIngestUnmatchedTeamsIs422(t *testing.T) {
	app, _ := newTestApp(t)

	body := `{"home_team":"Georgia Bulldogs","away_team":"Alabama Crimson Tide","payload":{"spread":{"line":-3.5,"odds":-110}}}`
	resp := doRequest(t, app, http.MethodPost, "/api/v1/odds/ingest/DraftKings", body)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want 422", resp.StatusCode)
	}
}

func TestIngestBadBodyIs400(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doRequest(t, app, http.MethodPost, "/api/v1/odds/ingest/DraftKings", "{not json")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", resp.StatusCode)
	}
}
