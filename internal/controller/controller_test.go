package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/grand-thief-cash/mlbeval/internal/dao"
	"github.com/grand-thief-cash/mlbeval/internal/model"
	"github.com/grand-thief-cash/mlbeval/internal/service"
)

type stubPlayerService struct {
	players  map[int64]*model.Player
	nextID   int64
	filters  model.PlayerFilters
	limit    int
	patch    map[string]any
	listErr  error
	detailed string
}

func newStubPlayerService() *stubPlayerService {
	return &stubPlayerService{players: map[int64]*model.Player{}, nextID: 1}
}

func (s *stubPlayerService) Create(_ context.Context, p *model.Player) error {
	p.ID = s.nextID
	s.nextID++
	s.players[p.ID] = p
	return nil
}

func (s *stubPlayerService) Get(_ context.Context, id int64) (*model.Player, error) {
	p, ok := s.players[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (s *stubPlayerService) Replace(_ context.Context, p *model.Player) error {
	if _, ok := s.players[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.players[p.ID] = p
	return nil
}

func (s *stubPlayerService) Update(_ context.Context, id int64, fields map[string]any) (*model.Player, error) {
	p, ok := s.players[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	s.patch = fields
	return p, nil
}

func (s *stubPlayerService) Delete(_ context.Context, id int64) error {
	if _, ok := s.players[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.players, id)
	return nil
}

func (s *stubPlayerService) List(_ context.Context, f model.PlayerFilters, limit, _ int) ([]*model.Player, int64, error) {
	s.filters, s.limit = f, limit
	if s.listErr != nil {
		return nil, 0, s.listErr
	}
	var out []*model.Player
	for _, p := range s.players {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (s *stubPlayerService) Count(_ context.Context, f model.PlayerFilters) (int64, error) {
	s.filters = f
	return int64(len(s.players)), nil
}

func (s *stubPlayerService) BatchUpsert(_ context.Context, list []*model.Player) (int64, error) {
	return int64(len(list)), nil
}

func (s *stubPlayerService) Details(_ context.Context, name string) (*model.PlayerStats, error) {
	s.detailed = name
	if name != "Mike Trout" {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.PlayerStats{Name: name, Team: "LAA", Position: "Hitter"}, nil
}

type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(_ context.Context, team1, team2 []string) (*model.TradeAnalysis, error) {
	if len(team1) == 0 && len(team2) == 0 {
		return nil, service.ErrEmptyTrade
	}
	if len(team1) > 0 && team1[0] == "Nobody" {
		return nil, &service.PlayerNotFoundError{Names: []string{"Nobody"}}
	}
	return &model.TradeAnalysis{AnalysisID: "x", ValueDifference: 1.5}, nil
}

func newTestRouter(svc PlayerService) chi.Router {
	r := chi.NewRouter()
	pc := NewPlayerController()
	pc.Svc = svc
	pc.Routes(r)
	tc := NewTradeController()
	tc.Svc = stubAnalyzer{}
	tc.Routes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func TestCreateAndGet(t *testing.T) {
	svc := newStubPlayerService()
	h := newTestRouter(svc)

	rec, out := do(t, h, http.MethodPost, "/api/v1/players", `{"name":"Mike Trout","war":5.5,"avg":null}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	data := out["data"].(map[string]any)
	assert.Equal(t, float64(1), data["id"])
	assert.Nil(t, data["fip"])
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec, out = do(t, h, http.MethodGet, "/api/v1/players/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Mike Trout", out["data"].(map[string]any)["name"])

	rec, out = do(t, h, http.MethodGet, "/api/v1/players/2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, out["error"])

	rec, _ = do(t, h, http.MethodGet, "/api/v1/players/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateRejectsBadBodies(t *testing.T) {
	h := newTestRouter(newStubPlayerService())
	for _, body := range []string{
		`{"id":4,"name":"x"}`,
		`{"war":"lots"}`,
		`{"nickname":"x"}`,
		`{"name":"x"} {"name":"y"}`,
		`not json`,
	} {
		rec, out := do(t, h, http.MethodPost, "/api/v1/players/", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.NotEmpty(t, out["error"], body)
	}
}

func TestListParsesFilters(t *testing.T) {
	svc := newStubPlayerService()
	h := newTestRouter(svc)
	_ = svc.Create(context.Background(), &model.Player{Name: model.Str("Shohei Ohtani"), AVG: model.Float(0.3), FIP: model.Float(3)})

	rec, out := do(t, h, http.MethodGet, "/api/v1/players?year=2025&team=lad&position=Two-Way&sort_by=WAR&search=oht&limit=10&ids=1,2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2025.0, *svc.filters.Year)
	assert.Equal(t, "two-way", svc.filters.Position)
	assert.Equal(t, "war", svc.filters.SortBy)
	assert.Equal(t, []int64{1, 2}, svc.filters.IDs)
	assert.Equal(t, 10, svc.limit)

	data := out["data"].(map[string]any)
	assert.Equal(t, float64(1), data["count"])
	first := data["players"].([]any)[0].(map[string]any)
	assert.Equal(t, "Two-Way", first["position"])
	assert.NotContains(t, first, "fip")

	for _, q := range []string{"year=x", "position=catcher", "sort_by=age", "limit=-1", "offset=z", "ids=1,b"} {
		rec, _ := do(t, h, http.MethodGet, "/api/v1/players?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}

	rec, out = do(t, h, http.MethodGet, "/api/v1/players/count?team=LAD", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), out["data"].(map[string]any)["count"])
}

func TestListErrorMapping(t *testing.T) {
	svc := newStubPlayerService()
	h := newTestRouter(svc)

	svc.listErr = dao.ErrInvalidFilter
	rec, _ := do(t, h, http.MethodGet, "/api/v1/players", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.listErr = gorm.ErrDuplicatedKey
	rec, _ = do(t, h, http.MethodGet, "/api/v1/players", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	svc.listErr = errors.New("connection reset")
	rec, out := do(t, h, http.MethodGet, "/api/v1/players", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", out["error"])
}

func TestReplacePatchDelete(t *testing.T) {
	svc := newStubPlayerService()
	h := newTestRouter(svc)
	_ = svc.Create(context.Background(), &model.Player{Name: model.Str("A")})

	rec, _ := do(t, h, http.MethodPut, "/api/v1/players/1", `{"name":"B"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "B", *svc.players[1].Name)

	rec, _ = do(t, h, http.MethodPut, "/api/v1/players/1", `{"id":2,"name":"B"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = do(t, h, http.MethodPut, "/api/v1/players/9", `{"name":"B"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, h, http.MethodPatch, "/api/v1/players/1", `{"team":"SEA","war":null,"fip":3.2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"team": "SEA", "war": nil, "fip": 3.2}, svc.patch)

	for _, body := range []string{`{"id":3}`, `{"nickname":"x"}`, `{"war":"high"}`, `{"team":7}`} {
		rec, _ = do(t, h, http.MethodPatch, "/api/v1/players/1", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}

	rec, out := do(t, h, http.MethodDelete, "/api/v1/players/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["data"].(map[string]any)["deleted"])
	rec, _ = do(t, h, http.MethodDelete, "/api/v1/players/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBatchUpsertAndDetails(t *testing.T) {
	svc := newStubPlayerService()
	h := newTestRouter(svc)

	rec, out := do(t, h, http.MethodPost, "/api/v1/players/batch_upsert", `[{"id":5,"name":"A"},{"name":"B"}]`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), out["data"].(map[string]any)["rows"])

	rec, out = do(t, h, http.MethodGet, "/api/v1/players/Mike%20Trout/details", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Mike Trout", svc.detailed)
	assert.Equal(t, "LAA", out["data"].(map[string]any)["team"])

	rec, _ = do(t, h, http.MethodGet, "/api/v1/players/Nobody/details", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTradeAnalyze(t *testing.T) {
	h := newTestRouter(newStubPlayerService())

	rec, out := do(t, h, http.MethodPost, "/api/v1/trades/analyze", `{"team1_players":["A"],"team2_players":["B"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.5, out["data"].(map[string]any)["value_difference"])

	rec, _ = do(t, h, http.MethodPost, "/api/v1/trades/analyze", `{"team1_players":[],"team2_players":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, out = do(t, h, http.MethodPost, "/api/v1/trades/analyze", `{"team1_players":["Nobody"]}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, out["error"], "Nobody")
}

// /api 下的路径与原前端客户端一致: 同样的查询参数, 响应不带 data 信封
func TestLegacyClientRoutes(t *testing.T) {
	svc := newStubPlayerService()
	svc.players[1] = &model.Player{ID: 1, Name: model.Str("Mike Trout"), Team: model.Str("LAA"), WAR: model.Float(6.2)}
	h := newTestRouter(svc)

	for _, path := range []string{"/api/players?year=2024", "/api/players/?team=LAA&sort_by=war&search=trout"} {
		rec, out := do(t, h, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.NotContains(t, out, "data", path)
		assert.Equal(t, float64(1), out["count"], path)
		players := out["players"].([]any)
		require.Len(t, players, 1)
		assert.Equal(t, "Mike Trout", players[0].(map[string]any)["name"])
	}
	assert.Equal(t, "war", svc.filters.SortBy)
	assert.Equal(t, "trout", svc.filters.Search)

	rec, out := do(t, h, http.MethodGet, "/api/players/Mike%20Trout/details", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "LAA", out["team"])
	assert.Equal(t, "Hitter", out["position"])

	rec, _ = do(t, h, http.MethodGet, "/api/players/Nobody/details", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, out = do(t, h, http.MethodPost, "/api/trades/analyze", `{"team1_players":["A"],"team2_players":["B"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.5, out["value_difference"])
	assert.NotContains(t, out, "data")

	rec, out = do(t, h, http.MethodPost, "/api/trades/analyze", `{"team1_players":["Nobody"]}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, out["error"], "Nobody")
}
