package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/grand-thief-cash/mlbeval/infra/application/components/gormdb"
	"github.com/grand-thief-cash/mlbeval/infra/application/components/http_server"
	"github.com/grand-thief-cash/mlbeval/infra/application/core"
	bizConfig "github.com/grand-thief-cash/mlbeval/internal/config"
	"github.com/grand-thief-cash/mlbeval/internal/controller"
	"github.com/grand-thief-cash/mlbeval/internal/dao"
	"github.com/grand-thief-cash/mlbeval/internal/migrate"
	"github.com/grand-thief-cash/mlbeval/internal/model"
	"github.com/grand-thief-cash/mlbeval/internal/service"
)

func TestOpenAPIDocumentsEveryColumn(t *testing.T) {
	var doc struct {
		Paths      map[string]any `yaml:"paths"`
		Components struct {
			Schemas map[string]struct {
				Properties map[string]any `yaml:"properties"`
			} `yaml:"schemas"`
		} `yaml:"components"`
	}
	require.NoError(t, yaml.Unmarshal(openAPIDoc, &doc))
	for _, p := range []string{
		"/api/v1/players", "/api/v1/players/count", "/api/v1/players/batch_upsert",
		"/api/v1/players/{key}", "/api/v1/players/{key}/details", "/api/v1/trades/analyze",
		"/api/players", "/api/players/{key}/details", "/api/trades/analyze",
	} {
		assert.Contains(t, doc.Paths, p)
	}
	props := doc.Components.Schemas["Player"].Properties
	assert.Len(t, props, len(model.PlayerColumns))
	for _, name := range model.ColumnNames() {
		assert.Contains(t, props, name)
	}
}

func newStack(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "players.db")
	mm, err := migrate.NewMigrationManager("sqlite3://" + path)
	require.NoError(t, err)
	require.NoError(t, mm.Up())
	require.NoError(t, mm.Close())
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Discard, TranslateError: true})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	d := dao.NewPlayerDaoWithDB(db, gormdb.DialectSQLite)
	playerSvc := service.NewPlayerService(bizConfig.NewBizConfig().Player)
	playerSvc.Dao = d
	tradeSvc := service.NewTradeService()
	tradeSvc.Dao = d
	playerCtrl := controller.NewPlayerController()
	playerCtrl.Svc = playerSvc
	tradeCtrl := controller.NewTradeController()
	tradeCtrl.Svc = tradeSvc

	c := core.NewContainer()
	for _, comp := range []core.Component{d, playerSvc, tradeSvc, playerCtrl, tradeCtrl} {
		require.NoError(t, comp.Start(ctx))
		require.NoError(t, c.Register(comp.Name(), comp))
	}

	comp, err := http_server.NewFactory(c).Create(&http_server.HTTPServerConfig{Enabled: true, EnableHealth: true})
	require.NoError(t, err)
	h, err := comp.(*http_server.HTTPServerComponent).BuildHandler()
	require.NoError(t, err)
	return h
}

func call(t *testing.T, h http.Handler, method, path, body string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec.Code, out
}

func TestEndToEnd(t *testing.T) {
	h := newStack(t)

	code, _ := call(t, h, http.MethodPost, "/api/v1/players/batch_upsert", `[
		{"name":"Mike Trout","team":"LAA","status":"Signed","year":2025,"war":4.1,"surplus_value":-10,"contract_value":37,"avg":0.27},
		{"name":"Mike Trout","team":"LAA","status":"Signed","year":2026,"war":3.5,"surplus_value":-15,"contract_value":37,"avg":0.26},
		{"name":"Zack Wheeler","team":"PHI","status":"Signed","year":2025,"war":5.8,"surplus_value":12,"fip":2.9}
	]`)
	require.Equal(t, http.StatusOK, code)

	code, out := call(t, h, http.MethodGet, "/api/v1/players?sort_by=war&limit=2", "")
	require.Equal(t, http.StatusOK, code)
	data := out["data"].(map[string]any)
	assert.Equal(t, float64(3), data["count"])
	players := data["players"].([]any)
	require.Len(t, players, 2)
	assert.Equal(t, "Zack Wheeler", players[0].(map[string]any)["name"])
	assert.Equal(t, "Pitcher", players[0].(map[string]any)["position"])

	code, out = call(t, h, http.MethodGet, "/api/v1/players/mike%20trout/details", "")
	require.Equal(t, http.StatusOK, code)
	stats := out["data"].(map[string]any)
	assert.Equal(t, "Hitter", stats["position"])
	assert.Len(t, stats["projections"], 2)

	code, out = call(t, h, http.MethodPost, "/api/v1/trades/analyze", `{"team1_players":["Mike Trout"],"team2_players":["Zack Wheeler"]}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(-37), out["data"].(map[string]any)["value_difference"])

	code, _ = call(t, h, http.MethodPost, "/api/v1/trades/analyze", `{"team1_players":["Nobody"]}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, out = call(t, h, http.MethodPatch, "/api/v1/players/3", `{"team":"NYM","fip":null}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "NYM", out["data"].(map[string]any)["team"])
	assert.Nil(t, out["data"].(map[string]any)["fip"])

	code, _ = call(t, h, http.MethodPatch, "/api/v1/players/3", `{"defense":1}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = call(t, h, http.MethodGet, "/api/v1/players/404", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestOpenAPIAndHealthRoutes(t *testing.T) {
	h := newStack(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "openapi: 3.0.3"))

	code, out := call(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", out["status"])
}
