package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appConfig "github.com/grand-thief-cash/mlbeval/infra/application/config"
)

func TestValidateFillsDefaults(t *testing.T) {
	b := &BizConfig{Player: PlayerConfig{DataSource: " main "}}
	require.NoError(t, b.Validate())
	assert.Equal(t, "main", b.Player.DataSource)
	assert.Equal(t, 50, b.Player.DefaultPageSize)
	assert.Equal(t, 500, b.Player.MaxPageSize)
	assert.Equal(t, 200, b.Player.BatchChunkSize)
	assert.Equal(t, 5*time.Minute, b.Player.CacheTTL)
	assert.Equal(t, "mlbeval", b.Player.CachePrefix)
}

func TestValidateRejects(t *testing.T) {
	assert.Error(t, (&BizConfig{}).Validate())
	b := NewBizConfig()
	b.Player.DefaultPageSize = 1000
	assert.Error(t, b.Validate())
}

func TestGetBizConfigSingleton(t *testing.T) {
	assert.Same(t, GetBizConfig(), GetBizConfig())
}

func TestPlayerConfigJSONDuration(t *testing.T) {
	cases := map[string]time.Duration{
		`{"cache_ttl":"5m"}`:       5 * time.Minute,
		`{"cache_ttl":" 90s "}`:    90 * time.Second,
		`{"cache_ttl":1000000000}`: time.Second,
		`{"datasource":"x"}`:       7 * time.Second,
		`{"cache_ttl":null}`:       7 * time.Second,
	}
	for in, want := range cases {
		p := PlayerConfig{DataSource: "main", CacheTTL: 7 * time.Second}
		require.NoError(t, json.Unmarshal([]byte(in), &p), in)
		assert.Equal(t, want, p.CacheTTL, in)
	}

	p := PlayerConfig{DataSource: "main", MaxPageSize: 500}
	require.NoError(t, json.Unmarshal([]byte(`{"default_page_size":20,"cache_ttl":"1h"}`), &p))
	assert.Equal(t, "main", p.DataSource)
	assert.Equal(t, 20, p.DefaultPageSize)
	assert.Equal(t, 500, p.MaxPageSize)
	assert.Equal(t, time.Hour, p.CacheTTL)

	assert.Error(t, json.Unmarshal([]byte(`{"cache_ttl":"soon"}`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"cache_ttl":true}`), &p))
}

func TestLoadJSONBizConfigWithDurationString(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"app_info":{"app_name":"mlbeval"},"biz_config":{"player":{"datasource":"main","cache_ttl":"2m30s"}}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	biz := NewBizConfig()
	loader := appConfig.NewLoader("test", path)
	loader.SetBizConfig(biz)
	_, err := loader.LoadConfig()
	require.NoError(t, err)
	require.NoError(t, biz.Validate())
	assert.Equal(t, 150*time.Second, biz.Player.CacheTTL)
	assert.Equal(t, 50, biz.Player.DefaultPageSize)
}
