package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/grand-thief-cash/mlbeval/internal/consts"
)

// BizConfig 对应配置文件中的 biz_config 小节
type BizConfig struct {
	Player PlayerConfig `yaml:"player" json:"player"`
}

type PlayerConfig struct {
	DataSource      string        `yaml:"datasource" json:"datasource"`
	DefaultPageSize int           `yaml:"default_page_size" json:"default_page_size"`
	MaxPageSize     int           `yaml:"max_page_size" json:"max_page_size"`
	BatchChunkSize  int           `yaml:"batch_chunk_size" json:"batch_chunk_size"`
	CacheTTL        time.Duration `yaml:"cache_ttl" json:"cache_ttl"`
	CachePrefix     string        `yaml:"cache_prefix" json:"cache_prefix"`
}

// UnmarshalJSON cache_ttl 接受 "5m" 这类时长字符串, 数字仍按纳秒处理 (与 time.Duration 默认编码一致).
// 未出现的字段保留原值, 配置加载器依赖这一点保留默认值
func (p *PlayerConfig) UnmarshalJSON(b []byte) error {
	type plain PlayerConfig
	aux := struct {
		*plain
		CacheTTL json.RawMessage `json:"cache_ttl"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if len(aux.CacheTTL) == 0 || string(aux.CacheTTL) == "null" {
		return nil
	}
	d, err := parseDuration(aux.CacheTTL)
	if err != nil {
		return fmt.Errorf("player.cache_ttl: %w", err)
	}
	p.CacheTTL = d
	return nil
}

func parseDuration(raw json.RawMessage) (time.Duration, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return time.ParseDuration(strings.TrimSpace(s))
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("invalid duration %s", raw)
	}
	return time.Duration(n), nil
}

var (
	bizOnce sync.Once
	biz     *BizConfig
)

// GetBizConfig 返回进程内唯一的业务配置指针, 由 app.SetBizConfig 填充
func GetBizConfig() *BizConfig {
	bizOnce.Do(func() { biz = NewBizConfig() })
	return biz
}

func NewBizConfig() *BizConfig {
	ttl, _ := time.ParseDuration(consts.DEFAULT_CACHE_TTL)
	return &BizConfig{Player: PlayerConfig{
		DataSource:      consts.DEFAULT_DATASOURCE,
		DefaultPageSize: consts.DEFAULT_PAGE_SIZE,
		MaxPageSize:     consts.MAX_PAGE_SIZE,
		BatchChunkSize:  consts.DEFAULT_CHUNK_SIZE,
		CacheTTL:        ttl,
		CachePrefix:     consts.DEFAULT_CACHE_PREF,
	}}
}

// Validate 补齐被显式置零的字段并做基本校验, 由配置加载器在加载后调用
func (b *BizConfig) Validate() error {
	def := NewBizConfig().Player
	p := &b.Player
	p.DataSource = strings.TrimSpace(p.DataSource)
	if p.DataSource == "" {
		return errors.New("player.datasource is required")
	}
	if p.DefaultPageSize <= 0 {
		p.DefaultPageSize = def.DefaultPageSize
	}
	if p.MaxPageSize <= 0 {
		p.MaxPageSize = def.MaxPageSize
	}
	if p.DefaultPageSize > p.MaxPageSize {
		return errors.New("player.default_page_size exceeds max_page_size")
	}
	if p.BatchChunkSize <= 0 {
		p.BatchChunkSize = def.BatchChunkSize
	}
	if p.CacheTTL <= 0 {
		p.CacheTTL = def.CacheTTL
	}
	if strings.TrimSpace(p.CachePrefix) == "" {
		p.CachePrefix = def.CachePrefix
	}
	return nil
}
