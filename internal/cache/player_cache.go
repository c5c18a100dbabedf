package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/grand-thief-cash/mlbeval/infra/application/components/logging"
	"github.com/grand-thief-cash/mlbeval/infra/application/components/redis"
	"github.com/grand-thief-cash/mlbeval/infra/application/core"
	"github.com/grand-thief-cash/mlbeval/internal/consts"
	"github.com/grand-thief-cash/mlbeval/internal/model"
)

// PlayerCache 球员单条记录与详情的读穿缓存.
// 缓存错误只记 warn, 不向调用方返回; nil *PlayerCache 视为永远 miss
type PlayerCache struct {
	*core.BaseComponent
	Redis *redis.RedisComponent `infra:"dep:redis"`

	prefix string
	ttl    time.Duration
	store  Store
}

func NewPlayerCache(prefix string, ttl time.Duration) *PlayerCache {
	return &PlayerCache{
		BaseComponent: core.NewBaseComponent(consts.COMP_CACHE_PLAYER),
		prefix:        prefix,
		ttl:           ttl,
	}
}

func NewPlayerCacheWithStore(store Store, prefix string, ttl time.Duration) *PlayerCache {
	c := NewPlayerCache(prefix, ttl)
	c.store = store
	return c
}

func (c *PlayerCache) Start(ctx context.Context) error {
	if err := c.BaseComponent.Start(ctx); err != nil {
		return err
	}
	if c.store != nil {
		return nil
	}
	if c.Redis == nil || c.Redis.Client() == nil {
		return fmt.Errorf("%s: redis client unavailable", c.Name())
	}
	c.store = NewRedisStore(c.Redis.Client())
	return nil
}

func (c *PlayerCache) idKey(id int64) string {
	return c.prefix + ":player:id:" + strconv.FormatInt(id, 10)
}

func (c *PlayerCache) detailsKey(name string) string {
	return c.prefix + ":player:details:" + strings.ToLower(strings.TrimSpace(name))
}

func (c *PlayerCache) GetPlayer(ctx context.Context, id int64) (*model.Player, bool) {
	if c == nil {
		return nil, false
	}
	var p model.Player
	if !c.get(ctx, c.idKey(id), &p) {
		return nil, false
	}
	return &p, true
}

func (c *PlayerCache) SetPlayer(ctx context.Context, p *model.Player) {
	if c == nil || p == nil {
		return
	}
	c.set(ctx, c.idKey(p.ID), p)
}

func (c *PlayerCache) GetDetails(ctx context.Context, name string) (*model.PlayerStats, bool) {
	if c == nil {
		return nil, false
	}
	var s model.PlayerStats
	if !c.get(ctx, c.detailsKey(name), &s) {
		return nil, false
	}
	return &s, true
}

func (c *PlayerCache) SetDetails(ctx context.Context, name string, s *model.PlayerStats) {
	if c == nil || s == nil {
		return
	}
	c.set(ctx, c.detailsKey(name), s)
}

// Invalidate 删除 id 键以及给定名字的详情键, 空名字忽略
func (c *PlayerCache) Invalidate(ctx context.Context, ids []int64, names ...string) {
	if c == nil || c.store == nil {
		return
	}
	seen := map[string]struct{}{}
	keys := make([]string, 0, len(ids)+len(names))
	add := func(k string) {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	for _, id := range ids {
		if id != 0 {
			add(c.idKey(id))
		}
	}
	for _, n := range names {
		if strings.TrimSpace(n) != "" {
			add(c.detailsKey(n))
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := c.store.Del(ctx, keys...); err != nil {
		logging.Warn(ctx, "player cache invalidate failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (c *PlayerCache) get(ctx context.Context, key string, out any) bool {
	if c == nil || c.store == nil {
		return false
	}
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		logging.Warn(ctx, "player cache get failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		logging.Warn(ctx, "player cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *PlayerCache) set(ctx context.Context, key string, v any) {
	if c == nil || c.store == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
		logging.Warn(ctx, "player cache set failed", zap.String("key", key), zap.Error(err))
	}
}
