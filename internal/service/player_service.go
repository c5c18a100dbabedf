package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/grand-thief-cash/mlbeval/infra/application/components/logging"
	promcomp "github.com/grand-thief-cash/mlbeval/infra/application/components/prometheus"
	"github.com/grand-thief-cash/mlbeval/infra/application/core"
	"github.com/grand-thief-cash/mlbeval/internal/cache"
	bizConfig "github.com/grand-thief-cash/mlbeval/internal/config"
	"github.com/grand-thief-cash/mlbeval/internal/consts"
	"github.com/grand-thief-cash/mlbeval/internal/dao"
	"github.com/grand-thief-cash/mlbeval/internal/model"
)

type PlayerService struct {
	*core.BaseComponent
	Dao     dao.PlayerDao       `infra:"dep:player_dao"`
	Cache   *cache.PlayerCache  `infra:"dep:player_cache?"`
	Metrics *promcomp.Component `infra:"dep:prometheus?"`

	cfg     bizConfig.PlayerConfig
	metrics *playerMetrics
}

func NewPlayerService(cfg bizConfig.PlayerConfig) *PlayerService {
	return &PlayerService{
		BaseComponent: core.NewBaseComponent(consts.COMP_SVC_PLAYER),
		cfg:           cfg,
	}
}

func (s *PlayerService) Start(ctx context.Context) error {
	if err := s.BaseComponent.Start(ctx); err != nil {
		return err
	}
	if s.Dao == nil {
		return fmt.Errorf("%s: player dao not injected", s.Name())
	}
	s.metrics = newPlayerMetrics(s.Metrics)
	return nil
}

func (s *PlayerService) track(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := startSpan(ctx, "PlayerService."+op, attrs...)
	return ctx, func(err error) {
		s.metrics.observe(op, start, err)
		endSpan(span, err)
	}
}

// ClampLimit 0 或负数取默认页大小, 超过上限截断
func (s *PlayerService) ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return s.cfg.DefaultPageSize
	case limit > s.cfg.MaxPageSize:
		return s.cfg.MaxPageSize
	default:
		return limit
	}
}

func (s *PlayerService) Create(ctx context.Context, p *model.Player) (err error) {
	ctx, done := s.track(ctx, "create")
	defer func() { done(err) }()
	if err = s.Dao.Create(ctx, p); err != nil {
		return err
	}
	s.Cache.Invalidate(ctx, nil, model.DerefStr(p.Name))
	logging.Info(ctx, "player created", zap.Int64("id", p.ID), zap.Stringer("player", p))
	return nil
}

func (s *PlayerService) Get(ctx context.Context, id int64) (p *model.Player, err error) {
	ctx, done := s.track(ctx, "get", attribute.Int64("player.id", id))
	defer func() { done(err) }()
	if s.Cache != nil {
		cached, hit := s.Cache.GetPlayer(ctx, id)
		s.metrics.cacheLookup("id", hit)
		if hit {
			return cached, nil
		}
	}
	if p, err = s.Dao.Get(ctx, id); err != nil {
		return nil, err
	}
	s.Cache.SetPlayer(ctx, p)
	return p, nil
}

// Save 按 id upsert; 覆盖已有记录时旧名字的详情缓存一并失效
func (s *PlayerService) Save(ctx context.Context, p *model.Player) (err error) {
	ctx, done := s.track(ctx, "save", attribute.Int64("player.id", p.ID))
	defer func() { done(err) }()
	oldName := s.previousName(ctx, p.ID)
	if err = s.Dao.Save(ctx, p); err != nil {
		return err
	}
	s.Cache.Invalidate(ctx, []int64{p.ID}, oldName, model.DerefStr(p.Name))
	return nil
}

func (s *PlayerService) Replace(ctx context.Context, p *model.Player) (err error) {
	ctx, done := s.track(ctx, "replace", attribute.Int64("player.id", p.ID))
	defer func() { done(err) }()
	old, err := s.Dao.Get(ctx, p.ID)
	if err != nil {
		return err
	}
	if err = s.Dao.Replace(ctx, p); err != nil {
		return err
	}
	s.Cache.Invalidate(ctx, []int64{p.ID}, model.DerefStr(old.Name), model.DerefStr(p.Name))
	return nil
}

func (s *PlayerService) Update(ctx context.Context, id int64, fields map[string]any) (p *model.Player, err error) {
	ctx, done := s.track(ctx, "update", attribute.Int64("player.id", id))
	defer func() { done(err) }()
	old, err := s.Dao.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err = s.Dao.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx, []int64{id}, model.DerefStr(old.Name))
	if p, err = s.Dao.Get(ctx, id); err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx, nil, model.DerefStr(p.Name))
	return p, nil
}

func (s *PlayerService) Delete(ctx context.Context, id int64) (err error) {
	ctx, done := s.track(ctx, "delete", attribute.Int64("player.id", id))
	defer func() { done(err) }()
	old, err := s.Dao.Get(ctx, id)
	if err != nil {
		return err
	}
	if err = s.Dao.Delete(ctx, id); err != nil {
		return err
	}
	s.Cache.Invalidate(ctx, []int64{id}, model.DerefStr(old.Name))
	logging.Info(ctx, "player deleted", zap.Int64("id", id), zap.Stringer("player", old))
	return nil
}

// List 返回当前页以及满足条件的总数
func (s *PlayerService) List(ctx context.Context, f model.PlayerFilters, limit, offset int) (list []*model.Player, total int64, err error) {
	ctx, done := s.track(ctx, "list")
	defer func() { done(err) }()
	if offset < 0 {
		offset = 0
	}
	if list, err = s.Dao.ListFiltered(ctx, f, s.ClampLimit(limit), offset); err != nil {
		return nil, 0, err
	}
	if total, err = s.Dao.CountFiltered(ctx, f); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (s *PlayerService) Count(ctx context.Context, f model.PlayerFilters) (n int64, err error) {
	ctx, done := s.track(ctx, "count")
	defer func() { done(err) }()
	return s.Dao.CountFiltered(ctx, f)
}

func (s *PlayerService) BatchUpsert(ctx context.Context, list []*model.Player) (rows int64, err error) {
	ctx, done := s.track(ctx, "batch_upsert", attribute.Int("batch.size", len(list)))
	defer func() { done(err) }()
	ids := make([]int64, 0, len(list))
	names := make([]string, 0, len(list))
	for _, p := range list {
		if p == nil {
			continue
		}
		if p.ID != 0 {
			names = append(names, s.previousName(ctx, p.ID))
		}
	}
	if rows, err = s.Dao.BatchUpsert(ctx, list, s.cfg.BatchChunkSize); err != nil {
		return 0, err
	}
	for _, p := range list {
		if p == nil {
			continue
		}
		ids = append(ids, p.ID)
		names = append(names, model.DerefStr(p.Name))
	}
	s.Cache.Invalidate(ctx, ids, names...)
	logging.Info(ctx, "players batch upserted", zap.Int64("rows", rows), zap.Int("chunk_size", s.cfg.BatchChunkSize))
	return rows, nil
}

// Details 汇总一名球员全部赛季, 名字大小写不敏感
func (s *PlayerService) Details(ctx context.Context, name string) (stats *model.PlayerStats, err error) {
	ctx, done := s.track(ctx, "details", attribute.String("player.name", name))
	defer func() { done(err) }()
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, gorm.ErrRecordNotFound
	}
	if s.Cache != nil {
		cached, hit := s.Cache.GetDetails(ctx, name)
		s.metrics.cacheLookup("details", hit)
		if hit {
			return cached, nil
		}
	}
	seasons, err := s.Dao.ListByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(seasons) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	stats = BuildPlayerStats(seasons)
	s.Cache.SetDetails(ctx, name, stats)
	return stats, nil
}

// BuildPlayerStats 按赛季排序后汇总, 球队取最新赛季
func BuildPlayerStats(seasons []*model.Player) *model.PlayerStats {
	sortSeasons(seasons)
	latest := seasons[len(seasons)-1]
	stats := &model.PlayerStats{
		Name:        model.DerefStr(latest.Name),
		Team:        model.DerefStr(latest.Team),
		Position:    model.PositionOf(seasons),
		Projections: make([]model.Projection, 0, len(seasons)),
	}
	for _, p := range seasons {
		stats.Projections = append(stats.Projections, p.Projection())
	}
	return stats
}

func (s *PlayerService) previousName(ctx context.Context, id int64) string {
	if id == 0 {
		return ""
	}
	old, err := s.Dao.Get(ctx, id)
	if err != nil {
		return ""
	}
	return model.DerefStr(old.Name)
}
