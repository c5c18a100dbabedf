package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/grand-thief-cash/mlbeval/infra/application/components/logging"
	promcomp "github.com/grand-thief-cash/mlbeval/infra/application/components/prometheus"
	"github.com/grand-thief-cash/mlbeval/infra/application/core"
	"github.com/grand-thief-cash/mlbeval/internal/consts"
	"github.com/grand-thief-cash/mlbeval/internal/dao"
	"github.com/grand-thief-cash/mlbeval/internal/model"
)

var ErrEmptyTrade = errors.New("trade must name at least one player")

type PlayerNotFoundError struct {
	Names []string
}

func (e *PlayerNotFoundError) Error() string {
	return fmt.Sprintf("players not found: %s", strings.Join(e.Names, ", "))
}

type TradeService struct {
	*core.BaseComponent
	Dao     dao.PlayerDao       `infra:"dep:player_dao"`
	Metrics *promcomp.Component `infra:"dep:prometheus?"`

	analyses *prometheus.CounterVec
}

func NewTradeService() *TradeService {
	return &TradeService{BaseComponent: core.NewBaseComponent(consts.COMP_SVC_TRADE)}
}

func (s *TradeService) Start(ctx context.Context) error {
	if err := s.BaseComponent.Start(ctx); err != nil {
		return err
	}
	if s.Dao == nil {
		return fmt.Errorf("%s: player dao not injected", s.Name())
	}
	const name, help = "trade_analyses_total", "Trade analyses by result."
	if s.Metrics != nil {
		s.analyses = s.Metrics.NewCounter(name, help, []string{"result"})
	} else {
		s.analyses = prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, []string{"result"})
	}
	return nil
}

// Analyze 汇总两边球员的剩余价值, value_difference = team1 - team2
func (s *TradeService) Analyze(ctx context.Context, team1, team2 []string) (out *model.TradeAnalysis, err error) {
	start := time.Now()
	analysisID := uuid.NewString()
	ctx, span := startSpan(ctx, "TradeService.Analyze", attribute.String("trade.analysis_id", analysisID))
	defer func() {
		s.analyses.WithLabelValues(resultOf(err)).Inc()
		endSpan(span, err)
	}()

	team1, team2 = dedupeNames(team1), dedupeNames(team2)
	if len(team1) == 0 && len(team2) == 0 {
		return nil, ErrEmptyTrade
	}
	rows, err := s.Dao.ListByNames(ctx, append(append([]string{}, team1...), team2...))
	if err != nil {
		return nil, err
	}
	byName := map[string][]*model.Player{}
	for _, p := range rows {
		key := nameKey(model.DerefStr(p.Name))
		byName[key] = append(byName[key], p)
	}

	var missing []string
	for _, n := range append(append([]string{}, team1...), team2...) {
		if len(byName[nameKey(n)]) == 0 {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return nil, &PlayerNotFoundError{Names: missing}
	}

	out = &model.TradeAnalysis{
		AnalysisID: analysisID,
		Team1:      buildSide(team1, byName),
		Team2:      buildSide(team2, byName),
	}
	out.ValueDifference = out.Team1.TotalValue - out.Team2.TotalValue
	logging.Info(ctx, "trade analyzed",
		zap.String("analysis_id", analysisID),
		zap.Strings("team1", team1),
		zap.Strings("team2", team2),
		zap.Float64("value_difference", out.ValueDifference),
		zap.Duration("dur", time.Since(start)),
	)
	return out, nil
}

func buildSide(names []string, byName map[string][]*model.Player) model.TradeSide {
	side := model.TradeSide{Players: make([]model.TradePlayer, 0, len(names))}
	for _, n := range names {
		tp := buildTradePlayer(byName[nameKey(n)])
		side.TotalValue += tp.TotalSurplus
		side.Players = append(side.Players, tp)
	}
	return side
}

// buildTradePlayer team/status 取最新赛季, 存储中名字大小写不同的记录也在同一组
func buildTradePlayer(seasons []*model.Player) model.TradePlayer {
	sortSeasons(seasons)
	latest := seasons[len(seasons)-1]
	tp := model.TradePlayer{
		Name:              model.DerefStr(latest.Name),
		Team:              model.DerefStr(latest.Team),
		Status:            model.DerefStr(latest.Status),
		YearlyProjections: make([]model.YearlyProjection, 0, len(seasons)),
	}
	for _, p := range seasons {
		tp.TotalSurplus += model.Deref(p.SurplusValue)
		tp.TotalContract += model.Deref(p.ContractValue)
		tp.YearlyProjections = append(tp.YearlyProjections, model.YearlyProjection{
			Year:          p.Year,
			WAR:           p.WAR,
			BaseValue:     p.BaseValue,
			ContractValue: p.ContractValue,
			SurplusValue:  p.SurplusValue,
			Status:        p.Status,
		})
	}
	return tp
}

func nameKey(n string) string { return strings.ToLower(strings.TrimSpace(n)) }

// dedupeNames 去空白去重, 保留首次出现的拼写与顺序
func dedupeNames(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, n := range in {
		n = strings.TrimSpace(n)
		k := nameKey(n)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, n)
	}
	return out
}
