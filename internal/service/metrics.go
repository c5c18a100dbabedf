package service

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	promcomp "github.com/grand-thief-cash/mlbeval/infra/application/components/prometheus"
)

const (
	resultOK       = "ok"
	resultNotFound = "not_found"
	resultError    = "error"
)

type playerMetrics struct {
	ops   *prometheus.CounterVec
	dur   *prometheus.HistogramVec
	cache *prometheus.CounterVec
}

// newPlayerMetrics prometheus 组件未启用时使用未注册的 collector, 调用方无需判空
func newPlayerMetrics(pc *promcomp.Component) *playerMetrics {
	const (
		opsName   = "player_ops_total"
		opsHelp   = "Player operations by op and result."
		durName   = "player_op_duration_seconds"
		durHelp   = "Player operation latency."
		cacheName = "player_cache_requests_total"
		cacheHelp = "Player cache lookups by kind and result."
	)
	if pc == nil {
		return &playerMetrics{
			ops:   prometheus.NewCounterVec(prometheus.CounterOpts{Name: opsName, Help: opsHelp}, []string{"op", "result"}),
			dur:   prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: durName, Help: durHelp}, []string{"op"}),
			cache: prometheus.NewCounterVec(prometheus.CounterOpts{Name: cacheName, Help: cacheHelp}, []string{"kind", "result"}),
		}
	}
	return &playerMetrics{
		ops:   pc.NewCounter(opsName, opsHelp, []string{"op", "result"}),
		dur:   pc.NewHistogram(durName, durHelp, []string{"op"}, nil),
		cache: pc.NewCounter(cacheName, cacheHelp, []string{"kind", "result"}),
	}
}

func (m *playerMetrics) observe(op string, start time.Time, err error) {
	m.ops.WithLabelValues(op, resultOf(err)).Inc()
	m.dur.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *playerMetrics) cacheLookup(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cache.WithLabelValues(kind, result).Inc()
}

func resultOf(err error) string {
	var nf *PlayerNotFoundError
	switch {
	case err == nil:
		return resultOK
	case errors.Is(err, gorm.ErrRecordNotFound), errors.As(err, &nf):
		return resultNotFound
	default:
		return resultError
	}
}
