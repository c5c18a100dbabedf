package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNamespacedCounter(t *testing.T) {
	off := false
	comp, err := NewFactory().Create(&Config{Enabled: true, Namespace: "mlbeval", CollectGoMetrics: &off, CollectProcess: &off})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	c := comp.(*Component)
	cv := c.NewCounter("player_ops_total", "ops", []string{"op"})
	cv.WithLabelValues("get").Inc()

	again := c.NewCounter("player_ops_total", "ops", []string{"op"})
	again.WithLabelValues("get").Inc()
	if got := testutil.ToFloat64(cv.WithLabelValues("get")); got != 2 {
		t.Fatalf("expected shared counter value 2, got %v", got)
	}

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `mlbeval_player_ops_total{op="get"} 2`) {
		t.Fatalf("metric missing from scrape output:\n%s", rec.Body.String())
	}
}

func TestGlobalRegistryNilWhenStopped(t *testing.T) {
	if C() != nil || Registry() != nil {
		t.Fatalf("expected no global metrics component before start")
	}
}
