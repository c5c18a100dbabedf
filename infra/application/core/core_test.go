package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/grand-thief-cash/mlbeval/infra/application/hooks"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

type testComp struct {
	*BaseComponent
	rec      *recorder
	startErr error
}

func newTestComp(rec *recorder, name string, deps ...string) *testComp {
	return &testComp{BaseComponent: NewBaseComponent(name, deps...), rec: rec}
}

func (c *testComp) Start(ctx context.Context) error {
	if c.startErr != nil {
		return c.startErr
	}
	c.rec.add("start:" + c.Name())
	return c.BaseComponent.Start(ctx)
}

func (c *testComp) Stop(ctx context.Context) error {
	c.rec.add("stop:" + c.Name())
	return c.BaseComponent.Stop(ctx)
}

func TestLifecycleOrder(t *testing.T) {
	rec := &recorder{}
	c := NewContainer()
	_ = c.Register("api", newTestComp(rec, "api", "service"))
	_ = c.Register("service", newTestComp(rec, "service", "db"))
	_ = c.Register("db", newTestComp(rec, "db"))

	lm := NewLifecycleManager(c)
	if err := lm.AddHook("mark", hooks.AfterStart, func(context.Context) error { rec.add("hook:after_start"); return nil }, 1); err != nil {
		t.Fatalf("add hook: %v", err)
	}
	if err := lm.StartAll(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	lm.StopAll(context.Background())
	lm.StopAll(context.Background())

	want := "start:db,start:service,start:api,hook:after_start,stop:api,stop:service,stop:db"
	if got := strings.Join(rec.events, ","); got != want {
		t.Fatalf("unexpected events\n got: %s\nwant: %s", got, want)
	}
}

func TestStartFailureRollsBack(t *testing.T) {
	rec := &recorder{}
	c := NewContainer()
	_ = c.Register("db", newTestComp(rec, "db"))
	bad := newTestComp(rec, "cache", "db")
	bad.startErr = errors.New("dial refused")
	_ = c.Register("cache", bad)

	err := NewLifecycleManager(c).StartAll(context.Background())
	if err == nil || !strings.Contains(err.Error(), "dial refused") {
		t.Fatalf("expected start error, got %v", err)
	}
	if got := strings.Join(rec.events, ","); got != "start:db,stop:db" {
		t.Fatalf("unexpected events %s", got)
	}
}

func TestDependencyErrors(t *testing.T) {
	rec := &recorder{}
	c := NewContainer()
	_ = c.Register("a", newTestComp(rec, "a", "b"))
	if _, err := c.ValidateDependencies(); err == nil || !strings.Contains(err.Error(), "a -> [b]") {
		t.Fatalf("expected missing dep error, got %v", err)
	}
	_ = c.Register("b", newTestComp(rec, "b", "a"))
	if _, err := c.ValidateDependencies(); err == nil || !strings.Contains(err.Error(), "circular") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestContainerRegisterResolve(t *testing.T) {
	c := NewContainer()
	comp := newTestComp(&recorder{}, "db")
	if err := c.Register("", comp); err == nil {
		t.Fatalf("expected empty name error")
	}
	if err := c.Register("db", comp); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := c.Register("db", comp); err == nil {
		t.Fatalf("expected duplicate error")
	}
	got, err := ResolveAs[*testComp](c, "db")
	if err != nil || got != comp {
		t.Fatalf("resolve as: %v", err)
	}
	if _, err := ResolveAs[*recorder](c, "db"); err == nil {
		t.Fatalf("expected type mismatch")
	}

	_ = comp.Start(context.Background())
	if err := c.Replace("db", newTestComp(&recorder{}, "db")); err == nil {
		t.Fatalf("replacing an active component should fail")
	}
	report := c.HealthReport()
	if err, ok := report["db"]; !ok || err != nil {
		t.Fatalf("unexpected health report %v", report)
	}
}

func TestAddDependenciesDedupes(t *testing.T) {
	b := NewBaseComponent("svc", "logging")
	b.AddDependencies("logging", "", "svc", "dao", "dao")
	if got := strings.Join(b.Dependencies(), ","); got != "logging,dao" {
		t.Fatalf("unexpected deps %s", got)
	}
}
