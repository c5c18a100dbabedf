package core

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/grand-thief-cash/mlbeval/infra/application/hooks"
)

// LifecycleManager 按依赖顺序启动组件, 逆序停止
type LifecycleManager struct {
	container   *Container
	hookManager *hooks.Manager
	timeout     time.Duration

	mu      sync.Mutex
	started []Component
	stopped bool
}

func NewLifecycleManager(container *Container) *LifecycleManager {
	return NewLifecycleManagerWithManager(container, hooks.NewManager())
}

// NewLifecycleManagerWithManager lets the app share the global hook manager so hooks
// registered from init() take effect.
func NewLifecycleManagerWithManager(container *Container, hm *hooks.Manager) *LifecycleManager {
	if hm == nil {
		hm = hooks.NewManager()
	}
	return &LifecycleManager{
		container:   container,
		hookManager: hm,
		timeout:     30 * time.Second,
	}
}

// SetTimeout 设置单个组件启动/停止的超时时间
func (lm *LifecycleManager) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		lm.timeout = timeout
	}
}

func (lm *LifecycleManager) AddHook(name string, phase hooks.Phase, fn hooks.HookFunc, priority int) error {
	return lm.hookManager.Register(&hooks.Hook{Name: name, Phase: phase, Function: fn, Priority: priority})
}

// StartAll validates the dependency graph, then starts every component in order.
// On failure the components already started are stopped in reverse order.
func (lm *LifecycleManager) StartAll(ctx context.Context) error {
	if err := lm.hookManager.Execute(ctx, hooks.BeforeStart); err != nil {
		return fmt.Errorf("before_start hooks failed: %w", err)
	}

	ordered, err := lm.container.ValidateDependencies()
	if err != nil {
		return fmt.Errorf("failed to order components: %w", err)
	}

	for _, comp := range ordered {
		startCtx, cancel := context.WithTimeout(ctx, lm.timeout)
		err := comp.Start(startCtx)
		cancel()
		if err != nil {
			log.Printf("Failed to start component %s: %v", comp.Name(), err)
			lm.stopStarted(context.Background())
			return fmt.Errorf("failed to start component %s: %w", comp.Name(), err)
		}
		lm.mu.Lock()
		lm.started = append(lm.started, comp)
		lm.mu.Unlock()
		log.Printf("Component %s started", comp.Name())
	}

	if err := lm.hookManager.Execute(ctx, hooks.AfterStart); err != nil {
		log.Printf("after_start hooks failed: %v", err)
	}
	return nil
}

// StopAll 只执行一次, 后续调用直接返回
func (lm *LifecycleManager) StopAll(ctx context.Context) {
	lm.mu.Lock()
	if lm.stopped {
		lm.mu.Unlock()
		return
	}
	lm.stopped = true
	lm.mu.Unlock()

	if err := lm.hookManager.Execute(ctx, hooks.BeforeShutdown); err != nil {
		log.Printf("before_shutdown hooks failed: %v", err)
	}
	lm.stopStarted(ctx)
	if err := lm.hookManager.Execute(ctx, hooks.AfterShutdown); err != nil {
		log.Printf("after_shutdown hooks failed: %v", err)
	}
}

func (lm *LifecycleManager) stopStarted(ctx context.Context) {
	lm.mu.Lock()
	started := lm.started
	lm.started = nil
	lm.mu.Unlock()

	for i := len(started) - 1; i >= 0; i-- {
		comp := started[i]
		if !comp.IsActive() {
			continue
		}
		stopCtx, cancel := context.WithTimeout(ctx, lm.timeout)
		if err := comp.Stop(stopCtx); err != nil {
			log.Printf("Error stopping component %s: %v", comp.Name(), err)
		} else {
			log.Printf("Component %s stopped", comp.Name())
		}
		cancel()
	}
}
