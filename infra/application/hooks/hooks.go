package hooks

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type HookFunc func(ctx context.Context) error

// Phase 生命周期阶段
type Phase string

const (
	BeforeStart    Phase = "before_start"
	AfterStart     Phase = "after_start"
	BeforeShutdown Phase = "before_shutdown"
	AfterShutdown  Phase = "after_shutdown"
)

var validPhases = map[Phase]struct{}{
	BeforeStart:    {},
	AfterStart:     {},
	BeforeShutdown: {},
	AfterShutdown:  {},
}

type Hook struct {
	Name     string
	Phase    Phase
	Function HookFunc
	Priority int // 数值越小越先执行
}

// Manager keeps hooks per phase ordered by priority. Equal priorities keep registration order.
type Manager struct {
	mu    sync.RWMutex
	hooks map[Phase][]*Hook
}

func NewManager() *Manager {
	return &Manager{hooks: make(map[Phase][]*Hook)}
}

func (m *Manager) Register(hook *Hook) error {
	if hook == nil {
		return fmt.Errorf("hook cannot be nil")
	}
	if hook.Function == nil {
		return fmt.Errorf("hook %s function cannot be nil", hook.Name)
	}
	if _, ok := validPhases[hook.Phase]; !ok {
		return fmt.Errorf("invalid hook phase: %s", hook.Phase)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	list := append(m.hooks[hook.Phase], hook)
	sort.SliceStable(list, func(i, j int) bool { return list[i].Priority < list[j].Priority })
	m.hooks[hook.Phase] = list
	return nil
}

// Execute runs the hooks of a phase and stops at the first error.
func (m *Manager) Execute(ctx context.Context, phase Phase) error {
	m.mu.RLock()
	list := make([]*Hook, len(m.hooks[phase]))
	copy(list, m.hooks[phase])
	m.mu.RUnlock()

	for _, h := range list {
		if err := h.Function(ctx); err != nil {
			return fmt.Errorf("hook %s failed: %w", h.Name, err)
		}
	}
	return nil
}

// Count 返回某阶段已注册的钩子数量
func (m *Manager) Count(phase Phase) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.hooks[phase])
}
