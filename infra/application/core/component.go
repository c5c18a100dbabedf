package core

import (
	"context"
	"fmt"
	"sync"
)

// Component 生命周期内可被容器管理的最小单元
type Component interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	HealthCheck() error
	Dependencies() []string
	IsActive() bool
}

// BaseComponent 提供 Component 的通用部分, 业务组件内嵌它即可
type BaseComponent struct {
	mu     sync.RWMutex
	name   string
	active bool
	deps   []string
}

func NewBaseComponent(name string, deps ...string) *BaseComponent {
	return &BaseComponent{name: name, deps: deps}
}

func (c *BaseComponent) Name() string { return c.name }

func (c *BaseComponent) Dependencies() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.deps))
	copy(out, c.deps)
	return out
}

func (c *BaseComponent) IsActive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

func (c *BaseComponent) SetActive(active bool) {
	c.mu.Lock()
	c.active = active
	c.mu.Unlock()
}

func (c *BaseComponent) Start(ctx context.Context) error {
	c.SetActive(true)
	return nil
}

func (c *BaseComponent) Stop(ctx context.Context) error {
	c.SetActive(false)
	return nil
}

func (c *BaseComponent) HealthCheck() error {
	if !c.IsActive() {
		return fmt.Errorf("component %s is not active", c.name)
	}
	return nil
}

// AddDependencies 追加运行期依赖, 只在 StartAll 之前调用 (autowire / registry 扩展使用).
// 重复的名字会被忽略。
func (c *BaseComponent) AddDependencies(deps ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range deps {
		if d == "" || d == c.name {
			continue
		}
		dup := false
		for _, existing := range c.deps {
			if existing == d {
				dup = true
				break
			}
		}
		if !dup {
			c.deps = append(c.deps, d)
		}
	}
}
