package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Container 组件注册表, 按名字保存已构建的组件
type Container struct {
	mu         sync.RWMutex
	components map[string]Component
}

func NewContainer() *Container {
	return &Container{components: make(map[string]Component)}
}

func (c *Container) Register(name string, component Component) error {
	if name == "" {
		return fmt.Errorf("component name cannot be empty")
	}
	if component == nil {
		return fmt.Errorf("component %s is nil", name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.components[name]; exists {
		return fmt.Errorf("component %s already registered", name)
	}
	c.components[name] = component
	return nil
}

func (c *Container) Resolve(name string) (Component, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	component, exists := c.components[name]
	if !exists {
		return nil, fmt.Errorf("component %s not found", name)
	}
	return component, nil
}

// ResolveAs resolves name and asserts it to T.
func ResolveAs[T any](c *Container, name string) (T, error) {
	var zero T
	comp, err := c.Resolve(name)
	if err != nil {
		return zero, err
	}
	typed, ok := comp.(T)
	if !ok {
		return zero, fmt.Errorf("component %s has type %T, want %T", name, comp, zero)
	}
	return typed, nil
}

// ListRegistered 返回注册表的快照
func (c *Container) ListRegistered() map[string]Component {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]Component, len(c.components))
	for name, comp := range c.components {
		out[name] = comp
	}
	return out
}

// Replace swaps a registered, inactive component. Tests use it to plug in stubs.
func (c *Container) Replace(name string, component Component) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	existing, exists := c.components[name]
	if !exists {
		return fmt.Errorf("component %s not registered", name)
	}
	if existing.IsActive() {
		return fmt.Errorf("component %s is active; cannot replace", name)
	}
	c.components[name] = component
	return nil
}

// SortComponentsByDependencies 深度优先拓扑排序, 同层按名字排序保证启动顺序稳定
func (c *Container) SortComponentsByDependencies() ([]Component, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(c.components))
	ordered := make([]Component, 0, len(c.components))

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("circular dependency detected: %s -> %s", strings.Join(path, " -> "), name)
		}
		comp, exists := c.components[name]
		if !exists {
			if len(path) > 0 {
				return fmt.Errorf("component %s (required by %s) not found", name, path[len(path)-1])
			}
			return fmt.Errorf("component %s not found", name)
		}
		state[name] = visiting
		for _, dep := range comp.Dependencies() {
			if err := visit(dep, append(path, name)); err != nil {
				return err
			}
		}
		state[name] = done
		ordered = append(ordered, comp)
		return nil
	}

	names := make([]string, 0, len(c.components))
	for name := range c.components {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := visit(name, nil); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

// ValidateDependencies 检查所有声明的依赖都已注册, 然后复用拓扑排序做环检测 (不启动)
func (c *Container) ValidateDependencies() ([]Component, error) {
	c.mu.RLock()
	var missing []string
	for name, comp := range c.components {
		var absent []string
		for _, dep := range comp.Dependencies() {
			if _, ok := c.components[dep]; !ok {
				absent = append(absent, dep)
			}
		}
		if len(absent) > 0 {
			missing = append(missing, fmt.Sprintf("%s -> [%s]", name, strings.Join(absent, ",")))
		}
	}
	c.mu.RUnlock()
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("missing component dependencies: %s", strings.Join(missing, "; "))
	}
	return c.SortComponentsByDependencies()
}

// HealthReport runs HealthCheck on every active component. A nil map value means healthy.
func (c *Container) HealthReport() map[string]error {
	report := make(map[string]error)
	for name, comp := range c.ListRegistered() {
		if !comp.IsActive() {
			continue
		}
		report[name] = comp.HealthCheck()
	}
	return report
}
