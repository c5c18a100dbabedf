package registry

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/grand-thief-cash/mlbeval/infra/application/config"
	"github.com/grand-thief-cash/mlbeval/infra/application/core"
)

// BuilderFunc returns (enabled, component, error). enabled=false skips registration.
type BuilderFunc func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error)

// Builder 构建器元数据. Auto 构建器的名字与构建期依赖从组件实例推断
type Builder struct {
	Name string
	Fn   BuilderFunc
	Auto bool
	Deps []string

	prebuilt   core.Component
	preEnabled bool
}

var (
	buildersMu sync.Mutex
	builders   []*Builder
)

func findBuilder(list []*Builder, name string) *Builder {
	for _, b := range list {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// Register registers a component builder with an explicit name.
func Register(name string, fn BuilderFunc) {
	if name == "" {
		panic("registry: empty name in Register")
	}
	buildersMu.Lock()
	defer buildersMu.Unlock()
	if findBuilder(builders, name) != nil {
		panic("registry: duplicate builder name " + name)
	}
	builders = append(builders, &Builder{Name: name, Fn: fn})
}

// RegisterWithDeps registers a named builder that must run after the builders of deps.
// Use it when the builder resolves other components from the container.
func RegisterWithDeps(name string, deps []string, fn BuilderFunc) {
	if name == "" {
		panic("registry: empty name in RegisterWithDeps")
	}
	buildersMu.Lock()
	defer buildersMu.Unlock()
	if findBuilder(builders, name) != nil {
		panic("registry: duplicate builder name " + name)
	}
	builders = append(builders, &Builder{Name: name, Fn: fn, Deps: append([]string(nil), deps...)})
}

// RegisterAuto registers a builder whose component name and build-time dependencies
// are taken from the component it returns (Name() and `infra:"dep:..."` tags).
func RegisterAuto(fn BuilderFunc) {
	buildersMu.Lock()
	builders = append(builders, &Builder{Auto: true, Fn: fn})
	buildersMu.Unlock()
}

// BuildAndRegisterAll:
//  1. 预构建 auto builder, 推断名字并缓存实例
//  2. 从 infra tag 推断 auto builder 的构建期依赖
//  3. 按依赖拓扑排序
//  4. 构建并注册, 最后应用运行期依赖扩展
func BuildAndRegisterAll(cfg *config.AppConfig, c *core.Container) error {
	buildersMu.Lock()
	list := make([]*Builder, len(builders))
	copy(list, builders)
	buildersMu.Unlock()

	// auto builder 每次构建都重新推断, 同一进程内可以多次启动 app
	for _, b := range list {
		if b.Auto {
			b.Name, b.prebuilt, b.preEnabled = "", nil, false
		}
	}
	for _, b := range list {
		if !b.Auto {
			continue
		}
		enabled, comp, err := b.Fn(cfg, c)
		if err != nil {
			return fmt.Errorf("auto builder failed: %w", err)
		}
		b.preEnabled, b.prebuilt = enabled, comp
		if !enabled || comp == nil {
			continue
		}
		name := comp.Name()
		if name == "" {
			return fmt.Errorf("auto builder produced unnamed component")
		}
		if existing := findBuilder(list, name); existing != nil && existing != b {
			return fmt.Errorf("duplicate inferred name: %s", name)
		}
		b.Name = name
	}

	for _, b := range list {
		if !b.Auto || b.prebuilt == nil || !b.preEnabled {
			continue
		}
		b.Deps = b.Deps[:0]
		for _, d := range inferTagDependencies(b.prebuilt) {
			if findBuilder(list, d) != nil {
				b.Deps = append(b.Deps, d)
			}
		}
	}

	ordered, err := topoSortBuilders(list)
	if err != nil {
		return err
	}

	for _, b := range ordered {
		var (
			enabled bool
			comp    core.Component
		)
		if b.Auto {
			enabled, comp = b.preEnabled, b.prebuilt
		} else {
			enabled, comp, err = b.Fn(cfg, c)
			if err != nil {
				return fmt.Errorf("build %s failed: %w", b.Name, err)
			}
		}
		if !enabled || comp == nil {
			continue
		}
		if err := c.Register(b.Name, comp); err != nil {
			return fmt.Errorf("register %s failed: %w", b.Name, err)
		}
	}
	applyRuntimeDepExtensions(c)
	return nil
}

// inferTagDependencies extracts component names from `infra:"dep:<name>"` tags.
// The optional marker '?' is stripped.
func inferTagDependencies(comp core.Component) []string {
	v := reflect.ValueOf(comp)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	t := v.Type()
	seen := map[string]struct{}{}
	var out []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		tag := f.Tag.Get("infra")
		if !strings.HasPrefix(tag, "dep:") {
			continue
		}
		name := strings.TrimSuffix(strings.TrimSpace(strings.TrimPrefix(tag, "dep:")), "?")
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// topoSortBuilders Kahn 排序, 同一层按名字排序. 未命名 (被禁用的 auto) builder 不参与
func topoSortBuilders(list []*Builder) ([]*Builder, error) {
	nameMap := map[string]*Builder{}
	inDeg := map[string]int{}
	adj := map[string][]string{}
	for _, b := range list {
		if b.Name != "" {
			nameMap[b.Name] = b
			inDeg[b.Name] = 0
		}
	}
	for _, b := range list {
		if b.Name == "" {
			continue
		}
		for _, d := range b.Deps {
			if _, ok := nameMap[d]; !ok {
				continue
			}
			adj[d] = append(adj[d], b.Name)
			inDeg[b.Name]++
		}
	}
	var zero []string
	for n, d := range inDeg {
		if d == 0 {
			zero = append(zero, n)
		}
	}
	sort.Strings(zero)
	ordered := make([]*Builder, 0, len(nameMap))
	for len(zero) > 0 {
		n := zero[0]
		zero = zero[1:]
		ordered = append(ordered, nameMap[n])
		for _, nxt := range adj[n] {
			inDeg[nxt]--
			if inDeg[nxt] == 0 {
				zero = append(zero, nxt)
			}
		}
		sort.Strings(zero)
	}
	if len(ordered) != len(nameMap) {
		var cyc []string
		for n, d := range inDeg {
			if d > 0 {
				cyc = append(cyc, n)
			}
		}
		sort.Strings(cyc)
		return nil, fmt.Errorf("registry: cyclic builder deps: %v", cyc)
	}
	return ordered, nil
}
