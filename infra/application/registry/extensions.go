package registry

import (
	"log"
	"sync"

	"github.com/grand-thief-cash/mlbeval/infra/application/core"
)

// runtimeDepExtMap: target component -> extra runtime deps, applied after registration
// and before the lifecycle manager sorts components.
var (
	runtimeDepExtMap = map[string][]string{}
	runtimeDepExtMu  sync.Mutex
)

// ExtendRuntimeDependencies declares that target should also start after deps.
// It only affects start/stop order, never builder order. Call it from init().
func ExtendRuntimeDependencies(target string, deps ...string) {
	if target == "" || len(deps) == 0 {
		return
	}
	runtimeDepExtMu.Lock()
	defer runtimeDepExtMu.Unlock()
	runtimeDepExtMap[target] = append(runtimeDepExtMap[target], deps...)
}

// applyRuntimeDepExtensions 只对已注册且实现 AddDependencies 的组件生效;
// 依赖本身未注册时跳过, 以免可选组件 (redis 等) 关闭后启动失败
func applyRuntimeDepExtensions(c *core.Container) {
	runtimeDepExtMu.Lock()
	defer runtimeDepExtMu.Unlock()
	for target, extra := range runtimeDepExtMap {
		comp, err := c.Resolve(target)
		if err != nil {
			log.Printf("registry: runtime dep extension target %s not registered (skipped)", target)
			continue
		}
		extender, ok := comp.(interface{ AddDependencies(...string) })
		if !ok {
			log.Printf("registry: component %s does not support AddDependencies; extension skipped", target)
			continue
		}
		var present []string
		for _, d := range extra {
			if _, err := c.Resolve(d); err == nil {
				present = append(present, d)
			}
		}
		extender.AddDependencies(present...)
	}
}
