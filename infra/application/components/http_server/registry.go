package http_server

import (
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/grand-thief-cash/mlbeval/infra/application/core"
)

// RouteRegisterFunc registers routes onto router; container provided for resolving components.
type RouteRegisterFunc func(r chi.Router, c *core.Container) error

var (
	registryMu sync.RWMutex
	registrars []RouteRegisterFunc
)

// RegisterRoutes 全局注册, 通常在 controller 包的 init() 中调用
func RegisterRoutes(fn RouteRegisterFunc) {
	if fn == nil {
		return
	}
	registryMu.Lock()
	registrars = append(registrars, fn)
	registryMu.Unlock()
}

func snapshot() []RouteRegisterFunc {
	registryMu.RLock()
	defer registryMu.RUnlock()
	cp := make([]RouteRegisterFunc, len(registrars))
	copy(cp, registrars)
	return cp
}
