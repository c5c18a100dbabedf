package http_server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/riandyrn/otelchi"

	"github.com/grand-thief-cash/mlbeval/infra/application/components/logging"
	"github.com/grand-thief-cash/mlbeval/infra/application/consts"
	"github.com/grand-thief-cash/mlbeval/infra/application/core"
)

type HTTPServerComponent struct {
	*core.BaseComponent
	cfg       *HTTPServerConfig
	container *core.Container
	router    chi.Router
	server    *http.Server
	addr      string
	extras    []RouteRegisterFunc
}

func NewHTTPServerComponent(cfg *HTTPServerConfig, c *core.Container) *HTTPServerComponent {
	return &HTTPServerComponent{
		BaseComponent: core.NewBaseComponent(consts.COMPONENT_HTTP_SERVER, consts.COMPONENT_LOGGING),
		cfg:           cfg,
		container:     c,
	}
}

// AddRouteRegistrar 只能在 Start 之前调用
func (hc *HTTPServerComponent) AddRouteRegistrar(fn RouteRegisterFunc) error {
	if fn == nil {
		return nil
	}
	if hc.IsActive() {
		return fmt.Errorf("cannot register route: http_server already started")
	}
	hc.extras = append(hc.extras, fn)
	return nil
}

func (hc *HTTPServerComponent) Router() chi.Router { return hc.router }

// Addr 返回实际监听地址, 配置 ":0" 时可用于获取随机端口
func (hc *HTTPServerComponent) Addr() string { return hc.addr }

// BuildHandler assembles middlewares and every registered route without listening.
func (hc *HTTPServerComponent) BuildHandler() (http.Handler, error) {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if hc.cfg.CORS != nil && hc.cfg.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   hc.cfg.CORS.AllowedOrigins,
			AllowedMethods:   hc.cfg.CORS.AllowedMethods,
			AllowedHeaders:   hc.cfg.CORS.AllowedHeaders,
			ExposedHeaders:   hc.cfg.CORS.ExposedHeaders,
			AllowCredentials: hc.cfg.CORS.AllowCredentials,
			MaxAge:           hc.cfg.CORS.MaxAge,
		}))
	}
	serviceName := hc.cfg.ServiceName
	if serviceName == "" {
		serviceName = consts.COMPONENT_HTTP_SERVER
	}
	// 提取 W3C traceparent 并创建 server span, telemetry 未启用时使用 noop provider
	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))
	r.Use(accessLog)
	r.Use(middleware.Timeout(hc.cfg.RequestTimeout))

	if hc.cfg.EnableHealth {
		r.Get("/healthz", hc.healthHandler)
	}

	registrars := append(snapshot(), hc.extras...)
	for _, fn := range registrars {
		if err := fn(r, hc.container); err != nil {
			return nil, fmt.Errorf("route register failed: %w", err)
		}
	}
	hc.router = r
	return r, nil
}

func (hc *HTTPServerComponent) Start(ctx context.Context) error {
	if err := hc.BaseComponent.Start(ctx); err != nil {
		return err
	}
	handler, err := hc.BuildHandler()
	if err != nil {
		_ = hc.BaseComponent.Stop(ctx)
		return err
	}

	ln, err := net.Listen("tcp", hc.cfg.Address)
	if err != nil {
		_ = hc.BaseComponent.Stop(ctx)
		return fmt.Errorf("http_server listen %s: %w", hc.cfg.Address, err)
	}
	hc.addr = ln.Addr().String()
	hc.server = &http.Server{
		Handler:      handler,
		ReadTimeout:  hc.cfg.ReadTimeout,
		WriteTimeout: hc.cfg.WriteTimeout,
		IdleTimeout:  hc.cfg.IdleTimeout,
	}

	go func() {
		logging.Infof(ctx, "http_server listening on %s", hc.addr)
		if err := hc.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Errorf(ctx, "http_server server error: %v", err)
		}
	}()
	return nil
}

func (hc *HTTPServerComponent) Stop(ctx context.Context) error {
	defer hc.BaseComponent.Stop(ctx)
	if hc.server == nil {
		return nil
	}
	stopCtx, cancel := context.WithTimeout(ctx, hc.cfg.GracefulTimeout)
	defer cancel()
	if err := hc.server.Shutdown(stopCtx); err != nil {
		return fmt.Errorf("http_server graceful shutdown failed: %w", err)
	}
	hc.server = nil
	logging.Infof(ctx, "http_server server stopped")
	return nil
}

func (hc *HTTPServerComponent) HealthCheck() error {
	if err := hc.BaseComponent.HealthCheck(); err != nil {
		return err
	}
	if hc.server == nil {
		return fmt.Errorf("http_server server not started")
	}
	return nil
}

type healthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

// healthHandler 汇总所有活跃组件的 HealthCheck, 任一失败返回 503
func (hc *HTTPServerComponent) healthHandler(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok", Components: map[string]string{}}
	if hc.container != nil {
		report := hc.container.HealthReport()
		names := make([]string, 0, len(report))
		for name := range report {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if name == consts.COMPONENT_HTTP_SERVER {
				continue
			}
			if err := report[name]; err != nil {
				resp.Status = "degraded"
				resp.Components[name] = err.Error()
				continue
			}
			resp.Components[name] = "ok"
		}
	}
	code := http.StatusOK
	if resp.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
