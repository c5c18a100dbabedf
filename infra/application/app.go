package application

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/grand-thief-cash/mlbeval/infra/application/autowire"
	"github.com/grand-thief-cash/mlbeval/infra/application/config"
	"github.com/grand-thief-cash/mlbeval/infra/application/consts"
	"github.com/grand-thief-cash/mlbeval/infra/application/core"
	"github.com/grand-thief-cash/mlbeval/infra/application/hooks"
	"github.com/grand-thief-cash/mlbeval/infra/application/registry"
)

type App struct {
	container        *core.Container
	lifecycleManager *core.LifecycleManager
	configManager    *config.ConfigManager

	bootOnce sync.Once
	bootErr  error

	shutdownTimeout time.Duration
}

var (
	appOnce   sync.Once
	globalApp *App

	envFlag    = flag.String("env", consts.ENV_DEVELOPMENT, "running environment: development|test|production")
	configFlag = flag.String("config", consts.DEFAULT_CONFIG_PATH, "path to the yaml/json config file")
)

// GetApp 返回进程级单例, 首次调用时解析 -env / -config
func GetApp() *App {
	appOnce.Do(func() {
		if !flag.Parsed() {
			flag.Parse()
		}
		globalApp = NewApp(*envFlag, *configFlag)
	})
	return globalApp
}

func NewApp(env string, configPath string) *App {
	abs := configPath
	if p, err := filepath.Abs(configPath); err == nil {
		abs = p
	}
	container := core.NewContainer()
	// 共享全局 hook manager, init() 中注册的钩子才会生效
	lm := core.NewLifecycleManagerWithManager(container, hooks.GetGlobalHookManager())
	return &App{
		configManager:    config.NewConfigManager(env, abs),
		container:        container,
		lifecycleManager: lm,
		shutdownTimeout:  30 * time.Second,
	}
}

// SetBizConfig 需要在 Run 之前调用
func (app *App) SetBizConfig(biz any) { app.configManager.SetBizConfig(biz) }

func (app *App) SetShutdownTimeout(d time.Duration) {
	if d > 0 {
		app.shutdownTimeout = d
	}
}

func (app *App) boot() error {
	app.bootOnce.Do(func() {
		if err := app.configManager.LoadConfig(); err != nil {
			app.bootErr = fmt.Errorf("load config failed: %w", err)
			return
		}
		if err := registry.BuildAndRegisterAll(app.configManager.GetConfig(), app.container); err != nil {
			app.bootErr = fmt.Errorf("register components failed: %w", err)
			return
		}
		if err := autowire.InjectAll(app.container); err != nil {
			app.bootErr = fmt.Errorf("autowire failed: %w", err)
			return
		}
	})
	return app.bootErr
}

func (app *App) Container() *core.Container { return app.container }

func (app *App) GetComponent(name string) (core.Component, error) {
	return app.container.Resolve(name)
}

func (app *App) GetConfig() *config.AppConfig {
	return app.configManager.GetConfig()
}

func (app *App) AddHook(name string, phase hooks.Phase, fn hooks.HookFunc, priority int) error {
	return app.lifecycleManager.AddHook(name, phase, fn, priority)
}

// Run 监听 SIGINT/SIGTERM. 第一次信号触发优雅关闭; 关闭超时或收到第二次信号时强制退出
func (app *App) Run() error {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- app.RunWithContext(ctx) }()

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Printf("Received signal %s, initiating graceful shutdown (timeout %s)...", sig, app.shutdownTimeout)
		cancel()
	}

	timer := time.NewTimer(app.shutdownTimeout)
	defer timer.Stop()
	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Printf("Received second signal %s, forcing exit", sig)
		os.Exit(1)
	case <-timer.C:
		log.Printf("Graceful shutdown exceeded %s, forcing exit", app.shutdownTimeout)
		os.Exit(1)
	}
	return nil
}

// RunWithContext starts components, blocks until ctx is done, then shuts down.
func (app *App) RunWithContext(ctx context.Context) error {
	if err := app.boot(); err != nil {
		return err
	}
	if err := app.lifecycleManager.StartAll(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), app.shutdownTimeout)
	defer cancel()
	app.lifecycleManager.StopAll(stopCtx)
	return nil
}

func (app *App) Shutdown(ctx context.Context) {
	app.lifecycleManager.StopAll(ctx)
}
