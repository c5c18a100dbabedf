package main

import (
	"log"

	"github.com/grand-thief-cash/mlbeval/infra/application"
	bizConfig "github.com/grand-thief-cash/mlbeval/internal/config"

	// 通过 init() 注册组件和路由
	_ "github.com/grand-thief-cash/mlbeval/internal/api"
	_ "github.com/grand-thief-cash/mlbeval/internal/registry_ext"
)

var (
	Version = "v0.1.0"
)

func main() {
	app := application.GetApp()
	app.SetBizConfig(bizConfig.GetBizConfig())
	log.Printf("mlbeval %s starting", Version)
	if err := app.Run(); err != nil {
		log.Fatalf("app exited with error: %v", err)
	}
}
