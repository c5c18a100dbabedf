package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/grand-thief-cash/mlbeval/infra/application/components/gormdb"
	appConfig "github.com/grand-thief-cash/mlbeval/infra/application/config"
	"github.com/grand-thief-cash/mlbeval/infra/application/consts"
	"github.com/grand-thief-cash/mlbeval/internal/migrate"
)

// mlbeval-migrate 手动执行 players 表迁移. 服务启动时的自动迁移走 gorm.migrate_enabled.
//
//	mlbeval-migrate -database sqlite3://mlbeval.db -action up
//	mlbeval-migrate -config config/config.yaml -datasource mlbeval -action version
func main() {
	var (
		database   = flag.String("database", "", "golang-migrate database URL, overrides -config/-datasource")
		configPath = flag.String("config", consts.DEFAULT_CONFIG_PATH, "app config file used to resolve -datasource")
		env        = flag.String("env", consts.ENV_DEVELOPMENT, "running environment")
		datasource = flag.String("datasource", "mlbeval", "gorm data source name in the config file")
		action     = flag.String("action", "up", "up|down|steps|goto|force|version")
		n          = flag.Int("n", 0, "steps count for -action steps, target version for goto/force")
	)
	flag.Parse()

	dbURL := *database
	if dbURL == "" {
		u, err := resolveURL(*env, *configPath, *datasource)
		if err != nil {
			log.Fatalf("resolve database url: %v", err)
		}
		dbURL = u
	}

	mm, err := migrate.NewMigrationManager(dbURL)
	if err != nil {
		log.Fatalf("init migration: %v", err)
	}
	defer func() {
		if err := mm.Close(); err != nil {
			log.Printf("close migration: %v", err)
		}
	}()

	if err := run(mm, *action, *n); err != nil {
		log.Printf("%s failed: %v", *action, err)
		os.Exit(1)
	}
	v, dirty, err := mm.Version()
	if err != nil {
		log.Printf("read version: %v", err)
		os.Exit(1)
	}
	fmt.Printf("dialect=%s version=%d dirty=%t\n", mm.Dialect(), v, dirty)
}

func run(mm *migrate.MigrationManager, action string, n int) error {
	switch action {
	case "up":
		return mm.Up()
	case "down":
		return mm.Down()
	case "steps":
		if n == 0 {
			return errors.New("-n must be non-zero for steps")
		}
		return mm.Steps(n)
	case "goto":
		if n <= 0 {
			return errors.New("-n must be a positive version for goto")
		}
		return mm.Goto(uint(n))
	case "force":
		return mm.Force(n)
	case "version":
		return nil
	default:
		return fmt.Errorf("unknown action %q", action)
	}
}

func resolveURL(env, path, name string) (string, error) {
	cfg, err := appConfig.NewLoader(env, path).LoadConfig()
	if err != nil {
		return "", err
	}
	if cfg.Gorm == nil || cfg.Gorm.DataSources[name] == nil {
		return "", fmt.Errorf("data source %q not found in %s", name, path)
	}
	ds := cfg.Gorm.DataSources[name]
	if ds.Dialect == "" {
		ds.Dialect = gormdb.DialectPostgres
	}
	return gormdb.MigrateURL(ds)
}
