package gormdb

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

var (
	embeddedMu sync.RWMutex
	embeddedFS fs.FS
)

// RegisterEmbeddedMigrations 注册编译进二进制的迁移脚本, 顶层按方言分目录:
// postgres/ mysql/ sqlite3/. migrate_dir 为空的数据源从这里读取, 与工作目录无关.
// 传 nil 取消注册.
func RegisterEmbeddedMigrations(fsys fs.FS) {
	embeddedMu.Lock()
	defer embeddedMu.Unlock()
	embeddedFS = fsys
}

func embeddedMigrations() fs.FS {
	embeddedMu.RLock()
	defer embeddedMu.RUnlock()
	return embeddedFS
}

// embeddedDir 方言到脚本目录, 与 golang-migrate 的 URL scheme 保持一致
func embeddedDir(dialect string) string {
	if dialect == DialectSQLite {
		return "sqlite3"
	}
	return dialect
}

// runMigrations applies every pending up migration. An explicit migrate_dir is read from
// disk; otherwise the registered embedded scripts are used. golang-migrate opens its own
// connection from the URL and closes it afterwards, so the gorm pool is untouched.
func runMigrations(ds *DataSourceConfig) (version uint, source string, err error) {
	dbURL, err := MigrateURL(ds)
	if err != nil {
		return 0, "", err
	}
	m, source, err := newMigrate(ds, dbURL)
	if err != nil {
		return 0, source, err
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if err == nil {
			err = errors.Join(srcErr, dbErr)
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, source, fmt.Errorf("migrate up: %w", err)
	}
	v, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, source, fmt.Errorf("migrate version: %w", err)
	}
	if dirty {
		return v, source, fmt.Errorf("database is dirty at version %d", v)
	}
	return v, source, nil
}

func newMigrate(ds *DataSourceConfig, dbURL string) (*migrate.Migrate, string, error) {
	if dir := strings.TrimSpace(ds.MigrateDir); dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, dir, fmt.Errorf("resolve migrate_dir: %w", err)
		}
		source := "file://" + filepath.ToSlash(abs)
		m, err := migrate.New(source, dbURL)
		if err != nil {
			return nil, source, fmt.Errorf("init migrate: %w", err)
		}
		return m, source, nil
	}

	fsys := embeddedMigrations()
	if fsys == nil {
		return nil, "", errors.New("migrate_dir empty and no embedded migrations registered")
	}
	dir := embeddedDir(ds.Dialect)
	source := "embedded:" + dir
	src, err := iofs.New(fsys, dir)
	if err != nil {
		return nil, source, fmt.Errorf("open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		return nil, source, fmt.Errorf("init migrate: %w", err)
	}
	return m, source, nil
}
