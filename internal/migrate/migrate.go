// Package migrate 管理 players 表的版本化 SQL, 脚本按方言嵌入二进制
package migrate

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql
var sqlFS embed.FS

// Scripts 内嵌脚本根目录, 子目录 postgres / mysql / sqlite3
func Scripts() fs.FS {
	sub, err := fs.Sub(sqlFS, "sql")
	if err != nil {
		panic(err)
	}
	return sub
}

// MigrationManager 包装 golang-migrate, 源固定为内嵌脚本
type MigrationManager struct {
	m       *migrate.Migrate
	dialect string
}

// DialectDir 根据数据库 URL 的 scheme 选择脚本目录
func DialectDir(databaseURL string) (string, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("parse database url: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "postgres", "postgresql":
		return "postgres", nil
	case "mysql":
		return "mysql", nil
	case "sqlite3":
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("unsupported migrate scheme %q", u.Scheme)
	}
}

func NewMigrationManager(databaseURL string) (*MigrationManager, error) {
	dir, err := DialectDir(databaseURL)
	if err != nil {
		return nil, err
	}
	src, err := iofs.New(sqlFS, "sql/"+dir)
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("init migrate: %w", err)
	}
	return &MigrationManager{m: m, dialect: dir}, nil
}

func (mm *MigrationManager) Dialect() string { return mm.dialect }

// Up 已是最新版本时返回 nil
func (mm *MigrationManager) Up() error {
	return ignoreNoChange(mm.m.Up())
}

func (mm *MigrationManager) Down() error {
	return ignoreNoChange(mm.m.Down())
}

// Steps n>0 向上, n<0 向下
func (mm *MigrationManager) Steps(n int) error {
	if n == 0 {
		return nil
	}
	return ignoreNoChange(mm.m.Steps(n))
}

func (mm *MigrationManager) Goto(version uint) error {
	return ignoreNoChange(mm.m.Migrate(version))
}

// Force 只改写版本记录并清除 dirty 标记, 不执行脚本
func (mm *MigrationManager) Force(version int) error {
	return mm.m.Force(version)
}

// Version 未执行过任何迁移时返回 0, false, nil
func (mm *MigrationManager) Version() (uint, bool, error) {
	v, dirty, err := mm.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

func (mm *MigrationManager) Close() error {
	srcErr, dbErr := mm.m.Close()
	return errors.Join(srcErr, dbErr)
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
