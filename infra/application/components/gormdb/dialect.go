package gormdb

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openDialector(ds *DataSourceConfig) (gorm.Dialector, error) {
	dsn, err := buildDSN(ds)
	if err != nil {
		return nil, err
	}
	switch ds.Dialect {
	case DialectPostgres:
		return gormpg.Open(dsn), nil
	case DialectMySQL:
		return gormmysql.Open(dsn), nil
	case DialectSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported dialect %q", ds.Dialect)
	}
}

// buildDSN returns the driver DSN. postgres uses URL form so the same string also
// serves golang-migrate.
func buildDSN(ds *DataSourceConfig) (string, error) {
	if strings.TrimSpace(ds.DSN) != "" {
		return strings.TrimSpace(ds.DSN), nil
	}
	switch ds.Dialect {
	case DialectSQLite:
		if strings.TrimSpace(ds.Database) == "" {
			return "", errors.New("sqlite requires database (file path or :memory:) when dsn not provided")
		}
		return ds.Database, nil
	case DialectPostgres:
		if ds.Host == "" || ds.User == "" || ds.Database == "" {
			return "", errors.New("host, user, database required when dsn not provided")
		}
		port := ds.Port
		if port == 0 {
			port = 5432
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(ds.User, ds.Password),
			Host:     net.JoinHostPort(ds.Host, strconv.Itoa(port)),
			Path:     "/" + ds.Database,
			RawQuery: encodeParams(ds.Params),
		}
		return u.String(), nil
	case DialectMySQL:
		cfg, err := mysqlConfig(ds)
		if err != nil {
			return "", err
		}
		return cfg.FormatDSN(), nil
	default:
		return "", fmt.Errorf("unsupported dialect %q", ds.Dialect)
	}
}

// mysqlConfig 默认 parseTime + utf8mb4 + clientFoundRows,
// clientFoundRows 使 UPDATE 在值未变化时也返回匹配行数, DAO 依赖它判断记录是否存在
func mysqlConfig(ds *DataSourceConfig) (*mysql.Config, error) {
	if ds.Host == "" || ds.User == "" || ds.Database == "" {
		return nil, errors.New("host, user, database required when dsn not provided")
	}
	port := ds.Port
	if port == 0 {
		port = 3306
	}
	cfg := mysql.NewConfig()
	cfg.User = ds.User
	cfg.Passwd = ds.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(ds.Host, strconv.Itoa(port))
	cfg.DBName = ds.Database
	cfg.ParseTime = true
	cfg.Loc = time.Local
	cfg.ClientFoundRows = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	for k, v := range ds.Params {
		cfg.Params[k] = v
	}
	return cfg, nil
}

// MigrateURL converts the datasource into a golang-migrate database URL. Shared with
// the standalone migrate command.
func MigrateURL(ds *DataSourceConfig) (string, error) {
	dsn, err := buildDSN(ds)
	if err != nil {
		return "", err
	}
	switch ds.Dialect {
	case DialectPostgres:
		if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
			return "", errors.New("postgres migrations need a URL-form dsn (postgres://...)")
		}
		return dsn, nil
	case DialectMySQL:
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return "", fmt.Errorf("parse mysql dsn: %w", err)
		}
		cfg.MultiStatements = true
		return "mysql://" + cfg.FormatDSN(), nil
	case DialectSQLite:
		return "sqlite3://" + strings.TrimPrefix(dsn, "file:"), nil
	default:
		return "", fmt.Errorf("unsupported dialect %q", ds.Dialect)
	}
}

func encodeParams(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	vals := url.Values{}
	for _, k := range keys {
		vals.Set(k, params[k])
	}
	return vals.Encode()
}
