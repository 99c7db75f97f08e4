// Package store is the Entity Store: a gorm connection to the embedded SQLite
// file or a networked Postgres/MySQL database, the schema, and the unit of
// work every repository call runs in.
package store

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq" // registers "postgres" for database.postgres_driver=pq
	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/imrishuroy/easyorder/internal/config"
	"github.com/imrishuroy/easyorder/internal/logging"
)

const (
	pingTimeout       = 5 * time.Second
	defaultOpTimeout  = 5 * time.Second
	sqliteBusyTimeout = 5000 // ms
)

// DB is the process-wide store handle. It is safe for concurrent use.
type DB struct {
	gorm      *gorm.DB
	driver    string
	opTimeout time.Duration
	logger    zerolog.Logger
}

// Open connects to the configured database, verifies connectivity and
// applies the schema.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*DB, error) {
	driver := cfg.ResolveDriver()
	dialector, err := dialectorFor(driver, cfg)
	if err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logging.NewGormLogger(logger, cfg.LogLevel, cfg.SlowThreshold),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql.DB: %w", err)
	}
	if driver == config.DriverSQLite {
		// a single writer connection; pragmas in the DSN apply to it
		sqlDB.SetMaxOpenConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		if cfg.ConnMaxLifetime > 0 {
			sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s database: %w", driver, err)
	}

	opTimeout := cfg.OpTimeout
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}
	db := &DB{gorm: gdb, driver: driver, opTimeout: opTimeout, logger: logger}

	if err := Migrate(ctx, db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	logger.Info().Str("driver", driver).Msg("entity store ready")
	return db, nil
}

// Driver reports which database family the handle is connected to.
func (db *DB) Driver() string { return db.driver }

// Gorm exposes the underlying handle for read-only callers such as reports.
func (db *DB) Gorm() *gorm.DB { return db.gorm }

// Close releases the connection pool.
func (db *DB) Close() error {
	sqlDB, err := db.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks connectivity.
func (db *DB) Ping(ctx context.Context) error {
	sqlDB, err := db.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func dialectorFor(driver string, cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch driver {
	case config.DriverSQLite:
		path, err := sqlitePath(cfg)
		if err != nil {
			return nil, err
		}
		return sqliteDialector(path), nil
	case config.DriverPostgres:
		if strings.TrimSpace(cfg.URL) == "" {
			return nil, fmt.Errorf("database.url is required for postgres")
		}
		if cfg.PostgresDriver == "pq" {
			return postgres.New(postgres.Config{DriverName: "postgres", DSN: cfg.URL}), nil
		}
		return postgres.Open(cfg.URL), nil
	case config.DriverMySQL:
		dsn, err := mysqlDSN(cfg.URL)
		if err != nil {
			return nil, err
		}
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// sqlitePath resolves the database file and makes sure its directory exists.
func sqlitePath(cfg config.DatabaseConfig) (string, error) {
	path := cfg.SQLitePath
	if u := strings.TrimSpace(cfg.URL); u != "" {
		path = strings.TrimPrefix(strings.TrimPrefix(u, "sqlite://"), "file:")
		if i := strings.IndexByte(path, '?'); i >= 0 {
			path = path[:i]
		}
	}
	if path == "" {
		return "", fmt.Errorf("database.sqlite_path is empty")
	}
	if path == ":memory:" {
		return path, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create sqlite directory: %w", err)
	}
	return path, nil
}

// mysqlDSN accepts either a go-sql-driver DSN or a mysql:// URL and returns a
// DSN with parseTime enabled.
func mysqlDSN(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("database.url is required for mysql")
	}
	var cfg *mysqldrv.Config
	if strings.HasPrefix(raw, "mysql://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("parse mysql url: %w", err)
		}
		cfg = mysqldrv.NewConfig()
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
		cfg.Net = "tcp"
		cfg.Addr = u.Host
		cfg.DBName = strings.TrimPrefix(u.Path, "/")
		if q := u.Query(); len(q) > 0 {
			cfg.Params = map[string]string{}
			for k := range q {
				cfg.Params[k] = q.Get(k)
			}
		}
	} else {
		var err error
		if cfg, err = mysqldrv.ParseDSN(raw); err != nil {
			return "", fmt.Errorf("parse mysql dsn: %w", err)
		}
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}
