package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the process configuration shared by cmd/api, cmd/worker and cmd/seed.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	AWS         AWSConfig         `mapstructure:"aws"`
	Queue       QueueConfig       `mapstructure:"queue"`
	Idempotency IdempotencyConfig `mapstructure:"idempotency"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Pagination  PaginationConfig  `mapstructure:"pagination"`
	Log         LogConfig         `mapstructure:"log"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port            string          `mapstructure:"port"`
	RunLocal        bool            `mapstructure:"run_local"`
	ReadTimeout     time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration   `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Rate    float64       `mapstructure:"rate"` // requests per second
	Burst   int           `mapstructure:"burst"`
	IdleTTL time.Duration `mapstructure:"idle_ttl"` // unused client buckets are dropped after this
}

// DatabaseConfig selects the Entity Store. An empty URL means the embedded
// SQLite file at SQLitePath.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite, postgres, mysql
	URL             string        `mapstructure:"url"`
	SQLitePath      string        `mapstructure:"sqlite_path"`
	PostgresDriver  string        `mapstructure:"postgres_driver"` // pgx, pq
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	OpTimeout       time.Duration `mapstructure:"op_timeout"`
	SlowThreshold   time.Duration `mapstructure:"slow_threshold"`
	LogLevel        string        `mapstructure:"log_level"`
}

type AWSConfig struct {
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
}

type QueueConfig struct {
	URL         string        `mapstructure:"url"`
	SendTimeout time.Duration `mapstructure:"send_timeout"`
	WaitTime    time.Duration `mapstructure:"wait_time"`
	MaxMessages int32         `mapstructure:"max_messages"`
}

type IdempotencyConfig struct {
	Table string        `mapstructure:"table"`
	TTL   time.Duration `mapstructure:"ttl"`
}

type MetricsConfig struct {
	CloudWatchNamespace string        `mapstructure:"cloudwatch_namespace"`
	Timeout             time.Duration `mapstructure:"timeout"`
}

type PaginationConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

// legacyEnv maps config keys onto the environment variable names the service
// has always been deployed with.
var legacyEnv = map[string][]string{
	"database.url":      {"DATABASE_URL"},
	"queue.url":         {"SQS_QUEUE_URL", "ORDERS_QUEUE_URL"},
	"aws.region":        {"AWS_REGION", "AWS_DEFAULT_REGION"},
	"aws.endpoint":      {"AWS_ENDPOINT_OVERRIDE"},
	"server.run_local":  {"RUN_LOCAL"},
	"server.port":       {"PORT"},
	"idempotency.table": {"IDEMPOTENCY_TABLE"},
}

// Load reads defaults, the optional config file and the environment.
// configPath may be empty, in which case config.yaml is looked up in . and ./config.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("EASYORDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range legacyEnv {
		args := append([]string{key, "EASYORDER_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, names...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the process cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "", DriverSQLite, DriverPostgres, DriverMySQL:
	default:
		return fmt.Errorf("database.driver must be one of sqlite, postgres, mysql, got %q", c.Database.Driver)
	}
	switch c.Database.PostgresDriver {
	case "", "pgx", "pq":
	default:
		return fmt.Errorf("database.postgres_driver must be pgx or pq, got %q", c.Database.PostgresDriver)
	}
	if c.Pagination.MaxLimit <= 0 {
		return fmt.Errorf("pagination.max_limit must be positive")
	}
	if c.Pagination.DefaultLimit <= 0 || c.Pagination.DefaultLimit > c.Pagination.MaxLimit {
		return fmt.Errorf("pagination.default_limit must be in [1, %d]", c.Pagination.MaxLimit)
	}
	if c.Queue.WaitTime < 0 || c.Queue.WaitTime > 20*time.Second {
		return fmt.Errorf("queue.wait_time must be between 0s and 20s")
	}
	return nil
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// ResolveDriver returns the configured driver, inferring it from the URL
// scheme when unset.
func (d DatabaseConfig) ResolveDriver() string {
	if d.Driver != "" {
		return d.Driver
	}
	url := strings.ToLower(strings.TrimSpace(d.URL))
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres
	case strings.HasPrefix(url, "mysql://"):
		return DriverMySQL
	default:
		return DriverSQLite
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.run_local", false)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.rate_limit.enabled", false)
	v.SetDefault("server.rate_limit.rate", 50)
	v.SetDefault("server.rate_limit.burst", 100)
	v.SetDefault("server.rate_limit.idle_ttl", "10m")

	v.SetDefault("database.driver", "")
	v.SetDefault("database.url", "")
	v.SetDefault("database.sqlite_path", "./data/easyorder.db")
	v.SetDefault("database.postgres_driver", "pgx")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.op_timeout", "5s")
	v.SetDefault("database.slow_threshold", "200ms")
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("aws.region", "sa-east-1")
	v.SetDefault("aws.endpoint", "")

	v.SetDefault("queue.url", "")
	v.SetDefault("queue.send_timeout", "5s")
	v.SetDefault("queue.wait_time", "5s")
	v.SetDefault("queue.max_messages", 10)

	v.SetDefault("idempotency.table", "")
	v.SetDefault("idempotency.ttl", "48h")

	v.SetDefault("metrics.cloudwatch_namespace", "")
	v.SetDefault("metrics.timeout", "2s")

	v.SetDefault("pagination.default_limit", 10)
	v.SetDefault("pagination.max_limit", 100)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "easyorder-api")
}
