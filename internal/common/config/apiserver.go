package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/amoylab/rentmanager/internal/common/cnst"
)

type (
	APIServerConfig struct {
		Server    ServerConfig    `yaml:"server"`
		Database  DatabaseConfig  `yaml:"database"`
		Logger    LoggerConfig    `yaml:"logger"`
		JWT       JWTConfig       `yaml:"jwt"`
		Notifier  NotifierConfig  `yaml:"notifier"`
		Reconcile ReconcileConfig `yaml:"reconcile"`
		Metrics   MetricsConfig   `yaml:"metrics"`
		Tracing   TracingConfig   `yaml:"tracing"`
		I18n      I18nConfig      `yaml:"i18n"`
	}

	ServerConfig struct {
		Port            int           `yaml:"port"`
		Mode            string        `yaml:"mode"` // debug, release, test
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	}

	// I18nConfig represents the internationalization configuration
	I18nConfig struct {
		Path        string `yaml:"path"`         // optional directory with extra *.toml bundles
		DefaultLang string `yaml:"default_lang"` // en or vi
	}

	DatabaseConfig struct {
		Type         string `yaml:"type"`     // mysql, postgres, sqlite
		Host         string `yaml:"host"`     // localhost
		Port         int    `yaml:"port"`     // 3306 (for mysql), 5432 (for postgres)
		User         string `yaml:"user"`     // root (for mysql), postgres (for postgres)
		Password     string `yaml:"password"` // password
		DBName       string `yaml:"dbname"`   // database name, file path for sqlite
		SSLMode      string `yaml:"sslmode"`  // disable (for postgres)
		MaxOpenConns int    `yaml:"max_open_conns"`
		MaxIdleConns int    `yaml:"max_idle_conns"`
	}

	JWTConfig struct {
		SecretKey  string        `yaml:"secret_key"`
		Duration   time.Duration `yaml:"duration"`
		CookieName string        `yaml:"cookie_name"`
	}

	// NotifierConfig configures where room status events are published
	NotifierConfig struct {
		Type    string              `yaml:"type"` // memory or redis
		Redis   RedisNotifierConfig `yaml:"redis"`
		Breaker BreakerConfig       `yaml:"breaker"`
	}

	RedisNotifierConfig struct {
		Addr     string `yaml:"addr"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Stream   string `yaml:"stream"`
		MaxLen   int64  `yaml:"max_len"`
	}

	// BreakerConfig tunes the circuit breaker guarding event publishing
	BreakerConfig struct {
		MaxRequests         uint32        `yaml:"max_requests"`
		Interval            time.Duration `yaml:"interval"`
		Timeout             time.Duration `yaml:"timeout"`
		ConsecutiveFailures uint32        `yaml:"consecutive_failures"`
	}

	ReconcileConfig struct {
		Enabled  bool          `yaml:"enabled"`
		Interval time.Duration `yaml:"interval"`
	}
)

func (c *APIServerConfig) setDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5234
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	c.Server.ShutdownTimeout = durationOr(c.Server.ShutdownTimeout, 10*time.Second)

	if c.Database.Type == "" {
		c.Database.Type = cnst.DBTypeSQLite
	}
	if c.Database.Type == cnst.DBTypeSQLite && c.Database.DBName == "" {
		c.Database.DBName = "./data/rentmanager.db"
	}

	c.JWT.Duration = durationOr(c.JWT.Duration, 24*time.Hour)
	if c.JWT.CookieName == "" {
		c.JWT.CookieName = "rm_session"
	}

	if c.Notifier.Type == "" {
		c.Notifier.Type = cnst.NotifierTypeMemory
	}
	if c.Notifier.Redis.Stream == "" {
		c.Notifier.Redis.Stream = "rentmanager:room-events"
	}
	if c.Notifier.Redis.MaxLen == 0 {
		c.Notifier.Redis.MaxLen = 1000
	}
	if c.Notifier.Breaker.MaxRequests == 0 {
		c.Notifier.Breaker.MaxRequests = 3
	}
	c.Notifier.Breaker.Interval = durationOr(c.Notifier.Breaker.Interval, 10*time.Second)
	c.Notifier.Breaker.Timeout = durationOr(c.Notifier.Breaker.Timeout, 30*time.Second)
	if c.Notifier.Breaker.ConsecutiveFailures == 0 {
		c.Notifier.Breaker.ConsecutiveFailures = 3
	}

	c.Reconcile.Interval = durationOr(c.Reconcile.Interval, 10*time.Minute)

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "rentmanager"
	}

	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = cnst.AppName
	}

	if c.I18n.DefaultLang == "" {
		c.I18n.DefaultLang = cnst.LangEN
	}
}

// Validate checks the settings that cannot be defaulted
func (c *APIServerConfig) Validate() error {
	var errs []error
	switch c.Database.Type {
	case cnst.DBTypePostgres, cnst.DBTypeMySQL, cnst.DBTypeSQLite:
	default:
		errs = append(errs, fmt.Errorf("unsupported database type: %s", c.Database.Type))
	}
	switch c.Notifier.Type {
	case cnst.NotifierTypeMemory:
	case cnst.NotifierTypeRedis:
		if c.Notifier.Redis.Addr == "" {
			errs = append(errs, errors.New("notifier.redis.addr is required for redis notifier"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported notifier type: %s", c.Notifier.Type))
	}
	if len(c.JWT.SecretKey) < 32 {
		errs = append(errs, errors.New("jwt.secret_key must be at least 32 characters"))
	}
	switch c.I18n.DefaultLang {
	case cnst.LangEN, cnst.LangVI:
	default:
		errs = append(errs, fmt.Errorf("unsupported i18n.default_lang: %s", c.I18n.DefaultLang))
	}
	return errors.Join(errs...)
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	switch c.Type {
	case cnst.DBTypePostgres:
		return c.getPostgresDSN()
	case cnst.DBTypeMySQL:
		return c.getMySQLDSN()
	case cnst.DBTypeSQLite:
		// Ensure the directory for the SQLite database exists.
		if c.DBName != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(c.DBName), 0755); err != nil {
				panic(fmt.Errorf("failed to create directory for sqlite database: %w", err))
			}
		}
		return c.DBName // For SQLite, DBName is the file path
	default:
		return ""
	}
}

// getPostgresDSN returns PostgreSQL connection string
func (c *DatabaseConfig) getPostgresDSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, sslMode)
}

// getMySQLDSN returns MySQL connection string
func (c *DatabaseConfig) getMySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}
