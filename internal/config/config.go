package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var (
	ErrMissingEnvironmentVariables = errors.New("missing required environment variables")
	ErrUnknownDriver               = errors.New("unknown database driver")
	ErrInvalidValue                = errors.New("invalid configuration value")
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env    string `mapstructure:"env"`      // current application environment (local, dev, production etc)
	HTTP   HTTP   `mapstructure:"http"`     // HTTP server section
	DB     DB     `mapstructure:"database"` // database configuration section
	Expiry Expiry `mapstructure:"expiry"`   // background attempt expiry
	CORS   CORS   `mapstructure:"cors"`
	Gemini Gemini `mapstructure:"gemini"` // quiz draft generation
	Log    Log    `mapstructure:"log"`
}

// Log configures the zap logger. An empty level keeps the environment default
// (info in production, debug elsewhere).
type Log struct {
	Level string `mapstructure:"level"`
}

type HTTP struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DB contains database-related configuration parameters.
type DB struct {
	Driver          string        `mapstructure:"driver"`            // postgres or sqlite
	URL             string        `mapstructure:"url"`               // postgres connection string, usually from DATABASE_URL
	SQLitePath      string        `mapstructure:"sqlite_path"`       // database file used by the sqlite driver
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
	QueryTimeout    time.Duration `mapstructure:"query_timeout"`     // deadline applied to every transaction
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

type Expiry struct {
	Enabled   bool   `mapstructure:"enabled"`
	Schedule  string `mapstructure:"schedule"` // cron spec, e.g. "@every 1m"
	BatchSize int    `mapstructure:"batch_size"`
}

type CORS struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Gemini struct {
	APIKey  string        `mapstructure:"api_key"`
	ModelID string        `mapstructure:"model_id"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load reads configuration from an optional .env file, config files and
// environment variables, then validates it.
func Load() (*Config, error) {
	// A missing .env file is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	setDefaults(v)

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // database.url -> DATABASE_URL
	v.AutomaticEnv()
	_ = v.BindEnv("env", "APP_ENV")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("log.level", "")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", "10s")
	v.SetDefault("http.write_timeout", "30s")
	v.SetDefault("http.shutdown_timeout", "15s")

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.url", "")
	v.SetDefault("database.sqlite_path", "quiz.db")
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30m")
	v.SetDefault("database.query_timeout", "5s")

	v.SetDefault("expiry.enabled", true)
	v.SetDefault("expiry.schedule", "@every 1m")
	v.SetDefault("expiry.batch_size", 100)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_id", "gemini-1.5-flash")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("gemini.timeout", "60s")
}

// Validate checks values that defaults cannot fix.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case DriverPostgres:
		if _, err := c.DB.DSN(); err != nil {
			return fmt.Errorf("database.url: %w", err)
		}
	case DriverSQLite:
		if c.DB.SQLitePath == "" {
			return fmt.Errorf("database.sqlite_path: %w", ErrInvalidValue)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.DB.Driver)
	}

	if c.DB.QueryTimeout <= 0 {
		return fmt.Errorf("database.query_timeout must be positive: %w", ErrInvalidValue)
	}
	if c.Expiry.BatchSize < 0 {
		return fmt.Errorf("expiry.batch_size must not be negative: %w", ErrInvalidValue)
	}
	if c.Expiry.Enabled && strings.TrimSpace(c.Expiry.Schedule) == "" {
		return fmt.Errorf("expiry.schedule is required when expiry is enabled: %w", ErrInvalidValue)
	}
	return nil
}

// IsProduction reports whether the application runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
