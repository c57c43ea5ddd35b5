package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	// Server
	Port        string
	CORSOrigins string
	AppEnv      string

	// Simulated network latency of the report API
	SearchDelay time.Duration
	SubmitDelay time.Duration

	// Report store
	StoreDriver string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// AI safety tips (any OpenAI-compatible endpoint)
	AIAPIKey     string
	AIBaseURL    string
	AIModel      string
	AITimeout    time.Duration
	TipsCacheTTL time.Duration

	// Observability
	LogLevel  string
	LogFile   string
	SentryDSN string
}

var defaults = map[string]interface{}{
	"port":           "8080",
	"cors_origins":   "*",
	"app_env":        "development",
	"search_delay":   "1000ms",
	"submit_delay":   "1500ms",
	"store_driver":   StoreMemory,
	"db_host":        "localhost",
	"db_port":        "5432",
	"db_user":        "postgres",
	"db_password":    "",
	"db_name":        "scamguard",
	"db_sslmode":     "disable",
	"ai_api_key":     "",
	"ai_base_url":    "https://generativelanguage.googleapis.com/v1beta/openai/",
	"ai_model":       "gemini-2.5-flash",
	"ai_timeout":     "60s",
	"tips_cache_ttl": "1h",
	"log_level":      "info",
	"log_file":       "",
	"sentry_dsn":     "",
}

// Load builds the configuration from, lowest precedence first: built-in
// defaults, the JSON file named by CONFIG_FILE, a .env file in the working
// directory, and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := k.Load(file.Provider(path), json.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := &Config{
		Port:        k.String("port"),
		CORSOrigins: k.String("cors_origins"),
		AppEnv:      k.String("app_env"),

		SearchDelay: parseDuration(k.String("search_delay"), time.Second),
		SubmitDelay: parseDuration(k.String("submit_delay"), 1500*time.Millisecond),

		StoreDriver: strings.ToLower(k.String("store_driver")),
		DBHost:      k.String("db_host"),
		DBPort:      k.String("db_port"),
		DBUser:      k.String("db_user"),
		DBPassword:  k.String("db_password"),
		DBName:      k.String("db_name"),
		DBSSLMode:   k.String("db_sslmode"),

		AIAPIKey:     k.String("ai_api_key"),
		AIBaseURL:    k.String("ai_base_url"),
		AIModel:      k.String("ai_model"),
		AITimeout:    parseDuration(k.String("ai_timeout"), 60*time.Second),
		TipsCacheTTL: parseDuration(k.String("tips_cache_ttl"), time.Hour),

		LogLevel:  k.String("log_level"),
		LogFile:   k.String("log_file"),
		SentryDSN: k.String("sentry_dsn"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps a known environment variable to its config key and drops the rest.
func envKey(name string) string {
	key := strings.ToLower(name)
	if _, ok := defaults[key]; !ok {
		return ""
	}
	return key
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreMemory:
	case StorePostgres:
		if c.DBPassword == "" {
			return fmt.Errorf("%w: DB_PASSWORD is required for the postgres store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown STORE_DRIVER %q", ErrInvalidConfig, c.StoreDriver)
	}
	if c.SearchDelay < 0 || c.SubmitDelay < 0 {
		return fmt.Errorf("%w: delays must not be negative", ErrInvalidConfig)
	}
	if c.Port == "" {
		return fmt.Errorf("%w: PORT is required", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// AIEnabled reports whether a credential for the safety-tip model is set.
func (c *Config) AIEnabled() bool {
	return c.AIAPIKey != ""
}

func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
