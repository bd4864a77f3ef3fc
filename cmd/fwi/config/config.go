// Package config provides flag and environment configuration for the fwi client.
//
// Flags take precedence over environment variables, which take precedence over
// the defaults. The same common flags are registered on every subcommand.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/HatiCode/fwirelay/pkg/history"
	"github.com/HatiCode/fwirelay/pkg/logger"
)

// Storage backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Config holds the client configuration shared by all subcommands.
type Config struct {
	RelayURL      string
	Timeout       time.Duration
	Store         string
	HistoryDB     string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string
	RedisTTL      time.Duration
	LogLevel      string
	LogFormat     string
}

// Register adds the common flags to fs and returns the Config they fill.
func Register(fs *flag.FlagSet) *Config {
	cfg := &Config{}

	fs.StringVar(&cfg.RelayURL, "relay-url", getEnv("FWI_RELAY_URL", "http://localhost:8080"), "Base URL of the prediction relay")
	fs.DurationVar(&cfg.Timeout, "timeout", getEnvDuration("FWI_TIMEOUT", 90*time.Second), "Timeout for one prediction request")

	fs.StringVar(&cfg.Store, "store", getEnv("FWI_STORE", StoreSQLite), "History backend: memory, sqlite or redis")
	fs.StringVar(&cfg.HistoryDB, "history-db", getEnv("FWI_HISTORY_DB", defaultHistoryDB()), "SQLite history file")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", getEnv("FWI_REDIS_ADDR", "localhost:6379"), "Redis server address")
	fs.StringVar(&cfg.RedisPassword, "redis-password", getEnv("FWI_REDIS_PASSWORD", ""), "Redis password")
	fs.IntVar(&cfg.RedisDB, "redis-db", getEnvInt("FWI_REDIS_DB", 0), "Redis database number")
	fs.StringVar(&cfg.RedisKey, "redis-key", getEnv("FWI_REDIS_KEY", history.DefaultRedisKey), "Redis list key holding the history")
	fs.DurationVar(&cfg.RedisTTL, "redis-ttl", getEnvDuration("FWI_REDIS_TTL", 0), "Expire the history after this idle time (0 keeps it)")

	fs.StringVar(&cfg.LogLevel, "log-level", getEnv("LOG_LEVEL", "warn"), "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFormat, "log-format", getEnv("LOG_FORMAT", "text"), "Log format: text or json")

	return cfg
}

// Validate checks the configuration after flags are parsed.
func (c *Config) Validate() error {
	if c.RelayURL == "" {
		return errors.New("relay-url cannot be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0, got %v", c.Timeout)
	}

	switch c.Store {
	case StoreMemory:
	case StoreSQLite:
		if c.HistoryDB == "" {
			return errors.New("history-db is required when store=sqlite")
		}
	case StoreRedis:
		if c.RedisAddr == "" {
			return errors.New("redis-addr is required when store=redis")
		}
		if c.RedisDB < 0 {
			return errors.New("redis-db must be >= 0")
		}
		if c.RedisTTL < 0 {
			return errors.New("redis-ttl cannot be negative")
		}
	default:
		return fmt.Errorf("invalid store %q (must be memory, sqlite or redis)", c.Store)
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format %q (must be text or json)", c.LogFormat)
	}
	return nil
}

func defaultHistoryDB() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "fwi-history.db"
	}
	return filepath.Join(dir, "fwi", "history.db")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
