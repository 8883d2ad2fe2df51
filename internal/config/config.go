package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Snapshot store drivers
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Config holds the server settings read from the environment
type Config struct {
	GRPCAddr string `env:"GRPC_ADDR" envDefault:":8080"`
	// API_TOKEN may only be empty for the memory store, which then serves without auth
	APIToken string `env:"API_TOKEN"`

	StoreDriver   string `env:"STORE_DRIVER" envDefault:"sqlite"`
	SnapshotKey   string `env:"SNAPSHOT_KEY" envDefault:"retrofit-projects"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"retrofit.db"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	PostgresDSN   string `env:"POSTGRES_DSN"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`

	// Chain submission is enabled when ChainRPCURL is set
	ChainRPCURL          string `env:"CHAIN_RPC_URL"`
	ChainContractAddress string `env:"CHAIN_CONTRACT_ADDRESS"`
	ChainPrivateKey      string `env:"CHAIN_PRIVATE_KEY"`
	ChainID              int64  `env:"CHAIN_ID" envDefault:"0"`
}

// Load reads an optional .env file, then the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFrom parses the given variables instead of the process environment
func LoadFrom(environment map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environment}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ChainEnabled reports whether investments are submitted on chain
func (c *Config) ChainEnabled() bool {
	return c.ChainRPCURL != ""
}

// AuthEnabled reports whether requests must carry API_TOKEN
func (c *Config) AuthEnabled() bool {
	return c.APIToken != ""
}

// Validate checks the settings that depend on each other
func (c *Config) Validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))

	if strings.TrimSpace(c.SnapshotKey) == "" {
		return errors.New("SNAPSHOT_KEY cannot be empty")
	}

	c.APIToken = strings.TrimSpace(c.APIToken)
	if c.APIToken == "" && c.StoreDriver != DriverMemory {
		return fmt.Errorf("API_TOKEN is required for the %s store", c.StoreDriver)
	}

	switch c.StoreDriver {
	case DriverMemory:
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required for the sqlite store")
		}
	case DriverRedis:
		if c.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required for the redis store")
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	if c.ChainEnabled() {
		if c.ChainContractAddress == "" || c.ChainPrivateKey == "" {
			return errors.New("CHAIN_CONTRACT_ADDRESS and CHAIN_PRIVATE_KEY are required when CHAIN_RPC_URL is set")
		}
		if c.ChainID < 0 {
			return errors.New("CHAIN_ID cannot be negative")
		}
	}

	return nil
}
