package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// StoreBackend selects where configured calendars are persisted.
	StoreBackend string `env:"STORE_BACKEND,  default=memory"`
	// CalendarsFile is an optional TOML file of calendars imported at startup.
	CalendarsFile string `env:"CALENDARS_FILE"`

	IdealService IdealServiceConfig
	Mongo        MongoConfig
	Redis        RedisConfig
}

type IdealServiceConfig struct {
	BaseURL               string        `env:"IDEALSERVICE_BASE_URL,               default=http://idealservice.infofactory.it/it/api"`
	Timeout               time.Duration `env:"IDEALSERVICE_TIMEOUT,                default=10s"`
	RefreshInterval       time.Duration `env:"IDEALSERVICE_REFRESH_INTERVAL,       default=24h"`
	Days                  int           `env:"IDEALSERVICE_DAYS,                   default=28"`
	Offset                int           `env:"IDEALSERVICE_OFFSET,                 default=0"`
	SetupRetryInterval    time.Duration `env:"IDEALSERVICE_SETUP_RETRY_INTERVAL,   default=1m"`
	ManualRefreshCooldown time.Duration `env:"IDEALSERVICE_MANUAL_REFRESH_COOLDOWN, default=1m"`
	Workers               int           `env:"IDEALSERVICE_WORKERS,                default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=idealservice_waste"`
}

// RedisConfig is optional: an empty Addr keeps the refresh throttle in memory.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// IsProduction reports whether ENV selects production behaviour.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks values envconfig cannot express as tags.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreMemory, StoreMongo:
	default:
		return fmt.Errorf("config: STORE_BACKEND must be %q or %q, got %q", StoreMemory, StoreMongo, c.StoreBackend)
	}
	if c.IdealService.RefreshInterval <= 0 {
		return fmt.Errorf("config: IDEALSERVICE_REFRESH_INTERVAL must be positive")
	}
	if c.IdealService.SetupRetryInterval <= 0 {
		return fmt.Errorf("config: IDEALSERVICE_SETUP_RETRY_INTERVAL must be positive")
	}
	if c.IdealService.Days < 0 || c.IdealService.Offset < 0 {
		return fmt.Errorf("config: IDEALSERVICE_DAYS and IDEALSERVICE_OFFSET must not be negative")
	}
	if c.IdealService.ManualRefreshCooldown < 0 {
		return fmt.Errorf("config: IDEALSERVICE_MANUAL_REFRESH_COOLDOWN must not be negative")
	}
	return nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through l, e.g. envconfig.MapLookuper in tests.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
