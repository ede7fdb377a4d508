// Package config loads service settings from the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"github.com/appiso/access-control/internal/core/domain"
)

const (
	StoreMongo  = "mongo"
	StoreSQLite = "sqlite"

	LockMemory = "memory"
	LockRedis  = "redis"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth   AuthConfig
	Store  StoreConfig
	Mongo  MongoConfig
	SQLite SQLiteConfig
	Lock   LockConfig
	Redis  RedisConfig
	Rate   RateConfig
	Seed   SeedConfig
}

type AuthConfig struct {
	JWTSecret        string        `env:"JWT_SECRET"`
	TokenTTL         time.Duration `env:"TOKEN_TTL,         default=1h"`
	LockoutThreshold int           `env:"LOCKOUT_THRESHOLD, default=3"`
	LockoutDuration  time.Duration `env:"LOCKOUT_DURATION,  default=15m"`
	PasswordHash     string        `env:"PASSWORD_HASH,     default=bcrypt"`
	BcryptCost       int           `env:"BCRYPT_COST,       default=10"`
}

type StoreConfig struct {
	Driver string `env:"STORE_DRIVER, default=mongo"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=access_control"`
}

type SQLiteConfig struct {
	Path string `env:"SQLITE_PATH, default=access-control.db"`
}

type LockConfig struct {
	Backend string        `env:"LOCK_BACKEND, default=memory"`
	TTL     time.Duration `env:"LOCK_TTL,     default=10s"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// RateConfig limits login attempts per client IP. A zero limit disables it.
type RateConfig struct {
	LoginPerSecond float64 `env:"LOGIN_RATE_LIMIT, default=5"`
	LoginBurst     int     `env:"LOGIN_RATE_BURST, default=10"`
}

// SeedConfig holds the passwords of the bootstrap accounts. Accounts whose
// password is empty are not seeded.
type SeedConfig struct {
	AdminPassword   string `env:"SEED_ADMIN_PASSWORD"`
	ManagerPassword string `env:"SEED_MANAGER_PASSWORD"`
}

// Load reads an optional .env file and then the process environment.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration from the given lookuper and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		errs = append(errs, fmt.Errorf("JWT_SECRET: %w", domain.ErrMissingSigningSecret))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.Auth.LockoutThreshold <= 0 {
		errs = append(errs, errors.New("LOCKOUT_THRESHOLD must be positive"))
	}
	if c.Auth.LockoutDuration <= 0 {
		errs = append(errs, errors.New("LOCKOUT_DURATION must be positive"))
	}
	switch c.Auth.PasswordHash {
	case "bcrypt", "argon2id":
	default:
		errs = append(errs, fmt.Errorf("PASSWORD_HASH: unknown algorithm %q", c.Auth.PasswordHash))
	}
	switch c.Store.Driver {
	case StoreMongo, StoreSQLite:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER: unknown driver %q", c.Store.Driver))
	}
	switch c.Lock.Backend {
	case LockMemory, LockRedis:
	default:
		errs = append(errs, fmt.Errorf("LOCK_BACKEND: unknown backend %q", c.Lock.Backend))
	}
	if c.Rate.LoginPerSecond < 0 || c.Rate.LoginBurst < 0 {
		errs = append(errs, errors.New("login rate limit must not be negative"))
	}

	return errors.Join(errs...)
}

// IsDevelopment reports whether the service runs in a local environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "local"
}

// LockoutPolicy builds the domain policy from the configured values.
func (c *Config) LockoutPolicy() domain.LockoutPolicy {
	return domain.LockoutPolicy{
		Threshold: c.Auth.LockoutThreshold,
		Duration:  c.Auth.LockoutDuration,
	}
}
