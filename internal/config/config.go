package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, read from the environment.
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Cart     CartConfig
	Checkout CheckoutConfig
	Session  SessionConfig
	Log      LogConfig
	Admin    AdminConfig
}

type AppConfig struct {
	Name        string
	Environment string
}

type ServerConfig struct {
	Port        string
	CORSOrigins string
}

// DatabaseConfig mirrors the env keys used by pkg/database. URL wins when set.
type DatabaseConfig struct {
	URL          string
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	TimeZone     string
	MaxIdleConns int
	MaxOpenConns int
	MaxLifetime  time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

// CartConfig selects where in-progress carts live: "memory" or "redis".
type CartConfig struct {
	Store string
	TTL   time.Duration
}

type CheckoutConfig struct {
	CommitTimeout time.Duration
}

// SessionConfig bounds how hard the gate tries before giving up on a lookup.
type SessionConfig struct {
	ResolveAttempts int
	RetryBackoff    time.Duration
	IdleTimeout     time.Duration
}

// AdminConfig is the platform super admin seeded on first start.
type AdminConfig struct {
	Email    string
	Password string
}

type LogConfig struct {
	Level    string
	Format   string
	Output   string
	FilePath string
}

// Load reads .env (if any) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Toko Kelontong POS"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port:        getEnv("PORT", "3000"),
			CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Name:         getEnv("DB_NAME", "toko"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     os.Getenv("DB_PASSWORD"),
			TimeZone:     getEnv("DB_TIMEZONE", "Asia/Jakarta"),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			MaxLifetime:  getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-super-secret-key-change-in-production"),
			Expiry: getEnvAsDuration("JWT_EXPIRY", 24*time.Hour),
		},
		Cart: CartConfig{
			Store: strings.ToLower(getEnv("CART_STORE", "memory")),
			TTL:   getEnvAsDuration("CART_TTL", 12*time.Hour),
		},
		Checkout: CheckoutConfig{
			CommitTimeout: getEnvAsDuration("CHECKOUT_COMMIT_TIMEOUT", 10*time.Second),
		},
		Session: SessionConfig{
			ResolveAttempts: getEnvAsInt("SESSION_RESOLVE_ATTEMPTS", 3),
			RetryBackoff:    getEnvAsDuration("SESSION_RETRY_BACKOFF", 100*time.Millisecond),
			IdleTimeout:     getEnvAsDuration("SESSION_IDLE_TIMEOUT", 0),
		},
		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Format:   getEnv("LOG_FORMAT", "console"),
			Output:   getEnv("LOG_OUTPUT", "stdout"),
			FilePath: getEnv("LOG_FILE", "logs/toko.log"),
		},
		Admin: AdminConfig{
			Email:    strings.ToLower(getEnv("SUPERADMIN_EMAIL", "admin@example.com")),
			Password: getEnv("SUPERADMIN_PASSWORD", "admin123"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Cart.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid CART_STORE %q: use memory or redis", c.Cart.Store)
	}
	if c.Session.ResolveAttempts < 1 {
		return fmt.Errorf("SESSION_RESOLVE_ATTEMPTS must be at least 1")
	}
	if c.Checkout.CommitTimeout <= 0 {
		return fmt.Errorf("CHECKOUT_COMMIT_TIMEOUT must be positive")
	}
	return nil
}

// DSN builds a Postgres connection string from the discrete DB_* keys.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.TimeZone,
	)
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
