package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const devSecret = "dev_secret_change_me"

type Config struct {
	Addr           string
	StoreKind      string // "sqlite" | "memory"
	DBPath         string
	Secret         string
	TokenTTL       time.Duration // 0 = tokens never expire
	BcryptCost     int
	ClientOrigin   string
	RequestTimeout time.Duration
	LogLevel       string
	LogFormat      string // "json" | "console"
	Production     bool
}

// Load reads the configuration from the environment.
func Load() Config {
	return Config{
		Addr:           ":" + envString("PORT", "3003"),
		StoreKind:      envString("STORE", "sqlite"),
		DBPath:         envString("DB_PATH", "data/bloglist.db"),
		Secret:         envString("SECRET", devSecret),
		TokenTTL:       envDuration("TOKEN_TTL", 0),
		BcryptCost:     envInt("BCRYPT_COST", bcrypt.DefaultCost),
		ClientOrigin:   envString("CLIENT_ORIGIN", "http://localhost:5173"),
		RequestTimeout: envDuration("REQUEST_TIMEOUT", 10*time.Second),
		LogLevel:       envString("LOG_LEVEL", "info"),
		LogFormat:      envString("LOG_FORMAT", "json"),
		Production:     os.Getenv("APP_ENV") == "production",
	}
}

// DevSecret reports whether the built-in development secret is in use.
func (c Config) DevSecret() bool { return c.Secret == devSecret }

// Validate rejects configurations that must not be served.
func (c Config) Validate() error {
	if c.Production && c.DevSecret() {
		return errors.New("SECRET must be set in production")
	}
	switch c.StoreKind {
	case "sqlite", "memory":
	default:
		return errors.New("STORE must be sqlite or memory")
	}
	if c.StoreKind == "sqlite" && c.DBPath == "" {
		return errors.New("DB_PATH must not be empty")
	}
	return nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
