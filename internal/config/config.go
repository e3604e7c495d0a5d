// Package config reads runtime settings from the environment, loading a
// .env file first when one is present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// DefaultSQLitePath is the database file used when the sqlite driver has no
// DSN configured.
const DefaultSQLitePath = "./data/blogz.db"

type Config struct {
	Addr          string
	DBDriver      string
	DBDSN         string
	SessionTTL    time.Duration
	SecureCookies bool
	BcryptCost    int
}

func Default() Config {
	return Config{
		Addr:       ":8080",
		DBDriver:   "sqlite",
		SessionTTL: 24 * time.Hour,
		BcryptCost: bcrypt.DefaultCost,
	}
}

// Load applies environment overrides on top of Default.
func Load() (Config, error) {
	_ = godotenv.Load() // ok if missing
	cfg := Default()

	if p := os.Getenv("PORT"); p != "" {
		cfg.Addr = ":" + p
	}
	cfg.DBDriver = getenv("BLOGZ_DB_DRIVER", cfg.DBDriver)
	cfg.DBDSN = getenv("BLOGZ_DB_DSN", cfg.DBDSN)

	if v := os.Getenv("BLOGZ_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return cfg, fmt.Errorf("BLOGZ_SESSION_TTL: invalid duration %q", v)
		}
		cfg.SessionTTL = d
	}
	if v := os.Getenv("BLOGZ_SECURE_COOKIES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("BLOGZ_SECURE_COOKIES: %w", err)
		}
		cfg.SecureCookies = b
	}
	if v := os.Getenv("BLOGZ_BCRYPT_COST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < bcrypt.MinCost || n > bcrypt.MaxCost {
			return cfg, fmt.Errorf("BLOGZ_BCRYPT_COST: must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
		}
		cfg.BcryptCost = n
	}
	return cfg, nil
}

// Resolve fills in the SQLite default when no DSN is set. It must run after
// every override (environment and flags) has been applied, since only then
// is the final driver known. A mysql driver without a DSN is an error.
func (c *Config) Resolve() error {
	if c.DBDSN != "" {
		return nil
	}
	switch c.DBDriver {
	case "sqlite":
		c.DBDSN = DefaultSQLitePath
		return nil
	case "mysql":
		return fmt.Errorf("a DSN (BLOGZ_DB_DSN or --db-dsn) is required for the mysql driver")
	}
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
