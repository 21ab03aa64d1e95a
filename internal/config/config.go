// Package config resolves runtime configuration from a YAML file, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything the server needs at startup.
// File values are defaults; environment variables always win.
type Config struct {
	HTTPAddr string `yaml:"http_addr"`

	DatabaseURL  string        `yaml:"database_url"`
	AutoMigrate  bool          `yaml:"auto_migrate"`
	RedisURL     string        `yaml:"redis_url"`
	PageCacheTTL time.Duration `yaml:"page_cache_ttl"`

	SessionSecret string        `yaml:"session_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	SessionCookie string        `yaml:"session_cookie"`
	CookieSecure  bool          `yaml:"cookie_secure"`
	BcryptCost    int           `yaml:"bcrypt_cost"`

	CORSOrigins []string `yaml:"cors_origins"`
	LogLevel    string   `yaml:"log_level"`

	SeedUser SeedUser `yaml:"seed_user"`
}

// SeedUser is the operator account created by the migrate command.
type SeedUser struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// Enabled reports whether enough fields are set to create the account.
func (s SeedUser) Enabled() bool {
	return s.Email != "" && s.Password != ""
}

func defaults() Config {
	return Config{
		HTTPAddr:      ":8080",
		AutoMigrate:   true,
		PageCacheTTL:  5 * time.Minute,
		SessionTTL:    24 * time.Hour,
		SessionCookie: "session",
		BcryptCost:    10,
		CORSOrigins:   []string{"http://localhost:3000"},
		LogLevel:      "info",
	}
}

// Load reads .env (if present), then the YAML file named by CONFIG_FILE
// (default config.yaml, optional), then applies environment overrides.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	path := get("CONFIG_FILE", "config.yaml")
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.HTTPAddr = get("HTTP_ADDR", cfg.HTTPAddr)
	cfg.DatabaseURL = get("DATABASE_URL", cfg.DatabaseURL)
	cfg.RedisURL = get("REDIS_URL", cfg.RedisURL)
	cfg.SessionSecret = get("SESSION_SECRET", cfg.SessionSecret)
	cfg.SessionCookie = get("SESSION_COOKIE", cfg.SessionCookie)
	cfg.LogLevel = get("LOG_LEVEL", cfg.LogLevel)
	cfg.SeedUser.Name = get("SEED_USER_NAME", cfg.SeedUser.Name)
	cfg.SeedUser.Email = get("SEED_USER_EMAIL", cfg.SeedUser.Email)
	cfg.SeedUser.Password = get("SEED_USER_PASSWORD", cfg.SeedUser.Password)

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}

	var err error
	if cfg.AutoMigrate, err = getBool("DB_AUTO_MIGRATE", cfg.AutoMigrate); err != nil {
		return err
	}
	if cfg.CookieSecure, err = getBool("COOKIE_SECURE", cfg.CookieSecure); err != nil {
		return err
	}
	if cfg.PageCacheTTL, err = getDuration("PAGE_CACHE_TTL", cfg.PageCacheTTL); err != nil {
		return err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", cfg.SessionTTL); err != nil {
		return err
	}
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BCRYPT_COST: %w", err)
		}
		cfg.BcryptCost = n
	}
	return nil
}

func (c Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set")
	}
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is not set")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	return nil
}

// get returns the value of the environment variable k or def if not set.
func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getBool(k string, def bool) (bool, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true, nil
	case "0", "false", "no":
		return false, nil
	}
	return def, fmt.Errorf("%s: invalid boolean %q", k, v)
}

func getDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", k, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
