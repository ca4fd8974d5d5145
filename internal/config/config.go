package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	applog "github.com/flavourheaven/costonomy/internal/log"
)

const (
	defaultEnv        = "dev"
	defaultDBPath     = "./costonomy.db"
	defaultPort       = "8080"
	defaultAPIBaseURL = "https://flavourheaven.in/costonomy-services/"
	defaultTimeout    = 15 * time.Second
	defaultTimezone   = "Asia/Kolkata"
	defaultSessionTTL = 24 * time.Hour
)

// Config holds application configuration sourced from an optional YAML file
// and environment variables. Environment variables win.
type Config struct {
	Env      string `yaml:"env"`
	DBPath   string `yaml:"db_path"`
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`
	Timezone string `yaml:"timezone"`

	// SessionTTL is how long an untouched scaling session is kept.
	SessionTTL time.Duration `yaml:"session_ttl"`

	API APIConfig `yaml:"api"`
}

// APIConfig configures the remote Costonomy REST service.
type APIConfig struct {
	BaseURL  string        `yaml:"base_url"`
	OutletID int64         `yaml:"outlet_id"`
	UserID   int64         `yaml:"user_id"`
	Timeout  time.Duration `yaml:"timeout"`
}

// IsDev reports whether the app runs in local development mode.
func (c Config) IsDev() bool {
	return c.Env == "" || strings.EqualFold(c.Env, "dev") || strings.EqualFold(c.Env, "development")
}

// Location resolves the configured timezone, falling back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads the optional config file and environment variables and returns a populated Config.
func Load() (Config, error) {
	// Best-effort: load local dev environment variables.
	if n, err := loadDotEnv(".env"); err != nil {
		applog.Warn(context.Background(), "could not read .env", "error", err)
	} else if n > 0 {
		applog.Debug(context.Background(), "loaded .env", "variables", n)
	}

	cfg := Config{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	overrideString(&cfg.Env, "APP_ENV")
	overrideString(&cfg.DBPath, "DB_PATH")
	overrideString(&cfg.Port, "PORT")
	overrideString(&cfg.LogLevel, "LOG_LEVEL")
	overrideString(&cfg.Timezone, "TIMEZONE")
	overrideString(&cfg.API.BaseURL, "COSTONOMY_API_URL")
	if err := overrideInt(&cfg.API.OutletID, "COSTONOMY_OUTLET_ID"); err != nil {
		return Config{}, err
	}
	if err := overrideInt(&cfg.API.UserID, "COSTONOMY_USER_ID"); err != nil {
		return Config{}, err
	}
	if err := overrideDuration(&cfg.API.Timeout, "COSTONOMY_TIMEOUT"); err != nil {
		return Config{}, err
	}
	if err := overrideDuration(&cfg.SessionTTL, "SESSION_TTL"); err != nil {
		return Config{}, err
	}

	applyDefaults(&cfg)

	if cfg.API.OutletID == 0 {
		applog.Warn(context.Background(), "COSTONOMY_OUTLET_ID is not set; requests will use outlet 0 unless overridden")
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.Timezone == "" {
		cfg.Timezone = defaultTimezone
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = defaultAPIBaseURL
	}
	if cfg.API.Timeout <= 0 {
		cfg.API.Timeout = defaultTimeout
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config file %s not found", path)
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func overrideString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func overrideInt(dst *int64, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("%s must be an integer: %w", key, err)
	}
	*dst = n
	return nil
}

func overrideDuration(dst *time.Duration, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s must be a duration like 15s: %w", key, err)
	}
	*dst = d
	return nil
}
