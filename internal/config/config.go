// Package config loads front-desk settings once at process start.
//
// Settings come from three layers, later layers winning:
//   - built-in defaults (Default)
//   - an optional YAML file named by --config or GYM_CONFIG
//   - GYM_* environment variables
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // timezone names resolve on hosts without zoneinfo

	"gopkg.in/yaml.v3"
)

// Environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Storage backends. Mirrors the sheets package constants.
const (
	BackendXLSX   = "xlsx"
	BackendSQLite = "sqlite"
)

// Config is the complete server configuration.
type Config struct {
	Env      string `yaml:"env"`
	Addr     string `yaml:"addr"`
	BaseURL  string `yaml:"base_url"`
	Timezone string `yaml:"timezone"`

	Admin    AdminConfig `yaml:"admin"`
	CSRFKey  string      `yaml:"csrf_key"` // 64 hex chars
	APIToken string      `yaml:"api_token"`

	Store StoreConfig `yaml:"store"`

	QRDir        string `yaml:"qr_dir"`
	TemplatesDir string `yaml:"templates_dir"`
	StaticDir    string `yaml:"static_dir"`

	// Per-address request budgets. Hour and day windows are off at zero.
	RateLimitPerSecond int `yaml:"rate_limit_per_second"`
	RateLimitPerHour   int `yaml:"rate_limit_per_hour"`
	RateLimitPerDay    int `yaml:"rate_limit_per_day"`
	RecentPayments     int `yaml:"recent_payments"`

	Log   LogConfig   `yaml:"log"`
	Email EmailConfig `yaml:"email"`

	// Notice is markdown shown on the dashboard.
	Notice      string   `yaml:"notice"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// AdminConfig holds the single desk login.
type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// StoreConfig selects where the sheets live.
type StoreConfig struct {
	Backend      string `yaml:"backend"`
	WorkbookPath string `yaml:"workbook_path"`
	SQLitePath   string `yaml:"sqlite_path"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json

	// Requests and sheet calls at or above these durations log at WARN. 0 turns the warning off.
	SlowRequestMs float64 `yaml:"slow_request_ms"`
	SlowSheetMs   float64 `yaml:"slow_sheet_ms"`
}

// EmailConfig configures payment notifications. An empty ResendKey logs instead of sending.
type EmailConfig struct {
	ResendKey string   `yaml:"resend_key"`
	From      string   `yaml:"from"`
	NotifyTo  []string `yaml:"notify_to"`
}

// Default returns the development defaults.
func Default() Config {
	return Config{
		Env:      EnvDevelopment,
		Addr:     ":8080",
		BaseURL:  "http://localhost:8080",
		Timezone: "Local",
		Admin:    AdminConfig{Username: "admin"},
		Store: StoreConfig{
			Backend:      BackendXLSX,
			WorkbookPath: "data/gym.xlsx",
			SQLitePath:   "data/gym.db",
		},
		QRDir:              "static/qr",
		TemplatesDir:       "internal/adapters/http/templates",
		StaticDir:          "static",
		RateLimitPerSecond: 10,
		RecentPayments:     5,
		Log:                LogConfig{Level: "info", Format: "text", SlowRequestMs: 200, SlowSheetMs: 250},
		Email:              EmailConfig{From: "Front Desk <desk@localhost>"},
	}
}

// Load builds the configuration from defaults, the optional file at path and
// the process environment.
// PRE: none
// POST: Returns a validated Config or an error naming the bad setting
func Load(path string) (Config, error) {
	return LoadWith(path, os.Getenv)
}

// LoadWith is Load with an injectable environment lookup.
func LoadWith(path string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return Config{}, err
	}
	if !cfg.IsProduction() && cfg.Admin.Password == "" {
		cfg.Admin.Password = "admin"
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := map[string]*string{
		"GYM_ENV":            &c.Env,
		"GYM_ADDR":           &c.Addr,
		"GYM_BASE_URL":       &c.BaseURL,
		"GYM_TIMEZONE":       &c.Timezone,
		"GYM_ADMIN_USERNAME": &c.Admin.Username,
		"GYM_ADMIN_PASSWORD": &c.Admin.Password,
		"GYM_CSRF_KEY":       &c.CSRFKey,
		"GYM_API_TOKEN":      &c.APIToken,
		"GYM_STORE_BACKEND":  &c.Store.Backend,
		"GYM_WORKBOOK_PATH":  &c.Store.WorkbookPath,
		"GYM_SQLITE_PATH":    &c.Store.SQLitePath,
		"GYM_QR_DIR":         &c.QRDir,
		"GYM_TEMPLATES_DIR":  &c.TemplatesDir,
		"GYM_STATIC_DIR":     &c.StaticDir,
		"GYM_LOG_LEVEL":      &c.Log.Level,
		"GYM_LOG_FORMAT":     &c.Log.Format,
		"GYM_RESEND_KEY":     &c.Email.ResendKey,
		"GYM_EMAIL_FROM":     &c.Email.From,
		"GYM_NOTICE":         &c.Notice,
	}
	for key, dst := range str {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	// PORT is what most hosting platforms set.
	if v := getenv("PORT"); v != "" && getenv("GYM_ADDR") == "" {
		c.Addr = ":" + v
	}
	if v := getenv("GYM_NOTIFY_TO"); v != "" {
		c.Email.NotifyTo = splitList(v)
	}
	if v := getenv("GYM_CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}
	ints := map[string]*int{
		"GYM_RATE_LIMIT":      &c.RateLimitPerSecond,
		"GYM_RATE_LIMIT_HOUR": &c.RateLimitPerHour,
		"GYM_RATE_LIMIT_DAY":  &c.RateLimitPerDay,
		"GYM_RECENT_PAYMENTS": &c.RecentPayments,
	}
	for key, dst := range ints {
		if v := getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
	}
	floats := map[string]*float64{
		"GYM_SLOW_REQUEST_MS": &c.Log.SlowRequestMs,
		"GYM_SLOW_SHEET_MS":   &c.Log.SlowSheetMs,
	}
	for key, dst := range floats {
		if v := getenv(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = f
		}
	}
	return nil
}

// Validate checks the configuration for contradictions and missing secrets.
// POST: Returns nil only if the server can start with c
func (c Config) Validate() error {
	var errs []error
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		errs = append(errs, fmt.Errorf("env must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Env))
	}
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.BaseURL == "" {
		errs = append(errs, errors.New("base_url is required"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if strings.TrimSpace(c.Admin.Username) == "" {
		errs = append(errs, errors.New("admin.username is required"))
	}
	switch c.Store.Backend {
	case BackendXLSX:
		if c.Store.WorkbookPath == "" {
			errs = append(errs, errors.New("store.workbook_path is required for the xlsx backend"))
		}
	case BackendSQLite:
		if c.Store.SQLitePath == "" {
			errs = append(errs, errors.New("store.sqlite_path is required for the sqlite backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.backend must be %q or %q, got %q", BackendXLSX, BackendSQLite, c.Store.Backend))
	}
	if c.CSRFKey != "" {
		if b, err := hex.DecodeString(c.CSRFKey); err != nil || len(b) != 32 {
			errs = append(errs, errors.New("csrf_key must be 64 hex characters"))
		}
	}
	if c.RateLimitPerSecond <= 0 {
		errs = append(errs, errors.New("rate_limit_per_second must be positive"))
	}
	if c.RateLimitPerHour < 0 || c.RateLimitPerDay < 0 {
		errs = append(errs, errors.New("rate_limit_per_hour and rate_limit_per_day must not be negative"))
	}
	if c.RecentPayments < 1 {
		errs = append(errs, errors.New("recent_payments must be at least 1"))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	if c.Log.SlowRequestMs < 0 || c.Log.SlowSheetMs < 0 {
		errs = append(errs, errors.New("log.slow_request_ms and log.slow_sheet_ms must not be negative"))
	}
	if c.IsProduction() {
		if c.Admin.Password == "" {
			errs = append(errs, errors.New("admin.password is required in production"))
		}
		if c.CSRFKey == "" {
			errs = append(errs, errors.New("csrf_key is required in production"))
		}
	}
	return errors.Join(errs...)
}

// IsProduction reports whether the server runs in production mode.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Location resolves Timezone. "Local" and "" use the host zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// SlogLevel maps Log.Level to a slog.Level.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
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
