// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/freshapply/internal/ats"
	"github.com/jonathan/freshapply/internal/engine"
	"github.com/jonathan/freshapply/internal/scoring"
)

// Config represents the configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults.
type Config struct {
	// Storage
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"` // SQLite path or postgres:// URL
	RedisURL    string `json:"redis_url,omitempty" yaml:"redis_url,omitempty" validate:"omitempty,url"`
	DigestDir   string `json:"digest_dir,omitempty" yaml:"digest_dir,omitempty"`

	// Candidate
	UserCountry string `json:"user_country,omitempty" yaml:"user_country,omitempty" validate:"omitempty,len=2,alpha"`
	UserCity    string `json:"user_city,omitempty" yaml:"user_city,omitempty"`

	// Scraping
	Concurrency           int         `json:"concurrency,omitempty" yaml:"concurrency,omitempty" validate:"omitempty,min=1,max=64"`
	RequestTimeoutSeconds int         `json:"request_timeout_seconds,omitempty" yaml:"request_timeout_seconds,omitempty" validate:"omitempty,min=1,max=600"`
	CacheTTLMinutes       int         `json:"cache_ttl_minutes,omitempty" yaml:"cache_ttl_minutes,omitempty" validate:"omitempty,min=1"`
	Schedule              string      `json:"schedule,omitempty" yaml:"schedule,omitempty"` // cron spec or @every descriptor
	Boards                []ats.Board `json:"boards,omitempty" yaml:"boards,omitempty" validate:"dive"`

	// Scoring
	PreferPublishedAt bool                `json:"prefer_published_at,omitempty" yaml:"prefer_published_at,omitempty"`
	Thresholds        *scoring.Thresholds `json:"thresholds,omitempty" yaml:"thresholds,omitempty"`

	// Server
	Port int `json:"port,omitempty" yaml:"port,omitempty" validate:"omitempty,min=1,max=65535"`

	// Logging
	LogLevel  string `json:"log_level,omitempty" yaml:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	LogFormat string `json:"log_format,omitempty" yaml:"log_format,omitempty" validate:"omitempty,oneof=json console"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		DatabaseURL:           "freshapply.db",
		DigestDir:             "digests",
		Concurrency:           8,
		RequestTimeoutSeconds: 30,
		CacheTTLMinutes:       30,
		Schedule:              "@every 6h",
		Port:                  8080,
		LogLevel:              "info",
		LogFormat:             "console",
	}
}

// LoadConfig loads configuration from a JSON file, or YAML for .yaml and .yml
// paths. Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Load reads the optional config file at path, applies environment overrides,
// fills defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	cfg.ApplyEnv(os.Getenv)
	merged := cfg.MergeWithDefaults(Defaults())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// ApplyEnv overrides fields from non-empty environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	overrides := []struct {
		key   string
		field *string
	}{
		{"DATABASE_URL", &c.DatabaseURL},
		{"REDIS_URL", &c.RedisURL},
		{"FRESHAPPLY_USER_COUNTRY", &c.UserCountry},
		{"FRESHAPPLY_USER_CITY", &c.UserCity},
		{"FRESHAPPLY_LOG_LEVEL", &c.LogLevel},
		{"FRESHAPPLY_LOG_FORMAT", &c.LogFormat},
		{"FRESHAPPLY_DIGEST_DIR", &c.DigestDir},
		{"FRESHAPPLY_SCHEDULE", &c.Schedule},
	}
	for _, o := range overrides {
		if v := strings.TrimSpace(getenv(o.key)); v != "" {
			*o.field = v
		}
	}
	if v, err := strconv.Atoi(getenv("PORT")); err == nil {
		c.Port = v
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config error: '%s' failed '%s' validation", fieldPath(fe), fe.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}

	if c.Schedule != "" {
		if _, err := cron.ParseStandard(c.Schedule); err != nil {
			return fmt.Errorf("config error: invalid schedule %q: %w", c.Schedule, err)
		}
	}

	if th := c.Thresholds; th != nil {
		if th.TodayFreshness < th.WeekFreshness || th.TodayFit < th.WeekFit {
			return fmt.Errorf("config error: 'thresholds' for today must not be below this week's")
		}
	}

	return nil
}

// fieldPath strips the struct name from a namespace like Config.boards[0].slug.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.DigestDir == "" {
		result.DigestDir = defaults.DigestDir
	}
	if result.UserCountry == "" {
		result.UserCountry = defaults.UserCountry
	}
	if result.UserCity == "" {
		result.UserCity = defaults.UserCity
	}
	if result.Schedule == "" {
		result.Schedule = defaults.Schedule
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}

	// Int fields: use default if zero
	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}
	if result.RequestTimeoutSeconds == 0 {
		result.RequestTimeoutSeconds = defaults.RequestTimeoutSeconds
	}
	if result.CacheTTLMinutes == 0 {
		result.CacheTTLMinutes = defaults.CacheTTLMinutes
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	if len(result.Boards) == 0 {
		result.Boards = defaults.Boards
	}
	if result.Thresholds == nil {
		result.Thresholds = defaults.Thresholds
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge

	return result
}

// BoardList returns the configured boards, or the built-in roster.
func (c *Config) BoardList() []ats.Board {
	if len(c.Boards) > 0 {
		return c.Boards
	}
	return ats.DefaultBoards()
}

// RequestTimeout returns the HTTP request timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// CacheTTL returns how long board responses stay cached.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

// EvaluatorOptions returns the engine options for this configuration.
func (c *Config) EvaluatorOptions() engine.Options {
	return engine.Options{
		UserCountry:       strings.ToUpper(c.UserCountry),
		UserCity:          c.UserCity,
		PreferPublishedAt: c.PreferPublishedAt,
		Thresholds:        c.Thresholds,
	}
}

// DisplayNames maps company slugs to configured display names, falling back to
// ats.DisplayName.
func (c *Config) DisplayNames() func(string) string {
	names := map[string]string{}
	for _, b := range c.BoardList() {
		if b.DisplayName != "" {
			names[b.Slug] = b.DisplayName
		}
	}
	return func(slug string) string {
		if name, ok := names[slug]; ok {
			return name
		}
		return ats.DisplayName(slug)
	}
}
