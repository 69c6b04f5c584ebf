package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/freshapply/internal/ats"
	"github.com/jonathan/freshapply/internal/scoring"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	path := writeConfig(t, `{
		"database_url": "postgres://localhost/jobs",
		"user_country": "US",
		"user_city": "San Francisco",
		"concurrency": 4,
		"prefer_published_at": true,
		"boards": [{"platform": "lever", "slug": "mistral", "display_name": "Mistral AI"}]
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "postgres://localhost/jobs", cfg.DatabaseURL)
	assert.Equal(t, "US", cfg.UserCountry)
	assert.Equal(t, "San Francisco", cfg.UserCity)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.True(t, cfg.PreferPublishedAt)
	assert.Equal(t, []ats.Board{{Platform: ats.Lever, Slug: "mistral", DisplayName: "Mistral AI"}}, cfg.Boards)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `{ invalid json }`))
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `database_url: jobs.db
user_country: GB
concurrency: 2
thresholds:
  today_freshness: 80
  today_fit: 50
  week_freshness: 40
  week_fit: 20
boards:
  - platform: ashby
    slug: openai
    display_name: OpenAI
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "jobs.db", cfg.DatabaseURL)
	assert.Equal(t, "GB", cfg.UserCountry)
	assert.Equal(t, 2, cfg.Concurrency)
	require.NotNil(t, cfg.Thresholds)
	assert.Equal(t, scoring.Thresholds{TodayFreshness: 80, TodayFit: 50, WeekFreshness: 40, WeekFit: 20}, *cfg.Thresholds)
	assert.Equal(t, []ats.Board{{Platform: ats.Ashby, Slug: "openai", DisplayName: "OpenAI"}}, cfg.Boards)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("boards: [unclosed"), 0644))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "failed to parse config YAML")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("FRESHAPPLY_LOG_LEVEL", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "freshapply.db", cfg.DatabaseURL)
	assert.Equal(t, "digests", cfg.DigestDir)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout())
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL())
	assert.Equal(t, "@every 6h", cfg.Schedule)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ats.DefaultBoards(), cfg.BoardList())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `{"database_url": "file.db", "log_level": "warn"}`)
	t.Setenv("DATABASE_URL", "env.db")
	t.Setenv("FRESHAPPLY_LOG_LEVEL", "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env.db", cfg.DatabaseURL)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_InvalidFails(t *testing.T) {
	path := writeConfig(t, `{"concurrency": 500}`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config error: 'concurrency'")
}

func TestApplyEnv(t *testing.T) {
	cfg := Config{UserCountry: "US", Port: 9000}

	cfg.ApplyEnv(env(map[string]string{
		"REDIS_URL":               "redis://localhost:6379/0",
		"FRESHAPPLY_USER_COUNTRY": " uk ",
		"FRESHAPPLY_USER_CITY":    "London",
		"FRESHAPPLY_LOG_FORMAT":   "json",
		"FRESHAPPLY_DIGEST_DIR":   "/tmp/digests",
		"PORT":                    "not-a-number",
	}))

	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, "uk", cfg.UserCountry)
	assert.Equal(t, "London", cfg.UserCity)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "/tmp/digests", cfg.DigestDir)
	assert.Equal(t, 9000, cfg.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"defaults", Defaults(), ""},
		{"country code", Config{UserCountry: "USA"}, "'user_country' failed 'len'"},
		{"numeric country", Config{UserCountry: "12"}, "'user_country' failed 'alpha'"},
		{"negative concurrency", Config{Concurrency: -1}, "'concurrency' failed 'min'"},
		{"log level", Config{LogLevel: "trace"}, "'log_level' failed 'oneof'"},
		{"log format", Config{LogFormat: "xml"}, "'log_format' failed 'oneof'"},
		{"redis url", Config{RedisURL: "not a url"}, "'redis_url' failed 'url'"},
		{"board platform", Config{Boards: []ats.Board{{Platform: "monster", Slug: "x"}}}, "'boards[0].platform' failed 'oneof'"},
		{"board slug", Config{Boards: []ats.Board{{Platform: ats.Ashby}}}, "'boards[0].slug' failed 'required'"},
		{"schedule", Config{Schedule: "every tuesday"}, "invalid schedule"},
		{"cron schedule", Config{Schedule: "0 */6 * * *"}, ""},
		{
			"inverted thresholds",
			Config{Thresholds: &scoring.Thresholds{TodayFreshness: 40, TodayFit: 40, WeekFreshness: 50, WeekFit: 25}},
			"'thresholds'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config error:")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := &Config{DatabaseURL: "custom.db", Concurrency: 2}

	result := cfg.MergeWithDefaults(Defaults())

	assert.Equal(t, "custom.db", result.DatabaseURL)
	assert.Equal(t, 2, result.Concurrency)
	assert.Equal(t, "digests", result.DigestDir)
	assert.Equal(t, 30, result.RequestTimeoutSeconds)
	assert.Equal(t, 8080, result.Port)
	assert.Equal(t, "custom.db", cfg.DatabaseURL, "receiver is not modified")
	assert.Equal(t, 0, cfg.Port)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := &Config{LogLevel: "debug"}

	result := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, "debug", result.LogLevel)
	assert.Empty(t, result.DatabaseURL)
	assert.Zero(t, result.Concurrency)
}

func TestEvaluatorOptions(t *testing.T) {
	th := scoring.DefaultThresholds()
	cfg := Config{UserCountry: "gb", UserCity: "London", PreferPublishedAt: true, Thresholds: &th}

	opts := cfg.EvaluatorOptions()

	assert.Equal(t, "GB", opts.UserCountry)
	assert.Equal(t, "London", opts.UserCity)
	assert.True(t, opts.PreferPublishedAt)
	assert.Equal(t, &th, opts.Thresholds)
}

func TestDisplayNames(t *testing.T) {
	cfg := Config{Boards: []ats.Board{
		{Platform: ats.Lever, Slug: "mistral", DisplayName: "Mistral AI"},
		{Platform: ats.Greenhouse, Slug: "open-door"},
	}}

	names := cfg.DisplayNames()

	assert.Equal(t, "Mistral AI", names("mistral"))
	assert.Equal(t, "Open Door", names("open-door"))
	assert.Equal(t, "OpenAI", names("openai"))
}
