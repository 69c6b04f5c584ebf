package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/freshapply/internal/ats"
	"github.com/jonathan/freshapply/internal/engine"
	"github.com/jonathan/freshapply/internal/scoring"
	"github.com/jonathan/freshapply/internal/store"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

const boardFixture = `{
  "jobs": [
    {
      "id": 4012345,
      "title": "Senior Product Manager, AI Platform",
      "location": {"name": "San Francisco, CA"},
      "content": "&lt;p&gt;Build LLM features for our enterprise platform.&lt;/p&gt;&lt;p&gt;$180,000 - $220,000 USD&lt;/p&gt;",
      "absolute_url": "https://boards.greenhouse.io/acme/jobs/4012345",
      "first_published": "2026-03-14T09:30:00-04:00"
    },
    {
      "id": 4012346,
      "title": "Software Engineer",
      "location": "Remote",
      "content": ""
    }
  ]
}`

type testEnv struct {
	dir       string
	dbPath    string
	digestDir string
	config    string
}

// setup points the CLI at a temp database, a temp digest directory and a
// local board server with one in-scope posting.
func setup(t *testing.T) testEnv {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /greenhouse/acme/jobs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(boardFixture))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	prevEndpoints, prevClock := endpoints, clock
	endpoints = ats.SingleHost(srv.URL)
	clock = func() time.Time { return testNow }
	t.Cleanup(func() { endpoints, clock = prevEndpoints, prevClock })

	dir := t.TempDir()
	env := testEnv{
		dir:       dir,
		dbPath:    filepath.Join(dir, "jobs.db"),
		digestDir: filepath.Join(dir, "digests"),
		config:    filepath.Join(dir, "config.json"),
	}
	cfg := `{"boards": [{"platform": "greenhouse", "slug": "acme", "display_name": "Acme Corp"}], "user_country": "US"}`
	require.NoError(t, os.WriteFile(env.config, []byte(cfg), 0o644))

	t.Setenv("DATABASE_URL", env.dbPath)
	t.Setenv("REDIS_URL", "")
	t.Setenv("FRESHAPPLY_DIGEST_DIR", env.digestDir)
	t.Setenv("FRESHAPPLY_LOG_LEVEL", "error")
	t.Setenv("FRESHAPPLY_SCHEDULE", "")
	return env
}

// resetFlags restores every flag to its default so runs do not leak state.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, ctx context.Context, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(ctx)
	return stdout.String(), err
}

func storedRecords(t *testing.T, env testEnv) []store.Record {
	t.Helper()
	st, err := store.Open(context.Background(), env.dbPath, nil)
	require.NoError(t, err)
	defer func() { _ = st.Close() }()
	records, err := st.List(context.Background())
	require.NoError(t, err)
	return records
}

func TestScrape(t *testing.T) {
	env := setup(t)

	out, err := execute(t, context.Background(), "", "scrape", "--config", env.config)
	require.NoError(t, err)

	assert.Contains(t, out, "[1/1] greenhouse:acme: 1 jobs")
	assert.Contains(t, out, "Scrape complete: 1 new · 0 updated · 0 reposts · 0 errors")
	digestPath := filepath.Join(env.digestDir, "digest-2026-03-15.md")
	assert.Contains(t, out, "Digest written to "+digestPath)

	records := storedRecords(t, env)
	require.Len(t, records, 1)
	assert.Equal(t, "gh:acme:4012345", records[0].ID)
	assert.NotContains(t, records[0].DescriptionHTML, "&lt;")

	md, err := os.ReadFile(digestPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "[Senior Product Manager, AI Platform](https://boards.greenhouse.io/acme/jobs/4012345)")
	assert.Contains(t, string(md), "**Acme Corp**")
}

func TestScrape_YAMLConfig(t *testing.T) {
	env := setup(t)
	cfgPath := filepath.Join(env.dir, "config.yaml")
	cfg := "boards:\n  - platform: greenhouse\n    slug: acme\n    display_name: Acme Corp\nuser_country: US\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	out, err := execute(t, context.Background(), "", "scrape", "--config", cfgPath, "--no-digest")
	require.NoError(t, err)

	assert.Contains(t, out, "[1/1] greenhouse:acme: 1 jobs")
	assert.Contains(t, rootCmd.PersistentFlags().Lookup("config").Usage, "YAML")
}

func TestScrape_SecondRunUpdates(t *testing.T) {
	env := setup(t)

	_, err := execute(t, context.Background(), "", "scrape", "--config", env.config, "--no-digest")
	require.NoError(t, err)
	out, err := execute(t, context.Background(), "", "scrape", "--config", env.config, "--no-digest")
	require.NoError(t, err)

	assert.Contains(t, out, "0 new · 1 updated")
	assert.NotContains(t, out, "Digest written")
	_, statErr := os.Stat(env.digestDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestScrape_BoardErrorIsCounted(t *testing.T) {
	env := setup(t)
	cfg := `{"boards": [{"platform": "greenhouse", "slug": "missing"}]}`
	require.NoError(t, os.WriteFile(env.config, []byte(cfg), 0o644))

	out, err := execute(t, context.Background(), "", "scrape", "--config", env.config, "--no-digest")
	require.NoError(t, err)

	assert.Contains(t, out, "[1/1] greenhouse:missing: error:")
	assert.Contains(t, out, "1 errors")
}

func TestDigest(t *testing.T) {
	env := setup(t)
	_, err := execute(t, context.Background(), "", "scrape", "--config", env.config, "--no-digest")
	require.NoError(t, err)

	t.Run("stdout", func(t *testing.T) {
		out, err := execute(t, context.Background(), "", "digest", "--config", env.config, "--stdout")
		require.NoError(t, err)
		assert.Contains(t, out, "Senior Product Manager, AI Platform")
		assert.Contains(t, out, "First seen: 2026-03-15")
	})

	t.Run("file", func(t *testing.T) {
		out, err := execute(t, context.Background(), "", "digest", "--config", env.config)
		require.NoError(t, err)
		assert.Contains(t, out, "digest-2026-03-15.md (1 postings)")
	})

	t.Run("html file", func(t *testing.T) {
		out, err := execute(t, context.Background(), "", "digest", "--config", env.config, "--html")
		require.NoError(t, err)
		path := filepath.Join(env.digestDir, "dashboard-2026-03-15.html")
		assert.Contains(t, out, "Dashboard written to "+path+" (1 postings)")
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(string(data), `<article class="card"`))
		assert.Contains(t, string(data), "<strong>Acme Corp</strong>")
	})

	t.Run("html stdout", func(t *testing.T) {
		out, err := execute(t, context.Background(), "", "digest", "--config", env.config, "--html", "--stdout")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
		assert.Contains(t, out, "Senior Product Manager, AI Platform")
	})

	t.Run("tier filter", func(t *testing.T) {
		out, err := execute(t, context.Background(), "", "digest", "--config", env.config, "--stdout", "--tier", "Watch List")
		require.NoError(t, err)
		assert.NotContains(t, out, "Senior Product Manager, AI Platform")
	})

	t.Run("unknown tier", func(t *testing.T) {
		_, err := execute(t, context.Background(), "", "digest", "--config", env.config, "--tier", "Someday")
		assert.ErrorContains(t, err, `unknown tier "Someday"`)
	})
}

const postingJSON = `{
  "id": "gh:acme:1",
  "company": "acme",
  "title": "Senior Product Manager, AI Platform",
  "url": "https://boards.greenhouse.io/acme/jobs/1",
  "rawHtml": "<div class=\"content\"><p>Build LLM-powered features for our enterprise AI platform.</p><p>Work with machine learning engineers on generative AI and NLP capabilities.</p><p>Lead cross-functional teams on infrastructure and automation.</p><p>The base salary range is $180,000 - $220,000.</p></div>",
  "location": "San Francisco, CA",
  "firstSeenAt": "2026-03-15T10:00:00Z",
  "lastSeenAt": "2026-03-15T11:00:00Z"
}`

func TestEvaluate_Stdin(t *testing.T) {
	env := setup(t)

	out, err := execute(t, context.Background(), postingJSON, "evaluate", "--config", env.config, "--validate")
	require.NoError(t, err)

	var ev engine.Evaluation
	require.NoError(t, json.Unmarshal([]byte(out), &ev))
	assert.Equal(t, "gh:acme:1", ev.ID)
	assert.Equal(t, 75, ev.FitScore)
	assert.Equal(t, 100, ev.FreshnessScore)
	assert.Equal(t, scoring.ApplyToday, ev.Tier)
	assert.Equal(t, "$180,000 - $220,000", ev.ExtractedSalary)
}

func TestEvaluate_ArrayToFile(t *testing.T) {
	env := setup(t)
	in := filepath.Join(env.dir, "postings.json")
	outPath := filepath.Join(env.dir, "evals.json")
	require.NoError(t, os.WriteFile(in, []byte("["+postingJSON+`,{"title": "Product Manager"}]`), 0o644))

	out, err := execute(t, context.Background(), "", "evaluate", "--config", env.config, "--in", in, "--out", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 2 evaluations to "+outPath)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var evals []engine.Evaluation
	require.NoError(t, json.Unmarshal(data, &evals))
	require.Len(t, evals, 2)
	assert.Equal(t, "gh:acme:1", evals[0].ID)
	assert.Equal(t, scoring.WatchList, evals[1].Tier)
}

func TestEvaluate_BadInput(t *testing.T) {
	env := setup(t)

	tests := []struct {
		name  string
		stdin string
		want  string
	}{
		{"empty", "  ", "no posting JSON provided"},
		{"empty array", "[]", "no postings in input"},
		{"invalid object", "{", "failed to parse posting JSON"},
		{"invalid array", "[{", "failed to parse postings JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, context.Background(), tt.stdin, "evaluate", "--config", env.config)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestAudit(t *testing.T) {
	env := setup(t)
	_, err := execute(t, context.Background(), "", "scrape", "--config", env.config, "--no-digest")
	require.NoError(t, err)

	out, err := execute(t, context.Background(), "", "audit", "--config", env.config)
	require.NoError(t, err)
	assert.Contains(t, out, "Audited 1 postings: 0 failures")
}

func TestAudit_FailsOnFuturePublishedDate(t *testing.T) {
	env := setup(t)
	st, err := store.Open(context.Background(), env.dbPath, nil)
	require.NoError(t, err)
	_, err = st.Upsert(context.Background(), ats.Job{
		ID:              "gh:acme:9",
		Platform:        ats.Greenhouse,
		Company:         "acme",
		Title:           "Product Manager",
		Description:     "Own the roadmap.",
		DescriptionHTML: "<p>Own the roadmap.</p>",
		PublishedAt:     testNow.Add(72 * time.Hour).Format(time.RFC3339),
	}, testNow)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := execute(t, context.Background(), "", "audit", "--config", env.config, "--json")
	assert.ErrorContains(t, err, "audit failed: 1 failures")

	var report struct {
		Checked  int `json:"checked"`
		Findings []struct {
			PostingID string `json:"posting_id"`
			Check     string `json:"check"`
		} `json:"findings"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 1, report.Checked)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, "gh:acme:9", report.Findings[0].PostingID)
	assert.Equal(t, "published_at", report.Findings[0].Check)
}

func TestWatch_Once(t *testing.T) {
	env := setup(t)

	out, err := execute(t, context.Background(), "", "watch", "--config", env.config, "--once")
	require.NoError(t, err)

	assert.Contains(t, out, "1 new · 0 updated")
	assert.Contains(t, out, "digest-2026-03-15.md")
	assert.Len(t, storedRecords(t, env), 1)
}

func TestWatch_InvalidSchedule(t *testing.T) {
	env := setup(t)

	_, err := execute(t, context.Background(), "", "watch", "--config", env.config, "--schedule", "every now and then")
	assert.ErrorContains(t, err, "invalid schedule")
}

func TestServe_StopsWhenContextDone(t *testing.T) {
	env := setup(t)
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	_, err := execute(t, ctx, "", "serve", "--config", env.config, "--port", "0")
	assert.NoError(t, err)
}

func TestInvalidConfig(t *testing.T) {
	env := setup(t)
	require.NoError(t, os.WriteFile(env.config, []byte(`{"concurrency": 1000}`), 0o644))

	_, err := execute(t, context.Background(), "", "digest", "--config", env.config)
	assert.ErrorContains(t, err, "concurrency")
}
