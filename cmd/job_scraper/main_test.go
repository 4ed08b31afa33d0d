package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-scraper/internal/config"
	"github.com/jonathan/job-scraper/internal/db"
	"github.com/jonathan/job-scraper/internal/pipeline"
	"github.com/jonathan/job-scraper/internal/scheduler"
	"github.com/jonathan/job-scraper/internal/types"
)

func envLookup(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func newCareerSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/careers", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, `<html><body>
<div class="job-card"><a href="/jobs/1">Software Engineering Intern</a><span>Austin, TX</span></div>
<div class="job-card"><a href="/jobs/2">Data Analyst</a><span>Denver, CO</span></div>
<div class="job-card"><a href="/jobs/3">Policy Fellow</a><span>Remote</span></div>
</body></html>`)
	})
	mux.HandleFunc("/jobs/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, `<html><body><div class="job-description">Remote role using Python and SQL. Strong communication required.</div></body></html>`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestResolveConfig(t *testing.T) {
	t.Run("defaults with env", func(t *testing.T) {
		cfg, err := resolveConfig("", envLookup(map[string]string{
			config.EnvDatabaseURL:      "postgres://localhost/jobs",
			config.EnvUSAJobsAPIKey:    "key",
			config.EnvUSAJobsUserEmail: "ops@example.com",
			config.EnvPort:             "9090",
		}))
		require.NoError(t, err)
		assert.Equal(t, "postgres://localhost/jobs", cfg.DatabaseURL)
		assert.Equal(t, 9090, cfg.Server.Port)
		assert.NoError(t, cfg.ValidateFederal())
	})

	t.Run("yaml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("sources:\n  - https://careers.example.com\nretention:\n  close_after_days: 30\n"), 0o600))
		cfg, err := resolveConfig(path, envLookup(nil))
		require.NoError(t, err)
		assert.Equal(t, []string{"https://careers.example.com"}, cfg.Sources)
		assert.Equal(t, 30*24*time.Hour, cfg.CloseAfter())
		assert.Equal(t, 90*24*time.Hour, cfg.DeleteAfter())
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"retention":{"close_after_days":-1}}`), 0o600))
		_, err := resolveConfig(path, envLookup(nil))
		assert.ErrorContains(t, err, "close_after_days")
	})

	t.Run("bad port env", func(t *testing.T) {
		_, err := resolveConfig("", envLookup(map[string]string{config.EnvPort: "http"}))
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := resolveConfig(filepath.Join(t.TempDir(), "nope.json"), envLookup(nil))
		assert.ErrorContains(t, err, "failed to load config")
	})
}

func TestBuildComponents(t *testing.T) {
	ctx := context.Background()
	logger := newLogger(&bytes.Buffer{}, false)

	t.Run("site only", func(t *testing.T) {
		cfg := config.Default()
		comp, err := buildComponents(ctx, &cfg, db.NewMemoryStore(), logger, buildOptions{})
		require.NoError(t, err)
		defer comp.Close()
		assert.NotNil(t, comp.Orchestrator)
		assert.NotNil(t, comp.Cleaner)
		assert.Nil(t, comp.Zips)

		_, _, err = comp.Orchestrator.RunKeywords(ctx, []string{"intern"})
		assert.Error(t, err, "keyword runs need a searcher")
	})

	t.Run("federal without credentials", func(t *testing.T) {
		cfg := config.Default()
		_, err := buildComponents(ctx, &cfg, db.NewMemoryStore(), logger, buildOptions{Federal: true})
		assert.ErrorContains(t, err, config.EnvUSAJobsAPIKey)
	})

	t.Run("federal with credentials", func(t *testing.T) {
		cfg := config.Default()
		cfg.USAJobs.APIKey = "key"
		cfg.USAJobs.UserEmail = "ops@example.com"
		comp, err := buildComponents(ctx, &cfg, db.NewMemoryStore(), logger, buildOptions{Federal: true})
		require.NoError(t, err)
		comp.Close()
	})

	t.Run("notifications with zip table", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "zips.tsv")
		require.NoError(t, os.WriteFile(path, []byte("US\t20001\tWashington\tDistrict of Columbia\tDC\t\t\t\t\t38.9109\t-77.0163\t4\n"), 0o600))
		cfg := config.Default()
		cfg.Notify.Enabled = true
		cfg.Notify.ZipFile = path
		comp, err := buildComponents(ctx, &cfg, db.NewMemoryStore(), logger, buildOptions{Notify: true})
		require.NoError(t, err)
		defer comp.Close()
		require.NotNil(t, comp.Zips)
		assert.Equal(t, 1, comp.Zips.Len())
	})

	t.Run("missing zip file", func(t *testing.T) {
		cfg := config.Default()
		cfg.Notify.ZipFile = filepath.Join(t.TempDir(), "missing.tsv")
		_, err := buildComponents(ctx, &cfg, db.NewMemoryStore(), logger, buildOptions{})
		assert.ErrorContains(t, err, "zip codes")
	})

	t.Run("unreachable redis falls back", func(t *testing.T) {
		cfg := config.Default()
		cfg.RedisURL = "redis://127.0.0.1:1/0"
		comp, err := buildComponents(ctx, &cfg, db.NewMemoryStore(), logger, buildOptions{})
		require.NoError(t, err)
		comp.Close()
	})
}

func TestRegisterTasks(t *testing.T) {
	ctx := context.Background()
	site := newCareerSite(t)
	logger := newLogger(&bytes.Buffer{}, false)

	cfg := config.Default()
	cfg.Sources = []string{site.URL + "/careers"}
	store := db.NewMemoryStore()
	comp, err := buildComponents(ctx, &cfg, store, logger, buildOptions{})
	require.NoError(t, err)
	defer comp.Close()

	sched := scheduler.New(logger)
	require.NoError(t, registerTasks(sched, &cfg, &serialRunner{orch: comp.Orchestrator}, comp.Cleaner, false, logger))

	assert.True(t, sched.Scheduled(taskSites))
	assert.True(t, sched.Scheduled(taskPurge))
	assert.False(t, sched.Scheduled(taskFederal), "federal task is unscheduled without credentials")

	require.NoError(t, sched.RunNow(ctx, taskSites))
	jobs, total, err := store.ListJobs(ctx, db.JobFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, jobs, 3)

	runs, err := store.ListRuns(ctx, db.RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, types.RunStatusCompleted, runs[0].Status)

	assert.Error(t, sched.RunNow(ctx, taskFederal))
}

func TestPurgeTask(t *testing.T) {
	ctx := context.Background()
	logger := newLogger(&bytes.Buffer{}, false)
	cfg := config.Default()

	store := db.NewMemoryStore()
	old := time.Now().Add(-100 * 24 * time.Hour)
	store.Clock = func() time.Time { return old }
	rec := &types.JobRecord{
		Title:        "Budget Analyst",
		JobType:      types.JobTypeJob,
		Organization: "Agency",
		ApplyLink:    "https://agency.example.com/jobs/1",
		Locations:    []string{"Washington, DC"},
		WorkFormat:   []types.WorkFormat{types.WorkFormatOnsite},
		Sectors:      []string{"Government"},
	}
	require.NoError(t, store.InsertJob(ctx, rec))
	require.NoError(t, store.UpdateJobClosed(ctx, rec.ID, true))

	comp, err := buildComponents(ctx, &cfg, store, logger, buildOptions{})
	require.NoError(t, err)
	defer comp.Close()

	sched := scheduler.New(logger)
	require.NoError(t, registerTasks(sched, &cfg, &serialRunner{orch: comp.Orchestrator}, comp.Cleaner, false, logger))
	require.NoError(t, sched.RunNow(ctx, taskPurge))

	got, err := store.GetJob(ctx, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPrintRun(t *testing.T) {
	run := types.NewScrapeRun([]string{"a", "b"}, time.Now())
	require.NoError(t, run.Add(5, 3, 1))
	require.NoError(t, run.Complete(time.Now()))
	summary := &pipeline.Summary{Sources: []pipeline.SourceStats{
		{Source: "a", Found: 5, Created: 3, Updated: 1},
		{Source: "b", Error: "status 503"},
	}}

	var buf bytes.Buffer
	printRun(&buf, false, run, summary)
	assert.Contains(t, buf.String(), "Found: 5, Created: 3, Updated: 1")
	assert.Contains(t, buf.String(), "b: status 503")

	buf.Reset()
	printRun(&buf, true, run, summary)
	assert.Contains(t, buf.String(), "SCRAPE RUN")
}

func TestScrapeCommand_DryRun(t *testing.T) {
	site := newCareerSite(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"scrape", "--dry-run", "--urls", site.URL + "/careers"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		scrapeURLs, scrapeDryRun = nil, false
	})

	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	output := out.String()
	assert.Contains(t, output, "Found: 3, Created: 3, Updated: 0")
	assert.Contains(t, output, "NORMALIZED RECORDS")
	assert.True(t, strings.Contains(output, "Data Analyst"))
}
