//go:build integration

package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-scraper/internal/types"
)

func getTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	db, err := Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	_, _ = db.pool.Exec(ctx, "DELETE FROM job_records WHERE apply_link LIKE 'https://test.example.com/%'")
	_, _ = db.pool.Exec(ctx, "DELETE FROM subscribers WHERE email LIKE '%@test.example.com'")
	return db
}

func testLink() string {
	return "https://test.example.com/jobs/" + uuid.New().String()
}

func TestIntegration_Jobs_CRUD(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	lat, lon := 38.9, -77.03
	rec := &types.JobRecord{
		Title:           "Policy Fellow",
		JobType:         types.JobTypeFellowship,
		Organization:    "Department of Energy",
		ApplyLink:       testLink(),
		Locations:       []string{"Washington, DC"},
		WorkFormat:      []types.WorkFormat{types.WorkFormatHybrid},
		TechnicalSkills: map[string][]string{"Data & Analytics": {"Excel"}},
		SoftSkills:      []string{"Communication"},
		Sectors:         []string{"Energy"},
		SourceDomain:    "usajobs.gov",
		PostingDate:     "2024-03-01",
		Latitude:        &lat,
		Longitude:       &lon,
	}

	t.Run("insert and find", func(t *testing.T) {
		require.NoError(t, db.InsertJob(ctx, rec))
		assert.NotEqual(t, uuid.Nil, rec.ID)

		got, err := db.FindJobByApplyLink(ctx, rec.ApplyLink)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, rec.TechnicalSkills, got.TechnicalSkills)
		assert.Equal(t, rec.WorkFormat, got.WorkFormat)
		require.NotNil(t, got.Latitude)
		assert.InDelta(t, lat, *got.Latitude, 1e-9)
	})

	t.Run("duplicate link", func(t *testing.T) {
		dup := rec.Clone()
		err := db.InsertJob(ctx, dup)
		assert.ErrorIs(t, err, types.ErrDuplicateApplyLink)
	})

	t.Run("missing link", func(t *testing.T) {
		got, err := db.FindJobByApplyLink(ctx, testLink())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("close and list", func(t *testing.T) {
		require.NoError(t, db.UpdateJobClosed(ctx, rec.ID, true))
		closed := true
		jobs, total, err := db.ListJobs(ctx, JobFilter{Closed: &closed, Search: "policy fellow", State: "dc"})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, total, 1)
		var ids []uuid.UUID
		for _, j := range jobs {
			ids = append(ids, j.ID)
		}
		assert.Contains(t, ids, rec.ID)
	})

	t.Run("purge", func(t *testing.T) {
		n, err := db.DeleteClosedJobsUpdatedBefore(ctx, time.Now().Add(time.Minute))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, int64(1))
		got, err := db.GetJob(ctx, rec.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestIntegration_Runs(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	run := types.NewScrapeRun([]string{"https://test.example.com/careers"}, time.Now())
	require.NoError(t, db.CreateRun(ctx, run))
	require.NoError(t, run.Add(4, 2, 1))
	require.NoError(t, run.Complete(time.Now()))
	require.NoError(t, db.UpdateRun(ctx, run))

	runs, err := db.ListRuns(ctx, RunFilter{Status: types.RunStatusCompleted, Limit: 100})
	require.NoError(t, err)
	var found *types.ScrapeRun
	for i := range runs {
		if runs[i].ID == run.ID {
			found = &runs[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, 4, found.JobsFound)
	assert.NotNil(t, found.CompletedAt)
}

func TestIntegration_Subscribers(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	radius := 25
	sub := &types.Subscriber{
		Email:            "reader@test.example.com",
		Active:           true,
		JobTypes:         []types.JobType{types.JobTypeInternship},
		ZipCode:          "20001",
		MaxDistanceMiles: &radius,
	}
	require.NoError(t, db.UpsertSubscriber(ctx, sub))

	subs, err := db.ListActiveSubscribers(ctx)
	require.NoError(t, err)
	var found bool
	for _, s := range subs {
		if s.Email == sub.Email {
			found = true
			assert.Equal(t, []types.JobType{types.JobTypeInternship}, s.JobTypes)
			require.NotNil(t, s.MaxDistanceMiles)
			assert.Equal(t, 25, *s.MaxDistanceMiles)
		}
	}
	assert.True(t, found)
}
