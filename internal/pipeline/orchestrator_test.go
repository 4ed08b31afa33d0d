package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-scraper/internal/db"
	"github.com/jonathan/job-scraper/internal/fetch"
	"github.com/jonathan/job-scraper/internal/types"
	"github.com/jonathan/job-scraper/internal/upsert"
	"github.com/jonathan/job-scraper/internal/usajobs"
)

const listingPage = `<html><body>
<div class="job-card"><a href="/jobs/1">Software Engineering Intern</a><span>Austin, TX</span></div>
<div class="job-card"><a href="/jobs/2">Data Analyst</a><span>Denver, CO</span></div>
<div class="job-card"><a href="/jobs/3">Policy Fellow</a><span>Remote</span></div>
</body></html>`

func newSiteServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/careers", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, listingPage)
	})
	mux.HandleFunc("/jobs/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, `<html><body><div class="job-description">Remote role using Python and SQL. Strong communication required.</div></body></html>`)
	})
	mux.HandleFunc("/many", func(w http.ResponseWriter, _ *http.Request) {
		var sb strings.Builder
		sb.WriteString("<html><body>")
		for i := 0; i < 12; i++ {
			fmt.Fprintf(&sb, `<li class="job-item"><a href="/jobs/m%d">Engineer %d</a></li>`, i, i)
		}
		sb.WriteString("</body></html>")
		_, _ = fmt.Fprint(w, sb.String())
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

type sleepRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (s *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.waits = append(s.waits, d)
	s.mu.Unlock()
	return ctx.Err()
}

func newSiteOrchestrator(t *testing.T, store Store, sleeper *sleepRecorder) *Orchestrator {
	t.Helper()
	client := fetch.NewClient(fetch.ClientConfig{PageTimeout: 5 * time.Second})
	o, err := New(Deps{Store: store, Pages: client, Describer: client}, Config{
		Pacing: Pacing{SourceDelay: 2 * time.Second, BatchSize: 10, BatchDelay: time.Second},
		Sleep:  sleeper.Sleep,
	})
	require.NoError(t, err)
	return o
}

func TestRunSites_Idempotent(t *testing.T) {
	server := newSiteServer(t)
	store := db.NewMemoryStore()
	o := newSiteOrchestrator(t, store, &sleepRecorder{})
	ctx := context.Background()
	urls := []string{server.URL + "/careers"}

	run, summary, err := o.RunSites(ctx, urls)
	require.NoError(t, err)
	assert.Equal(t, types.RunStatusCompleted, run.Status)
	assert.Equal(t, 3, run.JobsFound)
	assert.Equal(t, 3, run.JobsAdded)
	assert.Equal(t, 0, run.JobsUpdated)
	require.Len(t, summary.Sources, 1)
	assert.Equal(t, 3, summary.Sources[0].Candidates)

	rec, err := store.FindJobByApplyLink(ctx, server.URL+"/jobs/1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, types.JobTypeInternship, rec.JobType)
	assert.Equal(t, []string{"Austin, TX"}, rec.Locations)
	assert.Contains(t, rec.WorkFormat, types.WorkFormatRemote)
	assert.Contains(t, rec.SoftSkills, "Communication")

	again, summary, err := o.RunSites(ctx, urls)
	require.NoError(t, err)
	assert.Equal(t, 3, again.JobsFound)
	assert.Equal(t, 0, again.JobsAdded)
	assert.Equal(t, 3, summary.Totals().Unchanged)

	_, total, err := store.ListJobs(ctx, db.JobFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	runs, err := store.ListRuns(ctx, db.RunFilter{})
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestRunSites_FetchFailureContinues(t *testing.T) {
	server := newSiteServer(t)
	store := db.NewMemoryStore()
	sleeper := &sleepRecorder{}
	o := newSiteOrchestrator(t, store, sleeper)

	run, summary, err := o.RunSites(context.Background(), []string{server.URL + "/missing", server.URL + "/careers"})
	require.NoError(t, err)
	assert.Equal(t, types.RunStatusCompleted, run.Status)
	assert.Equal(t, 3, run.JobsAdded)
	assert.Equal(t, []string{server.URL + "/missing", server.URL + "/careers"}, run.Targets)

	failed := summary.Failed()
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].Error, "404")
	assert.Equal(t, []time.Duration{2 * time.Second}, sleeper.waits)
}

func TestRunSites_BatchPacing(t *testing.T) {
	server := newSiteServer(t)
	sleeper := &sleepRecorder{}
	o := newSiteOrchestrator(t, db.NewMemoryStore(), sleeper)

	run, _, err := o.RunSites(context.Background(), []string{server.URL + "/many"})
	require.NoError(t, err)
	assert.Equal(t, 12, run.JobsAdded)
	assert.Equal(t, []time.Duration{time.Second}, sleeper.waits)
}

type brokenStore struct {
	*db.MemoryStore
}

func (s *brokenStore) InsertJob(context.Context, *types.JobRecord) error {
	return errors.New("disk full")
}

func TestRunSites_StoreFailureFailsRun(t *testing.T) {
	server := newSiteServer(t)
	mem := db.NewMemoryStore()
	o := newSiteOrchestrator(t, &brokenStore{MemoryStore: mem}, &sleepRecorder{})

	run, _, err := o.RunSites(context.Background(), []string{server.URL + "/careers"})
	var runErr *RunError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, run.ID, runErr.RunID)
	assert.Equal(t, types.RunStatusFailed, run.Status)
	assert.Contains(t, run.ErrorMessage, "disk full")
	assert.NotNil(t, run.CompletedAt)

	stored, err := mem.ListRuns(context.Background(), db.RunFilter{Status: types.RunStatusFailed})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Contains(t, stored[0].ErrorMessage, "disk full")
}

func TestRunSites_CancelledContextStillRecordsRun(t *testing.T) {
	server := newSiteServer(t)
	mem := db.NewMemoryStore()
	o := newSiteOrchestrator(t, mem, &sleepRecorder{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := o.RunSites(ctx, []string{server.URL + "/careers"})
	require.ErrorIs(t, err, context.Canceled)

	stored, err := mem.ListRuns(context.Background(), db.RunFilter{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, types.RunStatusFailed, stored[0].Status)
}

type fakeSearcher struct {
	pages map[int]*usajobs.Page
	calls []string
}

func (f *fakeSearcher) Search(_ context.Context, keyword string, page int) (*usajobs.Page, error) {
	f.calls = append(f.calls, fmt.Sprintf("%s#%d", keyword, page))
	if p, ok := f.pages[page]; ok {
		return p, nil
	}
	return &usajobs.Page{Number: page}, nil
}

func (f *fakeSearcher) MaxPages() int { return 3 }

func apiItem(title, uri, summary string) usajobs.Item {
	var item usajobs.Item
	item.MatchedObjectDescriptor.PositionTitle = title
	item.MatchedObjectDescriptor.PositionURI = uri
	item.MatchedObjectDescriptor.OrganizationName = "Department of Energy"
	item.MatchedObjectDescriptor.PositionLocationDisplay = usajobs.TextList{"Washington, DC"}
	item.MatchedObjectDescriptor.UserArea.Details.JobSummary = usajobs.TextList{summary}
	return item
}

func TestRunKeywords(t *testing.T) {
	searcher := &fakeSearcher{pages: map[int]*usajobs.Page{
		1: {Number: 1, Count: 3, Total: 4, Items: []usajobs.Item{
			apiItem("Student Trainee (Intern)", "https://www.usajobs.gov/job/1", "Summer internship program."),
			apiItem("Energy Policy Fellow", "https://www.usajobs.gov/job/2", "This is a fellowship program."),
		}, Invalid: []error{&usajobs.ParseError{Index: 2, Message: "item does not match schema"}}},
		2: {Number: 2, Count: 1, Total: 4, Items: []usajobs.Item{
			apiItem("", "https://www.usajobs.gov/job/3", "missing title"),
		}},
	}}
	sleeper := &sleepRecorder{}
	store := db.NewMemoryStore()
	o, err := New(Deps{Store: store, Search: searcher}, Config{
		Pacing:    Pacing{PageDelay: 2 * time.Second, KeywordDelay: 3 * time.Second},
		APIPolicy: upsert.SkipOnExisting,
		Sleep:     sleeper.Sleep,
	})
	require.NoError(t, err)
	ctx := context.Background()

	run, summary, err := o.RunKeywords(ctx, []string{"intern", "fellow"})
	require.NoError(t, err)
	assert.Equal(t, []string{"USAJobs: intern", "USAJobs: fellow"}, run.Targets)
	assert.Equal(t, []string{"intern#1", "intern#2", "fellow#1", "fellow#2"}, searcher.calls)

	require.Len(t, summary.Sources, 2)
	first := summary.Sources[0]
	assert.Equal(t, 4, first.Candidates)
	assert.Equal(t, 2, first.Found)
	assert.Equal(t, 2, first.Created)
	assert.Equal(t, 2, first.Rejected)
	second := summary.Sources[1]
	assert.Equal(t, 2, second.Skipped)
	assert.Equal(t, 2, run.JobsAdded)
	assert.Equal(t, 4, run.JobsFound)

	assert.Equal(t, []time.Duration{2 * time.Second, 3 * time.Second, 2 * time.Second}, sleeper.waits)

	intern, err := store.FindJobByApplyLink(ctx, "https://www.usajobs.gov/job/1")
	require.NoError(t, err)
	require.NotNil(t, intern)
	assert.Equal(t, types.JobTypeInternship, intern.JobType)
	assert.Equal(t, "usajobs.gov", intern.SourceDomain)

	fellow, err := store.FindJobByApplyLink(ctx, "https://www.usajobs.gov/job/2")
	require.NoError(t, err)
	assert.Equal(t, types.JobTypeFellowship, fellow.JobType)
}

func TestRunKeywords_RequiresSearcher(t *testing.T) {
	o, err := New(Deps{Store: db.NewMemoryStore()}, Config{})
	require.NoError(t, err)
	_, _, err = o.RunKeywords(context.Background(), []string{"intern"})
	assert.Error(t, err)
}

func TestNew_RequiresStore(t *testing.T) {
	_, err := New(Deps{}, Config{})
	assert.Error(t, err)
}

func TestCreatedHookReceivesNewRecords(t *testing.T) {
	server := newSiteServer(t)
	var created []string
	client := fetch.NewClient(fetch.ClientConfig{})
	o, err := New(Deps{
		Store: db.NewMemoryStore(),
		Pages: client,
		OnCreated: func(_ context.Context, rec *types.JobRecord) error {
			created = append(created, rec.Title)
			return nil
		},
	}, Config{Sleep: (&sleepRecorder{}).Sleep})
	require.NoError(t, err)

	_, _, err = o.RunSites(context.Background(), []string{server.URL + "/careers"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Software Engineering Intern", "Data Analyst", "Policy Fellow"}, created)
}
