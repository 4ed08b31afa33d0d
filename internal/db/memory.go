package db

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-scraper/internal/types"
)

// MemoryStore is an in-process Store used for dry runs and tests. It is safe for concurrent use.
type MemoryStore struct {
	// Clock supplies timestamps. Defaults to time.Now.
	Clock func() time.Time

	mu          sync.Mutex
	jobs        map[uuid.UUID]*types.JobRecord
	byLink      map[string]uuid.UUID
	runs        map[uuid.UUID]*types.ScrapeRun
	subscribers map[string]*types.Subscriber
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Clock:       time.Now,
		jobs:        make(map[uuid.UUID]*types.JobRecord),
		byLink:      make(map[string]uuid.UUID),
		runs:        make(map[uuid.UUID]*types.ScrapeRun),
		subscribers: make(map[string]*types.Subscriber),
	}
}

func (m *MemoryStore) now() time.Time {
	if m.Clock == nil {
		return time.Now()
	}
	return m.Clock()
}

// FindJobByApplyLink returns a copy of the matching record, or nil.
func (m *MemoryStore) FindJobByApplyLink(_ context.Context, applyLink string) (*types.JobRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byLink[applyLink]
	if !ok {
		return nil, nil
	}
	return m.jobs[id].Clone(), nil
}

// GetJob returns a copy of the record with id, or nil.
func (m *MemoryStore) GetJob(_ context.Context, id uuid.UUID) (*types.JobRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.jobs[id].Clone(), nil
}

// InsertJob stores a copy of rec and fills its ID and timestamps.
func (m *MemoryStore) InsertJob(_ context.Context, rec *types.JobRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byLink[rec.ApplyLink]; ok {
		return types.ErrDuplicateApplyLink
	}
	now := m.now()
	rec.ID = uuid.New()
	rec.FirstSeenAt = now
	rec.LastUpdatedAt = now
	m.jobs[rec.ID] = rec.Clone()
	m.byLink[rec.ApplyLink] = rec.ID
	return nil
}

// UpdateJobClosed sets the closed flag and bumps LastUpdatedAt.
func (m *MemoryStore) UpdateJobClosed(_ context.Context, id uuid.UUID, closed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.jobs[id]
	if !ok {
		return fmt.Errorf("job %s not found", id)
	}
	rec.Closed = closed
	rec.LastUpdatedAt = m.now()
	return nil
}

// CloseJobsFirstSeenBefore closes open records first seen before cutoff.
func (m *MemoryStore) CloseJobsFirstSeenBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	var n int64
	for _, rec := range m.jobs {
		if !rec.Closed && rec.FirstSeenAt.Before(cutoff) {
			rec.Closed = true
			rec.LastUpdatedAt = now
			n++
		}
	}
	return n, nil
}

// DeleteClosedJobsUpdatedBefore removes closed records not touched since cutoff.
func (m *MemoryStore) DeleteClosedJobsUpdatedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, rec := range m.jobs {
		if rec.Closed && rec.LastUpdatedAt.Before(cutoff) {
			delete(m.jobs, id)
			delete(m.byLink, rec.ApplyLink)
			n++
		}
	}
	return n, nil
}

// ListJobs mirrors DB.ListJobs.
func (m *MemoryStore) ListJobs(_ context.Context, filter JobFilter) ([]types.JobRecord, int, error) {
	m.mu.Lock()
	matched := make([]*types.JobRecord, 0, len(m.jobs))
	for _, rec := range m.jobs {
		if filter.Matches(rec) {
			matched = append(matched, rec.Clone())
		}
	}
	m.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].FirstSeenAt.Equal(matched[j].FirstSeenAt) {
			return matched[i].FirstSeenAt.After(matched[j].FirstSeenAt)
		}
		return matched[i].ID.String() < matched[j].ID.String()
	})

	total := len(matched)
	limit, offset := filter.page()
	if offset >= total {
		return []types.JobRecord{}, total, nil
	}
	end := min(offset+limit, total)
	out := make([]types.JobRecord, 0, end-offset)
	for _, rec := range matched[offset:end] {
		out = append(out, *rec)
	}
	return out, total, nil
}

// CreateRun stores a copy of run.
func (m *MemoryStore) CreateRun(_ context.Context, run *types.ScrapeRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[run.ID]; ok {
		return fmt.Errorf("run %s already exists", run.ID)
	}
	cp := *run
	m.runs[run.ID] = &cp
	return nil
}

// UpdateRun replaces the stored copy of run.
func (m *MemoryStore) UpdateRun(_ context.Context, run *types.ScrapeRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[run.ID]; !ok {
		return fmt.Errorf("run %s not found", run.ID)
	}
	cp := *run
	m.runs[run.ID] = &cp
	return nil
}

// ListRuns returns runs, most recent first.
func (m *MemoryStore) ListRuns(_ context.Context, filter RunFilter) ([]types.ScrapeRun, error) {
	m.mu.Lock()
	runs := make([]types.ScrapeRun, 0, len(m.runs))
	for _, r := range m.runs {
		if filter.Status == "" || r.Status == filter.Status {
			runs = append(runs, *r)
		}
	}
	m.mu.Unlock()

	sort.Slice(runs, func(i, j int) bool { return runs[i].StartedAt.After(runs[j].StartedAt) })
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// ListActiveSubscribers returns active subscribers in subscription order.
func (m *MemoryStore) ListActiveSubscribers(_ context.Context) ([]types.Subscriber, error) {
	m.mu.Lock()
	subs := make([]types.Subscriber, 0, len(m.subscribers))
	for _, s := range m.subscribers {
		if s.Active {
			subs = append(subs, *s)
		}
	}
	m.mu.Unlock()
	sort.Slice(subs, func(i, j int) bool { return subs[i].SubscribedAt.Before(subs[j].SubscribedAt) })
	return subs, nil
}

// UpsertSubscriber creates or replaces the subscriber with the same email.
func (m *MemoryStore) UpsertSubscriber(_ context.Context, sub *types.Subscriber) error {
	if err := sub.Validate(); err != nil {
		return err
	}
	sub.Email = strings.ToLower(strings.TrimSpace(sub.Email))
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.subscribers[sub.Email]; ok {
		sub.ID = existing.ID
		sub.SubscribedAt = existing.SubscribedAt
	} else {
		sub.ID = uuid.New()
		sub.SubscribedAt = m.now()
	}
	cp := *sub
	m.subscribers[sub.Email] = &cp
	return nil
}
