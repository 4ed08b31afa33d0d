package db

import (
	"slices"
	"strings"

	"github.com/jonathan/job-scraper/internal/types"
)

// Default and maximum page sizes for ListJobs.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// JobFilter narrows ListJobs. Zero values mean "no constraint".
type JobFilter struct {
	JobType    types.JobType
	Sector     string
	WorkFormat types.WorkFormat
	Closed     *bool
	// Search matches title case-insensitively.
	Search string
	// State matches any location containing it, case-insensitively.
	State  string
	Limit  int
	Offset int
}

// Matches reports whether rec satisfies the filter, ignoring pagination.
func (f JobFilter) Matches(rec *types.JobRecord) bool {
	if f.JobType != "" && rec.JobType != f.JobType {
		return false
	}
	if f.Sector != "" && !slices.Contains(rec.Sectors, f.Sector) {
		return false
	}
	if f.WorkFormat != "" && !slices.Contains(rec.WorkFormat, f.WorkFormat) {
		return false
	}
	if f.Closed != nil && rec.Closed != *f.Closed {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(rec.Title), strings.ToLower(f.Search)) {
		return false
	}
	if f.State != "" {
		state := strings.ToLower(f.State)
		found := false
		for _, loc := range rec.Locations {
			if strings.Contains(strings.ToLower(loc), state) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (f JobFilter) page() (limit, offset int) {
	limit = f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset = f.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// RunFilter narrows ListRuns.
type RunFilter struct {
	Status types.RunStatus
	Limit  int
}

func workFormatStrings(formats []types.WorkFormat) []string {
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = string(f)
	}
	return out
}

func workFormatsFrom(values []string) []types.WorkFormat {
	out := make([]types.WorkFormat, len(values))
	for i, v := range values {
		out[i] = types.WorkFormat(v)
	}
	return out
}

func jobTypeStrings(jts []types.JobType) []string {
	out := make([]string, len(jts))
	for i, jt := range jts {
		out[i] = string(jt)
	}
	return out
}

func jobTypesFrom(values []string) []types.JobType {
	out := make([]types.JobType, len(values))
	for i, v := range values {
		out[i] = types.JobType(v)
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
