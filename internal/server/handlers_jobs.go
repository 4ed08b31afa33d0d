package server

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/job-scraper/internal/db"
	"github.com/jonathan/job-scraper/internal/geo"
	"github.com/jonathan/job-scraper/internal/stats"
	"github.com/jonathan/job-scraper/internal/types"
)

// JobView is a job record with an optional distance from the searched zip code.
type JobView struct {
	types.JobRecord
	DistanceMiles *float64 `json:"distance_miles,omitempty"`
}

// JobListResponse is the body of GET /jobs.
type JobListResponse struct {
	Jobs    []JobView `json:"jobs"`
	Total   int       `json:"total"`
	Limit   int       `json:"limit"`
	Offset  int       `json:"offset"`
	Warning string    `json:"warning,omitempty"`
}

// distanceQuery is set when both zip and max_distance are given.
type distanceQuery struct {
	zip      string
	maxMiles float64
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := parseJobFilter(q)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := parsePage(q, &filter); err != nil {
		s.writeError(w, err)
		return
	}
	dq, err := parseDistance(q)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if dq != nil {
		if s.zips == nil {
			s.writeError(w, &ErrUnavailable{Feature: "distance search"})
			return
		}
		if origin, ok := s.zips.Lookup(dq.zip); ok {
			resp, err := s.listByDistance(r.Context(), filter, origin, dq.maxMiles)
			if err != nil {
				s.writeError(w, err)
				return
			}
			s.jsonResponse(w, http.StatusOK, resp)
			return
		}
		warning := fmt.Sprintf("could not find location for zip code: %s", dq.zip)
		resp, err := s.listPage(r.Context(), filter)
		if err != nil {
			s.writeError(w, err)
			return
		}
		resp.Warning = warning
		s.jsonResponse(w, http.StatusOK, resp)
		return
	}

	resp, err := s.listPage(r.Context(), filter)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) listPage(ctx context.Context, filter db.JobFilter) (*JobListResponse, error) {
	jobs, total, err := s.store.ListJobs(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	views := make([]JobView, len(jobs))
	for i := range jobs {
		views[i] = JobView{JobRecord: jobs[i]}
	}
	return &JobListResponse{Jobs: views, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// listByDistance returns open jobs with coordinates within maxMiles of origin, nearest first.
func (s *Server) listByDistance(ctx context.Context, filter db.JobFilter, origin geo.Point, maxMiles float64) (*JobListResponse, error) {
	open := false
	filter.Closed = &open
	all, err := s.collectJobs(ctx, filter)
	if err != nil {
		return nil, err
	}

	var near []JobView
	for i := range all {
		job := &all[i]
		if !job.HasCoordinates() {
			continue
		}
		d := geo.Miles(origin, geo.Point{Lat: *job.Latitude, Lon: *job.Longitude})
		if d > maxMiles {
			continue
		}
		rounded := math.Round(d*10) / 10
		near = append(near, JobView{JobRecord: *job, DistanceMiles: &rounded})
	}
	sort.SliceStable(near, func(i, j int) bool { return *near[i].DistanceMiles < *near[j].DistanceMiles })

	resp := &JobListResponse{Jobs: []JobView{}, Total: len(near), Limit: filter.Limit, Offset: filter.Offset}
	if filter.Offset < len(near) {
		end := min(filter.Offset+filter.Limit, len(near))
		resp.Jobs = near[filter.Offset:end]
	}
	return resp, nil
}

// collectJobs pages through every job matching filter.
func (s *Server) collectJobs(ctx context.Context, filter db.JobFilter) ([]types.JobRecord, error) {
	filter.Limit = db.MaxListLimit
	filter.Offset = 0
	var out []types.JobRecord
	for {
		batch, total, err := s.store.ListJobs(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to list jobs: %w", err)
		}
		out = append(out, batch...)
		if len(batch) == 0 || len(out) >= total {
			return out, nil
		}
		filter.Offset += len(batch)
	}
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	idStr := r.PathValue("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		s.writeError(w, &ErrValidation{Field: "id", Message: "must be a UUID"})
		return
	}

	job, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		s.writeError(w, fmt.Errorf("failed to get job: %w", err))
		return
	}
	if job == nil {
		s.writeError(w, &ErrNotFound{Resource: "job", ID: idStr})
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

// handleStats summarizes jobs matching the filters. Only open jobs are counted unless
// closed is given explicitly.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := parseJobFilter(q)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if filter.Closed == nil {
		open := false
		filter.Closed = &open
	}

	jobs, err := s.collectJobs(r.Context(), filter)
	if err != nil {
		s.writeError(w, err)
		return
	}
	summary := stats.Summarize(jobs)
	if summary == nil {
		summary = &stats.Summary{
			JobTypes:           map[string]int{},
			TopSectors:         []stats.Count{},
			TopTechnicalSkills: []stats.Count{},
			TopSoftSkills:      []stats.Count{},
			WorkFormats:        map[string]int{},
		}
	}
	s.jsonResponse(w, http.StatusOK, summary)
}

func parseJobFilter(q url.Values) (db.JobFilter, error) {
	var f db.JobFilter
	if v := strings.TrimSpace(q.Get("job_type")); v != "" {
		jt := types.JobType(strings.ToLower(v))
		if !jt.Valid() {
			return f, &ErrValidation{Field: "job_type", Message: "must be internship, job or fellowship"}
		}
		f.JobType = jt
	}
	if v := strings.TrimSpace(q.Get("work_format")); v != "" {
		wf := types.WorkFormat(strings.ToLower(v))
		switch wf {
		case types.WorkFormatRemote, types.WorkFormatHybrid, types.WorkFormatOnsite:
			f.WorkFormat = wf
		default:
			return f, &ErrValidation{Field: "work_format", Message: "must be remote, hybrid or onsite"}
		}
	}
	if v := strings.TrimSpace(q.Get("closed")); v != "" {
		closed, err := strconv.ParseBool(v)
		if err != nil {
			return f, &ErrValidation{Field: "closed", Message: "must be true or false"}
		}
		f.Closed = &closed
	}
	f.Sector = strings.TrimSpace(q.Get("sector"))
	f.Search = strings.TrimSpace(q.Get("search"))
	f.State = strings.TrimSpace(q.Get("state"))
	return f, nil
}

func parsePage(q url.Values, f *db.JobFilter) error {
	f.Limit = db.DefaultListLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return &ErrValidation{Field: "limit", Message: "must be a positive integer"}
		}
		f.Limit = min(n, db.MaxListLimit)
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return &ErrValidation{Field: "offset", Message: "must be a non-negative integer"}
		}
		f.Offset = n
	}
	return nil
}

func parseDistance(q url.Values) (*distanceQuery, error) {
	zip := strings.TrimSpace(q.Get("zip"))
	raw := strings.TrimSpace(q.Get("max_distance"))
	if zip == "" || raw == "" {
		return nil, nil
	}
	miles, err := strconv.ParseFloat(raw, 64)
	if err != nil || miles <= 0 || math.IsInf(miles, 0) || math.IsNaN(miles) {
		return nil, &ErrValidation{Field: "max_distance", Message: "must be a positive number of miles"}
	}
	return &distanceQuery{zip: zip, maxMiles: miles}, nil
}
