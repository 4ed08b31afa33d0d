package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jonathan/job-scraper/internal/db"
	"github.com/jonathan/job-scraper/internal/pipeline"
	"github.com/jonathan/job-scraper/internal/types"
)

// ScrapeRequest is the body of POST /scrape.
type ScrapeRequest struct {
	URLs []string `json:"urls"`
}

// ScrapeResponse is the body of a successful POST /scrape.
type ScrapeResponse struct {
	Message string                 `json:"message"`
	Run     *types.ScrapeRun       `json:"run"`
	Stats   pipeline.SourceStats   `json:"stats"`
	Sources []pipeline.SourceStats `json:"sources"`
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	if s.scraper == nil {
		s.writeError(w, &ErrUnavailable{Feature: "on-demand scraping"})
		return
	}

	var req ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	urls := make([]string, 0, len(req.URLs))
	for _, raw := range req.URLs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			s.writeError(w, &ErrValidation{Field: "urls", Message: fmt.Sprintf("%q is not an http(s) URL", raw)})
			return
		}
		urls = append(urls, raw)
	}
	if len(urls) == 0 {
		s.errorResponse(w, http.StatusBadRequest, "No URLs provided")
		return
	}

	run, summary, err := s.scraper.RunSites(r.Context(), urls)
	if err != nil {
		var runErr *pipeline.RunError
		if errors.As(err, &runErr) {
			s.logger.Error("scrape run failed", "run_id", runErr.RunID, "error", runErr)
		}
		s.writeError(w, err)
		return
	}

	resp := ScrapeResponse{Message: "Scraping completed successfully", Run: run}
	if summary != nil {
		resp.Stats = summary.Totals()
		resp.Sources = summary.Sources
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter db.RunFilter
	if v := strings.TrimSpace(q.Get("status")); v != "" {
		status := types.RunStatus(strings.ToLower(v))
		switch status {
		case types.RunStatusRunning, types.RunStatusCompleted, types.RunStatusFailed:
			filter.Status = status
		default:
			s.writeError(w, &ErrValidation{Field: "status", Message: "must be running, completed or failed"})
			return
		}
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.writeError(w, &ErrValidation{Field: "limit", Message: "must be a positive integer"})
			return
		}
		filter.Limit = n
	}

	runs, err := s.store.ListRuns(r.Context(), filter)
	if err != nil {
		s.writeError(w, fmt.Errorf("failed to list runs: %w", err))
		return
	}
	if runs == nil {
		runs = []types.ScrapeRun{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"runs": runs})
}
