package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jonathan/job-scraper/internal/types"
)

// SubscribeRequest is the body of POST /subscribers.
type SubscribeRequest struct {
	Email            string   `json:"email"`
	JobTypes         []string `json:"job_types"`
	Sectors          []string `json:"sectors"`
	ZipCode          string   `json:"zip_code"`
	MaxDistanceMiles *int     `json:"max_distance_miles"`
}

// handleSubscribe creates or replaces the subscription for an email address and reactivates it.
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	sub := &types.Subscriber{
		Email:            strings.TrimSpace(req.Email),
		Active:           true,
		Sectors:          types.UniqueStrings(req.Sectors),
		ZipCode:          strings.TrimSpace(req.ZipCode),
		MaxDistanceMiles: req.MaxDistanceMiles,
	}
	for _, jt := range req.JobTypes {
		sub.JobTypes = append(sub.JobTypes, types.JobType(strings.ToLower(strings.TrimSpace(jt))))
	}
	if err := sub.Validate(); err != nil {
		s.writeError(w, fromValidator(err))
		return
	}

	if err := s.store.UpsertSubscriber(r.Context(), sub); err != nil {
		s.writeError(w, fmt.Errorf("failed to save subscriber: %w", err))
		return
	}
	s.jsonResponse(w, http.StatusOK, sub)
}
