// Package types provides type definitions for the records that flow through the job ingestion pipeline.
package types

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// JobType classifies a posting as an internship, a regular job, or a fellowship.
type JobType string

// JobType constants
const (
	JobTypeInternship JobType = "internship"
	JobTypeJob        JobType = "job"
	JobTypeFellowship JobType = "fellowship"
)

// JobTypes lists every JobType in priority order.
var JobTypes = []JobType{JobTypeInternship, JobTypeJob, JobTypeFellowship}

// Label returns the display form used in notification subjects.
func (t JobType) Label() string {
	switch t {
	case JobTypeInternship:
		return "Internship"
	case JobTypeFellowship:
		return "Fellowship"
	default:
		return "Job"
	}
}

// Valid reports whether t is one of the known job types.
func (t JobType) Valid() bool {
	for _, jt := range JobTypes {
		if t == jt {
			return true
		}
	}
	return false
}

// WorkFormat describes where the work happens.
type WorkFormat string

// WorkFormat constants
const (
	WorkFormatRemote WorkFormat = "remote"
	WorkFormatHybrid WorkFormat = "hybrid"
	WorkFormatOnsite WorkFormat = "onsite"
)

// DefaultLocation is used when no location could be extracted from a posting.
const DefaultLocation = "Location Not Specified"

// JobRecord is the canonical normalized posting. ApplyLink is its natural key.
type JobRecord struct {
	ID              uuid.UUID           `json:"id"`
	Title           string              `json:"title" validate:"required,max=500"`
	JobType         JobType             `json:"job_type" validate:"required,oneof=internship job fellowship"`
	Organization    string              `json:"organization" validate:"required,max=500"`
	ApplyLink       string              `json:"apply_link" validate:"required,url,max=500"`
	Locations       []string            `json:"locations" validate:"required,min=1,dive,required,max=200"`
	WorkFormat      []WorkFormat        `json:"work_format" validate:"required,min=1,dive,oneof=remote hybrid onsite"`
	TechnicalSkills map[string][]string `json:"technical_skills"`
	SoftSkills      []string            `json:"soft_skills"`
	Sectors         []string            `json:"sectors" validate:"required,min=1,dive,required,max=100"`
	SourceDomain    string              `json:"source_domain" validate:"max=200"`
	PostingDate     string              `json:"posting_date,omitempty" validate:"max=100"`
	Latitude        *float64            `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude       *float64            `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	Closed          bool                `json:"closed"`
	FirstSeenAt     time.Time           `json:"first_seen_at"`
	LastUpdatedAt   time.Time           `json:"last_updated_at"`
}

// Validate validates the JobRecord using the validator.
func (r *JobRecord) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// HasCoordinates reports whether both latitude and longitude are known.
func (r *JobRecord) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// SkillCount returns the number of technical skills across all categories plus soft skills.
func (r *JobRecord) SkillCount() int {
	n := len(r.SoftSkills)
	for _, skills := range r.TechnicalSkills {
		n += len(skills)
	}
	return n
}

// Clone returns a deep copy of the record.
func (r *JobRecord) Clone() *JobRecord {
	if r == nil {
		return nil
	}
	out := *r
	out.Locations = append([]string(nil), r.Locations...)
	out.WorkFormat = append([]WorkFormat(nil), r.WorkFormat...)
	out.SoftSkills = append([]string(nil), r.SoftSkills...)
	out.Sectors = append([]string(nil), r.Sectors...)
	if r.TechnicalSkills != nil {
		out.TechnicalSkills = make(map[string][]string, len(r.TechnicalSkills))
		for k, v := range r.TechnicalSkills {
			out.TechnicalSkills[k] = append([]string(nil), v...)
		}
	}
	if r.Latitude != nil {
		lat := *r.Latitude
		out.Latitude = &lat
	}
	if r.Longitude != nil {
		lon := *r.Longitude
		out.Longitude = &lon
	}
	return &out
}

// UniqueStrings returns values with duplicates and empty strings removed, keeping first-seen order.
func UniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// ErrDuplicateApplyLink is returned by stores when an insert collides with an existing apply link.
var ErrDuplicateApplyLink = errors.New("job with this apply link already exists")
