package types

import (
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Subscriber receives notifications for newly created postings that match its preferences.
// Empty JobTypes or Sectors mean "any".
type Subscriber struct {
	ID               uuid.UUID `json:"id"`
	Email            string    `json:"email" validate:"required,email,max=254"`
	Active           bool      `json:"active"`
	JobTypes         []JobType `json:"job_types,omitempty" validate:"dive,oneof=internship job fellowship"`
	Sectors          []string  `json:"sectors,omitempty" validate:"dive,required,max=100"`
	ZipCode          string    `json:"zip_code,omitempty" validate:"omitempty,max=10"`
	MaxDistanceMiles *int      `json:"max_distance_miles,omitempty" validate:"omitempty,min=1"`
	SubscribedAt     time.Time `json:"subscribed_at"`
}

// Validate validates the Subscriber using the validator.
func (s *Subscriber) Validate() error {
	validate := validator.New()
	return validate.Struct(s)
}

// WantsJobType reports whether the subscriber accepts postings of type t.
func (s *Subscriber) WantsJobType(t JobType) bool {
	return len(s.JobTypes) == 0 || slices.Contains(s.JobTypes, t)
}

// WantsAnySector reports whether the subscriber's sectors intersect sectors.
func (s *Subscriber) WantsAnySector(sectors []string) bool {
	if len(s.Sectors) == 0 {
		return true
	}
	for _, sector := range sectors {
		if slices.Contains(s.Sectors, sector) {
			return true
		}
	}
	return false
}
