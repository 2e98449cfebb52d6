package model

import (
	"fmt"
	"strings"
)

const (
	DefaultLocation   = "United States"
	DefaultMaxResults = 20
	DefaultKeywords   = "AI Engineer"
)

// SearchQuery identifies one aggregation run. It is a value type: callers
// build it once and never mutate it afterwards.
type SearchQuery struct {
	Keywords        string
	Location        string
	JobType         *JobType
	ExperienceLevel *ExperienceLevel
	RemoteOK        bool
	MaxResults      int
}

// WithDefaults returns a copy of q with caller-side defaults applied to
// empty fields.
func (q SearchQuery) WithDefaults() SearchQuery {
	if strings.TrimSpace(q.Location) == "" {
		q.Location = DefaultLocation
	}
	if q.MaxResults == 0 {
		q.MaxResults = DefaultMaxResults
	}
	return q
}

// Validate checks that q can drive an aggregation run.
func (q SearchQuery) Validate() error {
	if strings.TrimSpace(q.Keywords) == "" {
		return fmt.Errorf("%w: keywords must not be empty", ErrInvalidQuery)
	}
	if q.MaxResults <= 0 {
		return fmt.Errorf("%w: max_results must be positive, got %d", ErrInvalidQuery, q.MaxResults)
	}
	if q.JobType != nil && !q.JobType.Valid() {
		return fmt.Errorf("%w: unknown job_type %q", ErrInvalidQuery, *q.JobType)
	}
	if q.ExperienceLevel != nil && !q.ExperienceLevel.Valid() {
		return fmt.Errorf("%w: unknown experience_level %q", ErrInvalidQuery, *q.ExperienceLevel)
	}
	return nil
}
