package model

import (
	"strings"
	"time"
)

// Posting is the unified representation of a job posting from any source.
type Posting struct {
	ID              int64 // zero until persisted
	Title           string
	Company         string
	Location        string
	Description     string
	URL             string // absolute link, empty when the source has none
	PostedDate      string // raw source string, not normalized
	Source          string // human-readable origin label
	SalaryRange     string
	JobType         *JobType
	ExperienceLevel *ExperienceLevel
	CreatedAt       time.Time // set by the store on insert
	SummaryID       string    // empty while pending enrichment
	SearchQueryID   int64     // run that first discovered the posting, zero if unknown
}

// IdentityKey is the normalized (title, company) pair used for dedup.
// It is intentionally coarser than URL: sources republish the same role
// under different links.
type IdentityKey struct {
	Title   string
	Company string
}

// Identity returns the identity key for a raw title and company.
func Identity(title, company string) IdentityKey {
	return IdentityKey{
		Title:   normalize(title),
		Company: normalize(company),
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Identity returns the posting's identity key.
func (p Posting) Identity() IdentityKey {
	return Identity(p.Title, p.Company)
}

// Persisted reports whether the posting has a store-assigned ID.
func (p Posting) Persisted() bool {
	return p.ID != 0
}

// Pending reports whether the posting still lacks a linked summary.
func (p Posting) Pending() bool {
	return p.SummaryID == ""
}

// Summary is the structured extraction result linked one-to-one to a Posting.
type Summary struct {
	ID               string
	SalaryRange      string // SalaryNotListed when the description has no compensation info
	JobType          JobType
	ExperienceLevel  ExperienceLevel
	StandoutFeatures string
	Qualifications   string
	CreatedAt        time.Time
	PostingID        int64
}

// SalaryNotListed is the literal salary_range value for descriptions without
// compensation details. Display logic branches on it, so it is kept verbatim.
const SalaryNotListed = "not listed"
