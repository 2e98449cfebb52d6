package model

import "time"

// CompanyProfile is an LLM-written orientation on an employer, meant for
// someone deciding whether to apply. Profiles are stored once per company
// and shared by every posting from it.
type CompanyProfile struct {
	ID                int64
	Name              string
	Overview          string
	ProductsServices  string
	SizeLocations     string
	Culture           string
	RecentNews        string
	ApplicantAppeal   string
	PotentialConcerns string
	CreatedAt         time.Time
}

// CompanyKey normalizes a company name the same way posting identity does,
// so "Acme " and "acme" share a profile.
func CompanyKey(name string) string {
	return normalize(name)
}
