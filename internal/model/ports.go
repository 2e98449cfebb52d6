package model

import "context"

// SourceAdapter fetches raw postings from exactly one external source.
// Adapters share no state and never write to storage.
type SourceAdapter interface {
	// Name is the human-readable origin label copied into Posting.Source.
	Name() string
	// Ready reports whether the adapter's preconditions (credentials,
	// configuration) hold. A non-nil error excludes it from the active set.
	Ready() error
	// Fetch returns at most limit postings, or a SourceError.
	Fetch(ctx context.Context, keywords, location string, limit int) ([]Posting, error)
}

// PostingStore persists postings and owns the one-shot summary link.
type PostingStore interface {
	// Add inserts p and returns it with ID and CreatedAt assigned.
	// Returns ErrDuplicateIdentity if a posting with the same identity exists.
	Add(ctx context.Context, p Posting) (Posting, error)
	// GetByIdentity returns the stored posting for (title, company) or ErrNotFound.
	GetByIdentity(ctx context.Context, title, company string) (Posting, error)
	// FindPendingEnrichment returns every posting without a linked summary.
	FindPendingEnrichment(ctx context.Context) ([]Posting, error)
	// LinkSummary sets the posting's summary reference exactly once.
	// Returns ErrAlreadyEnriched if it is already set, ErrNotFound if the
	// posting does not exist.
	LinkSummary(ctx context.Context, postingID int64, s Summary) (Posting, error)
}

// SummaryStore persists extraction results.
type SummaryStore interface {
	CreateSummary(ctx context.Context, s Summary) (Summary, error)
	GetSummary(ctx context.Context, id string) (Summary, error)
	DeleteSummary(ctx context.Context, id string) error
}

// PostingLister returns every stored posting in insertion order.
type PostingLister interface {
	ListPostings(ctx context.Context) ([]Posting, error)
	GetPosting(ctx context.Context, id int64) (Posting, error)
}

// QueryRecorder records an issued search so postings can point back to
// the run that found them.
type QueryRecorder interface {
	RecordQuery(ctx context.Context, q SearchQuery) (int64, error)
}

// CompanyStore persists one CompanyProfile per normalized company name.
type CompanyStore interface {
	// GetCompanyProfile returns the profile for name or ErrNotFound.
	GetCompanyProfile(ctx context.Context, name string) (CompanyProfile, error)
	// SaveCompanyProfile inserts p and returns it with ID and CreatedAt set.
	// Returns ErrDuplicateIdentity if the company already has a profile.
	SaveCompanyProfile(ctx context.Context, p CompanyProfile) (CompanyProfile, error)
}

// Store is the full repository surface implemented by every storage engine.
type Store interface {
	PostingStore
	SummaryStore
	PostingLister
	QueryRecorder
	CompanyStore
	Close() error
}

// Extractor turns a free-text description into a validated Summary, or
// fails with an ExtractionError.
type Extractor interface {
	Extract(ctx context.Context, description string) (Summary, error)
}

// CompanyReviewer writes a CompanyProfile for a company name, or fails with
// an ExtractionError.
type CompanyReviewer interface {
	Review(ctx context.Context, company string) (CompanyProfile, error)
}

// Notifier reports newly persisted postings.
type Notifier interface {
	Notify(postings []Posting) error
}

// PostingFilter decides whether a posting matches a keyword/location pair.
type PostingFilter interface {
	Match(p Posting) bool
}
