package query

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/amishk599/jobscout/internal/model"
)

// SortOrder selects how Search orders its results.
type SortOrder int

const (
	// SortDefault lists postings newest-inserted first.
	SortDefault SortOrder = iota
	// SortRecentFirst orders by CreatedAt descending; unknown timestamps last.
	SortRecentFirst
	// SortCompanyAsc orders by company, then title.
	SortCompanyAsc
)

// AllLocations disables location filtering, as does an empty location.
const AllLocations = "All"

func (s SortOrder) String() string {
	switch s {
	case SortRecentFirst:
		return "recent"
	case SortCompanyAsc:
		return "company"
	default:
		return "default"
	}
}

// ParseSort maps a sort name to a SortOrder. It accepts the short names and
// the labels shown by the review UI.
func ParseSort(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return SortDefault, nil
	case "recent", "recently posted":
		return SortRecentFirst, nil
	case "company", "company a → z", "company a-z":
		return SortCompanyAsc, nil
	}
	return SortDefault, fmt.Errorf("unknown sort order %q", s)
}

// Filter narrows a Search.
type Filter struct {
	Text     string
	Location string
	Sort     SortOrder
}

// Store is the read surface the service needs.
type Store interface {
	model.PostingLister
	GetSummary(ctx context.Context, id string) (model.Summary, error)
}

// Detail is a posting together with its summary, when one is linked.
type Detail struct {
	Posting model.Posting
	Summary *model.Summary
}

// Service answers review-UI queries against the store. It never writes.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Search returns postings whose title, company or description contains
// f.Text (case-insensitive) and whose location equals f.Location, ordered
// by f.Sort.
func (s *Service) Search(ctx context.Context, f Filter) ([]model.Posting, error) {
	all, err := s.store.ListPostings(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing postings: %w", err)
	}

	text := strings.ToLower(strings.TrimSpace(f.Text))
	location := strings.TrimSpace(f.Location)
	if location == AllLocations {
		location = ""
	}

	out := make([]model.Posting, 0, len(all))
	for _, p := range all {
		if text != "" && !matchesText(p, text) {
			continue
		}
		if location != "" && p.Location != location {
			continue
		}
		out = append(out, p)
	}

	sortPostings(out, f.Sort)
	return out, nil
}

func matchesText(p model.Posting, text string) bool {
	return strings.Contains(strings.ToLower(p.Title), text) ||
		strings.Contains(strings.ToLower(p.Company), text) ||
		strings.Contains(strings.ToLower(p.Description), text)
}

// sortPostings orders postings that arrive in insertion order.
func sortPostings(postings []model.Posting, order SortOrder) {
	switch order {
	case SortRecentFirst:
		slices.SortStableFunc(postings, func(a, b model.Posting) int {
			switch {
			case a.CreatedAt.IsZero() && b.CreatedAt.IsZero():
				return 0
			case a.CreatedAt.IsZero():
				return 1
			case b.CreatedAt.IsZero():
				return -1
			}
			// equal timestamps: later insert (higher ID) first
			return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.ID, a.ID))
		})
	case SortCompanyAsc:
		slices.SortStableFunc(postings, func(a, b model.Posting) int {
			return cmp.Or(cmp.Compare(a.Company, b.Company), cmp.Compare(a.Title, b.Title))
		})
	default:
		slices.Reverse(postings)
	}
}

// DistinctLocations returns every non-empty location, unique and sorted.
func (s *Service) DistinctLocations(ctx context.Context) ([]string, error) {
	all, err := s.store.ListPostings(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing postings: %w", err)
	}

	locations := make([]string, 0, len(all))
	for _, p := range all {
		if p.Location != "" {
			locations = append(locations, p.Location)
		}
	}
	slices.Sort(locations)
	return slices.Compact(locations), nil
}

// Get returns one posting and its summary. A pending posting has a nil Summary.
func (s *Service) Get(ctx context.Context, id int64) (Detail, error) {
	p, err := s.store.GetPosting(ctx, id)
	if err != nil {
		return Detail{}, fmt.Errorf("getting posting %d: %w", id, err)
	}

	d := Detail{Posting: p}
	if p.Pending() {
		return d, nil
	}

	sum, err := s.store.GetSummary(ctx, p.SummaryID)
	switch {
	case errors.Is(err, model.ErrNotFound):
		return d, nil
	case err != nil:
		return Detail{}, fmt.Errorf("getting summary for posting %d: %w", id, err)
	}
	d.Summary = &sum
	return d, nil
}
