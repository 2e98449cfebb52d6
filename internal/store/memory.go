package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/amishk599/jobscout/internal/model"
)

// MemoryStore keeps everything in process memory. It backs dry runs and
// tests; contents are lost on Close.
type MemoryStore struct {
	mu         sync.Mutex
	opts       options
	postings   []model.Posting // index i holds ID i+1
	byIdentity map[model.IdentityKey]int64
	summaries  map[string]model.Summary
	companies  map[string]model.CompanyProfile
	queries    int64
}

func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		opts:       buildOptions(opts),
		byIdentity: make(map[model.IdentityKey]int64),
		summaries:  make(map[string]model.Summary),
		companies:  make(map[string]model.CompanyProfile),
	}
}

func (s *MemoryStore) Add(_ context.Context, p model.Posting) (model.Posting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := p.Identity()
	if _, ok := s.byIdentity[key]; ok {
		return model.Posting{}, fmt.Errorf("adding %q at %q: %w", p.Title, p.Company, model.ErrDuplicateIdentity)
	}

	p.ID = int64(len(s.postings) + 1)
	p.CreatedAt = s.opts.timestamp()
	p.SummaryID = ""
	s.postings = append(s.postings, p)
	s.byIdentity[key] = p.ID
	return p, nil
}

func (s *MemoryStore) GetByIdentity(_ context.Context, title, company string) (model.Posting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byIdentity[model.Identity(title, company)]
	if !ok {
		return model.Posting{}, model.ErrNotFound
	}
	return s.postings[id-1], nil
}

func (s *MemoryStore) GetPosting(_ context.Context, id int64) (model.Posting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id <= 0 || id > int64(len(s.postings)) {
		return model.Posting{}, model.ErrNotFound
	}
	return s.postings[id-1], nil
}

func (s *MemoryStore) FindPendingEnrichment(_ context.Context) ([]model.Posting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []model.Posting
	for _, p := range s.postings {
		if p.Pending() {
			pending = append(pending, p)
		}
	}
	return pending, nil
}

func (s *MemoryStore) ListPostings(_ context.Context) ([]model.Posting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Posting, len(s.postings))
	copy(out, s.postings)
	return out, nil
}

func (s *MemoryStore) LinkSummary(_ context.Context, postingID int64, sum model.Summary) (model.Posting, error) {
	if sum.ID == "" {
		return model.Posting{}, errors.New("linking summary: id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if postingID <= 0 || postingID > int64(len(s.postings)) {
		return model.Posting{}, model.ErrNotFound
	}
	p := &s.postings[postingID-1]
	if !p.Pending() {
		return *p, fmt.Errorf("posting %d: %w", postingID, model.ErrAlreadyEnriched)
	}
	p.SummaryID = sum.ID
	return *p, nil
}

func (s *MemoryStore) CreateSummary(_ context.Context, sum model.Summary) (model.Summary, error) {
	if sum.ID == "" {
		return model.Summary{}, errors.New("creating summary: id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.summaries[sum.ID]; ok {
		return model.Summary{}, fmt.Errorf("creating summary %s: already exists", sum.ID)
	}
	sum.CreatedAt = s.opts.timestamp()
	s.summaries[sum.ID] = sum
	return sum, nil
}

func (s *MemoryStore) GetSummary(_ context.Context, id string) (model.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum, ok := s.summaries[id]
	if !ok {
		return model.Summary{}, model.ErrNotFound
	}
	return sum, nil
}

func (s *MemoryStore) DeleteSummary(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.summaries, id)
	return nil
}

func (s *MemoryStore) RecordQuery(_ context.Context, _ model.SearchQuery) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queries++
	return s.queries, nil
}

func (s *MemoryStore) GetCompanyProfile(_ context.Context, name string) (model.CompanyProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.companies[model.CompanyKey(name)]
	if !ok {
		return model.CompanyProfile{}, model.ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) SaveCompanyProfile(_ context.Context, p model.CompanyProfile) (model.CompanyProfile, error) {
	key := model.CompanyKey(p.Name)
	if key == "" {
		return model.CompanyProfile{}, errors.New("saving company profile: name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.companies[key]; ok {
		return model.CompanyProfile{}, fmt.Errorf("saving profile for %q: %w", p.Name, model.ErrDuplicateIdentity)
	}
	p.ID = int64(len(s.companies) + 1)
	p.CreatedAt = s.opts.timestamp()
	s.companies[key] = p
	return p, nil
}

func (s *MemoryStore) Close() error { return nil }
