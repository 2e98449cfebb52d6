package poller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/amishk599/jobscout/internal/aggregate"
	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/store"
)

// --- Mock/Fake Implementations ---

// MockAggregator returns a canned result or an error.
type MockAggregator struct {
	Postings []model.Posting
	Err      error
	Queries  []model.SearchQuery
}

func (m *MockAggregator) Run(_ context.Context, q model.SearchQuery) (aggregate.Result, error) {
	m.Queries = append(m.Queries, q)
	return aggregate.Result{Postings: m.Postings}, m.Err
}

// RecordingNotifier records which postings were sent to Notify.
type RecordingNotifier struct {
	Notified []model.Posting
}

func (n *RecordingNotifier) Notify(postings []model.Posting) error {
	n.Notified = append(n.Notified, postings...)
	return nil
}

// RejectAllFilter rejects every posting.
type RejectAllFilter struct{}

func (f *RejectAllFilter) Match(_ model.Posting) bool { return false }

// racingStore reports every identity as unknown, like a concurrent writer
// inserting between the lookup and the add.
type racingStore struct {
	*store.MemoryStore
}

func (racingStore) GetByIdentity(context.Context, string, string) (model.Posting, error) {
	return model.Posting{}, model.ErrNotFound
}

// flakyStore fails Add for one title, like a disk error on a single row.
type flakyStore struct {
	*store.MemoryStore
	failTitle string
}

var errDisk = errors.New("disk I/O error")

func (s flakyStore) Add(ctx context.Context, p model.Posting) (model.Posting, error) {
	if p.Title == s.failTitle || s.failTitle == "*" {
		return model.Posting{}, errDisk
	}
	return s.MemoryStore.Add(ctx, p)
}

// --- Helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makePostings(titles ...string) []model.Posting {
	postings := make([]model.Posting, len(titles))
	for i, title := range titles {
		postings[i] = model.Posting{
			Title:    title,
			Company:  "testco",
			Location: "Remote",
			URL:      "https://example.com/" + title,
			Source:   "test",
		}
	}
	return postings
}

func query() model.SearchQuery {
	return model.SearchQuery{Keywords: "engineer"}
}

// --- Tests ---

func TestPoll_PersistsNewPostings(t *testing.T) {
	s := store.NewMemoryStore()
	notifier := &RecordingNotifier{}
	agg := &MockAggregator{Postings: makePostings("a", "b", "c")}
	poller := NewQueryPoller(query(), agg, nil, s, notifier, discardLogger())

	report, err := poller.Poll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.New) != 3 || len(notifier.Notified) != 3 {
		t.Errorf("new = %d, notified = %d, want 3", len(report.New), len(notifier.Notified))
	}
	for _, p := range report.New {
		if !p.Persisted() {
			t.Errorf("posting %q not persisted", p.Title)
		}
		if p.SearchQueryID != report.QueryID || report.QueryID == 0 {
			t.Errorf("SearchQueryID = %d, QueryID = %d", p.SearchQueryID, report.QueryID)
		}
	}
	if agg.Queries[0].Location != model.DefaultLocation || agg.Queries[0].MaxResults != model.DefaultMaxResults {
		t.Errorf("defaults not applied: %+v", agg.Queries[0])
	}
}

func TestPoll_CrossRunDedup(t *testing.T) {
	s := store.NewMemoryStore()
	first, err := s.Add(context.Background(), model.Posting{Title: "B", Company: "TESTCO ", Description: "original"})
	if err != nil {
		t.Fatal(err)
	}

	notifier := &RecordingNotifier{}
	agg := &MockAggregator{Postings: makePostings("a", "b")}
	poller := NewQueryPoller(query(), agg, nil, s, notifier, discardLogger())

	report, err := poller.Poll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Existing != 1 || len(report.New) != 1 || report.New[0].Title != "a" {
		t.Errorf("unexpected report: %+v", report)
	}

	stored, _ := s.GetPosting(context.Background(), first.ID)
	if stored != first {
		t.Errorf("existing posting modified: %+v -> %+v", first, stored)
	}
}

func TestPoll_SecondRunFindsNothingNew(t *testing.T) {
	s := store.NewMemoryStore()
	notifier := &RecordingNotifier{}
	poller := NewQueryPoller(query(), &MockAggregator{Postings: makePostings("a", "b")}, nil, s, notifier, discardLogger())

	if _, err := poller.Poll(context.Background()); err != nil {
		t.Fatal(err)
	}
	report, err := poller.Poll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(report.New) != 0 || report.Existing != 2 {
		t.Errorf("unexpected second report: %+v", report)
	}
	if len(notifier.Notified) != 2 {
		t.Errorf("notified = %d, want 2", len(notifier.Notified))
	}
}

func TestPoll_AggregateError(t *testing.T) {
	notifier := &RecordingNotifier{}
	poller := NewQueryPoller(query(), &MockAggregator{Err: model.ErrNoSources}, nil,
		store.NewMemoryStore(), notifier, discardLogger())

	_, err := poller.Poll(context.Background())
	if !errors.Is(err, model.ErrNoSources) {
		t.Fatalf("expected ErrNoSources, got %v", err)
	}
	if len(notifier.Notified) != 0 {
		t.Error("notifier should not be called on aggregate error")
	}
}

func TestPoll_FilterRejectsAll(t *testing.T) {
	s := store.NewMemoryStore()
	notifier := &RecordingNotifier{}
	poller := NewQueryPoller(query(), &MockAggregator{Postings: makePostings("a", "b")},
		&RejectAllFilter{}, s, notifier, discardLogger())

	if _, err := poller.Poll(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.Notified) != 0 {
		t.Error("notifier should not be called when filter rejects all")
	}
	if all, _ := s.ListPostings(context.Background()); len(all) != 0 {
		t.Errorf("rejected postings were stored: %d", len(all))
	}
}

func TestPoll_ConcurrentInsertCountsAsExisting(t *testing.T) {
	s := store.NewMemoryStore()
	if _, err := s.Add(context.Background(), makePostings("a")[0]); err != nil {
		t.Fatal(err)
	}

	poller := NewQueryPoller(query(), &MockAggregator{Postings: makePostings("a")}, nil,
		racingStore{s}, &RecordingNotifier{}, discardLogger())

	report, err := poller.Poll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Existing != 1 || len(report.New) != 0 {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestPoll_InvalidQuery(t *testing.T) {
	agg := &MockAggregator{}
	poller := NewQueryPoller(model.SearchQuery{}, agg, nil, store.NewMemoryStore(), nil, discardLogger())

	if _, err := poller.Poll(context.Background()); !errors.Is(err, model.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
	if len(agg.Queries) != 0 {
		t.Error("aggregator should not run for an invalid query")
	}
}

func TestPoll_StoreErrorSkipsOnlyThatPosting(t *testing.T) {
	s := flakyStore{MemoryStore: store.NewMemoryStore(), failTitle: "bad"}
	notifier := &RecordingNotifier{}
	agg := &MockAggregator{Postings: makePostings("a", "bad", "c", "d")}
	poller := NewQueryPoller(query(), agg, nil, s, notifier, discardLogger())

	report, err := poller.Poll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.New) != 3 || report.StoreErrors != 1 {
		t.Errorf("new = %d, store errors = %d, want 3 and 1", len(report.New), report.StoreErrors)
	}
	if len(notifier.Notified) != 3 {
		t.Errorf("notified = %d, want 3", len(notifier.Notified))
	}
	all, err := s.ListPostings(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("stored = %d, want 3", len(all))
	}
}

func TestPoll_EveryStoreErrorFailsPoll(t *testing.T) {
	s := flakyStore{MemoryStore: store.NewMemoryStore(), failTitle: "*"}
	agg := &MockAggregator{Postings: makePostings("a", "b")}
	poller := NewQueryPoller(query(), agg, nil, s, nil, discardLogger())

	report, err := poller.Poll(context.Background())
	if !errors.Is(err, errDisk) {
		t.Fatalf("expected disk error, got %v", err)
	}
	if report.StoreErrors != 2 || len(report.New) != 0 {
		t.Errorf("unexpected report: %+v", report)
	}
}
