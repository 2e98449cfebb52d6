// Package storetest is a conformance suite every storage engine must pass.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

// Factory opens an empty store whose CreatedAt clock is now.
type Factory func(t *testing.T, now func() time.Time) model.Store

// Run exercises the full model.Store contract against stores built by open.
func Run(t *testing.T, open Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, open Factory)
	}{
		{"AddAssignsIDAndCreatedAt", testAddAssignsIDAndCreatedAt},
		{"AddRejectsDuplicateIdentity", testAddRejectsDuplicateIdentity},
		{"GetByIdentity", testGetByIdentity},
		{"OptionalFieldsRoundTrip", testOptionalFieldsRoundTrip},
		{"ListPostingsInsertionOrder", testListPostingsInsertionOrder},
		{"FindPendingEnrichment", testFindPendingEnrichment},
		{"LinkSummaryIsOneShot", testLinkSummaryIsOneShot},
		{"LinkSummaryUnknownPosting", testLinkSummaryUnknownPosting},
		{"ConcurrentLinkSummary", testConcurrentLinkSummary},
		{"SummaryLifecycle", testSummaryLifecycle},
		{"RecordQuery", testRecordQuery},
		{"CompanyProfiles", testCompanyProfiles},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) { tc.fn(t, open) })
	}
}

func fixedClock(t0 time.Time) func() time.Time {
	var mu sync.Mutex
	next := t0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(time.Second)
		return now
	}
}

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func add(t *testing.T, s model.Store, title, company string) model.Posting {
	t.Helper()
	p, err := s.Add(context.Background(), model.Posting{
		Title:       title,
		Company:     company,
		Location:    "Remote",
		Description: title + " at " + company,
		URL:         "https://example.com/jobs/" + title,
		Source:      "test",
	})
	if err != nil {
		t.Fatalf("Add(%q, %q): %v", title, company, err)
	}
	return p
}

func summary(id string) model.Summary {
	return model.Summary{
		ID:               id,
		SalaryRange:      model.SalaryNotListed,
		JobType:          model.JobTypeFullTime,
		ExperienceLevel:  model.ExperienceSenior,
		StandoutFeatures: "Remote-first",
		Qualifications:   "Go, SQL",
	}
}

func testAddAssignsIDAndCreatedAt(t *testing.T, open Factory) {
	s := open(t, fixedClock(epoch))

	p := add(t, s, "Engineer", "Acme")
	if !p.Persisted() {
		t.Fatal("expected non-zero ID")
	}
	if !p.CreatedAt.Equal(epoch) {
		t.Errorf("CreatedAt = %v, want %v", p.CreatedAt, epoch)
	}
	if !p.Pending() {
		t.Error("new posting should be pending")
	}

	got, err := s.GetPosting(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetPosting: %v", err)
	}
	if got.Title != "Engineer" || got.Company != "Acme" || got.URL != p.URL || !got.CreatedAt.Equal(epoch) {
		t.Errorf("stored posting differs: %+v", got)
	}

	q := add(t, s, "Designer", "Acme")
	if q.ID == p.ID {
		t.Errorf("expected distinct IDs, both %d", p.ID)
	}
}

func testAddRejectsDuplicateIdentity(t *testing.T, open Factory) {
	s := open(t, time.Now)
	add(t, s, "Engineer", "Acme")

	_, err := s.Add(context.Background(), model.Posting{Title: "  ENGINEER", Company: "acme "})
	if !errors.Is(err, model.ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
	}

	all, err := s.ListPostings(context.Background())
	if err != nil {
		t.Fatalf("ListPostings: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 stored posting, got %d", len(all))
	}
}

func testGetByIdentity(t *testing.T, open Factory) {
	s := open(t, time.Now)
	want := add(t, s, "Senior Engineer", "Acme")

	got, err := s.GetByIdentity(context.Background(), " senior engineer ", "ACME")
	if err != nil {
		t.Fatalf("GetByIdentity: %v", err)
	}
	if got.ID != want.ID {
		t.Errorf("GetByIdentity ID = %d, want %d", got.ID, want.ID)
	}

	_, err = s.GetByIdentity(context.Background(), "Senior Engineer", "Globex")
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	_, err = s.GetPosting(context.Background(), want.ID+100)
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func testOptionalFieldsRoundTrip(t *testing.T, open Factory) {
	s := open(t, time.Now)
	ctx := context.Background()

	jt := model.JobTypeContract
	lvl := model.ExperienceMid
	withEnums, err := s.Add(ctx, model.Posting{
		Title: "Contractor", Company: "Acme", SalaryRange: "$100k-120k",
		PostedDate: "3 days ago", JobType: &jt, ExperienceLevel: &lvl,
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	bare := add(t, s, "Engineer", "Acme")

	got, err := s.GetPosting(ctx, withEnums.ID)
	if err != nil {
		t.Fatalf("GetPosting: %v", err)
	}
	if got.JobType == nil || *got.JobType != jt || got.ExperienceLevel == nil || *got.ExperienceLevel != lvl {
		t.Errorf("enums not preserved: %v %v", got.JobType, got.ExperienceLevel)
	}
	if got.SalaryRange != "$100k-120k" || got.PostedDate != "3 days ago" {
		t.Errorf("text fields not preserved: %+v", got)
	}

	got, err = s.GetPosting(ctx, bare.ID)
	if err != nil {
		t.Fatalf("GetPosting: %v", err)
	}
	if got.JobType != nil || got.ExperienceLevel != nil || got.SearchQueryID != 0 {
		t.Errorf("expected unset optional fields, got %+v", got)
	}
}

func testListPostingsInsertionOrder(t *testing.T, open Factory) {
	s := open(t, time.Now)
	for _, title := range []string{"C", "A", "B"} {
		add(t, s, title, "Acme")
	}

	all, err := s.ListPostings(context.Background())
	if err != nil {
		t.Fatalf("ListPostings: %v", err)
	}
	var got string
	for _, p := range all {
		got += p.Title
	}
	if got != "CAB" {
		t.Errorf("ListPostings order = %s, want CAB", got)
	}
}

func testFindPendingEnrichment(t *testing.T, open Factory) {
	s := open(t, time.Now)
	ctx := context.Background()

	pending, err := s.FindPendingEnrichment(ctx)
	if err != nil {
		t.Fatalf("FindPendingEnrichment: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected empty store to have nothing pending, got %d", len(pending))
	}

	a := add(t, s, "A", "Acme")
	b := add(t, s, "B", "Acme")
	if _, err := s.CreateSummary(ctx, summary("sum-a")); err != nil {
		t.Fatalf("CreateSummary: %v", err)
	}
	if _, err := s.LinkSummary(ctx, a.ID, summary("sum-a")); err != nil {
		t.Fatalf("LinkSummary: %v", err)
	}

	pending, err = s.FindPendingEnrichment(ctx)
	if err != nil {
		t.Fatalf("FindPendingEnrichment: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != b.ID {
		t.Errorf("expected only B pending, got %+v", pending)
	}
}

func testLinkSummaryIsOneShot(t *testing.T, open Factory) {
	s := open(t, time.Now)
	ctx := context.Background()
	p := add(t, s, "Engineer", "Acme")

	first, err := s.CreateSummary(ctx, summary("first"))
	if err != nil {
		t.Fatalf("CreateSummary: %v", err)
	}
	linked, err := s.LinkSummary(ctx, p.ID, first)
	if err != nil {
		t.Fatalf("LinkSummary: %v", err)
	}
	if linked.SummaryID != "first" {
		t.Errorf("SummaryID = %q, want first", linked.SummaryID)
	}

	_, err = s.LinkSummary(ctx, p.ID, summary("second"))
	if !errors.Is(err, model.ErrAlreadyEnriched) {
		t.Fatalf("expected ErrAlreadyEnriched, got %v", err)
	}

	got, err := s.GetPosting(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPosting: %v", err)
	}
	if got.SummaryID != "first" {
		t.Errorf("original summary replaced: %q", got.SummaryID)
	}
	sum, err := s.GetSummary(ctx, "first")
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if sum.Qualifications != "Go, SQL" {
		t.Errorf("original summary changed: %+v", sum)
	}
}

func testLinkSummaryUnknownPosting(t *testing.T, open Factory) {
	s := open(t, time.Now)
	_, err := s.LinkSummary(context.Background(), 4242, summary("orphan"))
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testConcurrentLinkSummary(t *testing.T, open Factory) {
	s := open(t, time.Now)
	ctx := context.Background()
	p := add(t, s, "Engineer", "Acme")

	const workers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		wins     int
		conflict int
	)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.LinkSummary(ctx, p.ID, summary(string(rune('a'+i))))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, model.ErrAlreadyEnriched):
				conflict++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins != 1 || conflict != workers-1 {
		t.Errorf("wins=%d conflicts=%d, want 1 and %d", wins, conflict, workers-1)
	}
}

func testSummaryLifecycle(t *testing.T, open Factory) {
	s := open(t, fixedClock(epoch))
	ctx := context.Background()

	in := summary("life")
	in.PostingID = 7
	created, err := s.CreateSummary(ctx, in)
	if err != nil {
		t.Fatalf("CreateSummary: %v", err)
	}
	if !created.CreatedAt.Equal(epoch) {
		t.Errorf("CreatedAt = %v, want %v", created.CreatedAt, epoch)
	}

	got, err := s.GetSummary(ctx, "life")
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if got.SalaryRange != model.SalaryNotListed || got.JobType != model.JobTypeFullTime ||
		got.ExperienceLevel != model.ExperienceSenior || got.PostingID != 7 {
		t.Errorf("summary differs: %+v", got)
	}

	if _, err := s.CreateSummary(ctx, model.Summary{}); err == nil {
		t.Error("expected error for summary without id")
	}

	if err := s.DeleteSummary(ctx, "life"); err != nil {
		t.Fatalf("DeleteSummary: %v", err)
	}
	if _, err := s.GetSummary(ctx, "life"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func testRecordQuery(t *testing.T, open Factory) {
	s := open(t, time.Now)
	ctx := context.Background()

	q := model.SearchQuery{Keywords: "AI Engineer", Location: "United States", MaxResults: 20}
	first, err := s.RecordQuery(ctx, q)
	if err != nil {
		t.Fatalf("RecordQuery: %v", err)
	}
	second, err := s.RecordQuery(ctx, q)
	if err != nil {
		t.Fatalf("RecordQuery: %v", err)
	}
	if first == 0 || second <= first {
		t.Errorf("expected increasing ids, got %d then %d", first, second)
	}

	p, err := s.Add(ctx, model.Posting{Title: "Engineer", Company: "Acme", SearchQueryID: second})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	got, err := s.GetPosting(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPosting: %v", err)
	}
	if got.SearchQueryID != second {
		t.Errorf("SearchQueryID = %d, want %d", got.SearchQueryID, second)
	}
}

func testCompanyProfiles(t *testing.T, open Factory) {
	s := open(t, fixedClock(epoch))
	ctx := context.Background()

	if _, err := s.GetCompanyProfile(ctx, "Acme"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before save, got %v", err)
	}

	saved, err := s.SaveCompanyProfile(ctx, model.CompanyProfile{
		Name:              "Acme",
		Overview:          "Makes anvils",
		ProductsServices:  "Anvils, rockets",
		SizeLocations:     "approx. 200 employees, Phoenix",
		Culture:           "Hands-on",
		RecentNews:        "Series B",
		ApplicantAppeal:   "Hard physics problems",
		PotentialConcerns: "No major concerns found from recent public sources.",
	})
	if err != nil {
		t.Fatalf("SaveCompanyProfile: %v", err)
	}
	if saved.ID == 0 || !saved.CreatedAt.Equal(epoch) {
		t.Errorf("saved = %+v, want ID and CreatedAt %v", saved, epoch)
	}

	got, err := s.GetCompanyProfile(ctx, "  ACME ")
	if err != nil {
		t.Fatalf("GetCompanyProfile: %v", err)
	}
	if !got.CreatedAt.Equal(saved.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, saved.CreatedAt)
	}
	got.CreatedAt, saved.CreatedAt = time.Time{}, time.Time{}
	if got != saved {
		t.Errorf("profile differs:\n got %+v\nwant %+v", got, saved)
	}

	_, err = s.SaveCompanyProfile(ctx, model.CompanyProfile{Name: "acme", Overview: "again"})
	if !errors.Is(err, model.ErrDuplicateIdentity) {
		t.Errorf("expected ErrDuplicateIdentity for second profile, got %v", err)
	}
	if _, err := s.SaveCompanyProfile(ctx, model.CompanyProfile{Name: " "}); err == nil {
		t.Error("expected error for profile without name")
	}
}
