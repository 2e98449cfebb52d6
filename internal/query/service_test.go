package query

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/store"
)

// fixture inserts five postings with increasing CreatedAt:
//
//	1 Backend Engineer    Acme     Remote
//	2 Data Scientist      Globex   New York, NY
//	3 Frontend Engineer   Initech  Remote
//	4 Product Manager     Acme     Austin, TX   (description mentions engineers)
//	5 Engineering Manager Hooli    New York, NY
func fixture(t *testing.T) *store.MemoryStore {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s := store.NewMemoryStore(store.WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Hour)
	}))

	postings := []model.Posting{
		{Title: "Backend Engineer", Company: "Acme", Location: "Remote", Description: "Go services"},
		{Title: "Data Scientist", Company: "Globex", Location: "New York, NY", Description: "Python models"},
		{Title: "Frontend Engineer", Company: "Initech", Location: "Remote", Description: "React"},
		{Title: "Product Manager", Company: "Acme", Location: "Austin, TX", Description: "Partner with ENGINEERS"},
		{Title: "Engineering Manager", Company: "Hooli", Location: "New York, NY", Description: "Lead a team"},
	}
	for _, p := range postings {
		if _, err := s.Add(context.Background(), p); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	return s
}

func TestSearch_TitleMatchRecentFirst(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s := store.NewMemoryStore(store.WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}))
	for _, p := range []model.Posting{
		{Title: "Senior ENGINEER", Company: "Acme", Location: "Remote"},
		{Title: "Designer", Company: "Globex", Location: "Remote"},
		{Title: "engineer II", Company: "Initech", Location: "Austin, TX"},
		{Title: "Recruiter", Company: "Hooli", Location: "Remote"},
		{Title: "Staff Engineer", Company: "Umbrella", Location: "Remote"},
	} {
		if _, err := s.Add(context.Background(), p); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	got, err := NewService(s).Search(context.Background(), Filter{Text: "Engineer", Location: AllLocations, Sort: SortRecentFirst})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if want := []int64{5, 3, 1}; !slices.Equal(ids(got), want) {
		t.Errorf("ids = %v, want %v", ids(got), want)
	}
}

func TestSearch_RecentFirstBreaksTiesByID(t *testing.T) {
	same := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := store.NewMemoryStore(store.WithClock(func() time.Time { return same }))
	for _, title := range []string{"Engineer A", "Engineer B", "Engineer C"} {
		if _, err := s.Add(context.Background(), model.Posting{Title: title, Company: "Acme"}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	got, err := NewService(s).Search(context.Background(), Filter{Sort: SortRecentFirst})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if want := []int64{3, 2, 1}; !slices.Equal(ids(got), want) {
		t.Errorf("ids = %v, want %v", ids(got), want)
	}
}

func ids(postings []model.Posting) []int64 {
	out := make([]int64, len(postings))
	for i, p := range postings {
		out[i] = p.ID
	}
	return out
}

func TestSearch(t *testing.T) {
	svc := NewService(fixture(t))

	tests := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{"engineer all recent", Filter{Text: "engineer", Location: "All", Sort: SortRecentFirst}, []int64{5, 4, 3, 1}},
		{"engineer remote recent", Filter{Text: "engineer", Location: "Remote", Sort: SortRecentFirst}, []int64{3, 1}},
		{"no filter default", Filter{}, []int64{5, 4, 3, 2, 1}},
		{"company sort", Filter{Sort: SortCompanyAsc}, []int64{1, 4, 2, 5, 3}},
		{"matches company", Filter{Text: "acme"}, []int64{4, 1}},
		{"matches description", Filter{Text: "python"}, []int64{2}},
		{"exact location", Filter{Location: "New York"}, []int64{}},
		{"no match", Filter{Text: "astronaut"}, []int64{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.Search(context.Background(), tc.filter)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if !slices.Equal(ids(got), tc.want) {
				t.Errorf("ids = %v, want %v", ids(got), tc.want)
			}
		})
	}
}

type fakeLister struct {
	postings []model.Posting
}

func (f *fakeLister) ListPostings(context.Context) ([]model.Posting, error) {
	return slices.Clone(f.postings), nil
}

func (f *fakeLister) GetPosting(_ context.Context, id int64) (model.Posting, error) {
	for _, p := range f.postings {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Posting{}, model.ErrNotFound
}

func (f *fakeLister) GetSummary(context.Context, string) (model.Summary, error) {
	return model.Summary{}, model.ErrNotFound
}

func TestSearch_RecentFirstPutsZeroTimestampsLast(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	svc := NewService(&fakeLister{postings: []model.Posting{
		{ID: 1, Title: "a"},
		{ID: 2, Title: "b", CreatedAt: now},
		{ID: 3, Title: "c"},
		{ID: 4, Title: "d", CreatedAt: now.Add(time.Hour)},
	}})

	got, err := svc.Search(context.Background(), Filter{Sort: SortRecentFirst})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if want := []int64{4, 2, 1, 3}; !slices.Equal(ids(got), want) {
		t.Errorf("ids = %v, want %v", ids(got), want)
	}
}

func TestDistinctLocations(t *testing.T) {
	s := fixture(t)
	if _, err := s.Add(context.Background(), model.Posting{Title: "x", Company: "y"}); err != nil {
		t.Fatal(err)
	}

	got, err := NewService(s).DistinctLocations(context.Background())
	if err != nil {
		t.Fatalf("DistinctLocations: %v", err)
	}
	want := []string{"Austin, TX", "New York, NY", "Remote"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestGet(t *testing.T) {
	s := fixture(t)
	sum := model.Summary{ID: "s1", SalaryRange: "not listed", JobType: model.JobTypeFullTime,
		ExperienceLevel: model.ExperienceSenior, StandoutFeatures: "x", Qualifications: "y", PostingID: 1}
	if _, err := s.CreateSummary(context.Background(), sum); err != nil {
		t.Fatal(err)
	}
	if _, err := s.LinkSummary(context.Background(), 1, sum); err != nil {
		t.Fatal(err)
	}
	svc := NewService(s)

	d, err := svc.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("Get(1): %v", err)
	}
	if d.Summary == nil || d.Summary.ID != "s1" {
		t.Errorf("expected linked summary, got %+v", d.Summary)
	}

	d, err = svc.Get(context.Background(), 2)
	if err != nil || d.Summary != nil {
		t.Errorf("Get(2) = %+v, %v; want pending posting without summary", d, err)
	}

	if _, err := svc.Get(context.Background(), 99); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Get(99) error = %v, want ErrNotFound", err)
	}
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		in      string
		want    SortOrder
		wantErr bool
	}{
		{"", SortDefault, false},
		{"default", SortDefault, false},
		{"recent", SortRecentFirst, false},
		{"Recently posted", SortRecentFirst, false},
		{"company", SortCompanyAsc, false},
		{"Company A → Z", SortCompanyAsc, false},
		{"salary", SortDefault, true},
	}
	for _, tc := range tests {
		got, err := ParseSort(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("ParseSort(%q) = %v, %v; want %v, wantErr %v", tc.in, got, err, tc.want, tc.wantErr)
		}
	}
}
