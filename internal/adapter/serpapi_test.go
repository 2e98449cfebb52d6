package adapter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/amishk599/jobscout/internal/model"
)

func TestSerpAPIAdapter_Fetch_Success(t *testing.T) {
	payload := `{
		"jobs_results": [
			{
				"title": "AI Engineer",
				"company_name": "Initech",
				"location": "Seattle, WA",
				"description": "Work on agents",
				"share_link": "https://www.google.com/search?ibp=htl;jobs#1",
				"detected_extensions": {"posted_at": "3 days ago", "schedule_type": "Full-time", "salary": "120K–150K a year"}
			},
			{
				"title": "Applied Scientist",
				"company_name": "Hooli",
				"location": "Remote",
				"description": "Research",
				"detected_extensions": {}
			}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("engine") != "google_jobs" || q.Get("api_key") != "secret" || q.Get("q") != "AI Engineer" || q.Get("location") != "Seattle" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	a := NewSerpAPIAdapter("secret", rewriteClient(srv))

	postings, err := a.Fetch(context.Background(), "AI Engineer", "Seattle", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(postings))
	}
	p := postings[0]
	if p.Company != "Initech" || p.PostedDate != "3 days ago" || p.Source != "Google Jobs (SerpAPI)" {
		t.Errorf("unexpected posting: %+v", p)
	}
	if p.JobType == nil || *p.JobType != model.JobTypeFullTime {
		t.Errorf("expected FULL_TIME, got %v", p.JobType)
	}
	if postings[1].URL != "" {
		t.Errorf("missing share link should yield empty URL, got %q", postings[1].URL)
	}
}

func TestSerpAPIAdapter_NotReadyWithoutKey(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	a := NewSerpAPIAdapter(" ", rewriteClient(srv))
	if a.Ready() == nil {
		t.Fatal("expected Ready to fail without api key")
	}
	_, err := a.Fetch(context.Background(), "go", "", 5)
	if !errors.Is(err, model.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no requests, got %d", calls.Load())
	}
}

func TestSerpAPIAdapter_Fetch_ErrorField(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"no results", `{"error": "Google hasn't returned any results for this query."}`, false},
		{"invalid key", `{"error": "Invalid API key."}`, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			postings, err := NewSerpAPIAdapter("k", rewriteClient(srv)).Fetch(context.Background(), "go", "", 5)
			if (err != nil) != tc.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tc.wantErr)
			}
			if len(postings) != 0 {
				t.Errorf("expected no postings, got %d", len(postings))
			}
		})
	}
}
