package adapter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amishk599/jobscout/internal/model"
)

const remoteOKPayload = `[
	{"last_updated": 1770000000, "legal": "API terms of service"},
	{
		"id": "1",
		"position": "Senior AI Engineer",
		"company": "Acme",
		"description": "<p>Ship models</p>",
		"tags": ["python", "llm"],
		"url": "https://remoteok.com/remote-jobs/1",
		"date": "2026-02-10T09:00:00+00:00",
		"salary_min": 150000,
		"salary_max": 200000
	},
	{
		"id": "2",
		"position": "Platform Developer",
		"company": "Globex",
		"description": "Infra",
		"tags": ["golang", "ai"],
		"url": "/remote-jobs/2"
	},
	{
		"id": "3",
		"position": "Designer",
		"company": "Initech",
		"tags": ["figma"],
		"url": "https://remoteok.com/remote-jobs/3"
	}
]`

func newRemoteOKTestAdapter(srv *httptest.Server) *RemoteOKAdapter {
	return NewRemoteOKAdapter(rewriteClient(srv))
}

func TestRemoteOKAdapter_Fetch_MatchesPositionOrTags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(remoteOKPayload))
	}))
	defer srv.Close()

	a := newRemoteOKTestAdapter(srv)

	postings, err := a.Fetch(context.Background(), "AI Engineer", "Berlin", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings, got %d: %+v", len(postings), postings)
	}

	p := postings[0]
	if p.Title != "Senior AI Engineer" || p.Company != "Acme" {
		t.Errorf("unexpected first posting: %+v", p)
	}
	if p.Location != "Remote" {
		t.Errorf("expected location Remote, got %s", p.Location)
	}
	if p.Source != "Remote OK" {
		t.Errorf("expected source Remote OK, got %s", p.Source)
	}
	if p.Description != "Ship models" {
		t.Errorf("expected stripped description, got %q", p.Description)
	}
	if p.SalaryRange != "$150k-200k" {
		t.Errorf("expected salary $150k-200k, got %q", p.SalaryRange)
	}

	// matched through the "ai" tag; relative url resolved
	if postings[1].Title != "Platform Developer" {
		t.Errorf("expected tag match, got %+v", postings[1])
	}
	if postings[1].URL != "https://remoteok.com/remote-jobs/2" {
		t.Errorf("expected absolute URL, got %s", postings[1].URL)
	}
}

func TestRemoteOKAdapter_Fetch_RespectsLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(remoteOKPayload))
	}))
	defer srv.Close()

	postings, err := newRemoteOKTestAdapter(srv).Fetch(context.Background(), "AI Engineer", "", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}
}

func TestRemoteOKAdapter_Fetch_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newRemoteOKTestAdapter(srv).Fetch(context.Background(), "go", "", 10)
	if !errors.Is(err, model.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
	var se *model.SourceError
	if !errors.As(err, &se) || se.Source != "Remote OK" {
		t.Errorf("expected SourceError for Remote OK, got %v", err)
	}
}
