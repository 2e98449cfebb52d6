package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/query"
)

func TestWordWrap(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"", 10, ""},
		{"one two three", 7, "one two\nthree"},
		{"  spaced   out  ", 20, "spaced out"},
		{"supercalifragilistic word", 5, "supercalifragilistic\nword"},
	}
	for _, tc := range tests {
		if got := WordWrap(tc.text, tc.width); got != tc.want {
			t.Errorf("WordWrap(%q, %d) = %q, want %q", tc.text, tc.width, got, tc.want)
		}
	}
}

func TestPostings(t *testing.T) {
	var buf bytes.Buffer
	Postings(&buf, []model.Posting{
		{ID: 1, Title: "Backend Engineer", Company: "Acme", Location: "Remote", Source: "Remote OK", SalaryRange: "$150k-190k", SummaryID: "s"},
		{ID: 2, Title: "Data Scientist", Company: "Globex", Source: "Adzuna"},
	})
	out := buf.String()

	for _, want := range []string{"Backend Engineer", "Acme", "$150k-190k", "enriched", "Data Scientist", "n/a", "pending", "2 postings"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	Postings(&buf, nil)
	if !strings.Contains(buf.String(), "no postings") {
		t.Errorf("empty output = %q", buf.String())
	}
}

func TestDetail(t *testing.T) {
	var buf bytes.Buffer
	Detail(&buf, query.Detail{
		Posting: model.Posting{ID: 3, Title: "Platform Engineer", Company: "Initech", Description: "Run the platform"},
		Summary: &model.Summary{
			SalaryRange:      model.SalaryNotListed,
			JobType:          model.JobTypeContractToHire,
			ExperienceLevel:  model.ExperienceSenior,
			StandoutFeatures: "4-day week",
			Qualifications:   "Kubernetes, Go",
		},
	}, 80)
	out := buf.String()

	for _, want := range []string{"Platform Engineer", "Initech", "not listed", "Contract to Hire", "Senior Level", "4-day week", "Kubernetes, Go", "Run the platform"} {
		if !strings.Contains(out, want) {
			t.Errorf("detail missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	Detail(&buf, query.Detail{Posting: model.Posting{Title: "x"}}, 80)
	if !strings.Contains(buf.String(), "pending enrichment") {
		t.Errorf("pending detail = %q", buf.String())
	}
}

func TestSources(t *testing.T) {
	var buf bytes.Buffer
	Sources(&buf, []SourceStatus{
		{Name: "Remote OK", Active: true},
		{Name: "Adzuna", Reason: "app_id and app_key are required"},
	})
	out := buf.String()
	if !strings.Contains(out, "skipped: app_id and app_key are required") {
		t.Errorf("missing skip reason:\n%s", out)
	}
	if !strings.Contains(out, "Total: 2 sources (1 active, 1 skipped)") {
		t.Errorf("missing totals:\n%s", out)
	}
}

func TestCompany(t *testing.T) {
	var buf bytes.Buffer
	Company(&buf, model.CompanyProfile{
		Name:              "Acme",
		Overview:          "Makes anvils",
		ProductsServices:  "Anvils",
		Culture:           "Hands-on",
		PotentialConcerns: "Frequent product recalls",
	}, 80)
	out := buf.String()

	for _, want := range []string{"Acme", "Overview", "Makes anvils", "Why It Might Appeal", "Frequent product recalls", "n/a"} {
		if !strings.Contains(out, want) {
			t.Errorf("company output missing %q:\n%s", want, out)
		}
	}
}
