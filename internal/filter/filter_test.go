package filter

import (
	"testing"

	"github.com/amishk599/jobscout/internal/model"
)

func posting(title, location string) model.Posting {
	return model.Posting{Title: title, Location: location}
}

func TestTitleAndLocationFilter_Match(t *testing.T) {
	tests := []struct {
		name          string
		titleKeywords []string
		locations     []string
		posting       model.Posting
		wantMatch     bool
	}{
		{
			name:          "matches both title and location",
			titleKeywords: []string{"software engineer", "backend"},
			locations:     []string{"United States", "Remote"},
			posting:       posting("Software Engineer", "Remote - US"),
			wantMatch:     true,
		},
		{
			name:          "title match but location miss",
			titleKeywords: []string{"software engineer"},
			locations:     []string{"United States", "Remote"},
			posting:       posting("Software Engineer", "London, UK"),
			wantMatch:     false,
		},
		{
			name:          "case insensitive matching",
			titleKeywords: []string{"FULLSTACK"},
			locations:     []string{"us"},
			posting:       posting("Fullstack Developer", "US Remote"),
			wantMatch:     true,
		},
		{
			name:          "no keywords match",
			titleKeywords: []string{"devops", "sre"},
			locations:     []string{"Remote"},
			posting:       posting("Frontend Engineer", "New York, NY"),
			wantMatch:     false,
		},
		{
			name:          "empty keyword lists pass all",
			titleKeywords: []string{},
			locations:     []string{},
			posting:       posting("Any Role", "Anywhere"),
			wantMatch:     true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewTitleAndLocationFilter(tt.titleKeywords, tt.locations)
			got := f.Match(tt.posting)
			if got != tt.wantMatch {
				t.Errorf("Match() = %v, want %v", got, tt.wantMatch)
			}
		})
	}
}

func TestForQuery_Match(t *testing.T) {
	tests := []struct {
		name      string
		keywords  string
		location  string
		posting   model.Posting
		wantMatch bool
	}{
		{"all terms present", "AI Engineer", "United States", posting("Senior AI Platform Engineer", "San Francisco, United States"), true},
		{"one term missing", "AI Engineer", "", posting("Data Engineer", "Remote"), false},
		{"remote passes any location", "engineer", "United States", posting("Engineer", "Remote, EU"), true},
		{"location miss", "engineer", "United States", posting("Engineer", "Berlin, Germany"), false},
		{"empty location matches everywhere", "engineer", "  ", posting("Engineer", "Berlin, Germany"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ForQuery(tt.keywords, tt.location).Match(tt.posting)
			if got != tt.wantMatch {
				t.Errorf("Match() = %v, want %v", got, tt.wantMatch)
			}
		})
	}
}
