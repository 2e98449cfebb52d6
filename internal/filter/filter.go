package filter

import (
	"strings"

	"github.com/amishk599/jobscout/internal/model"
)

// TitleAndLocationFilter matches postings whose title contains any of the title
// keywords and whose location contains any of the location keywords.
// Matching is case-insensitive. Empty keyword lists are treated as "match all".
type TitleAndLocationFilter struct {
	titleKeywords []string
	locations     []string
	allTerms      bool
}

// NewTitleAndLocationFilter returns a filter that requires both a title keyword
// match and a location keyword match (case-insensitive substring).
func NewTitleAndLocationFilter(titleKeywords []string, locations []string) *TitleAndLocationFilter {
	return &TitleAndLocationFilter{
		titleKeywords: titleKeywords,
		locations:     locations,
	}
}

// ForQuery builds the filter board adapters apply to a whole board: the title
// must contain every keyword term, and the location must contain the query
// location or "remote". An empty location matches everywhere.
func ForQuery(keywords, location string) *TitleAndLocationFilter {
	var locations []string
	if loc := strings.TrimSpace(location); loc != "" {
		locations = []string{loc, "remote"}
	}
	return &TitleAndLocationFilter{
		titleKeywords: strings.Fields(keywords),
		locations:     locations,
		allTerms:      true,
	}
}

// Match reports whether p passes both the title and the location check.
func (f *TitleAndLocationFilter) Match(p model.Posting) bool {
	titleLower := strings.ToLower(p.Title)
	locationLower := strings.ToLower(p.Location)

	if len(f.titleKeywords) > 0 {
		if f.allTerms {
			if !containsAll(titleLower, f.titleKeywords) {
				return false
			}
		} else if !containsAny(titleLower, f.titleKeywords) {
			return false
		}
	}

	if len(f.locations) > 0 && !containsAny(locationLower, f.locations) {
		return false
	}

	return true
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func containsAll(s string, keywords []string) bool {
	for _, kw := range keywords {
		if !strings.Contains(s, strings.ToLower(kw)) {
			return false
		}
	}
	return true
}
