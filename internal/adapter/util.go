package adapter

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/amishk599/jobscout/internal/model"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// extractText converts an HTML or HTML-encoded string to plain text.
// It first unescapes HTML entities (handles Greenhouse's double-encoding;
// no-op on already-real HTML), strips all tags, then collapses whitespace.
func extractText(content string) string {
	unescaped := html.UnescapeString(content)
	plain := htmlTagRegex.ReplaceAllString(unescaped, "")
	return strings.Join(strings.Fields(plain), " ")
}

// absoluteURL resolves href against base. Returns "" when href is empty or
// cannot be resolved into an absolute http(s) link.
func absoluteURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if !ref.IsAbs() {
		b, err := url.Parse(base)
		if err != nil {
			return ""
		}
		ref = b.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return ""
	}
	return ref.String()
}

// salaryRange formats a numeric min/max pair. Zero bounds are treated as unknown.
func salaryRange(min, max float64) string {
	switch {
	case min > 0 && max > 0 && max != min:
		return fmt.Sprintf("$%s-%s", compactAmount(min), compactAmount(max))
	case min > 0:
		return "$" + compactAmount(min)
	case max > 0:
		return "$" + compactAmount(max)
	}
	return ""
}

func compactAmount(v float64) string {
	if v >= 1000 {
		return fmt.Sprintf("%gk", float64(int(v/100))/10)
	}
	return fmt.Sprintf("%g", v)
}

// truncate caps postings at limit. A non-positive limit yields nil.
func truncate(postings []model.Posting, limit int) []model.Posting {
	if limit <= 0 {
		return nil
	}
	if len(postings) > limit {
		return postings[:limit]
	}
	return postings
}

// jobTypeFromText maps a source's free-form employment label ("Full-time",
// "full_time", "Contract to hire") to a JobType. Unknown labels yield nil.
func jobTypeFromText(label string) *model.JobType {
	s := strings.ToLower(strings.NewReplacer("-", " ", "_", " ").Replace(label))
	s = strings.Join(strings.Fields(s), " ")

	var jt model.JobType
	switch {
	case s == "":
		return nil
	case strings.Contains(s, "contract to hire"), strings.Contains(s, "temp to hire"):
		jt = model.JobTypeContractToHire
	case strings.Contains(s, "contract"):
		jt = model.JobTypeContract
	case strings.Contains(s, "full time"), s == "permanent":
		jt = model.JobTypeFullTime
	default:
		return nil
	}
	return &jt
}
