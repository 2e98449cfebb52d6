package adapter

import (
	"context"
	"net/http"
	"strings"

	"github.com/amishk599/jobscout/internal/model"
)

const (
	remoteOKBaseURL = "https://remoteok.com/api"
	remoteOKSource  = "Remote OK"
)

// remoteOKJob represents a single job in the Remote OK feed. The first
// element of the feed is a legal notice and decodes into a zero value.
type remoteOKJob struct {
	ID          string   `json:"id"`
	Position    string   `json:"position"`
	Company     string   `json:"company"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	URL         string   `json:"url"`
	Date        string   `json:"date"`
	SalaryMin   float64  `json:"salary_min"`
	SalaryMax   float64  `json:"salary_max"`
}

// RemoteOKAdapter searches the Remote OK public JSON feed. The feed is not
// searchable server side, so matching happens here.
type RemoteOKAdapter struct {
	client *http.Client
}

// NewRemoteOKAdapter creates a new adapter for the Remote OK feed.
func NewRemoteOKAdapter(client *http.Client) *RemoteOKAdapter {
	return &RemoteOKAdapter{client: client}
}

func (a *RemoteOKAdapter) Name() string { return remoteOKSource }

// Ready always succeeds; the feed needs no credentials.
func (a *RemoteOKAdapter) Ready() error { return nil }

// Fetch returns up to limit remote postings whose position contains the
// keywords, or whose tags contain any keyword term. location is ignored
// because every listing is remote.
func (a *RemoteOKAdapter) Fetch(ctx context.Context, keywords, location string, limit int) ([]model.Posting, error) {
	if limit <= 0 {
		return nil, nil
	}

	var feed []remoteOKJob
	if err := getJSON(ctx, a.client, remoteOKBaseURL, &feed); err != nil {
		return nil, model.Unavailable(remoteOKSource, err)
	}
	if len(feed) > 0 {
		feed = feed[1:]
	}

	query := strings.ToLower(strings.TrimSpace(keywords))
	terms := strings.Fields(query)

	postings := make([]model.Posting, 0, limit)
	for _, rj := range feed {
		if len(postings) >= limit {
			break
		}
		if !remoteOKMatches(rj, query, terms) {
			continue
		}

		postings = append(postings, model.Posting{
			Title:       rj.Position,
			Company:     rj.Company,
			Location:    "Remote",
			Description: extractText(rj.Description),
			URL:         absoluteURL(remoteOKBaseURL, rj.URL),
			PostedDate:  rj.Date,
			Source:      remoteOKSource,
			SalaryRange: salaryRange(rj.SalaryMin, rj.SalaryMax),
		})
	}

	return postings, nil
}

func remoteOKMatches(rj remoteOKJob, query string, terms []string) bool {
	if rj.Position == "" {
		return false
	}
	if strings.Contains(strings.ToLower(rj.Position), query) {
		return true
	}
	tags := strings.ToLower(strings.Join(rj.Tags, " "))
	for _, term := range terms {
		if strings.Contains(tags, term) {
			return true
		}
	}
	return false
}
