package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/amishk599/jobscout/internal/filter"
	"github.com/amishk599/jobscout/internal/model"
)

const leverBaseURL = "https://api.lever.co/v0/postings"

// leverCategories represents the categories object in a Lever job.
type leverCategories struct {
	Team         string   `json:"team"`
	Location     string   `json:"location"`
	Commitment   string   `json:"commitment"`
	AllLocations []string `json:"allLocations"`
}

type leverSalaryRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// leverJob represents a single job in the Lever API response.
type leverJob struct {
	ID               string            `json:"id"`
	Text             string            `json:"text"`
	Description      string            `json:"description"`
	DescriptionPlain string            `json:"descriptionPlain"`
	Categories       leverCategories   `json:"categories"`
	CreatedAt        int64             `json:"createdAt"`
	HostedURL        string            `json:"hostedUrl"`
	SalaryRange      *leverSalaryRange `json:"salaryRange"`
}

// LeverAdapter searches one company's Lever public postings.
type LeverAdapter struct {
	companySlug string
	companyName string
	client      *http.Client
}

// NewLeverAdapter creates a new adapter for a Lever board.
func NewLeverAdapter(companySlug string, companyName string, client *http.Client) *LeverAdapter {
	return &LeverAdapter{
		companySlug: companySlug,
		companyName: companyName,
		client:      client,
	}
}

func (a *LeverAdapter) Name() string {
	return fmt.Sprintf("Lever (%s)", a.companyName)
}

func (a *LeverAdapter) Ready() error {
	if a.companySlug == "" {
		return errors.New("lever: company slug is required")
	}
	return nil
}

// Fetch downloads the company's postings and keeps those matching the query.
func (a *LeverAdapter) Fetch(ctx context.Context, keywords, location string, limit int) ([]model.Posting, error) {
	if limit <= 0 {
		return nil, nil
	}

	url := fmt.Sprintf("%s/%s?mode=json", leverBaseURL, a.companySlug)

	var leverJobs []leverJob
	if err := getJSON(ctx, a.client, url, &leverJobs); err != nil {
		return nil, model.Unavailable(a.Name(), fmt.Errorf("lever fetch for %s: %w", a.companySlug, err))
	}

	match := filter.ForQuery(keywords, location)
	postings := make([]model.Posting, 0, limit)
	for _, lj := range leverJobs {
		// Prefer allLocations if available, fallback to location
		loc := lj.Categories.Location
		if len(lj.Categories.AllLocations) > 0 {
			loc = strings.Join(lj.Categories.AllLocations, ", ")
		}

		description := lj.DescriptionPlain
		if description == "" {
			description = lj.Description
		}

		p := model.Posting{
			Title:       lj.Text,
			Company:     a.companyName,
			Location:    loc,
			Description: extractText(description),
			URL:         absoluteURL(leverBaseURL, lj.HostedURL),
			Source:      a.Name(),
			JobType:     jobTypeFromText(lj.Categories.Commitment),
		}
		// createdAt is Unix milliseconds
		if lj.CreatedAt > 0 {
			p.PostedDate = time.UnixMilli(lj.CreatedAt).UTC().Format(time.RFC3339)
		}
		if lj.SalaryRange != nil {
			p.SalaryRange = salaryRange(lj.SalaryRange.Min, lj.SalaryRange.Max)
		}

		if !match.Match(p) {
			continue
		}
		postings = append(postings, p)
	}

	return truncate(postings, limit), nil
}
