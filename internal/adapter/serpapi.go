package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/amishk599/jobscout/internal/model"
)

const (
	serpAPIBaseURL = "https://serpapi.com/search"
	serpAPISource  = "Google Jobs (SerpAPI)"
)

type serpAPIResponse struct {
	Error       string       `json:"error"`
	JobsResults []serpAPIJob `json:"jobs_results"`
}

type serpAPIJob struct {
	Title              string                    `json:"title"`
	CompanyName        string                    `json:"company_name"`
	Location           string                    `json:"location"`
	Description        string                    `json:"description"`
	ShareLink          string                    `json:"share_link"`
	DetectedExtensions serpAPIDetectedExtensions `json:"detected_extensions"`
}

type serpAPIDetectedExtensions struct {
	PostedAt     string `json:"posted_at"`
	ScheduleType string `json:"schedule_type"`
	Salary       string `json:"salary"`
}

// SerpAPIAdapter queries Google Jobs through SerpAPI. It needs an API key.
type SerpAPIAdapter struct {
	apiKey string
	client *http.Client
}

// NewSerpAPIAdapter creates a new SerpAPI Google Jobs adapter.
func NewSerpAPIAdapter(apiKey string, client *http.Client) *SerpAPIAdapter {
	return &SerpAPIAdapter{apiKey: apiKey, client: client}
}

func (a *SerpAPIAdapter) Name() string { return serpAPISource }

func (a *SerpAPIAdapter) Ready() error {
	if strings.TrimSpace(a.apiKey) == "" {
		return errors.New("serpapi: api key is not configured")
	}
	return nil
}

func (a *SerpAPIAdapter) Fetch(ctx context.Context, keywords, location string, limit int) ([]model.Posting, error) {
	if limit <= 0 {
		return nil, nil
	}
	if err := a.Ready(); err != nil {
		return nil, model.Unavailable(serpAPISource, err)
	}

	params := url.Values{}
	params.Set("engine", "google_jobs")
	params.Set("q", keywords)
	if location != "" {
		params.Set("location", location)
	}
	params.Set("api_key", a.apiKey)
	params.Set("num", strconv.Itoa(limit))

	var sr serpAPIResponse
	if err := getJSON(ctx, a.client, serpAPIBaseURL+"?"+params.Encode(), &sr); err != nil {
		return nil, model.Unavailable(serpAPISource, err)
	}
	if sr.Error != "" && len(sr.JobsResults) == 0 {
		// An empty search is reported through the error field.
		if strings.Contains(sr.Error, "hasn't returned any results") {
			return nil, nil
		}
		return nil, model.Unavailable(serpAPISource, fmt.Errorf("serpapi: %s", sr.Error))
	}

	postings := make([]model.Posting, 0, min(limit, len(sr.JobsResults)))
	for _, sj := range sr.JobsResults {
		postings = append(postings, model.Posting{
			Title:       sj.Title,
			Company:     sj.CompanyName,
			Location:    sj.Location,
			Description: sj.Description,
			URL:         absoluteURL(serpAPIBaseURL, sj.ShareLink),
			PostedDate:  sj.DetectedExtensions.PostedAt,
			Source:      serpAPISource,
			SalaryRange: sj.DetectedExtensions.Salary,
			JobType:     jobTypeFromText(sj.DetectedExtensions.ScheduleType),
		})
	}

	return truncate(postings, limit), nil
}
