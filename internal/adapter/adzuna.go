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
	adzunaBaseURL   = "https://api.adzuna.com/v1/api/jobs"
	adzunaSource    = "Adzuna"
	adzunaMaxLimit  = 50
	adzunaDefaultCC = "us"
)

type adzunaResponse struct {
	Results []adzunaJob `json:"results"`
}

type adzunaJob struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Company      adzunaLabel `json:"company"`
	Location     adzunaLabel `json:"location"`
	SalaryMin    float64     `json:"salary_min"`
	SalaryMax    float64     `json:"salary_max"`
	RedirectURL  string      `json:"redirect_url"`
	Created      string      `json:"created"`
	ContractTime string      `json:"contract_time"`
	ContractType string      `json:"contract_type"`
}

type adzunaLabel struct {
	DisplayName string `json:"display_name"`
}

// AdzunaAdapter searches the Adzuna jobs API for one country.
type AdzunaAdapter struct {
	appID   string
	appKey  string
	country string
	client  *http.Client
}

// NewAdzunaAdapter creates a new Adzuna adapter. An empty country defaults to "us".
func NewAdzunaAdapter(appID, appKey, country string, client *http.Client) *AdzunaAdapter {
	if country == "" {
		country = adzunaDefaultCC
	}
	return &AdzunaAdapter{
		appID:   appID,
		appKey:  appKey,
		country: strings.ToLower(country),
		client:  client,
	}
}

func (a *AdzunaAdapter) Name() string { return adzunaSource }

func (a *AdzunaAdapter) Ready() error {
	if a.appID == "" || a.appKey == "" {
		return errors.New("adzuna: app_id and app_key are required")
	}
	return nil
}

func (a *AdzunaAdapter) Fetch(ctx context.Context, keywords, location string, limit int) ([]model.Posting, error) {
	if limit <= 0 {
		return nil, nil
	}
	if err := a.Ready(); err != nil {
		return nil, model.Unavailable(adzunaSource, err)
	}

	params := url.Values{}
	params.Set("app_id", a.appID)
	params.Set("app_key", a.appKey)
	params.Set("results_per_page", strconv.Itoa(min(limit, adzunaMaxLimit)))
	params.Set("what", keywords)
	if location != "" {
		params.Set("where", location)
	}
	params.Set("sort_by", "date")
	params.Set("content-type", "application/json")

	endpoint := fmt.Sprintf("%s/%s/search/1?%s", adzunaBaseURL, a.country, params.Encode())

	var ar adzunaResponse
	if err := getJSON(ctx, a.client, endpoint, &ar); err != nil {
		return nil, model.Unavailable(adzunaSource, fmt.Errorf("adzuna search in %s: %w", a.country, err))
	}

	postings := make([]model.Posting, 0, len(ar.Results))
	for _, aj := range ar.Results {
		jobType := jobTypeFromText(aj.ContractType)
		if jobType == nil {
			jobType = jobTypeFromText(aj.ContractTime)
		}
		postings = append(postings, model.Posting{
			Title:       extractText(aj.Title),
			Company:     aj.Company.DisplayName,
			Location:    aj.Location.DisplayName,
			Description: extractText(aj.Description),
			URL:         absoluteURL(adzunaBaseURL, aj.RedirectURL),
			PostedDate:  aj.Created,
			Source:      adzunaSource,
			SalaryRange: salaryRange(aj.SalaryMin, aj.SalaryMax),
			JobType:     jobType,
		})
	}

	return truncate(postings, limit), nil
}
