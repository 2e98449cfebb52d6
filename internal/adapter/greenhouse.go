package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/amishk599/jobscout/internal/filter"
	"github.com/amishk599/jobscout/internal/model"
)

const greenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"

// greenhouseJob represents a single job in the Greenhouse API response.
type greenhouseJob struct {
	ID             int64              `json:"id"`
	Title          string             `json:"title"`
	Location       greenhouseLocation `json:"location"`
	AbsoluteURL    string             `json:"absolute_url"`
	Content        string             `json:"content"`
	FirstPublished string             `json:"first_published"`
	UpdatedAt      string             `json:"updated_at"`
}

type greenhouseLocation struct {
	Name string `json:"name"`
}

// greenhouseResponse is the top-level Greenhouse jobs API response.
type greenhouseResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

// GreenhouseAdapter searches one company's Greenhouse public job board.
type GreenhouseAdapter struct {
	boardToken  string
	companyName string
	client      *http.Client
}

// NewGreenhouseAdapter creates a new adapter for a Greenhouse board.
func NewGreenhouseAdapter(boardToken string, companyName string, client *http.Client) *GreenhouseAdapter {
	return &GreenhouseAdapter{
		boardToken:  boardToken,
		companyName: companyName,
		client:      client,
	}
}

func (a *GreenhouseAdapter) Name() string {
	return fmt.Sprintf("Greenhouse (%s)", a.companyName)
}

func (a *GreenhouseAdapter) Ready() error {
	if a.boardToken == "" {
		return errors.New("greenhouse: board token is required")
	}
	return nil
}

// Fetch downloads the whole board with descriptions and keeps the postings
// whose title and location match the query.
func (a *GreenhouseAdapter) Fetch(ctx context.Context, keywords, location string, limit int) ([]model.Posting, error) {
	if limit <= 0 {
		return nil, nil
	}

	url := fmt.Sprintf("%s/%s/jobs?content=true", greenhouseBaseURL, a.boardToken)

	var ghResp greenhouseResponse
	if err := getJSON(ctx, a.client, url, &ghResp); err != nil {
		return nil, model.Unavailable(a.Name(), fmt.Errorf("greenhouse fetch for %s: %w", a.boardToken, err))
	}

	match := filter.ForQuery(keywords, location)
	postings := make([]model.Posting, 0, limit)
	for _, gj := range ghResp.Jobs {
		p := model.Posting{
			Title:       gj.Title,
			Company:     a.companyName,
			Location:    gj.Location.Name,
			Description: extractText(gj.Content),
			URL:         absoluteURL(greenhouseBaseURL, gj.AbsoluteURL),
			PostedDate:  gj.FirstPublished,
			Source:      a.Name(),
		}
		if p.PostedDate == "" {
			p.PostedDate = gj.UpdatedAt
		}
		if !match.Match(p) {
			continue
		}
		postings = append(postings, p)
	}

	return truncate(postings, limit), nil
}
