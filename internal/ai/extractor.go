package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/google/uuid"

	"github.com/amishk599/jobscout/internal/model"
)

// LLMExtractor implements model.Extractor using an LLM with structured output.
type LLMExtractor struct {
	provider LLMProvider
	tmpl     *template.Template
	logger   *slog.Logger
}

// NewLLMExtractor creates an extractor that renders tmpl for each description.
func NewLLMExtractor(provider LLMProvider, tmpl *template.Template, logger *slog.Logger) *LLMExtractor {
	return &LLMExtractor{
		provider: provider,
		tmpl:     tmpl,
		logger:   logger,
	}
}

// Extract returns a validated Summary with a fresh ID. Every failure,
// including an empty description, matches model.ErrExtractionFailed.
func (e *LLMExtractor) Extract(ctx context.Context, description string) (model.Summary, error) {
	if strings.TrimSpace(description) == "" {
		return model.Summary{}, model.ExtractionFailed(errors.New("empty description"))
	}

	var promptBuf bytes.Buffer
	if err := e.tmpl.Execute(&promptBuf, struct{ Description string }{
		Description: description,
	}); err != nil {
		return model.Summary{}, model.ExtractionFailed(fmt.Errorf("render prompt: %w", err))
	}

	raw, err := e.provider.Complete(ctx, promptBuf.String(), summaryOutput)
	if err != nil {
		return model.Summary{}, model.ExtractionFailed(fmt.Errorf("llm complete: %w", err))
	}

	sum, err := parseSummary(raw)
	if err != nil {
		if e.logger != nil {
			e.logger.Debug("rejected llm output", "error", err, "raw", raw)
		}
		return model.Summary{}, model.ExtractionFailed(fmt.Errorf("parse summary: %w", err))
	}

	sum.ID = uuid.NewString()
	return sum, nil
}

// rawSummary is the JSON shape returned by the LLM (matches summarySchema).
type rawSummary struct {
	SalaryRange      string `json:"salary_range"`
	JobType          string `json:"job_type"`
	ExperienceLevel  string `json:"experience_level"`
	StandoutFeatures string `json:"standout_features"`
	Qualifications   string `json:"qualifications"`
}

// parseSummary decodes and validates the LLM reply. Enum values must be
// exact, text fields non-empty, and any casing of "not listed" becomes
// model.SalaryNotListed.
func parseSummary(raw string) (model.Summary, error) {
	raw = stripCodeFence(raw)

	var rs rawSummary
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rs); err != nil {
		return model.Summary{}, fmt.Errorf("unmarshal summary JSON: %w", err)
	}

	sum := model.Summary{
		SalaryRange:      strings.TrimSpace(rs.SalaryRange),
		JobType:          model.JobType(strings.TrimSpace(rs.JobType)),
		ExperienceLevel:  model.ExperienceLevel(strings.TrimSpace(rs.ExperienceLevel)),
		StandoutFeatures: strings.TrimSpace(rs.StandoutFeatures),
		Qualifications:   strings.TrimSpace(rs.Qualifications),
	}

	if !sum.JobType.Valid() {
		return model.Summary{}, fmt.Errorf("invalid job_type %q", rs.JobType)
	}
	if !sum.ExperienceLevel.Valid() {
		return model.Summary{}, fmt.Errorf("invalid experience_level %q", rs.ExperienceLevel)
	}
	switch {
	case sum.SalaryRange == "":
		return model.Summary{}, errors.New("salary_range is empty")
	case sum.StandoutFeatures == "":
		return model.Summary{}, errors.New("standout_features is empty")
	case sum.Qualifications == "":
		return model.Summary{}, errors.New("qualifications is empty")
	}
	if strings.EqualFold(sum.SalaryRange, model.SalaryNotListed) {
		sum.SalaryRange = model.SalaryNotListed
	}

	return sum, nil
}

// stripCodeFence removes a surrounding ```json fence, which local models
// sometimes add even when a format is requested.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
