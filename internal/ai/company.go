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

	"github.com/amishk599/jobscout/internal/model"
)

// LLMCompanyReviewer implements model.CompanyReviewer.
type LLMCompanyReviewer struct {
	provider LLMProvider
	tmpl     *template.Template
	logger   *slog.Logger
}

func NewLLMCompanyReviewer(provider LLMProvider, tmpl *template.Template, logger *slog.Logger) *LLMCompanyReviewer {
	return &LLMCompanyReviewer{
		provider: provider,
		tmpl:     tmpl,
		logger:   logger,
	}
}

// Review asks the model for a profile of company. The result is not
// persisted and carries no ID. Failures match model.ErrExtractionFailed.
func (r *LLMCompanyReviewer) Review(ctx context.Context, company string) (model.CompanyProfile, error) {
	name := strings.TrimSpace(company)
	if name == "" {
		return model.CompanyProfile{}, model.ExtractionFailed(errors.New("empty company name"))
	}

	var promptBuf bytes.Buffer
	if err := r.tmpl.Execute(&promptBuf, struct{ Company string }{Company: name}); err != nil {
		return model.CompanyProfile{}, model.ExtractionFailed(fmt.Errorf("render prompt: %w", err))
	}

	raw, err := r.provider.Complete(ctx, promptBuf.String(), companyOutput)
	if err != nil {
		return model.CompanyProfile{}, model.ExtractionFailed(fmt.Errorf("llm complete: %w", err))
	}

	p, err := parseCompany(raw)
	if err != nil {
		if r.logger != nil {
			r.logger.Debug("rejected llm output", "company", name, "error", err, "raw", raw)
		}
		return model.CompanyProfile{}, model.ExtractionFailed(fmt.Errorf("parse company profile: %w", err))
	}
	p.Name = name
	return p, nil
}

type rawCompany struct {
	Overview          string `json:"overview"`
	ProductsServices  string `json:"products_services"`
	SizeLocations     string `json:"size_locations"`
	Culture           string `json:"culture"`
	RecentNews        string `json:"recent_news"`
	ApplicantAppeal   string `json:"applicant_appeal"`
	PotentialConcerns string `json:"potential_concerns"`
}

func parseCompany(raw string) (model.CompanyProfile, error) {
	var rc rawCompany
	dec := json.NewDecoder(strings.NewReader(stripCodeFence(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rc); err != nil {
		return model.CompanyProfile{}, fmt.Errorf("unmarshal company JSON: %w", err)
	}

	p := model.CompanyProfile{
		Overview:          strings.TrimSpace(rc.Overview),
		ProductsServices:  strings.TrimSpace(rc.ProductsServices),
		SizeLocations:     strings.TrimSpace(rc.SizeLocations),
		Culture:           strings.TrimSpace(rc.Culture),
		RecentNews:        strings.TrimSpace(rc.RecentNews),
		ApplicantAppeal:   strings.TrimSpace(rc.ApplicantAppeal),
		PotentialConcerns: strings.TrimSpace(rc.PotentialConcerns),
	}
	sections := []string{p.Overview, p.ProductsServices, p.SizeLocations, p.Culture,
		p.RecentNews, p.ApplicantAppeal, p.PotentialConcerns}
	for i, v := range sections {
		if v == "" {
			return model.CompanyProfile{}, fmt.Errorf("%s is empty", companyFields[i])
		}
	}
	return p, nil
}
