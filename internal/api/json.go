package api

import (
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

type postingJSON struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Company         string    `json:"company"`
	Location        string    `json:"location"`
	Description     string    `json:"description"`
	URL             string    `json:"url"`
	PostedDate      string    `json:"posted_date"`
	Source          string    `json:"source"`
	SalaryRange     string    `json:"salary_range,omitempty"`
	JobType         string    `json:"job_type,omitempty"`
	ExperienceLevel string    `json:"experience_level,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	SummaryID       string    `json:"summary_id,omitempty"`
	Enriched        bool      `json:"enriched"`
}

type summaryJSON struct {
	ID               string    `json:"id"`
	SalaryRange      string    `json:"salary_range"`
	JobType          string    `json:"job_type"`
	JobTypeLabel     string    `json:"job_type_label"`
	ExperienceLevel  string    `json:"experience_level"`
	ExperienceLabel  string    `json:"experience_level_label"`
	StandoutFeatures string    `json:"standout_features"`
	Qualifications   string    `json:"qualifications"`
	CreatedAt        time.Time `json:"created_at"`
}

type detailJSON struct {
	Posting postingJSON  `json:"posting"`
	Summary *summaryJSON `json:"summary"`
}

type companyJSON struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Overview          string    `json:"overview"`
	ProductsServices  string    `json:"products_services"`
	SizeLocations     string    `json:"size_locations"`
	Culture           string    `json:"culture"`
	RecentNews        string    `json:"recent_news"`
	ApplicantAppeal   string    `json:"applicant_appeal"`
	PotentialConcerns string    `json:"potential_concerns"`
	CreatedAt         time.Time `json:"created_at"`
}

func toPostingJSON(p model.Posting) postingJSON {
	out := postingJSON{
		ID:          p.ID,
		Title:       p.Title,
		Company:     p.Company,
		Location:    p.Location,
		Description: p.Description,
		URL:         p.URL,
		PostedDate:  p.PostedDate,
		Source:      p.Source,
		SalaryRange: p.SalaryRange,
		CreatedAt:   p.CreatedAt,
		SummaryID:   p.SummaryID,
		Enriched:    !p.Pending(),
	}
	if p.JobType != nil {
		out.JobType = string(*p.JobType)
	}
	if p.ExperienceLevel != nil {
		out.ExperienceLevel = string(*p.ExperienceLevel)
	}
	return out
}

func toSummaryJSON(s model.Summary) summaryJSON {
	return summaryJSON{
		ID:               s.ID,
		SalaryRange:      s.SalaryRange,
		JobType:          string(s.JobType),
		JobTypeLabel:     s.JobType.DisplayName(),
		ExperienceLevel:  string(s.ExperienceLevel),
		ExperienceLabel:  s.ExperienceLevel.DisplayName(),
		StandoutFeatures: s.StandoutFeatures,
		Qualifications:   s.Qualifications,
		CreatedAt:        s.CreatedAt,
	}
}

func toCompanyJSON(p model.CompanyProfile) companyJSON {
	return companyJSON{
		ID:                p.ID,
		Name:              p.Name,
		Overview:          p.Overview,
		ProductsServices:  p.ProductsServices,
		SizeLocations:     p.SizeLocations,
		Culture:           p.Culture,
		RecentNews:        p.RecentNews,
		ApplicantAppeal:   p.ApplicantAppeal,
		PotentialConcerns: p.PotentialConcerns,
		CreatedAt:         p.CreatedAt,
	}
}
