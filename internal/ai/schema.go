package ai

import "github.com/amishk599/jobscout/internal/model"

// summarySchema is the JSON Schema every provider enforces on the reply.
// It matches rawSummary exactly so the response can be parsed directly.
var summarySchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"salary_range": map[string]any{
			"type":        "string",
			"description": "salary range for the posted role, e.g. '$150k-175k', or exactly 'not listed'",
		},
		"job_type": map[string]any{
			"type": "string",
			"enum": enumValues(model.JobTypes),
		},
		"experience_level": map[string]any{
			"type": "string",
			"enum": enumValues(model.ExperienceLevels),
		},
		"standout_features": map[string]any{
			"type":        "string",
			"description": "unique aspects of the job: role and responsibilities, mission and culture, PTO and benefits",
		},
		"qualifications": map[string]any{
			"type":        "string",
			"description": "main qualifications: tech stack, skills, education, nice to haves",
		},
	},
	"required": []string{"salary_range", "job_type", "experience_level", "standout_features", "qualifications"},
}

var summaryOutput = OutputSchema{Name: "job_summary", Schema: summarySchema}

var companyFields = []string{
	"overview",
	"products_services",
	"size_locations",
	"culture",
	"recent_news",
	"applicant_appeal",
	"potential_concerns",
}

// companySchema matches rawCompany; every section is a required string.
var companySchema = func() map[string]any {
	props := make(map[string]any, len(companyFields))
	for _, f := range companyFields {
		props[f] = map[string]any{"type": "string"}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             companyFields,
	}
}()

var companyOutput = OutputSchema{Name: "company_profile", Schema: companySchema}

func enumValues[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
