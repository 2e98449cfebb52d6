package ai

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/summary.md
var summaryPromptRaw string

//go:embed prompts/company.md
var companyPromptRaw string

// SummaryTemplate is the parsed prompt template for structured extraction.
// Parsed once at package init; reused on every Extract call.
var SummaryTemplate = template.Must(template.New("summary").Parse(summaryPromptRaw))

// CompanyTemplate renders the company review prompt from {{.Company}}.
var CompanyTemplate = template.Must(template.New("company").Parse(companyPromptRaw))
