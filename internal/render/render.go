// Package render formats postings and summaries for the terminal.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/query"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")) // bright blue

	titleStyle = lipgloss.NewStyle().
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	enrichedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Width(18)

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// Postings writes one two-line entry per posting.
func Postings(w io.Writer, postings []model.Posting) {
	if len(postings) == 0 {
		fmt.Fprintln(w, subtitleStyle.Render("  (no postings)"))
		return
	}

	for i, p := range postings {
		status := pendingStyle.Render("pending")
		if !p.Pending() {
			status = enrichedStyle.Render("enriched")
		}
		fmt.Fprintf(w, "%s %s  %s\n", subtitleStyle.Render(fmt.Sprintf("#%-5d", p.ID)), titleStyle.Render(p.Title), status)

		parts := []string{p.Company, orNA(p.Location), p.Source}
		if p.SalaryRange != "" {
			parts = append(parts, p.SalaryRange)
		}
		fmt.Fprintf(w, "       %s\n", subtitleStyle.Render(strings.Join(parts, " · ")))

		if i < len(postings)-1 {
			fmt.Fprintln(w)
		}
	}
	fmt.Fprintf(w, "\n%s\n", subtitleStyle.Render(fmt.Sprintf("%d postings", len(postings))))
}

// Detail writes the job card for one posting, wrapping text to width.
func Detail(w io.Writer, d query.Detail, width int) {
	p := d.Posting
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	b.WriteString(detailTitleStyle.Render(p.Title))
	b.WriteByte('\n')
	addField("Company", p.Company)
	addField("Location", p.Location)
	addField("Source", p.Source)
	addField("Posted", p.PostedDate)
	addField("Listed Salary", p.SalaryRange)
	if p.JobType != nil {
		addField("Listed Type", p.JobType.DisplayName())
	}
	if p.ExperienceLevel != nil {
		addField("Listed Level", p.ExperienceLevel.DisplayName())
	}
	addField("URL", p.URL)
	if !p.CreatedAt.IsZero() {
		addField("Discovered", p.CreatedAt.Local().Format("2006-01-02 15:04 MST"))
	}

	wrapWidth := max(width-4, 20)
	divider := func(label string) string {
		fill := strings.Repeat("─", max(wrapWidth-len(label), 3))
		return dividerStyle.Render(label + fill)
	}

	b.WriteByte('\n')
	b.WriteString(divider("── Summary ") + "\n\n")
	if s := d.Summary; s != nil {
		addField("Salary", s.SalaryRange)
		addField("Job Type", s.JobType.DisplayName())
		addField("Experience", s.ExperienceLevel.DisplayName())
		b.WriteByte('\n')
		b.WriteString(headerStyle.Render("Standout Features") + "\n")
		b.WriteString(WordWrap(s.StandoutFeatures, wrapWidth) + "\n\n")
		b.WriteString(headerStyle.Render("Qualifications") + "\n")
		b.WriteString(WordWrap(s.Qualifications, wrapWidth) + "\n")
	} else {
		b.WriteString(pendingStyle.Render("  pending enrichment") + "\n")
	}

	if p.Description != "" {
		b.WriteByte('\n')
		b.WriteString(divider("── Job Description ") + "\n\n")
		b.WriteString(WordWrap(p.Description, wrapWidth) + "\n")
	}

	fmt.Fprint(w, b.String())
}

// Company writes a company profile as titled sections wrapped to width.
func Company(w io.Writer, p model.CompanyProfile, width int) {
	wrapWidth := max(width-4, 20)
	var b strings.Builder

	b.WriteString(detailTitleStyle.Render(p.Name))
	b.WriteByte('\n')
	for _, sec := range []struct{ title, body string }{
		{"Overview", p.Overview},
		{"Products & Services", p.ProductsServices},
		{"Size & Locations", p.SizeLocations},
		{"Culture & Work Environment", p.Culture},
		{"Recent News", p.RecentNews},
		{"Why It Might Appeal", p.ApplicantAppeal},
		{"Potential Concerns", p.PotentialConcerns},
	} {
		b.WriteString(headerStyle.Render(sec.title) + "\n")
		b.WriteString(WordWrap(orNA(sec.body), wrapWidth) + "\n\n")
	}
	if !p.CreatedAt.IsZero() {
		b.WriteString(subtitleStyle.Render("reviewed "+p.CreatedAt.Local().Format("2006-01-02")) + "\n")
	}

	fmt.Fprint(w, b.String())
}

// SourceStatus is one row of the sources table.
type SourceStatus struct {
	Name   string
	Active bool
	Reason string
}

// Sources writes the configured sources and whether each will be queried.
func Sources(w io.Writer, sources []SourceStatus) {
	fmt.Fprintf(w, "%s\n", headerStyle.Render(fmt.Sprintf("%-32s %s", "Source", "Status")))
	fmt.Fprintln(w, dividerStyle.Render(strings.Repeat("─", 60)))

	active := 0
	for _, s := range sources {
		status := enrichedStyle.Render("active")
		if s.Active {
			active++
		} else {
			status = errorStyle.Render("skipped: " + s.Reason)
		}
		fmt.Fprintf(w, "%-32s %s\n", s.Name, status)
	}
	fmt.Fprintf(w, "\nTotal: %d sources (%d active, %d skipped)\n", len(sources), active, len(sources)-active)
}

// Locations writes one location per line.
func Locations(w io.Writer, locations []string) {
	for _, l := range locations {
		fmt.Fprintln(w, l)
	}
}

// WordWrap breaks text on whitespace so no line exceeds width, unless a
// single word is longer.
func WordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}
