package adapter

import (
	"testing"

	"github.com/amishk599/jobscout/internal/model"
)

func TestExtractText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "double-encoded HTML from Greenhouse API",
			input: "This is the job description. &lt;p&gt;Any HTML included.&lt;/p&gt;",
			want:  "This is the job description. Any HTML included.",
		},
		{
			name:  "typical job description with nested tags and whitespace",
			input: "&lt;p&gt;We are hiring.&lt;/p&gt;\n&lt;ul&gt;\n  &lt;li&gt;Write code&lt;/li&gt;\n  &lt;li&gt;Review PRs&lt;/li&gt;\n&lt;/ul&gt;",
			want:  "We are hiring. Write code Review PRs",
		},
		{
			name:  "plain text with no HTML",
			input: "No tags here.",
			want:  "No tags here.",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := extractText(tc.input)
			if got != tc.want {
				t.Errorf("extractText(%q)\n got  %q\n want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		base, href, want string
	}{
		{"https://www.indeed.com", "/rc/clk?jk=1", "https://www.indeed.com/rc/clk?jk=1"},
		{"https://www.indeed.com", "https://other.example/x", "https://other.example/x"},
		{"https://www.indeed.com", "", ""},
		{"https://www.indeed.com", "javascript:void(0)", ""},
		{"https://www.indeed.com", "mailto:jobs@example.com", ""},
	}
	for _, tc := range tests {
		if got := absoluteURL(tc.base, tc.href); got != tc.want {
			t.Errorf("absoluteURL(%q, %q) = %q, want %q", tc.base, tc.href, got, tc.want)
		}
	}
}

func TestSalaryRange(t *testing.T) {
	tests := []struct {
		min, max float64
		want     string
	}{
		{150000, 190000, "$150k-190k"},
		{152500, 152500, "$152.5k"},
		{0, 90000, "$90k"},
		{800, 0, "$800"},
		{0, 0, ""},
	}
	for _, tc := range tests {
		if got := salaryRange(tc.min, tc.max); got != tc.want {
			t.Errorf("salaryRange(%v, %v) = %q, want %q", tc.min, tc.max, got, tc.want)
		}
	}
}

func TestJobTypeFromText(t *testing.T) {
	tests := []struct {
		label string
		want  *model.JobType
	}{
		{"Full-time", ptr(model.JobTypeFullTime)},
		{"full_time", ptr(model.JobTypeFullTime)},
		{"Contract to Hire", ptr(model.JobTypeContractToHire)},
		{"contract", ptr(model.JobTypeContract)},
		{"Part-time", nil},
		{"", nil},
	}
	for _, tc := range tests {
		got := jobTypeFromText(tc.label)
		switch {
		case tc.want == nil && got != nil:
			t.Errorf("jobTypeFromText(%q) = %v, want nil", tc.label, *got)
		case tc.want != nil && (got == nil || *got != *tc.want):
			t.Errorf("jobTypeFromText(%q) = %v, want %v", tc.label, got, *tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	in := []model.Posting{{Title: "a"}, {Title: "b"}, {Title: "c"}}
	if got := truncate(in, 2); len(got) != 2 || got[1].Title != "b" {
		t.Errorf("truncate(3, 2) = %+v", got)
	}
	if got := truncate(in, 5); len(got) != 3 {
		t.Errorf("truncate(3, 5) = %d postings", len(got))
	}
	if got := truncate(in, 0); got != nil {
		t.Errorf("truncate(3, 0) = %+v, want nil", got)
	}
}

func ptr[T any](v T) *T { return &v }
