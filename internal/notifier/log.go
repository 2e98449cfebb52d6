package notifier

import (
	"log/slog"

	"github.com/amishk599/jobscout/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes newly stored postings to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each posting via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each posting. Returns nil (logging does not fail).
func (n *LogNotifier) Notify(postings []model.Posting) error {
	for _, p := range postings {
		args := []any{
			"posting_id", p.ID,
			"source", p.Source,
			"company", p.Company,
			"title", p.Title,
			"location", p.Location,
			"url", p.URL,
		}
		if p.PostedDate != "" {
			args = append(args, "posted", p.PostedDate)
		}
		if p.SalaryRange != "" {
			args = append(args, "salary", p.SalaryRange)
		}
		n.logger.Info("new posting", args...)
	}
	return nil
}
