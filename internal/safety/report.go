// Package safety runs the terminal sanitizer over emitted payloads. Its
// guarantee is absolute: whatever the earlier passes produced, the payload
// that leaves the gate cannot corrupt the target builder on paste.
package safety

import "github.com/flowbridge/compiler/internal/validate"

// Status summarizes a gate run.
type Status string

const (
	StatusPass  Status = "pass"
	StatusWarn  Status = "warn"
	StatusBlock Status = "block"
)

// EmbedContent accumulates everything relocated out of the scene graph.
type EmbedContent struct {
	CSS      string   `json:"css"`
	JS       string   `json:"js"`
	HTML     string   `json:"html"`
	Warnings []string `json:"warnings"`
}

// Empty reports whether nothing was relocated.
func (e *EmbedContent) Empty() bool {
	return e.CSS == "" && e.JS == "" && e.HTML == "" && len(e.Warnings) == 0
}

// EmbedSize reports the per-channel byte counts against the budget.
type EmbedSize struct {
	Limit    int      `json:"limit"`
	CSS      int      `json:"css"`
	JS       int      `json:"js"`
	HTML     int      `json:"html"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Report is the gate's verdict for one payload.
type Report struct {
	Status            Status           `json:"status"`
	Blocked           bool             `json:"blocked"`
	FatalIssues       []validate.Issue `json:"fatalIssues,omitempty"`
	Warnings          []validate.Issue `json:"warnings,omitempty"`
	AutoFixes         []string         `json:"autoFixes,omitempty"`
	ExtractedToEmbeds int              `json:"extractedToEmbeds,omitempty"`
	EmbedSize         EmbedSize        `json:"embedSize"`
	EmbedChunking     []string         `json:"embedChunking,omitempty"`
	HTMLSanitization  []string         `json:"htmlSanitization,omitempty"`
}

func (r *Report) fix(msg string) {
	r.AutoFixes = append(r.AutoFixes, msg)
}

func (r *Report) warn(issue validate.Issue) {
	r.Warnings = append(r.Warnings, issue)
}

func (r *Report) fatal(issue validate.Issue) {
	r.FatalIssues = append(r.FatalIssues, issue)
}

// finalize derives the status from what accumulated.
func (r *Report) finalize() {
	switch {
	case len(r.FatalIssues) > 0:
		r.Status = StatusBlock
		r.Blocked = true
	case len(r.Warnings) > 0 || len(r.AutoFixes) > 0:
		r.Status = StatusWarn
	default:
		r.Status = StatusPass
	}
}
