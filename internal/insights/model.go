package insights

import "time"

type Status string

const (
	StatusPending      Status = "pending"
	StatusTranscribing Status = "transcribing"
	StatusSummarizing  Status = "summarizing"
	StatusComplete     Status = "complete"
	StatusFailed       Status = "failed"
)

// Active reports whether a pipeline run currently owns the document. A second
// invocation observing an active status must back off rather than re-trigger
// stages.
func (s Status) Active() bool {
	return s == StatusTranscribing || s == StatusSummarizing
}

// SessionInsights is the structured output of the post-session pipeline,
// keyed by room identifier. Status only moves forward except that any stage
// may transition to failed; failed permits manual retry via pending.
type SessionInsights struct {
	RoomID        string
	Transcript    string
	Summary       string
	Insights      []string
	Mood          string
	Goals         []string
	Warnings      []string
	Status        Status
	FailureReason string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
