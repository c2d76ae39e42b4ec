package summarizer

import "context"

// Result is the structured output extracted from a session transcript.
type Result struct {
	Summary  string   `json:"summary"`
	Insights []string `json:"insights"`
	Mood     string   `json:"mood"`
	Goals    []string `json:"goals"`
	Warnings []string `json:"warnings"`
}

// Summarizer extracts therapeutic insights from transcript text. Retryable
// failures are marked with the transient package.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (Result, error)
}
