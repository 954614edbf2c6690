package port

import "context"

// TerminologyQuery is a normalized search against one terminology source.
type TerminologyQuery struct {
	Term  string
	Limit int
	// State narrows provider searches to a US state code.
	State string
}

// Suggestion is one autocomplete entry.
type Suggestion struct {
	Code     string `json:"code"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Source   string `json:"source"`
}

// TerminologySource looks up suggestions in a public medical vocabulary.
type TerminologySource interface {
	Name() string
	Search(ctx context.Context, q TerminologyQuery) ([]Suggestion, error)
}
