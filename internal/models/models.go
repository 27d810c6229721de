package models

import (
	"time"

	"github.com/textlens/textlens/internal/search"
)

// AnalysisSession represents one text analysis run
type AnalysisSession struct {
	ID         string            `json:"id"`
	Text       string            `json:"text"`
	Paragraphs []ParagraphResult `json:"paragraphs"`
	Provider   string            `json:"provider,omitempty"`
	Model      string            `json:"model,omitempty"`
	Engines    []string          `json:"engines,omitempty"`
	DurationMS int64             `json:"duration_ms"`
	CreatedAt  time.Time         `json:"created_at"`
}

// ParagraphResult holds the queries and images found for one paragraph
type ParagraphResult struct {
	Index   int             `json:"index"`
	Text    string          `json:"text"`
	Queries []string        `json:"queries"`
	Images  []search.Result `json:"images"`
}

// ImageCount returns the total number of images found across paragraphs.
func (s *AnalysisSession) ImageCount() int {
	total := 0
	for _, p := range s.Paragraphs {
		total += len(p.Images)
	}
	return total
}
