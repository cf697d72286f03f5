package arangodb

import "time"

// DocumentSummary is the archived record of one analyzed document.
type DocumentSummary struct {
	RunID       int64     `json:"run_id"`
	Ref         string    `json:"ref"`
	Title       string    `json:"title"`
	KeyFindings int       `json:"key_findings"`
	Limitations int       `json:"limitations"`
	FutureWork  int       `json:"future_work"`
	AnalyzedAt  time.Time `json:"analyzed_at"`
}
