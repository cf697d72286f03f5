package dto

import "time"

type CreateAnalysisRequest struct {
	SeedURL             string `json:"seed_url,omitempty"`
	SeedText            string `json:"seed_text,omitempty"`
	MaxPapers           int    `json:"max_papers,omitempty"`
	ValidationThreshold int    `json:"validation_threshold,omitempty"`
	Mode                string `json:"mode,omitempty"`
}

type CreateAnalysisResponse struct {
	RunID  int64  `json:"run_id"`
	Status string `json:"status"`
}

type CancelAnalysisResponse struct {
	RunID  int64  `json:"run_id"`
	Status string `json:"status"`
}

type AnalysisRunResponse struct {
	RunID               int64      `json:"run_id"`
	Status              string     `json:"status"`
	Mode                string     `json:"mode"`
	SeedURL             *string    `json:"seed_url,omitempty"`
	MaxPapers           int32      `json:"max_papers"`
	ValidationThreshold int32      `json:"validation_threshold"`
	Attempt             int32      `json:"attempt"`
	Error               *string    `json:"error,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	StartedAt           *time.Time `json:"started_at,omitempty"`
	FinishedAt          *time.Time `json:"finished_at,omitempty"`
}

type ListAnalysesResponse struct {
	Runs []AnalysisRunResponse `json:"runs"`
}

type ArchivedDocumentResponse struct {
	Ref         string    `json:"ref"`
	Title       string    `json:"title"`
	KeyFindings int       `json:"key_findings"`
	Limitations int       `json:"limitations"`
	FutureWork  int       `json:"future_work"`
	AnalyzedAt  time.Time `json:"analyzed_at"`
}

type ListDocumentsResponse struct {
	RunID     int64                      `json:"run_id"`
	Documents []ArchivedDocumentResponse `json:"documents"`
}
