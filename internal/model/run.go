package model

import (
	"encoding/json"
	"time"
)

type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// AnalysisRun is the persisted record of one analysis request, from
// submission through completion. Result holds the full response JSON once
// the run finishes.
type AnalysisRun struct {
	ID                  int64           `json:"id"`
	Status              RunStatus       `json:"status"`
	Mode                string          `json:"mode"`
	SeedURL             *string         `json:"seed_url,omitempty"`
	SeedText            *string         `json:"seed_text,omitempty"`
	MaxPapers           int32           `json:"max_papers"`
	ValidationThreshold int32           `json:"validation_threshold"`
	Attempt             int32           `json:"attempt"`
	Result              json.RawMessage `json:"result,omitempty"`
	Error               *string         `json:"error,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	StartedAt           *time.Time      `json:"started_at,omitempty"`
	FinishedAt          *time.Time      `json:"finished_at,omitempty"`
}
