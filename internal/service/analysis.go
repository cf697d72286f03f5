package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"frontier.app/frontier/common/arangodb"
	"frontier.app/frontier/common/id"
	"frontier.app/frontier/internal/archive"
	"frontier.app/frontier/internal/domain"
	"frontier.app/frontier/internal/model"
	"frontier.app/frontier/internal/queue"
	"frontier.app/frontier/internal/store"
)

// ErrInvalidRequest wraps request validation failures so the HTTP layer can
// map them to 400 responses.
var ErrInvalidRequest = errors.New("invalid request")

type CreateAnalysisParams struct {
	SeedURL             string
	SeedText            string
	MaxPapers           int
	ValidationThreshold int
	Mode                string
	TraceID             *string
}

// AnalysisService is the application surface over runs: create and enqueue,
// look up, list, cancel, and inspect archived documents.
type AnalysisService interface {
	Create(ctx context.Context, params CreateAnalysisParams) (*model.AnalysisRun, error)
	Get(ctx context.Context, id int64) (*model.AnalysisRun, error)
	List(ctx context.Context, limit int32) ([]model.AnalysisRun, error)
	Cancel(ctx context.Context, id int64) error
	Documents(ctx context.Context, id int64) ([]arangodb.DocumentSummary, error)
}

type analysisService struct {
	runs    store.RunStore
	queue   queue.Producer
	archive *archive.Archive
	logger  *slog.Logger
}

func NewAnalysisService(runs store.RunStore, producer queue.Producer, docs *archive.Archive, logger *slog.Logger) AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &analysisService{
		runs:    runs,
		queue:   producer,
		archive: docs,
		logger:  logger,
	}
}

func (s *analysisService) Create(ctx context.Context, params CreateAnalysisParams) (*model.AnalysisRun, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	mode := params.Mode
	if mode == "" {
		mode = string(domain.AnalysisModeThorough)
	}

	run := &model.AnalysisRun{
		ID:                  id.New(),
		Status:              model.RunStatusPending,
		Mode:                mode,
		MaxPapers:           int32(params.MaxPapers),
		ValidationThreshold: int32(params.ValidationThreshold),
		Attempt:             0,
	}
	if params.SeedURL != "" {
		run.SeedURL = &params.SeedURL
	}
	if params.SeedText != "" {
		run.SeedText = &params.SeedText
	}

	if err := s.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("creating run: %w", err)
	}

	if err := s.queue.Enqueue(ctx, queue.AnalysisTask{
		RunID:   run.ID,
		TraceID: params.TraceID,
		Attempt: 1,
	}); err != nil {
		return nil, fmt.Errorf("enqueueing run %d: %w", run.ID, err)
	}

	s.logger.InfoContext(ctx, "analysis run created", "run_id", run.ID, "mode", mode)
	return run, nil
}

func (s *analysisService) Get(ctx context.Context, id int64) (*model.AnalysisRun, error) {
	return s.runs.Get(ctx, id)
}

func (s *analysisService) List(ctx context.Context, limit int32) ([]model.AnalysisRun, error) {
	return s.runs.List(ctx, limit)
}

// Cancel stops a pending or running run. The queue message stays in the
// stream; the worker drops it once it sees the run has finished.
func (s *analysisService) Cancel(ctx context.Context, id int64) error {
	if err := s.runs.Cancel(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "analysis run cancelled", "run_id", id)
	return nil
}

func (s *analysisService) Documents(ctx context.Context, id int64) ([]arangodb.DocumentSummary, error) {
	if _, err := s.runs.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.archive.ListForRun(ctx, id)
}

func validateParams(params CreateAnalysisParams) error {
	if params.SeedURL == "" && params.SeedText == "" {
		return fmt.Errorf("%w: seed_url or seed_text is required", ErrInvalidRequest)
	}
	if params.SeedURL != "" && params.SeedText != "" {
		return fmt.Errorf("%w: seed_url and seed_text are mutually exclusive", ErrInvalidRequest)
	}
	if params.Mode != "" && !domain.AnalysisMode(params.Mode).Valid() {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, params.Mode)
	}
	if params.MaxPapers != 0 && (params.MaxPapers < 1 || params.MaxPapers > 20) {
		return fmt.Errorf("%w: max_papers must be between 1 and 20", ErrInvalidRequest)
	}
	if params.ValidationThreshold != 0 && (params.ValidationThreshold < 1 || params.ValidationThreshold > 5) {
		return fmt.Errorf("%w: validation_threshold must be between 1 and 5", ErrInvalidRequest)
	}
	return nil
}
