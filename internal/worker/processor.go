package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"frontier.app/frontier/common/logger"
	"frontier.app/frontier/internal/domain"
	"frontier.app/frontier/internal/frontier"
	"frontier.app/frontier/internal/model"
	"frontier.app/frontier/internal/queue"
	"frontier.app/frontier/internal/store"
)

// Runner executes one analysis end to end. Satisfied by
// frontier.Orchestrator.
type Runner interface {
	Run(ctx context.Context, req domain.AnalysisRequest) *domain.AnalysisResponse
}

// Processor executes a queued analysis run: claim the record, drive the
// orchestrator, persist the response.
type Processor struct {
	runs   store.RunStore
	runner Runner
	logger *slog.Logger
}

func NewProcessor(runs store.RunStore, runner Runner, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.Default()
	}
	return &Processor{runs: runs, runner: runner, logger: log}
}

func (p *Processor) Process(ctx context.Context, msg queue.Message) error {
	run, err := p.runs.Get(ctx, msg.RunID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			p.logger.WarnContext(ctx, "run not found, dropping task", "run_id", msg.RunID)
			return nil
		}
		return frontier.NewRetryableError(fmt.Errorf("loading run %d: %w", msg.RunID, err))
	}

	if run.Status == model.RunStatusCompleted || run.Status == model.RunStatusFailed {
		p.logger.InfoContext(ctx, "run already finished, dropping task",
			"run_id", run.ID, "status", run.Status)
		return nil
	}

	if err := p.runs.MarkRunning(ctx, run.ID, int32(msg.Attempt)); err != nil {
		return frontier.NewRetryableError(fmt.Errorf("marking run %d running: %w", run.ID, err))
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		RunID: &run.ID,
		Mode:  logger.Ptr(run.Mode),
	})
	p.logger.InfoContext(ctx, "executing analysis run", "attempt", msg.Attempt)

	resp := p.runner.Run(ctx, requestFromRun(run))

	payload, err := json.Marshal(resp)
	if err != nil {
		return frontier.NewFatalError(fmt.Errorf("encoding response for run %d: %w", run.ID, err))
	}

	if resp.Failure != "" {
		if err := p.runs.Fail(ctx, run.ID, resp.Failure, payload); err != nil {
			return frontier.NewRetryableError(fmt.Errorf("persisting failed run %d: %w", run.ID, err))
		}
		p.logger.WarnContext(ctx, "analysis run failed", "failure", resp.Failure)
		return nil
	}

	if err := p.runs.Complete(ctx, run.ID, payload); err != nil {
		return frontier.NewRetryableError(fmt.Errorf("persisting completed run %d: %w", run.ID, err))
	}
	p.logger.InfoContext(ctx, "analysis run completed",
		"validated_gaps", len(resp.ValidatedGaps),
		"eliminated_gaps", len(resp.EliminatedGaps),
		"papers_analyzed", resp.Counters.PapersAnalyzed)
	return nil
}

func requestFromRun(run *model.AnalysisRun) domain.AnalysisRequest {
	req := domain.AnalysisRequest{
		MaxPapers:           int(run.MaxPapers),
		ValidationThreshold: int(run.ValidationThreshold),
		Mode:                domain.AnalysisMode(run.Mode),
	}
	if run.SeedURL != nil {
		req.SeedURL = *run.SeedURL
	}
	if run.SeedText != nil {
		req.SeedText = *run.SeedText
	}
	return req
}
