package store

import (
	"context"
	"errors"

	"frontier.app/frontier/core/db"
	"frontier.app/frontier/internal/model"
	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrAlreadyFinished is returned when a run can no longer be cancelled.
var ErrAlreadyFinished = errors.New("run already finished")

// cancelledByUser is recorded as the run error on cancellation.
const cancelledByUser = "analysis cancelled by user"

// RunStore defines the contract for analysis run data access
type RunStore interface {
	Create(ctx context.Context, run *model.AnalysisRun) error
	Get(ctx context.Context, id int64) (*model.AnalysisRun, error)
	MarkRunning(ctx context.Context, id int64, attempt int32) error
	Complete(ctx context.Context, id int64, result []byte) error
	Fail(ctx context.Context, id int64, errMsg string, result []byte) error
	Cancel(ctx context.Context, id int64) error
	List(ctx context.Context, limit int32) ([]model.AnalysisRun, error)
}

type runStore struct {
	db *db.DB
}

func NewRunStore(database *db.DB) RunStore {
	return &runStore{db: database}
}

const runColumns = `id, status, mode, seed_url, seed_text, max_papers, validation_threshold, attempt, result, error, created_at, started_at, finished_at`

func (s *runStore) Create(ctx context.Context, run *model.AnalysisRun) error {
	_, err := s.db.Pool().Exec(ctx, `
		INSERT INTO analysis_runs (id, status, mode, seed_url, seed_text, max_papers, validation_threshold, attempt, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())`,
		run.ID, run.Status, run.Mode, run.SeedURL, run.SeedText,
		run.MaxPapers, run.ValidationThreshold, run.Attempt,
	)
	return err
}

func (s *runStore) Get(ctx context.Context, id int64) (*model.AnalysisRun, error) {
	row := s.db.Pool().QueryRow(ctx,
		`SELECT `+runColumns+` FROM analysis_runs WHERE id = $1`, id)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return run, nil
}

func (s *runStore) MarkRunning(ctx context.Context, id int64, attempt int32) error {
	tag, err := s.db.Pool().Exec(ctx, `
		UPDATE analysis_runs
		SET status = $2, attempt = $3, started_at = coalesce(started_at, now())
		WHERE id = $1`,
		id, model.RunStatusRunning, attempt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *runStore) Complete(ctx context.Context, id int64, result []byte) error {
	return s.finish(ctx, id, model.RunStatusCompleted, nil, result)
}

func (s *runStore) Fail(ctx context.Context, id int64, errMsg string, result []byte) error {
	return s.finish(ctx, id, model.RunStatusFailed, &errMsg, result)
}

func (s *runStore) finish(ctx context.Context, id int64, status model.RunStatus, errMsg *string, result []byte) error {
	tag, err := s.db.Pool().Exec(ctx, `
		UPDATE analysis_runs
		SET status = $2, error = $3, result = $4, finished_at = now()
		WHERE id = $1`,
		id, status, errMsg, result,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Cancel marks a pending or running run failed with a cancellation message.
// The worker drops tasks whose run has finished, so a cancelled run is never
// executed even when its queue message is still in flight.
func (s *runStore) Cancel(ctx context.Context, id int64) error {
	tag, err := s.db.Pool().Exec(ctx, `
		UPDATE analysis_runs
		SET status = $2, error = $3, finished_at = now()
		WHERE id = $1 AND status IN ($4, $5)`,
		id, model.RunStatusFailed, cancelledByUser,
		model.RunStatusPending, model.RunStatusRunning,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Missing run or one that already finished.
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
		return ErrAlreadyFinished
	}
	return nil
}

func (s *runStore) List(ctx context.Context, limit int32) ([]model.AnalysisRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Pool().Query(ctx,
		`SELECT `+runColumns+` FROM analysis_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]model.AnalysisRun, 0, limit)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func scanRun(row pgx.Row) (*model.AnalysisRun, error) {
	var run model.AnalysisRun
	err := row.Scan(
		&run.ID, &run.Status, &run.Mode, &run.SeedURL, &run.SeedText,
		&run.MaxPapers, &run.ValidationThreshold, &run.Attempt,
		&run.Result, &run.Error, &run.CreatedAt, &run.StartedAt, &run.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	return &run, nil
}
