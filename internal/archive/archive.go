package archive

import (
	"context"
	"log/slog"
	"time"

	"frontier.app/frontier/common/arangodb"
	"frontier.app/frontier/common/logger"
	"frontier.app/frontier/internal/domain"
)

// Archive persists analyzed-document summaries to ArangoDB. All writes are
// best-effort: a failed write is logged and never surfaces to the run.
type Archive struct {
	client arangodb.Client
	logger *slog.Logger
}

func New(client arangodb.Client, log *slog.Logger) *Archive {
	if log == nil {
		log = slog.Default()
	}
	return &Archive{client: client, logger: log}
}

// SaveAnalyzed records a document summary under the run carried in the
// context log fields. Without a run id (one-shot CLI runs) nothing is saved.
func (a *Archive) SaveAnalyzed(ctx context.Context, doc *domain.Document) {
	if a == nil || a.client == nil || doc == nil {
		return
	}
	fields := logger.GetLogFields(ctx)
	if fields.RunID == nil {
		return
	}

	summary := arangodb.DocumentSummary{
		RunID:       *fields.RunID,
		Ref:         doc.Ref,
		Title:       doc.Title,
		KeyFindings: len(doc.KeyFindings),
		Limitations: len(doc.Limitations),
		FutureWork:  len(doc.FutureWork),
		AnalyzedAt:  time.Now().UTC(),
	}
	if err := a.client.SaveSummary(ctx, summary); err != nil {
		a.logger.WarnContext(ctx, "archiving document summary failed", "ref", doc.Ref, "error", err)
	}
}

// ListForRun returns the archived summaries for a run, oldest first.
func (a *Archive) ListForRun(ctx context.Context, runID int64) ([]arangodb.DocumentSummary, error) {
	if a == nil || a.client == nil {
		return nil, nil
	}
	return a.client.ListByRun(ctx, runID)
}
