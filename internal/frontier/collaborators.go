package frontier

import (
	"context"

	"frontier.app/frontier/internal/domain"
)

// The orchestrator depends on four slow, unreliable collaborators. Each call
// site decides locally what a failure means: seed analysis failure is fatal,
// everything else degrades to a fallback or skips one unit of work.

// DocumentAnalyzer turns a document ref or raw text into structured findings.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, ref string) (*domain.Document, error)
	AnalyzeText(ctx context.Context, text, ref string) (*domain.Document, error)
}

// QueryGenerator produces search queries for a gap. Callers must substitute
// naive fallback queries when it fails.
type QueryGenerator interface {
	ValidationQueries(ctx context.Context, gap *domain.Gap) ([]string, error)
	ExpansionQueries(ctx context.Context, gap *domain.Gap) ([]string, error)
}

// SearchBackend resolves queries to document refs. Duplicate refs across
// queries are permitted; the orchestrator deduplicates against its
// processed-set.
type SearchBackend interface {
	Search(ctx context.Context, queries []string, limitPerQuery int) ([]string, error)
	SearchForValidation(ctx context.Context, description string) ([]string, error)
}

// GapValidator judges whether analyzed documents invalidate a gap and enriches
// gaps that graduate. An Invalidated error is treated as "not invalidated"; an
// Enrich error triggers the deterministic fallback enrichment.
type GapValidator interface {
	Invalidated(ctx context.Context, gap *domain.Gap, docs []domain.Document) (bool, error)
	Enrich(ctx context.Context, gap *domain.Gap) (*domain.ValidatedGap, error)
}
