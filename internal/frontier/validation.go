package frontier

import (
	"context"
	"log/slog"
	"strings"

	"frontier.app/frontier/common/logger"
	"frontier.app/frontier/internal/domain"
)

// validate walks every pending gap still below the strike threshold, in
// pending-store order. Deadline expiry mid-loop triggers the drain path and
// ends validation; it is never an error.
func (o *Orchestrator) validate(ctx context.Context, s *State, deadline Deadline, params ModeParams) {
	eligible := s.PendingBelow(params.ValidationThreshold)

	for _, gap := range eligible {
		if deadline.Expired() {
			o.drain(ctx, s, params.ValidationThreshold)
			return
		}

		gctx := logger.WithLogFields(ctx, logger.LogFields{GapID: &gap.ID})
		if err := o.validateGap(gctx, s, deadline, params, gap); err != nil {
			slog.ErrorContext(gctx, "gap validation failed, continuing with next gap", "error", err)
			continue
		}
	}

	slog.InfoContext(ctx, "validation complete",
		"validated_gaps", len(s.Validated()),
		"eliminated_gaps", len(s.Eliminated()),
		"pending_gaps", s.PendingLen())
}

func (o *Orchestrator) validateGap(ctx context.Context, s *State, deadline Deadline, params ModeParams, gap *domain.Gap) error {
	slog.InfoContext(ctx, "validating gap",
		"description", logger.Truncate(gap.Description, 100),
		"strikes", gap.ValidationStrikes)

	queries, err := o.queries.ValidationQueries(ctx, gap)
	if err != nil || len(queries) == 0 {
		slog.WarnContext(ctx, "validation query generation failed, using naive queries", "error", err)
		queries = naiveQueries(gap)
	}
	s.CountQueries(len(queries))

	refs, err := o.search.SearchForValidation(ctx, gap.Description)
	if err != nil {
		slog.WarnContext(ctx, "validation search failed", "error", err)
		refs = nil
	}

	// Shrink the analysis bound when the deadline is close.
	maxDocs := maxValidationDocs
	if deadline.Remaining() < lowTimeWindow {
		maxDocs = 1
	}

	var docs []domain.Document
	for _, ref := range refs {
		if len(docs) >= maxDocs {
			break
		}
		if s.Processed(ref) {
			continue
		}
		doc, err := o.analyzer.Analyze(ctx, ref)
		if err != nil || doc == nil {
			slog.WarnContext(ctx, "validation document analysis failed, skipping",
				"ref", ref, "error", err)
			continue
		}
		s.MarkProcessed(ref)
		s.CountPaperAnalyzed()
		docs = append(docs, *doc)
	}

	if len(docs) > 0 {
		invalidated, err := o.validator.Invalidated(ctx, gap, docs)
		switch {
		case err != nil:
			// A broken validator keeps the gap alive.
			slog.WarnContext(ctx, "validation judgment failed, treating as not invalidated", "error", err)
		case invalidated:
			s.Eliminate(gap, eliminationReason)
			slog.InfoContext(ctx, "gap eliminated",
				"description", logger.Truncate(gap.Description, 80))
			return nil
		}
	}

	gap.ValidationStrikes++
	s.CountValidationAttempt()

	if gap.ValidationStrikes >= params.ValidationThreshold {
		s.Graduate(gap, o.enrich(ctx, gap))
		slog.InfoContext(ctx, "gap graduated",
			"description", logger.Truncate(gap.Description, 80),
			"strikes", gap.ValidationStrikes)
	}
	return nil
}

// drain force-enriches up to DrainCap still-eligible pending gaps once the
// deadline has expired. Gaps past the cap stay pending and are reported in the
// counters rather than silently dropped.
func (o *Orchestrator) drain(ctx context.Context, s *State, threshold int) {
	remaining := s.PendingBelow(threshold)

	drained := 0
	for _, gap := range remaining {
		if drained >= o.cfg.DrainCap {
			break
		}
		s.Graduate(gap, o.enrich(ctx, gap))
		drained++
	}

	slog.WarnContext(ctx, "deadline reached during validation, drained pending gaps",
		"drained", drained,
		"left_pending", s.PendingLen())
}

// enrich asks the validator for a proper enrichment and falls back to the
// deterministic one on any failure, so graduation can never fail.
func (o *Orchestrator) enrich(ctx context.Context, gap *domain.Gap) domain.ValidatedGap {
	enriched, err := o.validator.Enrich(ctx, gap)
	if err != nil || enriched == nil {
		slog.WarnContext(ctx, "enrichment failed, using deterministic fallback", "error", err)
		return FallbackEnrichment(gap)
	}
	return *enriched
}

// naiveQueries builds the fallback query set from the gap's first three words.
func naiveQueries(gap *domain.Gap) []string {
	words := strings.Fields(gap.Description)
	if len(words) > 3 {
		words = words[:3]
	}
	head := strings.Join(words, " ")
	return []string{"solving " + head, "addressing " + head}
}
