package frontier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"frontier.app/frontier/common/id"
	"frontier.app/frontier/common/logger"
	"frontier.app/frontier/internal/domain"
)

// Phase is a state of the run state machine. Failed is terminal and reached
// only when seed analysis itself fails; every other collaborator failure is
// absorbed locally.
type Phase string

const (
	PhaseSeeding      Phase = "seeding"
	PhaseExpanding    Phase = "expanding"
	PhaseValidating   Phase = "validating"
	PhaseSynthesizing Phase = "synthesizing"
	PhaseDone         Phase = "done"
	PhaseFailed       Phase = "failed"
)

const (
	defaultDrainCap   = 5
	maxValidationDocs = 2
	// lowTimeWindow shrinks the per-gap validation analysis bound to one
	// document when less than this remains before the deadline.
	lowTimeWindow = 30 * time.Second

	eliminationReason = "Existing solutions found during validation process"
)

var ErrNoDocument = errors.New("analyzer returned no document")

type Config struct {
	// Budget overrides the mode's wall-clock budget when positive.
	Budget time.Duration
	// DrainCap bounds how many pending gaps are force-enriched when the
	// deadline expires. Zero means the default of 5.
	DrainCap int
}

// Orchestrator runs one analysis at a time over four slow collaborators. It
// holds no per-run state; everything mutable lives in the State constructed
// inside Run, so a single Orchestrator may serve concurrent runs.
type Orchestrator struct {
	cfg       Config
	analyzer  DocumentAnalyzer
	queries   QueryGenerator
	search    SearchBackend
	validator GapValidator
}

func New(cfg Config, analyzer DocumentAnalyzer, queries QueryGenerator, search SearchBackend, validator GapValidator) *Orchestrator {
	if cfg.DrainCap <= 0 {
		cfg.DrainCap = defaultDrainCap
	}
	return &Orchestrator{
		cfg:       cfg,
		analyzer:  analyzer,
		queries:   queries,
		search:    search,
		validator: validator,
	}
}

// Run executes the full Seed -> Expand -> Validate -> Synthesize sequence and
// always returns a well-formed response. A fatal seed failure produces an
// error response with zeroed counters and a failure narrative; it never
// escapes as an error to the caller.
func (o *Orchestrator) Run(ctx context.Context, req domain.AnalysisRequest) *domain.AnalysisResponse {
	start := time.Now()

	if !req.Mode.Valid() {
		req.Mode = domain.AnalysisModeThorough
	}
	params := paramsFor(req.Mode, req.MaxPapers, req.ValidationThreshold)

	seedRef := req.SeedURL
	if seedRef == "" {
		seedRef = "text-" + strconv.FormatInt(id.New(), 10)
	}

	mode := string(req.Mode)
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		SeedRef:   &seedRef,
		Mode:      &mode,
		Component: "frontier.core.driver",
	})

	deadline := NewDeadline(req.Mode)
	if o.cfg.Budget > 0 {
		deadline = NewDeadlineWithBudget(o.cfg.Budget)
	}

	state := NewState()

	slog.InfoContext(ctx, "run starting",
		"max_papers", params.MaxPapers,
		"validation_threshold", params.ValidationThreshold,
		"budget_remaining", deadline.Remaining().String())

	o.logPhase(ctx, PhaseSeeding)
	if err := o.seed(ctx, req, seedRef, state); err != nil {
		o.logPhase(ctx, PhaseFailed)
		slog.ErrorContext(ctx, "seed analysis failed, run aborted", "error", err)
		return o.failureResponse(req, seedRef, state, start, err)
	}

	o.logPhase(ctx, PhaseExpanding)
	o.expand(ctx, state, deadline, params)

	o.logPhase(ctx, PhaseValidating)
	o.validate(ctx, state, deadline, params)

	o.logPhase(ctx, PhaseSynthesizing)
	resp := o.synthesize(req, seedRef, state, start)
	o.logPhase(ctx, PhaseDone)

	slog.InfoContext(ctx, "run completed",
		"validated_gaps", len(resp.ValidatedGaps),
		"gaps_discovered", resp.Counters.GapsDiscovered,
		"gaps_eliminated", resp.Counters.GapsEliminated,
		"papers_analyzed", resp.Counters.PapersAnalyzed,
		"elapsed", time.Since(start).String())

	return resp
}

func (o *Orchestrator) logPhase(ctx context.Context, phase Phase) {
	slog.InfoContext(ctx, "phase transition", "phase", string(phase))
}

// seed analyzes the seed document and populates the initial frontier. This is
// the only call whose failure is fatal to the run.
func (o *Orchestrator) seed(ctx context.Context, req domain.AnalysisRequest, seedRef string, s *State) error {
	var (
		doc *domain.Document
		err error
	)
	if req.SeedText != "" {
		doc, err = o.analyzer.AnalyzeText(ctx, req.SeedText, seedRef)
	} else {
		doc, err = o.analyzer.Analyze(ctx, req.SeedURL)
	}
	if err != nil {
		return fmt.Errorf("analyzing seed document: %w", err)
	}
	if doc == nil {
		return ErrNoDocument
	}

	s.MarkProcessed(doc.Ref)
	s.CountPaperAnalyzed()

	gaps := s.ExtractGaps(doc)
	s.Enqueue(gaps)

	slog.InfoContext(ctx, "seed analysis complete",
		"title", logger.Truncate(doc.Title, 80),
		"initial_gaps", len(gaps))
	return nil
}

// expand pops gaps off the queue, searches for solution and related-area
// documents, and analyzes newcomers. Collaborator errors inside one gap's
// exploration are logged and the loop moves on; they never abort the phase.
func (o *Orchestrator) expand(ctx context.Context, s *State, deadline Deadline, params ModeParams) {
	papersAnalyzed := 1 // seed is already analyzed
	gapsProcessed := 0

	for s.QueueLen() > 0 && papersAnalyzed < params.MaxPapers && gapsProcessed < params.GapIterationCap {
		if deadline.Expired() {
			slog.WarnContext(ctx, "deadline reached during expansion",
				"gaps_processed", gapsProcessed)
			return
		}

		gap, ok := s.PopNext()
		if !ok {
			return
		}
		gapsProcessed++

		gctx := logger.WithLogFields(ctx, logger.LogFields{GapID: &gap.ID})
		if err := o.exploreGap(gctx, s, deadline, params, gap, &papersAnalyzed); err != nil {
			slog.WarnContext(gctx, "gap exploration failed, continuing with next gap", "error", err)
			continue
		}
	}

	slog.InfoContext(ctx, "frontier expansion complete",
		"papers_analyzed", papersAnalyzed,
		"gaps_processed", gapsProcessed,
		"pending_gaps", s.PendingLen())
}

func (o *Orchestrator) exploreGap(ctx context.Context, s *State, deadline Deadline, params ModeParams, gap *domain.Gap, papersAnalyzed *int) error {
	refs, err := o.searchSolutions(ctx, gap, params.SolutionSearchLimit, s)
	if err != nil {
		return err
	}

	if params.ExpansionSearch {
		related := o.searchRelated(ctx, gap, s)
		refs = dedupRefs(append(refs, related...))
	}

	for _, ref := range refs {
		if deadline.Expired() {
			slog.WarnContext(ctx, "deadline reached during document analysis")
			break
		}
		if s.Processed(ref) || *papersAnalyzed >= params.MaxPapers {
			continue
		}

		doc, err := o.analyzer.Analyze(ctx, ref)
		if err != nil || doc == nil {
			// One unreadable document never stops the frontier.
			slog.WarnContext(ctx, "document analysis failed, skipping",
				"ref", ref, "error", err)
			continue
		}

		s.MarkProcessed(ref)
		s.CountPaperAnalyzed()
		*papersAnalyzed++

		if params.ExtractDuringExpansion {
			newGaps := s.ExtractGaps(doc)
			if len(newGaps) > 0 {
				s.Enqueue(newGaps)
				s.CountFrontierExpansion()
				slog.InfoContext(ctx, "frontier expanded", "new_gaps", len(newGaps))
			}
		}
	}

	s.MarkExplored(gap)
	return nil
}

// searchSolutions looks for documents that might already solve the gap. A
// generator or search failure yields an empty result, not an error for the
// whole gap.
func (o *Orchestrator) searchSolutions(ctx context.Context, gap *domain.Gap, limit int, s *State) ([]string, error) {
	queries, err := o.queries.ValidationQueries(ctx, gap)
	if err != nil || len(queries) == 0 {
		slog.WarnContext(ctx, "solution query generation failed", "error", err)
		queries = naiveQueries(gap)
	}
	s.CountQueries(len(queries))

	refs, err := o.search.Search(ctx, queries, limit)
	if err != nil {
		slog.WarnContext(ctx, "solution search failed", "error", err)
		return nil, nil
	}
	return refs, nil
}

// searchRelated looks for documents in the same research area (thorough mode
// only). Best-effort: any failure returns nothing.
func (o *Orchestrator) searchRelated(ctx context.Context, gap *domain.Gap, s *State) []string {
	queries, err := o.queries.ExpansionQueries(ctx, gap)
	if err != nil || len(queries) == 0 {
		slog.WarnContext(ctx, "expansion query generation failed", "error", err)
		return nil
	}
	s.CountQueries(len(queries))

	refs, err := o.search.Search(ctx, queries, 1)
	if err != nil {
		slog.WarnContext(ctx, "expansion search failed", "error", err)
		return nil
	}
	return refs
}

func (o *Orchestrator) synthesize(req domain.AnalysisRequest, seedRef string, s *State, start time.Time) *domain.AnalysisResponse {
	elapsed := time.Since(start)
	counters := s.Counters()
	stats, landscape, summary := Synthesize(counters, s.Validated(), elapsed)

	return &domain.AnalysisResponse{
		SeedRef:        seedRef,
		ValidatedGaps:  s.Validated(),
		EliminatedGaps: s.Eliminated(),
		Counters:       counters,
		FrontierStats:  stats,
		Landscape:      landscape,
		Summary:        summary,
		Metadata: domain.ProcessMetadata{
			Mode:            req.Mode,
			ElapsedSeconds:  round2(elapsed.Seconds()),
			PapersAnalyzed:  counters.PapersAnalyzed,
			QueriesExecuted: counters.QueriesExecuted,
			CompletedAt:     time.Now().UTC(),
		},
	}
}

// failureResponse builds the complete error response for a fatal seed
// failure: all counters present and zeroed, analytics empty, and a
// human-readable narrative instead of an escaping error.
func (o *Orchestrator) failureResponse(req domain.AnalysisRequest, seedRef string, s *State, start time.Time, cause error) *domain.AnalysisResponse {
	elapsed := time.Since(start)
	return &domain.AnalysisResponse{
		SeedRef:        seedRef,
		ValidatedGaps:  []domain.ValidatedGap{},
		EliminatedGaps: []domain.EliminatedGap{},
		Counters:       s.Counters(),
		Summary: domain.ExecutiveSummary{
			Narrative: "Analysis failed during processing: the seed document could not be analyzed.",
		},
		Metadata: domain.ProcessMetadata{
			Mode:           req.Mode,
			ElapsedSeconds: round2(elapsed.Seconds()),
			CompletedAt:    time.Now().UTC(),
		},
		Failure: fmt.Sprintf("seed document analysis failed: %v", cause),
	}
}

func dedupRefs(refs []string) []string {
	seen := make(map[string]struct{}, len(refs))
	out := refs[:0]
	for _, r := range refs {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
