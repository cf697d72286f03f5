package frontier_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"frontier.app/frontier/common/id"
	"frontier.app/frontier/internal/domain"
	"frontier.app/frontier/internal/frontier"
)

func limitationStatement(i int) string {
	return fmt.Sprintf("Limitation %02d: models degrade badly under distribution shift", i)
}

func seedDocument(limitations int) *domain.Document {
	doc := &domain.Document{
		Ref:   "https://example.org/seed",
		Title: "Seed Paper",
	}
	for i := 0; i < limitations; i++ {
		doc.Limitations = append(doc.Limitations, limitationStatement(i))
	}
	return doc
}

var _ = Describe("Orchestrator", func() {
	var (
		ctx       context.Context
		analyzer  *mockAnalyzer
		queries   *mockQueryGenerator
		search    *mockSearchBackend
		validator *mockValidator
	)

	newOrchestrator := func(cfg frontier.Config) *frontier.Orchestrator {
		return frontier.New(cfg, analyzer, queries, search, validator)
	}

	BeforeEach(func() {
		ctx = context.Background()
		analyzer = &mockAnalyzer{}
		queries = &mockQueryGenerator{}
		search = &mockSearchBackend{}
		validator = &mockValidator{}

		Expect(id.Init(1)).To(Succeed())
	})

	Describe("fast mode", func() {
		It("graduates every inconclusive gap after a single strike", func() {
			analyzer.analyzeFn = func(_ context.Context, ref string) (*domain.Document, error) {
				return seedDocument(3), nil
			}

			resp := newOrchestrator(frontier.Config{}).Run(ctx, domain.AnalysisRequest{
				SeedURL: "https://example.org/seed",
				Mode:    domain.AnalysisModeFast,
			})

			Expect(resp.Failure).To(BeEmpty())
			Expect(resp.ValidatedGaps).To(HaveLen(3))
			Expect(resp.EliminatedGaps).To(BeEmpty())
			Expect(resp.Counters.GapsDiscovered).To(Equal(3))
			Expect(resp.Counters.GapsEliminated).To(Equal(0))
			Expect(resp.Counters.PapersAnalyzed).To(Equal(1))
			Expect(resp.Counters.ValidationAttempts).To(Equal(3))
			Expect(resp.Counters.GapsLeftPending).To(Equal(0))

			for _, g := range resp.ValidatedGaps {
				Expect(g.ValidationAttempts).To(Equal(1))
			}
		})

		It("counts two naive fallback queries per generator failure", func() {
			analyzer.analyzeFn = func(_ context.Context, _ string) (*domain.Document, error) {
				return seedDocument(3), nil
			}
			queries.validationFn = func(_ context.Context, _ *domain.Gap) ([]string, error) {
				return nil, errors.New("model unavailable")
			}

			resp := newOrchestrator(frontier.Config{}).Run(ctx, domain.AnalysisRequest{
				SeedURL: "https://example.org/seed",
				Mode:    domain.AnalysisModeFast,
			})

			// Two gaps explored during expansion plus three validated, two
			// naive queries each.
			Expect(resp.Counters.QueriesExecuted).To(Equal(10))
		})

		It("caps the run at four papers even when more are requested", func() {
			analyzed := 0
			analyzer.analyzeFn = func(_ context.Context, ref string) (*domain.Document, error) {
				analyzed++
				if ref == "https://example.org/seed" {
					return seedDocument(2), nil
				}
				return &domain.Document{Ref: ref, Title: "Related"}, nil
			}
			search.searchFn = func(_ context.Context, _ []string, _ int) ([]string, error) {
				return []string{"r1", "r2", "r3", "r4", "r5", "r6"}, nil
			}

			resp := newOrchestrator(frontier.Config{}).Run(ctx, domain.AnalysisRequest{
				SeedURL:   "https://example.org/seed",
				Mode:      domain.AnalysisModeFast,
				MaxPapers: 10,
			})

			Expect(resp.Counters.PapersAnalyzed).To(Equal(4))
		})
	})

	Describe("thorough mode", func() {
		It("eliminates a gap when the validator finds counter-evidence", func() {
			analyzer.analyzeFn = func(_ context.Context, ref string) (*domain.Document, error) {
				if ref == "https://example.org/seed" {
					return seedDocument(1), nil
				}
				return &domain.Document{Ref: ref, Title: "Counter Evidence"}, nil
			}
			search.validationSearchFn = func(_ context.Context, _ string) ([]string, error) {
				return []string{"https://example.org/solution"}, nil
			}
			validator.invalidatedFn = func(_ context.Context, _ *domain.Gap, docs []domain.Document) (bool, error) {
				Expect(docs).To(HaveLen(1))
				return true, nil
			}

			resp := newOrchestrator(frontier.Config{}).Run(ctx, domain.AnalysisRequest{
				SeedURL:             "https://example.org/seed",
				Mode:                domain.AnalysisModeThorough,
				ValidationThreshold: 2,
			})

			Expect(resp.ValidatedGaps).To(BeEmpty())
			Expect(resp.EliminatedGaps).To(HaveLen(1))
			Expect(resp.EliminatedGaps[0].Reason).To(Equal("Existing solutions found during validation process"))
			Expect(resp.Counters.GapsEliminated).To(Equal(1))
			Expect(resp.Counters.ValidationAttempts).To(Equal(0))
			Expect(resp.Counters.GapsLeftPending).To(Equal(0))
		})

		It("expands the frontier with gaps from newly analyzed documents", func() {
			related := &domain.Document{
				Ref:         "https://example.org/related",
				Title:       "Related Paper",
				Limitations: []string{"A second limitation that is long enough to count"},
			}
			analyzer.analyzeFn = func(_ context.Context, ref string) (*domain.Document, error) {
				if ref == "https://example.org/seed" {
					return seedDocument(1), nil
				}
				return related, nil
			}
			queries.validationFn = func(_ context.Context, _ *domain.Gap) ([]string, error) {
				return []string{"existing solutions"}, nil
			}
			search.searchFn = func(_ context.Context, _ []string, _ int) ([]string, error) {
				return []string{"https://example.org/related", "https://example.org/related"}, nil
			}

			resp := newOrchestrator(frontier.Config{}).Run(ctx, domain.AnalysisRequest{
				SeedURL:             "https://example.org/seed",
				Mode:                domain.AnalysisModeThorough,
				ValidationThreshold: 1,
			})

			Expect(resp.Counters.GapsDiscovered).To(Equal(2))
			Expect(resp.Counters.FrontierExpansions).To(Equal(1))
			// Duplicate refs across searches resolve to one analysis.
			Expect(resp.Counters.PapersAnalyzed).To(Equal(2))
			Expect(resp.ValidatedGaps).To(HaveLen(2))
		})

		It("stops analyzing once the paper budget is spent", func() {
			expansionAnalyses := 0
			analyzer.analyzeFn = func(_ context.Context, ref string) (*domain.Document, error) {
				if ref == "https://example.org/seed" {
					return seedDocument(1), nil
				}
				expansionAnalyses++
				return &domain.Document{Ref: ref, Title: "Related"}, nil
			}
			search.searchFn = func(_ context.Context, _ []string, _ int) ([]string, error) {
				return []string{"r1", "r2", "r3"}, nil
			}

			resp := newOrchestrator(frontier.Config{}).Run(ctx, domain.AnalysisRequest{
				SeedURL:             "https://example.org/seed",
				Mode:                domain.AnalysisModeThorough,
				MaxPapers:           2,
				ValidationThreshold: 1,
			})

			Expect(expansionAnalyses).To(Equal(1))
			Expect(resp.Counters.PapersAnalyzed).To(Equal(2))
		})

		It("analyzes at most two documents per gap during validation", func() {
			validationAnalyses := 0
			analyzer.analyzeFn = func(_ context.Context, ref string) (*domain.Document, error) {
				if ref == "https://example.org/seed" {
					return seedDocument(1), nil
				}
				validationAnalyses++
				return &domain.Document{Ref: ref, Title: "Candidate"}, nil
			}
			search.validationSearchFn = func(_ context.Context, _ string) ([]string, error) {
				return []string{"v1", "v2", "v3", "v4"}, nil
			}

			resp := newOrchestrator(frontier.Config{}).Run(ctx, domain.AnalysisRequest{
				SeedURL:             "https://example.org/seed",
				Mode:                domain.AnalysisModeThorough,
				ValidationThreshold: 1,
			})

			Expect(validationAnalyses).To(Equal(2))
			Expect(resp.Counters.PapersAnalyzed).To(Equal(3))
		})

		It("keeps the gap alive when the validator itself fails", func() {
			analyzer.analyzeFn = func(_ context.Context, ref string) (*domain.Document, error) {
				if ref == "https://example.org/seed" {
					return seedDocument(1), nil
				}
				return &domain.Document{Ref: ref, Title: "Candidate"}, nil
			}
			search.validationSearchFn = func(_ context.Context, _ string) ([]string, error) {
				return []string{"v1"}, nil
			}
			validator.invalidatedFn = func(_ context.Context, _ *domain.Gap, _ []domain.Document) (bool, error) {
				return false, errors.New("judgment service down")
			}

			resp := newOrchestrator(frontier.Config{}).Run(ctx, domain.AnalysisRequest{
				SeedURL:             "https://example.org/seed",
				Mode:                domain.AnalysisModeThorough,
				ValidationThreshold: 1,
			})

			Expect(resp.EliminatedGaps).To(BeEmpty())
			Expect(resp.ValidatedGaps).To(HaveLen(1))
		})

		It("uses the validator enrichment when it succeeds", func() {
			analyzer.analyzeFn = func(_ context.Context, _ string) (*domain.Document, error) {
				return seedDocument(1), nil
			}
			validator.enrichFn = func(_ context.Context, gap *domain.Gap) (*domain.ValidatedGap, error) {
				return &domain.ValidatedGap{
					ID:                 gap.ID,
					Description:        gap.Description,
					ValidationEvidence: "No competing solution surfaced across three searches",
					Confidence:         93,
				}, nil
			}

			resp := newOrchestrator(frontier.Config{}).Run(ctx, domain.AnalysisRequest{
				SeedURL:             "https://example.org/seed",
				Mode:                domain.AnalysisModeThorough,
				ValidationThreshold: 1,
			})

			Expect(resp.ValidatedGaps).To(HaveLen(1))
			Expect(resp.ValidatedGaps[0].Confidence).To(Equal(93.0))
			Expect(resp.ValidatedGaps[0].ValidationEvidence).To(ContainSubstring("No competing solution"))
		})
	})

	Describe("deadline drain", func() {
		It("force-enriches up to the drain cap and reports the rest as pending", func() {
			analyzer.analyzeFn = func(_ context.Context, _ string) (*domain.Document, error) {
				return seedDocument(7), nil
			}

			resp := newOrchestrator(frontier.Config{Budget: time.Nanosecond}).Run(ctx, domain.AnalysisRequest{
				SeedURL:             "https://example.org/seed",
				Mode:                domain.AnalysisModeThorough,
				ValidationThreshold: 2,
			})

			Expect(resp.ValidatedGaps).To(HaveLen(5))
			Expect(resp.Counters.GapsLeftPending).To(Equal(2))

			for _, g := range resp.ValidatedGaps {
				Expect(g.ValidationEvidence).NotTo(BeEmpty())
				Expect(g.PotentialImpact).NotTo(BeEmpty())
				Expect(g.SuggestedApproaches).NotTo(BeEmpty())
				Expect(g.Metrics.TimeToSolution).NotTo(BeEmpty())
				Expect(g.Confidence).To(Equal(75.0))
			}
		})

		It("honors a configured drain cap", func() {
			analyzer.analyzeFn = func(_ context.Context, _ string) (*domain.Document, error) {
				return seedDocument(4), nil
			}

			resp := newOrchestrator(frontier.Config{Budget: time.Nanosecond, DrainCap: 2}).Run(ctx, domain.AnalysisRequest{
				SeedURL: "https://example.org/seed",
				Mode:    domain.AnalysisModeThorough,
			})

			Expect(resp.ValidatedGaps).To(HaveLen(2))
			Expect(resp.Counters.GapsLeftPending).To(Equal(2))
		})
	})

	Describe("seed failure", func() {
		It("returns a complete error response when the analyzer fails", func() {
			analyzer.analyzeFn = func(_ context.Context, _ string) (*domain.Document, error) {
				return nil, errors.New("fetch timed out")
			}

			resp := newOrchestrator(frontier.Config{}).Run(ctx, domain.AnalysisRequest{
				SeedURL: "https://example.org/seed",
				Mode:    domain.AnalysisModeFast,
			})

			Expect(resp.Failure).To(ContainSubstring("seed document analysis failed"))
			Expect(resp.Failure).To(ContainSubstring("fetch timed out"))
			Expect(resp.ValidatedGaps).NotTo(BeNil())
			Expect(resp.ValidatedGaps).To(BeEmpty())
			Expect(resp.EliminatedGaps).NotTo(BeNil())
			Expect(resp.Counters).To(Equal(domain.RunCounters{}))
			Expect(resp.Summary.Narrative).NotTo(BeEmpty())
			Expect(resp.Metadata.Mode).To(Equal(domain.AnalysisModeFast))
		})

		It("treats a nil document as a fatal seed failure", func() {
			analyzer.analyzeFn = func(_ context.Context, _ string) (*domain.Document, error) {
				return nil, nil
			}

			resp := newOrchestrator(frontier.Config{}).Run(ctx, domain.AnalysisRequest{
				SeedURL: "https://example.org/seed",
				Mode:    domain.AnalysisModeFast,
			})

			Expect(resp.Failure).To(ContainSubstring("no document"))
		})
	})

	Describe("request handling", func() {
		It("routes raw text through the text analyzer and mints a seed ref", func() {
			var gotText string
			analyzer.analyzeTextFn = func(_ context.Context, text, ref string) (*domain.Document, error) {
				gotText = text
				return &domain.Document{Ref: ref, Title: "Pasted Paper"}, nil
			}

			resp := newOrchestrator(frontier.Config{}).Run(ctx, domain.AnalysisRequest{
				SeedText: "Abstract. We study a thing.",
				Mode:     domain.AnalysisModeFast,
			})

			Expect(gotText).To(Equal("Abstract. We study a thing."))
			Expect(resp.SeedRef).To(HavePrefix("text-"))
			Expect(resp.Failure).To(BeEmpty())
		})

		It("defaults an unknown mode to thorough", func() {
			analyzer.analyzeFn = func(_ context.Context, _ string) (*domain.Document, error) {
				return seedDocument(0), nil
			}

			resp := newOrchestrator(frontier.Config{}).Run(ctx, domain.AnalysisRequest{
				SeedURL: "https://example.org/seed",
				Mode:    domain.AnalysisMode("weird"),
			})

			Expect(resp.Metadata.Mode).To(Equal(domain.AnalysisModeThorough))
		})

		It("assigns a unique id to every discovered gap", func() {
			analyzer.analyzeFn = func(_ context.Context, _ string) (*domain.Document, error) {
				return seedDocument(6), nil
			}

			resp := newOrchestrator(frontier.Config{}).Run(ctx, domain.AnalysisRequest{
				SeedURL:             "https://example.org/seed",
				Mode:                domain.AnalysisModeThorough,
				ValidationThreshold: 1,
			})

			seen := map[string]bool{}
			for _, g := range resp.ValidatedGaps {
				Expect(seen[g.ID]).To(BeFalse(), "duplicate gap id %s", g.ID)
				seen[g.ID] = true
				Expect(strings.TrimSpace(g.ID)).NotTo(BeEmpty())
			}
			Expect(seen).To(HaveLen(6))
		})
	})
})
