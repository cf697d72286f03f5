package validator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"frontier.app/frontier/common/llm"
	"frontier.app/frontier/internal/domain"
)

// Validator decides whether documents invalidate a gap and enriches gaps
// that survive validation.
type Validator interface {
	Invalidated(ctx context.Context, gap *domain.Gap, docs []domain.Document) (bool, error)
	Enrich(ctx context.Context, gap *domain.Gap) (*domain.ValidatedGap, error)
}

type validator struct {
	client llm.Client
	logger *slog.Logger
}

func New(client llm.Client, logger *slog.Logger) Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &validator{client: client, logger: logger}
}

type verdictResult struct {
	Verdict     string `json:"verdict" jsonschema:"enum=SOLVED,enum=PARTIALLY_ADDRESSED,enum=NOT_ADDRESSED" jsonschema_description:"Whether the papers close the gap"`
	Explanation string `json:"explanation" jsonschema_description:"Evidence-based reasoning for the verdict, citing the papers"`
}

var verdictSchema = llm.GenerateSchema[verdictResult]()

// Invalidated asks the model whether the documents solve the gap. Parsing is
// deliberately conservative: an ambiguous or weakly evidenced verdict keeps
// the gap alive. Any transport or parse failure is returned as an error so
// the caller can treat it as not invalidated.
func (v *validator) Invalidated(ctx context.Context, gap *domain.Gap, docs []domain.Document) (bool, error) {
	if v.client == nil {
		return false, fmt.Errorf("no llm client configured")
	}
	if len(docs) == 0 {
		return false, nil
	}

	var result verdictResult
	_, err := v.client.Chat(ctx, llm.Request{
		SystemPrompt: verdictSystemPrompt,
		UserPrompt:   verdictPrompt(gap, docs),
		SchemaName:   "gap_verdict",
		Schema:       verdictSchema,
		Temperature:  llm.Temp(0.0),
	}, &result)
	if err != nil {
		return false, fmt.Errorf("validating gap %s: %w", gap.ID, err)
	}

	invalidated := ConservativeVerdict(result.Verdict, result.Explanation)
	v.logger.InfoContext(ctx, "gap verdict",
		"gap_id", gap.ID,
		"verdict", result.Verdict,
		"invalidated", invalidated)
	return invalidated, nil
}

var solvedEvidence = []string{
	"DIRECTLY ADDRESSES", "PROVIDES A SOLUTION", "WORKING SOLUTION",
	"DEMONSTRATES IMPROVEMENT", "QUANTITATIVE EVIDENCE", "MEASURABLE",
	"ACHIEVES", "RECENT BREAKTHROUGH", "SIGNIFICANT PROGRESS",
}

var partialHighConfidence = []string{
	"SUBSTANTIALLY ADDRESSED", "LARGELY SOLVED", "MOSTLY RESOLVED",
	"NEAR COMPLETE", "80%", "85%", "90%", "95%", "ALMOST SOLVED",
}

var strongSolution = []string{
	"COMPLETE SOLUTION", "FULLY ADDRESSES", "RECENT BREAKTHROUGH SOLVES",
	"DEFINITIVELY SOLVES", "COMPREHENSIVE SOLUTION",
}

// ConservativeVerdict maps a verdict and its explanation to an invalidation
// decision. A SOLVED verdict needs at least one supporting evidence phrase;
// PARTIALLY_ADDRESSED only counts with high-confidence language.
func ConservativeVerdict(verdict, explanation string) bool {
	upper := strings.ToUpper(verdict + " " + explanation)

	switch {
	case strings.Contains(strings.ToUpper(verdict), "SOLVED") && !strings.Contains(strings.ToUpper(verdict), "PARTIALLY"):
		return containsAny(upper, solvedEvidence)
	case strings.Contains(strings.ToUpper(verdict), "PARTIALLY_ADDRESSED"):
		return containsAny(upper, partialHighConfidence)
	default:
		return containsAny(upper, strongSolution)
	}
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func verdictPrompt(gap *domain.Gap, docs []domain.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "RESEARCH GAP TO VALIDATE:\nCategory: %s\nDescription: %q\n\nPAPERS TO ANALYZE FOR SOLUTIONS:\n", gap.Category, gap.Description)
	for _, doc := range docs {
		fmt.Fprintf(&b, "\nTitle: %s\n", doc.Title)
		if len(doc.KeyFindings) > 0 {
			findings := doc.KeyFindings
			if len(findings) > 3 {
				findings = findings[:3]
			}
			fmt.Fprintf(&b, "Key Findings: %s\n", strings.Join(findings, "; "))
		}
	}
	return b.String()
}

const verdictSystemPrompt = `You validate research gaps against papers that may have already solved them.

Verdict criteria:
- SOLVED: a paper directly addresses the exact problem with a working, validated solution and quantitative evidence.
- PARTIALLY_ADDRESSED: substantial progress exists but aspects of the gap remain open.
- NOT_ADDRESSED: related work only; no clear evidence the gap has been narrowed.

Match specificity precisely. Marking tangentially related work as solving a specific gap is a false positive and worse than keeping a solved gap.`
