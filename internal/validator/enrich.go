package validator

import (
	"context"
	"fmt"
	"strings"

	"frontier.app/frontier/common/llm"
	"frontier.app/frontier/internal/domain"
)

type enrichmentResult struct {
	ValidationEvidence  string   `json:"validation_evidence" jsonschema_description:"Why this gap is critical and why existing solutions are insufficient"`
	PotentialImpact     string   `json:"potential_impact" jsonschema_description:"Specific, quantifiable outcomes if the gap is closed"`
	SuggestedApproaches []string `json:"suggested_approaches" jsonschema_description:"Concrete, implementable research directions"`
}

var enrichmentSchema = llm.GenerateSchema[enrichmentResult]()

// Enrich turns a gap that survived validation into a full opportunity record.
// Metric scores are synthesized from description complexity; the model only
// fills the narrative fields.
func (v *validator) Enrich(ctx context.Context, gap *domain.Gap) (*domain.ValidatedGap, error) {
	if v.client == nil {
		return nil, fmt.Errorf("no llm client configured")
	}

	prompt := fmt.Sprintf(`A research gap has survived %d validation attempts against the literature:

Description: %q
Source paper: %q

Enrich it into an actionable research opportunity. Approaches must be complete sentences with technical detail, not vague suggestions.`,
		gap.ValidationStrikes, gap.Description, gap.SourceTitle)

	var result enrichmentResult
	_, err := v.client.Chat(ctx, llm.Request{
		SystemPrompt: "You are a research strategist enriching validated research gaps into actionable opportunities.",
		UserPrompt:   prompt,
		SchemaName:   "gap_enrichment",
		Schema:       enrichmentSchema,
		Temperature:  llm.Temp(0.4),
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("enriching gap %s: %w", gap.ID, err)
	}

	approaches := result.SuggestedApproaches
	if len(approaches) == 0 {
		approaches = []string{"Further investigation needed"}
	}

	enriched := &domain.ValidatedGap{
		ID:                  gap.ID,
		Description:         gap.Description,
		SourceDocumentRef:   gap.SourceDocumentRef,
		SourceTitle:         gap.SourceTitle,
		Category:            gap.Category,
		ValidationAttempts:  gap.ValidationStrikes,
		ValidationEvidence:  fallbackText(result.ValidationEvidence, "Validated through systematic analysis"),
		PotentialImpact:     fallbackText(result.PotentialImpact, "Significant research opportunity"),
		SuggestedApproaches: approaches,
		Metrics:             synthesizeMetrics(gap.Description),
		Confidence:          clampf(80+float64(gap.ValidationStrikes)*5, 70, 95),
	}
	return enriched, nil
}

// synthesizeMetrics derives scores from a complexity indicator (word count
// over ten) and the description length.
func synthesizeMetrics(description string) domain.GapMetrics {
	chars := float64(len(description))
	complexity := float64(len(strings.Fields(description))) / 10

	return domain.GapMetrics{
		Difficulty:            clampf(5+complexity*0.5, 3, 10),
		InnovationPotential:   clampf(7+chars/100, 6, 10),
		CommercialViability:   clampf(6+complexity*0.3, 4, 10),
		TimeToSolution:        fmt.Sprintf("%d-%d years", maxi(1, int(complexity)), maxi(2, int(complexity+1))),
		FundingLikelihood:     clampf(60+chars/5, 30, 95),
		CollaborationScore:    clampf(7+complexity*0.2, 5, 10),
		EthicalConsiderations: clampf(4+complexity*0.1, 2, 10),
	}
}

func fallbackText(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func clampf(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func maxi(a, b int) int {
	if a > b {
		return a
	}
	return b
}
