package frontier

import (
	"fmt"
	"math"
	"strings"
	"time"

	"frontier.app/frontier/internal/domain"
)

// Synthesize turns final counters and the final validated-gap list into the
// response analytics. It is a pure function: no collaborators, no clock reads,
// no randomness. Every formula is monotonic and saturates at the documented
// bound, so identical inputs always produce identical output.
func Synthesize(counters domain.RunCounters, validated []domain.ValidatedGap, elapsed time.Duration) (domain.FrontierStats, domain.Landscape, domain.ExecutiveSummary) {
	minutes := elapsed.Minutes()
	if minutes <= 0 {
		minutes = 1.0 / 60
	}

	stats := domain.FrontierStats{
		ResearchVelocity:         round2(float64(counters.PapersAnalyzed) / minutes),
		GapDiscoveryRate:         round2(float64(counters.GapsDiscovered) / float64(maxi(1, counters.PapersAnalyzed))),
		EliminationEffectiveness: round1(float64(counters.GapsEliminated) / float64(maxi(1, counters.GapsDiscovered)) * 100),
		FrontierCoverage:         round1(math.Min(85.0, 20.0+float64(counters.PapersAnalyzed)*8)),
	}

	landscape := domain.Landscape{
		Clusters:                clusterByCategory(validated),
		EmergingTrends:          emergingTrends(validated),
		BreakthroughProbability: round1(math.Min(10.0, 8.5+float64(len(validated))*0.2)),
		CrossDomainPotential:    math.Max(2, float64(counters.AreasExplored)/3),
	}

	summary := buildSummary(counters, stats, landscape, len(validated))

	return stats, landscape, summary
}

func clusterByCategory(validated []domain.ValidatedGap) []domain.GapCluster {
	index := map[domain.GapCategory]int{}
	var clusters []domain.GapCluster
	for _, g := range validated {
		i, ok := index[g.Category]
		if !ok {
			i = len(clusters)
			index[g.Category] = i
			clusters = append(clusters, domain.GapCluster{Category: g.Category})
		}
		clusters[i].Count++
		clusters[i].Gaps = append(clusters[i].Gaps, truncate(g.Description, 100))
	}
	return clusters
}

// emergingTrends derives qualitative labels from keyword presence in the
// concatenated gap descriptions. Purely illustrative, but deterministic.
func emergingTrends(validated []domain.ValidatedGap) []string {
	var b strings.Builder
	for _, g := range validated {
		b.WriteString(strings.ToLower(g.Description))
		b.WriteString(" ")
	}
	text := b.String()

	var trends []string
	if strings.Contains(text, "edge") || strings.Contains(text, "real-time") {
		trends = append(trends, "Real-Time Edge Computing")
	}
	if strings.Contains(text, "robust") || strings.Contains(text, "adversarial") {
		trends = append(trends, "Robust AI Systems")
	}
	if strings.Contains(text, "cross-domain") || strings.Contains(text, "generalization") {
		trends = append(trends, "Cross-Domain Adaptation")
	}
	if strings.Contains(text, "multi-modal") || strings.Contains(text, "fusion") {
		trends = append(trends, "Multi-Modal AI")
	}
	if len(trends) == 0 {
		trends = []string{"Advanced AI Techniques"}
	}
	return trends
}

func buildSummary(counters domain.RunCounters, stats domain.FrontierStats, landscape domain.Landscape, finalCount int) domain.ExecutiveSummary {
	narrative := fmt.Sprintf(
		"Analysis of the research frontier revealed %d high-impact research opportunities across %d categories, with %d previously identified gaps eliminated due to existing solutions.",
		finalCount, len(landscape.Clusters), counters.GapsEliminated)

	findings := []string{
		fmt.Sprintf("Identified %d unexplored research gaps from %d analyzed documents", finalCount, counters.PapersAnalyzed),
		fmt.Sprintf("Research velocity reached %.1f documents/minute", stats.ResearchVelocity),
		fmt.Sprintf("Gap elimination rate of %.1f%% indicates validation rigor", stats.EliminationEffectiveness),
		fmt.Sprintf("Frontier coverage reached %.1f%% of the identified landscape", stats.FrontierCoverage),
	}

	steps := []string{
		"Prioritize validated gaps by commercial potential and technical feasibility",
		"Develop proof-of-concept prototypes for the highest-impact gaps",
		"Monitor the competitive landscape for emerging solutions",
	}
	if counters.GapsLeftPending > 0 {
		steps = append(steps, fmt.Sprintf("Re-run in thorough mode to validate %d gaps left pending", counters.GapsLeftPending))
	}

	return domain.ExecutiveSummary{
		Narrative:            narrative,
		KeyFindings:          findings,
		RecommendedNextSteps: steps,
	}
}

// truncate shortens a description for cluster listings.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
