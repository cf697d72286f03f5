package frontier_test

import (
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"frontier.app/frontier/internal/domain"
	"frontier.app/frontier/internal/frontier"
)

var _ = Describe("Synthesize", func() {
	It("derives the rate metrics from the counters", func() {
		counters := domain.RunCounters{
			PapersAnalyzed: 5,
			GapsDiscovered: 10,
			GapsEliminated: 2,
		}

		stats, _, _ := frontier.Synthesize(counters, nil, 2*time.Minute)

		Expect(stats.ResearchVelocity).To(Equal(2.5))
		Expect(stats.GapDiscoveryRate).To(Equal(2.0))
		Expect(stats.EliminationEffectiveness).To(Equal(20.0))
		Expect(stats.FrontierCoverage).To(Equal(60.0))
	})

	It("saturates frontier coverage at 85", func() {
		stats, _, _ := frontier.Synthesize(domain.RunCounters{PapersAnalyzed: 50}, nil, time.Minute)
		Expect(stats.FrontierCoverage).To(Equal(85.0))
	})

	It("tolerates zero counters and zero elapsed time", func() {
		stats, landscape, summary := frontier.Synthesize(domain.RunCounters{}, nil, 0)

		Expect(stats.ResearchVelocity).To(Equal(0.0))
		Expect(stats.GapDiscoveryRate).To(Equal(0.0))
		Expect(stats.EliminationEffectiveness).To(Equal(0.0))
		Expect(landscape.BreakthroughProbability).To(Equal(8.5))
		Expect(landscape.CrossDomainPotential).To(Equal(2.0))
		Expect(summary.Narrative).NotTo(BeEmpty())
	})

	It("saturates breakthrough probability at 10", func() {
		validated := make([]domain.ValidatedGap, 20)
		_, landscape, _ := frontier.Synthesize(domain.RunCounters{}, validated, time.Minute)
		Expect(landscape.BreakthroughProbability).To(Equal(10.0))
	})

	It("clusters validated gaps by category in first-seen order", func() {
		validated := []domain.ValidatedGap{
			{Category: domain.GapCategoryLimitation, Description: "first"},
			{Category: domain.GapCategoryFutureWork, Description: "second"},
			{Category: domain.GapCategoryLimitation, Description: strings.Repeat("long ", 30)},
		}

		_, landscape, _ := frontier.Synthesize(domain.RunCounters{}, validated, time.Minute)

		Expect(landscape.Clusters).To(HaveLen(2))
		Expect(landscape.Clusters[0].Category).To(Equal(domain.GapCategoryLimitation))
		Expect(landscape.Clusters[0].Count).To(Equal(2))
		Expect(landscape.Clusters[1].Category).To(Equal(domain.GapCategoryFutureWork))
		Expect(landscape.Clusters[1].Count).To(Equal(1))

		// Long descriptions are truncated in the cluster listing.
		Expect(len(landscape.Clusters[0].Gaps[1])).To(Equal(100))
	})

	Describe("emerging trends", func() {
		trendsFor := func(descriptions ...string) []string {
			var validated []domain.ValidatedGap
			for _, d := range descriptions {
				validated = append(validated, domain.ValidatedGap{Description: d})
			}
			_, landscape, _ := frontier.Synthesize(domain.RunCounters{}, validated, time.Minute)
			return landscape.EmergingTrends
		}

		It("labels keyword families found in the descriptions", func() {
			trends := trendsFor(
				"Real-time inference on EDGE devices is unsolved",
				"Generalization across domains is weak",
			)

			Expect(trends).To(ContainElement("Real-Time Edge Computing"))
			Expect(trends).To(ContainElement("Cross-Domain Adaptation"))
		})

		It("falls back to a generic label when nothing matches", func() {
			Expect(trendsFor("quantum annealing convergence is slow")).To(Equal([]string{"Advanced AI Techniques"}))
		})
	})

	Describe("executive summary", func() {
		It("reports counts consistent with its inputs", func() {
			validated := []domain.ValidatedGap{{Category: domain.GapCategoryLimitation, Description: "one"}}
			counters := domain.RunCounters{GapsEliminated: 3, PapersAnalyzed: 4}

			_, _, summary := frontier.Synthesize(counters, validated, time.Minute)

			Expect(summary.Narrative).To(ContainSubstring("1 high-impact research opportunities"))
			Expect(summary.Narrative).To(ContainSubstring("3 previously identified gaps eliminated"))
			Expect(summary.KeyFindings).To(HaveLen(4))
			Expect(summary.RecommendedNextSteps).To(HaveLen(3))
		})

		It("recommends a thorough re-run when gaps were left pending", func() {
			counters := domain.RunCounters{GapsLeftPending: 2}

			_, _, summary := frontier.Synthesize(counters, nil, time.Minute)

			Expect(summary.RecommendedNextSteps).To(HaveLen(4))
			Expect(summary.RecommendedNextSteps[3]).To(ContainSubstring("2 gaps left pending"))
		})
	})

	It("is a pure function of its inputs", func() {
		counters := domain.RunCounters{PapersAnalyzed: 3, GapsDiscovered: 6, GapsEliminated: 1, AreasExplored: 9}
		validated := []domain.ValidatedGap{{Category: domain.GapCategoryFutureWork, Description: "robustness under adversarial noise"}}

		s1, l1, e1 := frontier.Synthesize(counters, validated, 90*time.Second)
		s2, l2, e2 := frontier.Synthesize(counters, validated, 90*time.Second)

		Expect(s1).To(Equal(s2))
		Expect(l1).To(Equal(l2))
		Expect(e1).To(Equal(e2))
	})
})
