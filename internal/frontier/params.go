package frontier

import "frontier.app/frontier/internal/domain"

const (
	defaultMaxPapers   = 10
	defaultThreshold   = 2
	fastMaxPapers      = 4
	fastGapIterations  = 2
	fastSearchLimit    = 1
	defaultSearchLimit = 5
)

// ModeParams is the single parameter table consulted by the run loop. Fast
// mode trades depth for latency: fewer papers, a forced threshold of one, and
// no frontier expansion at all.
type ModeParams struct {
	MaxPapers              int
	ValidationThreshold    int
	SolutionSearchLimit    int
	GapIterationCap        int
	ExpansionSearch        bool
	ExtractDuringExpansion bool
}

func paramsFor(mode domain.AnalysisMode, maxPapers, threshold int) ModeParams {
	if maxPapers <= 0 {
		maxPapers = defaultMaxPapers
	}
	if threshold <= 0 {
		threshold = defaultThreshold
	}

	if mode == domain.AnalysisModeFast {
		return ModeParams{
			MaxPapers:              min(maxPapers, fastMaxPapers),
			ValidationThreshold:    1,
			SolutionSearchLimit:    fastSearchLimit,
			GapIterationCap:        fastGapIterations,
			ExpansionSearch:        false,
			ExtractDuringExpansion: false,
		}
	}

	return ModeParams{
		MaxPapers:              maxPapers,
		ValidationThreshold:    threshold,
		SolutionSearchLimit:    defaultSearchLimit,
		GapIterationCap:        maxPapers,
		ExpansionSearch:        true,
		ExtractDuringExpansion: true,
	}
}
