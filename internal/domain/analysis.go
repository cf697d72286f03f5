package domain

import "time"

// AnalysisMode selects a budget and thoroughness profile for a run.
type AnalysisMode string

const (
	AnalysisModeFast     AnalysisMode = "fast"
	AnalysisModeThorough AnalysisMode = "thorough"
)

func (m AnalysisMode) Valid() bool {
	return m == AnalysisModeFast || m == AnalysisModeThorough
}

// AnalysisRequest describes one analysis run. Exactly one of SeedURL and
// SeedText must be set.
type AnalysisRequest struct {
	SeedURL             string       `json:"seed_url,omitempty"`
	SeedText            string       `json:"seed_text,omitempty"`
	MaxPapers           int          `json:"max_papers"`
	ValidationThreshold int          `json:"validation_threshold"`
	Mode                AnalysisMode `json:"mode"`
}

// RunCounters are the monotonic per-run counters. They are scoped to a single
// run and never shared across runs.
type RunCounters struct {
	GapsDiscovered     int `json:"gaps_discovered"`
	GapsEliminated     int `json:"gaps_eliminated"`
	PapersAnalyzed     int `json:"total_papers_analyzed"`
	QueriesExecuted    int `json:"search_queries_executed"`
	ValidationAttempts int `json:"validation_attempts"`
	FrontierExpansions int `json:"frontier_expansions"`
	AreasExplored      int `json:"research_areas_explored"`
	GapsLeftPending    int `json:"gaps_left_pending"`
}

// FrontierStats are the rate metrics derived from the run counters. Every
// formula is monotonic and saturates at a documented bound.
type FrontierStats struct {
	ResearchVelocity         float64 `json:"research_velocity"`
	GapDiscoveryRate         float64 `json:"gap_discovery_rate"`
	EliminationEffectiveness float64 `json:"elimination_effectiveness"`
	FrontierCoverage         float64 `json:"frontier_coverage"`
}

// GapCluster groups final gaps sharing a category.
type GapCluster struct {
	Category GapCategory `json:"category"`
	Count    int         `json:"count"`
	Gaps     []string    `json:"gaps"`
}

// Landscape is the qualitative slice of the synthesis output.
type Landscape struct {
	Clusters                []GapCluster `json:"clusters"`
	EmergingTrends          []string     `json:"emerging_trends"`
	BreakthroughProbability float64      `json:"breakthrough_probability"`
	CrossDomainPotential    float64      `json:"cross_domain_potential"`
}

// ExecutiveSummary is the narrative assembled by string templating over the
// computed numbers. It carries no information not already in the counters.
type ExecutiveSummary struct {
	Narrative            string   `json:"narrative"`
	KeyFindings          []string `json:"key_findings"`
	RecommendedNextSteps []string `json:"recommended_next_steps"`
}

// ProcessMetadata describes how the run itself went.
type ProcessMetadata struct {
	Mode            AnalysisMode `json:"mode"`
	ElapsedSeconds  float64      `json:"elapsed_seconds"`
	PapersAnalyzed  int          `json:"papers_analyzed"`
	QueriesExecuted int          `json:"queries_executed"`
	CompletedAt     time.Time    `json:"completed_at"`
}

// AnalysisResponse is the terminal result of a run. On fatal seed failure the
// response is still fully populated with zeroed counters and a failure
// narrative; an exception never escapes to the caller.
type AnalysisResponse struct {
	SeedRef        string           `json:"seed_ref"`
	ValidatedGaps  []ValidatedGap   `json:"validated_gaps"`
	EliminatedGaps []EliminatedGap  `json:"eliminated_gaps"`
	Counters       RunCounters      `json:"counters"`
	FrontierStats  FrontierStats    `json:"frontier_stats"`
	Landscape      Landscape        `json:"landscape"`
	Summary        ExecutiveSummary `json:"summary"`
	Metadata       ProcessMetadata  `json:"process_metadata"`
	Failure        string           `json:"failure,omitempty"`
}
