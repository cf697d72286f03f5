package domain

// GapCategory captures where in a document a gap was extracted from.
type GapCategory string

const (
	GapCategoryLimitation GapCategory = "Limitation"
	GapCategoryFutureWork GapCategory = "Future Work"
)

// Gap is an unresolved claim extracted from an analyzed document. It lives in
// the pending store until it is either eliminated by counter-evidence or
// graduates into a ValidatedGap.
type Gap struct {
	ID                string      `json:"id"`
	Description       string      `json:"description"`
	SourceDocumentRef string      `json:"source_document_ref"`
	SourceTitle       string      `json:"source_title"`
	Category          GapCategory `json:"category"`
	ValidationStrikes int         `json:"validation_strikes"`
}

// GapMetrics is the numeric bundle attached to a gap during enrichment.
// Every field is bounded; the fallback enrichment derives them from the
// description's word and character counts.
type GapMetrics struct {
	Difficulty            float64 `json:"difficulty"`
	InnovationPotential   float64 `json:"innovation_potential"`
	CommercialViability   float64 `json:"commercial_viability"`
	TimeToSolution        string  `json:"time_to_solution"`
	FundingLikelihood     float64 `json:"funding_likelihood"`
	CollaborationScore    float64 `json:"collaboration_score"`
	EthicalConsiderations float64 `json:"ethical_considerations"`
}

// ValidatedGap is a gap that survived validation, enriched with narrative and
// metric fields. Created exactly once, at the moment the gap leaves the
// pending store.
type ValidatedGap struct {
	ID                  string      `json:"id"`
	Description         string      `json:"description"`
	SourceDocumentRef   string      `json:"source_document_ref"`
	SourceTitle         string      `json:"source_title"`
	Category            GapCategory `json:"category"`
	ValidationAttempts  int         `json:"validation_attempts"`
	ValidationEvidence  string      `json:"validation_evidence"`
	PotentialImpact     string      `json:"potential_impact"`
	SuggestedApproaches []string    `json:"suggested_approaches"`
	Metrics             GapMetrics  `json:"metrics"`
	Confidence          float64     `json:"confidence"`
}

// EliminatedGap records a gap removed from the frontier because existing work
// already addresses it.
type EliminatedGap struct {
	Description string `json:"description"`
	Reason      string `json:"reason"`
}
