package frontier

import (
	"strconv"
	"strings"

	"frontier.app/frontier/common/id"
	"frontier.app/frontier/internal/domain"
)

// minGapLength is the trimmed length below which an extracted statement is
// treated as noise rather than a gap.
const minGapLength = 20

const topicLabelLength = 50

// State is the entire mutable state of one run: the pending gap store, the
// processed-ref and explored-area sets, the FIFO exploration queue, the final
// validated list, and the counters. Constructed fresh per run, never shared.
type State struct {
	pending      []*domain.Gap
	queue        []*domain.Gap
	validated    []domain.ValidatedGap
	validatedIDs map[string]struct{}
	eliminated   []domain.EliminatedGap
	processed    map[string]struct{}
	explored     map[string]struct{}
	counters     domain.RunCounters
}

func NewState() *State {
	return &State{
		validatedIDs: make(map[string]struct{}),
		processed:    make(map[string]struct{}),
		explored:     make(map[string]struct{}),
	}
}

// ExtractGaps creates one pending gap per limitation and future-work statement
// whose trimmed length exceeds the noise threshold, and returns the newly
// created gaps so the caller can enqueue them.
func (s *State) ExtractGaps(doc *domain.Document) []*domain.Gap {
	var created []*domain.Gap
	for _, stmt := range doc.Limitations {
		if g := s.addGap(stmt, doc, domain.GapCategoryLimitation); g != nil {
			created = append(created, g)
		}
	}
	for _, stmt := range doc.FutureWork {
		if g := s.addGap(stmt, doc, domain.GapCategoryFutureWork); g != nil {
			created = append(created, g)
		}
	}
	return created
}

func (s *State) addGap(stmt string, doc *domain.Document, category domain.GapCategory) *domain.Gap {
	stmt = strings.TrimSpace(stmt)
	if len(stmt) <= minGapLength {
		return nil
	}
	gap := &domain.Gap{
		ID:                strconv.FormatInt(id.New(), 10),
		Description:       stmt,
		SourceDocumentRef: doc.Ref,
		SourceTitle:       doc.Title,
		Category:          category,
	}
	s.pending = append(s.pending, gap)
	s.counters.GapsDiscovered++
	return gap
}

// Enqueue appends gaps to the exploration queue, skipping anything already in
// the final validated list.
func (s *State) Enqueue(gaps []*domain.Gap) {
	for _, g := range gaps {
		if _, ok := s.validatedIDs[g.ID]; ok {
			continue
		}
		s.queue = append(s.queue, g)
	}
}

// PopNext removes and returns the oldest queued gap.
func (s *State) PopNext() (*domain.Gap, bool) {
	if len(s.queue) == 0 {
		return nil, false
	}
	g := s.queue[0]
	s.queue = s.queue[1:]
	return g, true
}

func (s *State) QueueLen() int {
	return len(s.queue)
}

// MarkProcessed records a document ref, returning false if it was already
// analyzed this run.
func (s *State) MarkProcessed(ref string) bool {
	if _, ok := s.processed[ref]; ok {
		return false
	}
	s.processed[ref] = struct{}{}
	return true
}

func (s *State) Processed(ref string) bool {
	_, ok := s.processed[ref]
	return ok
}

// MarkExplored records a gap's topic label into the explored-areas set.
func (s *State) MarkExplored(g *domain.Gap) {
	label := g.Description
	if len(label) > topicLabelLength {
		label = label[:topicLabelLength]
	}
	if _, ok := s.explored[label]; ok {
		return
	}
	s.explored[label] = struct{}{}
	s.counters.AreasExplored++
}

// Eliminate removes a gap from the pending store because counter-evidence was
// found, and records the elimination.
func (s *State) Eliminate(g *domain.Gap, reason string) {
	s.removePending(g.ID)
	s.eliminated = append(s.eliminated, domain.EliminatedGap{
		Description: g.Description,
		Reason:      reason,
	})
	s.counters.GapsEliminated++
}

// Graduate moves a gap from the pending store into the final validated list.
// The move happens at most once per gap id.
func (s *State) Graduate(g *domain.Gap, enriched domain.ValidatedGap) {
	if _, ok := s.validatedIDs[g.ID]; ok {
		return
	}
	s.removePending(g.ID)
	s.validatedIDs[g.ID] = struct{}{}
	s.validated = append(s.validated, enriched)
}

func (s *State) removePending(gapID string) {
	for i, g := range s.pending {
		if g.ID == gapID {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}

// PendingBelow returns pending gaps with fewer strikes than threshold, in
// discovery order. The returned slice is a snapshot; mutation goes through
// Eliminate and Graduate.
func (s *State) PendingBelow(threshold int) []*domain.Gap {
	var out []*domain.Gap
	for _, g := range s.pending {
		if g.ValidationStrikes < threshold {
			out = append(out, g)
		}
	}
	return out
}

func (s *State) PendingLen() int {
	return len(s.pending)
}

func (s *State) Validated() []domain.ValidatedGap {
	return s.validated
}

func (s *State) Eliminated() []domain.EliminatedGap {
	return s.eliminated
}

func (s *State) CountQueries(n int) {
	s.counters.QueriesExecuted += n
}

func (s *State) CountValidationAttempt() {
	s.counters.ValidationAttempts++
}

func (s *State) CountFrontierExpansion() {
	s.counters.FrontierExpansions++
}

func (s *State) CountPaperAnalyzed() {
	s.counters.PapersAnalyzed++
}

// Counters returns a copy of the run counters with the left-pending count
// filled in.
func (s *State) Counters() domain.RunCounters {
	c := s.counters
	c.GapsLeftPending = len(s.pending)
	return c
}
