package frontier

import (
	"time"

	"frontier.app/frontier/internal/domain"
)

const (
	fastBudget     = 60 * time.Second
	thoroughBudget = 15 * time.Minute
)

// Deadline tracks the single wall-clock budget of one run. Every step that
// would issue a collaborator call checks Expired first; expiry is an expected
// terminal condition, not an error.
type Deadline struct {
	expiresAt time.Time
}

// NewDeadline starts the clock for the given mode.
func NewDeadline(mode domain.AnalysisMode) Deadline {
	return NewDeadlineWithBudget(budgetFor(mode))
}

// NewDeadlineWithBudget starts the clock with an explicit budget. A zero or
// negative budget yields an already-expired deadline.
func NewDeadlineWithBudget(budget time.Duration) Deadline {
	return Deadline{expiresAt: time.Now().Add(budget)}
}

func (d Deadline) Expired() bool {
	return !time.Now().Before(d.expiresAt)
}

func (d Deadline) Remaining() time.Duration {
	r := time.Until(d.expiresAt)
	if r < 0 {
		return 0
	}
	return r
}

func budgetFor(mode domain.AnalysisMode) time.Duration {
	if mode == domain.AnalysisModeFast {
		return fastBudget
	}
	return thoroughBudget
}
