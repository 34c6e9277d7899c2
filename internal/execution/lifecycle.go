package execution

import (
	"github.com/xkilldash9x/visor-cli/api/schemas"
)

// Lifecycle decides whether the execution controller may run another
// sequence of the action body and maintains the per-call sequence counter.
type Lifecycle struct{}

// NewLifecycle creates the sequence lifecycle policy.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{}
}

// MoreSequencesAllowed reports whether another run of the action body is
// permitted. The loop stops when the repetition budget is exhausted, when
// the match cap is reached, or when the action already satisfies its own
// success predicate after at least one sequence.
func (l *Lifecycle) MoreSequencesAllowed(res *schemas.ActionResult, cfg schemas.ActionConfig) bool {
	if res.CompletedSequences >= cfg.MaxSequences() {
		return false
	}
	if max := cfg.MaxMatches(); max > 0 && res.MatchCount() >= max {
		return false
	}
	if res.CompletedSequences > 0 && cfg.Success(res) {
		return false
	}
	return true
}

// IncrementCompletedSequences records one finished run of the action body.
func (l *Lifecycle) IncrementCompletedSequences(res *schemas.ActionResult) {
	res.CompletedSequences++
}
