package schemas

import "time"

// -- Action Configuration Schemas --
//
// Every action flavor carries its own options struct, but the execution
// controller depends only on the ActionConfig interface. This replaces the
// legacy pattern of dispatching on concrete configuration types.

// ActionConfig is the capability set the execution controller needs from
// any action configuration.
type ActionConfig interface {
	// PauseBeforeBegin is applied exactly once, before the first sequence.
	PauseBeforeBegin() time.Duration
	// PauseAfterEnd is applied exactly once, after all hooks have fired.
	PauseAfterEnd() time.Duration
	// MaxSequences bounds how many times the action body may run per call.
	MaxSequences() int
	// MaxMatches stops the sequence loop once this many hits exist.
	// Zero means unbounded.
	MaxMatches() int
	// Success is the flavor-specific success predicate, evaluated exactly
	// once against the final result (and between sequences to detect early
	// completion).
	Success(res *ActionResult) bool
}

// SuccessCriteria overrides the default success predicate of an options
// struct when non-nil.
type SuccessCriteria func(res *ActionResult) bool

// BaseOptions holds the timing and repetition settings shared by all action
// flavors.
type BaseOptions struct {
	PauseBefore time.Duration `json:"pause_before"`
	PauseAfter  time.Duration `json:"pause_after"`
	// Repetitions is the maximum number of sequences; zero means one.
	Repetitions int             `json:"repetitions"`
	Criteria    SuccessCriteria `json:"-"`
}

func (o BaseOptions) PauseBeforeBegin() time.Duration { return o.PauseBefore }
func (o BaseOptions) PauseAfterEnd() time.Duration    { return o.PauseAfter }

func (o BaseOptions) MaxSequences() int {
	if o.Repetitions <= 0 {
		return 1
	}
	return o.Repetitions
}

// FindStrategy selects how many hits a find sequence keeps.
type FindStrategy string

const (
	// FindFirst stops at the first hit.
	FindFirst FindStrategy = "FIRST"
	// FindBest keeps only the highest-scoring hit per search.
	FindBest FindStrategy = "BEST"
	// FindAll keeps every hit.
	FindAll FindStrategy = "ALL"
)

// FindOptions configures a visual search action.
type FindOptions struct {
	BaseOptions
	Strategy FindStrategy `json:"strategy"`
	// MinScore discards hits below this confidence. Zero keeps everything
	// the matcher accepted.
	MinScore float64 `json:"min_score"`
	// Matches caps the number of hits to accumulate. Zero means unbounded.
	Matches int `json:"matches"`
}

func (o FindOptions) MaxMatches() int { return o.Matches }

// Success defaults to "found at least one match".
func (o FindOptions) Success(res *ActionResult) bool {
	if o.Criteria != nil {
		return o.Criteria(res)
	}
	return res.MatchCount() > 0
}

// ClickOptions configures a click action: locate the target visually, then
// press and release at the best match.
type ClickOptions struct {
	BaseOptions
	Find       FindOptions   `json:"find"`
	Button     MouseButton   `json:"button"`
	ClickCount int           `json:"click_count"`
	HoldFor    time.Duration `json:"hold_for"`
}

func (o ClickOptions) MaxMatches() int { return o.Find.Matches }

// Success defaults to "clicked at least one located target".
func (o ClickOptions) Success(res *ActionResult) bool {
	if o.Criteria != nil {
		return o.Criteria(res)
	}
	return res.MatchCount() > 0
}

// TypeOptions configures a keyboard action. When the target collection
// carries images, the field is clicked first to focus it.
type TypeOptions struct {
	BaseOptions
	// TypeDelay spaces individual key events.
	TypeDelay time.Duration `json:"type_delay"`
}

func (o TypeOptions) MaxMatches() int { return 0 }

// Success defaults to "the keystrokes were delivered without error", which
// the controller models as at least one completed sequence.
func (o TypeOptions) Success(res *ActionResult) bool {
	if o.Criteria != nil {
		return o.Criteria(res)
	}
	return res.CompletedSequences > 0
}

// DragOptions configures a drag between two visual targets.
type DragOptions struct {
	BaseOptions
	Find FindOptions `json:"find"`
	// HoldDelay is the pause between press and the first move, and between
	// the last move and release.
	HoldDelay time.Duration `json:"hold_delay"`
	// MoveSteps is the number of intermediate mouse-move events; zero uses
	// a single jump.
	MoveSteps int `json:"move_steps"`
}

func (o DragOptions) MaxMatches() int { return o.Find.Matches }

// Success defaults to "both endpoints were located", i.e. at least two hits.
func (o DragOptions) Success(res *ActionResult) bool {
	if o.Criteria != nil {
		return o.Criteria(res)
	}
	return res.MatchCount() >= 2
}
