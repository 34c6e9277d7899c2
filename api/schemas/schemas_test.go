package schemas

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegionGeometry(t *testing.T) {
	r := NewRegion(10, 20, 100, 50)

	assert.True(t, r.IsDefined())
	assert.False(t, NewRegion(0, 0, 0, 50).IsDefined())
	assert.False(t, NewRegion(0, 0, 100, -1).IsDefined())

	assert.True(t, r.Contains(NewRegion(10, 20, 100, 50)))
	assert.True(t, r.Contains(NewRegion(50, 30, 10, 10)))
	assert.False(t, r.Contains(NewRegion(0, 0, 20, 20)))
	assert.False(t, r.Contains(NewRegion(100, 60, 20, 20)))

	assert.Equal(t, Location{X: 60, Y: 45}, r.Center())
}

func TestPositionIn(t *testing.T) {
	r := NewRegion(100, 200, 40, 20)

	tests := []struct {
		pos  Position
		want Location
	}{
		{PositionTopLeft, Location{100, 200}},
		{PositionTopRight, Location{140, 200}},
		{PositionBottomLeft, Location{100, 220}},
		{PositionBottomRight, Location{140, 220}},
		{PositionCenter, Location{120, 210}},
		{Position("bogus"), Location{100, 200}},
	}
	for _, tt := range tests {
		t.Run(string(tt.pos), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pos.In(r))
		})
	}
}

func TestActionResultMatchFor(t *testing.T) {
	res := &ActionResult{}
	first := Match{Region: NewRegion(0, 0, 10, 10), StateName: "menu", ObjectName: "tab"}
	other := Match{Region: NewRegion(5, 5, 10, 10), StateName: "menu", ObjectName: "icon"}
	second := Match{Region: NewRegion(100, 0, 10, 10), StateName: "menu", ObjectName: "tab"}
	res.AddMatch(first)
	res.AddMatch(other)
	res.AddMatch(second)

	got, ok := res.MatchFor("menu", "tab")
	require.True(t, ok)
	if diff := cmp.Diff(second, got); diff != "" {
		t.Errorf("most recent match not returned (-want +got):\n%s", diff)
	}

	_, ok = res.MatchFor("menu", "missing")
	assert.False(t, ok)
}

func TestActionResultBestMatch(t *testing.T) {
	res := &ActionResult{}
	_, ok := res.BestMatch()
	assert.False(t, ok)

	res.AddMatch(Match{Score: 0.4})
	res.AddMatch(Match{Score: 0.9})
	res.AddMatch(Match{Score: 0.7})

	best, ok := res.BestMatch()
	require.True(t, ok)
	assert.Equal(t, 0.9, best.Score)
}

func TestMatchTargetIsCenter(t *testing.T) {
	m := Match{Region: NewRegion(10, 10, 20, 20)}
	assert.Equal(t, Location{X: 20, Y: 20}, m.Target())
}

func TestBaseOptionsMaxSequences(t *testing.T) {
	assert.Equal(t, 1, BaseOptions{}.MaxSequences())
	assert.Equal(t, 1, BaseOptions{Repetitions: -2}.MaxSequences())
	assert.Equal(t, 4, BaseOptions{Repetitions: 4}.MaxSequences())
}

func TestSuccessPredicates(t *testing.T) {
	empty := &ActionResult{}
	oneMatch := &ActionResult{Matches: []Match{{Score: 1}}}
	twoMatches := &ActionResult{Matches: []Match{{Score: 1}, {Score: 1}}}
	typed := &ActionResult{CompletedSequences: 1}

	assert.False(t, FindOptions{}.Success(empty))
	assert.True(t, FindOptions{}.Success(oneMatch))

	assert.False(t, ClickOptions{}.Success(empty))
	assert.True(t, ClickOptions{}.Success(oneMatch))

	assert.False(t, TypeOptions{}.Success(empty))
	assert.True(t, TypeOptions{}.Success(typed))

	assert.False(t, DragOptions{}.Success(oneMatch))
	assert.True(t, DragOptions{}.Success(twoMatches))
}

func TestCustomCriteriaOverridesDefault(t *testing.T) {
	opts := FindOptions{BaseOptions: BaseOptions{
		Criteria: func(res *ActionResult) bool { return res.MatchCount() >= 3 },
	}}

	oneMatch := &ActionResult{Matches: []Match{{Score: 1}}}
	assert.False(t, opts.Success(oneMatch))

	three := &ActionResult{Matches: []Match{{}, {}, {}}}
	assert.True(t, opts.Success(three))
}

func TestNewCrossStateAnchorDisablesAbsoluteDimensions(t *testing.T) {
	a := NewCrossStateAnchor("login", "logo", PositionCenter)
	assert.Equal(t, -1, a.AbsoluteW)
	assert.Equal(t, -1, a.AbsoluteH)
}

func TestActionResultTiming(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	res := &ActionResult{StartTime: start, EndTime: start.Add(2 * time.Second)}
	res.Duration = res.EndTime.Sub(res.StartTime)
	assert.Equal(t, 2*time.Second, res.Duration)
}
