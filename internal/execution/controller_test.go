package execution

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/xkilldash9x/visor-cli/api/schemas"
	"github.com/xkilldash9x/visor-cli/internal/statemgmt"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeClock advances a synthetic timeline and records every requested wait.
type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	waits []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

func (c *fakeClock) Wait(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.waits = append(c.waits, d)
	c.mu.Unlock()
	return ctx.Err()
}

// countingSignal fails the nth cancellation check (1-based); zero never
// fails.
type countingSignal struct {
	failOn int
	checks int
}

func (s *countingSignal) CheckPausePoint(context.Context) error {
	s.checks++
	if s.failOn > 0 && s.checks >= s.failOn {
		return fmt.Errorf("%w: %w", ErrStopped, context.Canceled)
	}
	return nil
}

// recordingHooks counts hook invocations.
type recordingHooks struct {
	illustrated int
	recorded    int
	logged      int
}

func (h *recordingHooks) Illustrate(context.Context, *schemas.ActionResult, []schemas.Region, schemas.ActionConfig, ...*statemgmt.ObjectCollection) error {
	h.illustrated++
	return nil
}

func (h *recordingHooks) RecordAction(context.Context, *schemas.ActionResult) error {
	h.recorded++
	return nil
}

func (h *recordingHooks) LogAction(context.Context, string, *schemas.ActionResult, *statemgmt.ObjectCollection) error {
	h.logged++
	return nil
}

type fixture struct {
	controller *Controller
	clock      *fakeClock
	signal     *countingSignal
	hooks      *recordingHooks
}

func newFixture(t *testing.T, buildDataset bool) *fixture {
	t.Helper()
	clock := newFakeClock()
	signal := &countingSignal{}
	hooks := &recordingHooks{}
	controller, err := NewController(
		clock,
		signal,
		NewResultFactory(clock),
		Hooks{Illustrator: hooks, Dataset: hooks, Logger: hooks},
		buildDataset,
		"session-1",
		zap.NewNop(),
	)
	require.NoError(t, err)
	return &fixture{controller: controller, clock: clock, signal: signal, hooks: hooks}
}

// matchPerRun appends one match per sequence.
func matchPerRun() ActionBody {
	return ActionBodyFunc(func(_ context.Context, res *schemas.ActionResult, _ ...*statemgmt.ObjectCollection) error {
		res.AddMatch(schemas.Match{Region: schemas.NewRegion(0, 0, 10, 10), Score: 0.9})
		return nil
	})
}

func neverMatches() ActionBody {
	return ActionBodyFunc(func(context.Context, *schemas.ActionResult, ...*statemgmt.ObjectCollection) error {
		return nil
	})
}

func TestPerformSuccessfulAction(t *testing.T) {
	f := newFixture(t, true)

	opts := schemas.FindOptions{BaseOptions: schemas.BaseOptions{
		PauseBefore: 100 * time.Millisecond,
		PauseAfter:  200 * time.Millisecond,
		Repetitions: 3,
	}}

	res, err := f.controller.Perform(context.Background(), matchPerRun(), "find target", opts)
	require.NoError(t, err)

	assert.True(t, res.Success)
	// The first sequence already satisfies the find success predicate, so
	// the loop stops early.
	assert.Equal(t, 1, res.CompletedSequences)
	assert.Equal(t, 1, res.MatchCount())
	assert.Equal(t, "find target", res.Description)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, f.clock.waits)
	assert.Positive(t, res.Duration)
	assert.False(t, res.EndTime.Before(res.StartTime))
}

func TestPerformExhaustsRepetitionBudgetOnFailure(t *testing.T) {
	f := newFixture(t, false)

	opts := schemas.FindOptions{BaseOptions: schemas.BaseOptions{Repetitions: 3}}
	res, err := f.controller.Perform(context.Background(), neverMatches(), "find nothing", opts)
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, 3, res.CompletedSequences)
}

func TestPerformDefaultsToOneSequence(t *testing.T) {
	f := newFixture(t, false)

	res, err := f.controller.Perform(context.Background(), neverMatches(), "single shot", schemas.FindOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.CompletedSequences)
}

func TestPerformStopsAtMatchCap(t *testing.T) {
	f := newFixture(t, false)

	opts := schemas.FindOptions{
		BaseOptions: schemas.BaseOptions{
			Repetitions: 10,
			// Keep looping past per-sequence success.
			Criteria: func(res *schemas.ActionResult) bool { return res.MatchCount() >= 2 },
		},
		Matches: 2,
	}
	res, err := f.controller.Perform(context.Background(), matchPerRun(), "find two", opts)
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, 2, res.CompletedSequences)
	assert.Equal(t, 2, res.MatchCount())
}

func TestPerformHooksFireExactlyOnce(t *testing.T) {
	f := newFixture(t, true)

	opts := schemas.FindOptions{BaseOptions: schemas.BaseOptions{Repetitions: 5}}
	_, err := f.controller.Perform(context.Background(), neverMatches(), "probe", opts)
	require.NoError(t, err)

	assert.Equal(t, 1, f.hooks.illustrated)
	assert.Equal(t, 1, f.hooks.recorded)
	assert.Equal(t, 1, f.hooks.logged)
}

func TestPerformDatasetHookGated(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.controller.Perform(context.Background(), neverMatches(), "probe", schemas.FindOptions{})
	require.NoError(t, err)

	assert.Equal(t, 0, f.hooks.recorded)
	assert.Equal(t, 1, f.hooks.illustrated)
	assert.Equal(t, 1, f.hooks.logged)
}

func TestPerformCancelledBeforeFirstSequence(t *testing.T) {
	f := newFixture(t, true)
	f.signal.failOn = 1

	res, err := f.controller.Perform(context.Background(), matchPerRun(), "doomed", schemas.FindOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStopped)

	// The body never ran and no hook fired.
	assert.Equal(t, 0, res.CompletedSequences)
	assert.Equal(t, 0, res.MatchCount())
	assert.False(t, res.Success)
	assert.Equal(t, 0, f.hooks.illustrated)
	assert.Equal(t, 0, f.hooks.logged)
	assert.Empty(t, f.clock.waits)
}

func TestPerformCancelledBetweenSequences(t *testing.T) {
	f := newFixture(t, true)
	// First check passes (pre-flight), second fails (before sequence one).
	f.signal.failOn = 3

	opts := schemas.FindOptions{BaseOptions: schemas.BaseOptions{Repetitions: 5}}
	res, err := f.controller.Perform(context.Background(), neverMatches(), "interrupted", opts)
	require.ErrorIs(t, err, ErrStopped)

	assert.Equal(t, 1, res.CompletedSequences)
	assert.False(t, res.Success)
	assert.Equal(t, 0, f.hooks.illustrated)
}

func TestPerformBodyErrorPropagates(t *testing.T) {
	f := newFixture(t, true)

	boom := errors.New("driver lost connection")
	body := ActionBodyFunc(func(context.Context, *schemas.ActionResult, ...*statemgmt.ObjectCollection) error {
		return boom
	})

	res, err := f.controller.Perform(context.Background(), body, "flaky", schemas.FindOptions{})
	require.ErrorIs(t, err, boom)

	assert.False(t, res.Success)
	assert.Equal(t, 0, f.hooks.illustrated)
	assert.Equal(t, 0, f.hooks.logged)
	// The opening pause ran; the closing pause is skipped on the error path.
	assert.Len(t, f.clock.waits, 1)
}

func TestPerformNilArguments(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.controller.Perform(context.Background(), nil, "x", schemas.FindOptions{})
	assert.Error(t, err)

	_, err = f.controller.Perform(context.Background(), neverMatches(), "x", nil)
	assert.Error(t, err)
}

// zeroSequenceConfig never allows a sequence.
type zeroSequenceConfig struct{ schemas.FindOptions }

func (zeroSequenceConfig) MaxSequences() int { return 0 }

func TestPerformZeroSequencesStillPausesBefore(t *testing.T) {
	f := newFixture(t, false)

	ran := 0
	body := ActionBodyFunc(func(context.Context, *schemas.ActionResult, ...*statemgmt.ObjectCollection) error {
		ran++
		return nil
	})

	cfg := zeroSequenceConfig{schemas.FindOptions{BaseOptions: schemas.BaseOptions{
		PauseBefore: 50 * time.Millisecond,
	}}}
	res, err := f.controller.Perform(context.Background(), body, "no-op", cfg)
	require.NoError(t, err)

	assert.Equal(t, 0, ran)
	assert.Equal(t, 0, res.CompletedSequences)
	// Pause-before fired exactly once, then the (zero) pause-after.
	require.NotEmpty(t, f.clock.waits)
	assert.Equal(t, 50*time.Millisecond, f.clock.waits[0])
	assert.Equal(t, 1, f.hooks.illustrated)
}

func TestPerformEarlyCompletionCriteria(t *testing.T) {
	f := newFixture(t, false)

	runs := 0
	body := ActionBodyFunc(func(_ context.Context, res *schemas.ActionResult, _ ...*statemgmt.ObjectCollection) error {
		runs++
		if runs == 2 {
			res.AddMatch(schemas.Match{Score: 1.0})
		}
		return nil
	})

	opts := schemas.FindOptions{BaseOptions: schemas.BaseOptions{Repetitions: 5}}
	res, err := f.controller.Perform(context.Background(), body, "retry until found", opts)
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, 2, res.CompletedSequences)
}

func TestLifecycleMoreSequencesAllowed(t *testing.T) {
	l := NewLifecycle()

	res := &schemas.ActionResult{}
	opts := schemas.FindOptions{BaseOptions: schemas.BaseOptions{Repetitions: 2}}

	assert.True(t, l.MoreSequencesAllowed(res, opts))

	// A satisfied predicate requires at least one completed sequence to end
	// the loop.
	res.AddMatch(schemas.Match{Score: 1.0})
	assert.True(t, l.MoreSequencesAllowed(res, opts))

	l.IncrementCompletedSequences(res)
	assert.False(t, l.MoreSequencesAllowed(res, opts))
}

func TestContextSignalWrapsErrStopped(t *testing.T) {
	s := NewContextSignal()

	assert.NoError(t, s.CheckPausePoint(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.CheckPausePoint(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStopped)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSystemClockWait(t *testing.T) {
	c := NewSystemClock()

	assert.NoError(t, c.Wait(context.Background(), 0))
	assert.NoError(t, c.Wait(context.Background(), -time.Second))
	assert.NoError(t, c.Wait(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Wait(ctx, time.Hour), context.Canceled)
}

func TestResultFactorySeedsDefinedRegions(t *testing.T) {
	clock := newFakeClock()
	factory := NewResultFactory(clock)

	img := statemgmt.NewStateImage("logo", "logo_pattern")
	img.Regions().AddRegions(schemas.NewRegion(0, 0, 100, 100))
	collection := &statemgmt.ObjectCollection{
		Images:  []*statemgmt.StateImage{img},
		Regions: []schemas.Region{schemas.NewRegion(200, 200, 50, 50)},
	}

	res := factory.Init(schemas.FindOptions{}, "seeded", collection, nil)
	assert.Equal(t, "seeded", res.Description)
	assert.False(t, res.StartTime.IsZero())
	assert.Equal(t, []schemas.Region{
		schemas.NewRegion(0, 0, 100, 100),
		schemas.NewRegion(200, 200, 50, 50),
	}, res.DefinedRegions)
}
