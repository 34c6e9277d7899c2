// Package execution drives a caller-supplied action body through bounded
// repetition, pause, cancellation, and side-effect hooks, producing exactly
// one ActionResult per invocation.
package execution

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/visor-cli/api/schemas"
	"github.com/xkilldash9x/visor-cli/internal/statemgmt"
)

// ActionBody is one concrete action implementation (find, click, type,
// drag). Perform runs a single sequence, mutating the shared result. An
// error return is treated as an infrastructure failure and propagated;
// "target not found" is expressed through the result, not the error.
type ActionBody interface {
	Perform(ctx context.Context, res *schemas.ActionResult, targets ...*statemgmt.ObjectCollection) error
}

// ActionBodyFunc adapts a function to the ActionBody interface.
type ActionBodyFunc func(ctx context.Context, res *schemas.ActionResult, targets ...*statemgmt.ObjectCollection) error

func (f ActionBodyFunc) Perform(ctx context.Context, res *schemas.ActionResult, targets ...*statemgmt.ObjectCollection) error {
	return f(ctx, res, targets...)
}

// Hooks bundles the side-effect collaborators fired after success
// evaluation. Any of them may be nil, which simply skips that hook.
type Hooks struct {
	Illustrator Illustrator
	Dataset     DatasetRecorder
	Logger      ActionLogger
}

// Controller owns the action execution lifecycle. One controller serves a
// whole session; each Perform call operates on its own result and sequence
// counter, so independent invocations may run from separate goroutines.
type Controller struct {
	clock     schemas.Clock
	signal    schemas.CancellationSignal
	factory   ResultFactory
	lifecycle *Lifecycle
	success   *SuccessEvaluator
	hooks     Hooks

	// buildDataset gates the dataset hook; it mirrors the automation
	// config switch rather than a process-wide global.
	buildDataset bool
	sessionID    string
	logger       *zap.Logger
}

// NewController wires an execution controller. The clock, signal, and
// factory are mandatory; hooks are optional.
func NewController(
	clock schemas.Clock,
	signal schemas.CancellationSignal,
	factory ResultFactory,
	hooks Hooks,
	buildDataset bool,
	sessionID string,
	logger *zap.Logger,
) (*Controller, error) {
	if clock == nil {
		return nil, errors.New("clock cannot be nil")
	}
	if signal == nil {
		return nil, errors.New("cancellation signal cannot be nil")
	}
	if factory == nil {
		return nil, errors.New("result factory cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &Controller{
		clock:        clock,
		signal:       signal,
		factory:      factory,
		lifecycle:    NewLifecycle(),
		success:      NewSuccessEvaluator(),
		hooks:        hooks,
		buildDataset: buildDataset,
		sessionID:    sessionID,
		logger:       logger.With(zap.String("component", "execution_controller")),
	}, nil
}

// Perform runs the action body through the full lifecycle:
//
//  1. build a fresh result seeded with description and targets;
//  2. check cancellation (an already-cancelled call never runs the body);
//  3. apply the pause-before delay once;
//  4. run sequences while the lifecycle policy allows, re-checking
//     cancellation before each one;
//  5. evaluate the success predicate once;
//  6. fire illustrate, dataset (when enabled), and log hooks, each once;
//  7. attach the total duration;
//  8. apply the pause-after delay once;
//  9. return the populated result.
//
// Cancellation and body errors leave the result marked unsuccessful and
// propagate; hooks and the pause-after are skipped on those paths, duration
// bookkeeping is best-effort.
func (c *Controller) Perform(
	ctx context.Context,
	body ActionBody,
	description string,
	cfg schemas.ActionConfig,
	targets ...*statemgmt.ObjectCollection,
) (*schemas.ActionResult, error) {
	if body == nil {
		return nil, errors.New("action body cannot be nil")
	}
	if cfg == nil {
		return nil, errors.New("action config cannot be nil")
	}

	res := c.factory.Init(cfg, description, targets...)

	if err := c.signal.CheckPausePoint(ctx); err != nil {
		return c.stop(res, err)
	}
	if err := c.clock.Wait(ctx, cfg.PauseBeforeBegin()); err != nil {
		return c.stop(res, fmt.Errorf("%w: %w", ErrStopped, err))
	}

	for c.lifecycle.MoreSequencesAllowed(res, cfg) {
		if err := c.signal.CheckPausePoint(ctx); err != nil {
			return c.stop(res, err)
		}
		if err := body.Perform(ctx, res, targets...); err != nil {
			res.Success = false
			c.finishTiming(res)
			c.logger.Error("Action body failed",
				zap.String("action", description), zap.Error(err))
			return res, fmt.Errorf("action %q: %w", description, err)
		}
		c.lifecycle.IncrementCompletedSequences(res)
	}

	c.success.Set(cfg, res)
	c.runHooks(ctx, res, cfg, targets...)
	c.finishTiming(res)

	if err := c.clock.Wait(ctx, cfg.PauseAfterEnd()); err != nil {
		// The action itself completed; a cancelled closing pause does not
		// retract its outcome.
		return res, fmt.Errorf("%w: %w", ErrStopped, err)
	}
	return res, nil
}

// stop marks the in-flight result failed and re-raises the stoppage.
func (c *Controller) stop(res *schemas.ActionResult, err error) (*schemas.ActionResult, error) {
	res.Success = false
	c.finishTiming(res)
	c.logger.Info("Action stopped", zap.String("action", res.Description), zap.Error(err))
	return res, err
}

func (c *Controller) finishTiming(res *schemas.ActionResult) {
	res.EndTime = c.clock.Now()
	res.Duration = res.EndTime.Sub(res.StartTime)
}

// runHooks fires illustrate, dataset, log in that order, exactly once per
// call. Hook failures are logged and swallowed so they cannot corrupt the
// result.
func (c *Controller) runHooks(ctx context.Context, res *schemas.ActionResult, cfg schemas.ActionConfig, targets ...*statemgmt.ObjectCollection) {
	if c.hooks.Illustrator != nil {
		if err := c.hooks.Illustrator.Illustrate(ctx, res, res.DefinedRegions, cfg, targets...); err != nil {
			c.logger.Warn("Illustration hook failed", zap.Error(err))
		}
	}
	if c.buildDataset && c.hooks.Dataset != nil {
		if err := c.hooks.Dataset.RecordAction(ctx, res); err != nil {
			c.logger.Warn("Dataset hook failed", zap.Error(err))
		}
	}
	if c.hooks.Logger != nil {
		var first *statemgmt.ObjectCollection
		if len(targets) > 0 {
			first = targets[0]
		}
		if err := c.hooks.Logger.LogAction(ctx, c.sessionID, res, first); err != nil {
			c.logger.Warn("Action log hook failed", zap.Error(err))
		}
	}
}
