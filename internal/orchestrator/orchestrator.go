// Package orchestrator runs one automation session: it materializes the
// configured state catalog, establishes the initial active-state belief,
// then drives the configured sequence of steps through the execution
// controller while an optional monitor goroutine keeps the belief fresh.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/visor-cli/api/schemas"
	"github.com/xkilldash9x/visor-cli/internal/config"
	"github.com/xkilldash9x/visor-cli/internal/execution"
	"github.com/xkilldash9x/visor-cli/internal/find"
	"github.com/xkilldash9x/visor-cli/internal/input"
	"github.com/xkilldash9x/visor-cli/internal/statemgmt"
)

// Session manages the high-level lifecycle of one automation run. It is
// injected with fully configured components, which keeps it decoupled and
// testable.
type Session struct {
	cfg        *config.Config
	logger     *zap.Logger
	catalog    statemgmt.Service
	tracker    *statemgmt.Tracker
	finder     *find.Find
	inputs     *input.Input
	controller *execution.Controller
}

// New creates a session with its dependencies provided explicitly.
func New(
	cfg *config.Config,
	logger *zap.Logger,
	catalog statemgmt.Service,
	tracker *statemgmt.Tracker,
	finder *find.Find,
	inputs *input.Input,
	controller *execution.Controller,
) (*Session, error) {
	if cfg == nil ||
		logger == nil ||
		catalog == nil ||
		tracker == nil ||
		finder == nil ||
		inputs == nil ||
		controller == nil {
		return nil, fmt.Errorf("cannot initialize session with nil dependencies")
	}
	return &Session{
		cfg:        cfg,
		logger:     logger.With(zap.String("component", "orchestrator")),
		catalog:    catalog,
		tracker:    tracker,
		finder:     finder,
		inputs:     inputs,
		controller: controller,
	}, nil
}

// Run executes the configured sequence. The active-state belief is rebuilt
// first so the session never starts blind; when a monitor interval is
// configured, a background goroutine re-verifies the belief while the steps
// run.
func (s *Session) Run(ctx context.Context) error {
	s.logger.Info("Session starting",
		zap.Int("states", len(s.cfg.States)),
		zap.Int("steps", len(s.cfg.Sequence)))

	s.tracker.RebuildActiveStates(ctx)
	s.logger.Info("Initial active states established",
		zap.Strings("states", s.tracker.Active().Names()))

	g, runCtx := errgroup.WithContext(ctx)
	monitorCtx, stopMonitor := context.WithCancel(runCtx)
	defer stopMonitor()

	if s.cfg.Automation.MonitorInterval > 0 {
		g.Go(func() error {
			s.monitor(monitorCtx, s.cfg.Automation.MonitorInterval)
			return nil
		})
	}

	var stepErr error
	for i, step := range s.cfg.Sequence {
		if err := s.runStep(runCtx, i, step); err != nil {
			stepErr = fmt.Errorf("step %d (%s): %w", i, step.Action, err)
			break
		}
	}

	stopMonitor()
	if err := g.Wait(); err != nil && stepErr == nil {
		stepErr = err
	}

	if stepErr != nil {
		s.logger.Error("Session finished with error", zap.Error(stepErr))
		return stepErr
	}
	s.logger.Info("Session finished",
		zap.Strings("active_states", s.tracker.Active().Names()))
	return nil
}

// monitor periodically verifies the active-state belief. Verification and
// rebuild run on this single goroutine; the tracker is not reentrant.
func (s *Session) monitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tracker.CheckForActiveStates(ctx)
			s.tracker.RebuildActiveStates(ctx)
		}
	}
}

// runStep translates one declarative step into an action body plus options
// and pushes it through the controller. A step whose action fails its
// success predicate does not abort the session; infrastructure errors do.
func (s *Session) runStep(ctx context.Context, idx int, step config.StepConfig) error {
	base := s.baseOptions(step)

	var (
		body        execution.ActionBody
		cfg         schemas.ActionConfig
		description string
	)
	targets, err := s.targets(step)
	if err != nil {
		return err
	}

	switch step.Action {
	case "find":
		opts := schemas.FindOptions{BaseOptions: base, Strategy: schemas.FindAll}
		body = s.finder.Body(opts)
		cfg = opts
		description = fmt.Sprintf("find %s", stepTarget(step))
	case "click":
		opts := schemas.ClickOptions{BaseOptions: base}
		body = s.inputs.ClickBody(opts)
		cfg = opts
		description = fmt.Sprintf("click %s", stepTarget(step))
	case "type":
		opts := schemas.TypeOptions{BaseOptions: base}
		body = s.inputs.TypeBody(opts)
		cfg = opts
		description = fmt.Sprintf("type into %s", stepTarget(step))
	case "drag":
		opts := schemas.DragOptions{BaseOptions: base}
		body = s.inputs.DragBody(opts)
		cfg = opts
		description = fmt.Sprintf("drag %s", strings.Join(step.Objects, " to "))
	default:
		return fmt.Errorf("unknown action %q", step.Action)
	}

	res, err := s.controller.Perform(ctx, body, description, cfg, targets...)
	if err != nil {
		return err
	}
	s.logger.Info("Step finished",
		zap.Int("step", idx),
		zap.String("action", description),
		zap.Bool("success", res.Success),
		zap.Int("matches", res.MatchCount()),
		zap.Duration("duration", res.Duration))
	return nil
}

// baseOptions merges a step's overrides onto the automation defaults.
func (s *Session) baseOptions(step config.StepConfig) schemas.BaseOptions {
	auto := s.cfg.Automation
	base := schemas.BaseOptions{
		PauseBefore: auto.PauseBefore,
		PauseAfter:  auto.PauseAfter,
		Repetitions: auto.MaxSequences,
	}
	if step.PauseBefore > 0 {
		base.PauseBefore = step.PauseBefore
	}
	if step.PauseAfter > 0 {
		base.PauseAfter = step.PauseAfter
	}
	if step.Repetitions > 0 {
		base.Repetitions = step.Repetitions
	}
	return base
}

// targets assembles the object collection a step acts on. Drag steps list
// both endpoints in Objects; other steps name a single state object. Type
// steps additionally carry their text.
func (s *Session) targets(step config.StepConfig) ([]*statemgmt.ObjectCollection, error) {
	collection := &statemgmt.ObjectCollection{}

	names := step.Objects
	if step.Object != "" {
		names = append([]string{step.Object}, names...)
	}
	for _, name := range names {
		img, err := s.lookupImage(step.State, name)
		if err != nil {
			return nil, err
		}
		collection.Images = append(collection.Images, img)
	}
	if step.Text != "" {
		collection.Strings = append(collection.Strings, step.Text)
	}
	if collection.IsEmpty() && step.Action != "type" {
		return nil, fmt.Errorf("no target configured")
	}
	return []*statemgmt.ObjectCollection{collection}, nil
}

// lookupImage resolves "object" within the step's state, or a qualified
// "state.object" reference.
func (s *Session) lookupImage(stateName, objectName string) (*statemgmt.StateImage, error) {
	if before, after, found := strings.Cut(objectName, "."); found {
		stateName, objectName = before, after
	}
	state, ok := s.catalog.StateByName(stateName)
	if !ok {
		return nil, fmt.Errorf("state %q is not defined", stateName)
	}
	img, ok := state.Image(objectName)
	if !ok {
		return nil, fmt.Errorf("state %q has no object %q", stateName, objectName)
	}
	return img, nil
}

func stepTarget(step config.StepConfig) string {
	if step.Object == "" {
		return step.State
	}
	return step.State + "." + step.Object
}
