// Package history documents executed actions. The controller decides when
// illustration is allowed; actual rendering happens behind the Renderer
// interface, so drawing backends (annotated screenshots, galleries) plug in
// without touching the execution core.
package history

import (
	"context"

	"go.uber.org/zap"

	"github.com/xkilldash9x/visor-cli/api/schemas"
	"github.com/xkilldash9x/visor-cli/internal/config"
	"github.com/xkilldash9x/visor-cli/internal/statemgmt"
)

// Renderer draws one illustrated action.
type Renderer interface {
	Render(ctx context.Context, res *schemas.ActionResult, regions []schemas.Region) error
}

// Controller gates illustration on the configured mode and forwards allowed
// actions to the renderer. It implements the execution.Illustrator hook.
type Controller struct {
	mode     config.IllustrationMode
	renderer Renderer
	logger   *zap.Logger
}

// NewController builds the illustration controller. A nil renderer falls
// back to the log renderer.
func NewController(mode config.IllustrationMode, renderer Renderer, logger *zap.Logger) *Controller {
	if renderer == nil {
		renderer = NewLogRenderer(logger)
	}
	return &Controller{
		mode:     mode,
		renderer: renderer,
		logger:   logger.With(zap.String("component", "illustration")),
	}
}

// Illustrate renders the action when the mode allows it.
func (c *Controller) Illustrate(ctx context.Context, res *schemas.ActionResult, regions []schemas.Region, cfg schemas.ActionConfig, targets ...*statemgmt.ObjectCollection) error {
	if !c.allowed(res) {
		return nil
	}
	return c.renderer.Render(ctx, res, regions)
}

func (c *Controller) allowed(res *schemas.ActionResult) bool {
	switch c.mode {
	case config.IllustrateAll:
		return true
	case config.IllustrateFailures:
		return !res.Success
	default:
		return false
	}
}

// LogRenderer is the default renderer: a structured summary of the action,
// its searched regions, and its matches.
type LogRenderer struct {
	logger *zap.Logger
}

// NewLogRenderer creates the log-based renderer.
func NewLogRenderer(logger *zap.Logger) *LogRenderer {
	return &LogRenderer{logger: logger.Named("illustration")}
}

// Render implements Renderer.
func (r *LogRenderer) Render(_ context.Context, res *schemas.ActionResult, regions []schemas.Region) error {
	fields := []zap.Field{
		zap.String("action", res.Description),
		zap.Bool("success", res.Success),
		zap.Int("regions_searched", len(regions)),
		zap.Int("matches", res.MatchCount()),
	}
	if best, ok := res.BestMatch(); ok {
		fields = append(fields,
			zap.Int("best_x", best.Region.X),
			zap.Int("best_y", best.Region.Y),
			zap.Float64("best_score", best.Score))
	}
	r.logger.Info("Action illustrated", fields...)
	return nil
}
