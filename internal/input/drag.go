package input

import (
	"context"

	"go.uber.org/zap"

	"github.com/xkilldash9x/visor-cli/api/schemas"
	"github.com/xkilldash9x/visor-cli/internal/execution"
	"github.com/xkilldash9x/visor-cli/internal/statemgmt"
)

// DragBody returns the drag action body. The first located target is the
// grab point, the last is the drop point: press, move through the
// configured number of intermediate steps, release.
func (i *Input) DragBody(opts schemas.DragOptions) execution.ActionBody {
	return execution.ActionBodyFunc(func(ctx context.Context, res *schemas.ActionResult, targets ...*statemgmt.ObjectCollection) error {
		before := res.MatchCount()
		findOpts := opts.Find
		if findOpts.Strategy == "" {
			findOpts.Strategy = schemas.FindBest
		}
		if err := i.finder.Run(ctx, findOpts, res, targets...); err != nil {
			return err
		}
		located := res.Matches[before:]
		if len(located) < 2 {
			// Both endpoints are needed; an incomplete locate is a failed
			// sequence, not an error.
			return nil
		}
		from := located[0].Target()
		to := located[len(located)-1].Target()
		return i.drag(ctx, opts, from, to)
	})
}

func (i *Input) drag(ctx context.Context, opts schemas.DragOptions, from, to schemas.Location) error {
	i.logger.Debug("Dragging",
		zap.Int("from_x", from.X), zap.Int("from_y", from.Y),
		zap.Int("to_x", to.X), zap.Int("to_y", to.Y))

	held := buttonBit(schemas.ButtonLeft)
	if err := i.driver.DispatchMouseEvent(ctx, schemas.MouseEvent{
		Type: schemas.MouseMove, X: float64(from.X), Y: float64(from.Y), Button: schemas.ButtonNone,
	}); err != nil {
		return err
	}
	if err := i.driver.DispatchMouseEvent(ctx, schemas.MouseEvent{
		Type: schemas.MousePress, X: float64(from.X), Y: float64(from.Y),
		Button: schemas.ButtonLeft, ClickCount: 1, Buttons: held,
	}); err != nil {
		return err
	}
	if err := i.clock.Wait(ctx, opts.HoldDelay); err != nil {
		return err
	}

	steps := opts.MoveSteps
	if steps <= 0 {
		steps = 1
	}
	for step := 1; step <= steps; step++ {
		frac := float64(step) / float64(steps)
		x := float64(from.X) + frac*float64(to.X-from.X)
		y := float64(from.Y) + frac*float64(to.Y-from.Y)
		if err := i.driver.DispatchMouseEvent(ctx, schemas.MouseEvent{
			Type: schemas.MouseMove, X: x, Y: y,
			Button: schemas.ButtonNone, Buttons: held,
		}); err != nil {
			return err
		}
	}

	if err := i.clock.Wait(ctx, opts.HoldDelay); err != nil {
		return err
	}
	return i.driver.DispatchMouseEvent(ctx, schemas.MouseEvent{
		Type: schemas.MouseRelease, X: float64(to.X), Y: float64(to.Y),
		Button: schemas.ButtonLeft, ClickCount: 1,
	})
}
