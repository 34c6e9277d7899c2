package input

import (
	"context"

	"go.uber.org/zap"

	"github.com/xkilldash9x/visor-cli/api/schemas"
	"github.com/xkilldash9x/visor-cli/internal/execution"
	"github.com/xkilldash9x/visor-cli/internal/statemgmt"
)

// ClickBody returns the click action body: locate the target visually,
// then move, press, and release at the best match.
func (i *Input) ClickBody(opts schemas.ClickOptions) execution.ActionBody {
	return execution.ActionBodyFunc(func(ctx context.Context, res *schemas.ActionResult, targets ...*statemgmt.ObjectCollection) error {
		before := res.MatchCount()
		findOpts := opts.Find
		if findOpts.Strategy == "" {
			findOpts.Strategy = schemas.FindBest
		}
		if err := i.finder.Run(ctx, findOpts, res, targets...); err != nil {
			return err
		}
		if res.MatchCount() == before {
			// Nothing to click this sequence; the lifecycle may retry.
			return nil
		}
		target := res.Matches[len(res.Matches)-1]
		return i.clickAt(ctx, opts, target.Target())
	})
}

// clickAt dispatches the move/press/release event triple at the location.
func (i *Input) clickAt(ctx context.Context, opts schemas.ClickOptions, loc schemas.Location) error {
	button := opts.Button
	if button == "" || button == schemas.ButtonNone {
		button = schemas.ButtonLeft
	}
	count := opts.ClickCount
	if count <= 0 {
		count = 1
	}
	x, y := float64(loc.X), float64(loc.Y)

	i.logger.Debug("Clicking", zap.Int("x", loc.X), zap.Int("y", loc.Y), zap.String("button", string(button)))

	if err := i.driver.DispatchMouseEvent(ctx, schemas.MouseEvent{
		Type: schemas.MouseMove, X: x, Y: y, Button: schemas.ButtonNone,
	}); err != nil {
		return err
	}
	if err := i.driver.DispatchMouseEvent(ctx, schemas.MouseEvent{
		Type: schemas.MousePress, X: x, Y: y,
		Button: button, ClickCount: count, Buttons: buttonBit(button),
	}); err != nil {
		return err
	}
	if err := i.clock.Wait(ctx, opts.HoldFor); err != nil {
		return err
	}
	return i.driver.DispatchMouseEvent(ctx, schemas.MouseEvent{
		Type: schemas.MouseRelease, X: x, Y: y,
		Button: button, ClickCount: count,
	})
}
