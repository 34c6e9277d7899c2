package input

import (
	"context"

	"go.uber.org/zap"

	"github.com/xkilldash9x/visor-cli/api/schemas"
	"github.com/xkilldash9x/visor-cli/internal/execution"
	"github.com/xkilldash9x/visor-cli/internal/statemgmt"
)

// TypeBody returns the keyboard action body. When the target collection
// carries images, the field is located and clicked first so the keystrokes
// land in the right place; with no images the text goes to whatever
// currently holds focus.
func (i *Input) TypeBody(opts schemas.TypeOptions) execution.ActionBody {
	return execution.ActionBodyFunc(func(ctx context.Context, res *schemas.ActionResult, targets ...*statemgmt.ObjectCollection) error {
		if hasImages(targets) {
			focus := schemas.ClickOptions{Find: schemas.FindOptions{Strategy: schemas.FindBest}}
			before := res.MatchCount()
			if err := i.finder.Run(ctx, focus.Find, res, targets...); err != nil {
				return err
			}
			if res.MatchCount() > before {
				target := res.Matches[len(res.Matches)-1]
				if err := i.clickAt(ctx, focus, target.Target()); err != nil {
					return err
				}
			}
		}

		for _, collection := range targets {
			if collection == nil {
				continue
			}
			for _, text := range collection.Strings {
				i.logger.Debug("Typing text", zap.Int("length", len(text)))
				if err := i.driver.TypeText(ctx, text, opts.TypeDelay); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func hasImages(targets []*statemgmt.ObjectCollection) bool {
	for _, t := range targets {
		if t != nil && len(t.Images) > 0 {
			return true
		}
	}
	return false
}
