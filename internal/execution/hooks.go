package execution

import (
	"context"

	"github.com/xkilldash9x/visor-cli/api/schemas"
	"github.com/xkilldash9x/visor-cli/internal/statemgmt"
)

// -- Side-effect hook contracts --
//
// The controller fires these exactly once per Perform call, in the fixed
// order illustrate, dataset, log, after success evaluation. They are
// best-effort: a failing hook is logged and must never corrupt the
// returned result.

// Illustrator documents the action visually (annotated screenshots, drawn
// search regions). The shipped implementation logs a structured summary;
// rendering backends plug in behind the same contract.
type Illustrator interface {
	Illustrate(ctx context.Context, res *schemas.ActionResult, regions []schemas.Region, cfg schemas.ActionConfig, targets ...*statemgmt.ObjectCollection) error
}

// DatasetRecorder captures completed actions as training data. Only fired
// when dataset building is enabled in the automation config.
type DatasetRecorder interface {
	RecordAction(ctx context.Context, res *schemas.ActionResult) error
}

// ActionLogger records the finished action for the session.
type ActionLogger interface {
	LogAction(ctx context.Context, sessionID string, res *schemas.ActionResult, target *statemgmt.ObjectCollection) error
}
