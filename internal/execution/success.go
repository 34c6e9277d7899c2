package execution

import (
	"github.com/xkilldash9x/visor-cli/api/schemas"
)

// SuccessEvaluator applies the action's configuration-specific success
// predicate to the final result, exactly once per Perform call.
type SuccessEvaluator struct{}

// NewSuccessEvaluator creates the evaluator.
func NewSuccessEvaluator() *SuccessEvaluator {
	return &SuccessEvaluator{}
}

// Set stamps the success flag on the result.
func (e *SuccessEvaluator) Set(cfg schemas.ActionConfig, res *schemas.ActionResult) {
	res.Success = cfg.Success(res)
}
