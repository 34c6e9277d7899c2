package execution

import (
	"context"
	"errors"
	"fmt"

	"github.com/xkilldash9x/visor-cli/api/schemas"
)

// ErrStopped is the distinguished stoppage error surfaced when an action is
// cancelled cooperatively. Callers detect it with errors.Is; the original
// cause (usually the context error) stays wrapped for diagnostics.
var ErrStopped = errors.New("action execution stopped")

// ContextSignal is the default CancellationSignal: stoppage follows context
// cancellation.
type ContextSignal struct{}

// NewContextSignal creates the context-backed cancellation signal.
func NewContextSignal() *ContextSignal {
	return &ContextSignal{}
}

// CheckPausePoint implements schemas.CancellationSignal.
func (s *ContextSignal) CheckPausePoint(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStopped, err)
	}
	return nil
}

var _ schemas.CancellationSignal = (*ContextSignal)(nil)
