// Package actionlog records finished actions per automation session. It is
// the logging hook of the execution controller.
package actionlog

import (
	"context"

	"go.uber.org/zap"

	"github.com/xkilldash9x/visor-cli/api/schemas"
	"github.com/xkilldash9x/visor-cli/internal/statemgmt"
)

// Logger writes one structured record per completed action.
type Logger struct {
	logger *zap.Logger
}

// New creates the action logger.
func New(logger *zap.Logger) *Logger {
	return &Logger{logger: logger.Named("actions")}
}

// LogAction implements the execution.ActionLogger hook.
func (l *Logger) LogAction(_ context.Context, sessionID string, res *schemas.ActionResult, target *statemgmt.ObjectCollection) error {
	fields := []zap.Field{
		zap.String("session_id", sessionID),
		zap.String("action", res.Description),
		zap.Bool("success", res.Success),
		zap.Int("matches", res.MatchCount()),
		zap.Int("sequences", res.CompletedSequences),
		zap.Duration("duration", res.Duration),
	}
	if res.DegradedSearch {
		fields = append(fields, zap.Bool("degraded_search", true))
	}
	if target != nil {
		names := make([]string, 0, len(target.Images))
		for _, img := range target.Images {
			names = append(names, img.OwnerState+"."+img.Name)
		}
		fields = append(fields, zap.Strings("targets", names))
	}
	if res.Success {
		l.logger.Info("Action completed", fields...)
	} else {
		l.logger.Warn("Action failed", fields...)
	}
	return nil
}
