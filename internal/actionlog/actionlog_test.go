package actionlog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xkilldash9x/visor-cli/api/schemas"
	"github.com/xkilldash9x/visor-cli/internal/statemgmt"
)

func newObservedLogger() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return New(zap.New(core)), logs
}

func TestLogActionSuccess(t *testing.T) {
	l, logs := newObservedLogger()

	res := &schemas.ActionResult{
		Description:        "click login.submit",
		Success:            true,
		CompletedSequences: 1,
		Duration:           120 * time.Millisecond,
	}
	res.AddMatch(schemas.Match{Score: 0.9})

	img := statemgmt.NewStateImage("submit", "submit_pattern")
	img.OwnerState = "login"
	target := &statemgmt.ObjectCollection{Images: []*statemgmt.StateImage{img}}

	require.NoError(t, l.LogAction(context.Background(), "session-9", res, target))

	entries := logs.All()
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, zap.InfoLevel, entry.Level)

	fields := entry.ContextMap()
	assert.Equal(t, "session-9", fields["session_id"])
	assert.Equal(t, "click login.submit", fields["action"])
	assert.Equal(t, true, fields["success"])
	assert.Equal(t, []interface{}{"login.submit"}, fields["targets"])
}

func TestLogActionFailureWarnsAndFlagsDegraded(t *testing.T) {
	l, logs := newObservedLogger()

	res := &schemas.ActionResult{
		Description:    "find ghost",
		Success:        false,
		DegradedSearch: true,
	}
	require.NoError(t, l.LogAction(context.Background(), "s", res, nil))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	assert.Equal(t, true, entries[0].ContextMap()["degraded_search"])
}
