package observability

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/visor-cli/internal/config"
)

// memSink collects console output for assertions.
type memSink struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (s *memSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *memSink) Sync() error { return nil }

func (s *memSink) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

var _ zapcore.WriteSyncer = (*memSink)(nil)

func TestInitializeWritesThroughServiceName(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	sink := &memSink{}
	Initialize(config.LoggerConfig{Level: "debug", Format: "json", ServiceName: "visor-test"}, sink)

	GetLogger().Info("hello from the test")

	out := sink.String()
	assert.Contains(t, out, "hello from the test")
	assert.Contains(t, out, "visor-test")
}

func TestInitializeOnlyFirstCallWins(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	first := &memSink{}
	second := &memSink{}
	Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "one"}, first)
	Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "two"}, second)

	GetLogger().Info("routed")

	assert.Contains(t, first.String(), "routed")
	assert.Empty(t, second.String())
}

func TestInitializeBadLevelFallsBackToInfo(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	sink := &memSink{}
	Initialize(config.LoggerConfig{Level: "chatty", Format: "json", ServiceName: "x"}, sink)

	logger := GetLogger()
	logger.Debug("invisible")
	logger.Info("visible")

	out := sink.String()
	assert.NotContains(t, out, "invisible")
	assert.Contains(t, out, "visible")
}

func TestGetLoggerBeforeInitializeReturnsFallback(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	logger := GetLogger()
	require.NotNil(t, logger)
}
