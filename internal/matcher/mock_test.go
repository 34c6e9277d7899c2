package matcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/visor-cli/api/schemas"
	"github.com/xkilldash9x/visor-cli/internal/config"
)

func fullSurface() schemas.Region {
	return schemas.NewRegion(0, 0, 1920, 1080)
}

func TestMockAlwaysFindsAtProbabilityOne(t *testing.T) {
	m := NewMock(config.MockMatchConfig{DefaultProbability: 1.0}, zap.NewNop())

	res, err := m.Search(context.Background(), []string{"anything"}, fullSurface())
	require.NoError(t, err)
	assert.True(t, res.Found)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, 0.95, res.Matches[0].Score)
}

func TestMockNeverFindsAtProbabilityZero(t *testing.T) {
	m := NewMock(config.MockMatchConfig{DefaultProbability: 0}, zap.NewNop())

	res, err := m.Search(context.Background(), []string{"anything"}, fullSurface())
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Empty(t, res.Matches)
}

func TestMockScriptedImageOverridesDefaults(t *testing.T) {
	cfg := config.MockMatchConfig{
		DefaultProbability: 0,
		Images: map[string]config.MockImageConfig{
			"login_logo": {
				Probability: 1.0,
				Region:      config.RegionConfig{X: 40, Y: 60, W: 100, H: 30},
				Score:       0.99,
			},
		},
	}
	m := NewMock(cfg, zap.NewNop())

	res, err := m.Search(context.Background(), []string{"login_logo", "unscripted"}, fullSurface())
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, schemas.NewRegion(40, 60, 100, 30), res.Matches[0].Region)
	assert.Equal(t, 0.99, res.Matches[0].Score)
}

func TestMockRespectsSearchArea(t *testing.T) {
	cfg := config.MockMatchConfig{
		Images: map[string]config.MockImageConfig{
			"logo": {
				Probability: 1.0,
				Region:      config.RegionConfig{X: 1000, Y: 1000, W: 50, H: 50},
			},
		},
	}
	m := NewMock(cfg, zap.NewNop())

	// Search area nowhere near the scripted location.
	res, err := m.Search(context.Background(), []string{"logo"}, schemas.NewRegion(0, 0, 100, 100))
	require.NoError(t, err)
	assert.False(t, res.Found)

	// Overlapping area finds it.
	res, err = m.Search(context.Background(), []string{"logo"}, schemas.NewRegion(990, 990, 100, 100))
	require.NoError(t, err)
	assert.True(t, res.Found)
}

func TestMockSeedIsDeterministic(t *testing.T) {
	cfg := config.MockMatchConfig{Seed: 7, DefaultProbability: 0.5}

	run := func() []bool {
		m := NewMock(cfg, zap.NewNop())
		out := make([]bool, 0, 20)
		for i := 0; i < 20; i++ {
			res, err := m.Search(context.Background(), []string{"flaky"}, fullSurface())
			require.NoError(t, err)
			out = append(out, res.Found)
		}
		return out
	}

	assert.Equal(t, run(), run())
}

func TestMockHonorsCancelledContext(t *testing.T) {
	m := NewMock(config.MockMatchConfig{DefaultProbability: 1.0}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Search(ctx, []string{"x"}, fullSurface())
	assert.ErrorIs(t, err, context.Canceled)
}
