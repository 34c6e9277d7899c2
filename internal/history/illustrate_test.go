package history

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/visor-cli/api/schemas"
	"github.com/xkilldash9x/visor-cli/internal/config"
)

type countingRenderer struct {
	rendered int
}

func (r *countingRenderer) Render(context.Context, *schemas.ActionResult, []schemas.Region) error {
	r.rendered++
	return nil
}

func TestIllustrationModes(t *testing.T) {
	success := &schemas.ActionResult{Success: true}
	failure := &schemas.ActionResult{Success: false}

	tests := []struct {
		mode      config.IllustrationMode
		onSuccess int
		onFailure int
	}{
		{config.IllustrateOff, 0, 0},
		{config.IllustrateAll, 1, 1},
		{config.IllustrateFailures, 0, 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			renderer := &countingRenderer{}
			c := NewController(tt.mode, renderer, zap.NewNop())

			require.NoError(t, c.Illustrate(context.Background(), success, nil, schemas.FindOptions{}))
			assert.Equal(t, tt.onSuccess, renderer.rendered)

			renderer.rendered = 0
			require.NoError(t, c.Illustrate(context.Background(), failure, nil, schemas.FindOptions{}))
			assert.Equal(t, tt.onFailure, renderer.rendered)
		})
	}
}

func TestNilRendererFallsBackToLogRenderer(t *testing.T) {
	c := NewController(config.IllustrateAll, nil, zap.NewNop())
	res := &schemas.ActionResult{Success: true}
	res.AddMatch(schemas.Match{Region: schemas.NewRegion(1, 2, 3, 4), Score: 0.8})

	assert.NoError(t, c.Illustrate(context.Background(), res, []schemas.Region{schemas.NewRegion(0, 0, 10, 10)}, schemas.FindOptions{}))
}
