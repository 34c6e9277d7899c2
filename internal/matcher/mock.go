// Package matcher hosts the built-in visual matcher implementations. The
// real image-search capability is external; what ships here is the
// deterministic mock used for dry runs and tests, where scripted outcomes
// stand in for template matching.
package matcher

import (
	"context"
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"github.com/xkilldash9x/visor-cli/api/schemas"
	"github.com/xkilldash9x/visor-cli/internal/config"
)

// defaultMockRegion is where unscripted descriptors are reported when the
// mock decides they are found.
var defaultMockRegion = schemas.NewRegion(0, 0, 200, 100)

// Mock is a VisualMatcher whose outcomes are scripted by configuration:
// each descriptor has a find probability, a region, and a score. A seeded
// random source keeps runs reproducible.
type Mock struct {
	cfg    config.MockMatchConfig
	logger *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewMock builds the mock matcher from its configuration.
func NewMock(cfg config.MockMatchConfig, logger *zap.Logger) *Mock {
	return &Mock{
		cfg:    cfg,
		logger: logger.With(zap.String("component", "mock_matcher")),
		rng:    rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Search implements schemas.VisualMatcher. A descriptor is found when its
// configured probability fires AND its scripted region intersects the
// requested search area; "not found" is a normal result, never an error.
func (m *Mock) Search(ctx context.Context, descriptors []string, searchArea schemas.Region) (schemas.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return schemas.SearchResult{}, err
	}

	var out schemas.SearchResult
	for _, d := range descriptors {
		probability := m.cfg.DefaultProbability
		target := defaultMockRegion
		score := 0.95
		if img, ok := m.cfg.Images[d]; ok {
			probability = img.Probability
			if img.Region.Region().IsDefined() {
				target = img.Region.Region()
			}
			if img.Score > 0 {
				score = img.Score
			}
		}
		if !m.roll(probability) {
			continue
		}
		if !searchArea.Contains(target) && !intersects(searchArea, target) {
			continue
		}
		out.Found = true
		out.Matches = append(out.Matches, schemas.Match{Region: target, Score: score})
	}
	m.logger.Debug("Mock search",
		zap.Strings("descriptors", descriptors),
		zap.Bool("found", out.Found),
		zap.Int("matches", len(out.Matches)))
	return out, nil
}

func (m *Mock) roll(probability float64) bool {
	if probability >= 1.0 {
		return true
	}
	if probability <= 0 {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rng.Float64() < probability
}

func intersects(a, b schemas.Region) bool {
	return a.X < b.X+b.W && b.X < a.X+a.W && a.Y < b.Y+b.H && b.Y < a.Y+a.H
}

var _ schemas.VisualMatcher = (*Mock)(nil)
