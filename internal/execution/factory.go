package execution

import (
	"github.com/xkilldash9x/visor-cli/api/schemas"
	"github.com/xkilldash9x/visor-cli/internal/statemgmt"
)

// ResultFactory builds the fresh ActionResult each Perform call starts
// from.
type ResultFactory interface {
	Init(cfg schemas.ActionConfig, description string, targets ...*statemgmt.ObjectCollection) *schemas.ActionResult
}

// resultFactory is the default implementation: seeds the description, the
// start timestamp, and the regions the targets declare, so illustration
// has something to draw even when nothing is found.
type resultFactory struct {
	clock schemas.Clock
}

// NewResultFactory creates the default result factory.
func NewResultFactory(clock schemas.Clock) ResultFactory {
	return &resultFactory{clock: clock}
}

func (f *resultFactory) Init(cfg schemas.ActionConfig, description string, targets ...*statemgmt.ObjectCollection) *schemas.ActionResult {
	res := &schemas.ActionResult{
		Description: description,
		StartTime:   f.clock.Now(),
	}
	for _, t := range targets {
		if t == nil {
			continue
		}
		for _, img := range t.Images {
			res.DefinedRegions = append(res.DefinedRegions, img.Regions().GetRegionsForSearch()...)
		}
		res.DefinedRegions = append(res.DefinedRegions, t.Regions...)
	}
	return res
}
