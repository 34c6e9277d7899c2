package orchestrator

import (
	"fmt"
	"strings"

	"github.com/xkilldash9x/visor-cli/api/schemas"
	"github.com/xkilldash9x/visor-cli/internal/config"
	"github.com/xkilldash9x/visor-cli/internal/statemgmt"
)

// BuildCatalog materializes the declarative state definitions into a
// registered catalog. Hidden-state references are resolved in a second pass,
// after every state has an id, so forward references work.
func BuildCatalog(states []config.StateConfig) (*statemgmt.Catalog, error) {
	catalog := statemgmt.NewCatalog()
	built := make([]*statemgmt.State, 0, len(states))

	for _, sc := range states {
		images := make([]*statemgmt.StateImage, 0, len(sc.Images))
		for _, ic := range sc.Images {
			img, err := buildImage(ic)
			if err != nil {
				return nil, fmt.Errorf("state %q: %w", sc.Name, err)
			}
			images = append(images, img)
		}
		state := statemgmt.NewState(sc.Name, images...)
		state.Blocking = sc.Blocking
		if err := catalog.Save(state); err != nil {
			return nil, err
		}
		built = append(built, state)
	}

	for i, sc := range states {
		for _, hidden := range sc.Hidden {
			hs, ok := catalog.StateByName(hidden)
			if !ok {
				return nil, fmt.Errorf("state %q hides undefined state %q", sc.Name, hidden)
			}
			built[i].HiddenStateIDs = append(built[i].HiddenStateIDs, hs.ID)
		}
	}
	return catalog, nil
}

func buildImage(ic config.ImageConfig) (*statemgmt.StateImage, error) {
	if ic.Name == "" {
		return nil, fmt.Errorf("every image needs a name")
	}
	descriptors := ic.Descriptors
	if len(descriptors) == 0 {
		// The image name doubles as its descriptor when none is given.
		descriptors = []string{ic.Name}
	}
	img := statemgmt.NewStateImage(ic.Name, descriptors...)

	regions := make([]schemas.Region, 0, len(ic.Regions))
	for _, rc := range ic.Regions {
		regions = append(regions, rc.Region())
	}
	img.Regions().AddRegions(regions...)
	if ic.Fixed != nil {
		img.Regions().SetFixedRegion(ic.Fixed.Region())
	}
	if ic.Anchor != nil {
		img.SetAnchor(anchorFromConfig(*ic.Anchor))
	}
	return img, nil
}

func anchorFromConfig(a config.AnchorConfig) *schemas.CrossStateAnchor {
	anchor := schemas.NewCrossStateAnchor(
		a.State,
		a.Object,
		schemas.Position(strings.ToUpper(a.Position)),
	)
	anchor.AddX = a.AddX
	anchor.AddY = a.AddY
	anchor.AddW = a.AddW
	anchor.AddH = a.AddH
	// Zero is not a usable absolute dimension, so the config treats any
	// non-positive value as unset.
	if a.AbsoluteW > 0 {
		anchor.AbsoluteW = a.AbsoluteW
	}
	if a.AbsoluteH > 0 {
		anchor.AbsoluteH = a.AbsoluteH
	}
	return anchor
}
