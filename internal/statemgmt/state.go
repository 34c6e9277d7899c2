// Package statemgmt holds the state model of the target application and the
// machinery that tracks which states are currently visible: the state
// catalog, the active-state set, and the tracker that verifies, rebuilds,
// and refreshes the active-state belief through visual searches.
package statemgmt

import (
	"github.com/xkilldash9x/visor-cli/api/schemas"
	"github.com/xkilldash9x/visor-cli/internal/region"
)

// StateID identifies a registered state. Negative values are reserved for
// special states that are never matched visually.
type StateID int64

const (
	// UnknownStateID is the fallback active state used when no defined
	// state can be found on the surface.
	UnknownStateID StateID = -1
	// NullStateID marks objects that belong to no state. It is never added
	// to the active set.
	NullStateID StateID = -5
)

// UnknownStateName is the reserved name of the fallback state.
const UnknownStateName = "unknown"

// IsReservedName reports whether a state name is special and must be
// excluded from full visual scans.
func IsReservedName(name string) bool {
	return name == UnknownStateName || name == ""
}

// StateImage is a visual identifier owned by a state: one or more pattern
// descriptors plus the regions where they may appear. An optional
// cross-state anchor declares the search region relative to another
// object's found location.
type StateImage struct {
	Name       string
	OwnerState string
	// Descriptors reference the visual patterns the matcher searches for.
	Descriptors []string

	anchor  *schemas.CrossStateAnchor
	regions *region.Set
}

// NewStateImage builds a state image searching the whole surface by
// default.
func NewStateImage(name string, descriptors ...string) *StateImage {
	return &StateImage{
		Name:        name,
		Descriptors: descriptors,
		regions:     region.NewSet(),
	}
}

// ObjectName implements region.AnchoredObject.
func (si *StateImage) ObjectName() string { return si.Name }

// Anchor implements region.AnchoredObject.
func (si *StateImage) Anchor() *schemas.CrossStateAnchor { return si.anchor }

// Regions implements region.AnchoredObject.
func (si *StateImage) Regions() *region.Set { return si.regions }

// SetAnchor installs the declarative region definition.
func (si *StateImage) SetAnchor(a *schemas.CrossStateAnchor) { si.anchor = a }

// State is a named, recognizable configuration of the target application's
// screen. Immutable after registration in the catalog apart from the
// search-region sets of its images, which the resolver updates at runtime.
type State struct {
	// ID is assigned by the catalog on Save; zero until then.
	ID   StateID
	Name string
	// Blocking states must be dismissed before other states are reachable.
	Blocking bool
	// HiddenStateIDs are states temporarily occluded while this one is
	// active.
	HiddenStateIDs []StateID
	Images         []*StateImage
}

// NewState builds an unregistered state owning the given images. Image
// ownership is stamped here so matches can be attributed back to the state.
func NewState(name string, images ...*StateImage) *State {
	for _, img := range images {
		img.OwnerState = name
	}
	return &State{Name: name, Images: images}
}

// Image returns the named image owned by this state.
func (s *State) Image(name string) (*StateImage, bool) {
	for _, img := range s.Images {
		if img.Name == name {
			return img, true
		}
	}
	return nil, false
}

// ObjectCollection groups the targets handed to an action: state images to
// search for, explicit regions, and raw strings (for keyboard actions).
type ObjectCollection struct {
	Images  []*StateImage
	Regions []schemas.Region
	Strings []string
}

// IsEmpty reports whether the collection carries no targets at all.
func (c *ObjectCollection) IsEmpty() bool {
	return c == nil || (len(c.Images) == 0 && len(c.Regions) == 0 && len(c.Strings) == 0)
}
