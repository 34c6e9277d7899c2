package schemas

// -- Geometry Schemas --
//
// Region and Location are the canonical geometry types shared by every layer
// of the automation core. Coordinates are pixels on the target surface, with
// the origin at the top-left corner.

// Location is a single point on the target surface.
type Location struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Region is an axis-aligned rectangle on the target surface.
type Region struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// NewRegion builds a region from its top-left corner and dimensions.
func NewRegion(x, y, w, h int) Region {
	return Region{X: x, Y: y, W: w, H: h}
}

// IsDefined reports whether the region is well-formed (non-degenerate).
// Zero or negative dimensions mean the region cannot be searched.
func (r Region) IsDefined() bool {
	return r.W > 0 && r.H > 0
}

// Contains reports whether o lies fully inside r.
func (r Region) Contains(o Region) bool {
	return o.X >= r.X && o.Y >= r.Y &&
		o.X+o.W <= r.X+r.W && o.Y+o.H <= r.Y+r.H
}

// Center returns the midpoint of the region.
func (r Region) Center() Location {
	return Location{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Position names an anchor point on a region. It is used by cross-state
// anchors to pick the point of a referenced match that a dependent search
// region is positioned against.
type Position string

const (
	PositionTopLeft     Position = "TOPLEFT"
	PositionTopRight    Position = "TOPRIGHT"
	PositionBottomLeft  Position = "BOTTOMLEFT"
	PositionBottomRight Position = "BOTTOMRIGHT"
	PositionCenter      Position = "CENTER"
)

// In resolves the anchor point on the given region. Unknown positions fall
// back to the top-left corner, which keeps the arithmetic additive.
func (p Position) In(r Region) Location {
	switch p {
	case PositionTopRight:
		return Location{X: r.X + r.W, Y: r.Y}
	case PositionBottomLeft:
		return Location{X: r.X, Y: r.Y + r.H}
	case PositionBottomRight:
		return Location{X: r.X + r.W, Y: r.Y + r.H}
	case PositionCenter:
		return r.Center()
	default:
		return Location{X: r.X, Y: r.Y}
	}
}

// CrossStateAnchor declares that an object's search region depends on the
// found location of another object, possibly owned by a different state.
// The referenced match rectangle is shifted by (AddX, AddY) from the anchor
// point and resized by (AddW, AddH); non-negative absolute dimensions
// replace the adjusted size outright.
type CrossStateAnchor struct {
	StateName  string   `json:"state_name"`
	ObjectName string   `json:"object_name"`
	Anchor     Position `json:"anchor"`
	AddX       int      `json:"add_x"`
	AddY       int      `json:"add_y"`
	AddW       int      `json:"add_w"`
	AddH       int      `json:"add_h"`
	// AbsoluteW and AbsoluteH override the adjusted dimensions when >= 0.
	AbsoluteW int `json:"absolute_w"`
	AbsoluteH int `json:"absolute_h"`
}

// NewCrossStateAnchor builds an anchor with absolute dimensions unset.
func NewCrossStateAnchor(stateName, objectName string, anchor Position) *CrossStateAnchor {
	return &CrossStateAnchor{
		StateName:  stateName,
		ObjectName: objectName,
		Anchor:     anchor,
		AbsoluteW:  -1,
		AbsoluteH:  -1,
	}
}
