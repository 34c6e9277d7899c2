package region

import (
	"go.uber.org/zap"

	"github.com/xkilldash9x/visor-cli/api/schemas"
)

// AnchoredObject is an object whose search area may be redefined by a
// cross-state anchor. State images implement it; the resolver stays
// decoupled from the state model.
type AnchoredObject interface {
	// ObjectName identifies the object for logging.
	ObjectName() string
	// Anchor returns the declarative region definition, or nil when the
	// object has none.
	Anchor() *schemas.CrossStateAnchor
	// Regions is the object's own search-region set.
	Regions() *Set
}

// Resolver computes effective search regions for objects whose location is
// declared relative to another object's found location.
type Resolver struct {
	logger *zap.Logger
}

// NewResolver creates a cross-reference resolver.
func NewResolver(logger *zap.Logger) *Resolver {
	return &Resolver{logger: logger.With(zap.String("component", "region_resolver"))}
}

// Resolve applies the anchor's adjustments to the referenced match
// rectangle. The anchor point of the match is the position origin; size is
// the match size plus (AddW, AddH), with non-negative absolute dimensions
// taking precedence.
func Resolve(anchor *schemas.CrossStateAnchor, ref schemas.Region) schemas.Region {
	origin := anchor.Anchor.In(ref)
	out := schemas.Region{
		X: origin.X + anchor.AddX,
		Y: origin.Y + anchor.AddY,
		W: ref.W + anchor.AddW,
		H: ref.H + anchor.AddH,
	}
	if anchor.AbsoluteW >= 0 {
		out.W = anchor.AbsoluteW
	}
	if anchor.AbsoluteH >= 0 {
		out.H = anchor.AbsoluteH
	}
	return out
}

// UpdateSearchRegion resolves the declarative region for obj from the
// matches accumulated in res and, on success, installs it as the object's
// fixed region. Any previously set fixed region is discarded at that point:
// once the declarative source has resolved, it is the sole authority for
// the object's location.
//
// When the referenced object has not been found in the current cycle the
// object's regions are left untouched and false is returned. That is a
// degraded-precision search, not an error; the caller should flag it on
// the result.
func (r *Resolver) UpdateSearchRegion(obj AnchoredObject, res *schemas.ActionResult) bool {
	anchor := obj.Anchor()
	if anchor == nil {
		return false
	}
	ref, ok := res.MatchFor(anchor.StateName, anchor.ObjectName)
	if !ok {
		r.logger.Debug("Declarative region unresolved, falling back to defined regions",
			zap.String("object", obj.ObjectName()),
			zap.String("ref_state", anchor.StateName),
			zap.String("ref_object", anchor.ObjectName))
		return false
	}

	resolved := Resolve(anchor, ref.Region)
	set := obj.Regions()
	set.ResetFixedRegion()
	set.SetFixedRegion(resolved)
	r.logger.Debug("Resolved declarative search region",
		zap.String("object", obj.ObjectName()),
		zap.Int("x", resolved.X), zap.Int("y", resolved.Y),
		zap.Int("w", resolved.W), zap.Int("h", resolved.H))
	return true
}
