// Package region implements search-region management for visual targets:
// the candidate-region set with its dedup/containment invariants, and the
// resolver for declarative cross-state regions.
package region

import "github.com/xkilldash9x/visor-cli/api/schemas"

// FullSurface is the default "search everywhere" region used when nothing
// narrower is defined. The dimensions cover any realistic surface; matchers
// clamp to the actual capture size.
var FullSurface = schemas.NewRegion(0, 0, 1920, 1080)

// Set holds the candidate rectangular areas where a visual target may
// appear: an ordered collection of non-fixed regions plus at most one
// "fixed" override region.
//
// Invariants maintained by the set:
//   - no two non-fixed regions are exactly equal;
//   - no non-fixed region is fully contained in another retained region
//     (containment collapses to the larger region);
//   - a set fixed region makes fixed-mode retrieval return it alone;
//   - retrieval for searching always yields at least one region.
//
// Set is not safe for concurrent mutation; each state image owns its own.
type Set struct {
	regions []schemas.Region
	fixed   schemas.Region
}

// NewSet builds a region set holding the given candidate regions.
func NewSet(regions ...schemas.Region) *Set {
	s := &Set{}
	s.AddRegions(regions...)
	return s
}

// AddRegions appends candidate regions, silently discarding degenerate
// entries, then re-applies the dedup and containment-collapse invariant.
// Insertion order of the first-seen instance of each survivor is kept.
func (s *Set) AddRegions(regions ...schemas.Region) {
	for _, r := range regions {
		if !r.IsDefined() {
			continue
		}
		s.regions = append(s.regions, r)
	}
	s.regions = collapse(s.regions)
}

// collapse removes exact duplicates and regions fully contained in another
// retained region.
func collapse(regions []schemas.Region) []schemas.Region {
	kept := make([]schemas.Region, 0, len(regions))
	for _, candidate := range regions {
		absorbed := false
		for _, k := range kept {
			if k.Contains(candidate) {
				absorbed = true
				break
			}
		}
		if absorbed {
			continue
		}
		// The candidate survives; drop any previously kept region it
		// swallows.
		next := kept[:0]
		for _, k := range kept {
			if !candidate.Contains(k) {
				next = append(next, k)
			}
		}
		kept = append(next, candidate)
	}
	return kept
}

// SetFixedRegion installs the override region. A degenerate region is
// ignored so a stale zero value can never hijack the search.
func (s *Set) SetFixedRegion(r schemas.Region) {
	if !r.IsDefined() {
		return
	}
	s.fixed = r
}

// ResetFixedRegion clears the override region.
func (s *Set) ResetFixedRegion() {
	s.fixed = schemas.Region{}
}

// IsFixedRegionSet reports whether a well-formed fixed region is set.
func (s *Set) IsFixedRegionSet() bool {
	return s.fixed.IsDefined()
}

// FixedRegion returns the override region; meaningful only when
// IsFixedRegionSet reports true.
func (s *Set) FixedRegion() schemas.Region {
	return s.fixed
}

// GetRegions returns the single fixed region when useFixed is true and one
// is set; otherwise the deduplicated non-fixed collection (possibly empty).
func (s *Set) GetRegions(useFixed bool) []schemas.Region {
	if useFixed && s.IsFixedRegionSet() {
		return []schemas.Region{s.fixed}
	}
	out := make([]schemas.Region, len(s.regions))
	copy(out, s.regions)
	return out
}

// GetRegionsForSearch returns the regions a search should actually use:
// the fixed region alone when set, else the candidate collection, else one
// default full-surface region. The result is never empty.
func (s *Set) GetRegionsForSearch() []schemas.Region {
	if s.IsFixedRegionSet() {
		return []schemas.Region{s.fixed}
	}
	if len(s.regions) > 0 {
		out := make([]schemas.Region, len(s.regions))
		copy(out, s.regions)
		return out
	}
	return []schemas.Region{FullSurface}
}

// IsAnyRegionDefined reports whether the set narrows the search at all.
func (s *Set) IsAnyRegionDefined() bool {
	return len(s.regions) > 0 || s.IsFixedRegionSet()
}

// Size returns the number of retained non-fixed regions.
func (s *Set) Size() int {
	return len(s.regions)
}
