package schemas

import "time"

// -- Result Schemas --

// Match is a single hit returned by a visual search: where the target was
// found and how confident the matcher is. StateName and ObjectName identify
// the state image that produced the hit; the matcher itself only fills the
// rectangle and score, the find layer tags ownership.
type Match struct {
	Region     Region  `json:"region"`
	Score      float64 `json:"score"`
	StateName  string  `json:"state_name,omitempty"`
	ObjectName string  `json:"object_name,omitempty"`
}

// Target returns the point an input action should aim at for this match.
func (m Match) Target() Location {
	return m.Region.Center()
}

// SearchResult is the outcome of one visual search. "Not found" is a normal
// outcome, never an error: Found is false and Matches is empty.
type SearchResult struct {
	Found   bool    `json:"found"`
	Matches []Match `json:"matches"`
}

// ActionResult is the single result object produced by one Perform
// invocation of the execution controller. It is created fresh per call by
// the result factory, mutated only during that call, and returned populated
// even when the action failed.
type ActionResult struct {
	Description string `json:"description"`
	Success     bool   `json:"success"`

	// Matches accumulates hits across all sequences of the call, best first
	// within each search.
	Matches []Match `json:"matches"`

	// DefinedRegions records the areas that were actually searched, for
	// illustration and diagnostics.
	DefinedRegions []Region `json:"defined_regions,omitempty"`

	// DegradedSearch is set when a declarative region could not be resolved
	// and the search fell back to less precise regions. Not an error.
	DegradedSearch bool `json:"degraded_search,omitempty"`

	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`

	// CompletedSequences counts how many times the action body ran during
	// this call. Reset implicitly because every call gets a fresh result.
	CompletedSequences int `json:"completed_sequences"`
}

// AddMatch appends a hit to the result.
func (r *ActionResult) AddMatch(m Match) {
	r.Matches = append(r.Matches, m)
}

// MatchCount returns the number of accumulated hits.
func (r *ActionResult) MatchCount() int {
	return len(r.Matches)
}

// BestMatch returns the highest-scoring hit, if any.
func (r *ActionResult) BestMatch() (Match, bool) {
	if len(r.Matches) == 0 {
		return Match{}, false
	}
	best := r.Matches[0]
	for _, m := range r.Matches[1:] {
		if m.Score > best.Score {
			best = m
		}
	}
	return best, true
}

// MatchFor returns the most recent hit recorded for the named object of the
// named state. Used by the cross-reference resolver to locate anchors.
func (r *ActionResult) MatchFor(stateName, objectName string) (Match, bool) {
	for i := len(r.Matches) - 1; i >= 0; i-- {
		m := r.Matches[i]
		if m.StateName == stateName && m.ObjectName == objectName {
			return m, true
		}
	}
	return Match{}, false
}
