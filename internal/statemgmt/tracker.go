package statemgmt

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// StateSearcher issues a visual search for a state's identifiers. The find
// layer implements it; as a side effect of a successful search it registers
// the found state's owner as active, which is how full scans repopulate the
// active set.
type StateSearcher interface {
	// SearchState returns true when any of the state's identifiers is
	// currently visible. "Not found" is a normal false, never an error.
	SearchState(ctx context.Context, state *State) bool
}

// Tracker maintains the active-state belief: it verifies states that should
// still be visible, rebuilds the set from a full scan when it is empty, and
// refreshes it outright when the belief is suspected stale.
//
// Tracker operations are not reentrant: callers must not run two of them
// concurrently against the same active set. The usual arrangement is one
// tracking goroutine per automation session.
type Tracker struct {
	catalog  Service
	active   *ActiveStates
	searcher StateSearcher
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// NewTracker creates a tracker. searchRate throttles per-state searches
// during full scans (searches per second); a non-positive rate disables
// throttling.
func NewTracker(catalog Service, active *ActiveStates, searcher StateSearcher, searchRate float64, logger *zap.Logger) *Tracker {
	var limiter *rate.Limiter
	if searchRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(searchRate), 1)
	}
	return &Tracker{
		catalog:  catalog,
		active:   active,
		searcher: searcher,
		limiter:  limiter,
		logger:   logger.With(zap.String("component", "state_tracker")),
	}
}

// Active exposes the tracked set for read access and for the find layer's
// registration side effect.
func (t *Tracker) Active() *ActiveStates {
	return t.active
}

// CheckForActiveStates verifies every state currently believed active and
// prunes the ones whose identifiers can no longer be found. It never adds
// an id. Reserved ids carry no identifiers and are left alone; only a
// rebuild or refresh replaces the unknown fallback.
func (t *Tracker) CheckForActiveStates(ctx context.Context) {
	for _, id := range t.active.IDs() {
		if id == UnknownStateID || id == NullStateID {
			continue
		}
		state, ok := t.catalog.State(id)
		if !ok {
			t.active.Remove(id)
			continue
		}
		if !t.searcher.SearchState(ctx, state) {
			t.logger.Debug("State no longer visible", zap.String("state", state.Name))
			t.active.Remove(id)
		}
	}
}

// RebuildActiveStates restores a usable belief when the active set is
// empty. With a non-empty set it is a no-op (use CheckForActiveStates to
// verify an existing belief). When the full scan finds nothing, the
// reserved unknown id becomes the fallback active state so the set is
// never left empty.
func (t *Tracker) RebuildActiveStates(ctx context.Context) {
	if !t.active.IsEmpty() {
		return
	}
	t.SearchAllImagesForCurrentStates(ctx)
	if t.active.IsEmpty() {
		t.logger.Info("No defined state found on the surface, falling back to unknown")
		t.active.Add(UnknownStateID)
	}
}

// SearchAllImagesForCurrentStates scans every cataloged state except the
// reserved ones. Activation happens as a side effect inside the searcher;
// the tracker itself adds nothing here. Per-state failures are local and
// silent.
func (t *Tracker) SearchAllImagesForCurrentStates(ctx context.Context) {
	t.logger.Debug("Running full state scan")
	for _, name := range t.catalog.AllStateNames() {
		if IsReservedName(name) {
			continue
		}
		t.findState(ctx, name)
	}
}

// FindState looks the named state up and, when it exists, searches for its
// identifiers. A name absent from the catalog returns false without
// searching.
func (t *Tracker) FindState(ctx context.Context, name string) bool {
	return t.findState(ctx, name)
}

// FindStateID is FindState for an id.
func (t *Tracker) FindStateID(ctx context.Context, id StateID) bool {
	state, ok := t.catalog.State(id)
	if !ok {
		return false
	}
	return t.searchThrottled(ctx, state)
}

func (t *Tracker) findState(ctx context.Context, name string) bool {
	state, ok := t.catalog.StateByName(name)
	if !ok {
		return false
	}
	return t.searchThrottled(ctx, state)
}

func (t *Tracker) searchThrottled(ctx context.Context, state *State) bool {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return false
		}
	}
	return t.searcher.SearchState(ctx, state)
}

// RefreshActiveStates discards the current belief entirely and rebuilds it
// from a full scan, returning the resulting set. Used after an unexpected
// navigation or whenever the belief is suspected stale.
func (t *Tracker) RefreshActiveStates(ctx context.Context) []StateID {
	t.active.Clear()
	t.RebuildActiveStates(ctx)
	return t.active.IDs()
}
