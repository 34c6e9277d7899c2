package statemgmt

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// ActiveStates is the set of state ids currently believed visible. It is
// the one piece of long-lived shared mutable state in the core: the tracker
// mutates it, and the find layer registers freshly found states through it.
// Individual add/remove operations are locked; composite tracker operations
// against the same set must still be externally serialized.
type ActiveStates struct {
	mu      sync.Mutex
	ids     map[StateID]struct{}
	catalog Service
	logger  *zap.Logger

	// hiddenBy remembers which states were removed because another state
	// declared them hidden, so they can be restored when the hider leaves.
	hiddenBy map[StateID][]StateID
}

// NewActiveStates creates an empty active-state set backed by the catalog.
func NewActiveStates(catalog Service, logger *zap.Logger) *ActiveStates {
	return &ActiveStates{
		ids:      make(map[StateID]struct{}),
		catalog:  catalog,
		logger:   logger.With(zap.String("component", "active_states")),
		hiddenBy: make(map[StateID][]StateID),
	}
}

// Add marks a state active. The reserved null id is ignored. Adding a real
// state evicts the unknown fallback and hides the states the new state
// declares occluded.
func (a *ActiveStates) Add(id StateID) {
	if id == NullStateID {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, already := a.ids[id]; already {
		return
	}
	a.ids[id] = struct{}{}
	if id == UnknownStateID {
		return
	}
	delete(a.ids, UnknownStateID)

	state, ok := a.catalog.State(id)
	if !ok {
		return
	}
	a.logger.Debug("State active", zap.String("state", state.Name), zap.Int64("id", int64(id)))
	for _, hidden := range state.HiddenStateIDs {
		if _, active := a.ids[hidden]; active {
			delete(a.ids, hidden)
			a.hiddenBy[id] = append(a.hiddenBy[id], hidden)
		}
	}
}

// Remove marks a state no longer active and restores any states it was
// hiding.
func (a *ActiveStates) Remove(id StateID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, active := a.ids[id]; !active {
		return
	}
	delete(a.ids, id)
	for _, hidden := range a.hiddenBy[id] {
		a.ids[hidden] = struct{}{}
	}
	delete(a.hiddenBy, id)
}

// Clear empties the set, dropping hidden-state bookkeeping with it.
func (a *ActiveStates) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ids = make(map[StateID]struct{})
	a.hiddenBy = make(map[StateID][]StateID)
}

// Contains reports whether the id is currently believed active.
func (a *ActiveStates) Contains(id StateID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.ids[id]
	return ok
}

// IsEmpty reports whether nothing is believed active.
func (a *ActiveStates) IsEmpty() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.ids) == 0
}

// Size returns the number of active ids.
func (a *ActiveStates) Size() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.ids)
}

// IDs returns a sorted snapshot of the active ids.
func (a *ActiveStates) IDs() []StateID {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]StateID, 0, len(a.ids))
	for id := range a.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Names returns the names of the active states, resolving reserved ids to
// their reserved names.
func (a *ActiveStates) Names() []string {
	names := make([]string, 0)
	for _, id := range a.IDs() {
		if id == UnknownStateID {
			names = append(names, UnknownStateName)
			continue
		}
		if s, ok := a.catalog.State(id); ok {
			names = append(names, s.Name)
		}
	}
	return names
}
