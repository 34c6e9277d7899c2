package statemgmt

import (
	"fmt"
	"sort"
	"sync"
)

// Service is the lookup contract the tracker and the find layer depend on.
// The in-memory Catalog implements it; a persistence-backed catalog could
// be swapped in without touching the consumers.
type Service interface {
	// State looks a state up by id.
	State(id StateID) (*State, bool)
	// StateByName looks a state up by its unique name.
	StateByName(name string) (*State, bool)
	// AllStateNames returns every registered state name, sorted. Exclusion
	// of reserved names is the caller's responsibility.
	AllStateNames() []string
	// All returns every registered state.
	All() []*State
}

// Catalog is the in-memory state store. States are registered once at
// configuration load and are immutable afterwards; lookups are safe for
// concurrent use.
type Catalog struct {
	mu     sync.RWMutex
	byID   map[StateID]*State
	byName map[string]*State
	nextID StateID
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		byID:   make(map[StateID]*State),
		byName: make(map[string]*State),
		nextID: 1,
	}
}

// Save registers a state, assigning its id. Names must be unique and not
// reserved.
func (c *Catalog) Save(s *State) error {
	if s == nil {
		return fmt.Errorf("cannot register a nil state")
	}
	if IsReservedName(s.Name) {
		return fmt.Errorf("state name %q is reserved", s.Name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.byName[s.Name]; exists {
		return fmt.Errorf("state %q is already registered", s.Name)
	}
	s.ID = c.nextID
	c.nextID++
	c.byID[s.ID] = s
	c.byName[s.Name] = s
	return nil
}

func (c *Catalog) State(id StateID) (*State, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.byID[id]
	return s, ok
}

func (c *Catalog) StateByName(name string) (*State, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.byName[name]
	return s, ok
}

func (c *Catalog) AllStateNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Catalog) All() []*State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	states := make([]*State, 0, len(c.byID))
	for _, s := range c.byID {
		states = append(states, s)
	}
	sort.Slice(states, func(i, j int) bool { return states[i].ID < states[j].ID })
	return states
}
