// Package find implements the visual-search action: it resolves effective
// search regions (fixed, declarative, candidate, or default), invokes the
// external matcher, and registers the owner states of found images as
// active. It is both the find action body for the execution controller and
// the state searcher behind the active-state tracker.
package find

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/visor-cli/api/schemas"
	"github.com/xkilldash9x/visor-cli/internal/execution"
	"github.com/xkilldash9x/visor-cli/internal/region"
	"github.com/xkilldash9x/visor-cli/internal/statemgmt"
)

// Find performs visual searches against state images.
type Find struct {
	matcher  schemas.VisualMatcher
	resolver *region.Resolver
	catalog  statemgmt.Service
	active   *statemgmt.ActiveStates
	logger   *zap.Logger
}

// New wires the find layer.
func New(
	matcher schemas.VisualMatcher,
	resolver *region.Resolver,
	catalog statemgmt.Service,
	active *statemgmt.ActiveStates,
	logger *zap.Logger,
) (*Find, error) {
	if matcher == nil {
		return nil, errors.New("visual matcher cannot be nil")
	}
	if resolver == nil {
		return nil, errors.New("region resolver cannot be nil")
	}
	if catalog == nil {
		return nil, errors.New("state catalog cannot be nil")
	}
	if active == nil {
		return nil, errors.New("active state set cannot be nil")
	}
	return &Find{
		matcher:  matcher,
		resolver: resolver,
		catalog:  catalog,
		active:   active,
		logger:   logger.With(zap.String("component", "find")),
	}, nil
}

// Body returns the find action body for the given options, suitable for the
// execution controller.
func (f *Find) Body(opts schemas.FindOptions) execution.ActionBody {
	return execution.ActionBodyFunc(func(ctx context.Context, res *schemas.ActionResult, targets ...*statemgmt.ObjectCollection) error {
		return f.Run(ctx, opts, res, targets...)
	})
}

// Run executes one find sequence: every image in every target collection is
// searched, matches accumulate on the result, and owner states of found
// images become active. Explicit regions in a collection are treated as
// already-located targets and turned into synthetic full-confidence
// matches.
func (f *Find) Run(ctx context.Context, opts schemas.FindOptions, res *schemas.ActionResult, targets ...*statemgmt.ObjectCollection) error {
	for _, collection := range targets {
		if collection == nil {
			continue
		}
		for _, r := range collection.Regions {
			res.AddMatch(schemas.Match{Region: r, Score: 1.0})
		}
		for _, img := range collection.Images {
			if capReached(res, opts) {
				return nil
			}
			if err := f.searchImage(ctx, opts, res, img); err != nil {
				return err
			}
		}
	}
	return nil
}

// SearchState implements statemgmt.StateSearcher: the state is visible when
// any of its identifiers matches. A successful search registers the state
// active as a side effect, which is how full scans repopulate the
// active-state set. Failures are local and silent.
func (f *Find) SearchState(ctx context.Context, state *statemgmt.State) bool {
	res := &schemas.ActionResult{Description: fmt.Sprintf("verify %s", state.Name)}
	opts := schemas.FindOptions{Strategy: schemas.FindFirst}
	for _, img := range state.Images {
		if err := f.searchImage(ctx, opts, res, img); err != nil {
			f.logger.Warn("State search failed", zap.String("state", state.Name), zap.Error(err))
			return false
		}
		if res.MatchCount() > 0 {
			return true
		}
	}
	return false
}

// searchImage searches one state image across its effective regions.
func (f *Find) searchImage(ctx context.Context, opts schemas.FindOptions, res *schemas.ActionResult, img *statemgmt.StateImage) error {
	if img.Anchor() != nil && !f.resolver.UpdateSearchRegion(img, res) {
		// Unresolved declarative region: search proceeds on whatever the
		// image already defines, just less precisely.
		res.DegradedSearch = true
	}

	for _, r := range img.Regions().GetRegionsForSearch() {
		sr, err := f.matcher.Search(ctx, img.Descriptors, r)
		if err != nil {
			return fmt.Errorf("searching %q: %w", img.Name, err)
		}
		if !sr.Found {
			continue
		}
		f.record(res, opts, img, sr.Matches)
		f.activate(img.OwnerState)
		if opts.Strategy != schemas.FindAll {
			return nil
		}
		if capReached(res, opts) {
			return nil
		}
	}
	return nil
}

// record filters and appends a search's hits according to the find
// strategy, tagging each with the owning state and object.
func (f *Find) record(res *schemas.ActionResult, opts schemas.FindOptions, img *statemgmt.StateImage, matches []schemas.Match) {
	best := schemas.Match{Score: -1}
	for _, m := range matches {
		if m.Score < opts.MinScore {
			continue
		}
		m.StateName = img.OwnerState
		m.ObjectName = img.Name
		switch opts.Strategy {
		case schemas.FindBest:
			if m.Score > best.Score {
				best = m
			}
		default:
			res.AddMatch(m)
			if opts.Strategy == schemas.FindFirst {
				return
			}
			if capReached(res, opts) {
				return
			}
		}
	}
	if opts.Strategy == schemas.FindBest && best.Score >= 0 {
		res.AddMatch(best)
	}
}

// activate registers the owner state of a found image as active.
func (f *Find) activate(stateName string) {
	if stateName == "" {
		return
	}
	state, ok := f.catalog.StateByName(stateName)
	if !ok {
		return
	}
	f.active.Add(state.ID)
}

func capReached(res *schemas.ActionResult, opts schemas.FindOptions) bool {
	return opts.Matches > 0 && res.MatchCount() >= opts.Matches
}
