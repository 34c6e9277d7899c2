// Package schemas holds the canonical data types and collaborator contracts
// of the automation core. Keeping them at the API level prevents import
// cycles between the internal packages and gives external integrations a
// stable surface to implement against.
package schemas

import (
	"context"
	"time"
)

// VisualMatcher is the external image-search capability. Given one or more
// visual descriptors (pattern references) and a search area, it returns a
// success flag and an ordered list of matches. "Not found" is encoded in
// the SearchResult, never in the error; a non-nil error means genuine
// infrastructure failure and is propagated unchanged by the core.
type VisualMatcher interface {
	Search(ctx context.Context, descriptors []string, region Region) (SearchResult, error)
}

// ScreenDriver injects low-level input into the target surface. Its
// implementation (CDP, platform hooks) is opaque to the action bodies.
type ScreenDriver interface {
	// DispatchMouseEvent sends one mouse event.
	DispatchMouseEvent(ctx context.Context, ev MouseEvent) error
	// TypeText delivers text as individual key events, spacing them by
	// delay when it is positive.
	TypeText(ctx context.Context, text string, delay time.Duration) error
	// CaptureScreen returns a PNG of the current surface, for matchers and
	// illustration renderers that work from screenshots.
	CaptureScreen(ctx context.Context) ([]byte, error)
}

// Clock abstracts time for the execution controller so pauses and duration
// bookkeeping are testable without real sleeping.
type Clock interface {
	Now() time.Time
	// Wait blocks for d, returning early with the context error when the
	// context is cancelled. A non-positive d returns immediately.
	Wait(ctx context.Context, d time.Duration) error
}

// CancellationSignal is the cooperative stoppage check. CheckPausePoint
// returns nil while execution may continue and a distinguished stoppage
// error once the automation has been cancelled or paused terminally.
type CancellationSignal interface {
	CheckPausePoint(ctx context.Context) error
}
