// Package input implements the pointer and keyboard action bodies. They
// locate their targets through the find layer and inject events through the
// agnostic ScreenDriver, so the same bodies work against any surface the
// driver can reach.
package input

import (
	"errors"

	"go.uber.org/zap"

	"github.com/xkilldash9x/visor-cli/api/schemas"
	"github.com/xkilldash9x/visor-cli/internal/find"
)

// Input bundles the dependencies shared by all input action bodies.
type Input struct {
	driver schemas.ScreenDriver
	finder *find.Find
	clock  schemas.Clock
	logger *zap.Logger
}

// New wires the input action layer.
func New(driver schemas.ScreenDriver, finder *find.Find, clock schemas.Clock, logger *zap.Logger) (*Input, error) {
	if driver == nil {
		return nil, errors.New("screen driver cannot be nil")
	}
	if finder == nil {
		return nil, errors.New("find layer cannot be nil")
	}
	if clock == nil {
		return nil, errors.New("clock cannot be nil")
	}
	return &Input{
		driver: driver,
		finder: finder,
		clock:  clock,
		logger: logger.With(zap.String("component", "input")),
	}, nil
}

// buttonBit maps a button to the CDP-style held-buttons bitfield.
func buttonBit(b schemas.MouseButton) int64 {
	switch b {
	case schemas.ButtonLeft:
		return 1
	case schemas.ButtonRight:
		return 2
	case schemas.ButtonMiddle:
		return 4
	default:
		return 0
	}
}
