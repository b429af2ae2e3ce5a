package fusion

import (
	"errors"
	"fmt"

	"github.com/ayusman/handfusion/internal/depth"
	"github.com/ayusman/handfusion/internal/roi"
	"github.com/ayusman/handfusion/internal/sensor"
	"github.com/ayusman/handfusion/internal/skin"
)

var (
	// ErrFrameMismatch is returned when a tick's frames do not match the session.
	ErrFrameMismatch = errors.New("fusion: frame does not match session")

	// ErrNoDepthTable is returned when a session has no depth table.
	ErrNoDepthTable = errors.New("fusion: session has no depth table")

	// ErrNoProjector is returned when a session has no projector.
	ErrNoProjector = errors.New("fusion: session has no projector")
)

// Session holds what stays fixed for the lifetime of a sensor session: the
// shared read-only tables, the projector and the frame sizes.
type Session struct {
	DepthTable *depth.Table
	// SkinTable may be nil, in which case skin classification is disabled.
	SkinTable *skin.Table
	Projector roi.Projector

	DepthWidth  int
	DepthHeight int
	ColorWidth  int
	ColorHeight int
}

// Validate checks that the session is usable.
func (s *Session) Validate() error {
	if s.DepthTable == nil {
		return ErrNoDepthTable
	}
	if s.Projector == nil {
		return ErrNoProjector
	}
	if s.DepthWidth <= 0 || s.DepthHeight <= 0 || s.ColorWidth <= 0 || s.ColorHeight <= 0 {
		return fmt.Errorf("fusion: invalid frame sizes depth %dx%d color %dx%d",
			s.DepthWidth, s.DepthHeight, s.ColorWidth, s.ColorHeight)
	}
	return nil
}

// Degraded reports whether the session runs without a skin model.
func (s *Session) Degraded() bool {
	return s.SkinTable == nil
}

// check verifies that a tick's frames match the session sizes.
func (s *Session) check(t *sensor.Tick) error {
	if err := t.Depth.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrFrameMismatch, err)
	}
	if err := t.Color.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrFrameMismatch, err)
	}
	if t.Depth.Width != s.DepthWidth || t.Depth.Height != s.DepthHeight {
		return fmt.Errorf("%w: depth %dx%d, session %dx%d",
			ErrFrameMismatch, t.Depth.Width, t.Depth.Height, s.DepthWidth, s.DepthHeight)
	}
	if t.Color.Width != s.ColorWidth || t.Color.Height != s.ColorHeight {
		return fmt.Errorf("%w: color %dx%d, session %dx%d",
			ErrFrameMismatch, t.Color.Width, t.Color.Height, s.ColorWidth, s.ColorHeight)
	}
	return nil
}
