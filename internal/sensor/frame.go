// Package sensor defines the synchronized depth, color and skeleton payloads
// delivered by a depth camera, along with sources that produce them.
package sensor

import (
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/handfusion/internal/depth"
	"github.com/ayusman/handfusion/internal/skeleton"
)

// Default stream settings, matching a Kinect v1 at 640x480.
const (
	DefaultFPS    = 30
	DefaultWidth  = 640
	DefaultHeight = 480

	// ColorChannels is the byte count of one BGRA color pixel.
	ColorChannels = 4

	// UnknownDepth and TooFarDepth are the sensor's reserved depth readings in millimetres.
	UnknownDepth = depth.UnknownDepth
	TooFarDepth  = depth.TooFarDepth
)

var (
	// ErrSourceNotOpen is returned when reading from a source that is not open.
	ErrSourceNotOpen = errors.New("sensor: source is not open")

	// ErrNoMoreTicks is returned when a finite source is exhausted.
	ErrNoMoreTicks = errors.New("sensor: no more ticks")

	// ErrFrameSize is returned when a frame buffer does not match its declared size.
	ErrFrameSize = errors.New("sensor: frame size mismatch")
)

// DepthFrame is one depth image in scan order. Each sample carries the depth in
// millimetres shifted left by the player-index bits.
type DepthFrame struct {
	Width    int
	Height   int
	Samples  []uint16
	MinDepth int
	MaxDepth int
}

// Validate checks that the sample count matches the frame size.
func (f *DepthFrame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 || len(f.Samples) != f.Width*f.Height {
		return fmt.Errorf("%w: depth %dx%d with %d samples", ErrFrameSize, f.Width, f.Height, len(f.Samples))
	}
	return nil
}

// Depth returns the depth in millimetres of sample i.
func (f *DepthFrame) Depth(i int) int {
	return depth.Value(f.Samples[i])
}

// ColorFrame is one BGRA color image in scan order.
type ColorFrame struct {
	Width  int
	Height int
	Pix    []byte
}

// Validate checks that the pixel buffer matches the frame size.
func (f *ColorFrame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 || len(f.Pix) != f.Width*f.Height*ColorChannels {
		return fmt.Errorf("%w: color %dx%d with %d bytes", ErrFrameSize, f.Width, f.Height, len(f.Pix))
	}
	return nil
}

// Tick is one set of time-aligned skeleton, depth and color payloads.
type Tick struct {
	Number    int64
	Timestamp time.Time
	Skeletons []skeleton.Skeleton
	Depth     DepthFrame
	Color     ColorFrame
}

// Source delivers synchronized ticks.
type Source interface {
	Open() error
	Close() error
	// ReadTick returns the next tick. The tick must not be modified by the caller.
	ReadTick() (*Tick, error)
	FPS() int
	IsOpen() bool
}
