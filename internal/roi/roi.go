// Package roi places fixed-size regions of interest around tracked joints.
package roi

import (
	"errors"
	"fmt"
	"image"

	"github.com/ayusman/handfusion/internal/skeleton"
)

// ErrRegionTooLarge is returned when a region cannot fit inside its frame.
var ErrRegionTooLarge = errors.New("roi: region larger than frame")

// Plane identifies the image a joint is projected into.
type Plane int

const (
	PlaneColor Plane = iota
	PlaneDepth
)

// String returns the plane name.
func (p Plane) String() string {
	if p == PlaneDepth {
		return "depth"
	}
	return "color"
}

// Projector maps a sensor-space position to pixel coordinates on a plane.
type Projector interface {
	Project(p skeleton.Point3D, plane Plane) image.Point
}

// Region is a rectangle given by its top-left corner and size.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect converts the region to an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Center returns the pixel at the middle of the region.
func (r Region) Center() image.Point {
	return image.Pt(r.X+r.Width/2, r.Y+r.Height/2)
}

// ClampTo moves the region, without resizing it, so that it lies inside a
// frameW x frameH frame. Each axis is clamped independently.
func (r Region) ClampTo(frameW, frameH int) Region {
	r.X = clamp(r.X, 0, frameW-r.Width)
	r.Y = clamp(r.Y, 0, frameH-r.Height)
	return r
}

// Clamp returns the w x h region centred on center, shifted to stay inside the frame.
func Clamp(center image.Point, w, h, frameW, frameH int) Region {
	r := Region{X: center.X - w/2, Y: center.Y - h/2, Width: w, Height: h}
	return r.ClampTo(frameW, frameH)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Locator computes the region around a joint on one image plane.
type Locator struct {
	projector Projector
	plane     Plane
	frameW    int
	frameH    int
	width     int
	height    int
}

// NewLocator validates that a width x height region fits in the frame.
func NewLocator(p Projector, plane Plane, frameW, frameH, width, height int) (*Locator, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("roi: invalid region size %dx%d", width, height)
	}
	if frameW < width || frameH < height {
		return nil, fmt.Errorf("%w: %dx%d region in %dx%d %s frame",
			ErrRegionTooLarge, width, height, frameW, frameH, plane)
	}
	return &Locator{
		projector: p,
		plane:     plane,
		frameW:    frameW,
		frameH:    frameH,
		width:     width,
		height:    height,
	}, nil
}

// Project returns the joint position on the locator's plane.
func (l *Locator) Project(j skeleton.Joint) image.Point {
	return l.projector.Project(j.Position, l.plane)
}

// Locate returns the region around j. It reports false, and the caller must
// leave dependent buffers untouched, unless the joint is fully tracked.
func (l *Locator) Locate(j skeleton.Joint) (Region, bool) {
	if j.State != skeleton.Tracked {
		return Region{}, false
	}
	return Clamp(l.Project(j), l.width, l.height, l.frameW, l.frameH), true
}

// Plane returns the plane the locator projects onto.
func (l *Locator) Plane() Plane {
	return l.plane
}
