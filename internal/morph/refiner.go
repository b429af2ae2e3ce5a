// Package morph suppresses classification noise in hand images and masks
// using OpenCV smoothing and morphology.
package morph

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Default kernel sizes.
const (
	DefaultSmoothKernel = 3
	DefaultMorphKernel  = 3
)

// Config holds refinement kernel sizes.
type Config struct {
	// SmoothKernel is the median blur aperture; must be odd and at least 3.
	SmoothKernel int
	// MorphKernel is the side of the square erosion/dilation element.
	MorphKernel int
}

// DefaultConfig returns 3x3 kernels for both stages.
func DefaultConfig() Config {
	return Config{
		SmoothKernel: DefaultSmoothKernel,
		MorphKernel:  DefaultMorphKernel,
	}
}

// Validate checks the kernel sizes.
func (c Config) Validate() error {
	if c.SmoothKernel < 3 || c.SmoothKernel%2 == 0 {
		return fmt.Errorf("morph: smooth kernel must be odd and >= 3, got %d", c.SmoothKernel)
	}
	if c.MorphKernel < 1 {
		return fmt.Errorf("morph: morph kernel must be >= 1, got %d", c.MorphKernel)
	}
	return nil
}

// Refiner applies the fixed smoothing and morphology sequences. All operations
// run in place on the given Mat. The structuring element is only read, so one
// Refiner may serve several goroutines working on disjoint Mats.
type Refiner struct {
	smoothKernel int
	element      gocv.Mat
}

// New creates a Refiner for cfg.
func New(cfg Config) (*Refiner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Refiner{
		smoothKernel: cfg.SmoothKernel,
		element:      gocv.GetStructuringElement(gocv.MorphRect, image.Pt(cfg.MorphKernel, cfg.MorphKernel)),
	}, nil
}

// Smooth median-filters m to remove salt-and-pepper noise.
func (r *Refiner) Smooth(m *gocv.Mat) {
	gocv.MedianBlur(*m, m, r.smoothKernel)
}

// Erode shrinks nonzero regions of m.
func (r *Refiner) Erode(m *gocv.Mat) {
	gocv.Erode(*m, m, r.element)
}

// Dilate grows nonzero regions of m.
func (r *Refiner) Dilate(m *gocv.Mat) {
	gocv.Dilate(*m, m, r.element)
}

// SmoothDepth prepares a hand depth region.
func (r *Refiner) SmoothDepth(m *gocv.Mat) {
	r.Smooth(m)
}

// RefineSkin cleans a skin mask: smooth, erode, then dilate. Speckles removed
// by the erosion do not come back.
func (r *Refiner) RefineSkin(m *gocv.Mat) {
	r.Smooth(m)
	r.Erode(m)
	r.Dilate(m)
}

// RefineObject cleans an object mask at the skin boundary: erode, then smooth.
func (r *Refiner) RefineObject(m *gocv.Mat) {
	r.Erode(m)
	r.Smooth(m)
}

// Close releases the structuring element.
func (r *Refiner) Close() error {
	return r.element.Close()
}
