package skin

import (
	"github.com/ayusman/handfusion/internal/pixel"
)

// Classifier defaults.
const (
	// DefaultThreshold is the minimum likelihood for a pixel to count as skin.
	DefaultThreshold = 0.4
	// DefaultMinArea is the skin pixel count above which a hand is considered present.
	DefaultMinArea = 1000
)

// Mask values written by Classify.
const (
	Background byte = 0
	Skin       byte = 255
)

// Classifier marks skin pixels in color images. A classifier without a table
// is disabled and reports no skin.
type Classifier struct {
	table     *Table
	threshold float32
	minArea   int
}

// NewClassifier creates a classifier. A nil table yields a disabled classifier.
// Non-positive threshold or minArea fall back to the defaults.
func NewClassifier(table *Table, threshold float32, minArea int) *Classifier {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if minArea <= 0 {
		minArea = DefaultMinArea
	}
	return &Classifier{
		table:     table,
		threshold: threshold,
		minArea:   minArea,
	}
}

// Enabled reports whether a likelihood table is available.
func (c *Classifier) Enabled() bool {
	return c.table != nil
}

// Threshold returns the likelihood threshold.
func (c *Classifier) Threshold() float32 {
	return c.threshold
}

// Classify writes Skin into mask wherever the (B,G,R) channels of color reach
// the threshold and Background elsewhere, returning the number of skin pixels.
// color needs at least three channels in B,G,R order; mask must be
// single-channel and the same size.
func (c *Classifier) Classify(color, mask pixel.View) (int, error) {
	if !color.SameSize(mask) {
		return 0, pixel.ErrSizeMismatch
	}
	if color.Channels < 3 || mask.Channels != 1 {
		return 0, pixel.ErrChannels
	}

	if c.table == nil {
		mask.Fill(Background)
		return 0, nil
	}

	area := 0
	for y := 0; y < color.Height; y++ {
		crow := color.Row(y)
		mrow := mask.Row(y)
		for x := range mrow {
			px := crow[x*color.Channels:]
			if c.table.Likelihood(px[0], px[1], px[2]) >= c.threshold {
				mrow[x] = Skin
				area++
			} else {
				mrow[x] = Background
			}
		}
	}
	return area, nil
}

// Confident reports whether area is large enough to trust that a hand is present.
func (c *Classifier) Confident(area int) bool {
	return area >= c.minArea
}
