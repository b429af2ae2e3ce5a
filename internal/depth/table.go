// Package depth converts raw sensor depth readings into normalized 8-bit
// intensities and uses them to strip background from hand regions.
package depth

import (
	"errors"
	"fmt"

	"github.com/ayusman/handfusion/internal/pixel"
)

const (
	// MaxDepthLimit bounds the table size; raw readings are 13-bit millimetres.
	MaxDepthLimit = 8192

	// PlayerIndexBits is the number of low bits of a raw sample holding the player index.
	PlayerIndexBits = 3

	// UnknownDepth and TooFarDepth are the sensor's reserved readings in millimetres.
	// Both normalize to 0 regardless of the table range.
	UnknownDepth = 0
	TooFarDepth  = 4095
)

// ErrInvalidRange is returned when a table is requested for an unusable depth range.
var ErrInvalidRange = errors.New("depth: invalid depth range")

// Value strips the player-index bits from a raw depth sample.
func Value(raw uint16) int {
	return int(raw >> PlayerIndexBits)
}

// Table maps a depth in millimetres to an intensity where nearer is brighter.
// It is immutable once built and safe for concurrent reads.
type Table struct {
	values   []byte
	minDepth int
	maxDepth int
}

// NewTable precomputes intensities for every depth below maxDepth.
// Depths at or below minDepth map to 0.
func NewTable(minDepth, maxDepth int) (*Table, error) {
	if minDepth < 0 || minDepth >= maxDepth || maxDepth > MaxDepthLimit {
		return nil, fmt.Errorf("%w: min=%d max=%d limit=%d", ErrInvalidRange, minDepth, maxDepth, MaxDepthLimit)
	}

	span := maxDepth - minDepth
	values := make([]byte, maxDepth)
	for d := minDepth + 1; d < maxDepth; d++ {
		v := (maxDepth - d) * 255 / span
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}
		values[d] = byte(v)
	}

	return &Table{values: values, minDepth: minDepth, maxDepth: maxDepth}, nil
}

// Lookup returns the intensity for depth d. Depths outside [0, maxDepth) are background.
func (t *Table) Lookup(d int) byte {
	if d < 0 || d >= t.maxDepth {
		return 0
	}
	return t.values[d]
}

// MinDepth returns the near cutoff in millimetres.
func (t *Table) MinDepth() int { return t.minDepth }

// MaxDepth returns the far cutoff in millimetres.
func (t *Table) MaxDepth() int { return t.maxDepth }

// Len returns the number of entries in the table.
func (t *Table) Len() int { return len(t.values) }

// Normalize writes the intensity of every raw sample into dst, which must be a
// single-channel view with one pixel per sample in scan order.
func (t *Table) Normalize(dst pixel.View, raw []uint16) error {
	if dst.Channels != 1 {
		return pixel.ErrChannels
	}
	if len(raw) != dst.Width*dst.Height {
		return fmt.Errorf("%w: %d samples for %dx%d image", pixel.ErrSizeMismatch, len(raw), dst.Width, dst.Height)
	}

	for y := 0; y < dst.Height; y++ {
		row := dst.Row(y)
		samples := raw[y*dst.Width : (y+1)*dst.Width]
		for x, s := range samples {
			d := Value(s)
			if d == TooFarDepth {
				row[x] = 0
				continue
			}
			row[x] = t.Lookup(d)
		}
	}
	return nil
}
