package depth

import (
	"github.com/ayusman/handfusion/internal/pixel"
)

// FilterFarObjects zeroes every channel of color pixels whose co-located depth
// intensity is below nearThreshold. Intensity 0 (invalid or beyond the far
// cutoff) is always filtered for any threshold above 0.
func FilterFarObjects(color, depthROI pixel.View, nearThreshold byte) error {
	if !color.SameSize(depthROI) {
		return pixel.ErrSizeMismatch
	}
	if depthROI.Channels != 1 {
		return pixel.ErrChannels
	}

	for y := 0; y < depthROI.Height; y++ {
		drow := depthROI.Row(y)
		crow := color.Row(y)
		for x, d := range drow {
			if d >= nearThreshold {
				continue
			}
			px := crow[x*color.Channels : (x+1)*color.Channels]
			for c := range px {
				px[c] = 0
			}
		}
	}
	return nil
}

// NearCrop isolates the nearest surface in a depth region. It finds the range
// of nonzero intensities and zeroes every pixel below the midpoint of that
// range. It returns the observed range and false when the region is empty.
func NearCrop(depthROI pixel.View) (lo, hi byte, ok bool) {
	lo = 255
	for y := 0; y < depthROI.Height; y++ {
		for _, d := range depthROI.Row(y) {
			if d == 0 {
				continue
			}
			ok = true
			if d < lo {
				lo = d
			}
			if d > hi {
				hi = d
			}
		}
	}
	if !ok {
		return 0, 0, false
	}

	mid := byte((int(lo) + int(hi)) / 2)
	for y := 0; y < depthROI.Height; y++ {
		row := depthROI.Row(y)
		for x, d := range row {
			if d < mid {
				row[x] = 0
			}
		}
	}
	return lo, hi, true
}
