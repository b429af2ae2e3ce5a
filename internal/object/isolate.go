// Package object separates a held object from the hand holding it.
package object

import (
	"image"

	"github.com/ayusman/handfusion/internal/pixel"
	"github.com/ayusman/handfusion/internal/roi"
)

// Isolate writes max(0, depth - skin) into dst for every pixel and returns the
// number of nonzero results. Skin pixels (255) are always cleared; elsewhere
// the depth intensity passes through. All views must be single-channel and the
// same size. dst may alias depthROI.
func Isolate(depthROI, skinMask, dst pixel.View) (int, error) {
	if !depthROI.SameSize(skinMask) || !depthROI.SameSize(dst) {
		return 0, pixel.ErrSizeMismatch
	}
	if depthROI.Channels != 1 || skinMask.Channels != 1 || dst.Channels != 1 {
		return 0, pixel.ErrChannels
	}

	count := 0
	for y := 0; y < depthROI.Height; y++ {
		drow := depthROI.Row(y)
		srow := skinMask.Row(y)
		orow := dst.Row(y)
		for x, d := range drow {
			s := srow[x]
			if d > s {
				orow[x] = d - s
				count++
			} else {
				orow[x] = 0
			}
		}
	}
	return count, nil
}

// Centroid returns the mean position and count of the nonzero pixels of mask.
// ok is false when the mask is empty.
func Centroid(mask pixel.View) (c image.Point, count int, ok bool) {
	var sx, sy int
	for y := 0; y < mask.Height; y++ {
		row := mask.Row(y)
		for x := 0; x < mask.Width; x++ {
			if row[x*mask.Channels] == 0 {
				continue
			}
			sx += x
			sy += y
			count++
		}
	}
	if count == 0 {
		return image.Point{}, 0, false
	}
	return image.Pt(sx/count, sy/count), count, true
}

// Locate returns a w x h region around the object in mask, kept inside the
// mask bounds. ok is false when fewer than minArea object pixels remain.
func Locate(mask pixel.View, w, h, minArea int) (roi.Region, bool) {
	if w > mask.Width || h > mask.Height {
		return roi.Region{}, false
	}
	c, count, ok := Centroid(mask)
	if !ok || count < minArea {
		return roi.Region{}, false
	}
	return roi.Clamp(c, w, h, mask.Width, mask.Height), true
}
