package fusion

import (
	"github.com/ayusman/handfusion/internal/roi"
)

// Point is a JSON-friendly pixel position.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// HandSummary is the plain-data part of a HandResult.
type HandSummary struct {
	Side          string     `json:"side"`
	Present       bool       `json:"present"`
	ColorRegion   roi.Region `json:"color_region"`
	DepthRegion   roi.Region `json:"depth_region"`
	SkinArea      int        `json:"skin_area"`
	SkinConfident bool       `json:"skin_confident"`
	ObjectPixels  int        `json:"object_pixels"`
	ObjectFound   bool       `json:"object_found"`
	ObjectRegion  roi.Region `json:"object_region"`
	Cursor        Point      `json:"cursor"`
}

// Summary is a copy of a Result without image buffers. It stays valid after
// the next Process call.
type Summary struct {
	Tick       int64          `json:"tick"`
	SkeletonID int            `json:"skeleton_id"`
	Degraded   bool           `json:"degraded"`
	Hands      [2]HandSummary `json:"hands"`
}

// Summary copies the plain data out of r.
func (r *Result) Summary() Summary {
	s := Summary{
		Tick:       r.Tick,
		SkeletonID: r.SkeletonID,
		Degraded:   r.Degraded,
	}
	for i, h := range r.Hands {
		s.Hands[i] = HandSummary{
			Side:    h.Side.String(),
			Present: h.Present,
		}
		if !h.Present {
			continue
		}
		s.Hands[i].ColorRegion = h.ColorRegion
		s.Hands[i].DepthRegion = h.DepthRegion
		s.Hands[i].SkinArea = h.SkinArea
		s.Hands[i].SkinConfident = h.SkinConfident
		s.Hands[i].ObjectPixels = h.ObjectPixels
		s.Hands[i].ObjectFound = h.ObjectFound
		s.Hands[i].ObjectRegion = h.ObjectRegion
		s.Hands[i].Cursor = Point{X: h.Cursor.X, Y: h.Cursor.Y}
	}
	return s
}
