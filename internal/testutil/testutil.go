// Package testutil provides shared fixtures for pipeline tests.
package testutil

import (
	"image"
	"sync"
	"testing"

	"github.com/ayusman/handfusion/internal/depth"
	"github.com/ayusman/handfusion/internal/roi"
	"github.com/ayusman/handfusion/internal/sensor"
	"github.com/ayusman/handfusion/internal/skeleton"
	"github.com/ayusman/handfusion/internal/skin"
)

// Likelihoods assigned by SkinTable.
const (
	SkinLikelihood  = 0.9
	OtherLikelihood = 0.02

	// skinTolerance is the per-channel distance from sensor.SkinColor still treated as skin.
	skinTolerance = 24
)

var (
	skinOnce  sync.Once
	skinTable *skin.Table
)

// SkinTable returns a shared table that scores colors near sensor.SkinColor as
// skin and everything else as background.
func SkinTable() *skin.Table {
	skinOnce.Do(func() {
		values := make([]float32, skin.TableSize)
		for i := range values {
			values[i] = OtherLikelihood
		}
		ref := sensor.SkinColor
		for r := lo(ref[2]); r <= hi(ref[2]); r++ {
			for g := lo(ref[1]); g <= hi(ref[1]); g++ {
				for b := lo(ref[0]); b <= hi(ref[0]); b++ {
					values[skin.Index(uint8(b), uint8(g), uint8(r))] = SkinLikelihood
				}
			}
		}
		table, err := skin.NewTable(values)
		if err != nil {
			panic(err)
		}
		skinTable = table
	})
	return skinTable
}

func lo(v byte) int { return max(int(v)-skinTolerance, 0) }
func hi(v byte) int { return min(int(v)+skinTolerance, 255) }

// DepthTable builds a depth table or fails the test.
func DepthTable(t *testing.T, minDepth, maxDepth int) *depth.Table {
	t.Helper()
	table, err := depth.NewTable(minDepth, maxDepth)
	if err != nil {
		t.Fatalf("depth.NewTable(%d, %d) error = %v", minDepth, maxDepth, err)
	}
	return table
}

// FixedProjector projects every point to one pixel per plane.
type FixedProjector struct {
	Color image.Point
	Depth image.Point
}

// Project implements roi.Projector.
func (p FixedProjector) Project(_ skeleton.Point3D, plane roi.Plane) image.Point {
	if plane == roi.PlaneDepth {
		return p.Depth
	}
	return p.Color
}

// TrackedSkeleton returns a fully tracked skeleton at distance z whose joints
// are all tracked.
func TrackedSkeleton(id int, z float64) skeleton.Skeleton {
	pos := skeleton.Point3D{Z: z}
	sk := skeleton.Skeleton{ID: id, State: skeleton.StateTracked, Position: pos}
	for i := range sk.Joints {
		sk.Joints[i] = skeleton.Joint{Position: pos, State: skeleton.Tracked}
	}
	return sk
}

// UniformTick returns a tick whose depth frame reads depthMM everywhere and
// whose color frame is filled with bgra.
func UniformTick(w, h, depthMM int, bgra [sensor.ColorChannels]byte, skeletons ...skeleton.Skeleton) *sensor.Tick {
	samples := make([]uint16, w*h)
	for i := range samples {
		samples[i] = uint16(depthMM) << depth.PlayerIndexBits
	}
	pix := make([]byte, w*h*sensor.ColorChannels)
	for i := 0; i < len(pix); i += sensor.ColorChannels {
		copy(pix[i:], bgra[:])
	}
	return &sensor.Tick{
		Number:    1,
		Skeletons: skeletons,
		Depth:     sensor.DepthFrame{Width: w, Height: h, Samples: samples},
		Color:     sensor.ColorFrame{Width: w, Height: h, Pix: pix},
	}
}
