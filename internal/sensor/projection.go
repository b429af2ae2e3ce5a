package sensor

import (
	"image"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ayusman/handfusion/internal/roi"
	"github.com/ayusman/handfusion/internal/skeleton"
)

// Intrinsics are pinhole camera parameters in pixels.
type Intrinsics struct {
	Fx float64 `yaml:"fx"`
	Fy float64 `yaml:"fy"`
	Cx float64 `yaml:"cx"`
	Cy float64 `yaml:"cy"`
}

// Nominal Kinect v1 intrinsics at 640x480.
var (
	KinectDepth = Intrinsics{Fx: 571.26, Fy: 571.26, Cx: 320, Cy: 240}
	KinectColor = Intrinsics{Fx: 531.15, Fy: 531.15, Cx: 320, Cy: 240}
)

// Scaled returns the intrinsics for an image resized from 640 pixels wide to width.
func (in Intrinsics) Scaled(width int) Intrinsics {
	s := float64(width) / DefaultWidth
	return Intrinsics{Fx: in.Fx * s, Fy: in.Fy * s, Cx: in.Cx * s, Cy: in.Cy * s}
}

// matrix builds the camera matrix. Skeleton space has Y up while images have
// rows growing downward, hence the negated Fy.
func (in Intrinsics) matrix() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		in.Fx, 0, in.Cx,
		0, -in.Fy, in.Cy,
		0, 0, 1,
	})
}

// Pinhole projects skeleton-space points with one camera matrix per plane.
// It is immutable and safe for concurrent use.
type Pinhole struct {
	color *mat.Dense
	depth *mat.Dense
	// centres are returned for points at or behind the sensor.
	colorCentre image.Point
	depthCentre image.Point
}

// NewPinhole creates a projector from color and depth intrinsics.
func NewPinhole(color, depth Intrinsics) *Pinhole {
	return &Pinhole{
		color:       color.matrix(),
		depth:       depth.matrix(),
		colorCentre: image.Pt(int(color.Cx), int(color.Cy)),
		depthCentre: image.Pt(int(depth.Cx), int(depth.Cy)),
	}
}

// Project implements roi.Projector.
func (p *Pinhole) Project(pt skeleton.Point3D, plane roi.Plane) image.Point {
	k, centre := p.color, p.colorCentre
	if plane == roi.PlaneDepth {
		k, centre = p.depth, p.depthCentre
	}
	if pt.Z <= 0 {
		return centre
	}

	var h mat.VecDense
	h.MulVec(k, mat.NewVecDense(3, []float64{pt.X, pt.Y, pt.Z}))

	return image.Pt(
		int(math.Round(h.AtVec(0)/h.AtVec(2))),
		int(math.Round(h.AtVec(1)/h.AtVec(2))),
	)
}

// Unproject returns the skeleton-space point that projects to px at depth z metres.
func (in Intrinsics) Unproject(px image.Point, z float64) skeleton.Point3D {
	return skeleton.Point3D{
		X: (float64(px.X) - in.Cx) * z / in.Fx,
		Y: (in.Cy - float64(px.Y)) * z / in.Fy,
		Z: z,
	}
}
