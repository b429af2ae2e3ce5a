package roi

import (
	"errors"
	"image"
	"testing"

	"github.com/ayusman/handfusion/internal/skeleton"
)

// fixedProjector ignores the position and reports a preset point per plane.
type fixedProjector map[Plane]image.Point

func (f fixedProjector) Project(_ skeleton.Point3D, plane Plane) image.Point {
	return f[plane]
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name   string
		center image.Point
		want   Region
	}{
		{name: "near top-left corner", center: image.Pt(10, 10), want: Region{X: 0, Y: 0, Width: 150, Height: 150}},
		{name: "near bottom-right corner", center: image.Pt(630, 470), want: Region{X: 490, Y: 330, Width: 150, Height: 150}},
		{name: "centred", center: image.Pt(320, 240), want: Region{X: 245, Y: 165, Width: 150, Height: 150}},
		{name: "off frame negative", center: image.Pt(-500, 900), want: Region{X: 0, Y: 330, Width: 150, Height: 150}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.center, 150, 150, 640, 480); got != tt.want {
				t.Errorf("Clamp(%v) = %+v, want %+v", tt.center, got, tt.want)
			}
		})
	}
}

func TestClamp_InBoundsAndIdempotent(t *testing.T) {
	frames := [][2]int{{640, 480}, {320, 240}, {150, 150}}
	sizes := [][2]int{{150, 150}, {50, 50}, {1, 1}, {150, 40}}

	for _, f := range frames {
		for _, s := range sizes {
			if s[0] > f[0] || s[1] > f[1] {
				continue
			}
			for x := -200; x <= f[0]+200; x += 37 {
				for y := -200; y <= f[1]+200; y += 29 {
					r := Clamp(image.Pt(x, y), s[0], s[1], f[0], f[1])
					if r.X < 0 || r.X > f[0]-s[0] || r.Y < 0 || r.Y > f[1]-s[1] {
						t.Fatalf("frame %v size %v point (%d,%d): region %+v out of bounds", f, s, x, y, r)
					}
					if !r.Rect().In(image.Rect(0, 0, f[0], f[1])) {
						t.Fatalf("region %+v not inside frame %v", r, f)
					}
					if again := r.ClampTo(f[0], f[1]); again != r {
						t.Fatalf("ClampTo not idempotent: %+v then %+v", r, again)
					}
				}
			}
		}
	}
}

func TestNewLocator_RegionTooLarge(t *testing.T) {
	tests := []struct {
		name           string
		frameW, frameH int
	}{
		{name: "too narrow", frameW: 149, frameH: 480},
		{name: "too short", frameW: 640, frameH: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLocator(fixedProjector{}, PlaneColor, tt.frameW, tt.frameH, 150, 150)
			if !errors.Is(err, ErrRegionTooLarge) {
				t.Errorf("NewLocator() error = %v, want ErrRegionTooLarge", err)
			}
		})
	}

	if _, err := NewLocator(fixedProjector{}, PlaneColor, 640, 480, 0, 150); err == nil {
		t.Error("NewLocator() should reject an empty region")
	}
}

func TestLocator_Locate(t *testing.T) {
	proj := fixedProjector{PlaneColor: image.Pt(100, 100), PlaneDepth: image.Pt(630, 470)}

	color, err := NewLocator(proj, PlaneColor, 640, 480, 150, 150)
	if err != nil {
		t.Fatalf("NewLocator() error = %v", err)
	}
	depthLoc, err := NewLocator(proj, PlaneDepth, 640, 480, 150, 150)
	if err != nil {
		t.Fatalf("NewLocator() error = %v", err)
	}

	joint := skeleton.Joint{State: skeleton.Tracked}

	r, ok := color.Locate(joint)
	if !ok {
		t.Fatal("Locate() ok = false for tracked joint")
	}
	if r != (Region{X: 25, Y: 25, Width: 150, Height: 150}) {
		t.Errorf("color region = %+v", r)
	}

	r, ok = depthLoc.Locate(joint)
	if !ok || r.X != 490 || r.Y != 330 {
		t.Errorf("depth region = %+v, ok = %v", r, ok)
	}

	for _, state := range []skeleton.TrackingState{skeleton.NotTracked, skeleton.Inferred} {
		if _, ok := color.Locate(skeleton.Joint{State: state}); ok {
			t.Errorf("Locate() ok = true for %s joint", state)
		}
	}
}
