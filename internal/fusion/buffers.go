package fusion

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/ayusman/handfusion/internal/pixel"
)

// HandBuffers are the images produced for one hand. Each hand owns its own
// set, allocated once per orchestrator.
type HandBuffers struct {
	// Color is the smoothed hand color with background removed (BGRA).
	Color gocv.Mat
	// Depth is the smoothed, near-cropped hand depth intensity.
	Depth gocv.Mat
	// Skin is the refined skin mask.
	Skin gocv.Mat
	// Object is the refined object mask.
	Object gocv.Mat
	// ObjectColor is Color restricted to the object mask (BGRA).
	ObjectColor gocv.Mat
}

func newHandBuffers(w, h int) *HandBuffers {
	return &HandBuffers{
		Color:       zeroMat(w, h, gocv.MatTypeCV8UC4),
		Depth:       zeroMat(w, h, gocv.MatTypeCV8UC1),
		Skin:        zeroMat(w, h, gocv.MatTypeCV8UC1),
		Object:      zeroMat(w, h, gocv.MatTypeCV8UC1),
		ObjectColor: zeroMat(w, h, gocv.MatTypeCV8UC4),
	}
}

// Close releases the Mats.
func (b *HandBuffers) Close() error {
	for _, m := range []*gocv.Mat{&b.Color, &b.Depth, &b.Skin, &b.Object, &b.ObjectColor} {
		if err := m.Close(); err != nil {
			return err
		}
	}
	return nil
}

func zeroMat(w, h int, mt gocv.MatType) gocv.Mat {
	m := gocv.NewMatWithSize(h, w, mt)
	m.SetTo(gocv.NewScalar(0, 0, 0, 0))
	return m
}

// viewOf exposes the pixels of a continuous Mat. The view aliases the Mat and
// is only valid while the Mat is open.
func viewOf(m *gocv.Mat) (pixel.View, error) {
	data, err := m.DataPtrUint8()
	if err != nil {
		return pixel.View{}, fmt.Errorf("fusion: mat data: %w", err)
	}
	return pixel.Wrap(data, m.Cols(), m.Rows(), m.Channels(), 0)
}

// handViews holds pixel views over one hand's buffers.
type handViews struct {
	color, depth, skin, object, objectColor pixel.View
}

func (b *HandBuffers) views() (handViews, error) {
	var hv handViews
	var err error
	for _, v := range []struct {
		m   *gocv.Mat
		dst *pixel.View
	}{
		{&b.Color, &hv.color},
		{&b.Depth, &hv.depth},
		{&b.Skin, &hv.skin},
		{&b.Object, &hv.object},
		{&b.ObjectColor, &hv.objectColor},
	} {
		if *v.dst, err = viewOf(v.m); err != nil {
			return handViews{}, err
		}
	}
	return hv, nil
}
