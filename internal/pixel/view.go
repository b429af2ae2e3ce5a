// Package pixel provides bounds-checked two-dimensional views over packed
// 8-bit image buffers. Pixels are stored row-major, channels interleaved,
// rows separated by Stride bytes.
package pixel

import (
	"errors"
	"fmt"
	"image"
)

var (
	// ErrSizeMismatch is returned when two views that must share dimensions do not.
	ErrSizeMismatch = errors.New("pixel: view size mismatch")

	// ErrShortBuffer is returned when a buffer is too small for the requested geometry.
	ErrShortBuffer = errors.New("pixel: buffer too short")

	// ErrChannels is returned when a view has an unexpected channel count.
	ErrChannels = errors.New("pixel: unexpected channel count")
)

// View is a window onto a byte buffer laid out as Height rows of Width pixels
// with Channels bytes each.
type View struct {
	Pix      []byte
	Width    int
	Height   int
	Channels int
	Stride   int
}

// New allocates a zeroed, tightly packed view.
func New(width, height, channels int) View {
	return View{
		Pix:      make([]byte, width*height*channels),
		Width:    width,
		Height:   height,
		Channels: channels,
		Stride:   width * channels,
	}
}

// Wrap builds a view over an existing buffer. A stride of 0 means tightly packed.
func Wrap(pix []byte, width, height, channels, stride int) (View, error) {
	if width < 0 || height < 0 || channels <= 0 {
		return View{}, fmt.Errorf("pixel: invalid geometry %dx%dx%d", width, height, channels)
	}
	if stride == 0 {
		stride = width * channels
	}
	if stride < width*channels {
		return View{}, fmt.Errorf("pixel: stride %d shorter than row of %d bytes", stride, width*channels)
	}
	if height > 0 && len(pix) < (height-1)*stride+width*channels {
		return View{}, ErrShortBuffer
	}
	return View{Pix: pix, Width: width, Height: height, Channels: channels, Stride: stride}, nil
}

// Bounds returns the view rectangle anchored at the origin.
func (v View) Bounds() image.Rectangle {
	return image.Rect(0, 0, v.Width, v.Height)
}

// SameSize reports whether both views cover the same number of rows and columns.
func (v View) SameSize(o View) bool {
	return v.Width == o.Width && v.Height == o.Height
}

func (v View) offset(x, y, c int) int {
	if x < 0 || x >= v.Width || y < 0 || y >= v.Height || c < 0 || c >= v.Channels {
		panic(fmt.Sprintf("pixel: (%d,%d,%d) outside %dx%dx%d view", x, y, c, v.Width, v.Height, v.Channels))
	}
	return y*v.Stride + x*v.Channels + c
}

// At returns channel c of the pixel at (x, y).
func (v View) At(x, y, c int) byte {
	return v.Pix[v.offset(x, y, c)]
}

// Set writes channel c of the pixel at (x, y).
func (v View) Set(x, y, c int, b byte) {
	v.Pix[v.offset(x, y, c)] = b
}

// Pixel returns the channels of the pixel at (x, y). The slice aliases the view.
func (v View) Pixel(x, y int) []byte {
	i := v.offset(x, y, 0)
	return v.Pix[i : i+v.Channels : i+v.Channels]
}

// Row returns the Width*Channels bytes of row y. The slice aliases the view.
func (v View) Row(y int) []byte {
	if y < 0 || y >= v.Height {
		panic(fmt.Sprintf("pixel: row %d outside %d-row view", y, v.Height))
	}
	start := y * v.Stride
	n := v.Width * v.Channels
	return v.Pix[start : start+n : start+n]
}

// Fill sets every byte of the view to b.
func (v View) Fill(b byte) {
	for y := 0; y < v.Height; y++ {
		row := v.Row(y)
		for i := range row {
			row[i] = b
		}
	}
}

// Sub returns a view of r that shares the underlying buffer.
func (v View) Sub(r image.Rectangle) (View, error) {
	if !r.In(v.Bounds()) {
		return View{}, fmt.Errorf("pixel: rectangle %v outside %v", r, v.Bounds())
	}
	if r.Empty() {
		return View{Channels: v.Channels, Stride: v.Stride}, nil
	}
	start := r.Min.Y*v.Stride + r.Min.X*v.Channels
	return View{
		Pix:      v.Pix[start:],
		Width:    r.Dx(),
		Height:   r.Dy(),
		Channels: v.Channels,
		Stride:   v.Stride,
	}, nil
}

// CopyFrom copies src into v row by row.
func (v View) CopyFrom(src View) error {
	if !v.SameSize(src) {
		return ErrSizeMismatch
	}
	if v.Channels != src.Channels {
		return ErrChannels
	}
	for y := 0; y < v.Height; y++ {
		copy(v.Row(y), src.Row(y))
	}
	return nil
}

// CountNonZero counts pixels with any nonzero channel.
func (v View) CountNonZero() int {
	n := 0
	for y := 0; y < v.Height; y++ {
		row := v.Row(y)
		for x := 0; x < v.Width; x++ {
			px := row[x*v.Channels : (x+1)*v.Channels]
			for _, b := range px {
				if b != 0 {
					n++
					break
				}
			}
		}
	}
	return n
}
