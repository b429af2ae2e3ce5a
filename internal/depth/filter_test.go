package depth

import (
	"errors"
	"testing"

	"github.com/ayusman/handfusion/internal/pixel"
)

func TestFilterFarObjects(t *testing.T) {
	color := pixel.New(3, 1, 4)
	color.Fill(200)

	depthROI := pixel.New(3, 1, 1)
	depthROI.Set(0, 0, 0, 0)
	depthROI.Set(1, 0, 0, 49)
	depthROI.Set(2, 0, 0, 50) // at the cutoff, kept

	if err := FilterFarObjects(color, depthROI, 50); err != nil {
		t.Fatalf("FilterFarObjects() error = %v", err)
	}

	for x, wantKept := range []bool{false, false, true} {
		for c := 0; c < 4; c++ {
			got := color.At(x, 0, c)
			if wantKept && got != 200 {
				t.Errorf("pixel %d channel %d = %d, want 200", x, c, got)
			}
			if !wantKept && got != 0 {
				t.Errorf("pixel %d channel %d = %d, want 0", x, c, got)
			}
		}
	}
}

func TestFilterFarObjects_SizeMismatch(t *testing.T) {
	err := FilterFarObjects(pixel.New(3, 3, 4), pixel.New(3, 2, 1), 10)
	if !errors.Is(err, pixel.ErrSizeMismatch) {
		t.Errorf("error = %v, want ErrSizeMismatch", err)
	}

	err = FilterFarObjects(pixel.New(3, 3, 4), pixel.New(3, 3, 3), 10)
	if !errors.Is(err, pixel.ErrChannels) {
		t.Errorf("error = %v, want ErrChannels", err)
	}
}

func TestNearCrop(t *testing.T) {
	t.Run("zeroes below midpoint of nonzero range", func(t *testing.T) {
		v := pixel.New(4, 1, 1)
		copy(v.Pix, []byte{0, 40, 120, 200})

		lo, hi, ok := NearCrop(v)
		if !ok {
			t.Fatal("NearCrop() ok = false, want true")
		}
		if lo != 40 || hi != 200 {
			t.Errorf("range = [%d,%d], want [40,200]", lo, hi)
		}

		want := []byte{0, 0, 120, 200}
		for i, w := range want {
			if v.Pix[i] != w {
				t.Errorf("pixel %d = %d, want %d", i, v.Pix[i], w)
			}
		}
	})

	t.Run("empty region untouched", func(t *testing.T) {
		v := pixel.New(2, 2, 1)
		if _, _, ok := NearCrop(v); ok {
			t.Error("NearCrop() ok = true for empty region")
		}
	})

	t.Run("uniform region kept", func(t *testing.T) {
		v := pixel.New(2, 2, 1)
		v.Fill(200)
		NearCrop(v)
		if v.CountNonZero() != 4 {
			t.Errorf("CountNonZero() = %d, want 4", v.CountNonZero())
		}
	})
}
