package depth

import (
	"errors"
	"testing"

	"github.com/ayusman/handfusion/internal/pixel"
)

func TestNewTable_InvalidRange(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
	}{
		{name: "min equals max", min: 800, max: 800},
		{name: "min above max", min: 2000, max: 800},
		{name: "negative min", min: -1, max: 800},
		{name: "max above limit", min: 800, max: MaxDepthLimit + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.min, tt.max)
			if !errors.Is(err, ErrInvalidRange) {
				t.Errorf("NewTable(%d, %d) error = %v, want ErrInvalidRange", tt.min, tt.max, err)
			}
		})
	}
}

func TestTable_Lookup(t *testing.T) {
	table, err := NewTable(800, 2000)
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}

	tests := []struct {
		name  string
		depth int
		want  byte
	}{
		{name: "unknown depth", depth: 0, want: 0},
		{name: "too close", depth: 500, want: 0},
		{name: "at min depth", depth: 800, want: 0},
		{name: "just past min depth", depth: 801, want: 254},
		{name: "midway", depth: 1400, want: 127},
		{name: "just before max depth", depth: 1999, want: 0},
		{name: "at max depth", depth: 2000, want: 0},
		{name: "beyond max depth", depth: 4095, want: 0},
		{name: "negative", depth: -3, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := table.Lookup(tt.depth); got != tt.want {
				t.Errorf("Lookup(%d) = %d, want %d", tt.depth, got, tt.want)
			}
		})
	}
}

func TestTable_Properties(t *testing.T) {
	ranges := [][2]int{{0, 255}, {400, 4000}, {800, 2000}, {1000, 1001}, {0, MaxDepthLimit}}

	for _, r := range ranges {
		table, err := NewTable(r[0], r[1])
		if err != nil {
			t.Fatalf("NewTable(%d, %d) error = %v", r[0], r[1], err)
		}
		if table.Len() != r[1] {
			t.Errorf("Len() = %d, want %d", table.Len(), r[1])
		}

		for d := 0; d <= r[0]; d++ {
			if table.Lookup(d) != 0 {
				t.Fatalf("range %v: Lookup(%d) = %d, want 0 at or below min", r, d, table.Lookup(d))
			}
		}

		// Nearer is brighter: intensity never increases with depth.
		prev := byte(255)
		for d := r[0] + 1; d < r[1]; d++ {
			got := table.Lookup(d)
			if got > prev {
				t.Fatalf("range %v: Lookup(%d) = %d exceeds Lookup(%d) = %d", r, d, got, d-1, prev)
			}
			prev = got
		}
	}
}

func TestTable_StrictlyDecreasingWhenRangeFitsInByte(t *testing.T) {
	table, err := NewTable(100, 355)
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}

	for d := 102; d < 355; d++ {
		if table.Lookup(d) >= table.Lookup(d-1) {
			t.Fatalf("Lookup(%d) = %d not below Lookup(%d) = %d", d, table.Lookup(d), d-1, table.Lookup(d-1))
		}
	}
}

func TestValue_StripsPlayerIndex(t *testing.T) {
	raw := uint16(1400<<PlayerIndexBits | 5)
	if got := Value(raw); got != 1400 {
		t.Errorf("Value(%#x) = %d, want 1400", raw, got)
	}
}

func TestTable_NormalizeSentinelsAboveTooFar(t *testing.T) {
	table, err := NewTable(800, 5000)
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}

	raw := []uint16{
		UnknownDepth << PlayerIndexBits, TooFarDepth << PlayerIndexBits,
		(TooFarDepth<<PlayerIndexBits | 4), 4000 << PlayerIndexBits,
	}
	dst := pixel.New(2, 2, 1)

	if err := table.Normalize(dst, raw); err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if dst.Pix[i] != 0 {
			t.Errorf("pixel %d = %d, want 0 for reserved reading", i, dst.Pix[i])
		}
	}
	if want := table.Lookup(4000); dst.Pix[3] != want || want == 0 {
		t.Errorf("pixel 3 = %d, want nonzero %d", dst.Pix[3], want)
	}
}

func TestTable_Normalize(t *testing.T) {
	table, err := NewTable(800, 2000)
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}

	raw := []uint16{
		0, 1400 << PlayerIndexBits,
		(1400<<PlayerIndexBits | 2), 4095 << PlayerIndexBits,
	}
	dst := pixel.New(2, 2, 1)

	if err := table.Normalize(dst, raw); err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	want := []byte{0, 127, 127, 0}
	for i, w := range want {
		if dst.Pix[i] != w {
			t.Errorf("pixel %d = %d, want %d", i, dst.Pix[i], w)
		}
	}

	if err := table.Normalize(dst, raw[:3]); !errors.Is(err, pixel.ErrSizeMismatch) {
		t.Errorf("Normalize() short frame error = %v, want ErrSizeMismatch", err)
	}
	if err := table.Normalize(pixel.New(2, 2, 3), raw); !errors.Is(err, pixel.ErrChannels) {
		t.Errorf("Normalize() 3-channel error = %v, want ErrChannels", err)
	}
}
