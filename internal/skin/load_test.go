package skin

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// encode writes n little-endian float32 values produced by fn.
func encode(n int, fn func(i int) float32) []byte {
	buf := make([]byte, 4*n)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(fn(i)))
	}
	return buf
}

func TestLoad(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping full-size table load in short mode")
	}

	data := encode(TableSize, func(i int) float32 {
		if i == Index(30, 60, 200) {
			return 0.75
		}
		return 0.01
	})

	table, err := Load(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := table.Likelihood(30, 60, 200); got != 0.75 {
		t.Errorf("Likelihood(30,60,200) = %v, want 0.75", got)
	}
	if got := table.Likelihood(0, 0, 0); got != 0.01 {
		t.Errorf("Likelihood(0,0,0) = %v, want 0.01", got)
	}
}

func TestLoad_Truncated(t *testing.T) {
	data := encode(1024, func(int) float32 { return 0.5 })
	data = append(data, 0x01, 0x02) // partial value

	_, err := Load(bytes.NewReader(data))
	if !errors.Is(err, ErrTableSize) {
		t.Errorf("Load() error = %v, want ErrTableSize", err)
	}
}

func TestLoad_TrailingData(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping full-size table load in short mode")
	}

	data := encode(TableSize+1, func(int) float32 { return 0 })

	_, err := Load(bytes.NewReader(data))
	if !errors.Is(err, ErrTableSize) {
		t.Errorf("Load() error = %v, want ErrTableSize", err)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.data"))
	if err == nil {
		t.Fatal("LoadFile() on missing file should fail")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadFile() error = %v, want os.ErrNotExist", err)
	}
}
