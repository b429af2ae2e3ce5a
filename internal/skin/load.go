package skin

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// Load reads a likelihood table stored as TableSize little-endian float32
// values in (B,G,R)-major order.
func Load(r io.Reader) (*Table, error) {
	br := bufio.NewReaderSize(r, 1<<16)
	values := make([]float32, TableSize)
	var buf [4]byte

	for i := range values {
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("%w: data ends after %d values", ErrTableSize, i)
			}
			return nil, fmt.Errorf("read likelihood %d: %w", i, err)
		}
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[:]))
	}

	if _, err := br.ReadByte(); err == nil {
		return nil, fmt.Errorf("%w: trailing data after %d values", ErrTableSize, TableSize)
	}

	return NewTable(values)
}

// LoadFile opens path and reads a likelihood table from it.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open skin model: %w", err)
	}
	defer f.Close()

	t, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load skin model %s: %w", path, err)
	}
	return t, nil
}
