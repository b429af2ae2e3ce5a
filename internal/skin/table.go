// Package skin classifies skin pixels against a precomputed color likelihood table.
package skin

import (
	"errors"
	"fmt"
)

// TableSize is the number of entries in a likelihood table, one per (B,G,R) triple.
const TableSize = 256 * 256 * 256

// ErrTableSize is returned when likelihood data does not hold exactly TableSize values.
var ErrTableSize = errors.New("skin: likelihood table size mismatch")

// Table holds the learned probability that a color is skin.
// It is immutable and safe for concurrent reads.
type Table struct {
	values []float32
}

// NewTable wraps values, which must be indexed B + 256*G + 65536*R.
// The table takes ownership of the slice.
func NewTable(values []float32) (*Table, error) {
	if len(values) != TableSize {
		return nil, fmt.Errorf("%w: got %d values, want %d", ErrTableSize, len(values), TableSize)
	}
	return &Table{values: values}, nil
}

// Index returns the table offset of a color triple.
func Index(b, g, r uint8) int {
	return int(b) + 256*int(g) + 65536*int(r)
}

// Likelihood returns the skin probability of a color.
func (t *Table) Likelihood(b, g, r uint8) float32 {
	return t.values[Index(b, g, r)]
}
