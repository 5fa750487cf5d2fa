package token

import (
	"fmt"

	"github.com/deepteams/framecoder/internal/bitio"
	"github.com/deepteams/framecoder/internal/huffman"
)

// Tally counts token occurrences per table.
type Tally [NumTables][NumTokens]uint32

// Add accumulates o into t, saturating at the counter limit.
func (t *Tally) Add(o *Tally) {
	for i := range t {
		for s := range t[i] {
			v := uint64(t[i][s]) + uint64(o[i][s])
			if v > 1<<32-1 {
				v = 1<<32 - 1
			}
			t[i][s] = uint32(v)
		}
	}
}

// Total returns the number of counted tokens.
func (t *Tally) Total() uint64 {
	var n uint64
	for i := range t {
		for _, c := range t[i] {
			n += uint64(c)
		}
	}
	return n
}

// TableSet is the full set of Huffman tables of a frame.
type TableSet [NumTables]*huffman.Table

// BuildTables builds one table per context from t.
func BuildTables(t *Tally) *TableSet {
	var ts TableSet
	for i := range ts {
		ts[i] = huffman.Build(&t[i])
	}
	return &ts
}

// Cost returns the number of Huffman code bits needed to code t with ts.
// Extra bits are not counted since they do not depend on the tables.
func (ts *TableSet) Cost(t *Tally) uint64 {
	var bits uint64
	for i, tab := range ts {
		bits += tab.Cost(&t[i])
	}
	return bits
}

// Write serializes every tree in table order.
func (ts *TableSet) Write(bw *bitio.Writer) {
	for _, tab := range ts {
		tab.Write(bw)
	}
}

// ReadTables parses NumTables serialized trees.
func ReadTables(br *bitio.Reader) (*TableSet, error) {
	var ts TableSet
	for i := range ts {
		tab, err := huffman.Read(br)
		if err != nil {
			return nil, fmt.Errorf("table %d: %w", i, err)
		}
		ts[i] = tab
	}
	return &ts, nil
}
