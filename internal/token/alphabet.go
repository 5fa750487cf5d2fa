// Package token maps quantized coefficient blocks onto the 32-symbol token
// alphabet, selects the Huffman table of every token from its coding
// context, and keeps the per-table frequency tallies tables are built from.
package token

import "github.com/deepteams/framecoder/internal/huffman"

// Token values.
const (
	EOB        = 0  // end of block
	EOBPair    = 1  // end of this and the next block
	EOBTriple  = 2  // end of this and the next two blocks
	EOBRun4    = 3  // run of 4..7 blocks, 2 extra bits
	EOBRun8    = 4  // run of 8..15 blocks, 3 extra bits
	EOBRun16   = 5  // run of 16..31 blocks, 4 extra bits
	EOBRunLong = 6  // run of 1..4095 blocks, 12 extra bits
	ShortZRL   = 7  // 1..8 zeros, 3 extra bits
	ZRL        = 8  // 1..64 zeros, 6 extra bits
	One        = 9  // +1
	MinusOne   = 10 // -1
	Two        = 11 // +2
	MinusTwo   = 12 // -2
	Val3       = 13 // +-3, sign bit
	Val4       = 14
	Val5       = 15
	Val6       = 16
	Cat3       = 17 // 7..8
	Cat4       = 18 // 9..12
	Cat5       = 19 // 13..20
	Cat6       = 20 // 21..36
	Cat7       = 21 // 37..68
	Cat8       = 22 // 69..580
	Run1One    = 23 // one zero then +-1; Run1One+r-1 for r in 1..5
	Run6One    = 28 // 6..9 zeros then +-1
	Run10One   = 29 // 10..17 zeros then +-1
	Run1Two    = 30 // one zero then +-2 or +-3
	Run2Two    = 31 // 2..3 zeros then +-2 or +-3

	NumTokens = huffman.NumSymbols
)

// ExtraBits is the number of raw bits following each token.
var ExtraBits = [NumTokens]uint8{
	0, 0, 0, 2, 3, 4, 12, 3, 6,
	0, 0, 0, 0,
	1, 1, 1, 1,
	2, 3, 4, 5, 6, 10,
	1, 1, 1, 1, 1,
	3, 4,
	2, 3,
}

// catBase is the smallest magnitude of Cat3..Cat8.
var catBase = [6]int32{7, 9, 13, 21, 37, 69}

const (
	// MaxEOBRun is the longest run one token can carry.
	MaxEOBRun = 4095
	// MaxValue is the largest codable magnitude.
	MaxValue = 580
)

// Plane classes.
const (
	ClassLuma = iota
	ClassChroma
	NumClasses
)

const (
	// NumGroups is the number of coefficient groups.
	NumGroups = 5
	// NumSelectors is the number of per-group table alternatives.
	NumSelectors = 4
	// NumTables is the total number of Huffman tables per frame.
	NumTables = NumGroups * NumClasses * NumSelectors
)

// groupOf maps a scan position to its coefficient group: DC, AC 1-5, 6-14,
// 15-27 and 28-63.
var groupOf = func() [64]uint8 {
	var g [64]uint8
	for pos := range g {
		switch {
		case pos == 0:
			g[pos] = 0
		case pos <= 5:
			g[pos] = 1
		case pos <= 14:
			g[pos] = 2
		case pos <= 27:
			g[pos] = 3
		default:
			g[pos] = 4
		}
	}
	return g
}()

// TableIndex returns the table used for a token starting at scan position
// pos of a block of plane class class coded with selector sel.
func TableIndex(pos, class, sel int) int {
	return (int(groupOf[pos])*NumClasses+class)*NumSelectors + sel
}

// ClassOf returns the plane class of plane p.
func ClassOf(p int) int {
	if p == 0 {
		return ClassLuma
	}
	return ClassChroma
}

// valueToken returns the token and extra bits coding the non-zero level v
// with no preceding zeros.
func valueToken(v int32) (tok uint8, extra uint16) {
	sign := uint16(0)
	a := v
	if v < 0 {
		sign, a = 1, -v
	}
	switch {
	case a == 1:
		return One + uint8(sign), 0
	case a == 2:
		return Two + uint8(sign), 0
	case a <= 6:
		return Val3 + uint8(a-3), sign
	}
	if a > MaxValue {
		a = MaxValue
	}
	for i := len(catBase) - 1; i >= 0; i-- {
		if a >= catBase[i] {
			n := ExtraBits[Cat3+i] - 1
			return Cat3 + uint8(i), sign<<n | uint16(a-catBase[i])
		}
	}
	panic("unreachable")
}

// runToken returns the combined token for r zeros followed by v, if one
// exists.
func runToken(r int, v int32) (tok uint8, extra uint16, ok bool) {
	sign := uint16(0)
	a := v
	if v < 0 {
		sign, a = 1, -v
	}
	switch {
	case a == 1 && r <= 5:
		return Run1One + uint8(r-1), sign, true
	case a == 1 && r <= 9:
		return Run6One, sign<<2 | uint16(r-6), true
	case a == 1 && r <= 17:
		return Run10One, sign<<3 | uint16(r-10), true
	case (a == 2 || a == 3) && r == 1:
		return Run1Two, sign<<1 | uint16(a-2), true
	case (a == 2 || a == 3) && r <= 3:
		return Run2Two, sign<<2 | uint16(r-2)<<1 | uint16(a-2), true
	}
	return 0, 0, false
}

// eobToken returns the token and extra bits of an EOB run of n blocks,
// 1 <= n <= MaxEOBRun.
func eobToken(n int) (tok uint8, extra uint16) {
	switch {
	case n == 1:
		return EOB, 0
	case n == 2:
		return EOBPair, 0
	case n == 3:
		return EOBTriple, 0
	case n < 8:
		return EOBRun4, uint16(n - 4)
	case n < 16:
		return EOBRun8, uint16(n - 8)
	case n < 32:
		return EOBRun16, uint16(n - 16)
	}
	return EOBRunLong, uint16(n)
}

// IsEOB reports whether tok ends a block.
func IsEOB(tok int) bool { return tok <= EOBRunLong }

// eobLength returns the run length coded by an EOB token, or 0 if the
// combination is invalid.
func eobLength(tok int, extra int32) int {
	switch tok {
	case EOB:
		return 1
	case EOBPair:
		return 2
	case EOBTriple:
		return 3
	case EOBRun4:
		return 4 + int(extra)
	case EOBRun8:
		return 8 + int(extra)
	case EOBRun16:
		return 16 + int(extra)
	}
	return int(extra)
}

// decodeToken expands a non-EOB token into the number of zeros it skips and
// the level that follows them (0 for pure zero runs).
func decodeToken(tok int, extra int32) (zeros int, v int32) {
	signed := func(mag int32, neg bool) int32 {
		if neg {
			return -mag
		}
		return mag
	}
	switch {
	case tok == ShortZRL || tok == ZRL:
		return int(extra) + 1, 0
	case tok >= One && tok <= MinusTwo:
		mag := int32(1 + (tok-One)/2)
		return 0, signed(mag, (tok-One)&1 == 1)
	case tok >= Val3 && tok <= Val6:
		return 0, signed(int32(tok-Val3+3), extra == 1)
	case tok >= Cat3 && tok <= Cat8:
		n := ExtraBits[tok] - 1
		return 0, signed(catBase[tok-Cat3]+extra&(1<<n-1), extra>>n == 1)
	case tok >= Run1One && tok < Run6One:
		return tok - Run1One + 1, signed(1, extra == 1)
	case tok == Run6One:
		return 6 + int(extra&3), signed(1, extra>>2 == 1)
	case tok == Run10One:
		return 10 + int(extra&7), signed(1, extra>>3 == 1)
	case tok == Run1Two:
		return 1, signed(2+extra&1, extra>>1 == 1)
	case tok == Run2Two:
		return 2 + int(extra>>1&1), signed(2+extra&1, extra>>2 == 1)
	}
	return 0, 0
}
