// Package quant builds per-quality quantizer tables for the six coding
// contexts (intra/inter x Y/U/V) and performs forward quantization and
// dequantization of 8x8 coefficient blocks.
//
// Levels are kept in zigzag scan order; coefficients in raster order.
package quant

import (
	"errors"
	"fmt"

	"github.com/deepteams/framecoder/internal/dsp"
)

const (
	// QFix is the fixed-point precision of the reciprocal quantizers.
	QFix = 17
	// NumQualities is the number of quality indices.
	NumQualities = 64
	// MaxLevel bounds the magnitude of a quantized level (and of a DC
	// prediction difference).
	MaxLevel = 580
	// MaxQuant bounds a quantizer value.
	MaxQuant = 4096
	// MaxCoeff bounds a dequantized coefficient.
	MaxCoeff = 32767
)

// ErrInvalidQuality is returned for quality indices outside [0, 63].
var ErrInvalidQuality = errors.New("quant: quality index out of range")

// Context selects one of the six quantizer sets.
type Context int

const (
	IntraY Context = iota
	IntraU
	IntraV
	InterY
	InterU
	InterV
	NumContexts
)

// ContextFor returns the context of a block in plane p.
func ContextFor(intra bool, p int) Context {
	if intra {
		return IntraY + Context(p)
	}
	return InterY + Context(p)
}

// Intra reports whether c is one of the intra contexts.
func (c Context) Intra() bool { return c < InterY }

func (c Context) String() string {
	names := [...]string{"intra-Y", "intra-U", "intra-V", "inter-Y", "inter-U", "inter-V"}
	if c < 0 || c >= NumContexts {
		return fmt.Sprintf("Context(%d)", int(c))
	}
	return names[c]
}

// Matrix holds the quantizer of one context, indexed by zigzag position.
type Matrix struct {
	Q    [64]int32 // dequantization factor
	IQ   [64]int32 // (1 << QFix) / Q
	Bias [64]int32 // rounding bias, QFix fixed point
	ZBin [64]int32 // |coeff| <= ZBin quantizes to zero
}

// Table holds the quantizers of every context for one quality index.
type Table struct {
	QI  int
	Ctx [NumContexts]Matrix
}

// New builds the table for quality index qi.
func New(qi int) (*Table, error) {
	if qi < 0 || qi >= NumQualities {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuality, qi)
	}
	t := &Table{QI: qi}
	for c := IntraY; c < NumContexts; c++ {
		base := &interBase
		switch c {
		case IntraY:
			base = &intraYBase
		case IntraU, IntraV:
			base = &intraUVBase
		}
		t.Ctx[c].init(base, qi, c.Intra())
	}
	return t, nil
}

// MustNew is New for qualities known to be valid.
func MustNew(qi int) *Table {
	t, err := New(qi)
	if err != nil {
		panic(err)
	}
	return t
}

func (m *Matrix) init(base *[64]int32, qi int, intra bool) {
	mode := 1
	if intra {
		mode = 0
	}
	for pos := 0; pos < 64; pos++ {
		kind, scale := 1, acScale[qi]
		if pos == 0 {
			kind, scale = 0, dcScale[qi]
		}
		q := scale * base[dsp.Zigzag[pos]] / 100 * 4
		q = clamp(q, minQuant[mode][kind], MaxQuant)

		m.Q[pos] = q
		m.IQ[pos] = (1 << QFix) / q
		m.Bias[pos] = biasMatrices[mode][kind] << (QFix - 8)
		zthresh := ((1 << QFix) - 1 - m.Bias[pos]) / m.IQ[pos]
		if pos > 0 {
			if dz := q * (zeroBinBase[mode] + int32(pos)) >> 8; dz > zthresh {
				zthresh = dz
			}
		}
		m.ZBin[pos] = zthresh
	}
}

func clamp(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Quantize converts raster-order coefficients into zigzag-order levels and
// returns the number of scan positions up to and including the last
// non-zero level (0 for an all-zero block).
func (m *Matrix) Quantize(coeffs *[64]int32, levels *[64]int32) int {
	last := 0
	for pos := 0; pos < 64; pos++ {
		v := coeffs[dsp.Zigzag[pos]]
		sign := int32(1)
		if v < 0 {
			sign, v = -1, -v
		}
		if v <= m.ZBin[pos] {
			levels[pos] = 0
			continue
		}
		l := int32((int64(v)*int64(m.IQ[pos]) + int64(m.Bias[pos])) >> QFix)
		if l > MaxLevel {
			l = MaxLevel
		}
		levels[pos] = sign * l
		if l != 0 {
			last = pos + 1
		}
	}
	return last
}

// Dequantize converts zigzag-order levels into raster-order coefficients.
func (m *Matrix) Dequantize(levels *[64]int32, coeffs *[64]int32) {
	for pos := 0; pos < 64; pos++ {
		coeffs[dsp.Zigzag[pos]] = clamp(levels[pos]*m.Q[pos], -MaxCoeff, MaxCoeff)
	}
}

// Lambda returns the mode-decision weight of one side-information bit for
// this table, derived from the average luma quantizer.
func (t *Table) Lambda() int {
	m := &t.Ctx[InterY]
	q := (int(m.Q[0]) + 15*int(m.Q[1]) + 8) >> 4
	if l := (q * q) >> 7; l > 1 {
		return l
	}
	return 1
}
