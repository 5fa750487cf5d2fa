package codec

import (
	"fmt"

	"github.com/deepteams/framecoder/internal/bitio"
	"github.com/deepteams/framecoder/internal/geom"
	"github.com/deepteams/framecoder/internal/motion"
	"github.com/deepteams/framecoder/internal/pool"
)

// Per-superblock scratch for the coded-flag passes.
var (
	stateScratch   pool.Slice[uint8]
	partialScratch pool.Slice[bool]
)

// Superblock coding states.
const (
	sbNone = iota
	sbPartial
	sbFull
)

func sbStates(g *geom.Geometry, coded []bool, states []uint8) {
	for sb := range states {
		n, c := 0, 0
		g.BlockMap.Blocks(sb, func(b int) {
			n++
			if coded[b] {
				c++
			}
		})
		switch {
		case c == 0:
			states[sb] = sbNone
		case c == n:
			states[sb] = sbFull
		default:
			states[sb] = sbPartial
		}
	}
}

// writeCodedFlags writes one "partially coded" bit per superblock, then a
// "fully coded" bit for every superblock that is not partial, then one bit
// per block of the partial superblocks in block-map order.
func writeCodedFlags(bw *bitio.Writer, g *geom.Geometry, coded []bool) {
	states := stateScratch.Get(g.NumSuperBlocks)[:g.NumSuperBlocks]
	defer stateScratch.Put(states)
	sbStates(g, coded, states)
	for _, s := range states {
		bw.WriteBit(s == sbPartial)
	}
	for _, s := range states {
		if s != sbPartial {
			bw.WriteBit(s == sbFull)
		}
	}
	for sb, s := range states {
		if s == sbPartial {
			g.BlockMap.Blocks(sb, func(b int) { bw.WriteBit(coded[b]) })
		}
	}
}

func readCodedFlags(br *bitio.Reader, g *geom.Geometry, coded []bool) error {
	partial := partialScratch.Get(g.NumSuperBlocks)[:g.NumSuperBlocks]
	defer partialScratch.Put(partial)
	for sb := range partial {
		partial[sb] = br.ReadBit() == 1
	}
	for sb := range partial {
		if partial[sb] {
			continue
		}
		full := br.ReadBit() == 1
		g.BlockMap.Blocks(sb, func(b int) { coded[b] = full })
	}
	for sb := range partial {
		if partial[sb] {
			g.BlockMap.Blocks(sb, func(b int) { coded[b] = br.ReadBit() == 1 })
		}
	}
	if br.IsEndOfStream() {
		return fmt.Errorf("%w: truncated coded flags", ErrCorrupt)
	}
	return nil
}

func writeModes(bw *bitio.Writer, g *geom.Geometry, fi *frameInfo) {
	for mb, m := range fi.modes {
		if fi.codedLuma(g, mb) {
			bw.WriteBits(uint32(m), modeBits)
		}
	}
}

func readModes(br *bitio.Reader, g *geom.Geometry, fi *frameInfo) error {
	for mb := range fi.modes {
		fi.modes[mb] = ModeInterNoMV
		if !fi.codedLuma(g, mb) {
			continue
		}
		v := br.ReadBits(modeBits)
		if v < 0 {
			return fmt.Errorf("%w: truncated modes", ErrCorrupt)
		}
		fi.modes[mb] = Mode(v)
	}
	return nil
}

func writeComponent(bw *bitio.Writer, v int) {
	bw.WriteBit(v < 0)
	if v < 0 {
		v = -v
	}
	bw.WriteBits(uint32(v), mvMagBits)
}

func writeVector(bw *bitio.Writer, v motion.Vector) {
	writeComponent(bw, v.X)
	writeComponent(bw, v.Y)
}

func readComponent(br *bitio.Reader) int {
	s := br.ReadBit()
	m := int(br.ReadBits(mvMagBits))
	if s == 1 {
		return -m
	}
	return m
}

func readVector(br *bitio.Reader) motion.Vector {
	x := readComponent(br)
	y := readComponent(br)
	return motion.Vector{X: x, Y: y}
}

// writeVectors writes the explicit vectors of every macroblock that carries
// a mode, in raster order: one for ModeInterMV and ModeGoldenMV, four for
// ModeInterFourMV.
func writeVectors(bw *bitio.Writer, g *geom.Geometry, fi *frameInfo) {
	for mb, m := range fi.modes {
		if !fi.codedLuma(g, mb) {
			continue
		}
		switch m {
		case ModeInterMV, ModeGoldenMV:
			writeVector(bw, fi.mvs[mb][0])
		case ModeInterFourMV:
			for _, v := range fi.mvs[mb] {
				writeVector(bw, v)
			}
		}
	}
}

// readVectors is the inverse of writeVectors. It also resolves the implicit
// vectors of ModeInterLastMV and ModeInterPriorLast.
func readVectors(br *bitio.Reader, g *geom.Geometry, fi *frameInfo) error {
	var st mvState
	for mb, m := range fi.modes {
		mvs := &fi.mvs[mb]
		*mvs = [4]motion.Vector{}
		if !fi.codedLuma(g, mb) {
			continue
		}
		switch m {
		case ModeInterMV, ModeGoldenMV:
			v := readVector(br)
			*mvs = [4]motion.Vector{v, v, v, v}
		case ModeInterFourMV:
			for i := range mvs {
				mvs[i] = readVector(br)
			}
		}
		st.apply(m, mvs)
	}
	if br.IsEndOfStream() {
		return fmt.Errorf("%w: truncated motion vectors", ErrCorrupt)
	}
	return nil
}

// mvState tracks the last and prior-last vectors of the frame in
// macroblock raster order.
type mvState struct {
	last, prior motion.Vector
}

// apply fills the implicit vectors of mode m and advances the state.
func (s *mvState) apply(m Mode, mvs *[4]motion.Vector) {
	switch m {
	case ModeInterMV:
		s.prior, s.last = s.last, mvs[0]
	case ModeInterFourMV:
		s.prior, s.last = s.last, mvs[3]
	case ModeInterLastMV:
		*mvs = [4]motion.Vector{s.last, s.last, s.last, s.last}
	case ModeInterPriorLast:
		v := s.prior
		*mvs = [4]motion.Vector{v, v, v, v}
		s.prior, s.last = s.last, v
	}
}
