// Package codec implements the per-frame encoder and decoder of the block
// coder. A frame is coded as
//
//	header     1 bit frame type (0 key, 1 inter), 6 bits quality index,
//	           1 bit golden refresh
//	tables     1 bit "tables follow", then the serialized Huffman trees
//	side info  inter frames only: superblock coded flags, block coded
//	           flags, macroblock modes and motion vectors
//	tokens     coefficient tokens of every coded block in block order
//
// All fields are written most-significant bit first.
package codec

import (
	"errors"
	"fmt"

	"github.com/deepteams/framecoder/internal/bitio"
	"github.com/deepteams/framecoder/internal/geom"
	"github.com/deepteams/framecoder/internal/motion"
	"github.com/deepteams/framecoder/internal/quant"
)

const (
	qiBits     = 6
	modeBits   = 3
	mvMagBits  = 5
	mvCompBits = 1 + mvMagBits
	vectorBits = 2 * mvCompBits

	// dcLimit bounds absolute DC levels so that prediction differences
	// stay codable.
	dcLimit = quant.MaxLevel / 2
)

var (
	// ErrBadHeader reports an unreadable frame header or table section.
	ErrBadHeader = errors.New("codec: bad frame header")
	// ErrCorrupt reports malformed side information or coefficient data.
	ErrCorrupt = errors.New("codec: corrupt frame data")
	// ErrNoReference is returned for an inter frame without a previous
	// reconstructed frame.
	ErrNoReference = errors.New("codec: inter frame without reference")
	// ErrBadUpdateMask is returned when an update mask does not cover every
	// block of the frame.
	ErrBadUpdateMask = errors.New("codec: update mask size mismatch")
	// ErrClosed is returned by a closed encoder or decoder.
	ErrClosed = errors.New("codec: closed")
)

// Mode is the coding mode of a macroblock.
type Mode uint8

const (
	ModeInterNoMV      Mode = iota // last frame, null vector
	ModeIntra                      // constant prediction
	ModeInterMV                    // last frame, searched vector
	ModeInterLastMV                // last frame, previous macroblock's vector
	ModeInterPriorLast             // last frame, the vector before that
	ModeUsingGolden                // golden frame, null vector
	ModeGoldenMV                   // golden frame, searched vector
	ModeInterFourMV                // last frame, one vector per luma block
	NumModes
)

var modeNames = [NumModes]string{
	"inter-nomv", "intra", "inter-mv", "inter-last", "inter-prior",
	"golden", "golden-mv", "inter-fourmv",
}

func (m Mode) String() string {
	if m < NumModes {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// Golden reports whether m predicts from the golden frame.
func (m Mode) Golden() bool { return m == ModeUsingGolden || m == ModeGoldenMV }

// Header is the fixed part of a coded frame.
type Header struct {
	Key           bool
	QI            int
	GoldenRefresh bool
}

func (h *Header) write(bw *bitio.Writer) {
	bw.WriteBit(!h.Key)
	bw.WriteBits(uint32(h.QI), qiBits)
	bw.WriteBit(h.GoldenRefresh)
}

func readHeader(br *bitio.Reader) (Header, error) {
	typ := br.ReadBit()
	qi := br.ReadBits(qiBits)
	golden := br.ReadBit()
	if typ < 0 || qi < 0 || golden < 0 {
		return Header{}, fmt.Errorf("%w: truncated", ErrBadHeader)
	}
	return Header{Key: typ == 0, QI: int(qi), GoldenRefresh: golden == 1}, nil
}

// ParseHeader reads the header of a coded frame without decoding it.
func ParseHeader(data []byte) (Header, error) {
	return readHeader(bitio.NewReader(data))
}

// frameInfo holds the per-frame decisions shared by encoder and decoder.
type frameInfo struct {
	coded  []bool             // per block
	modes  []Mode             // per macroblock
	mvs    [][4]motion.Vector // per macroblock, luma slot order
	levels [][64]int32        // per block, zigzag order, absolute DC
}

func newFrameInfo(g *geom.Geometry) *frameInfo {
	return &frameInfo{
		coded:  make([]bool, g.NumBlocks),
		modes:  make([]Mode, g.NumMacroBlocks),
		mvs:    make([][4]motion.Vector, g.NumMacroBlocks),
		levels: make([][64]int32, g.NumBlocks),
	}
}

// reset prepares the info for a new frame. Key frames code every block
// intra; inter frames start with every block coded with ModeInterNoMV.
func (fi *frameInfo) reset(key bool) {
	mode := ModeInterNoMV
	if key {
		mode = ModeIntra
	}
	for i := range fi.coded {
		fi.coded[i] = true
	}
	for i := range fi.modes {
		fi.modes[i] = mode
		fi.mvs[i] = [4]motion.Vector{}
	}
}

// codedLuma reports whether macroblock mb has at least one coded luma
// block; only such macroblocks carry a mode.
func (fi *frameInfo) codedLuma(g *geom.Geometry, mb int) bool {
	for _, b := range g.MBBlocks[mb][:4] {
		if fi.coded[b] {
			return true
		}
	}
	return false
}

// lumaSlot returns the position of luma block b inside its macroblock.
func lumaSlot(g *geom.Geometry, b int) int {
	row, col := g.BlockPos(b)
	return (row&1)*2 + col&1
}

// dcPredictor holds the running DC level per plane, separately for intra
// and inter blocks.
type dcPredictor [geom.NumPlanes][2]int32

func dcClass(m Mode) int {
	if m == ModeIntra {
		return 0
	}
	return 1
}
