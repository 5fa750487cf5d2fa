// Package geom computes frame geometry for the block coder: per-plane block
// and superblock counts, the hierarchical superblock -> macroblock -> block
// map, macroblock membership, and the pixel offset of every block in the
// source and bordered reconstruction buffers.
//
// Blocks are numbered contiguously: all Y blocks in raster order, then all U
// blocks, then all V blocks. Superblocks follow the same plane order.
package geom

import (
	"errors"
	"fmt"
)

const (
	// BlockSize is the width and height of a coding block.
	BlockSize = 8
	// MBSize is the luma size of a macroblock.
	MBSize = 16
	// LumaBorder is the reconstruction border of the Y plane, in pixels.
	LumaBorder = 32
	// ChromaBorder is the reconstruction border of the U and V planes.
	ChromaBorder = 16
	// Sentinel marks BlockMap slots that fall outside the frame.
	Sentinel = -1
	// MaxDimension bounds width and height.
	MaxDimension = 16384
)

// Plane indices.
const (
	PlaneY = iota
	PlaneU
	PlaneV
	NumPlanes
)

// ErrInvalidDimensions is returned for sizes that are zero, too large or
// not multiples of the macroblock size.
var ErrInvalidDimensions = errors.New("geom: invalid frame dimensions")

// PlaneInfo describes one plane of the frame.
type PlaneInfo struct {
	Width, Height    int // pixels
	BlocksW, BlocksH int // 8x8 blocks
	SBCols, SBRows   int // superblocks (ceil(blocks/4))
	FirstBlock       int // linear index of the plane's first block
	NumBlocks        int
	FirstSB          int // index of the plane's first superblock
	NumSB            int
	Border           int // reconstruction border
	Stride           int // reconstruction row stride
}

// Geometry holds every per-resolution index table. It is built once per
// frame size and shared read-only by all components.
type Geometry struct {
	Width, Height int

	Planes [NumPlanes]PlaneInfo

	NumBlocks      int
	NumSuperBlocks int

	MBCols, MBRows int
	NumMacroBlocks int

	// BlockMap maps (superblock, macroblock slot, block slot) to a block.
	BlockMap BlockMap

	// MBBlocks lists, per macroblock in raster order, its four luma blocks
	// (slot order) followed by the U and V blocks.
	MBBlocks [][6]int

	// BlockSB is the superblock containing each block.
	BlockSB []int
	// BlockMB is the macroblock owning each block.
	BlockMB []int

	// SrcOffsets holds the top-left sample offset of each block inside its
	// borderless source plane; ReconOffsets inside the bordered plane.
	SrcOffsets   []int
	ReconOffsets []int
}

// New builds the geometry for a width x height frame. Both dimensions must
// be positive multiples of 16 so that every macroblock owns exactly one U
// and one V block.
func New(width, height int) (*Geometry, error) {
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if width%MBSize != 0 || height%MBSize != 0 {
		return nil, fmt.Errorf("%w: %dx%d is not a multiple of %d", ErrInvalidDimensions, width, height, MBSize)
	}

	g := &Geometry{Width: width, Height: height}

	firstBlock, firstSB := 0, 0
	for p := 0; p < NumPlanes; p++ {
		w, h, border := width, height, LumaBorder
		if p != PlaneY {
			w, h, border = width>>1, height>>1, ChromaBorder
		}
		pi := PlaneInfo{
			Width:      w,
			Height:     h,
			BlocksW:    w / BlockSize,
			BlocksH:    h / BlockSize,
			FirstBlock: firstBlock,
			FirstSB:    firstSB,
			Border:     border,
			Stride:     w + 2*border,
		}
		pi.NumBlocks = pi.BlocksW * pi.BlocksH
		pi.SBCols = (pi.BlocksW + 3) >> 2
		pi.SBRows = (pi.BlocksH + 3) >> 2
		pi.NumSB = pi.SBCols * pi.SBRows
		g.Planes[p] = pi
		firstBlock += pi.NumBlocks
		firstSB += pi.NumSB
	}
	g.NumBlocks = firstBlock
	g.NumSuperBlocks = firstSB
	g.MBCols = width / MBSize
	g.MBRows = height / MBSize
	g.NumMacroBlocks = g.MBCols * g.MBRows

	g.buildBlockMap()
	g.buildMacroBlocks()
	g.buildPixelIndex()
	return g, nil
}

// PlaneOf returns the plane index of block b.
func (g *Geometry) PlaneOf(b int) int {
	switch {
	case b < g.Planes[PlaneU].FirstBlock:
		return PlaneY
	case b < g.Planes[PlaneV].FirstBlock:
		return PlaneU
	default:
		return PlaneV
	}
}

// BlockPos returns the block row and column of b inside its plane.
func (g *Geometry) BlockPos(b int) (row, col int) {
	pi := &g.Planes[g.PlaneOf(b)]
	local := b - pi.FirstBlock
	return local / pi.BlocksW, local % pi.BlocksW
}

func (g *Geometry) buildMacroBlocks() {
	g.MBBlocks = make([][6]int, g.NumMacroBlocks)
	g.BlockMB = make([]int, g.NumBlocks)
	y := &g.Planes[PlaneY]
	u := &g.Planes[PlaneU]
	v := &g.Planes[PlaneV]
	for mbRow := 0; mbRow < g.MBRows; mbRow++ {
		for mbCol := 0; mbCol < g.MBCols; mbCol++ {
			mb := mbRow*g.MBCols + mbCol
			var blocks [6]int
			for r := 0; r < 2; r++ {
				for c := 0; c < 2; c++ {
					blocks[r*2+c] = y.FirstBlock + (mbRow*2+r)*y.BlocksW + mbCol*2 + c
				}
			}
			blocks[4] = u.FirstBlock + mbRow*u.BlocksW + mbCol
			blocks[5] = v.FirstBlock + mbRow*v.BlocksW + mbCol
			g.MBBlocks[mb] = blocks
			for _, b := range blocks {
				g.BlockMB[b] = mb
			}
		}
	}
}

func (g *Geometry) buildPixelIndex() {
	g.SrcOffsets = make([]int, g.NumBlocks)
	g.ReconOffsets = make([]int, g.NumBlocks)
	for p := range g.Planes {
		pi := &g.Planes[p]
		for row := 0; row < pi.BlocksH; row++ {
			for col := 0; col < pi.BlocksW; col++ {
				b := pi.FirstBlock + row*pi.BlocksW + col
				x, y := col*BlockSize, row*BlockSize
				g.SrcOffsets[b] = y*pi.Width + x
				g.ReconOffsets[b] = (y+pi.Border)*pi.Stride + x + pi.Border
			}
		}
	}
}
