package geom

// Slot locates a block inside a superblock: the macroblock quadrant (0..3)
// and the block position inside that quadrant (0..3).
type Slot struct {
	MB    uint8
	Block uint8
}

// Quadrant numbering inside a superblock, left to right, top to bottom.
const (
	TopLeft uint8 = iota
	TopRight
	BottomLeft
	BottomRight
)

// quadrants maps a (row, col) position inside a 4x4 superblock to its slot.
// The macroblock quadrant comes from (row<2, col<2) and the in-quadrant slot
// from (row mod 2, col mod 2), both numbered TopLeft..BottomRight.
var quadrants = buildQuadrants()

func buildQuadrants() [4][4]Slot {
	var q [4][4]Slot
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			q[r][c] = Slot{
				MB:    cornerOf(r >= 2, c >= 2),
				Block: cornerOf(r&1 == 1, c&1 == 1),
			}
		}
	}
	return q
}

func cornerOf(bottom, right bool) uint8 {
	switch {
	case !bottom && !right:
		return TopLeft
	case !bottom:
		return TopRight
	case !right:
		return BottomLeft
	default:
		return BottomRight
	}
}

// Quadrant returns the slot of the block at (row, col) within a superblock,
// with 0 <= row, col < 4.
func Quadrant(row, col int) Slot {
	return quadrants[row&3][col&3]
}

// BlockMap is the superblock -> macroblock slot -> block slot -> block
// index table. Slots outside the frame hold Sentinel.
type BlockMap [][4][4]int

// At returns the block index stored for the given slot, or Sentinel.
func (m BlockMap) At(sb, mbSlot, blockSlot int) int {
	return m[sb][mbSlot][blockSlot]
}

// Blocks calls fn for every in-frame block of superblock sb, in macroblock
// slot then block slot order.
func (m BlockMap) Blocks(sb int, fn func(b int)) {
	for mb := 0; mb < 4; mb++ {
		for s := 0; s < 4; s++ {
			if b := m[sb][mb][s]; b != Sentinel {
				fn(b)
			}
		}
	}
}

// buildBlockMap fills the BlockMap plane by plane. Edge superblocks stop
// early at the plane's block extent, leaving their unused slots at Sentinel.
func (g *Geometry) buildBlockMap() {
	bm := make(BlockMap, g.NumSuperBlocks)
	for sb := range bm {
		for mb := 0; mb < 4; mb++ {
			for s := 0; s < 4; s++ {
				bm[sb][mb][s] = Sentinel
			}
		}
	}
	g.BlockSB = make([]int, g.NumBlocks)

	for p := range g.Planes {
		pi := &g.Planes[p]
		sb := pi.FirstSB
		for sbRow := 0; sbRow < pi.SBRows; sbRow++ {
			for sbCol := 0; sbCol < pi.SBCols; sbCol++ {
				for r := 0; r < 4; r++ {
					row := sbRow*4 + r
					if row >= pi.BlocksH {
						break
					}
					for c := 0; c < 4; c++ {
						col := sbCol*4 + c
						if col >= pi.BlocksW {
							break
						}
						b := pi.FirstBlock + row*pi.BlocksW + col
						slot := Quadrant(r, c)
						bm[sb][slot.MB][slot.Block] = b
						g.BlockSB[b] = sb
					}
				}
				sb++
			}
		}
	}
	g.BlockMap = bm
}
