package geom

import (
	"errors"
	"testing"
)

func TestNew_InvalidDimensions(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"zero", 0, 16},
		{"negative", 16, -16},
		{"not_multiple", 24, 16},
		{"odd_height", 16, 40},
		{"too_large", MaxDimension + 16, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.w, tt.h); !errors.Is(err, ErrInvalidDimensions) {
				t.Fatalf("New(%d, %d) err = %v, want ErrInvalidDimensions", tt.w, tt.h, err)
			}
		})
	}
}

func TestNew_Counts(t *testing.T) {
	g, err := New(48, 32)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	y, u, v := g.Planes[PlaneY], g.Planes[PlaneU], g.Planes[PlaneV]
	if y.BlocksW != 6 || y.BlocksH != 4 || y.SBCols != 2 || y.SBRows != 1 {
		t.Errorf("Y plane = %+v", y)
	}
	if u.BlocksW != 3 || u.BlocksH != 2 || u.SBCols != 1 || u.SBRows != 1 {
		t.Errorf("U plane = %+v", u)
	}
	if g.NumBlocks != 24+6+6 {
		t.Errorf("NumBlocks = %d, want 36", g.NumBlocks)
	}
	if g.NumSuperBlocks != y.NumSB+2*u.NumSB || g.NumSuperBlocks != 4 {
		t.Errorf("NumSuperBlocks = %d, want 4", g.NumSuperBlocks)
	}
	if u.FirstBlock != 24 || v.FirstBlock != 30 {
		t.Errorf("FirstBlock U=%d V=%d, want 24 and 30", u.FirstBlock, v.FirstBlock)
	}
	if g.MBCols != 3 || g.MBRows != 2 || g.NumMacroBlocks != 6 {
		t.Errorf("MB grid = %dx%d (%d)", g.MBCols, g.MBRows, g.NumMacroBlocks)
	}
	if y.Stride != 48+2*LumaBorder || u.Stride != 24+2*ChromaBorder {
		t.Errorf("strides Y=%d U=%d", y.Stride, u.Stride)
	}
}

func TestQuadrant(t *testing.T) {
	want := [4][4]Slot{
		{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
		{{0, 2}, {0, 3}, {1, 2}, {1, 3}},
		{{2, 0}, {2, 1}, {3, 0}, {3, 1}},
		{{2, 2}, {2, 3}, {3, 2}, {3, 3}},
	}
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			if got := Quadrant(r, c); got != want[r][c] {
				t.Errorf("Quadrant(%d, %d) = %+v, want %+v", r, c, got, want[r][c])
			}
		}
	}
}

func TestBlockMap_Bijection(t *testing.T) {
	sizes := [][2]int{{16, 16}, {48, 32}, {176, 144}, {80, 48}, {32, 96}}
	for _, sz := range sizes {
		g, err := New(sz[0], sz[1])
		if err != nil {
			t.Fatalf("New(%v): %v", sz, err)
		}
		seen := make([]int, g.NumBlocks)
		for sb := 0; sb < g.NumSuperBlocks; sb++ {
			for mb := 0; mb < 4; mb++ {
				for s := 0; s < 4; s++ {
					b := g.BlockMap.At(sb, mb, s)
					if b == Sentinel {
						continue
					}
					if b < 0 || b >= g.NumBlocks {
						t.Fatalf("%v: map[%d][%d][%d] = %d out of range", sz, sb, mb, s, b)
					}
					seen[b]++
					if g.BlockSB[b] != sb {
						t.Errorf("%v: BlockSB[%d] = %d, want %d", sz, b, g.BlockSB[b], sb)
					}
				}
			}
		}
		for b, n := range seen {
			if n != 1 {
				t.Errorf("%v: block %d mapped %d times", sz, b, n)
			}
		}
	}
}

func TestBlockMap_SentinelOutsideFrame(t *testing.T) {
	// Luma is 6x4 blocks: the second superblock only has columns 4 and 5,
	// which land in the left macroblock quadrants.
	g, err := New(48, 32)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, mb := range []int{1, 3} {
		for s := 0; s < 4; s++ {
			if b := g.BlockMap.At(1, mb, s); b != Sentinel {
				t.Errorf("map[1][%d][%d] = %d, want Sentinel", mb, s, b)
			}
		}
	}
	// Block at luma row 0, col 4 is superblock 1, quadrant 0, slot 0.
	if b := g.BlockMap.At(1, 0, 0); b != 4 {
		t.Errorf("map[1][0][0] = %d, want 4", b)
	}
	// Chroma U is 3x2 blocks: rows 2 and 3 and column 3 are outside.
	uSB := g.Planes[PlaneU].FirstSB
	if b := g.BlockMap.At(uSB, 1, 1); b != Sentinel {
		t.Errorf("U map[1][1] = %d, want Sentinel (col 3)", b)
	}
	if b := g.BlockMap.At(uSB, 1, 0); b != 24+2 {
		t.Errorf("U map[1][0] = %d, want 26", b)
	}
	count := 0
	g.BlockMap.Blocks(uSB, func(int) { count++ })
	if count != 6 {
		t.Errorf("U superblock holds %d blocks, want 6", count)
	}
}

func TestMacroBlocks(t *testing.T) {
	g, err := New(32, 32)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// MB 3 is bottom-right: luma rows 2-3, cols 2-3 of a 4-wide plane.
	want := [6]int{10, 11, 14, 15, 16 + 3, 20 + 3}
	if got := g.MBBlocks[3]; got != want {
		t.Fatalf("MBBlocks[3] = %v, want %v", got, want)
	}
	for i, b := range want {
		if g.BlockMB[b] != 3 {
			t.Errorf("BlockMB[%d] (slot %d) = %d, want 3", b, i, g.BlockMB[b])
		}
	}
}

func TestPixelIndex(t *testing.T) {
	g, err := New(32, 16)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Luma block 5 is row 1, col 1.
	if got := g.SrcOffsets[5]; got != 8*32+8 {
		t.Errorf("SrcOffsets[5] = %d, want %d", got, 8*32+8)
	}
	y := g.Planes[PlaneY]
	if got, want := g.ReconOffsets[5], (8+LumaBorder)*y.Stride+8+LumaBorder; got != want {
		t.Errorf("ReconOffsets[5] = %d, want %d", got, want)
	}
	// First U block sits at the U plane origin.
	u := g.Planes[PlaneU]
	if got := g.SrcOffsets[u.FirstBlock]; got != 0 {
		t.Errorf("SrcOffsets[U0] = %d, want 0", got)
	}
	if got, want := g.ReconOffsets[u.FirstBlock+1], ChromaBorder*u.Stride+8+ChromaBorder; got != want {
		t.Errorf("ReconOffsets[U1] = %d, want %d", got, want)
	}
	if row, col := g.BlockPos(u.FirstBlock + 1); row != 0 || col != 1 {
		t.Errorf("BlockPos(U1) = %d,%d", row, col)
	}
	if p := g.PlaneOf(g.NumBlocks - 1); p != PlaneV {
		t.Errorf("PlaneOf(last) = %d, want V", p)
	}
}

func TestPlane_ExtendBorders(t *testing.T) {
	p := NewPlane(16, 8, 4)
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			p.Set(x, y, byte(y*16+x))
		}
	}
	p.ExtendBorders()

	tests := []struct {
		x, y int
		want byte
	}{
		{-4, 0, 0},
		{-1, 3, 3 * 16},
		{19, 2, 2*16 + 15},
		{5, -4, 5},
		{-4, -4, 0},
		{19, 11, 7*16 + 15},
		{7, 10, 7*16 + 7},
	}
	for _, tt := range tests {
		if got := p.At(tt.x, tt.y); got != tt.want {
			t.Errorf("At(%d, %d) = %d, want %d", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestPlane_CopyFromIncludesBorders(t *testing.T) {
	src := NewPlane(16, 8, 4)
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			src.Set(x, y, byte(y*16+x+1))
		}
	}
	src.ExtendBorders()
	dst := NewPlane(16, 8, 4)
	dst.CopyFrom(src)
	for _, pt := range [][2]int{{0, 0}, {15, 7}, {-4, -4}, {19, 11}, {7, 10}} {
		if got, want := dst.At(pt[0], pt[1]), src.At(pt[0], pt[1]); got != want {
			t.Errorf("At(%d, %d) = %d, want %d", pt[0], pt[1], got, want)
		}
	}
}

func TestFrameAlloc(t *testing.T) {
	g, err := New(16, 16)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	calls := 0
	f := g.NewReconFrame(func(n int) []byte {
		calls++
		return make([]byte, n+100)
	})
	if calls != 3 {
		t.Fatalf("alloc called %d times, want 3", calls)
	}
	if len(f[PlaneY].Pix) != PlaneSize(16, 16, LumaBorder) {
		t.Errorf("Y len = %d", len(f[PlaneY].Pix))
	}
	src := g.NewSourceFrame()
	if src[PlaneU].Stride != 8 || src[PlaneU].Border != 0 {
		t.Errorf("source U plane = %+v", src[PlaneU])
	}
}
