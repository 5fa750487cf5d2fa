// Package motion implements the macroblock motion estimator: zero-vector
// baseline, logarithmic step search, exhaustive search, half-pel refinement
// and the four-vector variant, plus the prediction error measures used by
// mode decision.
//
// Costs only include luma blocks flagged for update; a macroblock with no
// such block costs zero for every vector.
package motion

import (
	"github.com/deepteams/framecoder/internal/dsp"
	"github.com/deepteams/framecoder/internal/geom"
)

const (
	// MaxExtent bounds each vector component, in half-pel units.
	MaxExtent = 31
	// SearchRange bounds the integer search, in whole pixels.
	SearchRange = 15
	// VeryLarge is the cost of an unavailable candidate.
	VeryLarge = 1 << 30
)

// Method selects the integer search.
type Method int

const (
	// StepSearch is the logarithmic 8-neighbor step search.
	StepSearch Method = iota
	// Exhaustive scans every position of the search window.
	Exhaustive
)

func (m Method) String() string {
	switch m {
	case StepSearch:
		return "step"
	case Exhaustive:
		return "exhaustive"
	}
	return "unknown"
}

// Result is a searched vector and its SAD cost.
type Result struct {
	MV   Vector
	Cost int
}

// ring lists the 8 compass neighbors, top row first.
var ring = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// Searcher is the per-frame motion search context for the luma plane.
type Searcher struct {
	g      *geom.Geometry
	src    *geom.Plane
	ref    *geom.Plane
	update []bool
}

// NewSearcher returns a searcher for frames of geometry g.
func NewSearcher(g *geom.Geometry) *Searcher {
	return &Searcher{g: g}
}

// Reset points the searcher at a luma source plane, a bordered luma
// reference plane and the frame's per-block update flags.
func (s *Searcher) Reset(src, ref *geom.Plane, update []bool) {
	s.src, s.ref, s.update = src, ref, update
}

func (s *Searcher) srcBlock(b int) []byte {
	return s.src.Pix[s.g.SrcOffsets[b]:]
}

// refBlocks returns the prediction pointers of block b displaced by the
// half-pel vector v. The second is nil for full-pel vectors.
func (s *Searcher) refBlocks(b int, v Vector) ([]byte, []byte) {
	p1, p2 := Offsets(s.g.ReconOffsets[b], s.ref.Stride, v)
	if p1 == p2 {
		return s.ref.Pix[p1:], nil
	}
	return s.ref.Pix[p1:], s.ref.Pix[p2:]
}

func (s *Searcher) lumaBlocks(mb int) []int {
	return s.g.MBBlocks[mb][:4]
}

// blockSAD is the SAD of block b at integer displacement (dx, dy).
func (s *Searcher) blockSAD(b, dx, dy int) int {
	off := s.g.ReconOffsets[b] + dy*s.ref.Stride + dx
	return dsp.SAD8x8(s.srcBlock(b), s.src.Stride, s.ref.Pix[off:], s.ref.Stride)
}

// blockHalfSAD is the SAD of block b at half-pel vector v.
func (s *Searcher) blockHalfSAD(b int, v Vector) int {
	r1, r2 := s.refBlocks(b, v)
	if r2 == nil {
		return dsp.SAD8x8(s.srcBlock(b), s.src.Stride, r1, s.ref.Stride)
	}
	return dsp.SAD8x8Half(s.srcBlock(b), s.src.Stride, r1, r2, s.ref.Stride)
}

// mbCost is the SAD of the macroblock's coded luma blocks at integer
// displacement (dx, dy). After the first block the remaining blocks bail
// out once the total exceeds limit; the result is then only known to be
// greater than limit.
func (s *Searcher) mbCost(mb, dx, dy, limit int) int {
	cost := 0
	first := true
	for _, b := range s.lumaBlocks(mb) {
		if !s.update[b] {
			continue
		}
		if first {
			cost = s.blockSAD(b, dx, dy)
			first = false
			continue
		}
		off := s.g.ReconOffsets[b] + dy*s.ref.Stride + dx
		cost += dsp.SAD8x8Thres(s.srcBlock(b), s.src.Stride, s.ref.Pix[off:], s.ref.Stride, limit-cost)
		if cost > limit {
			break
		}
	}
	return cost
}

// ZeroCost returns the cost of the null vector.
func (s *Searcher) ZeroCost(mb int) int {
	return s.mbCost(mb, 0, 0, VeryLarge)
}

// Step runs the logarithmic step search and returns the best integer
// vector, in half-pel units, with its cost. The result never costs more
// than the null vector.
func (s *Searcher) Step(mb int) Result {
	best := s.ZeroCost(mb)
	if best == 0 {
		return Result{}
	}
	bx, by := 0, 0
	for step := 8; step > 0; step >>= 1 {
		move := -1
		for i, d := range ring {
			cx, cy := bx+d[0]*step, by+d[1]*step
			if cx < -SearchRange || cx > SearchRange || cy < -SearchRange || cy > SearchRange {
				continue
			}
			if c := s.mbCost(mb, cx, cy, best); c < best {
				best, move = c, i
			}
		}
		if move >= 0 {
			bx += ring[move][0] * step
			by += ring[move][1] * step
		}
	}
	return Result{MV: Vector{2 * bx, 2 * by}, Cost: best}
}

// Exhaustive scans every integer position within SearchRange of the null
// vector. Ties keep the vector found first, the null vector winning all.
func (s *Searcher) Exhaustive(mb int) Result {
	best := s.ZeroCost(mb)
	if best == 0 {
		return Result{}
	}
	bx, by := 0, 0
	for y := -SearchRange; y <= SearchRange; y++ {
		for x := -SearchRange; x <= SearchRange; x++ {
			c := 0
			for _, b := range s.lumaBlocks(mb) {
				if s.update[b] {
					c += s.blockSAD(b, x, y)
				}
			}
			if c < best {
				best, bx, by = c, x, y
			}
		}
	}
	return Result{MV: Vector{2 * bx, 2 * by}, Cost: best}
}

// HalfPel refines an integer result over its 8 half-pel neighbors. The
// returned cost never exceeds r.Cost.
func (s *Searcher) HalfPel(mb int, r Result) Result {
	best := r
	for _, d := range ring {
		v := Vector{r.MV.X + d[0], r.MV.Y + d[1]}
		if !v.Valid() {
			continue
		}
		c := 0
		for _, b := range s.lumaBlocks(mb) {
			if s.update[b] {
				c += s.blockHalfSAD(b, v)
			}
			if c >= best.Cost {
				break
			}
		}
		if c < best.Cost {
			best = Result{MV: v, Cost: c}
		}
	}
	return best
}

// Search runs the selected integer search followed by half-pel refinement.
// A macroblock that already matches exactly at the null vector is returned
// without searching.
func (s *Searcher) Search(mb int, m Method) Result {
	var r Result
	if m == Exhaustive {
		r = s.Exhaustive(mb)
	} else {
		r = s.Step(mb)
	}
	if r.Cost == 0 {
		return r
	}
	return s.HalfPel(mb, r)
}

// blockSearch is the exhaustive search plus half-pel refinement of a single
// block.
func (s *Searcher) blockSearch(b int) Result {
	best := s.blockSAD(b, 0, 0)
	if best == 0 {
		return Result{}
	}
	bx, by := 0, 0
	for y := -SearchRange; y <= SearchRange; y++ {
		for x := -SearchRange; x <= SearchRange; x++ {
			if c := s.blockSAD(b, x, y); c < best {
				best, bx, by = c, x, y
			}
		}
	}
	r := Result{MV: Vector{2 * bx, 2 * by}, Cost: best}
	for _, d := range ring {
		v := Vector{r.MV.X + d[0], r.MV.Y + d[1]}
		if c := s.blockHalfSAD(b, v); c < r.Cost {
			r = Result{MV: v, Cost: c}
		}
	}
	return r
}

// FourMV searches each luma block of the macroblock independently and
// returns the four vectors with their summed cost. Unless all four luma
// blocks are flagged for update it returns VeryLarge.
func (s *Searcher) FourMV(mb int) ([4]Vector, int) {
	var mvs [4]Vector
	for _, b := range s.lumaBlocks(mb) {
		if !s.update[b] {
			return mvs, VeryLarge
		}
	}
	cost := 0
	for i, b := range s.lumaBlocks(mb) {
		r := s.blockSearch(b)
		mvs[i] = r.MV
		cost += r.Cost
	}
	return mvs, cost
}
