package motion

import "github.com/deepteams/framecoder/internal/dsp"

// InterError returns the variance-style prediction error of the
// macroblock's coded luma blocks predicted with vector v.
func (s *Searcher) InterError(mb int, v Vector) int {
	e := 0
	for _, b := range s.lumaBlocks(mb) {
		if !s.update[b] {
			continue
		}
		r1, r2 := s.refBlocks(b, v)
		e += dsp.InterError8x8(s.srcBlock(b), s.src.Stride, r1, r2, s.ref.Stride)
	}
	return e
}

// FourError is InterError with one vector per luma block.
func (s *Searcher) FourError(mb int, mvs [4]Vector) int {
	e := 0
	for i, b := range s.lumaBlocks(mb) {
		if !s.update[b] {
			continue
		}
		r1, r2 := s.refBlocks(b, mvs[i])
		e += dsp.InterError8x8(s.srcBlock(b), s.src.Stride, r1, r2, s.ref.Stride)
	}
	return e
}

// IntraError returns the summed intra error of the macroblock's coded luma
// blocks.
func (s *Searcher) IntraError(mb int) int {
	e := 0
	for _, b := range s.lumaBlocks(mb) {
		if s.update[b] {
			e += dsp.IntraError8x8(s.srcBlock(b), s.src.Stride)
		}
	}
	return e
}
