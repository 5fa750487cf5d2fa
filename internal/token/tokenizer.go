package token

import (
	"errors"
	"fmt"

	"github.com/deepteams/framecoder/internal/bitio"
)

// ErrCorrupt reports coefficient data that does not decode to a block.
var ErrCorrupt = errors.New("token: corrupt coefficient data")

// maxMagnitude caps a block's contribution to the magnitude predictor.
const maxMagnitude = 255

// selector maps the running magnitude predictor of a plane class to the
// table selector of the next block.
func selector(pred int32) int {
	switch {
	case pred < 2:
		return 0
	case pred < 6:
		return 1
	case pred < 16:
		return 2
	}
	return 3
}

func nextPred(pred, mag int32) int32 {
	if mag > maxMagnitude {
		mag = maxMagnitude
	}
	return (pred + mag) >> 1
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// Tokenizer converts the blocks of a frame, in coding order, into tokens.
// Levels are in zigzag order with the DC already replaced by its
// prediction difference; every magnitude must be at most MaxValue.
type Tokenizer struct {
	buf     *Buffer
	eobRuns bool
	pred    [NumClasses]int32
	run     int   // blocks in the pending EOB run
	runTab  uint8 // table of the block that opened it
}

// NewTokenizer returns a tokenizer appending to buf. With eobRuns set,
// consecutive all-zero blocks are folded into the preceding EOB.
func NewTokenizer(buf *Buffer, eobRuns bool) *Tokenizer {
	return &Tokenizer{buf: buf, eobRuns: eobRuns}
}

// Reset prepares the tokenizer for a new frame.
func (tz *Tokenizer) Reset() {
	tz.pred = [NumClasses]int32{}
	tz.run = 0
}

func (tz *Tokenizer) add(pos, class, sel int, tok uint8, extra uint16) {
	tz.buf.Add(Token{Value: tok, Table: uint8(TableIndex(pos, class, sel)), Extra: extra})
}

func (tz *Tokenizer) flushRun() {
	tok, extra := eobToken(tz.run)
	tz.buf.Add(Token{Value: tok, Table: tz.runTab, Extra: extra})
	tz.run = 0
}

// Block tokenizes one coded block of plane class class.
func (tz *Tokenizer) Block(class int, levels *[64]int32) {
	last := 0
	for pos := 63; pos >= 0; pos-- {
		if levels[pos] != 0 {
			last = pos + 1
			break
		}
	}

	if tz.run > 0 {
		if last == 0 && tz.run < MaxEOBRun {
			tz.run++
			tz.pred[class] = nextPred(tz.pred[class], 0)
			return
		}
		tz.flushRun()
	}

	sel := selector(tz.pred[class])
	var mag int32
	for pos := 0; pos < last; {
		v := levels[pos]
		if v != 0 {
			tok, extra := valueToken(v)
			tz.add(pos, class, sel, tok, extra)
			mag += abs32(v)
			pos++
			continue
		}
		r := 1
		for levels[pos+r] == 0 {
			r++
		}
		next := levels[pos+r]
		if tok, extra, ok := runToken(r, next); ok {
			tz.add(pos, class, sel, tok, extra)
			mag += abs32(next)
			pos += r + 1
			continue
		}
		if r <= 8 {
			tz.add(pos, class, sel, ShortZRL, uint16(r-1))
		} else {
			tz.add(pos, class, sel, ZRL, uint16(r-1))
		}
		pos += r
	}

	if last < 64 {
		tab := uint8(TableIndex(last, class, sel))
		if tz.eobRuns {
			tz.run, tz.runTab = 1, tab
		} else {
			tz.buf.Add(Token{Value: EOB, Table: tab})
		}
	}
	tz.pred[class] = nextPred(tz.pred[class], mag)
}

// Flush emits a pending EOB run. It must be called after the last block
// of a frame.
func (tz *Tokenizer) Flush() {
	if tz.run > 0 {
		tz.flushRun()
	}
}

// Detokenizer is the decoding mirror of Tokenizer.
type Detokenizer struct {
	pred [NumClasses]int32
	run  int
}

// Reset prepares the detokenizer for a new frame.
func (d *Detokenizer) Reset() {
	d.pred = [NumClasses]int32{}
	d.run = 0
}

// Pending returns the number of blocks still owed to an EOB run.
func (d *Detokenizer) Pending() int { return d.run }

// Block decodes the levels of one coded block of plane class class.
func (d *Detokenizer) Block(br *bitio.Reader, tables *TableSet, class int, levels *[64]int32) error {
	*levels = [64]int32{}
	if d.run > 0 {
		d.run--
		d.pred[class] = nextPred(d.pred[class], 0)
		return nil
	}

	sel := selector(d.pred[class])
	var mag int32
	for pos := 0; pos < 64; {
		tok := tables[TableIndex(pos, class, sel)].Decode(br)
		if tok < 0 {
			return fmt.Errorf("%w: stream exhausted", ErrCorrupt)
		}
		var extra int32
		if n := ExtraBits[tok]; n > 0 {
			if extra = br.ReadBits(int(n)); extra < 0 {
				return fmt.Errorf("%w: stream exhausted", ErrCorrupt)
			}
		}
		if IsEOB(tok) {
			n := eobLength(tok, extra)
			if n < 1 {
				return fmt.Errorf("%w: empty EOB run", ErrCorrupt)
			}
			d.run = n - 1
			break
		}
		zeros, v := decodeToken(tok, extra)
		pos += zeros
		if pos >= 64 {
			return fmt.Errorf("%w: zero run past end of block", ErrCorrupt)
		}
		if v == 0 {
			continue
		}
		levels[pos] = v
		mag += abs32(v)
		pos++
	}
	d.pred[class] = nextPred(d.pred[class], mag)
	return nil
}
