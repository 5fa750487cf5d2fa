package codec

import (
	"fmt"

	"github.com/deepteams/framecoder/internal/bitio"
	"github.com/deepteams/framecoder/internal/dsp"
	"github.com/deepteams/framecoder/internal/geom"
	"github.com/deepteams/framecoder/internal/huffman"
	"github.com/deepteams/framecoder/internal/motion"
	"github.com/deepteams/framecoder/internal/quant"
	"github.com/deepteams/framecoder/internal/token"
)

// TableMode selects the statistics the Huffman tables of a frame are
// built from.
type TableMode int

const (
	// TablesLive builds the tables from the frame's own tokens.
	TablesLive TableMode = iota
	// TablesPrevious builds them from the previous frame's tokens, or from
	// Config.Seed for the first frame, so that tables stay stable across
	// frames and need to be sent less often.
	TablesPrevious
)

func (m TableMode) String() string {
	switch m {
	case TablesLive:
		return "live"
	case TablesPrevious:
		return "previous"
	}
	return fmt.Sprintf("TableMode(%d)", int(m))
}

// Config holds the encoder tuning knobs.
type Config struct {
	// Method is the integer motion search.
	Method motion.Method
	// FourMV enables the per-block vector mode.
	FourMV bool
	// Golden enables prediction from the golden frame.
	Golden bool
	// EOBRuns folds runs of empty blocks into a single token.
	EOBRuns bool
	// Tables selects where table statistics come from.
	Tables TableMode
	// SkipThreshold, when positive, leaves inter blocks whose null-vector
	// SAD against the last frame is below it uncoded.
	SkipThreshold int
	// Seed primes TablesPrevious before the first frame.
	Seed *token.Tally
}

// FrameParams are the per-frame encoding parameters.
type FrameParams struct {
	Key           bool
	QI            int
	GoldenRefresh bool
	// Update flags the blocks that may be coded in an inter frame; nil
	// codes all of them. Key frames ignore it.
	Update []bool
}

// Stats describes one encoded frame.
type Stats struct {
	Bytes       int
	HeaderBits  int
	TableBits   int
	SideBits    int
	TokenBits   int
	Tokens      int
	TablesSent  bool
	CodedBlocks int
	Modes       [NumModes]int
}

// Encoder turns source frames into coded frames. It is not safe for
// concurrent use.
type Encoder struct {
	g    *geom.Geometry
	cfg  Config
	refs *references
	rc   reconstructor
	fi   *frameInfo

	last   *motion.Searcher
	golden *motion.Searcher

	buf    token.Buffer
	tz     *token.Tokenizer
	qt     [quant.NumQualities]*quant.Table
	tables *token.TableSet // tables in force
	prev   token.Tally     // statistics of the last frame
	total  token.Tally     // statistics of the session
}

// NewEncoder returns an encoder for frames of geometry g.
func NewEncoder(g *geom.Geometry, cfg Config) *Encoder {
	e := &Encoder{
		g:      g,
		cfg:    cfg,
		refs:   newReferences(g),
		rc:     reconstructor{g: g},
		fi:     newFrameInfo(g),
		last:   motion.NewSearcher(g),
		golden: motion.NewSearcher(g),
	}
	e.tz = token.NewTokenizer(&e.buf, cfg.EOBRuns)
	if cfg.Seed != nil {
		e.prev = *cfg.Seed
	}
	return e
}

// Geometry returns the frame geometry of the encoder.
func (e *Encoder) Geometry() *geom.Geometry { return e.g }

// Recon returns the last reconstructed frame, which is what a decoder
// outputs for the same stream. It is overwritten by the next Encode and
// empty after Close.
func (e *Encoder) Recon() geom.Frame { return e.refs.last }

// Closed reports whether Close has released the reference frames.
func (e *Encoder) Closed() bool { return e.refs.last[geom.PlaneY] == nil }

// Tally returns the token statistics accumulated over every encoded frame.
func (e *Encoder) Tally() *token.Tally { return &e.total }

// Close releases the reference frames.
func (e *Encoder) Close() {
	e.refs.release()
}

func (e *Encoder) quantizer(qi int) *quant.Table {
	if e.qt[qi] == nil {
		e.qt[qi] = quant.MustNew(qi)
	}
	return e.qt[qi]
}

func (e *Encoder) checkSource(src geom.Frame) error {
	for p, pl := range src {
		pi := &e.g.Planes[p]
		if pl == nil || pl.Width != pi.Width || pl.Height != pi.Height || pl.Border != 0 {
			return fmt.Errorf("codec: source plane %d does not match %dx%d", p, pi.Width, pi.Height)
		}
	}
	return nil
}

// Encode codes one frame and returns its bytes.
func (e *Encoder) Encode(src geom.Frame, fp FrameParams) ([]byte, *Stats, error) {
	if e.Closed() {
		return nil, nil, ErrClosed
	}
	if fp.QI < 0 || fp.QI >= quant.NumQualities {
		return nil, nil, fmt.Errorf("%w: %d", quant.ErrInvalidQuality, fp.QI)
	}
	if err := e.checkSource(src); err != nil {
		return nil, nil, err
	}
	if !fp.Key && !e.refs.valid {
		return nil, nil, ErrNoReference
	}
	if !fp.Key && fp.Update != nil && len(fp.Update) != e.g.NumBlocks {
		return nil, nil, fmt.Errorf("%w: %d flags for %d blocks", ErrBadUpdateMask, len(fp.Update), e.g.NumBlocks)
	}

	qt := e.quantizer(fp.QI)
	hdr := Header{Key: fp.Key, QI: fp.QI, GoldenRefresh: fp.Key || fp.GoldenRefresh}
	st := &Stats{}

	e.fi.reset(fp.Key)
	if !fp.Key {
		e.selectBlocks(src, fp.Update)
		e.chooseModes(src, qt)
	}
	e.transform(src, qt)
	e.tokenize()

	bw := bitio.NewWriter(e.g.NumBlocks * 8)
	hdr.write(bw)
	st.HeaderBits = bw.NumBits()

	var live token.Tally
	e.buf.Tally(&live)
	send, cand := e.chooseTables(fp.Key, &live)
	bw.WriteBit(send)
	if send {
		cand.Write(bw)
		e.tables = cand
	}
	st.TablesSent = send
	st.TableBits = bw.NumBits() - st.HeaderBits

	if !fp.Key {
		writeCodedFlags(bw, e.g, e.fi.coded)
		writeModes(bw, e.g, e.fi)
		writeVectors(bw, e.g, e.fi)
	}
	st.SideBits = bw.NumBits() - st.HeaderBits - st.TableBits

	e.buf.Emit(bw, e.tables)
	st.TokenBits = bw.NumBits() - st.HeaderBits - st.TableBits - st.SideBits
	st.Tokens = e.buf.Len()

	e.prev = live
	e.total.Add(&live)

	e.rc.frame(e.fi, qt, e.refs)
	e.refs.commit(hdr.GoldenRefresh)

	for _, c := range e.fi.coded {
		if c {
			st.CodedBlocks++
		}
	}
	for mb, m := range e.fi.modes {
		if fp.Key || e.fi.codedLuma(e.g, mb) {
			st.Modes[m]++
		}
	}
	out := bw.Finish()
	st.Bytes = len(out)
	return out, st, nil
}

// selectBlocks applies the update mask and the skip threshold to the coded
// flags of an inter frame.
func (e *Encoder) selectBlocks(src geom.Frame, update []bool) {
	for b := range e.fi.coded {
		if update != nil && !update[b] {
			e.fi.coded[b] = false
			continue
		}
		if e.cfg.SkipThreshold <= 0 {
			continue
		}
		p := e.g.PlaneOf(b)
		s, r := src[p], e.refs.last[p]
		off := e.g.ReconOffsets[b]
		sad := dsp.SAD8x8(s.Pix[e.g.SrcOffsets[b]:], s.Stride, r.Pix[off:], r.Stride)
		if sad < e.cfg.SkipThreshold {
			e.fi.coded[b] = false
		}
	}
}

type candidate struct {
	mode  Mode
	mvs   [4]motion.Vector
	score int
}

func (c *candidate) consider(mode Mode, v motion.Vector, err, bits, lambda int) {
	if s := err + lambda*bits; s < c.score {
		*c = candidate{mode: mode, mvs: [4]motion.Vector{v, v, v, v}, score: s}
	}
}

// chooseModes picks the mode of every macroblock that has a coded luma
// block by minimizing prediction error plus lambda times side bits.
func (e *Encoder) chooseModes(src geom.Frame, qt *quant.Table) {
	lambda := qt.Lambda()
	e.last.Reset(src[geom.PlaneY], e.refs.last[geom.PlaneY], e.fi.coded)
	e.golden.Reset(src[geom.PlaneY], e.refs.golden[geom.PlaneY], e.fi.coded)

	var state mvState
	for mb := range e.fi.modes {
		if !e.fi.codedLuma(e.g, mb) {
			e.fi.modes[mb] = ModeInterNoMV
			continue
		}
		best := candidate{score: motion.VeryLarge}
		best.consider(ModeInterNoMV, motion.Zero, e.last.InterError(mb, motion.Zero), modeBits, lambda)
		best.consider(ModeIntra, motion.Zero, e.last.IntraError(mb), modeBits, lambda)
		best.consider(ModeInterLastMV, state.last, e.last.InterError(mb, state.last), modeBits, lambda)
		best.consider(ModeInterPriorLast, state.prior, e.last.InterError(mb, state.prior), modeBits, lambda)

		r := e.last.Search(mb, e.cfg.Method)
		best.consider(ModeInterMV, r.MV, e.last.InterError(mb, r.MV), modeBits+vectorBits, lambda)

		if e.cfg.Golden {
			best.consider(ModeUsingGolden, motion.Zero, e.golden.InterError(mb, motion.Zero), modeBits, lambda)
			gr := e.golden.Search(mb, e.cfg.Method)
			best.consider(ModeGoldenMV, gr.MV, e.golden.InterError(mb, gr.MV), modeBits+vectorBits, lambda)
		}

		if e.cfg.FourMV {
			if mvs, cost := e.last.FourMV(mb); cost < motion.VeryLarge {
				if s := e.last.FourError(mb, mvs) + lambda*(modeBits+4*vectorBits); s < best.score {
					best = candidate{mode: ModeInterFourMV, mvs: mvs, score: s}
				}
			}
		}

		e.fi.modes[mb] = best.mode
		e.fi.mvs[mb] = best.mvs
		state.apply(best.mode, &e.fi.mvs[mb])
	}
}

// transform predicts, transforms and quantizes every coded block, storing
// its levels with an absolute DC.
func (e *Encoder) transform(src geom.Frame, qt *quant.Table) {
	var res, coeffs [64]int32
	for b, coded := range e.fi.coded {
		if !coded {
			continue
		}
		mb := e.g.BlockMB[b]
		mode := e.fi.modes[mb]
		p := e.g.PlaneOf(b)
		e.rc.predict(b, mode, &e.fi.mvs[mb], e.refs)
		s := src[p]
		dsp.Residual(s.Pix[e.g.SrcOffsets[b]:], s.Stride, &e.rc.pred, &res)
		dsp.ForwardDCT(&res, &coeffs)
		levels := &e.fi.levels[b]
		qt.Ctx[quant.ContextFor(mode == ModeIntra, p)].Quantize(&coeffs, levels)
		if levels[0] > dcLimit {
			levels[0] = dcLimit
		} else if levels[0] < -dcLimit {
			levels[0] = -dcLimit
		}
	}
}

// tokenize converts the coded blocks into tokens, replacing each DC by its
// difference from the previous DC of the same plane and prediction class.
func (e *Encoder) tokenize() {
	e.buf.Reset()
	e.tz.Reset()
	var dc dcPredictor
	var tmp [64]int32
	for b, coded := range e.fi.coded {
		if !coded {
			continue
		}
		p := e.g.PlaneOf(b)
		c := dcClass(e.fi.modes[e.g.BlockMB[b]])
		tmp = e.fi.levels[b]
		tmp[0] -= dc[p][c]
		dc[p][c] = e.fi.levels[b][0]
		e.tz.Block(token.ClassOf(p), &tmp)
	}
	e.tz.Flush()
}

// chooseTables decides whether the frame carries new tables and returns
// them. Key frames and the first frame always do; otherwise new tables are
// sent only when they save more than they cost.
func (e *Encoder) chooseTables(key bool, live *token.Tally) (bool, *token.TableSet) {
	stats := live
	if e.cfg.Tables == TablesPrevious && e.prev.Total() > 0 {
		stats = &e.prev
	}
	cand := token.BuildTables(stats)
	if key || e.tables == nil {
		return true, cand
	}
	if cand.Cost(live)+token.NumTables*huffman.TreeBits < e.tables.Cost(live) {
		return true, cand
	}
	return false, nil
}
