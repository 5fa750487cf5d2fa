package codec

import (
	"github.com/deepteams/framecoder/internal/dsp"
	"github.com/deepteams/framecoder/internal/geom"
	"github.com/deepteams/framecoder/internal/motion"
	"github.com/deepteams/framecoder/internal/quant"
)

// reconstructor rebuilds blocks from their levels. The encoder and the
// decoder share it so that both produce identical reference frames.
type reconstructor struct {
	g      *geom.Geometry
	pred   [64]byte
	coeffs [64]int32
	res    [64]int32
}

// blockVector returns the vector that predicts block b of a macroblock
// coded with mode and vectors mvs, in the block's plane units.
func (rc *reconstructor) blockVector(b int, mode Mode, mvs *[4]motion.Vector) motion.Vector {
	switch mode {
	case ModeIntra, ModeInterNoMV, ModeUsingGolden:
		return motion.Zero
	}
	if rc.g.PlaneOf(b) != geom.PlaneY {
		if mode == ModeInterFourMV {
			return motion.FourChromaVector(*mvs)
		}
		return motion.ChromaVector(mvs[0])
	}
	if mode == ModeInterFourMV {
		return mvs[lumaSlot(rc.g, b)]
	}
	return mvs[0]
}

// predict fills rc.pred with the prediction of block b.
func (rc *reconstructor) predict(b int, mode Mode, mvs *[4]motion.Vector, refs *references) {
	if mode == ModeIntra {
		dsp.PredictIntra(&rc.pred)
		return
	}
	p := rc.g.PlaneOf(b)
	ref := refs.last[p]
	if mode.Golden() {
		ref = refs.golden[p]
	}
	p1, p2 := motion.Offsets(rc.g.ReconOffsets[b], ref.Stride, rc.blockVector(b, mode, mvs))
	var r2 []byte
	if p2 != p1 {
		r2 = ref.Pix[p2:]
	}
	dsp.PredictInter(ref.Pix[p1:], r2, ref.Stride, &rc.pred)
}

// finish dequantizes levels, adds the residual to rc.pred and stores the
// block into the frame under reconstruction.
func (rc *reconstructor) finish(b int, m *quant.Matrix, levels *[64]int32, refs *references) {
	dst := refs.recon[rc.g.PlaneOf(b)]
	off := rc.g.ReconOffsets[b]

	acs := false
	for _, l := range levels[1:] {
		if l != 0 {
			acs = true
			break
		}
	}
	switch {
	case acs:
		m.Dequantize(levels, &rc.coeffs)
		dsp.InverseDCT(&rc.coeffs, &rc.res)
	case levels[0] != 0:
		m.Dequantize(levels, &rc.coeffs)
		dsp.InverseDCTDC(rc.coeffs[0], &rc.res)
	default:
		dsp.StorePred(&rc.pred, dst.Pix[off:], dst.Stride)
		return
	}
	dsp.Reconstruct(&rc.pred, &rc.res, dst.Pix[off:], dst.Stride)
}

// copyBlock carries an uncoded block over from the last frame.
func (rc *reconstructor) copyBlock(b int, refs *references) {
	p := rc.g.PlaneOf(b)
	src, dst := refs.last[p], refs.recon[p]
	off := rc.g.ReconOffsets[b]
	dsp.CopyBlock(src.Pix[off:], src.Stride, dst.Pix[off:], dst.Stride)
}

// frame reconstructs every block of the frame described by fi.
func (rc *reconstructor) frame(fi *frameInfo, qt *quant.Table, refs *references) {
	for b := range fi.coded {
		if !fi.coded[b] {
			rc.copyBlock(b, refs)
			continue
		}
		mb := rc.g.BlockMB[b]
		mode := fi.modes[mb]
		rc.predict(b, mode, &fi.mvs[mb], refs)
		m := &qt.Ctx[quant.ContextFor(mode == ModeIntra, rc.g.PlaneOf(b))]
		rc.finish(b, m, &fi.levels[b], refs)
	}
}
