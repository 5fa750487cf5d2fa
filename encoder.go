package framecoder

import (
	"fmt"
	"image"
	"sort"
	"strings"

	"github.com/deepteams/framecoder/internal/codec"
	"github.com/deepteams/framecoder/internal/geom"
	"github.com/deepteams/framecoder/internal/quant"
)

// FrameOptions are per-frame overrides for EncodeFrame.
type FrameOptions struct {
	// ForceKey codes the frame as a key frame.
	ForceKey bool

	// Update flags, per block, the blocks that may be coded in an inter
	// frame; the others are carried over from the previous frame. Its
	// length must be Encoder.Blocks(). nil codes every block.
	Update []bool
}

// FrameStats describes the bit budget of an encoded frame.
type FrameStats struct {
	HeaderBits  int
	TableBits   int
	SideBits    int
	TokenBits   int
	Tokens      int
	TablesSent  bool
	CodedBlocks int
	Blocks      int
	// Modes counts macroblocks per coding mode name.
	Modes map[string]int
}

// Packet is one encoded frame.
type Packet struct {
	Data          []byte
	Index         int
	Key           bool
	Quality       int
	GoldenRefresh bool
	Stats         FrameStats
}

// Encoder encodes a sequence of equally sized frames. It is not safe for
// concurrent use.
type Encoder struct {
	opts Options
	g    *geom.Geometry
	enc  *codec.Encoder
	src  geom.Frame
	log  Logger

	quality    int
	frame      int
	lastKey    int
	lastGolden int
}

// NewEncoder returns an encoder for width x height frames. If opts is nil,
// DefaultOptions() is used.
func NewEncoder(width, height int, opts *Options) (*Encoder, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := validateOptions(opts); err != nil {
		return nil, err
	}
	g, err := checkDimensions(width, height)
	if err != nil {
		return nil, err
	}
	return &Encoder{
		opts:    *opts,
		g:       g,
		enc:     codec.NewEncoder(g, opts.codecConfig()),
		src:     g.NewSourceFrame(),
		log:     orNoop(opts.Logger).WithComponent("encoder"),
		quality: opts.Quality,
	}, nil
}

// Blocks returns the number of 8x8 blocks per frame, the length of
// FrameOptions.Update.
func (e *Encoder) Blocks() int { return e.g.NumBlocks }

// SetQuality sets the quality index of the following frames. It is
// ignored when Options.FixedQuality is set.
func (e *Encoder) SetQuality(qi int) error {
	if qi < 0 || qi >= quant.NumQualities {
		return fmt.Errorf("%w: %d", ErrInvalidQuality, qi)
	}
	if !e.opts.FixedQuality {
		e.quality = qi
	}
	return nil
}

// Quality returns the quality index of the next frame.
func (e *Encoder) Quality() int { return e.quality }

// Encode encodes the next frame, choosing key frames and golden refreshes
// from the configured intervals.
func (e *Encoder) Encode(f *image.YCbCr) (*Packet, error) {
	return e.EncodeFrame(f, nil)
}

// EncodeFrame is Encode with per-frame overrides. fo may be nil.
func (e *Encoder) EncodeFrame(f *image.YCbCr, fo *FrameOptions) (*Packet, error) {
	if fo == nil {
		fo = &FrameOptions{}
	}
	if err := importFrame(f, e.src); err != nil {
		return nil, err
	}

	key := e.frame == 0 || fo.ForceKey || (e.opts.KeyInterval > 0 && e.frame-e.lastKey >= e.opts.KeyInterval)
	golden := key || (e.opts.Golden && e.opts.GoldenInterval > 0 && e.frame-e.lastGolden >= e.opts.GoldenInterval)
	fp := codec.FrameParams{Key: key, QI: e.quality, GoldenRefresh: golden}
	if !key {
		fp.Update = fo.Update
	}

	data, st, err := e.enc.Encode(e.src, fp)
	if err != nil {
		err = wrapCodecError(err)
		e.log.Error("Failed to encode frame %d: %s", e.frame, err)
		return nil, err
	}

	p := &Packet{
		Data:          data,
		Index:         e.frame,
		Key:           key,
		Quality:       e.quality,
		GoldenRefresh: golden,
		Stats:         publicStats(st, e.g.NumBlocks),
	}
	e.logFrame(p)

	if key {
		e.lastKey = e.frame
	}
	if golden {
		e.lastGolden = e.frame
	}
	e.frame++
	return p, nil
}

// Reconstruction returns the decoder-visible version of the last encoded
// frame, or nil after Close.
func (e *Encoder) Reconstruction() *image.YCbCr {
	if e.enc.Closed() {
		return nil
	}
	return exportFrame(e.enc.Recon())
}

// Statistics returns the token statistics of every frame encoded so far.
func (e *Encoder) Statistics() *Statistics {
	return &Statistics{tally: *e.enc.Tally()}
}

// Close releases the encoder's frame buffers. Encoding afterwards fails
// with ErrCannotProceed.
func (e *Encoder) Close() error {
	e.enc.Close()
	return nil
}

func publicStats(st *codec.Stats, blocks int) FrameStats {
	fs := FrameStats{
		HeaderBits:  st.HeaderBits,
		TableBits:   st.TableBits,
		SideBits:    st.SideBits,
		TokenBits:   st.TokenBits,
		Tokens:      st.Tokens,
		TablesSent:  st.TablesSent,
		CodedBlocks: st.CodedBlocks,
		Blocks:      blocks,
		Modes:       make(map[string]int),
	}
	for m, n := range st.Modes {
		if n > 0 {
			fs.Modes[codec.Mode(m).String()] = n
		}
	}
	return fs
}

func frameKind(key bool) string {
	if key {
		return "key"
	}
	return "inter"
}

// formatModes renders a mode histogram as "name=count" pairs in name order.
func formatModes(modes map[string]int) string {
	names := make([]string, 0, len(modes))
	for name := range modes {
		names = append(names, name)
	}
	sort.Strings(names)
	var sb strings.Builder
	for i, name := range names {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s=%d", name, modes[name])
	}
	return sb.String()
}

func (e *Encoder) logFrame(p *Packet) {
	e.log.Debug("Frame %d: %s qi=%d, %d/%d blocks coded, %d bytes",
		p.Index, frameKind(p.Key), p.Quality, p.Stats.CodedBlocks, p.Stats.Blocks, len(p.Data))
	e.log.Debug("Frame %d: modes %s", p.Index, formatModes(p.Stats.Modes))
	if p.Stats.TablesSent {
		e.log.Debug("Frame %d: tables sent (%d bits)", p.Index, p.Stats.TableBits)
	}
}
