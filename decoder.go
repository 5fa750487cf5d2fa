package framecoder

import (
	"image"

	"github.com/deepteams/framecoder/internal/codec"
	"github.com/deepteams/framecoder/internal/geom"
)

// FrameHeader is the fixed header of an encoded frame.
type FrameHeader struct {
	Key           bool
	Quality       int
	GoldenRefresh bool
}

// ParseFrameHeader reads the header of an encoded frame without decoding
// it.
func ParseFrameHeader(data []byte) (FrameHeader, error) {
	h, err := codec.ParseHeader(data)
	if err != nil {
		return FrameHeader{}, wrapCodecError(err)
	}
	return FrameHeader{Key: h.Key, Quality: h.QI, GoldenRefresh: h.GoldenRefresh}, nil
}

// Decoder decodes a sequence of frames produced by an Encoder of the same
// dimensions. It is not safe for concurrent use.
type Decoder struct {
	g     *geom.Geometry
	dec   *codec.Decoder
	log   Logger
	frame int
}

// NewDecoder returns a decoder for width x height frames. log may be nil.
func NewDecoder(width, height int, log Logger) (*Decoder, error) {
	g, err := checkDimensions(width, height)
	if err != nil {
		return nil, err
	}
	return &Decoder{
		g:   g,
		dec: codec.NewDecoder(g),
		log: orNoop(log).WithComponent("decoder"),
	}, nil
}

// Decode decodes the next frame. The first frame must be a key frame.
func (d *Decoder) Decode(data []byte) (*image.YCbCr, error) {
	f, h, err := d.dec.Decode(data)
	if err != nil {
		err = wrapCodecError(err)
		d.log.Error("Failed to decode frame %d: %s", d.frame, err)
		return nil, err
	}
	d.log.Debug("Frame %d: %s qi=%d decoded", d.frame, frameKind(h.Key), h.QI)
	d.frame++
	return exportFrame(f), nil
}

// Close releases the decoder's frame buffers.
func (d *Decoder) Close() error {
	d.dec.Close()
	return nil
}
