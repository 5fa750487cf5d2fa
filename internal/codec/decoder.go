package codec

import (
	"fmt"

	"github.com/deepteams/framecoder/internal/bitio"
	"github.com/deepteams/framecoder/internal/geom"
	"github.com/deepteams/framecoder/internal/quant"
	"github.com/deepteams/framecoder/internal/token"
)

// Decoder reconstructs frames from coded data. It is not safe for
// concurrent use.
type Decoder struct {
	g      *geom.Geometry
	refs   *references
	rc     reconstructor
	fi     *frameInfo
	detok  token.Detokenizer
	qt     [quant.NumQualities]*quant.Table
	tables *token.TableSet
}

// NewDecoder returns a decoder for frames of geometry g.
func NewDecoder(g *geom.Geometry) *Decoder {
	return &Decoder{
		g:    g,
		refs: newReferences(g),
		rc:   reconstructor{g: g},
		fi:   newFrameInfo(g),
	}
}

// Close releases the reference frames.
func (d *Decoder) Close() {
	d.refs.release()
}

// Decode decodes one frame. The returned frame is bordered and owned by
// the decoder; it stays valid until the next call.
func (d *Decoder) Decode(data []byte) (geom.Frame, Header, error) {
	if d.refs.last[0] == nil {
		return geom.Frame{}, Header{}, ErrClosed
	}
	br := bitio.NewReader(data)
	hdr, err := readHeader(br)
	if err != nil {
		return geom.Frame{}, hdr, err
	}
	if !hdr.Key && !d.refs.valid {
		return geom.Frame{}, hdr, ErrNoReference
	}

	switch br.ReadBit() {
	case 1:
		ts, err := token.ReadTables(br)
		if err != nil {
			return geom.Frame{}, hdr, fmt.Errorf("%w: %w", ErrBadHeader, err)
		}
		d.tables = ts
	case 0:
		if d.tables == nil {
			return geom.Frame{}, hdr, fmt.Errorf("%w: no tables in force", ErrBadHeader)
		}
	default:
		return geom.Frame{}, hdr, fmt.Errorf("%w: truncated", ErrBadHeader)
	}

	fi := d.fi
	fi.reset(hdr.Key)
	if !hdr.Key {
		if err := readCodedFlags(br, d.g, fi.coded); err != nil {
			return geom.Frame{}, hdr, err
		}
		if err := readModes(br, d.g, fi); err != nil {
			return geom.Frame{}, hdr, err
		}
		if err := readVectors(br, d.g, fi); err != nil {
			return geom.Frame{}, hdr, err
		}
	}
	if err := d.readLevels(br); err != nil {
		return geom.Frame{}, hdr, err
	}

	if d.qt[hdr.QI] == nil {
		d.qt[hdr.QI] = quant.MustNew(hdr.QI)
	}
	d.rc.frame(fi, d.qt[hdr.QI], d.refs)
	d.refs.commit(hdr.Key || hdr.GoldenRefresh)
	return d.refs.last, hdr, nil
}

// readLevels decodes the levels of every coded block and restores the
// absolute DC values.
func (d *Decoder) readLevels(br *bitio.Reader) error {
	d.detok.Reset()
	var dc dcPredictor
	for b, coded := range d.fi.coded {
		if !coded {
			continue
		}
		p := d.g.PlaneOf(b)
		levels := &d.fi.levels[b]
		if err := d.detok.Block(br, d.tables, token.ClassOf(p), levels); err != nil {
			return fmt.Errorf("%w: block %d: %w", ErrCorrupt, b, err)
		}
		c := dcClass(d.fi.modes[d.g.BlockMB[b]])
		levels[0] += dc[p][c]
		dc[p][c] = levels[0]
	}
	if d.detok.Pending() != 0 {
		return fmt.Errorf("%w: end-of-block run overruns the frame", ErrCorrupt)
	}
	return nil
}
