package codec

import (
	"github.com/deepteams/framecoder/internal/geom"
	"github.com/deepteams/framecoder/internal/pool"
)

// references owns the reconstructed frames of one coding session: the last
// frame, the golden frame and the frame under reconstruction. Their backing
// buffers come from the shared byte pool.
type references struct {
	last, golden, recon geom.Frame

	// valid is set once a frame has been committed.
	valid bool

	bufs [][]byte
}

func newReferences(g *geom.Geometry) *references {
	r := &references{}
	alloc := func(n int) []byte {
		b := pool.Get(n)
		clear(b)
		r.bufs = append(r.bufs, b)
		return b
	}
	r.last = g.NewReconFrame(alloc)
	r.golden = g.NewReconFrame(alloc)
	r.recon = g.NewReconFrame(alloc)
	return r
}

// commit extends the borders of the reconstructed frame and makes it the
// new last frame. With refreshGolden it also becomes the golden frame.
func (r *references) commit(refreshGolden bool) {
	r.recon.ExtendBorders()
	r.last, r.recon = r.recon, r.last
	if refreshGolden {
		for p := range r.golden {
			r.golden[p].CopyFrom(r.last[p])
		}
	}
	r.valid = true
}

// release returns the frame buffers to the pool. The references must not
// be used afterwards.
func (r *references) release() {
	for _, b := range r.bufs {
		pool.Put(b)
	}
	r.bufs = nil
	r.last, r.golden, r.recon = geom.Frame{}, geom.Frame{}, geom.Frame{}
	r.valid = false
}
