package geom

// Plane is a rectangular 8-bit sample buffer with a replicated border of
// Border pixels on every side. Source planes have a zero border.
type Plane struct {
	Pix    []byte
	Width  int
	Height int
	Stride int
	Border int
}

// PlaneSize returns the buffer length needed for a bordered plane.
func PlaneSize(width, height, border int) int {
	return (width + 2*border) * (height + 2*border)
}

// NewPlane allocates a zeroed plane.
func NewPlane(width, height, border int) *Plane {
	return WrapPlane(make([]byte, PlaneSize(width, height, border)), width, height, border)
}

// WrapPlane builds a plane over buf, which must hold at least
// PlaneSize(width, height, border) bytes.
func WrapPlane(buf []byte, width, height, border int) *Plane {
	return &Plane{
		Pix:    buf[:PlaneSize(width, height, border)],
		Width:  width,
		Height: height,
		Stride: width + 2*border,
		Border: border,
	}
}

// Offset returns the buffer index of the in-frame sample (x, y).
func (p *Plane) Offset(x, y int) int {
	return (y+p.Border)*p.Stride + x + p.Border
}

// At returns the sample at (x, y); coordinates may reach into the border.
func (p *Plane) At(x, y int) byte {
	return p.Pix[p.Offset(x, y)]
}

// Set stores a sample at in-frame position (x, y).
func (p *Plane) Set(x, y int, v byte) {
	p.Pix[p.Offset(x, y)] = v
}

// Row returns the in-frame samples of row y.
func (p *Plane) Row(y int) []byte {
	off := p.Offset(0, y)
	return p.Pix[off : off+p.Width]
}

// ExtendBorders replicates the outermost samples into the border so that
// unrestricted motion vectors read valid data.
func (p *Plane) ExtendBorders() {
	if p.Border == 0 {
		return
	}
	for y := 0; y < p.Height; y++ {
		row := (y + p.Border) * p.Stride
		left := p.Pix[row+p.Border]
		right := p.Pix[row+p.Border+p.Width-1]
		for i := 0; i < p.Border; i++ {
			p.Pix[row+i] = left
			p.Pix[row+p.Border+p.Width+i] = right
		}
	}
	first := p.Border * p.Stride
	last := (p.Border + p.Height - 1) * p.Stride
	for i := 0; i < p.Border; i++ {
		copy(p.Pix[i*p.Stride:(i+1)*p.Stride], p.Pix[first:first+p.Stride])
		dst := (p.Border + p.Height + i) * p.Stride
		copy(p.Pix[dst:dst+p.Stride], p.Pix[last:last+p.Stride])
	}
}

// CopyFrom copies every sample of src, borders included. src must have the
// same dimensions and border as p.
func (p *Plane) CopyFrom(src *Plane) {
	copy(p.Pix, src.Pix)
}

// Frame is a Y, U, V triple of planes.
type Frame [NumPlanes]*Plane

// NewSourceFrame allocates borderless planes for g.
func (g *Geometry) NewSourceFrame() Frame {
	var f Frame
	for p := range f {
		pi := &g.Planes[p]
		f[p] = NewPlane(pi.Width, pi.Height, 0)
	}
	return f
}

// NewReconFrame allocates bordered planes for g. alloc supplies the backing
// storage and may be nil.
func (g *Geometry) NewReconFrame(alloc func(n int) []byte) Frame {
	var f Frame
	for p := range f {
		pi := &g.Planes[p]
		n := PlaneSize(pi.Width, pi.Height, pi.Border)
		var buf []byte
		if alloc != nil {
			buf = alloc(n)
		} else {
			buf = make([]byte, n)
		}
		f[p] = WrapPlane(buf, pi.Width, pi.Height, pi.Border)
	}
	return f
}

// ExtendBorders extends the borders of every plane.
func (f Frame) ExtendBorders() {
	for _, p := range f {
		p.ExtendBorders()
	}
}
