// Package synth renders a deterministic moving test sequence with gg, for
// exercising the encoder without input files.
package synth

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
)

// Scene describes the generated sequence.
type Scene struct {
	Width  int
	Height int
	// Speed is the displacement of the moving shapes in pixels per frame.
	Speed      float64
	Background color.Color
	Foreground color.Color
	Accent     color.Color
}

// DefaultScene returns a width x height scene with the default palette.
func DefaultScene(width, height int) Scene {
	return Scene{
		Width:      width,
		Height:     height,
		Speed:      2,
		Background: color.RGBA{0x1a, 0x1a, 0x2e, 0xff},
		Foreground: color.RGBA{0x4a, 0xde, 0x80, 0xff},
		Accent:     color.RGBA{0xf9, 0x73, 0x16, 0xff},
	}
}

// bounce folds t into [0, span] as a triangle wave.
func bounce(t, span float64) float64 {
	if span <= 0 {
		return 0
	}
	t = math.Mod(t, 2*span)
	if t > span {
		t = 2*span - t
	}
	return t
}

// Frame renders frame i.
func (s Scene) Frame(i int) image.Image {
	w, h := float64(s.Width), float64(s.Height)
	t := float64(i) * s.Speed

	dc := gg.NewContext(s.Width, s.Height)
	dc.SetColor(s.Background)
	dc.Clear()

	// Static grid.
	dc.SetRGBA(1, 1, 1, 0.12)
	dc.SetLineWidth(1)
	for x := 8.0; x < w; x += 16 {
		dc.DrawLine(x, 0, x, h)
	}
	for y := 8.0; y < h; y += 16 {
		dc.DrawLine(0, y, w, y)
	}
	dc.Stroke()

	// Diagonal bands panning at half speed.
	dc.SetRGBA(1, 1, 1, 0.2)
	dc.SetLineWidth(3)
	off := math.Mod(t/2, 24)
	for x := -h + off; x < w; x += 24 {
		dc.DrawLine(x, h, x+h, 0)
	}
	dc.Stroke()

	// Disc moving left to right.
	r := math.Max(4, h/6)
	dc.SetColor(s.Foreground)
	dc.DrawCircle(r+bounce(t, w-2*r), h/2, r)
	dc.Fill()

	// Box moving diagonally at a different rate.
	bw, bh := math.Max(8, w/5), math.Max(8, h/5)
	dc.SetColor(s.Accent)
	dc.DrawRoundedRectangle(bounce(1.5*t, w-bw), bounce(t, h-bh), bw, bh, bh/4)
	dc.Fill()

	return dc.Image()
}
