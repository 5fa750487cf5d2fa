package main

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/deepteams/framecoder"
	"github.com/deepteams/framecoder/internal/config"
)

// loadImages decodes one input file. Animated GIFs yield one composited
// image per frame; other formats yield a single image.
func loadImages(path string) ([]image.Image, error) {
	rc, err := openInput(path)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, err
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if format == "gif" {
		g, err := gif.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return gifFrames(g), nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return []image.Image{img}, nil
}

// gifFrames renders each GIF frame onto the logical screen, honouring the
// disposal methods.
func gifFrames(g *gif.GIF) []image.Image {
	w, h := g.Config.Width, g.Config.Height
	if w == 0 || h == 0 {
		b := g.Image[0].Bounds()
		w, h = b.Max.X, b.Max.Y
	}
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	out := make([]image.Image, 0, len(g.Image))

	for i, frame := range g.Image {
		r := frame.Bounds()
		var saved *image.RGBA
		disposal := byte(0)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		if disposal == gif.DisposalPrevious {
			saved = image.NewRGBA(r)
			draw.Draw(saved, r, canvas, r.Min, draw.Src)
		}

		draw.Draw(canvas, r, frame, r.Min, draw.Over)
		snap := image.NewRGBA(canvas.Bounds())
		copy(snap.Pix, canvas.Pix)
		out = append(out, snap)

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, r, image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			draw.Draw(canvas, r, saved, r.Min, draw.Src)
		}
	}
	return out
}

// frameSize picks the coded frame size: the configured size, or the first
// input's, rounded down to whole macroblocks.
func frameSize(cfg config.Config, first image.Rectangle, log framecoder.Logger) (int, int, error) {
	w, h := cfg.Width, cfg.Height
	if w <= 0 {
		w = first.Dx()
	}
	if h <= 0 {
		h = first.Dy()
	}
	rw, rh := w&^15, h&^15
	if rw == 0 || rh == 0 {
		return 0, 0, fmt.Errorf("%w: %dx%d is smaller than one macroblock", framecoder.ErrInvalidDimensions, w, h)
	}
	if rw != w || rh != h {
		log.Warn("Frame size %dx%d rounded down to %dx%d", w, h, rw, rh)
	}
	return rw, rh, nil
}

// fitImage scales img to width x height when its size differs.
func fitImage(img image.Image, width, height int, name string, log framecoder.Logger) image.Image {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img
	}
	log.Warn("Scaling %s from %dx%d to %dx%d", name, b.Dx(), b.Dy(), width, height)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
