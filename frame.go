package framecoder

import (
	"fmt"
	"image"

	"github.com/deepteams/framecoder/internal/geom"
	"github.com/deepteams/framecoder/internal/yuv"
)

// NewFrame allocates a 4:2:0 frame. Frames passed to Encoder.Encode must
// use this layout.
func NewFrame(width, height int) *image.YCbCr {
	return yuv.New(width, height)
}

// FrameFromImage converts img into a 4:2:0 frame with the BT.601 full-range
// matrix that image.YCbCr uses. A 4:2:0 *image.YCbCr is returned as is.
func FrameFromImage(img image.Image) *image.YCbCr {
	return yuv.FromImage(img, &yuv.Rec601Full)
}

// checkDimensions validates an encoder or decoder frame size.
func checkDimensions(width, height int) (*geom.Geometry, error) {
	g, err := geom.New(width, height)
	if err != nil {
		return nil, fmt.Errorf("%w: %dx%d (must be positive multiples of %d, at most %d)",
			ErrInvalidDimensions, width, height, geom.MBSize, geom.MaxDimension)
	}
	return g, nil
}

// importFrame copies f into the borderless source planes dst.
func importFrame(f *image.YCbCr, dst geom.Frame) error {
	if f == nil {
		return fmt.Errorf("%w: nil frame", ErrDimensionMismatch)
	}
	if f.SubsampleRatio != image.YCbCrSubsampleRatio420 {
		return fmt.Errorf("%w: subsampling %v, want 4:2:0", ErrDimensionMismatch, f.SubsampleRatio)
	}
	b := f.Rect
	y := dst[geom.PlaneY]
	if b.Dx() != y.Width || b.Dy() != y.Height {
		return fmt.Errorf("%w: frame is %dx%d, encoder is %dx%d", ErrDimensionMismatch, b.Dx(), b.Dy(), y.Width, y.Height)
	}
	for row := 0; row < y.Height; row++ {
		off := f.YOffset(b.Min.X, b.Min.Y+row)
		copy(y.Row(row), f.Y[off:off+y.Width])
	}
	for p, src := range [2][]byte{f.Cb, f.Cr} {
		c := dst[geom.PlaneU+p]
		for row := 0; row < c.Height; row++ {
			off := f.COffset(b.Min.X, b.Min.Y+2*row)
			copy(c.Row(row), src[off:off+c.Width])
		}
	}
	return nil
}

// exportFrame copies the in-frame samples of a reconstructed frame into a
// new image.
func exportFrame(src geom.Frame) *image.YCbCr {
	y := src[geom.PlaneY]
	out := yuv.New(y.Width, y.Height)
	for row := 0; row < y.Height; row++ {
		copy(out.Y[row*out.YStride:], y.Row(row))
	}
	for p, dst := range [2][]byte{out.Cb, out.Cr} {
		c := src[geom.PlaneU+p]
		for row := 0; row < c.Height; row++ {
			copy(dst[row*out.CStride:], c.Row(row))
		}
	}
	return out
}
