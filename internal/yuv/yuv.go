// Package yuv converts images into the 4:2:0 planar layout consumed by the
// coder.
package yuv

import (
	"image"
	"image/color"
	"math"
)

const (
	yuvFix  = 16
	yuvHalf = 1 << (yuvFix - 1)
)

// Matrix holds RGB to YUV coefficients in 16-bit fixed point:
//
//	y = (Y[0]*r + Y[1]*g + Y[2]*b + Y[3] + 1<<15) >> 16
//
// and likewise for U and V.
type Matrix struct {
	Y, U, V [4]int32
}

// Predefined matrices. Rec601Full matches the conversion image.YCbCr
// applies when read back as RGB.
var (
	Rec601Full = Matrix{
		Y: [4]int32{19595, 38470, 7471, 0},
		U: [4]int32{-11058, -21710, 32768, 128 << 16},
		V: [4]int32{32768, -27439, -5329, 128 << 16},
	}
	Rec601Limited = Matrix{
		Y: [4]int32{16829, 33039, 6416, 16 << 16},
		U: [4]int32{-9714, -19071, 28784, 128 << 16},
		V: [4]int32{28784, -24103, -4681, 128 << 16},
	}
	Rec709Full = Matrix{
		Y: [4]int32{13933, 46871, 4732, 0},
		U: [4]int32{-7509, -25259, 32768, 128 << 16},
		V: [4]int32{32768, -29763, -3005, 128 << 16},
	}
	Rec709Limited = Matrix{
		Y: [4]int32{11966, 40254, 4064, 16 << 16},
		U: [4]int32{-6596, -22189, 28784, 128 << 16},
		V: [4]int32{28784, -26145, -2639, 128 << 16},
	}
)

// ByName returns a predefined matrix: "601", "601-limited", "709" or
// "709-limited".
func ByName(name string) (Matrix, bool) {
	switch name {
	case "601", "bt601":
		return Rec601Full, true
	case "601-limited", "bt601-limited":
		return Rec601Limited, true
	case "709", "bt709":
		return Rec709Full, true
	case "709-limited", "bt709-limited":
		return Rec709Limited, true
	}
	return Matrix{}, false
}

func toFixed16(f float64) int32 {
	return int32(math.Floor(f*(1<<16) + 0.5))
}

// Compute derives a matrix from the luma coefficients kr and kb. Limited
// range maps luma to [16, 235] and chroma to [16, 240].
func Compute(kr, kb float64, limited bool) Matrix {
	kg := 1 - kr - kb
	sy, su, sv := 1.0, 0.5/(1-kb), 0.5/(1-kr)
	addY := 0.0
	if limited {
		sy *= 219.0 / 255
		su *= 224.0 / 255
		sv *= 224.0 / 255
		addY = 16
	}
	return Matrix{
		Y: [4]int32{toFixed16(kr * sy), toFixed16(kg * sy), toFixed16(kb * sy), toFixed16(addY)},
		U: [4]int32{toFixed16(-kr * su), toFixed16(-kg * su), toFixed16((1 - kb) * su), 128 << 16},
		V: [4]int32{toFixed16((1 - kr) * sv), toFixed16(-kg * sv), toFixed16(-kb * sv), 128 << 16},
	}
}

func component(r, g, b int32, c *[4]int32) uint8 {
	v := (int64(c[0])*int64(r) + int64(c[1])*int64(g) + int64(c[2])*int64(b) + int64(c[3]) + yuvHalf) >> yuvFix
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}

// New allocates a 4:2:0 image of the given size.
func New(width, height int) *image.YCbCr {
	return image.NewYCbCr(image.Rect(0, 0, width, height), image.YCbCrSubsampleRatio420)
}

// FromImage converts img with matrix m. Luma is computed per pixel and
// chroma from the average color of each 2x2 block. A 4:2:0 *image.YCbCr
// is returned unchanged.
func FromImage(img image.Image, m *Matrix) *image.YCbCr {
	if y, ok := img.(*image.YCbCr); ok && y.SubsampleRatio == image.YCbCrSubsampleRatio420 {
		return y
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := New(w, h)

	rgb := make([]int32, 3*w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			i := 3 * (y*w + x)
			rgb[i], rgb[i+1], rgb[i+2] = int32(c.R), int32(c.G), int32(c.B)
			out.Y[y*out.YStride+x] = component(rgb[i], rgb[i+1], rgb[i+2], &m.Y)
		}
	}

	for cy := 0; cy < (h+1)/2; cy++ {
		for cx := 0; cx < (w+1)/2; cx++ {
			var sr, sg, sb, n int32
			for dy := 0; dy < 2; dy++ {
				for dx := 0; dx < 2; dx++ {
					x, y := 2*cx+dx, 2*cy+dy
					if x >= w || y >= h {
						continue
					}
					i := 3 * (y*w + x)
					sr += rgb[i]
					sg += rgb[i+1]
					sb += rgb[i+2]
					n++
				}
			}
			r, g, bl := (sr+n/2)/n, (sg+n/2)/n, (sb+n/2)/n
			out.Cb[cy*out.CStride+cx] = component(r, g, bl, &m.U)
			out.Cr[cy*out.CStride+cx] = component(r, g, bl, &m.V)
		}
	}
	return out
}
