package dsp

// IntraBias is the constant prediction of intra blocks.
const IntraBias = 128

// Clip8 clamps v to [0, 255].
func Clip8(v int32) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

// PredictIntra fills pred with the intra bias.
func PredictIntra(pred *[64]byte) {
	for i := range pred {
		pred[i] = IntraBias
	}
}

// PredictInter copies an 8x8 reference block into pred. When ref2 is
// non-nil the prediction is the truncating average of ref1 and ref2.
func PredictInter(ref1, ref2 []byte, refStride int, pred *[64]byte) {
	for y := 0; y < 8; y++ {
		a := ref1[y*refStride : y*refStride+8]
		p := pred[y*8 : y*8+8]
		if ref2 == nil {
			copy(p, a)
			continue
		}
		b := ref2[y*refStride : y*refStride+8]
		for x := 0; x < 8; x++ {
			p[x] = byte((int(a[x]) + int(b[x])) >> 1)
		}
	}
}

// Residual computes res = src - pred.
func Residual(src []byte, srcStride int, pred *[64]byte, res *[64]int32) {
	for y := 0; y < 8; y++ {
		s := src[y*srcStride : y*srcStride+8]
		for x := 0; x < 8; x++ {
			res[y*8+x] = int32(s[x]) - int32(pred[y*8+x])
		}
	}
}

// Reconstruct writes clip(pred + res) into dst.
func Reconstruct(pred *[64]byte, res *[64]int32, dst []byte, dstStride int) {
	for y := 0; y < 8; y++ {
		d := dst[y*dstStride : y*dstStride+8]
		for x := 0; x < 8; x++ {
			d[x] = Clip8(int32(pred[y*8+x]) + res[y*8+x])
		}
	}
}

// CopyBlock copies an 8x8 block of samples.
func CopyBlock(src []byte, srcStride int, dst []byte, dstStride int) {
	for y := 0; y < 8; y++ {
		copy(dst[y*dstStride:y*dstStride+8], src[y*srcStride:y*srcStride+8])
	}
}

// StorePred writes pred into dst.
func StorePred(pred *[64]byte, dst []byte, dstStride int) {
	for y := 0; y < 8; y++ {
		copy(dst[y*dstStride:y*dstStride+8], pred[y*8:y*8+8])
	}
}
