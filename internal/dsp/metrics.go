package dsp

// Block-matching metrics on 8x8 blocks. src and ref slices start at the
// block's top-left sample; strides are in bytes. Half-pel variants predict
// with the truncating average of two reference pointers.

func absDiff(a, b byte) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// SAD8x8 returns the sum of absolute differences between src and ref.
func SAD8x8(src []byte, srcStride int, ref []byte, refStride int) int {
	sad := 0
	for y := 0; y < 8; y++ {
		s := src[y*srcStride : y*srcStride+8]
		r := ref[y*refStride : y*refStride+8]
		for x := 0; x < 8; x++ {
			sad += absDiff(s[x], r[x])
		}
	}
	return sad
}

// SAD8x8Thres is SAD8x8 that stops as soon as the running sum exceeds
// thres. The returned value is then only guaranteed to be > thres.
func SAD8x8Thres(src []byte, srcStride int, ref []byte, refStride int, thres int) int {
	sad := 0
	for y := 0; y < 8; y++ {
		s := src[y*srcStride : y*srcStride+8]
		r := ref[y*refStride : y*refStride+8]
		for x := 0; x < 8; x++ {
			sad += absDiff(s[x], r[x])
		}
		if sad > thres {
			break
		}
	}
	return sad
}

// SAD8x8Half returns the SAD against the average of two references.
func SAD8x8Half(src []byte, srcStride int, ref1, ref2 []byte, refStride int) int {
	sad := 0
	for y := 0; y < 8; y++ {
		s := src[y*srcStride : y*srcStride+8]
		a := ref1[y*refStride : y*refStride+8]
		b := ref2[y*refStride : y*refStride+8]
		for x := 0; x < 8; x++ {
			sad += absDiff(s[x], byte((int(a[x])+int(b[x]))>>1))
		}
	}
	return sad
}

// InterError8x8 returns the variance-style prediction error
// sum(d^2) - sum(d)^2/64 of the difference d = src - pred, where pred is
// ref1 or, when ref2 is non-nil, the average of ref1 and ref2.
func InterError8x8(src []byte, srcStride int, ref1, ref2 []byte, refStride int) int {
	sum, sq := 0, 0
	for y := 0; y < 8; y++ {
		s := src[y*srcStride : y*srcStride+8]
		a := ref1[y*refStride : y*refStride+8]
		if ref2 == nil {
			for x := 0; x < 8; x++ {
				d := int(s[x]) - int(a[x])
				sum += d
				sq += d * d
			}
			continue
		}
		b := ref2[y*refStride : y*refStride+8]
		for x := 0; x < 8; x++ {
			d := int(s[x]) - ((int(a[x]) + int(b[x])) >> 1)
			sum += d
			sq += d * d
		}
	}
	return sq - (sum*sum)>>6
}

// IntraError8x8 returns the variance-style error of src about its mean.
func IntraError8x8(src []byte, srcStride int) int {
	sum, sq := 0, 0
	for y := 0; y < 8; y++ {
		s := src[y*srcStride : y*srcStride+8]
		for x := 0; x < 8; x++ {
			v := int(s[x])
			sum += v
			sq += v * v
		}
	}
	return sq - (sum*sum)>>6
}
