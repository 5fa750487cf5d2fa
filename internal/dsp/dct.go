// Package dsp provides the 8x8 block routines of the frame coder: transforms,
// prediction, reconstruction and block-matching metrics.
package dsp

// 8x8 integer DCT for the block coder.
//
// The inverse is a separable butterfly using 16-bit fixed-point cosines
// (c<k>s<8-k> = cos(k*pi/16) * 2^16) with truncating products, a row pass, a
// column pass and a final (x + 8) >> 4. The forward transform is the exact
// transpose of that butterfly, so one 2-D pass of each leaves residuals
// unchanged up to rounding. Only the inverse has to match a decoder bit for
// bit; it uses int64 products so results do not depend on the word size.

const (
	c1s7 = 64277
	c2s6 = 60547
	c3s5 = 54491
	c4s4 = 46341
	c5s3 = 36410
	c6s2 = 25080
	c7s1 = 12785
)

// mul returns (c * x) >> 16 with an arithmetic shift.
func mul(c, x int32) int32 {
	return int32((int64(c) * int64(x)) >> 16)
}

// idct8 performs the 1-D inverse transform on in[0], in[s], ..., in[7s]
// and writes the result with the same stride to out.
func idct8(in []int32, out []int32, s int) {
	_ = in[7*s]
	_ = out[7*s]

	t0 := mul(c4s4, in[0]+in[4*s])
	t1 := mul(c4s4, in[0]-in[4*s])
	t2 := mul(c6s2, in[2*s]) - mul(c2s6, in[6*s])
	t3 := mul(c2s6, in[2*s]) + mul(c6s2, in[6*s])
	t4 := mul(c7s1, in[s]) - mul(c1s7, in[7*s])
	t5 := mul(c3s5, in[5*s]) - mul(c5s3, in[3*s])
	t6 := mul(c5s3, in[5*s]) + mul(c3s5, in[3*s])
	t7 := mul(c1s7, in[s]) + mul(c7s1, in[7*s])

	// Odd part.
	r := t4 + t5
	t5 = mul(c4s4, t4-t5)
	t4 = r
	r = t7 + t6
	t6 = mul(c4s4, t7-t6)
	t7 = r

	// Even part.
	r = t0 + t3
	t3 = t0 - t3
	t0 = r
	r = t1 + t2
	t2 = t1 - t2
	t1 = r

	r = t6 + t5
	t5 = t6 - t5
	t6 = r

	out[0] = t0 + t7
	out[s] = t1 + t6
	out[2*s] = t2 + t5
	out[3*s] = t3 + t4
	out[4*s] = t3 - t4
	out[5*s] = t2 - t5
	out[6*s] = t1 - t6
	out[7*s] = t0 - t7
}

// fdct8 is the transpose of idct8.
func fdct8(in []int32, out []int32, s int) {
	_ = in[7*s]
	_ = out[7*s]

	e0 := in[0] + in[7*s]
	o0 := in[0] - in[7*s]
	e1 := in[s] + in[6*s]
	o1 := in[s] - in[6*s]
	e2 := in[2*s] + in[5*s]
	o2 := in[2*s] - in[5*s]
	e3 := in[3*s] + in[4*s]
	o3 := in[3*s] - in[4*s]

	// Even part.
	t0 := e0 + e3
	t3 := e0 - e3
	t1 := e1 + e2
	t2 := e1 - e2
	out[0] = mul(c4s4, t0+t1)
	out[4*s] = mul(c4s4, t0-t1)
	out[2*s] = mul(c6s2, t2) + mul(c2s6, t3)
	out[6*s] = mul(c6s2, t3) - mul(c2s6, t2)

	// Odd part.
	t6 := o1 + o2
	t5 := o1 - o2
	t7 := o0 + mul(c4s4, t6)
	t6 = o0 - mul(c4s4, t6)
	t4 := o3 + mul(c4s4, t5)
	t5 = o3 - mul(c4s4, t5)
	out[s] = mul(c7s1, t4) + mul(c1s7, t7)
	out[7*s] = mul(c7s1, t7) - mul(c1s7, t4)
	out[5*s] = mul(c3s5, t5) + mul(c5s3, t6)
	out[3*s] = mul(c3s5, t6) - mul(c5s3, t5)
}

// ForwardDCT transforms a raster-order residual block into raster-order
// frequency coefficients. The residual is pre-scaled by 4 for precision and
// the result rounded back down.
func ForwardDCT(res *[64]int32, out *[64]int32) {
	var tmp, scaled [64]int32
	for i, v := range res {
		scaled[i] = v << 2
	}
	for row := 0; row < 8; row++ {
		fdct8(scaled[row*8:], tmp[row*8:], 1)
	}
	for col := 0; col < 8; col++ {
		fdct8(tmp[col:], out[col:], 8)
	}
	for i, v := range out {
		out[i] = (v + 2) >> 2
	}
}

// InverseDCT transforms raster-order dequantized coefficients into a
// raster-order residual block.
func InverseDCT(in *[64]int32, out *[64]int32) {
	var tmp [64]int32
	for row := 0; row < 8; row++ {
		idct8(in[row*8:], tmp[row*8:], 1)
	}
	for col := 0; col < 8; col++ {
		idct8(tmp[col:], out[col:], 8)
	}
	for i, v := range out {
		out[i] = (v + 8) >> 4
	}
}

// InverseDCTDC is the inverse transform of a block whose only non-zero
// coefficient is the DC. It matches InverseDCT exactly.
func InverseDCTDC(dc int32, out *[64]int32) {
	v := mul(c4s4, mul(c4s4, dc))
	v = (v + 8) >> 4
	for i := range out {
		out[i] = v
	}
}
