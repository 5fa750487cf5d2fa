package dsp

import (
	"math/rand"
	"testing"
)

func randPlane(rng *rand.Rand, size int) []byte {
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = byte(rng.Intn(256))
	}
	return buf
}

func TestSAD8x8(t *testing.T) {
	const stride = 24
	src := make([]byte, 8*stride)
	ref := make([]byte, 8*stride)
	if got := SAD8x8(src, stride, ref, stride); got != 0 {
		t.Fatalf("identical blocks: SAD = %d, want 0", got)
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			src[y*stride+x] = 10
			ref[y*stride+x] = 13
		}
	}
	// Samples outside the 8x8 window are ignored.
	src[8] = 200
	if got := SAD8x8(src, stride, ref, stride); got != 64*3 {
		t.Errorf("SAD = %d, want %d", got, 64*3)
	}
}

func TestSAD8x8ThresAgrees(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for iter := 0; iter < 500; iter++ {
		src := randPlane(rng, 8*16)
		ref := randPlane(rng, 8*16)
		full := SAD8x8(src, 16, ref, 16)
		thres := rng.Intn(full + 100)
		got := SAD8x8Thres(src, 16, ref, 16, thres)
		if full <= thres && got != full {
			t.Fatalf("iter %d: got %d, want %d (thres %d)", iter, got, full, thres)
		}
		if full > thres && got <= thres {
			t.Fatalf("iter %d: got %d <= thres %d but full SAD is %d", iter, got, thres, full)
		}
	}
}

func TestSAD8x8HalfSameRef(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	src := randPlane(rng, 8*8)
	ref := randPlane(rng, 8*8)
	if a, b := SAD8x8Half(src, 8, ref, ref, 8), SAD8x8(src, 8, ref, 8); a != b {
		t.Errorf("half-pel with equal pointers = %d, full-pel = %d", a, b)
	}
}

func TestInterErrorIgnoresDCOffset(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	src := make([]byte, 64)
	ref := make([]byte, 64)
	for i := range src {
		ref[i] = byte(rng.Intn(200))
		src[i] = ref[i] + 40
	}
	if got := InterError8x8(src, 8, ref, nil, 8); got != 0 {
		t.Errorf("constant offset: error = %d, want 0", got)
	}
	src[0] += 8
	if got := InterError8x8(src, 8, ref, nil, 8); got <= 0 {
		t.Errorf("perturbed block: error = %d, want > 0", got)
	}
}

func TestInterErrorHalfPel(t *testing.T) {
	src := make([]byte, 64)
	a := make([]byte, 64)
	b := make([]byte, 64)
	for i := range src {
		a[i] = byte(i)
		b[i] = byte(i + 2)
		src[i] = byte(i + 1)
	}
	if got := InterError8x8(src, 8, a, b, 8); got != 0 {
		t.Errorf("error = %d, want 0", got)
	}
}

func TestIntraError(t *testing.T) {
	flat := make([]byte, 64)
	for i := range flat {
		flat[i] = 77
	}
	if got := IntraError8x8(flat, 8); got != 0 {
		t.Errorf("flat block: error = %d, want 0", got)
	}
	// Half the samples at 0 and half at 16: variance 64 per sample.
	split := make([]byte, 64)
	for i := 32; i < 64; i++ {
		split[i] = 16
	}
	if got := IntraError8x8(split, 8); got != 64*64 {
		t.Errorf("split block: error = %d, want %d", got, 64*64)
	}
}

func TestPredictReconstruct(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	src := randPlane(rng, 64)
	ref := randPlane(rng, 64)
	var pred [64]byte
	var res [64]int32
	PredictInter(ref, nil, 8, &pred)
	Residual(src, 8, &pred, &res)
	dst := make([]byte, 64)
	Reconstruct(&pred, &res, dst, 8)
	for i := range src {
		if dst[i] != src[i] {
			t.Fatalf("sample %d = %d, want %d", i, dst[i], src[i])
		}
	}

	PredictIntra(&pred)
	for i, v := range pred {
		if v != IntraBias {
			t.Fatalf("intra pred[%d] = %d", i, v)
		}
	}
	if Clip8(-5) != 0 || Clip8(300) != 255 || Clip8(99) != 99 {
		t.Error("Clip8 does not clamp to [0,255]")
	}
}
