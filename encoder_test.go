package framecoder

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math/rand"
	"testing"
)

// movingFrame renders a smooth pattern translated by (dx, dy).
func movingFrame(w, h, dx, dy int) *image.YCbCr {
	f := NewFrame(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			xx, yy := x+dx, y+dy
			f.Y[f.YOffset(x, y)] = byte((xx*3 + yy*5 + (xx*yy)/7) & 0xff)
		}
	}
	for y := 0; y < h/2; y++ {
		for x := 0; x < w/2; x++ {
			f.Cb[y*f.CStride+x] = byte(96 + (x+dx/2)&31)
			f.Cr[y*f.CStride+x] = byte(160 - (y+dy/2)&31)
		}
	}
	return f
}

func sameImage(a, b *image.YCbCr) bool {
	return bytes.Equal(a.Y, b.Y) && bytes.Equal(a.Cb, b.Cb) && bytes.Equal(a.Cr, b.Cr)
}

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	if err := validateOptions(o); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if o.Quality != 40 || o.KeyInterval != 120 || o.GoldenInterval != 30 {
		t.Errorf("unexpected defaults %+v", o)
	}
	if o.EOBRuns || o.SkipUnchanged || o.TableMode != TablesLive {
		t.Errorf("optional features on by default: %+v", o)
	}
}

func TestValidateOptions(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Options)
		want error
	}{
		{"quality-low", func(o *Options) { o.Quality = -1 }, ErrInvalidQuality},
		{"quality-high", func(o *Options) { o.Quality = 64 }, ErrInvalidQuality},
		{"search", func(o *Options) { o.SearchMethod = 7 }, nil},
		{"tables", func(o *Options) { o.TableMode = -1 }, nil},
		{"golden", func(o *Options) { o.GoldenInterval = -1 }, nil},
		{"key", func(o *Options) { o.KeyInterval = -5 }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			tt.mod(o)
			err := validateOptions(o)
			if err == nil {
				t.Fatal("invalid options accepted")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if _, err := NewEncoder(32, 32, o); err == nil {
				t.Error("NewEncoder accepted invalid options")
			}
		})
	}
}

func TestParseEnums(t *testing.T) {
	for _, m := range []SearchMethod{SearchStep, SearchExhaustive} {
		if got, err := ParseSearchMethod(m.String()); err != nil || got != m {
			t.Errorf("ParseSearchMethod(%q) = %v, %v", m, got, err)
		}
	}
	for _, m := range []TableMode{TablesLive, TablesPrevious} {
		if got, err := ParseTableMode(m.String()); err != nil || got != m {
			t.Errorf("ParseTableMode(%q) = %v, %v", m, got, err)
		}
	}
	if _, err := ParseSearchMethod("diamond"); err == nil {
		t.Error("unknown search method accepted")
	}
	if _, err := ParseTableMode("static"); err == nil {
		t.Error("unknown table mode accepted")
	}
	if ParseLogLevel("warn") != LevelWarn {
		t.Error("ParseLogLevel(warn)")
	}
}

func TestInvalidDimensions(t *testing.T) {
	for _, d := range [][2]int{{0, 16}, {16, 0}, {24, 16}, {16, 40}, {-16, 16}, {32768, 16}} {
		if _, err := NewEncoder(d[0], d[1], nil); !errors.Is(err, ErrInvalidDimensions) {
			t.Errorf("NewEncoder(%d, %d): err = %v", d[0], d[1], err)
		}
		if _, err := NewDecoder(d[0], d[1], nil); !errors.Is(err, ErrInvalidDimensions) {
			t.Errorf("NewDecoder(%d, %d): err = %v", d[0], d[1], err)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	const w, h = 64, 48
	tests := []struct {
		name string
		opts func() *Options
	}{
		{"default", DefaultOptions},
		{"exhaustive", func() *Options {
			o := DefaultOptions()
			o.SearchMethod = SearchExhaustive
			o.GoldenInterval = 2
			return o
		}},
		{"skip-eob", func() *Options {
			o := DefaultOptions()
			o.SkipUnchanged = true
			o.EOBRuns = true
			o.TableMode = TablesPrevious
			return o
		}},
		{"plain", func() *Options {
			o := DefaultOptions()
			o.FourMV = false
			o.Golden = false
			o.KeyInterval = 3
			return o
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := NewEncoder(w, h, tt.opts())
			if err != nil {
				t.Fatal(err)
			}
			defer enc.Close()
			dec, err := NewDecoder(w, h, nil)
			if err != nil {
				t.Fatal(err)
			}
			defer dec.Close()

			for i := 0; i < 6; i++ {
				pkt, err := enc.Encode(movingFrame(w, h, 2*i, i))
				if err != nil {
					t.Fatalf("frame %d: %v", i, err)
				}
				if pkt.Index != i {
					t.Errorf("Index = %d, want %d", pkt.Index, i)
				}
				hdr, err := ParseFrameHeader(pkt.Data)
				if err != nil {
					t.Fatal(err)
				}
				if hdr.Key != pkt.Key || hdr.Quality != pkt.Quality || hdr.GoldenRefresh != pkt.GoldenRefresh {
					t.Errorf("frame %d: header %+v does not match packet", i, hdr)
				}
				img, err := dec.Decode(pkt.Data)
				if err != nil {
					t.Fatalf("frame %d: decode: %v", i, err)
				}
				if !sameImage(img, enc.Reconstruction()) {
					t.Fatalf("frame %d: decoded image differs from reconstruction", i)
				}
			}
		})
	}
}

func TestKeyAndGoldenIntervals(t *testing.T) {
	o := DefaultOptions()
	o.KeyInterval = 4
	o.GoldenInterval = 3
	enc, err := NewEncoder(32, 32, o)
	if err != nil {
		t.Fatal(err)
	}
	defer enc.Close()

	var keys, golden []bool
	for i := 0; i < 10; i++ {
		var fo *FrameOptions
		if i == 6 {
			fo = &FrameOptions{ForceKey: true}
		}
		pkt, err := enc.EncodeFrame(movingFrame(32, 32, i, 0), fo)
		if err != nil {
			t.Fatal(err)
		}
		keys = append(keys, pkt.Key)
		golden = append(golden, pkt.GoldenRefresh)
	}
	wantKeys := []bool{true, false, false, false, true, false, true, false, false, false}
	wantGolden := []bool{true, false, false, true, true, false, true, false, false, true}
	for i := range wantKeys {
		if keys[i] != wantKeys[i] {
			t.Errorf("frame %d: key = %v, want %v", i, keys[i], wantKeys[i])
		}
		if golden[i] != wantGolden[i] {
			t.Errorf("frame %d: golden = %v, want %v", i, golden[i], wantGolden[i])
		}
	}
}

func TestQualityControl(t *testing.T) {
	enc, err := NewEncoder(32, 32, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer enc.Close()
	if err := enc.SetQuality(12); err != nil {
		t.Fatal(err)
	}
	pkt, err := enc.Encode(movingFrame(32, 32, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if pkt.Quality != 12 {
		t.Errorf("Quality = %d, want 12", pkt.Quality)
	}
	if err := enc.SetQuality(64); !errors.Is(err, ErrInvalidQuality) {
		t.Errorf("SetQuality(64): err = %v", err)
	}

	o := DefaultOptions()
	o.FixedQuality = true
	o.Quality = 50
	fixed, err := NewEncoder(32, 32, o)
	if err != nil {
		t.Fatal(err)
	}
	defer fixed.Close()
	if err := fixed.SetQuality(5); err != nil {
		t.Fatal(err)
	}
	if fixed.Quality() != 50 {
		t.Errorf("fixed quality changed to %d", fixed.Quality())
	}
}

func TestUpdateMask(t *testing.T) {
	enc, err := NewEncoder(32, 32, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer enc.Close()
	if _, err := enc.Encode(movingFrame(32, 32, 0, 0)); err != nil {
		t.Fatal(err)
	}
	update := make([]bool, enc.Blocks())
	pkt, err := enc.EncodeFrame(movingFrame(32, 32, 5, 5), &FrameOptions{Update: update})
	if err != nil {
		t.Fatal(err)
	}
	if pkt.Stats.CodedBlocks != 0 || pkt.Stats.Blocks != enc.Blocks() {
		t.Errorf("coded %d of %d blocks with an empty mask", pkt.Stats.CodedBlocks, pkt.Stats.Blocks)
	}
	if _, err := enc.EncodeFrame(movingFrame(32, 32, 0, 0), &FrameOptions{Update: update[:3]}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("short mask: err = %v", err)
	}
}

func TestEncoderErrors(t *testing.T) {
	enc, err := NewEncoder(32, 32, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := enc.Encode(NewFrame(16, 16)); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("small frame: err = %v", err)
	}
	if _, err := enc.Encode(nil); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("nil frame: err = %v", err)
	}
	i444 := image.NewYCbCr(image.Rect(0, 0, 32, 32), image.YCbCrSubsampleRatio444)
	if _, err := enc.Encode(i444); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("4:4:4 frame: err = %v", err)
	}
	enc.Close()
	if _, err := enc.Encode(NewFrame(32, 32)); !errors.Is(err, ErrCannotProceed) {
		t.Errorf("after Close: err = %v", err)
	}
}

func TestReconstructionAfterClose(t *testing.T) {
	enc, err := NewEncoder(32, 32, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := enc.Encode(movingFrame(32, 32, 0, 0)); err != nil {
		t.Fatal(err)
	}
	if enc.Reconstruction() == nil {
		t.Fatal("Reconstruction() = nil before Close")
	}
	enc.Close()
	if rec := enc.Reconstruction(); rec != nil {
		t.Fatalf("Reconstruction() after Close = %v, want nil", rec.Bounds())
	}
}

func TestDecoderErrors(t *testing.T) {
	enc, err := NewEncoder(32, 32, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer enc.Close()
	key, err := enc.Encode(movingFrame(32, 32, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	inter, err := enc.Encode(movingFrame(32, 32, 2, 0))
	if err != nil {
		t.Fatal(err)
	}

	dec, err := NewDecoder(32, 32, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()
	if _, err := dec.Decode(inter.Data); !errors.Is(err, ErrNoReference) {
		t.Errorf("inter first: err = %v", err)
	}
	if _, err := dec.Decode(nil); !errors.Is(err, ErrCorrupt) {
		t.Errorf("empty: err = %v", err)
	}
	if _, err := dec.Decode(key.Data[:len(key.Data)/3]); !errors.Is(err, ErrCorrupt) {
		t.Errorf("truncated: err = %v", err)
	}
	if _, err := ParseFrameHeader(nil); !errors.Is(err, ErrCorrupt) {
		t.Errorf("ParseFrameHeader(nil): err = %v", err)
	}
}

func TestStatisticsSeed(t *testing.T) {
	enc, err := NewEncoder(32, 32, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, err := enc.Encode(movingFrame(32, 32, i, i)); err != nil {
			t.Fatal(err)
		}
	}
	st := enc.Statistics()
	enc.Close()
	if st.Tokens() == 0 {
		t.Fatal("no tokens counted")
	}

	var buf bytes.Buffer
	n, err := st.WriteTo(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(buf.Len()) {
		t.Errorf("WriteTo = %d, wrote %d", n, buf.Len())
	}
	seed, err := ReadStatistics(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if seed.Tokens() != st.Tokens() {
		t.Errorf("Tokens = %d after reload, want %d", seed.Tokens(), st.Tokens())
	}

	o := DefaultOptions()
	o.TableMode = TablesPrevious
	o.Seed = seed
	seeded, err := NewEncoder(32, 32, o)
	if err != nil {
		t.Fatal(err)
	}
	defer seeded.Close()
	dec, err := NewDecoder(32, 32, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()
	for i := 0; i < 3; i++ {
		pkt, err := seeded.Encode(movingFrame(32, 32, i, i))
		if err != nil {
			t.Fatal(err)
		}
		img, err := dec.Decode(pkt.Data)
		if err != nil {
			t.Fatal(err)
		}
		if !sameImage(img, seeded.Reconstruction()) {
			t.Fatalf("frame %d: seeded stream does not round-trip", i)
		}
	}

	merged := &Statistics{}
	merged.Merge(st)
	merged.Merge(seed)
	if merged.Tokens() != 2*st.Tokens() {
		t.Errorf("merged Tokens = %d, want %d", merged.Tokens(), 2*st.Tokens())
	}
}

func TestFrameFromImage(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	img := image.NewNRGBA(image.Rect(0, 0, 32, 16))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = byte(rng.Intn(256)), byte(rng.Intn(256)), byte(rng.Intn(256)), 255
	}
	f := FrameFromImage(img)
	if f.Rect.Dx() != 32 || f.Rect.Dy() != 16 || f.SubsampleRatio != image.YCbCrSubsampleRatio420 {
		t.Fatalf("unexpected frame %v %v", f.Rect, f.SubsampleRatio)
	}
	c := img.NRGBAAt(3, 5)
	wantY, _, _ := color.RGBToYCbCr(c.R, c.G, c.B)
	if got := f.Y[f.YOffset(3, 5)]; int(got)-int(wantY) > 1 || int(wantY)-int(got) > 1 {
		t.Errorf("Y(3,5) = %d, want %d", got, wantY)
	}

	enc, err := NewEncoder(32, 16, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer enc.Close()
	if _, err := enc.Encode(f); err != nil {
		t.Fatal(err)
	}
}

func TestSubImageFrame(t *testing.T) {
	big := movingFrame(64, 64, 0, 0)
	sub := big.SubImage(image.Rect(16, 32, 48, 64)).(*image.YCbCr)
	enc, err := NewEncoder(32, 32, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer enc.Close()
	if _, err := enc.Encode(sub); err != nil {
		t.Fatal(err)
	}
	rec := enc.Reconstruction()
	if rec.Rect != image.Rect(0, 0, 32, 32) {
		t.Errorf("reconstruction bounds %v", rec.Rect)
	}
}
