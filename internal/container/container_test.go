package container

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	frames := [][]byte{
		{1, 2, 3},
		{},
		{4, 5, 6, 7},
		bytes.Repeat([]byte{0xaa}, 1001),
	}

	var buf bytes.Buffer
	w, err := NewWriter(&buf, 320, 240)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	for i, f := range frames {
		if err := w.WriteFrame(f); err != nil {
			t.Fatalf("WriteFrame(%d): %v", i, err)
		}
	}
	if w.Frames() != len(frames) {
		t.Fatalf("Frames() = %d, want %d", w.Frames(), len(frames))
	}
	if w.Bytes() != int64(buf.Len()) {
		t.Fatalf("Bytes() = %d, buffer holds %d", w.Bytes(), buf.Len())
	}
	if buf.Len()%2 != 0 {
		t.Fatalf("stream length %d is not even", buf.Len())
	}

	r, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if h := r.Header(); h.Width != 320 || h.Height != 240 || h.Version != Version {
		t.Fatalf("header = %+v", h)
	}
	for i, want := range frames {
		got, err := r.Next()
		if err != nil {
			t.Fatalf("Next(%d): %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("frame %d: got %d bytes, want %d", i, len(got), len(want))
		}
	}
	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestUnknownChunksSkipped(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, 16, 16)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteChunk(FourCC('N', 'O', 'T', 'E'), []byte("hello")); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteFrame([]byte{9}); err != nil {
		t.Fatal(err)
	}
	if w.Frames() != 1 {
		t.Fatalf("Frames() = %d, want 1", w.Frames())
	}

	r, err := NewReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	got, err := r.Next()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte{9}) {
		t.Fatalf("got %v", got)
	}
}

func TestHeaderErrors(t *testing.T) {
	good, err := Header{Width: 16, Height: 16}.marshal()
	if err != nil {
		t.Fatal(err)
	}

	badMagic := append([]byte(nil), good...)
	copy(badMagic, "JUNK")
	badVersion := append([]byte(nil), good...)
	badVersion[4] = 9
	zeroWidth := append([]byte(nil), good...)
	zeroWidth[6], zeroWidth[7] = 0, 0

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short", good[:5], ErrTruncated},
		{"magic", badMagic, ErrInvalidStream},
		{"version", badVersion, ErrVersion},
		{"width", zeroWidth, ErrInvalidSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewReader(bytes.NewReader(tt.data)); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestWriterRejectsBadSize(t *testing.T) {
	for _, size := range [][2]int{{0, 16}, {16, -1}, {MaxDimension + 1, 16}} {
		if _, err := NewWriter(io.Discard, size[0], size[1]); !errors.Is(err, ErrInvalidSize) {
			t.Fatalf("%v: got %v, want ErrInvalidSize", size, err)
		}
	}
}

func TestTruncatedFrame(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, 16, 16)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteFrame([]byte{1, 2, 3, 4}); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()[:buf.Len()-2]

	r, err := NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Next(); !errors.Is(err, ErrTruncated) {
		t.Fatalf("got %v, want ErrTruncated", err)
	}

	r, err = NewReader(bytes.NewReader(buf.Bytes()[:StreamHeaderSize+3]))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.ReadChunk(); !errors.Is(err, ErrTruncated) {
		t.Fatalf("partial chunk header: got %v, want ErrTruncated", err)
	}
}

func TestFourCCString(t *testing.T) {
	if s := FourCCString(FourCCFrame); s != "FRAM" {
		t.Fatalf("FourCCString = %q", s)
	}
}
