// Package container implements the framecoder stream file: a small fixed
// header followed by RIFF-style chunks, one "FRAM" chunk per coded frame.
//
//	offset  size  field
//	0       4     "FCVS"
//	4       2     version (little-endian)
//	6       2     width
//	8       2     height
//	10      2     reserved, zero
//	12      ...   chunks: FourCC, uint32 payload size, payload, pad to even
//
// Readers skip chunks they do not recognise.
package container

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// FourCC creates a FourCC value from four bytes (little-endian).
func FourCC(a, b, c, d byte) uint32 {
	return uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24
}

var (
	FourCCStream = FourCC('F', 'C', 'V', 'S')
	FourCCFrame  = FourCC('F', 'R', 'A', 'M')
)

const (
	Version          = 1
	StreamHeaderSize = 12
	ChunkHeaderSize  = 8
	MaxDimension     = 1<<16 - 1
	MaxChunkPayload  = 1 << 28
)

var (
	ErrInvalidStream = errors.New("container: invalid stream header")
	ErrVersion       = errors.New("container: unsupported version")
	ErrTruncated     = errors.New("container: truncated data")
	ErrTooLarge      = errors.New("container: chunk too large")
	ErrInvalidSize   = errors.New("container: invalid frame dimensions")
)

// Header describes the coded stream.
type Header struct {
	Version int
	Width   int
	Height  int
}

func (h Header) marshal() ([]byte, error) {
	if h.Width <= 0 || h.Height <= 0 || h.Width > MaxDimension || h.Height > MaxDimension {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, h.Width, h.Height)
	}
	buf := make([]byte, StreamHeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], FourCCStream)
	binary.LittleEndian.PutUint16(buf[4:6], Version)
	binary.LittleEndian.PutUint16(buf[6:8], uint16(h.Width))
	binary.LittleEndian.PutUint16(buf[8:10], uint16(h.Height))
	return buf, nil
}

// ParseHeader validates the fixed stream header at the start of data.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < StreamHeaderSize {
		return Header{}, ErrTruncated
	}
	if binary.LittleEndian.Uint32(data[0:4]) != FourCCStream {
		return Header{}, ErrInvalidStream
	}
	h := Header{
		Version: int(binary.LittleEndian.Uint16(data[4:6])),
		Width:   int(binary.LittleEndian.Uint16(data[6:8])),
		Height:  int(binary.LittleEndian.Uint16(data[8:10])),
	}
	if h.Version != Version {
		return Header{}, fmt.Errorf("%w: %d", ErrVersion, h.Version)
	}
	if h.Width == 0 || h.Height == 0 {
		return Header{}, ErrInvalidSize
	}
	return h, nil
}

// PaddedSize returns the payload size padded to an even number of bytes.
func PaddedSize(size uint32) uint32 {
	return size + (size & 1)
}

// FourCCString returns a human-readable string for a FourCC value.
func FourCCString(fourcc uint32) string {
	b := [4]byte{
		byte(fourcc),
		byte(fourcc >> 8),
		byte(fourcc >> 16),
		byte(fourcc >> 24),
	}
	return string(b[:])
}
