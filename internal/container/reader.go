package container

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Chunk represents a single chunk with its FourCC tag and payload.
type Chunk struct {
	FourCC  uint32
	Payload []byte
}

// Reader reads frames from a stream produced by Writer.
type Reader struct {
	r      io.Reader
	header Header
}

// NewReader reads and validates the stream header.
func NewReader(r io.Reader) (*Reader, error) {
	buf := make([]byte, StreamHeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrTruncated
		}
		return nil, fmt.Errorf("container: reading header: %w", err)
	}
	h, err := ParseHeader(buf)
	if err != nil {
		return nil, err
	}
	return &Reader{r: r, header: h}, nil
}

// Header returns the parsed stream header.
func (cr *Reader) Header() Header { return cr.header }

// ReadChunk reads the next chunk of any type. It returns io.EOF at a clean
// end of stream.
func (cr *Reader) ReadChunk() (Chunk, error) {
	var hdr [ChunkHeaderSize]byte
	n, err := io.ReadFull(cr.r, hdr[:])
	if err != nil {
		if n == 0 && errors.Is(err, io.EOF) {
			return Chunk{}, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Chunk{}, ErrTruncated
		}
		return Chunk{}, fmt.Errorf("container: reading chunk header: %w", err)
	}

	fourcc := binary.LittleEndian.Uint32(hdr[0:4])
	size := binary.LittleEndian.Uint32(hdr[4:8])
	if size > MaxChunkPayload {
		return Chunk{}, ErrTooLarge
	}

	payload := make([]byte, PaddedSize(size))
	if _, err := io.ReadFull(cr.r, payload); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Chunk{}, ErrTruncated
		}
		return Chunk{}, fmt.Errorf("container: reading chunk payload: %w", err)
	}
	return Chunk{FourCC: fourcc, Payload: payload[:size]}, nil
}

// Next returns the next frame payload, skipping other chunks. It returns
// io.EOF when the stream ends.
func (cr *Reader) Next() ([]byte, error) {
	for {
		c, err := cr.ReadChunk()
		if err != nil {
			return nil, err
		}
		if c.FourCC == FourCCFrame {
			return c.Payload, nil
		}
	}
}
