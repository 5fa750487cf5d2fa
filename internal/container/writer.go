package container

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Writer emits a stream header followed by one chunk per frame.
type Writer struct {
	w      io.Writer
	frames int
	bytes  int64
}

// NewWriter writes the stream header for a width x height sequence.
func NewWriter(w io.Writer, width, height int) (*Writer, error) {
	hdr, err := Header{Width: width, Height: height}.marshal()
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(hdr); err != nil {
		return nil, fmt.Errorf("container: writing header: %w", err)
	}
	return &Writer{w: w, bytes: StreamHeaderSize}, nil
}

// WriteFrame appends one coded frame.
func (cw *Writer) WriteFrame(data []byte) error {
	return cw.WriteChunk(FourCCFrame, data)
}

// WriteChunk appends an arbitrary chunk.
func (cw *Writer) WriteChunk(fourcc uint32, payload []byte) error {
	if len(payload) > MaxChunkPayload {
		return ErrTooLarge
	}
	var hdr [ChunkHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:4], fourcc)
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(len(payload)))
	if _, err := cw.w.Write(hdr[:]); err != nil {
		return fmt.Errorf("container: writing chunk header: %w", err)
	}
	if _, err := cw.w.Write(payload); err != nil {
		return fmt.Errorf("container: writing chunk payload: %w", err)
	}
	n := int64(ChunkHeaderSize + len(payload))
	if len(payload)&1 != 0 {
		if _, err := cw.w.Write([]byte{0}); err != nil {
			return fmt.Errorf("container: writing chunk padding: %w", err)
		}
		n++
	}
	cw.bytes += n
	if fourcc == FourCCFrame {
		cw.frames++
	}
	return nil
}

// Frames returns the number of frames written.
func (cw *Writer) Frames() int { return cw.frames }

// Bytes returns the total number of bytes written, header included.
func (cw *Writer) Bytes() int64 { return cw.bytes }
