// Package stats persists token statistics so that a later run can seed its
// Huffman tables from them.
//
// A statistics file is the 4-byte magic "FCST", a version byte, then a zstd
// stream holding every counter of the tally as a little-endian uint32 in
// table-major order.
package stats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/deepteams/framecoder/internal/token"
)

const (
	magic   = "FCST"
	version = 1

	payloadSize = token.NumTables * token.NumTokens * 4
)

var (
	// ErrBadMagic is returned for data that is not a statistics file.
	ErrBadMagic = errors.New("stats: not a statistics file")
	// ErrVersion is returned for files written by an unknown version.
	ErrVersion = errors.New("stats: unsupported version")
	// ErrTruncated is returned when the payload is shorter than a tally.
	ErrTruncated = errors.New("stats: truncated payload")
)

// Write serializes t to w.
func Write(w io.Writer, t *token.Tally) error {
	if _, err := io.WriteString(w, magic); err != nil {
		return err
	}
	if _, err := w.Write([]byte{version}); err != nil {
		return err
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderConcurrency(1), zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return err
	}
	if err := binary.Write(enc, binary.LittleEndian, t); err != nil {
		enc.Close()
		return fmt.Errorf("stats: write: %w", err)
	}
	return enc.Close()
}

// Read parses a tally written by Write.
func Read(r io.Reader) (*token.Tally, error) {
	var hdr [len(magic) + 1]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadMagic, err)
	}
	if string(hdr[:len(magic)]) != magic {
		return nil, ErrBadMagic
	}
	if hdr[len(magic)] != version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, hdr[len(magic)])
	}

	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	plain, err := io.ReadAll(io.LimitReader(dec, payloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("stats: decompress: %w", err)
	}
	if len(plain) != payloadSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncated, len(plain))
	}
	t := new(token.Tally)
	if err := binary.Read(bytes.NewReader(plain), binary.LittleEndian, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Save writes t to the named file.
func Save(path string, t *token.Tally) error {
	var buf bytes.Buffer
	if err := Write(&buf, t); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Load reads the named statistics file.
func Load(path string) (*token.Tally, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
