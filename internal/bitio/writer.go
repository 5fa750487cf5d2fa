// Package bitio implements the MSB-first bit writer and reader used by the
// frame coder.
package bitio

// Writer is the bit sink used for frame side information, Huffman trees and
// token codewords.
//
// Bits are packed most-significant first: the first bit written becomes the
// top bit of the first output byte. Codewords are therefore emitted in
// root-to-leaf order. The matching source is Reader.
type Writer struct {
	bits uint64 // pending bits, right-aligned
	used int    // number of pending bits (0..7 between calls)
	buf  []byte // completed bytes
	n    int    // total bits written
}

// NewWriter creates a Writer with room for expectedSize bytes.
func NewWriter(expectedSize int) *Writer {
	if expectedSize < 256 {
		expectedSize = 256
	}
	return &Writer{buf: make([]byte, 0, expectedSize)}
}

// WriteBits writes the low nBits (0..32) of v.
func (bw *Writer) WriteBits(v uint32, nBits int) {
	if nBits <= 0 {
		return
	}
	if nBits > 32 {
		nBits = 32
	}
	bw.bits = bw.bits<<uint(nBits) | uint64(v)&(1<<uint(nBits)-1)
	bw.used += nBits
	bw.n += nBits
	for bw.used >= 8 {
		bw.used -= 8
		bw.buf = append(bw.buf, byte(bw.bits>>uint(bw.used)))
	}
	bw.bits &= 1<<uint(bw.used) - 1
}

// WriteBit writes a single bit.
func (bw *Writer) WriteBit(b bool) {
	if b {
		bw.WriteBits(1, 1)
	} else {
		bw.WriteBits(0, 1)
	}
}

// Finish pads the final partial byte with zero bits and returns the encoded
// bytes. The writer may keep being used afterwards; padding is not undone.
func (bw *Writer) Finish() []byte {
	if bw.used > 0 {
		pad := 8 - bw.used
		bw.buf = append(bw.buf, byte(bw.bits<<uint(pad)))
		bw.n += pad
		bw.bits = 0
		bw.used = 0
	}
	return bw.buf
}

// NumBits returns the number of bits written so far.
func (bw *Writer) NumBits() int {
	return bw.n
}

