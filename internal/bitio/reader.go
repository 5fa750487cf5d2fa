package bitio

// MaxReadBits is the largest field ReadBits accepts.
const MaxReadBits = 31

// Reader is the bit source matching Writer (most-significant bit first).
//
// Reads past the end of the data return -1 and latch the end-of-stream
// state; every later read also returns -1.
type Reader struct {
	buf []byte
	pos int // bit position
	end int // total bits
	eos bool
}

// NewReader creates a Reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{buf: data, end: len(data) * 8}
}

// ReadBits reads nBits (0..MaxReadBits) and returns them as a non-negative
// value, or -1 if the stream does not hold that many bits.
func (br *Reader) ReadBits(nBits int) int32 {
	if br.eos || nBits < 0 || nBits > MaxReadBits {
		br.eos = true
		return -1
	}
	if br.pos+nBits > br.end {
		br.pos = br.end
		br.eos = true
		return -1
	}
	var v uint32
	for nBits > 0 {
		byteIdx := br.pos >> 3
		bitOff := br.pos & 7
		avail := 8 - bitOff
		take := avail
		if take > nBits {
			take = nBits
		}
		chunk := uint32(br.buf[byteIdx]>>uint(avail-take)) & (1<<uint(take) - 1)
		v = v<<uint(take) | chunk
		br.pos += take
		nBits -= take
	}
	return int32(v)
}

// ReadBit reads a single bit, returning 0, 1 or -1.
func (br *Reader) ReadBit() int32 {
	return br.ReadBits(1)
}

// IsEndOfStream reports whether a read ran past the end of the data.
func (br *Reader) IsEndOfStream() bool {
	return br.eos
}

