// Package huffman builds prefix codes over the 32-symbol token alphabet
// from frequency counts, serializes the code tree to the bitstream and
// decodes symbols with a tree read back from it.
//
// Construction is deterministic: zero frequencies are raised to 1, nodes are
// merged lowest frequency first, and among equal frequencies the most
// recently inserted node (leaves in symbol order, then merged nodes) is
// taken first. The first node taken becomes the zero child of the merge.
// Encoder and decoder trees must agree bit for bit, so this rule is part of
// the stream format.
package huffman

import (
	"container/heap"
	"errors"
	"fmt"

	"github.com/deepteams/framecoder/internal/bitio"
)

const (
	// NumSymbols is the alphabet size.
	NumSymbols = 32
	// ValueBits is the width of a serialized leaf value.
	ValueBits = 5
	// MaxDepth is the deepest tree the reader accepts.
	MaxDepth = 32
	// TreeBits is the serialized size of a tree built by Build.
	TreeBits = NumSymbols*(1+ValueBits) + NumSymbols - 1
)

var (
	// ErrBadHeader reports a malformed serialized tree.
	ErrBadHeader = errors.New("huffman: bad tree header")
	// ErrTreeTooDeep is returned for trees deeper than MaxDepth.
	ErrTreeTooDeep = fmt.Errorf("%w: depth exceeds %d", ErrBadHeader, MaxDepth)
)

// Code is the codeword of one symbol, MSB first, root to leaf.
type Code struct {
	Bits uint32
	Len  uint8
}

// node is a tree node; leaves have value >= 0.
type node struct {
	child [2]int32
	value int16
}

// Table is a prefix code over the token alphabet.
type Table struct {
	nodes []node // nodes[0] is the root
	Codes [NumSymbols]Code
}

// ---------------------------------------------------------------------------
// Priority queue for tree construction
// ---------------------------------------------------------------------------

type heapEntry struct {
	freq uint64
	seq  int
	node int32
}

type nodeHeap []heapEntry

func (h nodeHeap) Len() int { return len(h) }

func (h nodeHeap) Less(i, j int) bool {
	if h[i].freq != h[j].freq {
		return h[i].freq < h[j].freq
	}
	return h[i].seq > h[j].seq
}

func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(x any) { *h = append(*h, x.(heapEntry)) }

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// ---------------------------------------------------------------------------
// Build
// ---------------------------------------------------------------------------

// Build constructs the table for the given symbol frequencies.
func Build(freq *[NumSymbols]uint32) *Table {
	t := &Table{nodes: make([]node, 0, 2*NumSymbols-1)}

	// Leaves occupy nodes[1..NumSymbols]; the root is swapped into slot 0
	// once it is known.
	t.nodes = append(t.nodes, node{})
	h := make(nodeHeap, 0, NumSymbols)
	for sym := 0; sym < NumSymbols; sym++ {
		f := uint64(freq[sym])
		if f == 0 {
			f = 1
		}
		idx := int32(len(t.nodes))
		t.nodes = append(t.nodes, node{child: [2]int32{-1, -1}, value: int16(sym)})
		h = append(h, heapEntry{freq: f, seq: sym, node: idx})
	}
	heap.Init(&h)

	seq := NumSymbols
	for h.Len() > 1 {
		zero := heap.Pop(&h).(heapEntry)
		one := heap.Pop(&h).(heapEntry)
		idx := int32(len(t.nodes))
		t.nodes = append(t.nodes, node{child: [2]int32{zero.node, one.node}, value: -1})
		heap.Push(&h, heapEntry{freq: zero.freq + one.freq, seq: seq, node: idx})
		seq++
	}

	root := h[0].node
	t.nodes[0] = t.nodes[root]
	t.nodes = t.nodes[:len(t.nodes)-1]
	t.assignCodes()
	return t
}

// assignCodes walks the tree and fills Codes.
func (t *Table) assignCodes() {
	type item struct {
		n    int32
		bits uint32
		len  uint8
	}
	stack := make([]item, 1, MaxDepth+1)
	stack[0] = item{}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nd := &t.nodes[it.n]
		if nd.value >= 0 {
			t.Codes[nd.value] = Code{Bits: it.bits, Len: it.len}
			continue
		}
		stack = append(stack,
			item{nd.child[1], it.bits<<1 | 1, it.len + 1},
			item{nd.child[0], it.bits << 1, it.len + 1})
	}
}

// Cost returns the number of bits needed to code freq with t.
func (t *Table) Cost(freq *[NumSymbols]uint32) uint64 {
	var bits uint64
	for i, f := range freq {
		bits += uint64(f) * uint64(t.Codes[i].Len)
	}
	return bits
}

// ---------------------------------------------------------------------------
// Serialization
// ---------------------------------------------------------------------------

// Write serializes the tree in pre-order: a 1 bit and the 5-bit value for
// a leaf, a 0 bit followed by the zero then the one subtree for an
// internal node.
func (t *Table) Write(bw *bitio.Writer) {
	stack := make([]int32, 1, MaxDepth+1)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nd := &t.nodes[n]
		if nd.value >= 0 {
			bw.WriteBits(1<<ValueBits|uint32(nd.value), 1+ValueBits)
			continue
		}
		bw.WriteBit(false)
		stack = append(stack, nd.child[1], nd.child[0])
	}
}

// Read parses a serialized tree. It fails with ErrBadHeader when the stream
// runs out and with ErrTreeTooDeep when a node lies deeper than MaxDepth.
func Read(br *bitio.Reader) (*Table, error) {
	type pending struct {
		n     int32
		depth int
	}
	t := &Table{nodes: make([]node, 1, 2*NumSymbols-1)}
	stack := make([]pending, 1, MaxDepth+1)
	leaves := 0
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.depth > MaxDepth {
			return nil, ErrTreeTooDeep
		}
		bit := br.ReadBit()
		if bit < 0 {
			return nil, fmt.Errorf("%w: stream exhausted", ErrBadHeader)
		}
		if bit == 1 {
			v := br.ReadBits(ValueBits)
			if v < 0 {
				return nil, fmt.Errorf("%w: stream exhausted", ErrBadHeader)
			}
			if leaves++; leaves > NumSymbols {
				return nil, fmt.Errorf("%w: more than %d leaves", ErrBadHeader, NumSymbols)
			}
			t.nodes[p.n] = node{child: [2]int32{-1, -1}, value: int16(v)}
			continue
		}
		zero := int32(len(t.nodes))
		t.nodes = append(t.nodes, node{}, node{})
		t.nodes[p.n] = node{child: [2]int32{zero, zero + 1}, value: -1}
		stack = append(stack, pending{zero + 1, p.depth + 1}, pending{zero, p.depth + 1})
	}
	t.assignCodes()
	return t, nil
}

// ---------------------------------------------------------------------------
// Symbol coding
// ---------------------------------------------------------------------------

// Encode writes the codeword of sym.
func (t *Table) Encode(bw *bitio.Writer, sym int) {
	c := t.Codes[sym]
	bw.WriteBits(c.Bits, int(c.Len))
}

// Decode reads one symbol. It returns -1 when the stream is exhausted.
func (t *Table) Decode(br *bitio.Reader) int {
	n := int32(0)
	for {
		nd := &t.nodes[n]
		if nd.value >= 0 {
			return int(nd.value)
		}
		bit := br.ReadBit()
		if bit < 0 {
			return -1
		}
		n = nd.child[bit]
	}
}
