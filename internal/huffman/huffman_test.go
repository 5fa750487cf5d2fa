package huffman

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/deepteams/framecoder/internal/bitio"
)

func randFreq(rng *rand.Rand) *[NumSymbols]uint32 {
	var f [NumSymbols]uint32
	k := []int{1, 3, 10, 1000, 1 << 20}[rng.Intn(5)]
	for i := range f {
		if rng.Intn(10) < 7 {
			f[i] = uint32(rng.Intn(k + 1))
		}
	}
	return &f
}

func isPrefix(a, b Code) bool {
	if a.Len > b.Len {
		return false
	}
	return b.Bits>>(b.Len-a.Len) == a.Bits
}

func TestBuildPrefixCode(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for iter := 0; iter < 500; iter++ {
		tab := Build(randFreq(rng))
		// Kraft sum of a full binary tree is exactly 1.
		var kraft uint64
		for i, a := range tab.Codes {
			if a.Len == 0 || a.Len > MaxDepth {
				t.Fatalf("iter %d: symbol %d has length %d", iter, i, a.Len)
			}
			kraft += 1 << (MaxDepth - a.Len)
			for j, b := range tab.Codes {
				if i != j && isPrefix(a, b) {
					t.Fatalf("iter %d: code of %d is a prefix of %d", iter, i, j)
				}
			}
		}
		if kraft != 1<<MaxDepth {
			t.Fatalf("iter %d: Kraft sum %d, want %d", iter, kraft, uint64(1)<<MaxDepth)
		}
	}
}

func TestBuildMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for iter := 0; iter < 500; iter++ {
		f := randFreq(rng)
		tab := Build(f)
		for i := range f {
			for j := range f {
				fi, fj := max(f[i], 1), max(f[j], 1)
				if fi > fj && tab.Codes[i].Len > tab.Codes[j].Len {
					t.Fatalf("iter %d: freq %d->len %d but freq %d->len %d",
						iter, fi, tab.Codes[i].Len, fj, tab.Codes[j].Len)
				}
			}
		}
	}
}

// listBuild is the sorted-list construction: the merged node is inserted in
// front of every node of equal or greater frequency.
func listBuild(freq *[NumSymbols]uint32) [NumSymbols]Code {
	type lnode struct {
		freq      uint64
		sym       int
		zero, one *lnode
	}
	var list []*lnode
	insert := func(n *lnode) {
		i := 0
		for i < len(list) && list[i].freq < n.freq {
			i++
		}
		list = append(list, nil)
		copy(list[i+1:], list[i:])
		list[i] = n
	}
	for s, f := range freq {
		insert(&lnode{freq: max(uint64(f), 1), sym: s})
	}
	for len(list) > 1 {
		a, b := list[0], list[1]
		list = list[2:]
		insert(&lnode{freq: a.freq + b.freq, sym: -1, zero: a, one: b})
	}
	var codes [NumSymbols]Code
	var walk func(n *lnode, c Code)
	walk = func(n *lnode, c Code) {
		if n.sym >= 0 {
			codes[n.sym] = c
			return
		}
		walk(n.zero, Code{c.Bits << 1, c.Len + 1})
		walk(n.one, Code{c.Bits<<1 | 1, c.Len + 1})
	}
	walk(list[0], Code{})
	return codes
}

func TestBuildMatchesSortedListMerge(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for iter := 0; iter < 1000; iter++ {
		f := randFreq(rng)
		if got, want := Build(f).Codes, listBuild(f); got != want {
			t.Fatalf("iter %d: freq %v\n got %v\nwant %v", iter, *f, got, want)
		}
	}
}

func TestBuildTieBreak(t *testing.T) {
	var zero [NumSymbols]uint32
	tab := Build(&zero)
	for i, c := range tab.Codes {
		if c.Len != 5 {
			t.Fatalf("symbol %d: length %d, want 5", i, c.Len)
		}
	}
	if tab.Codes[0].Bits != 0x15 || tab.Codes[31].Bits != 0x0a {
		t.Errorf("codes[0]=%05b codes[31]=%05b, want 10101 and 01010",
			tab.Codes[0].Bits, tab.Codes[31].Bits)
	}

	var skewed [NumSymbols]uint32
	skewed[0] = 1000
	tab = Build(&skewed)
	if c := tab.Codes[0]; c.Len != 1 || c.Bits != 1 {
		t.Errorf("dominant symbol code = %+v, want {Bits:1 Len:1}", c)
	}
}

func TestTreeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for iter := 0; iter < 200; iter++ {
		tab := Build(randFreq(rng))
		bw := bitio.NewWriter(64)
		tab.Write(bw)
		bw.WriteBits(0x2b, 6) // trailing data must be left unread
		br := bitio.NewReader(bw.Finish())
		got, err := Read(br)
		if err != nil {
			t.Fatalf("iter %d: Read: %v", iter, err)
		}
		if got.Codes != tab.Codes {
			t.Fatalf("iter %d: codes differ after round trip", iter)
		}
		if v := br.ReadBits(6); v != 0x2b {
			t.Fatalf("iter %d: trailing bits = %#x, want 0x2b", iter, v)
		}
	}
}

func TestEncodeDecode(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	f := randFreq(rng)
	tab := Build(f)
	syms := make([]int, 5000)
	bw := bitio.NewWriter(1024)
	for i := range syms {
		syms[i] = rng.Intn(NumSymbols)
		tab.Encode(bw, syms[i])
	}
	br := bitio.NewReader(bw.Finish())
	for i, want := range syms {
		if got := tab.Decode(br); got != want {
			t.Fatalf("symbol %d: got %d, want %d", i, got, want)
		}
	}
}

func TestCost(t *testing.T) {
	var f [NumSymbols]uint32
	f[3] = 10
	tab := Build(&f)
	if got, want := tab.Cost(&f), uint64(10)*uint64(tab.Codes[3].Len); got != want {
		t.Errorf("Cost = %d, want %d", got, want)
	}
}

func TestReadMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		deep bool
	}{
		{"empty", nil, false},
		{"truncated leaf", []byte{0x01}, false},  // leaf flag in the last bit
		{"missing subtree", []byte{0x3f}, false}, // 0, 0, leaf 11111, then the stream ends
		{"too deep", make([]byte, 16), true},     // a chain of internal nodes
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(bitio.NewReader(tt.data))
			if !errors.Is(err, ErrBadHeader) {
				t.Fatalf("err = %v, want ErrBadHeader", err)
			}
			if tt.deep != errors.Is(err, ErrTreeTooDeep) {
				t.Fatalf("err = %v, deep = %v", err, tt.deep)
			}
		})
	}
}

func TestDecodeExhausted(t *testing.T) {
	var f [NumSymbols]uint32
	tab := Build(&f)
	if got := tab.Decode(bitio.NewReader(nil)); got != -1 {
		t.Errorf("Decode on empty stream = %d, want -1", got)
	}
}

func TestTreeBits(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	for iter := 0; iter < 20; iter++ {
		bw := bitio.NewWriter(64)
		Build(randFreq(rng)).Write(bw)
		if bw.NumBits() != TreeBits {
			t.Fatalf("serialized %d bits, want %d", bw.NumBits(), TreeBits)
		}
	}
}
