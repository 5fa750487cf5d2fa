package token

import "github.com/deepteams/framecoder/internal/bitio"

// pageSize is the number of tokens per Buffer page.
const pageSize = 16384

// Token is one coded symbol: its value, the table it is coded with and its
// raw extra bits.
type Token struct {
	Value uint8
	Table uint8
	Extra uint16
}

type page struct {
	tokens [pageSize]Token
	count  int
}

// Buffer accumulates the tokens of a frame during the analysis pass so the
// tables can be built before anything is written.
type Buffer struct {
	pages    []*page
	cur      *page
	allPages []*page // retained across Reset
}

// Reset clears the buffer, keeping its pages for reuse.
func (b *Buffer) Reset() {
	b.pages = b.pages[:0]
	b.cur = nil
}

func (b *Buffer) addPage() {
	idx := len(b.pages)
	var p *page
	if idx < len(b.allPages) {
		p = b.allPages[idx]
	} else {
		p = &page{}
		b.allPages = append(b.allPages, p)
	}
	p.count = 0
	b.pages = append(b.pages, p)
	b.cur = p
}

// Add appends a token.
func (b *Buffer) Add(t Token) {
	if b.cur == nil || b.cur.count == pageSize {
		b.addPage()
	}
	b.cur.tokens[b.cur.count] = t
	b.cur.count++
}

// Len returns the number of buffered tokens.
func (b *Buffer) Len() int {
	if len(b.pages) == 0 {
		return 0
	}
	return (len(b.pages)-1)*pageSize + b.cur.count
}

// Each calls fn for every token in insertion order.
func (b *Buffer) Each(fn func(Token)) {
	for _, p := range b.pages {
		for _, t := range p.tokens[:p.count] {
			fn(t)
		}
	}
}

// Tally adds every buffered token to t.
func (b *Buffer) Tally(t *Tally) {
	b.Each(func(tok Token) { t[tok.Table][tok.Value]++ })
}

// Emit writes every buffered token with the given tables.
func (b *Buffer) Emit(bw *bitio.Writer, tables *TableSet) {
	b.Each(func(tok Token) {
		tables[tok.Table].Encode(bw, int(tok.Value))
		if n := ExtraBits[tok.Value]; n > 0 {
			bw.WriteBits(uint32(tok.Extra), int(n))
		}
	})
}
