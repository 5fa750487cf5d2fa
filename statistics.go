package framecoder

import (
	"io"

	"github.com/deepteams/framecoder/internal/stats"
	"github.com/deepteams/framecoder/internal/token"
)

// Statistics are accumulated token counts. An encoder's statistics can be
// saved and later used as Options.Seed so that the first frames of another
// run start from well-fitted Huffman tables.
type Statistics struct {
	tally token.Tally
}

// Tokens returns the number of counted tokens.
func (s *Statistics) Tokens() uint64 { return s.tally.Total() }

// Merge adds the counts of o to s.
func (s *Statistics) Merge(o *Statistics) { s.tally.Add(&o.tally) }

// WriteTo writes s in the compressed statistics format.
func (s *Statistics) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	err := stats.Write(cw, &s.tally)
	return cw.n, err
}

// ReadStatistics reads statistics written by WriteTo.
func ReadStatistics(r io.Reader) (*Statistics, error) {
	t, err := stats.Read(r)
	if err != nil {
		return nil, err
	}
	return &Statistics{tally: *t}, nil
}

// LoadStatistics reads a statistics file.
func LoadStatistics(path string) (*Statistics, error) {
	t, err := stats.Load(path)
	if err != nil {
		return nil, err
	}
	return &Statistics{tally: *t}, nil
}

// Save writes s to the named file.
func (s *Statistics) Save(path string) error { return stats.Save(path, &s.tally) }

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
