package framecoder

import (
	"fmt"

	"github.com/deepteams/framecoder/internal/codec"
	"github.com/deepteams/framecoder/internal/motion"
	"github.com/deepteams/framecoder/internal/quant"
)

// SearchMethod selects the integer motion search.
type SearchMethod int

const (
	// SearchStep is the logarithmic step search (fast, greedy).
	SearchStep SearchMethod = iota
	// SearchExhaustive scans the whole ±15 pixel window.
	SearchExhaustive
)

func (m SearchMethod) String() string {
	switch m {
	case SearchStep:
		return "step"
	case SearchExhaustive:
		return "exhaustive"
	}
	return fmt.Sprintf("SearchMethod(%d)", int(m))
}

// ParseSearchMethod parses "step" or "exhaustive".
func ParseSearchMethod(s string) (SearchMethod, error) {
	switch s {
	case "step":
		return SearchStep, nil
	case "exhaustive":
		return SearchExhaustive, nil
	}
	return 0, fmt.Errorf("framecoder: unknown search method %q", s)
}

// TableMode selects where each frame's Huffman table statistics come from.
type TableMode int

const (
	// TablesLive tallies the frame's tokens first and builds the tables
	// from that tally (two passes over the token stream).
	TablesLive TableMode = iota
	// TablesPrevious builds the tables from the previous frame's tally, or
	// from Options.Seed for the first frame.
	TablesPrevious
)

func (m TableMode) String() string {
	switch m {
	case TablesLive:
		return "live"
	case TablesPrevious:
		return "previous"
	}
	return fmt.Sprintf("TableMode(%d)", int(m))
}

// ParseTableMode parses "live" or "previous".
func ParseTableMode(s string) (TableMode, error) {
	switch s {
	case "live":
		return TablesLive, nil
	case "previous":
		return TablesPrevious, nil
	}
	return 0, fmt.Errorf("framecoder: unknown table mode %q", s)
}

// skipThreshold is the null-vector SAD below which SkipUnchanged leaves a
// block uncoded: one grey level per sample.
const skipThreshold = 64

// Options controls encoding.
type Options struct {
	// Quality is the quality index (0-63, default 40). Higher values
	// select finer quantizers and larger frames.
	Quality int

	// FixedQuality makes the encoder ignore SetQuality, so that every
	// frame is coded at Quality.
	FixedQuality bool

	// SearchMethod selects the integer motion search (default SearchStep).
	SearchMethod SearchMethod

	// FourMV enables the mode with one vector per luma block (default on).
	FourMV bool

	// Golden enables prediction from the golden frame (default on).
	Golden bool

	// GoldenInterval is the number of frames between golden frame
	// refreshes (default 30). Key frames always refresh the golden frame;
	// 0 refreshes it on key frames only.
	GoldenInterval int

	// KeyInterval is the maximum distance between key frames (default
	// 120). 0 codes only the first frame as a key frame.
	KeyInterval int

	// SkipUnchanged leaves inter blocks that barely differ from the last
	// frame uncoded (default off).
	SkipUnchanged bool

	// TableMode selects the Huffman table statistics (default TablesLive).
	TableMode TableMode

	// EOBRuns folds runs of empty blocks into single tokens (default off).
	EOBRuns bool

	// Seed primes TablesPrevious before the first frame. May be nil.
	Seed *Statistics

	// Logger receives per-frame debug summaries. nil discards them.
	Logger Logger
}

// DefaultOptions returns the default encoding options.
func DefaultOptions() *Options {
	return &Options{
		Quality:        40,
		SearchMethod:   SearchStep,
		FourMV:         true,
		Golden:         true,
		GoldenInterval: 30,
		KeyInterval:    120,
		TableMode:      TablesLive,
	}
}

// validateOptions returns an error describing the first invalid field, or
// nil.
func validateOptions(o *Options) error {
	if o.Quality < 0 || o.Quality >= quant.NumQualities {
		return fmt.Errorf("%w: Quality %d (must be 0-%d)", ErrInvalidQuality, o.Quality, quant.NumQualities-1)
	}
	if o.SearchMethod < SearchStep || o.SearchMethod > SearchExhaustive {
		return fmt.Errorf("framecoder: invalid SearchMethod %d", o.SearchMethod)
	}
	if o.TableMode < TablesLive || o.TableMode > TablesPrevious {
		return fmt.Errorf("framecoder: invalid TableMode %d", o.TableMode)
	}
	if o.GoldenInterval < 0 {
		return fmt.Errorf("framecoder: invalid GoldenInterval %d (must be >= 0)", o.GoldenInterval)
	}
	if o.KeyInterval < 0 {
		return fmt.Errorf("framecoder: invalid KeyInterval %d (must be >= 0)", o.KeyInterval)
	}
	return nil
}

// codecConfig translates the public options into the frame coder's.
func (o *Options) codecConfig() codec.Config {
	cfg := codec.Config{
		Method:  motion.StepSearch,
		FourMV:  o.FourMV,
		Golden:  o.Golden,
		EOBRuns: o.EOBRuns,
		Tables:  codec.TablesLive,
	}
	if o.SearchMethod == SearchExhaustive {
		cfg.Method = motion.Exhaustive
	}
	if o.TableMode == TablesPrevious {
		cfg.Tables = codec.TablesPrevious
	}
	if o.SkipUnchanged {
		cfg.SkipThreshold = skipThreshold
	}
	if o.Seed != nil {
		t := o.Seed.tally
		cfg.Seed = &t
	}
	return cfg
}
