package main

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/deepteams/framecoder"
	"github.com/deepteams/framecoder/internal/config"
	"github.com/deepteams/framecoder/internal/container"
	"github.com/deepteams/framecoder/internal/synth"
	"github.com/deepteams/framecoder/internal/yuv"
)

func encoderFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: "output stream `FILE` (\"-\" for stdout)"},
		&cli.IntFlag{Name: "quality", Aliases: []string{"q"}, Usage: "quality index 0-63 (default 40)"},
		&cli.BoolFlag{Name: "fixed-quality", Usage: "code every frame at --quality"},
		&cli.IntFlag{Name: "width", Usage: "frame width, a multiple of 16"},
		&cli.IntFlag{Name: "height", Usage: "frame height, a multiple of 16"},
		&cli.IntFlag{Name: "key-interval", Usage: "maximum frames between key frames, 0 for the first only"},
		&cli.IntFlag{Name: "golden-interval", Usage: "frames between golden frame refreshes"},
		&cli.StringFlag{Name: "search", Usage: "motion search: step or exhaustive"},
		&cli.BoolFlag{Name: "four-mv", Usage: "allow one vector per luma block (use --four-mv=false to disable)"},
		&cli.BoolFlag{Name: "golden", Usage: "allow golden frame prediction (use --golden=false to disable)"},
		&cli.BoolFlag{Name: "skip-unchanged", Usage: "leave near-identical blocks uncoded"},
		&cli.StringFlag{Name: "tables", Usage: "Huffman statistics: live or previous"},
		&cli.BoolFlag{Name: "eob-runs", Usage: "code runs of empty blocks"},
		&cli.StringFlag{Name: "matrix", Usage: "RGB to YCbCr matrix: 601, 601-limited, 709, 709-limited"},
		&cli.StringFlag{Name: "stats", Usage: "seed Huffman statistics from `FILE`"},
		&cli.StringFlag{Name: "save-stats", Usage: "save the session's token statistics to `FILE`"},
	}
}

// applyEncoderFlags overrides cfg with the flags given on the command line.
func applyEncoderFlags(c *cli.Context, cfg *config.Config) {
	ints := map[string]*int{
		"quality":         &cfg.Quality,
		"width":           &cfg.Width,
		"height":          &cfg.Height,
		"key-interval":    &cfg.KeyInterval,
		"golden-interval": &cfg.GoldenInterval,
	}
	for name, p := range ints {
		if c.IsSet(name) {
			*p = c.Int(name)
		}
	}
	bools := map[string]*bool{
		"fixed-quality":  &cfg.FixedQuality,
		"four-mv":        &cfg.FourMV,
		"golden":         &cfg.Golden,
		"skip-unchanged": &cfg.SkipUnchanged,
		"eob-runs":       &cfg.EOBRuns,
	}
	for name, p := range bools {
		if c.IsSet(name) {
			*p = c.Bool(name)
		}
	}
	strs := map[string]*string{
		"search":     &cfg.Search,
		"tables":     &cfg.Tables,
		"matrix":     &cfg.Matrix,
		"stats":      &cfg.Stats,
		"save-stats": &cfg.SaveStats,
	}
	for name, p := range strs {
		if c.IsSet(name) {
			*p = c.String(name)
		}
	}
}

// session couples an Encoder to the output stream.
type session struct {
	cfg    config.Config
	log    framecoder.Logger
	enc    *framecoder.Encoder
	out    *container.Writer
	bw     *bufio.Writer
	closer io.Closer
	path   string
	frames int
}

func openSession(cfg config.Config, log framecoder.Logger, path string, width, height int) (*session, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	opts.Logger = log
	if cfg.Stats != "" {
		seed, err := framecoder.LoadStatistics(cfg.Stats)
		if err != nil {
			return nil, err
		}
		opts.Seed = seed
		log.Info("Loaded statistics from %s", cfg.Stats)
	}

	enc, err := framecoder.NewEncoder(width, height, opts)
	if err != nil {
		return nil, err
	}

	var w io.Writer
	var closer io.Closer
	if path == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(path)
		if err != nil {
			enc.Close()
			return nil, err
		}
		w, closer = f, f
	}
	bw := bufio.NewWriter(w)
	out, err := container.NewWriter(bw, width, height)
	if err != nil {
		enc.Close()
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}
	log.Info("Encoding %dx%d frames at quality %d", width, height, opts.Quality)
	return &session{cfg: cfg, log: log, enc: enc, out: out, bw: bw, closer: closer, path: path}, nil
}

func (s *session) add(f *image.YCbCr) error {
	p, err := s.enc.Encode(f)
	if err != nil {
		s.log.Error("Failed to encode frame %d: %s", s.frames, err)
		return err
	}
	if err := s.out.WriteFrame(p.Data); err != nil {
		s.log.Error("Failed to write output: %s", err)
		return err
	}
	s.frames++
	return nil
}

// finish flushes the stream and saves statistics when requested.
func (s *session) finish() error {
	defer s.enc.Close()
	err := s.bw.Flush()
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		s.log.Error("Failed to write output: %s", err)
		return err
	}
	s.log.Info("Encoded %d frames, %d bytes", s.frames, s.out.Bytes())
	if s.path != "-" {
		s.log.Info("Output saved to %s", s.path)
	}
	if s.cfg.SaveStats != "" {
		if err := s.enc.Statistics().Save(s.cfg.SaveStats); err != nil {
			return err
		}
		s.log.Info("Saved statistics to %s", s.cfg.SaveStats)
	}
	return nil
}

// abort releases the session after a failure.
func (s *session) abort() {
	s.enc.Close()
	if s.closer != nil {
		s.closer.Close()
	}
}

func matrixFor(cfg config.Config) (yuv.Matrix, error) {
	m, ok := yuv.ByName(cfg.Matrix)
	if !ok {
		return yuv.Matrix{}, fmt.Errorf("unknown matrix %q", cfg.Matrix)
	}
	return m, nil
}

// --- encode ---

func encodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "encode",
		Aliases:   []string{"enc"},
		Usage:     "encode image files as consecutive frames",
		ArgsUsage: "<image>...",
		Flags:     encoderFlags(),
		Action:    runEncode,
	}
}

func runEncode(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("encode: missing input files\nUsage: fcenc encode [options] <image>...")
	}
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	applyEncoderFlags(c, &cfg)
	m, err := matrixFor(cfg)
	if err != nil {
		return err
	}

	var s *session
	var width, height int
	for _, path := range c.Args().Slice() {
		imgs, err := loadImages(path)
		if err != nil {
			if s != nil {
				s.abort()
			}
			return fmt.Errorf("%s: %w", path, err)
		}
		if s == nil {
			width, height, err = frameSize(cfg, imgs[0].Bounds(), log)
			if err != nil {
				return err
			}
			if s, err = openSession(cfg, log, c.String("output"), width, height); err != nil {
				return err
			}
		}
		for _, img := range imgs {
			img = fitImage(img, width, height, path, log)
			if err := s.add(yuv.FromImage(img, &m)); err != nil {
				s.abort()
				return err
			}
		}
	}
	return s.finish()
}

// --- synth ---

func synthCommand() *cli.Command {
	flags := append(encoderFlags(),
		&cli.IntFlag{Name: "frames", Aliases: []string{"n"}, Usage: "number of frames (default 30)"},
		&cli.Float64Flag{Name: "speed", Usage: "motion in pixels per frame (default 2)"},
	)
	return &cli.Command{
		Name:   "synth",
		Usage:  "encode a generated moving test pattern",
		Flags:  flags,
		Action: runSynth,
	}
}

const (
	synthWidth  = 176
	synthHeight = 144
)

func runSynth(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	applyEncoderFlags(c, &cfg)
	if c.IsSet("frames") {
		cfg.Synth.Frames = c.Int("frames")
	}
	if c.IsSet("speed") {
		cfg.Synth.Speed = c.Float64("speed")
	}
	if cfg.Synth.Frames <= 0 {
		return fmt.Errorf("synth: invalid frame count %d", cfg.Synth.Frames)
	}
	if cfg.Width == 0 {
		cfg.Width = synthWidth
	}
	if cfg.Height == 0 {
		cfg.Height = synthHeight
	}
	width, height, err := frameSize(cfg, image.Rectangle{}, log)
	if err != nil {
		return err
	}
	m, err := matrixFor(cfg)
	if err != nil {
		return err
	}

	scene := synth.DefaultScene(width, height)
	scene.Speed = cfg.Synth.Speed
	for _, p := range []struct {
		hex string
		dst *color.Color
	}{
		{cfg.Synth.Background, &scene.Background},
		{cfg.Synth.Foreground, &scene.Foreground},
		{cfg.Synth.Accent, &scene.Accent},
	} {
		if p.hex == "" {
			continue
		}
		col, err := config.ParseColor(p.hex)
		if err != nil {
			return err
		}
		*p.dst = col
	}

	s, err := openSession(cfg, log, c.String("output"), width, height)
	if err != nil {
		return err
	}
	log.Info("Rendering %d frames of %dx%d", cfg.Synth.Frames, width, height)
	for i := 0; i < cfg.Synth.Frames; i++ {
		if err := s.add(yuv.FromImage(scene.Frame(i), &m)); err != nil {
			s.abort()
			return err
		}
	}
	return s.finish()
}
