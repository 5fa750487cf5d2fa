package main

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/deepteams/framecoder"
	"github.com/deepteams/framecoder/internal/container"
)

// --- decode ---

func decodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Aliases:   []string{"dec"},
		Usage:     "decode a stream to PNG frames or a Y4M file",
		ArgsUsage: "<stream>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "a directory for PNG frames, or a `PATH` ending in .y4m (default: decode only)",
			},
			&cli.IntFlag{
				Name:  "fps",
				Value: 30,
				Usage: "frame rate written to Y4M headers",
			},
		},
		Action: runDecode,
	}
}

// frameSink receives decoded frames.
type frameSink interface {
	write(i int, f *image.YCbCr) error
	close() error
}

type discardSink struct{}

func (discardSink) write(int, *image.YCbCr) error { return nil }
func (discardSink) close() error                  { return nil }

type pngSink struct{ dir string }

func (s pngSink) write(i int, f *image.YCbCr) error {
	out, err := os.Create(filepath.Join(s.dir, fmt.Sprintf("frame%04d.png", i)))
	if err != nil {
		return err
	}
	if err := png.Encode(out, f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func (pngSink) close() error { return nil }

// y4mSink writes a YUV4MPEG2 stream with 4:2:0 planes.
type y4mSink struct {
	f      *os.File
	w      *bufio.Writer
	width  int
	height int
	fps    int
	header bool
}

func (s *y4mSink) write(_ int, f *image.YCbCr) error {
	if !s.header {
		fmt.Fprintf(s.w, "YUV4MPEG2 W%d H%d F%d:1 Ip A1:1 C420jpeg\n", s.width, s.height, s.fps)
		s.header = true
	}
	if _, err := io.WriteString(s.w, "FRAME\n"); err != nil {
		return err
	}
	cw, ch := (s.width+1)/2, (s.height+1)/2
	for y := 0; y < s.height; y++ {
		s.w.Write(f.Y[y*f.YStride : y*f.YStride+s.width])
	}
	for _, plane := range [][]byte{f.Cb, f.Cr} {
		for y := 0; y < ch; y++ {
			s.w.Write(plane[y*f.CStride : y*f.CStride+cw])
		}
	}
	return nil
}

func (s *y4mSink) close() error {
	err := s.w.Flush()
	if cerr := s.f.Close(); err == nil {
		err = cerr
	}
	return err
}

func newSink(path string, width, height, fps int) (frameSink, error) {
	switch {
	case path == "":
		return discardSink{}, nil
	case strings.EqualFold(filepath.Ext(path), ".y4m"):
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		return &y4mSink{f: f, w: bufio.NewWriter(f), width: width, height: height, fps: fps}, nil
	default:
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, err
		}
		return pngSink{dir: path}, nil
	}
}

func runDecode(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("decode: missing input file\nUsage: fcenc decode [options] <stream>")
	}
	_, log, err := setup(c)
	if err != nil {
		return err
	}
	if c.Int("fps") <= 0 {
		return fmt.Errorf("decode: invalid frame rate %d", c.Int("fps"))
	}

	rc, err := openInput(c.Args().First())
	if err != nil {
		return err
	}
	defer rc.Close()

	r, err := container.NewReader(bufio.NewReader(rc))
	if err != nil {
		return err
	}
	h := r.Header()
	dec, err := framecoder.NewDecoder(h.Width, h.Height, log)
	if err != nil {
		return err
	}
	defer dec.Close()

	output := c.String("output")
	sink, err := newSink(output, h.Width, h.Height, c.Int("fps"))
	if err != nil {
		return err
	}

	n := 0
	for {
		data, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			sink.close()
			return err
		}
		f, err := dec.Decode(data)
		if err != nil {
			sink.close()
			return fmt.Errorf("frame %d: %w", n, err)
		}
		if err := sink.write(n, f); err != nil {
			sink.close()
			log.Error("Failed to write output: %s", err)
			return err
		}
		n++
	}
	if err := sink.close(); err != nil {
		log.Error("Failed to write output: %s", err)
		return err
	}
	log.Info("Decoded %d frames", n)
	if output != "" {
		log.Info("Output saved to %s", output)
	}
	return nil
}

// --- info ---

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "print the stream header and per-frame headers",
		ArgsUsage: "<stream>",
		Action:    runInfo,
	}
}

func runInfo(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("info: missing input file\nUsage: fcenc info <stream>")
	}
	name := c.Args().First()
	rc, err := openInput(name)
	if err != nil {
		return err
	}
	defer rc.Close()

	r, err := container.NewReader(bufio.NewReader(rc))
	if err != nil {
		return err
	}
	h := r.Header()
	w := c.App.Writer
	fmt.Fprintf(w, "File:       %s\n", name)
	fmt.Fprintf(w, "Version:    %d\n", h.Version)
	fmt.Fprintf(w, "Dimensions: %d x %d\n", h.Width, h.Height)

	var frames, keys, total int
	for {
		data, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		fh, err := framecoder.ParseFrameHeader(data)
		if err != nil {
			return fmt.Errorf("frame %d: %w", frames, err)
		}
		kind := "inter"
		if fh.Key {
			kind = "key"
			keys++
		}
		golden := ""
		if fh.GoldenRefresh {
			golden = " golden"
		}
		fmt.Fprintf(w, "  %4d  %-5s qi=%-2d %7d bytes%s\n", frames, kind, fh.Quality, len(data), golden)
		frames++
		total += len(data)
	}
	fmt.Fprintf(w, "Frames:     %d (%d key)\n", frames, keys)
	fmt.Fprintf(w, "Payload:    %d bytes\n", total)
	return nil
}
