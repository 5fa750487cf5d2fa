// Package config loads fcenc settings from YAML files.
package config

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/deepteams/framecoder"
	"gopkg.in/yaml.v3"
)

// Config represents the full configuration for fcenc.
type Config struct {
	// Frame size. Zero takes the size of the first input rounded down to
	// a multiple of 16.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// Encoding
	Quality        int    `yaml:"quality"`
	FixedQuality   bool   `yaml:"fixed_quality"`
	KeyInterval    int    `yaml:"key_interval"`
	GoldenInterval int    `yaml:"golden_interval"`
	Search         string `yaml:"search"`
	FourMV         bool   `yaml:"four_mv"`
	Golden         bool   `yaml:"golden"`
	SkipUnchanged  bool   `yaml:"skip_unchanged"`
	Tables         string `yaml:"tables"`
	EOBRuns        bool   `yaml:"eob_runs"`

	// Input conversion
	Matrix string `yaml:"matrix"`

	// Statistics files
	Stats     string `yaml:"stats"`
	SaveStats string `yaml:"save_stats"`

	LogLevel string `yaml:"log_level"`

	Synth SynthConfig `yaml:"synth"`
}

// SynthConfig describes the generated test sequence.
type SynthConfig struct {
	Frames     int     `yaml:"frames"`
	Speed      float64 `yaml:"speed"`
	Background string  `yaml:"background"`
	Foreground string  `yaml:"foreground"`
	Accent     string  `yaml:"accent"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	o := framecoder.DefaultOptions()
	return Config{
		Quality:        o.Quality,
		KeyInterval:    o.KeyInterval,
		GoldenInterval: o.GoldenInterval,
		Search:         o.SearchMethod.String(),
		FourMV:         o.FourMV,
		Golden:         o.Golden,
		Tables:         o.TableMode.String(),
		Matrix:         "601",
		LogLevel:       "info",
		Synth: SynthConfig{
			Frames:     30,
			Speed:      2,
			Background: "#1a1a2e",
			Foreground: "#4ade80",
			Accent:     "#f97316",
		},
	}
}

// LoadFromFile loads configuration from a YAML file. Keys missing from the
// file keep their default values.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}

	return cfg, nil
}

// Options converts the encoding settings to framecoder options. The
// statistics seed and logger are left for the caller to attach.
func (c Config) Options() (*framecoder.Options, error) {
	search, err := framecoder.ParseSearchMethod(c.Search)
	if err != nil {
		return nil, err
	}
	tables, err := framecoder.ParseTableMode(c.Tables)
	if err != nil {
		return nil, err
	}
	o := &framecoder.Options{
		Quality:        c.Quality,
		FixedQuality:   c.FixedQuality,
		SearchMethod:   search,
		FourMV:         c.FourMV,
		Golden:         c.Golden,
		GoldenInterval: c.GoldenInterval,
		KeyInterval:    c.KeyInterval,
		SkipUnchanged:  c.SkipUnchanged,
		TableMode:      tables,
		EOBRuns:        c.EOBRuns,
	}
	return o, nil
}

// ParseColor parses a "#rrggbb" hex color.
func ParseColor(hex string) (color.RGBA, error) {
	s := strings.TrimPrefix(hex, "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("config: invalid color %q", hex)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("config: invalid color %q", hex)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
