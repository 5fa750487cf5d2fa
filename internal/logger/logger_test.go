package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"quiet", LevelQuiet},
		{"verbose", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	for l := LevelDebug; l <= LevelQuiet; l++ {
		if got := ParseLevel(l.String()); got != l {
			t.Errorf("ParseLevel(%v.String()) = %v", l, got)
		}
	}
}

func TestConsoleLevels(t *testing.T) {
	tests := []struct {
		level        Level
		wantOut      int
		wantErrLines int
	}{
		{LevelDebug, 2, 2},
		{LevelInfo, 1, 2},
		{LevelWarn, 0, 2},
		{LevelError, 0, 1},
		{LevelQuiet, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var out, errOut bytes.Buffer
			l := NewWriter(tt.level, &out, &errOut)
			l.Debug("test debug %d", 1)
			l.Info("test info %d", 2)
			l.Warn("test warn %d", 3)
			l.Error("test error %d", 4)
			if n := strings.Count(out.String(), "\n"); n != tt.wantOut {
				t.Errorf("stdout lines = %d, want %d: %q", n, tt.wantOut, out.String())
			}
			if n := strings.Count(errOut.String(), "\n"); n != tt.wantErrLines {
				t.Errorf("stderr lines = %d, want %d: %q", n, tt.wantErrLines, errOut.String())
			}
		})
	}
}

func TestConsoleComponent(t *testing.T) {
	var out bytes.Buffer
	l := NewWriter(LevelDebug, &out, &out)
	l.WithComponent("encoder").Debug("test value %d", 42)
	l.Info("test plain")
	want := "[encoder] test value 42\ntest plain\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestNoop(t *testing.T) {
	var l Logger = NewNoop()
	l.Info("ignored %d", 1)
	if l.WithComponent("x") != l {
		t.Error("WithComponent returned a different logger")
	}
}
