package framecoder

import (
	"errors"
	"fmt"

	"github.com/deepteams/framecoder/internal/codec"
)

// Errors returned by the encoder and decoder.
var (
	ErrInvalidDimensions = errors.New("framecoder: invalid frame dimensions")
	ErrDimensionMismatch = errors.New("framecoder: frame does not match coder dimensions")
	ErrInvalidQuality    = errors.New("framecoder: invalid quality index")
	ErrNoReference       = errors.New("framecoder: inter frame without reference frame")
	ErrCorrupt           = errors.New("framecoder: corrupt frame data")

	// ErrCannotProceed reports a coder that can no longer run, such as one
	// that has been closed.
	ErrCannotProceed = errors.New("framecoder: cannot proceed")
)

// wrapCodecError maps frame coder errors onto the public sentinels.
func wrapCodecError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, codec.ErrNoReference):
		return fmt.Errorf("%w: %w", ErrNoReference, err)
	case errors.Is(err, codec.ErrClosed):
		return fmt.Errorf("%w: %w", ErrCannotProceed, err)
	case errors.Is(err, codec.ErrBadHeader), errors.Is(err, codec.ErrCorrupt):
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	case errors.Is(err, codec.ErrBadUpdateMask):
		return fmt.Errorf("%w: %w", ErrDimensionMismatch, err)
	}
	return err
}
