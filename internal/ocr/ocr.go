// Package ocr abstracts the text recognition backend behind a single
// Recognize capability so engines can be swapped or faked in tests.
package ocr

import (
	"context"
	"errors"
	"image"
)

// Mode tells the backend what page layout to assume.
type Mode int

const (
	// ModeSingleBlock assumes one uniform block of text, the layout of a
	// typical ID card.
	ModeSingleBlock Mode = iota
	// ModeAuto lets the backend segment the page itself.
	ModeAuto
)

// ErrBackendUnavailable means the recognition backend could not be reached
// at startup. It is fatal and never retried.
var ErrBackendUnavailable = errors.New("ocr backend unavailable")

// Engine is the recognition backend. Implementations must be safe for
// concurrent Recognize calls.
type Engine interface {
	Recognize(ctx context.Context, img image.Image, mode Mode) (string, error)
	Close() error
}
