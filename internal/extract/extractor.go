// Package extract turns an image and its conditioned variant into a single
// combined text blob by running the OCR backend several times.
package extract

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/Tokyo44/multidatabse-connection-with-vision-main/internal/ocr"
	"golang.org/x/sync/errgroup"
)

// ErrExtraction wraps any failure of the OCR backend during text
// extraction, including the extraction deadline expiring.
var ErrExtraction = errors.New("text extraction failed")

// DefaultTimeout bounds the whole recognition plan.
const DefaultTimeout = 30 * time.Second

type Extractor struct {
	engine  ocr.Engine
	timeout time.Duration
}

func New(engine ocr.Engine, timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Extractor{engine: engine, timeout: timeout}
}

// CombinedText runs the fixed three-pass recognition plan: the conditioned
// image assuming a single text block, the untouched original with the same
// assumption, and the conditioned image again with automatic segmentation.
// The passes run concurrently but their outputs are joined newline-separated
// in plan order, so the combined blob is deterministic for a given backend.
// Nothing is deduplicated; the classifier downstream tolerates repeats.
func (e *Extractor) CombinedText(ctx context.Context, conditioned, original image.Image) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	passes := []struct {
		img  image.Image
		mode ocr.Mode
	}{
		{conditioned, ocr.ModeSingleBlock},
		{original, ocr.ModeSingleBlock},
		{conditioned, ocr.ModeAuto},
	}

	texts := make([]string, len(passes))
	g, ctx := errgroup.WithContext(ctx)
	for i, pass := range passes {
		g.Go(func() error {
			text, err := e.engine.Recognize(ctx, pass.img, pass.mode)
			if err != nil {
				return fmt.Errorf("recognition pass %d: %w", i+1, err)
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	return strings.Join(texts, "\n"), nil
}
