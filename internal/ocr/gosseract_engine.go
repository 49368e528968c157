package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// GosseractEngine recognizes text with a locally installed Tesseract via
// gosseract. Clients are not safe for concurrent use, so each Recognize
// call builds and tears down its own.
type GosseractEngine struct{}

// NewGosseractEngine probes for a working Tesseract installation and fails
// with ErrBackendUnavailable when none is found.
func NewGosseractEngine() (*GosseractEngine, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if client.Version() == "" {
		return nil, fmt.Errorf("%w: tesseract not found, install it first (apt-get install tesseract-ocr / brew install tesseract)", ErrBackendUnavailable)
	}
	return &GosseractEngine{}, nil
}

func (g *GosseractEngine) Recognize(ctx context.Context, img image.Image, mode Mode) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("encoding image for tesseract: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetPageSegMode(pageSegMode(mode)); err != nil {
		return "", fmt.Errorf("setting page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("loading image into tesseract: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognizing text: %w", err)
	}
	return text, nil
}

func (g *GosseractEngine) Close() error {
	return nil
}

func pageSegMode(mode Mode) gosseract.PageSegMode {
	switch mode {
	case ModeAuto:
		return gosseract.PSM_AUTO
	default:
		return gosseract.PSM_SINGLE_BLOCK
	}
}
