// Package matcher composes decoding, conditioning, extraction and
// classification into the single Classify entry point.
package matcher

import (
	"context"
	"fmt"
	"time"

	"github.com/Tokyo44/multidatabse-connection-with-vision-main/internal/extract"
	"github.com/Tokyo44/multidatabse-connection-with-vision-main/internal/imaging"
	"github.com/Tokyo44/multidatabse-connection-with-vision-main/internal/match"
	"github.com/Tokyo44/multidatabse-connection-with-vision-main/internal/ocr"
)

type Matcher struct {
	engine      ocr.Engine
	conditioner *imaging.Conditioner
	extractor   *extract.Extractor
}

// New builds a Matcher around the named OCR engine. It fails with
// ocr.ErrBackendUnavailable when the backend is not installed.
func New(engineType string, ocrTimeout time.Duration) (*Matcher, error) {
	engine, err := ocr.NewEngine(engineType)
	if err != nil {
		return nil, err
	}
	return NewWithEngine(engine, ocrTimeout), nil
}

// NewWithEngine builds a Matcher around an already constructed engine.
func NewWithEngine(engine ocr.Engine, ocrTimeout time.Duration) *Matcher {
	return &Matcher{
		engine:      engine,
		conditioner: imaging.NewConditioner(),
		extractor:   extract.New(engine, ocrTimeout),
	}
}

// Classify identifies the card type on the pictured document. The image is
// decoded, conditioned, read three times by the OCR backend and the combined
// text scored against the keyword tables; a Drivers Licence match is then
// augmented with a license number and holder name when the text yields them.
//
// Classification either fully succeeds (possibly as Unknown with zero
// confidence, which is a normal outcome, not an error) or fully fails with
// one of imaging.ErrImageDecode, ocr.ErrBackendUnavailable or
// extract.ErrExtraction in the error chain. No partial result is returned.
func (m *Matcher) Classify(ctx context.Context, imageBytes []byte) (match.Result, error) {
	img, err := m.conditioner.Decode(imageBytes)
	if err != nil {
		return match.Result{}, fmt.Errorf("classifying image: %w", err)
	}

	conditioned := m.conditioner.Condition(img)
	text, err := m.extractor.CombinedText(ctx, conditioned, img)
	if err != nil {
		return match.Result{}, fmt.Errorf("classifying image: %w", err)
	}

	result := match.MatchCardType(text)
	if result.Label == match.DriversLicence {
		result.LicenseNumber = match.ExtractLicenseNumber(text)
		result.FirstName, result.LastName = match.ExtractName(text)
	}
	return result, nil
}

func (m *Matcher) Close() error {
	return m.engine.Close()
}
