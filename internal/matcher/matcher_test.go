package matcher

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	disimaging "github.com/disintegration/imaging"

	"github.com/Tokyo44/multidatabse-connection-with-vision-main/internal/imaging"
	"github.com/Tokyo44/multidatabse-connection-with-vision-main/internal/match"
	"github.com/Tokyo44/multidatabse-connection-with-vision-main/internal/ocr"
)

type fixedEngine struct {
	text string
	err  error
}

func (f *fixedEngine) Recognize(ctx context.Context, img image.Image, mode ocr.Mode) (string, error) {
	return f.text, f.err
}

func (f *fixedEngine) Close() error { return nil }

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := disimaging.New(60, 40, color.NRGBA{R: 230, G: 230, B: 230, A: 255})
	if err := disimaging.Encode(&buf, img, disimaging.PNG); err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
	return buf.Bytes()
}

func TestClassifyDriversLicence(t *testing.T) {
	engine := &fixedEngine{text: "STATE OF CALIFORNIA DRIVER LICENSE DL A1234567 NAME: JOHN SMITH"}
	m := NewWithEngine(engine, time.Second)

	result, err := m.Classify(context.Background(), pngBytes(t))
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if result.Label != match.DriversLicence {
		t.Errorf("Label = %q, want %q", result.Label, match.DriversLicence)
	}
	if result.Confidence < 40 {
		t.Errorf("Confidence = %v, want at least 40", result.Confidence)
	}
	if result.LicenseNumber != "A1234567" {
		t.Errorf("LicenseNumber = %q, want %q", result.LicenseNumber, "A1234567")
	}
	if result.FirstName != "John" || result.LastName != "Smith" {
		t.Errorf("Name = %q %q, want John Smith", result.FirstName, result.LastName)
	}
}

func TestClassifyLeavesFieldsEmptyForOtherCards(t *testing.T) {
	// The text carries a plausible ID number, but field extraction only
	// runs for a Drivers Licence.
	engine := &fixedEngine{text: "REPUBLIC OF GHANA ID NO: 73491205 NAME: KOFI MENSAH"}
	m := NewWithEngine(engine, time.Second)

	result, err := m.Classify(context.Background(), pngBytes(t))
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if result.Label != match.GhanaCard {
		t.Fatalf("Label = %q, want %q", result.Label, match.GhanaCard)
	}
	if result.LicenseNumber != "" || result.FirstName != "" || result.LastName != "" {
		t.Errorf("fields populated for %q: %q %q %q", result.Label,
			result.LicenseNumber, result.FirstName, result.LastName)
	}
}

func TestClassifyUnknown(t *testing.T) {
	engine := &fixedEngine{text: "lorem ipsum dolor"}
	m := NewWithEngine(engine, time.Second)

	result, err := m.Classify(context.Background(), pngBytes(t))
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if result.Label != match.Unknown || result.Confidence != 0 {
		t.Errorf("got %q at %v, want Unknown at zero confidence", result.Label, result.Confidence)
	}
}

func TestClassifyRejectsUndecodableBytes(t *testing.T) {
	m := NewWithEngine(&fixedEngine{text: "irrelevant"}, time.Second)

	_, err := m.Classify(context.Background(), []byte("not an image"))
	if err == nil {
		t.Fatal("Classify() succeeded on undecodable bytes")
	}
	if !errors.Is(err, imaging.ErrImageDecode) {
		t.Errorf("Classify() error = %v, want ErrImageDecode in the chain", err)
	}
}

func TestClassifySurfacesExtractionFailure(t *testing.T) {
	engine := &fixedEngine{err: errors.New("backend exploded")}
	m := NewWithEngine(engine, time.Second)

	_, err := m.Classify(context.Background(), pngBytes(t))
	if err == nil {
		t.Fatal("Classify() succeeded despite a failing backend")
	}
}
