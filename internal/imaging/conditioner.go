// Package imaging conditions ID card photos so the OCR backend gets the
// most legible input possible.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// ErrImageDecode tags input bytes that are not a decodable raster image.
var ErrImageDecode = errors.New("image decode failed")

const (
	// Either dimension below this gets the whole image upscaled.
	minDimension = 1000
	// Enhancement factors, tuned against blurry phone photos of cards.
	contrastFactor   = 2.5
	brightnessFactor = 1.2
	sharpenSigma     = 1.0
	unsharpRadius    = 2.0
	unsharpPercent   = 150
	unsharpThreshold = 3
)

type Conditioner struct{}

func NewConditioner() *Conditioner {
	return &Conditioner{}
}

// Decode turns raw upload bytes into an image. PNG, JPEG, BMP, GIF and
// TIFF are accepted; anything else fails with ErrImageDecode.
func (c *Conditioner) Decode(b []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	return img, nil
}

// Condition produces an OCR-friendly variant of img: upscaled if small,
// grayscaled, contrast and brightness boosted, sharpened twice and finished
// with an unsharp mask. The input image is never mutated, so callers keep
// the original around as a second OCR variant.
func (c *Conditioner) Condition(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	out := imaging.Clone(img)
	if width < minDimension || height < minDimension {
		scale := float64(minDimension) / float64(width)
		if s := float64(minDimension) / float64(height); s > scale {
			scale = s
		}
		out = imaging.Resize(out, int(float64(width)*scale), int(float64(height)*scale), imaging.Lanczos)
	}

	out = imaging.Grayscale(out)
	out = enhanceContrast(out, contrastFactor)
	out = enhanceBrightness(out, brightnessFactor)
	out = imaging.Sharpen(out, sharpenSigma)
	out = imaging.Sharpen(out, sharpenSigma)
	return unsharpMask(out, unsharpRadius, unsharpPercent, unsharpThreshold)
}

// enhanceContrast interpolates every channel away from the image's mean
// luminance: factor 1.0 is a no-op, 2.5 pushes values hard toward black
// and white.
func enhanceContrast(img *image.NRGBA, factor float64) *image.NRGBA {
	mean := meanLuminance(img)
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: interpolate(mean, c.R, factor),
			G: interpolate(mean, c.G, factor),
			B: interpolate(mean, c.B, factor),
			A: c.A,
		}
	})
}

// enhanceBrightness interpolates between black and the original pixel.
func enhanceBrightness(img *image.NRGBA, factor float64) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: interpolate(0, c.R, factor),
			G: interpolate(0, c.G, factor),
			B: interpolate(0, c.B, factor),
			A: c.A,
		}
	})
}

func interpolate(from float64, to uint8, factor float64) uint8 {
	v := from + (float64(to)-from)*factor
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

func meanLuminance(img *image.NRGBA) float64 {
	bounds := img.Bounds()
	total := 0.0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			total += 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
		}
	}
	pixels := bounds.Dx() * bounds.Dy()
	if pixels == 0 {
		return 0
	}
	return total / float64(pixels)
}

// unsharpMask adds back percent% of the difference between the image and a
// blurred copy wherever that difference exceeds the threshold. The imaging
// package ships no unsharp filter, so this builds one from its Blur.
func unsharpMask(img *image.NRGBA, radius float64, percent, threshold int) *image.NRGBA {
	blurred := imaging.Blur(img, radius)
	out := imaging.Clone(img)
	bounds := out.Bounds()
	amount := float64(percent) / 100

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			orig := img.NRGBAAt(x, y)
			soft := blurred.NRGBAAt(x, y)
			out.SetNRGBA(x, y, color.NRGBA{
				R: sharpenChannel(orig.R, soft.R, amount, threshold),
				G: sharpenChannel(orig.G, soft.G, amount, threshold),
				B: sharpenChannel(orig.B, soft.B, amount, threshold),
				A: orig.A,
			})
		}
	}
	return out
}

func sharpenChannel(orig, blurred uint8, amount float64, threshold int) uint8 {
	diff := int(orig) - int(blurred)
	if diff < threshold && -diff < threshold {
		return orig
	}
	v := float64(orig) + amount*float64(diff)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
