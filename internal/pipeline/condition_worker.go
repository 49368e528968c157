package pipeline

import (
	"context"
	"fmt"
	"image"
	"os"

	"github.com/Tokyo44/multidatabse-connection-with-vision-main/internal/logger"
)

// loadedImage carries a decoded image pair to the OCR workers. A non-nil
// err means loading failed and the item just rides the pipeline down to the
// failure report.
type loadedImage struct {
	path        string
	original    image.Image
	conditioned image.Image
	err         error
}

func conditionImages(ctx context.Context, files <-chan string, out chan<- loadedImage) {
	clients, ok := ctx.Value(clientsKey).(*Clients)
	if !ok {
		logger.DebugLog("[conditionImages]: missing clients in context")
		return
	}
	conditioner := clients.conditioner

	for file := range files {
		if ctx.Err() != nil {
			logger.DebugLog("[conditionImages]: context cancelled")
			return
		}

		item := loadedImage{path: file}
		raw, err := os.ReadFile(file)
		if err != nil {
			item.err = fmt.Errorf("reading image %s: %w", file, err)
		} else if img, err := conditioner.Decode(raw); err != nil {
			item.err = fmt.Errorf("decoding image %s: %w", file, err)
		} else {
			logger.DebugLog("[conditionImages]: conditioning %s", file)
			item.original = img
			item.conditioned = conditioner.Condition(img)
		}

		select {
		case out <- item:
		case <-ctx.Done():
			logger.DebugLog("[conditionImages]: context done while sending %s", file)
			return
		}
	}
}
