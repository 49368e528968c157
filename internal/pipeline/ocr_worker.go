package pipeline

import (
	"context"

	"github.com/Tokyo44/multidatabse-connection-with-vision-main/internal/logger"
)

func extractText(ctx context.Context, loaded <-chan loadedImage, texts chan<- result[string]) {
	clients, ok := ctx.Value(clientsKey).(*Clients)
	if !ok {
		logger.DebugLog("[extractText]: missing clients in context")
		return
	}
	extractor := clients.extractor

	for item := range loaded {
		if ctx.Err() != nil {
			logger.DebugLog("[extractText]: context cancelled")
			return
		}

		res := result[string]{path: item.path, err: item.err}
		if item.err == nil {
			logger.DebugLog("[extractText]: extracting text from %s", item.path)
			res.data, res.err = extractor.CombinedText(ctx, item.conditioned, item.original)
		}

		select {
		case texts <- res:
		case <-ctx.Done():
			logger.DebugLog("[extractText]: context done while sending result for %s", item.path)
			return
		}
	}
}
