package pipeline

import (
	"context"

	"github.com/Tokyo44/multidatabse-connection-with-vision-main/internal/logger"
	"github.com/Tokyo44/multidatabse-connection-with-vision-main/internal/match"
)

// classifyText scores each extracted blob and, for Drivers Licence hits,
// runs the field extractors. Pure CPU work, so a single goroutine keeps up
// with the OCR workers easily.
func classifyText(ctx context.Context, texts <-chan result[string], rows chan<- result[Row]) {
	for t := range texts {
		if ctx.Err() != nil {
			logger.DebugLog("[classifyText]: context cancelled")
			return
		}

		res := result[Row]{path: t.path, err: t.err}
		if t.err == nil {
			logger.DebugLog("[classifyText]: classifying text from %s", t.path)
			r := match.MatchCardType(t.data)
			if r.Label == match.DriversLicence {
				r.LicenseNumber = match.ExtractLicenseNumber(t.data)
				r.FirstName, r.LastName = match.ExtractName(t.data)
			}
			res.data = Row{Filename: t.path, Result: r}
		}

		select {
		case rows <- res:
		case <-ctx.Done():
			logger.DebugLog("[classifyText]: context done while sending row for %s", t.path)
			return
		}
	}
}
