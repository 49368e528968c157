package pipeline

import (
	"context"
	"fmt"

	"github.com/Tokyo44/multidatabse-connection-with-vision-main/internal/logger"
	"github.com/Tokyo44/multidatabse-connection-with-vision-main/internal/match"
)

func writeOutput(ctx context.Context, rows <-chan result[Row], results *writeResult[match.Result]) {
	clients, ok := ctx.Value(clientsKey).(*Clients)
	if !ok {
		logger.DebugLog("[writeOutput]: missing clients in context")
		return
	}
	csvWriter := clients.writer
	output := ctx.Value(outputFileKey).(string)

	for res := range rows {
		if ctx.Err() != nil {
			logger.DebugLog("[writeOutput]: context cancelled")
			return
		}

		if res.err != nil {
			logger.DebugLog("[writeOutput]: failure for %s: %v", res.path, res.err)
			results.addFailure(res.path, res.err)
			continue
		}

		logger.DebugLog("[writeOutput]: writing row for %s", res.path)
		if err := csvWriter.Append([]Row{res.data}, output); err != nil {
			results.addFailure(res.path, fmt.Errorf("writing to file %s: %w", output, err))
			continue
		}
		results.addWrite(res.path, res.data.Result)
	}

	logger.DebugLog("[writeOutput]: closing CSV writer")
	csvWriter.Close()
}
