// Package pipeline classifies a whole directory of ID card images
// concurrently and appends the results to a CSV file.
package pipeline

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/Tokyo44/multidatabse-connection-with-vision-main/internal/extract"
	"github.com/Tokyo44/multidatabse-connection-with-vision-main/internal/imaging"
	"github.com/Tokyo44/multidatabse-connection-with-vision-main/internal/logger"
	"github.com/Tokyo44/multidatabse-connection-with-vision-main/internal/match"
	"github.com/Tokyo44/multidatabse-connection-with-vision-main/internal/ocr"
	"github.com/Tokyo44/multidatabse-connection-with-vision-main/internal/writer"
)

// Row is one classified image, the unit written to the output CSV.
type Row struct {
	Filename string
	Result   match.Result
}

type result[T any] struct {
	path string
	data T
	err  error
}

type writeResult[T any] struct {
	mu       sync.Mutex
	writes   map[string]T
	failures map[string]error
}

// Clients bundles the collaborators every stage needs; it travels through
// the pipeline inside the context.
type Clients struct {
	engine      ocr.Engine
	conditioner *imaging.Conditioner
	extractor   *extract.Extractor
	writer      *writer.CSVWriter[Row]
}

type contextKey string

const clientsKey contextKey = "pipeline_clients"

const outputFileKey contextKey = "output_file"

const ocrWorkerCount = 2

// Run classifies every image in directory with the named OCR engine and
// appends one CSV row per image to outputFile. It returns the successful
// classifications and the per-file failures, both keyed by path.
func Run(engineType string, directory string, outputFile string) (map[string]match.Result, map[string]error) {
	engine, err := ocr.NewEngine(engineType)
	if err != nil {
		logger.DebugLog("failed to create OCR engine: %v", err)
		return nil, map[string]error{"engine": err}
	}
	defer engine.Close()

	return run(engine, directory, outputFile)
}

func run(engine ocr.Engine, directory string, outputFile string) (map[string]match.Result, map[string]error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger.DebugLog("pipeline started with directory=%s, output=%s", directory, outputFile)

	clients := &Clients{
		engine:      engine,
		conditioner: imaging.NewConditioner(),
		extractor:   extract.New(engine, extract.DefaultTimeout),
		writer:      writer.NewCSVWriter(mapCSVRow, csvHeader),
	}
	ctx = context.WithValue(ctx, clientsKey, clients)
	ctx = context.WithValue(ctx, outputFileKey, outputFile)

	files := make(chan string)
	// Bounded: at most two decoded image pairs waiting for an OCR worker.
	loadedChan := make(chan loadedImage, 2)
	textChan := make(chan result[string])
	rowChan := make(chan result[Row], 10)
	errChan := make(chan error, 10)
	results := &writeResult[match.Result]{
		writes:   make(map[string]match.Result),
		failures: make(map[string]error),
	}

	go func() {
		defer close(files)
		logger.DebugLog("starting [walkFiles] goroutine")
		walkFiles(ctx, directory, files, errChan)
		logger.DebugLog("[walkFiles] goroutine finished")
	}()

	go func() {
		defer close(loadedChan)
		logger.DebugLog("starting [conditionImages] goroutine")
		conditionImages(ctx, files, loadedChan)
		logger.DebugLog("[conditionImages] goroutine finished")
	}()

	var ocrWg sync.WaitGroup
	for i := 0; i < ocrWorkerCount; i++ {
		ocrWg.Add(1)
		go func(worker int) {
			defer ocrWg.Done()
			logger.DebugLog("starting [extractText] worker #%d", worker+1)
			extractText(ctx, loadedChan, textChan)
			logger.DebugLog("[extractText] worker #%d finished", worker+1)
		}(i)
	}
	go func() {
		ocrWg.Wait()
		logger.DebugLog("all [extractText] workers finished, closing textChan")
		close(textChan)
	}()

	go func() {
		defer close(rowChan)
		logger.DebugLog("starting [classifyText] goroutine")
		classifyText(ctx, textChan, rowChan)
		logger.DebugLog("[classifyText] goroutine finished")
	}()

	var writeWg sync.WaitGroup
	writeWg.Add(1)
	go func() {
		defer writeWg.Done()
		logger.DebugLog("starting [writeOutput] goroutine")
		writeOutput(ctx, rowChan, results)
		logger.DebugLog("[writeOutput] goroutine finished")
	}()

	writeWg.Wait()
	close(errChan)
	for err := range errChan {
		if err != nil {
			logger.DebugLog("error received in errChan: %v", err)
			results.addFailure("pipeline_error", err)
		}
	}

	logger.DebugLog("pipeline finished")
	return results.writes, results.failures
}

func (r *writeResult[T]) addWrite(path string, data T) {
	r.mu.Lock()
	r.writes[path] = data
	r.mu.Unlock()
}

func (r *writeResult[T]) addFailure(path string, err error) {
	r.mu.Lock()
	r.failures[path] = err
	r.mu.Unlock()
}

func mapCSVRow(row Row) []string {
	return []string{
		row.Filename,
		string(row.Result.Label),
		strconv.FormatFloat(row.Result.Confidence, 'f', 1, 64),
		strings.Join(row.Result.KeywordsFound, "; "),
		row.Result.LicenseNumber,
		row.Result.FirstName,
		row.Result.LastName,
	}
}

func csvHeader() []string {
	return []string{"Filename", "Label", "Confidence", "KeywordsFound", "LicenseNumber", "FirstName", "LastName"}
}
