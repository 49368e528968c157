// Package writer serializes classification results to CSV through a single
// background worker, so concurrent pipeline stages never interleave rows.
package writer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// MapperFunc turns one item into a CSV record.
type MapperFunc[T any] func(T) []string

// HeaderFunc produces the CSV header row.
type HeaderFunc[T any] func() []string

type writeRequest[T any] struct {
	items      []T
	outputPath string
	overwrite  bool
	response   chan error
}

// CSVWriter appends typed records to CSV files. All writes funnel through
// one worker goroutine; the header is written once per output file.
type CSVWriter[T any] struct {
	queue     chan writeRequest[T]
	shutdown  chan struct{}
	wg        sync.WaitGroup
	once      sync.Once
	mu        sync.Mutex
	hasHeader map[string]bool
	mapRecord MapperFunc[T]
	headerRow HeaderFunc[T]
}

func NewCSVWriter[T any](mapRecord MapperFunc[T], headerRow HeaderFunc[T]) *CSVWriter[T] {
	w := &CSVWriter[T]{
		queue:     make(chan writeRequest[T], 100),
		shutdown:  make(chan struct{}),
		hasHeader: make(map[string]bool),
		mapRecord: mapRecord,
		headerRow: headerRow,
	}
	w.wg.Add(1)
	go w.work()
	return w
}

func (w *CSVWriter[T]) work() {
	defer w.wg.Done()
	for {
		select {
		case req := <-w.queue:
			req.response <- w.write(req)
		case <-w.shutdown:
			// Serve requests that won the race into the queue before exit.
			for {
				select {
				case req := <-w.queue:
					req.response <- w.write(req)
				default:
					return
				}
			}
		}
	}
}

// Append adds items to the file at outputPath, creating it (with header)
// on first use.
func (w *CSVWriter[T]) Append(items []T, outputPath string) error {
	return w.enqueue(writeRequest[T]{items: items, outputPath: outputPath})
}

// Overwrite replaces the file at outputPath with the given items.
func (w *CSVWriter[T]) Overwrite(items []T, outputPath string) error {
	return w.enqueue(writeRequest[T]{items: items, outputPath: outputPath, overwrite: true})
}

func (w *CSVWriter[T]) enqueue(req writeRequest[T]) error {
	select {
	case <-w.shutdown:
		return fmt.Errorf("writer is shutting down")
	default:
	}

	req.response = make(chan error, 1)
	select {
	case w.queue <- req:
		return <-req.response
	case <-w.shutdown:
		return fmt.Errorf("writer is shutting down")
	}
}

// Close stops the worker after it serves whatever is already queued.
// Safe to call more than once.
func (w *CSVWriter[T]) Close() {
	w.once.Do(func() {
		close(w.shutdown)
		w.wg.Wait()
	})
}

func (w *CSVWriter[T]) write(req writeRequest[T]) error {
	if err := os.MkdirAll(filepath.Dir(req.outputPath), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	w.mu.Lock()
	hasHeader := w.hasHeader[req.outputPath] && !req.overwrite
	w.mu.Unlock()

	var file *os.File
	var err error
	if hasHeader {
		file, err = os.OpenFile(req.outputPath, os.O_APPEND|os.O_WRONLY, 0o644)
	} else {
		file, err = os.Create(req.outputPath)
	}
	if err != nil {
		return fmt.Errorf("opening CSV file: %w", err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)

	if !hasHeader && len(req.items) > 0 {
		if err := cw.Write(w.headerRow()); err != nil {
			return fmt.Errorf("writing CSV header: %w", err)
		}
		w.mu.Lock()
		w.hasHeader[req.outputPath] = true
		w.mu.Unlock()
	}

	for _, item := range req.items {
		if err := cw.Write(w.mapRecord(item)); err != nil {
			return fmt.Errorf("writing CSV record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing CSV file: %w", err)
	}
	return nil
}
