package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Tokyo44/multidatabse-connection-with-vision-main/internal/matcher"
	"github.com/Tokyo44/multidatabse-connection-with-vision-main/internal/pipeline"
	"github.com/Tokyo44/multidatabse-connection-with-vision-main/internal/server"
	"github.com/Tokyo44/multidatabse-connection-with-vision-main/internal/store"
)

type CLI struct {
	imagePath  string
	imagesDir  string
	outputDir  string
	engineType string
	dbPath     string
	addr       string
	serve      bool
	ocrTimeout time.Duration
}

func NewCLI() *CLI {
	return &CLI{
		imagesDir:  "images",
		outputDir:  "output",
		engineType: "gosseract",
		dbPath:     "dvla.db",
		addr:       "localhost:8080",
		ocrTimeout: 30 * time.Second,
	}
}

func (c *CLI) Run(args []string) error {
	fs := flag.NewFlagSet("id-matcher", flag.ExitOnError)

	fs.StringVar(&c.imagePath, "image", c.imagePath, "Single ID image to classify (prints the result and exits)")
	fs.StringVar(&c.imagesDir, "images", c.imagesDir, "Directory of ID images to classify in batch")
	fs.StringVar(&c.outputDir, "output", c.outputDir, "Output directory for batch results")
	fs.StringVar(&c.engineType, "engine", c.engineType, "OCR engine type (gosseract, ollama)")
	fs.StringVar(&c.dbPath, "db", c.dbPath, "SQLite DVLA database for driver lookups (server mode)")
	fs.StringVar(&c.addr, "addr", c.addr, "Listen address (server mode)")
	fs.BoolVar(&c.serve, "serve", c.serve, "Run the HTTP classification server")
	fs.DurationVar(&c.ocrTimeout, "ocr-timeout", c.ocrTimeout, "Deadline for the OCR passes of one image")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parsing flags: %w", err)
	}

	switch {
	case c.serve:
		return c.runServer()
	case c.imagePath != "":
		return c.classifyOne()
	default:
		return c.runBatch()
	}
}

func (c *CLI) classifyOne() error {
	m, err := matcher.New(c.engineType, c.ocrTimeout)
	if err != nil {
		return err
	}
	defer m.Close()

	imageBytes, err := os.ReadFile(c.imagePath)
	if err != nil {
		return fmt.Errorf("reading image %s: %w", c.imagePath, err)
	}

	result, err := m.Classify(context.Background(), imageBytes)
	if err != nil {
		return err
	}

	fmt.Printf("Card Type: %s\n", result.Label)
	fmt.Printf("Confidence: %.1f%%\n", result.Confidence)
	if len(result.KeywordsFound) > 0 {
		fmt.Printf("Keywords Found: %s\n", strings.Join(result.KeywordsFound, ", "))
	}
	if result.LicenseNumber != "" {
		fmt.Printf("License Number: %s\n", result.LicenseNumber)
	}
	if result.FirstName != "" {
		fmt.Printf("Name: %s %s\n", result.FirstName, result.LastName)
	}
	fmt.Println(strings.Repeat("-", 50))
	fmt.Println("Extracted Text:")
	fmt.Println(result.ExtractedText)
	return nil
}

func (c *CLI) runBatch() error {
	outputFile := fmt.Sprintf("%s/%s_match_results.csv", c.outputDir, c.engineType)

	results, failures := pipeline.Run(c.engineType, c.imagesDir, outputFile)
	for path, err := range failures {
		fmt.Printf("Error processing %s: %v\n", path, err)
	}
	for path, result := range results {
		fmt.Printf("Processed %s: %s (%.1f%%)\n", path, result.Label, result.Confidence)
	}
	fmt.Printf("\nProcessing complete! Results saved to: %s\n", outputFile)
	fmt.Printf("Processed %d images\n", len(results)+len(failures))
	return nil
}

func (c *CLI) runServer() error {
	m, err := matcher.New(c.engineType, c.ocrTimeout)
	if err != nil {
		return err
	}
	defer m.Close()

	var records server.RecordFinder
	if c.dbPath != "" {
		st, err := store.Open(c.dbPath)
		if err != nil {
			fmt.Printf("Driver lookups disabled: %v\n", err)
		} else {
			defer st.Close()
			records = st
		}
	}

	fmt.Printf("Listening on %s\n", c.addr)
	return server.New(m, records).Run(c.addr)
}
