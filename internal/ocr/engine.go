package ocr

import "fmt"

// NewEngine builds a recognition engine by name. The empty name defaults
// to the Tesseract-backed engine.
func NewEngine(engineType string) (Engine, error) {
	switch engineType {
	case "ollama":
		return NewOllamaEngine("", ""), nil
	case "gosseract", "":
		return NewGosseractEngine()
	default:
		return nil, fmt.Errorf("unknown engine type: %s", engineType)
	}
}
