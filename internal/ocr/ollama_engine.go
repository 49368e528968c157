package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	"github.com/sethvargo/go-retry"
)

// OllamaEngine recognizes text with a local vision model served by Ollama.
// It is a fallback for machines without a Tesseract installation.
type OllamaEngine struct {
	baseURL string
	model   string
	client  *http.Client
}

type ollamaRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images"`
	Stream bool     `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "llama3.2-vision"

	retryBackoff = 500 * time.Millisecond
	retryLimit   = 2
)

const transcribePrompt = `You are an OCR engine. Transcribe every piece of text visible in the image,
top to bottom, one line per line of text. Return only the raw transcribed
text with no commentary, no formatting and no explanations.`

func NewOllamaEngine(baseURL, model string) *OllamaEngine {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	return &OllamaEngine{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{},
	}
}

func (o *OllamaEngine) Recognize(ctx context.Context, img image.Image, mode Mode) (string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("encoding image for ollama: %w", err)
	}

	request := ollamaRequest{
		Model:  o.model,
		Prompt: prompt(mode),
		Images: []string{base64.StdEncoding.EncodeToString(buf.Bytes())},
		Stream: false,
	}
	body, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("marshaling ollama request: %w", err)
	}

	var text string
	backoff := retry.WithMaxRetries(retryLimit, retry.NewConstant(retryBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		out, retryable, err := o.generate(ctx, body)
		if err != nil {
			if retryable {
				return retry.RetryableError(err)
			}
			return err
		}
		text = out
		return nil
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

// generate performs one /api/generate round trip. The second return tells
// the caller whether another attempt could help: transport failures and
// server-side errors are worth retrying, bad requests are not.
func (o *OllamaEngine) generate(ctx context.Context, body []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("building ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("sending ollama request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode >= http.StatusInternalServerError,
			fmt.Errorf("ollama request failed with status: %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, fmt.Errorf("reading ollama response: %w", err)
	}

	var parsed ollamaResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", false, fmt.Errorf("unmarshaling ollama response: %w", err)
	}
	return parsed.Response, false, nil
}

func (o *OllamaEngine) Close() error {
	return nil
}

func prompt(mode Mode) string {
	if mode == ModeSingleBlock {
		return transcribePrompt + "\nThe image contains a single block of text."
	}
	return transcribePrompt
}
