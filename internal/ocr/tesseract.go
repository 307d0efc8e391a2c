package ocr

import (
	"context"
	"fmt"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine binarizes the page image and runs a local tesseract
// client over it. The client loads language models on creation, so it is
// created lazily on first use, exactly once, and shared afterwards.
type TesseractEngine struct {
	language string

	once    sync.Once
	initErr error
	client  *gosseract.Client

	// The client is stateful during recognition; one page at a time.
	mu sync.Mutex
}

// NewTesseractEngine creates a local OCR engine for the given language.
func NewTesseractEngine(language string) *TesseractEngine {
	if language == "" {
		language = "eng"
	}
	return &TesseractEngine{language: language}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

func (e *TesseractEngine) init() {
	client := gosseract.NewClient()
	if err := client.SetLanguage(e.language); err != nil {
		client.Close()
		e.initErr = fmt.Errorf("set tesseract language %q: %w", e.language, err)
		return
	}
	// Assume a single uniform block of text, the usual shape of a
	// scanned bill page.
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		client.Close()
		e.initErr = fmt.Errorf("set tesseract page segmentation mode: %w", err)
		return
	}
	e.client = client
}

// Recognize binarizes the image and extracts its text.
func (e *TesseractEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	e.once.Do(e.init)
	if e.initErr != nil {
		return "", e.initErr
	}

	processed, err := Binarize(image)
	if err != nil {
		return "", fmt.Errorf("preprocess image: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.client.SetImageFromBytes(processed); err != nil {
		return "", fmt.Errorf("load image into tesseract: %w", err)
	}
	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract recognition failed: %w", err)
	}
	return text, nil
}
