// Package ocr provides the text recognition engines behind the webhook.
// Two interchangeable implementations exist: a hosted neural reader
// (Azure Computer Vision) and a local binarize-then-recognize engine
// (tesseract). Both produce one unstructured text blob per page image;
// callers must not assume anything about layout or line breaks.
package ocr

import (
	"context"
	"fmt"

	"github.com/claimsdesk/bill-ocr-service/internal/models"
)

// Engine converts raster image bytes into recognized text.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, image []byte) (string, error)
}

// Select returns the engine for the configured mode. "auto" picks the
// hosted reader when credentials are configured and falls back to the
// local tesseract engine otherwise.
func Select(cfg models.OCRConfig) (Engine, error) {
	switch cfg.Engine {
	case "azure":
		if cfg.Azure.Endpoint == "" || cfg.Azure.Key == "" {
			return nil, fmt.Errorf("azure engine requires endpoint and key")
		}
		return NewAzureEngine(cfg.Azure.Endpoint, cfg.Azure.Key), nil

	case "tesseract":
		return NewTesseractEngine(cfg.Language), nil

	case "", "auto":
		if cfg.Azure.Endpoint != "" && cfg.Azure.Key != "" {
			return NewAzureEngine(cfg.Azure.Endpoint, cfg.Azure.Key), nil
		}
		return NewTesseractEngine(cfg.Language), nil

	default:
		return nil, fmt.Errorf("unsupported OCR engine: %s", cfg.Engine)
	}
}
