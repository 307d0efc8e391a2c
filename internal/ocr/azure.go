package ocr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/services/cognitiveservices/v3.0/computervision"
	"github.com/Azure/go-autorest/autorest"
)

// AzureEngine recognizes text with the hosted Computer Vision reader.
// The underlying client is stateless per call and shared across
// requests.
type AzureEngine struct {
	client *computervision.BaseClient
}

// NewAzureEngine creates an engine backed by the given Computer Vision
// resource.
func NewAzureEngine(endpoint, key string) *AzureEngine {
	client := computervision.New(endpoint)
	client.Authorizer = autorest.NewCognitiveServicesAuthorizer(key)
	return &AzureEngine{client: &client}
}

func (e *AzureEngine) Name() string { return "azure" }

// Recognize sends the image to the reader and joins the detected lines
// with newlines, in reading order per region.
func (e *AzureEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	imageReader := io.NopCloser(bytes.NewReader(image))

	result, err := e.client.RecognizePrintedTextInStream(
		ctx,
		true,
		imageReader,
		computervision.OcrLanguages(computervision.En),
	)
	if err != nil {
		return "", fmt.Errorf("azure ocr failed: %w", err)
	}

	var lines []string
	if result.Regions != nil {
		for _, region := range *result.Regions {
			if region.Lines == nil {
				continue
			}
			for _, line := range *region.Lines {
				if line.Words == nil {
					continue
				}
				var words []string
				for _, word := range *line.Words {
					if word.Text != nil {
						words = append(words, *word.Text)
					}
				}
				if len(words) > 0 {
					lines = append(lines, strings.Join(words, " "))
				}
			}
		}
	}

	return strings.Join(lines, "\n"), nil
}
