package models

import (
	"github.com/shopspring/decimal"
)

// PageTypeBillDetail is the layout label attributed to every page.
// No layout classification is performed.
const PageTypeBillDetail = "Bill Detail"

// LineItem is a structured billing record extracted from OCR text.
// Name is whitespace-normalized and non-empty; the numeric fields are
// non-negative decimals.
type LineItem struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Rate     decimal.Decimal `json:"rate"`
	Amount   decimal.Decimal `json:"amount"`
}

// Page holds the recognized text of a single page and the line items
// extracted from it. Pages are request-scoped and never mutated after
// creation.
type Page struct {
	PageNo   int        `json:"pageNo"` // 1-based
	Text     string     `json:"text"`
	PageType string     `json:"pageType"`
	Items    []LineItem `json:"items"`
}

// ExtractionResult aggregates the pages of one processed upload.
type ExtractionResult struct {
	Pages          []Page `json:"pages"`
	TotalItemCount int    `json:"totalItemCount"`
}

// TokenUsage is carried in the response envelope for compatibility with
// LLM-backed consumers. All counters are always zero; no LLM is involved.
type TokenUsage struct {
	TotalTokens  int `json:"total_tokens"`
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// BillItem is the wire representation of a LineItem.
type BillItem struct {
	ItemName     string  `json:"item_name"`
	ItemQuantity float64 `json:"item_quantity"`
	ItemRate     float64 `json:"item_rate"`
	ItemAmount   float64 `json:"item_amount"`
}

// PageLineItems groups the bill items of one page in the response.
// PageNo is a re-sequenced 1-based index rendered as a string.
type PageLineItems struct {
	PageNo    string     `json:"page_no"`
	PageType  string     `json:"page_type"`
	BillItems []BillItem `json:"bill_items"`
}

// ExtractionData is the data section of the webhook response.
type ExtractionData struct {
	PagewiseLineItems []PageLineItems `json:"pagewise_line_items"`
	TotalItemCount    int             `json:"total_item_count"`
}

// WebhookResponse is the success envelope of POST /webhook/ocr.
type WebhookResponse struct {
	IsSuccess  bool            `json:"is_success"`
	TokenUsage TokenUsage      `json:"token_usage"`
	Data       *ExtractionData `json:"data,omitempty"`
}

// Config represents the service configuration
type Config struct {
	// Server config
	Port int    `yaml:"port"`
	Host string `yaml:"host"`

	// OCR config
	OCR OCRConfig `yaml:"ocr"`

	// Optional raw-upload archival
	Storage StorageConfig `yaml:"storage"`
}

// OCRConfig represents OCR-specific configuration
type OCRConfig struct {
	Engine   string      `yaml:"engine"`   // "azure", "tesseract" or "auto"
	Language string      `yaml:"language"` // OCR language (default: "eng")
	DPI      int         `yaml:"dpi"`      // PDF rasterization density (default: 300)
	Azure    AzureConfig `yaml:"azure"`
}

// AzureConfig holds Computer Vision credentials for the hosted reader
type AzureConfig struct {
	Endpoint string `yaml:"endpoint"`
	Key      string `yaml:"key"`
}

// StorageConfig holds MinIO settings; an empty endpoint disables archival
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}
