package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/claimsdesk/bill-ocr-service/internal/extract"
	"github.com/claimsdesk/bill-ocr-service/internal/models"
	"github.com/claimsdesk/bill-ocr-service/internal/ocr"
	"github.com/claimsdesk/bill-ocr-service/internal/raster"
	"github.com/claimsdesk/bill-ocr-service/internal/storage"
)

const (
	MaxUploadSize = 10 * 1024 * 1024 // 10MB
	Version       = "1.0.0"
)

// AllowedExtensions is the set of upload extensions the webhook accepts.
var AllowedExtensions = []string{"pdf", "png", "jpg", "jpeg"}

// Handler handles HTTP requests for bill OCR processing
type Handler struct {
	config *models.Config
	engine ocr.Engine
}

// NewHandler creates a new API handler with the selected OCR engine
func NewHandler(config *models.Config, engine ocr.Engine) *Handler {
	return &Handler{
		config: config,
		engine: engine,
	}
}

// SetupRoutes configures the HTTP routes
func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/webhook/ocr", h.OCRWebhook).Methods("POST")
	router.HandleFunc("/webhook/health", h.Health).Methods("GET")
	router.HandleFunc("/", h.Root).Methods("GET")

	return router
}

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status           string   `json:"status"`
	Service          string   `json:"service"`
	Version          string   `json:"version"`
	OCREngine        string   `json:"ocr_engine"`
	SupportedFormats []string `json:"supported_formats"`
}

// Health reports readiness and the supported upload formats
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(HealthResponse{
		Status:           "healthy",
		Service:          "ocr_webhook",
		Version:          Version,
		OCREngine:        h.engine.Name(),
		SupportedFormats: AllowedExtensions,
	})
}

// Root lists the available endpoints
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "OCR Webhook API",
		"version": Version,
		"endpoints": map[string]string{
			"POST /webhook/ocr":   "Submit file for OCR",
			"GET /webhook/health": "Health check",
		},
	})
}

// OCRWebhook accepts a single bill upload, OCRs every page and returns
// the extracted line items grouped by page.
func (h *Handler) OCRWebhook(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		h.sendError(w, http.StatusBadRequest, "File too large or invalid form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "No file provided (use 'file' field)")
		return
	}
	defer file.Close()

	// Reject unsupported types before touching the file content.
	if !allowedFile(header.Filename) {
		h.sendError(w, http.StatusBadRequest,
			fmt.Sprintf("Unsupported file type. Allowed: %s", strings.Join(AllowedExtensions, ", ")))
		return
	}

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}

	ext := fileExtension(header.Filename)

	// Archive the raw upload when storage is configured; never fatal.
	if storage.Client != nil {
		archiveName := fmt.Sprintf("%s_%s.%s",
			time.Now().Format("20060102_150405"),
			uuid.New().String()[:8],
			ext,
		)
		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = storage.ContentTypeForExtension(ext)
		}
		if _, err := storage.ArchiveBill(r.Context(), archiveName, bytes.NewReader(fileBytes), int64(len(fileBytes)), contentType); err != nil {
			log.Printf("Warning: failed to archive upload: %v", err)
		}
	}

	result, err := h.processBill(r.Context(), fileBytes, ext)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(models.WebhookResponse{
		IsSuccess:  true,
		TokenUsage: models.TokenUsage{},
		Data:       toEnvelopeData(result),
	})
}

// processBill runs the page-by-page OCR and extraction pipeline. A
// failure at any stage aborts the whole request; no partial results.
func (h *Handler) processBill(ctx context.Context, fileBytes []byte, ext string) (*models.ExtractionResult, error) {
	var pageTexts []string

	if ext == "pdf" {
		texts, err := h.recognizePDF(ctx, fileBytes)
		if err != nil {
			return nil, err
		}
		pageTexts = texts
	} else {
		text, err := h.engine.Recognize(ctx, fileBytes)
		if err != nil {
			return nil, fmt.Errorf("OCR failed: %w", err)
		}
		pageTexts = []string{text}
	}

	return assemble(pageTexts)
}

// recognizePDF persists the upload to a temp file, rasterizes each page
// and feeds every page image through the OCR engine in order.
func (h *Handler) recognizePDF(ctx context.Context, fileBytes []byte) ([]string, error) {
	tmpFile := filepath.Join(os.TempDir(), fmt.Sprintf("upload_%s.pdf", uuid.New().String()[:8]))
	if err := os.WriteFile(tmpFile, fileBytes, 0644); err != nil {
		return nil, fmt.Errorf("failed to persist upload: %w", err)
	}
	defer os.Remove(tmpFile)

	pageCount, err := raster.PageCount(tmpFile)
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, pageCount)
	for pageNo := 1; pageNo <= pageCount; pageNo++ {
		img, err := raster.RenderPage(tmpFile, pageNo, h.config.OCR.DPI)
		if err != nil {
			return nil, err
		}
		text, err := h.engine.Recognize(ctx, img)
		if err != nil {
			return nil, fmt.Errorf("OCR failed on page %d: %w", pageNo, err)
		}
		texts = append(texts, text)
	}
	return texts, nil
}

// assemble extracts line items from each page text. Pages are numbered
// sequentially from 1 in iteration order regardless of how the source
// numbered them.
func assemble(pageTexts []string) (*models.ExtractionResult, error) {
	result := &models.ExtractionResult{Pages: make([]models.Page, 0, len(pageTexts))}

	for i, text := range pageTexts {
		items, err := extract.Extract(text)
		if err != nil {
			return nil, err
		}
		result.Pages = append(result.Pages, models.Page{
			PageNo:   i + 1,
			Text:     text,
			PageType: models.PageTypeBillDetail,
			Items:    items,
		})
		result.TotalItemCount += len(items)
	}

	return result, nil
}

// toEnvelopeData converts the extraction result to the response wire
// format.
func toEnvelopeData(result *models.ExtractionResult) *models.ExtractionData {
	data := &models.ExtractionData{
		PagewiseLineItems: make([]models.PageLineItems, 0, len(result.Pages)),
		TotalItemCount:    result.TotalItemCount,
	}

	for _, page := range result.Pages {
		billItems := make([]models.BillItem, 0, len(page.Items))
		for _, item := range page.Items {
			billItems = append(billItems, models.BillItem{
				ItemName:     item.Name,
				ItemQuantity: decimalToFloat64(item.Quantity),
				ItemRate:     decimalToFloat64(item.Rate),
				ItemAmount:   decimalToFloat64(item.Amount),
			})
		}
		data.PagewiseLineItems = append(data.PagewiseLineItems, models.PageLineItems{
			PageNo:    strconv.Itoa(page.PageNo),
			PageType:  page.PageType,
			BillItems: billItems,
		})
	}

	return data
}

// allowedFile reports whether the filename carries a supported
// extension. Matching is case-insensitive on the final dot-suffix; a
// name without a dot is rejected.
func allowedFile(filename string) bool {
	ext := fileExtension(filename)
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// fileExtension returns the lowercase text after the final dot, or ""
// when the filename has no dot.
func fileExtension(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(filename[i+1:])
}

// sendError sends a failure response carrying the message as detail
// text.
func (h *Handler) sendError(w http.ResponseWriter, statusCode int, message string) {
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"detail": message,
	})
}

// decimalToFloat64 converts decimal.Decimal to float64
func decimalToFloat64(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
