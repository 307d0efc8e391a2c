package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/claimsdesk/bill-ocr-service/internal/models"
)

// fakeEngine is an in-memory OCR engine returning canned text.
type fakeEngine struct {
	text  string
	err   error
	calls int
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	f.calls++
	return f.text, f.err
}

func newTestHandler(engine *fakeEngine) *Handler {
	return NewHandler(&models.Config{}, engine)
}

func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/webhook/ocr", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestOCRWebhookRejectsUnsupportedExtension(t *testing.T) {
	engine := &fakeEngine{text: "irrelevant"}
	router := newTestHandler(engine).SetupRoutes()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, uploadRequest(t, "report.docx", []byte("binary")))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !strings.Contains(body["detail"], "Unsupported file type") {
		t.Fatalf("detail = %q, want unsupported file type message", body["detail"])
	}
	if engine.calls != 0 {
		t.Fatalf("OCR engine invoked %d times for rejected upload", engine.calls)
	}
}

func TestOCRWebhookRejectsFilenameWithoutDot(t *testing.T) {
	engine := &fakeEngine{}
	router := newTestHandler(engine).SetupRoutes()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, uploadRequest(t, "report", []byte("binary")))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if engine.calls != 0 {
		t.Fatalf("OCR engine invoked %d times for rejected upload", engine.calls)
	}
}

func TestOCRWebhookMissingFileField(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("note", "no file here")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/webhook/ocr", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rr := httptest.NewRecorder()
	newTestHandler(&fakeEngine{}).SetupRoutes().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestOCRWebhookImageSuccess(t *testing.T) {
	engine := &fakeEngine{text: "Paracetamol 500mg 2 10.50 21.00"}
	router := newTestHandler(engine).SetupRoutes()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, uploadRequest(t, "bill.png", []byte("fake png bytes")))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if engine.calls != 1 {
		t.Fatalf("engine calls = %d, want 1", engine.calls)
	}

	var resp models.WebhookResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.IsSuccess {
		t.Fatal("is_success = false")
	}
	if resp.TokenUsage != (models.TokenUsage{}) {
		t.Fatalf("token_usage = %+v, want all zero", resp.TokenUsage)
	}
	if resp.Data == nil {
		t.Fatal("data missing")
	}
	if len(resp.Data.PagewiseLineItems) != 1 {
		t.Fatalf("pages = %d, want 1", len(resp.Data.PagewiseLineItems))
	}

	page := resp.Data.PagewiseLineItems[0]
	if page.PageNo != "1" {
		t.Errorf("page_no = %q, want %q", page.PageNo, "1")
	}
	if page.PageType != "Bill Detail" {
		t.Errorf("page_type = %q, want %q", page.PageType, "Bill Detail")
	}
	// The line matches both the pharmacy and hospital layouts.
	if len(page.BillItems) != 2 {
		t.Fatalf("bill_items = %d, want 2", len(page.BillItems))
	}
	item := page.BillItems[0]
	if item.ItemName != "Paracetamol 500mg" {
		t.Errorf("item_name = %q", item.ItemName)
	}
	if item.ItemQuantity != 2 || item.ItemRate != 10.50 || item.ItemAmount != 21.00 {
		t.Errorf("item values = %v/%v/%v", item.ItemQuantity, item.ItemRate, item.ItemAmount)
	}
	if resp.Data.TotalItemCount != 2 {
		t.Errorf("total_item_count = %d, want 2", resp.Data.TotalItemCount)
	}
}

func TestOCRWebhookExtensionCaseInsensitive(t *testing.T) {
	engine := &fakeEngine{text: ""}
	router := newTestHandler(engine).SetupRoutes()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, uploadRequest(t, "SCAN.JPG", []byte("fake jpg")))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestOCRWebhookEngineFailureIsServerError(t *testing.T) {
	engine := &fakeEngine{err: context.DeadlineExceeded}
	router := newTestHandler(engine).SetupRoutes()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, uploadRequest(t, "bill.jpeg", []byte("fake")))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusInternalServerError)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["detail"] == "" {
		t.Fatal("detail missing from error response")
	}
}

func TestAssembleMultiPageAggregation(t *testing.T) {
	result, err := assemble([]string{
		"Paracetamol 500mg 2 10.50 21.00",
		"Thank you for your visit",
	})
	if err != nil {
		t.Fatalf("assemble() error = %v", err)
	}

	if result.TotalItemCount != 2 {
		t.Fatalf("TotalItemCount = %d, want 2", result.TotalItemCount)
	}
	if len(result.Pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(result.Pages))
	}
	if len(result.Pages[1].Items) != 0 {
		t.Fatalf("page 2 items = %d, want 0", len(result.Pages[1].Items))
	}

	data := toEnvelopeData(result)
	if data.PagewiseLineItems[0].PageNo != "1" || data.PagewiseLineItems[1].PageNo != "2" {
		t.Fatalf("page numbers = %q, %q", data.PagewiseLineItems[0].PageNo, data.PagewiseLineItems[1].PageNo)
	}

	// An empty page serializes its bill_items as [], not null.
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	if !strings.Contains(string(raw), `"bill_items":[]`) {
		t.Fatalf("envelope = %s, want empty bill_items list", raw)
	}
}

func TestAllowedFile(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"bill.pdf", true},
		{"bill.PDF", true},
		{"scan.png", true},
		{"scan.jpg", true},
		{"photo.jpeg", true},
		{".pdf", true},
		{"report.docx", false},
		{"archive.tar.gz", false},
		{"noextension", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := allowedFile(tt.filename); got != tt.want {
			t.Errorf("allowedFile(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestHealth(t *testing.T) {
	router := newTestHandler(&fakeEngine{}).SetupRoutes()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/webhook/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Status != "healthy" || resp.Service != "ocr_webhook" {
		t.Fatalf("body = %+v", resp)
	}
	if len(resp.SupportedFormats) != 4 {
		t.Fatalf("supported_formats = %v", resp.SupportedFormats)
	}
}

func TestRoot(t *testing.T) {
	router := newTestHandler(&fakeEngine{}).SetupRoutes()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["message"] != "OCR Webhook API" {
		t.Fatalf("message = %v", body["message"])
	}
}
