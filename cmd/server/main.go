package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/claimsdesk/bill-ocr-service/api"
	"github.com/claimsdesk/bill-ocr-service/internal/models"
	"github.com/claimsdesk/bill-ocr-service/internal/ocr"
	"github.com/claimsdesk/bill-ocr-service/internal/raster"
	"github.com/claimsdesk/bill-ocr-service/internal/storage"
)

func main() {
	// .env is optional; plain environment variables work without it.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	// Load configuration
	config, err := loadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Select OCR engine
	engine, err := ocr.Select(config.OCR)
	if err != nil {
		log.Fatalf("Failed to select OCR engine: %v", err)
	}
	log.Printf("OCR engine: %s", engine.Name())

	// Initialize upload archival storage
	if err := storage.Init(config.Storage); err != nil {
		log.Printf("Warning: storage not available: %v", err)
		log.Println("Uploads will not be archived")
	} else {
		log.Println("Storage initialized")
	}

	// Create API handler
	handler := api.NewHandler(config, engine)
	router := handler.SetupRoutes()

	// Start server
	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	log.Printf("Starting Bill OCR Webhook v%s on %s", api.Version, addr)
	log.Printf("Rasterization density: %d DPI", config.OCR.DPI)
	log.Printf("Endpoints:")
	log.Printf("  POST http://%s/webhook/ocr      - Submit file for OCR", addr)
	log.Printf("  GET  http://%s/webhook/health   - Health check", addr)
	log.Printf("  GET  http://%s/                 - Endpoint listing", addr)

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func loadConfig(path string) (*models.Config, error) {
	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var config models.Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables if present
	if port := os.Getenv("PORT"); port != "" {
		fmt.Sscanf(port, "%d", &config.Port)
	}
	if host := os.Getenv("HOST"); host != "" {
		config.Host = host
	}
	if engine := os.Getenv("OCR_ENGINE"); engine != "" {
		config.OCR.Engine = engine
	}
	if language := os.Getenv("OCR_LANGUAGE"); language != "" {
		config.OCR.Language = language
	}
	if endpoint := os.Getenv("AZURE_CV_ENDPOINT"); endpoint != "" {
		config.OCR.Azure.Endpoint = endpoint
	}
	if key := os.Getenv("AZURE_CV_KEY"); key != "" {
		config.OCR.Azure.Key = key
	}
	if endpoint := os.Getenv("MINIO_ENDPOINT"); endpoint != "" {
		config.Storage.Endpoint = endpoint
	}
	if accessKey := os.Getenv("MINIO_ACCESS_KEY"); accessKey != "" {
		config.Storage.AccessKey = accessKey
	}
	if secretKey := os.Getenv("MINIO_SECRET_KEY"); secretKey != "" {
		config.Storage.SecretKey = secretKey
	}
	if bucket := os.Getenv("MINIO_BUCKET"); bucket != "" {
		config.Storage.Bucket = bucket
	}
	if os.Getenv("MINIO_USE_SSL") == "true" {
		config.Storage.UseSSL = true
	}

	// Defaults
	if config.Host == "" {
		config.Host = "0.0.0.0"
	}
	if config.Port == 0 {
		config.Port = 8000
	}
	if config.OCR.DPI == 0 {
		config.OCR.DPI = raster.DefaultDPI
	}

	return &config, nil
}
