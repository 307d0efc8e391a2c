package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/claimsdesk/bill-ocr-service/internal/models"
)

var Client *minio.Client
var BucketName string

// Init connects to MinIO for raw-upload archival. An empty endpoint
// means archival is disabled; callers treat the error as a warning.
func Init(cfg models.StorageConfig) error {
	if cfg.Endpoint == "" {
		return fmt.Errorf("no storage endpoint configured")
	}

	BucketName = cfg.Bucket
	if BucketName == "" {
		BucketName = "bills"
	}

	var err error
	Client, err = minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %w", err)
	}

	// Verify bucket exists
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := Client.BucketExists(ctx, BucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", BucketName)
	}

	return nil
}

// ArchiveBill stores a raw upload under bills/YYYY/MM/{filename}.
// Archival failures are never fatal to request processing.
func ArchiveBill(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	now := time.Now()
	objectName := fmt.Sprintf("%d/%02d/%s", now.Year(), now.Month(), filename)

	_, err := Client.PutObject(ctx, BucketName, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive bill: %w", err)
	}

	return fmt.Sprintf("%s/%s", BucketName, objectName), nil
}

// ContentTypeForExtension maps an upload extension to a MIME type, used
// when the client omits one.
func ContentTypeForExtension(ext string) string {
	switch ext {
	case "pdf":
		return "application/pdf"
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
