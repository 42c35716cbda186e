package export

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Uploader writes export workbooks to a Cloud Storage bucket.
type Uploader struct {
	client *storage.Client
	bucket string
}

// NewUploader creates an uploader targeting bucket.
func NewUploader(client *storage.Client, bucket string) *Uploader {
	return &Uploader{client: client, bucket: bucket}
}

// Upload stores the workbook under exports/YYYY/MM/DD/<uuid>.xlsx and
// returns the gs:// URI.
func (u *Uploader) Upload(ctx context.Context, f *excelize.File) (string, error) {
	objectName := fmt.Sprintf("exports/%s/%s.xlsx", time.Now().Format("2006/01/02"), uuid.New().String())

	wc := u.client.Bucket(u.bucket).Object(objectName).NewWriter(ctx)
	wc.ContentType = xlsxContentType

	if err := f.Write(wc); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("Upload: writing workbook: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("Upload: closing object writer: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", u.bucket, objectName), nil
}
