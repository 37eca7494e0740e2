// Package gcs stores receipt images in Google Cloud Storage.
package gcs

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

const uploadTimeout = 2 * time.Minute

// objectWriter opens a writer for one object. Swapped in tests.
type objectWriter func(ctx context.Context, bucket, object, contentType string) io.WriteCloser

// ReceiptStore uploads receipts to receipts/{user_id}/{unix_ms}_{filename}
// and returns their public URL.
type ReceiptStore struct {
	bucket    string
	publicURL string
	open      objectWriter
	now       func() time.Time
}

// NewReceiptStore uses client for uploads. publicURL is the prefix that
// serves the bucket's objects.
func NewReceiptStore(client *storage.Client, bucket, publicURL string) *ReceiptStore {
	open := func(ctx context.Context, bucket, object, contentType string) io.WriteCloser {
		w := client.Bucket(bucket).Object(object).NewWriter(ctx)
		w.ContentType = contentType
		return w
	}
	return newReceiptStore(open, bucket, publicURL)
}

func newReceiptStore(open objectWriter, bucket, publicURL string) *ReceiptStore {
	return &ReceiptStore{
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		open:      open,
		now:       time.Now,
	}
}

// ObjectName builds the object path for a receipt uploaded at t.
func ObjectName(userID uuid.UUID, filename string, t time.Time) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "receipt"
	}
	return fmt.Sprintf("receipts/%s/%d_%s", userID, t.UnixMilli(), name)
}

func (s *ReceiptStore) Upload(ctx context.Context, userID uuid.UUID, filename, contentType string, body io.Reader) (string, error) {
	object := ObjectName(userID, filename, s.now())

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := s.open(ctx, s.bucket, object, contentType)
	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("copy receipt to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload: %w", err)
	}

	return s.PublicURL(object), nil
}

// PublicURL returns the address serving object.
func (s *ReceiptStore) PublicURL(object string) string {
	segments := strings.Split(object, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.publicURL + "/" + strings.Join(segments, "/")
}
