package gcs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bufferWriter struct {
	bytes.Buffer
	closeErr error
	closed   bool
}

func (b *bufferWriter) Close() error {
	b.closed = true
	return b.closeErr
}

func TestObjectName(t *testing.T) {
	userID := uuid.MustParse("6f1c3a52-3b1e-4f4e-9a57-2f0f8b9c1d11")
	at := time.UnixMilli(1700000000123)

	tests := map[string]string{
		"nota.jpg":            "receipts/6f1c3a52-3b1e-4f4e-9a57-2f0f8b9c1d11/1700000000123_nota.jpg",
		"../../etc/passwd":    "receipts/6f1c3a52-3b1e-4f4e-9a57-2f0f8b9c1d11/1700000000123_passwd",
		`C:\fotos\recibo.png`: "receipts/6f1c3a52-3b1e-4f4e-9a57-2f0f8b9c1d11/1700000000123_recibo.png",
		"":                    "receipts/6f1c3a52-3b1e-4f4e-9a57-2f0f8b9c1d11/1700000000123_receipt",
	}
	for in, want := range tests {
		assert.Equal(t, want, ObjectName(userID, in, at), in)
	}
}

func TestReceiptStore_Upload(t *testing.T) {
	var gotBucket, gotObject, gotType string
	w := &bufferWriter{}
	store := newReceiptStore(func(ctx context.Context, bucket, object, contentType string) io.WriteCloser {
		gotBucket, gotObject, gotType = bucket, object, contentType
		return w
	}, "receipts", "https://storage.googleapis.com/receipts/")
	store.now = func() time.Time { return time.UnixMilli(42) }

	userID := uuid.New()
	url, err := store.Upload(context.Background(), userID, "mercado dia 5.jpg", "image/jpeg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "receipts", gotBucket)
	assert.Equal(t, "receipts/"+userID.String()+"/42_mercado dia 5.jpg", gotObject)
	assert.Equal(t, "image/jpeg", gotType)
	assert.Equal(t, "jpeg-bytes", w.String())
	assert.True(t, w.closed)
	assert.Equal(t, "https://storage.googleapis.com/receipts/receipts/"+userID.String()+"/42_mercado%20dia%205.jpg", url)
}

func TestReceiptStore_UploadFinalizeFailure(t *testing.T) {
	w := &bufferWriter{closeErr: errors.New("quota")}
	store := newReceiptStore(func(ctx context.Context, bucket, object, contentType string) io.WriteCloser {
		return w
	}, "receipts", "https://cdn.example.com")

	_, err := store.Upload(context.Background(), uuid.New(), "a.jpg", "image/jpeg", strings.NewReader("x"))
	assert.ErrorContains(t, err, "quota")
}
