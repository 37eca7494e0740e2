package transaction

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"mesada/internal/shared/apperr"
)

// ReceiptStore uploads receipt images and returns their public URL.
type ReceiptStore interface {
	Upload(ctx context.Context, userID uuid.UUID, filename, contentType string, body io.Reader) (string, error)
}

// Receipt is an image attached to a new transaction.
type Receipt struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type Service struct {
	repo     Repository
	receipts ReceiptStore
}

func NewService(repo Repository, receipts ReceiptStore) *Service {
	return &Service{repo: repo, receipts: receipts}
}

// Create records a transaction for params.UserID, uploading the receipt first
// when one is attached.
func (s *Service) Create(ctx context.Context, params CreateParams, receipt *Receipt) (*Transaction, error) {
	params.Description = strings.TrimSpace(params.Description)
	if err := params.Validate(); err != nil {
		return nil, err
	}

	if receipt != nil {
		if s.receipts == nil {
			return nil, apperr.NewValidationError("receipt", "uploads are not configured")
		}
		name := path.Base(strings.ReplaceAll(receipt.Filename, "\\", "/"))
		if name == "." || name == "/" || name == "" {
			return nil, apperr.NewValidationError("receipt", "filename is required")
		}
		url, err := s.receipts.Upload(ctx, params.UserID, name, receipt.ContentType, receipt.Body)
		if err != nil {
			return nil, apperr.Step("upload receipt", err)
		}
		params.ReceiptImageURL = &url
	}

	tx, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, apperr.Step("insert transaction", err)
	}
	return tx, nil
}
