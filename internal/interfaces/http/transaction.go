package http

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"mesada/internal/domain/transaction"
	"mesada/internal/shared/apperr"
	"mesada/internal/shared/money"
)

// maxReceiptSize bounds a multipart request carrying a receipt image.
const maxReceiptSize = 10 << 20

type TransactionCreator interface {
	Create(ctx context.Context, params transaction.CreateParams, receipt *transaction.Receipt) (*transaction.Transaction, error)
}

type TransactionHandler struct {
	transactions TransactionCreator
	now          func() time.Time
}

func NewTransactionHandler(transactions TransactionCreator) *TransactionHandler {
	return &TransactionHandler{transactions: transactions, now: time.Now}
}

// CreateTransactionRequest is accepted as JSON or as multipart form fields.
// Amount is user text such as "25,50" or "R$ 1.234,56".
type CreateTransactionRequest struct {
	Description string  `json:"description"`
	Amount      string  `json:"amount"`
	Type        string  `json:"type"`
	Category    *string `json:"category,omitempty"`
	ExpenseDate string  `json:"expense_date,omitempty"`
	Location    *string `json:"location,omitempty"`
}

// HandleTransactions handles GET and POST /api/transactions
func (h *TransactionHandler) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleCreate(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *TransactionHandler) handleList(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	txs, err := sess.Accessor.Transactions(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	txs = transaction.Recent(txs, -1)
	if txs == nil {
		txs = []*transaction.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (h *TransactionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var (
		req     CreateTransactionRequest
		receipt *transaction.Receipt
	)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, maxReceiptSize)
		if err := r.ParseMultipartForm(maxReceiptSize); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid multipart form")
			return
		}
		req = CreateTransactionRequest{
			Description: r.FormValue("description"),
			Amount:      r.FormValue("amount"),
			Type:        r.FormValue("type"),
			Category:    optionalForm(r, "category"),
			ExpenseDate: r.FormValue("expense_date"),
			Location:    optionalForm(r, "location"),
		}

		file, header, err := r.FormFile("receipt")
		switch {
		case err == nil:
			defer file.Close()
			receipt = &transaction.Receipt{
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Body:        file,
			}
		case !errors.Is(err, http.ErrMissingFile):
			writeError(w, http.StatusBadRequest, "Invalid receipt upload")
			return
		}
	} else if !decodeJSON(w, r, &req) {
		return
	}

	params, err := h.toParams(req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	params.UserID = sess.Identity.ID

	tx, err := h.transactions.Create(r.Context(), params, receipt)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (h *TransactionHandler) toParams(req CreateTransactionRequest) (transaction.CreateParams, error) {
	amount, err := money.ParseAmount(req.Amount)
	if err != nil {
		return transaction.CreateParams{}, apperr.NewValidationError("amount", err.Error())
	}

	date := h.now()
	if req.ExpenseDate != "" {
		date, err = time.Parse("2006-01-02", req.ExpenseDate)
		if err != nil {
			return transaction.CreateParams{}, apperr.NewValidationError("expense_date", "use YYYY-MM-DD")
		}
	}
	y, m, d := date.Date()

	return transaction.CreateParams{
		Description: req.Description,
		Amount:      amount,
		Category:    trimOptional(req.Category),
		Type:        transaction.Type(strings.ToLower(strings.TrimSpace(req.Type))),
		ExpenseDate: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Location:    trimOptional(req.Location),
	}, nil
}

func optionalForm(r *http.Request, key string) *string {
	if _, ok := r.MultipartForm.Value[key]; !ok {
		return nil
	}
	v := r.FormValue(key)
	return &v
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
