// Package tip asks the tip generation function for advice on recent
// transactions.
package tip

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"mesada/internal/domain/transaction"
)

// FallbackTip is shown whenever no tips can be produced.
const FallbackTip = "Continue usando o app para receber dicas!"

// DefaultMaxTransactions is how many recent transactions are sent.
const DefaultMaxTransactions = 10

// Request is the function's input body.
type Request struct {
	Transactions []*transaction.Transaction `json:"transactions"`
}

// Response is the function's output body.
type Response struct {
	Tips  []string `json:"tips,omitempty"`
	Error string   `json:"error,omitempty"`
}

type Client struct {
	url             string
	httpClient      *http.Client
	maxTransactions int
	log             zerolog.Logger
}

func NewClient(url string, maxTransactions int, httpClient *http.Client, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	if maxTransactions <= 0 {
		maxTransactions = DefaultMaxTransactions
	}
	return &Client{url: url, httpClient: httpClient, maxTransactions: maxTransactions, log: log}
}

// GetTips sends the most recent transactions to the function and returns
// its tips. It never fails: any problem yields the fallback tip.
func (c *Client) GetTips(ctx context.Context, txs []*transaction.Transaction) []string {
	if len(txs) == 0 {
		return []string{FallbackTip}
	}

	tips, err := c.fetch(ctx, transaction.Recent(txs, c.maxTransactions))
	if err != nil {
		c.log.Warn().Err(err).Msg("Tip generation failed, using fallback")
		return []string{FallbackTip}
	}
	if len(tips) == 0 {
		return []string{FallbackTip}
	}
	return tips
}

func (c *Client) fetch(ctx context.Context, recent []*transaction.Transaction) ([]string, error) {
	body, err := json.Marshal(Request{Transactions: recent})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("invalid response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("function returned status %d: %s", resp.StatusCode, out.Error)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("function error: %s", out.Error)
	}

	tips := make([]string, 0, len(out.Tips))
	for _, t := range out.Tips {
		if t = strings.TrimSpace(t); t != "" {
			tips = append(tips, t)
		}
	}
	return tips, nil
}
