// Package gemini produces savings tips with Google's Gemini models.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"google.golang.org/genai"

	"mesada/internal/domain/transaction"
	"mesada/internal/shared/money"
)

const DefaultModel = "gemini-2.0-flash"

var ErrEmptyResponse = errors.New("empty response from model")

// completeFunc sends one prompt and returns the model's text.
type completeFunc func(ctx context.Context, prompt string) (string, error)

type Generator struct {
	complete completeFunc
	maxTips  int
}

// New creates a Generator backed by the Gemini API.
func New(ctx context.Context, apiKey, model string, maxTips int) (*Generator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}

	complete := func(ctx context.Context, prompt string) (string, error) {
		resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
			Temperature: genai.Ptr[float32](0.7),
		})
		if err != nil {
			return "", fmt.Errorf("generate content: %w", err)
		}
		return resp.Text(), nil
	}
	return newGenerator(complete, maxTips), nil
}

func newGenerator(complete completeFunc, maxTips int) *Generator {
	if maxTips < 1 {
		maxTips = 5
	}
	return &Generator{complete: complete, maxTips: maxTips}
}

// GenerateTips asks the model for short tips about txs.
func (g *Generator) GenerateTips(ctx context.Context, txs []*transaction.Transaction) ([]string, error) {
	text, err := g.complete(ctx, BuildPrompt(txs, g.maxTips))
	if err != nil {
		return nil, err
	}

	tips := SplitTips(text, g.maxTips)
	if len(tips) == 0 {
		return nil, ErrEmptyResponse
	}
	return tips, nil
}

// BuildPrompt renders the pt-BR instruction followed by one line per
// transaction.
func BuildPrompt(txs []*transaction.Transaction, maxTips int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Você é um educador financeiro para famílias brasileiras. "+
		"Analise as transações abaixo e escreva de 3 a %d dicas curtas e práticas "+
		"para economizar ou organizar melhor o dinheiro. "+
		"Responda apenas com as dicas, uma por linha, sem numeração e sem introdução.\n\n", maxTips)
	b.WriteString("Transações:\n")

	for _, tx := range txs {
		kind := "Despesa"
		if tx.Type == transaction.TypeIncome {
			kind = "Receita"
		}
		category := transaction.UncategorizedLabel
		if tx.Category != nil && *tx.Category != "" {
			category = *tx.Category
		}
		fmt.Fprintf(&b, "- %s | %s | %s | %s | %s\n",
			tx.ExpenseDate.Format("02/01/2006"), kind, tx.Description, category, money.FormatBRL(tx.Amount))
	}
	return b.String()
}

var bulletPrefix = regexp.MustCompile(`^\s*(?:[-*•]+|\d+[.)-])\s*`)

// SplitTips turns a model answer into at most max tips. A JSON array of
// strings is taken as is; otherwise every non-empty line is a tip, without
// list markers or markdown emphasis. Code fence lines are dropped.
func SplitTips(text string, max int) []string {
	text = stripFences(text)

	var tips []string
	var arr []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &arr); err == nil {
		for _, tip := range arr {
			if tip = strings.TrimSpace(tip); tip != "" {
				tips = append(tips, tip)
			}
		}
		if len(tips) > max {
			tips = tips[:max]
		}
		return tips
	}

	for _, line := range strings.Split(text, "\n") {
		line = bulletPrefix.ReplaceAllString(line, "")
		line = strings.TrimSpace(strings.ReplaceAll(line, "**", ""))
		if line == "" {
			continue
		}
		tips = append(tips, line)
		if len(tips) == max {
			break
		}
	}
	return tips
}

// stripFences removes markdown code fence lines such as ``` and ```json.
func stripFences(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
