package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/FACorreiaa/fintrack-api/pkg/money"
)

// ErrAIExtraction is returned when the model fails or its output cannot be
// turned into valid candidates.
var ErrAIExtraction = errors.New("failed to extract transactions with AI")

// ModelClient generates a structured-JSON completion for a prompt.
type ModelClient interface {
	GenerateStructured(ctx context.Context, prompt string) (string, error)
}

// Engine drives LLM transaction extraction.
type Engine struct {
	model  ModelClient
	logger *slog.Logger
}

// New creates an extraction Engine.
func New(model ModelClient, logger *slog.Logger) *Engine {
	return &Engine{model: model, logger: logger}
}

// rawTransaction mirrors the JSON schema the model is constrained to.
type rawTransaction struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
}

type rawExtraction struct {
	Transactions []rawTransaction `json:"transactions"`
}

const promptTemplate = `You are a financial data extraction assistant. Extract ALL transactions from this bank statement.

RULES:
1. Extract EVERY transaction (income and expenses)
2. Format dates as YYYY-MM-DD
3. Use positive numbers for income, negative for expenses
4. Clean up merchant names (remove extra info like store numbers)
5. Ignore headers, footers, and non-transaction text
6. If amount has "+" it's INCOME, if "-" or no sign it's EXPENSE

IMPORTANT - REFUNDS:
- If you see "refund", "credit", "return", or "reversal" → treat as INCOME (positive amount)
- Example: "Amazon Refund $50" → amount: 50, type: INCOME
- Example: "Walmart Return $25" → amount: 25, type: INCOME

Bank Statement Text:
%s

Extract all transactions now.`

// Extract sends statement text to the model and returns validated candidates.
// Rows that fail validation are dropped with a warning rather than failing
// the batch; an unparseable response fails with ErrAIExtraction.
func (e *Engine) Extract(ctx context.Context, statementText string) ([]Candidate, error) {
	prompt := fmt.Sprintf(promptTemplate, statementText)

	raw, err := e.model.GenerateStructured(ctx, prompt)
	if err != nil {
		e.logger.Error("model call failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", ErrAIExtraction, err)
	}

	parsed, err := decodeExtraction(raw)
	if err != nil {
		e.logger.Error("model returned unparseable output",
			slog.Any("error", err),
			slog.Int("response_chars", len(raw)),
		)
		return nil, fmt.Errorf("%w: %v", ErrAIExtraction, err)
	}

	candidates := make([]Candidate, 0, len(parsed.Transactions))
	for i, tx := range parsed.Transactions {
		txType, err := ParseTransactionType(tx.Type)
		if err != nil {
			e.logger.Warn("dropping extracted row", slog.Int("row", i), slog.Any("error", err))
			continue
		}
		candidate, err := NewCandidate(tx.Date, tx.Description, money.NewAmount(tx.Amount), txType)
		if err != nil {
			e.logger.Warn("dropping extracted row", slog.Int("row", i), slog.Any("error", err))
			continue
		}
		candidates = append(candidates, candidate)
	}

	e.logger.Info("extracted transaction candidates",
		slog.Int("raw", len(parsed.Transactions)),
		slog.Int("valid", len(candidates)),
	)
	return candidates, nil
}

func decodeExtraction(raw string) (rawExtraction, error) {
	clean := stripModelFences(raw)
	if clean == "" {
		return rawExtraction{}, errors.New("empty model response")
	}

	var parsed rawExtraction
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return rawExtraction{}, fmt.Errorf("unmarshal model response: %w", err)
	}
	return parsed, nil
}

// stripModelFences removes Markdown code fences the model may wrap its JSON
// in despite the structured-output instruction.
func stripModelFences(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	return strings.TrimSpace(s)
}
