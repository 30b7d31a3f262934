// Package engine extracts structured transaction candidates from bank
// statement text using an LLM with a constrained JSON output schema.
package engine

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/fintrack-api/pkg/money"
)

// TransactionType classifies the direction of a transaction.
type TransactionType string

const (
	TypeIncome  TransactionType = "INCOME"
	TypeExpense TransactionType = "EXPENSE"
)

// ParseTransactionType validates a raw type string.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(strings.ToUpper(strings.TrimSpace(s))) {
	case TypeIncome:
		return TypeIncome, nil
	case TypeExpense:
		return TypeExpense, nil
	default:
		return "", fmt.Errorf("invalid transaction type %q", s)
	}
}

// Confidence describes how sure the pipeline is about a candidate's category.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
)

// Candidate is one extracted transaction awaiting user review. ID is an
// ephemeral client-side token, not a database key.
type Candidate struct {
	ID                  string          `json:"id"`
	Date                string          `json:"date"`
	Description         string          `json:"description"`
	Amount              money.Amount    `json:"amount"`
	Type                TransactionType `json:"type"`
	SuggestedCategoryID *uuid.UUID      `json:"suggestedCategoryId"`
	IsDuplicate         bool            `json:"isDuplicate"`
	Confidence          Confidence      `json:"confidence"`
}

// NewCandidate validates and normalizes one extracted row. The sign of the
// amount is forced to agree with the declared type: INCOME is positive,
// EXPENSE negative. Date must be a calendar date in YYYY-MM-DD form.
func NewCandidate(date, description string, amount money.Amount, txType TransactionType) (Candidate, error) {
	date = strings.TrimSpace(date)
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return Candidate{}, fmt.Errorf("invalid date %q: %w", date, err)
	}

	description = strings.TrimSpace(description)
	if description == "" {
		return Candidate{}, fmt.Errorf("empty description")
	}

	switch txType {
	case TypeIncome:
		if amount.IsNegative() {
			amount = amount.Neg()
		}
	case TypeExpense:
		if amount.IsPositive() {
			amount = amount.Neg()
		}
	default:
		return Candidate{}, fmt.Errorf("invalid transaction type %q", txType)
	}

	return Candidate{
		ID:          NewCandidateToken(),
		Date:        date,
		Description: description,
		Amount:      amount,
		Type:        txType,
		Confidence:  ConfidenceMedium,
	}, nil
}

const tokenAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewCandidateToken returns a short random token for correlating preview rows
// with the confirm request. Not a persistent identifier.
func NewCandidateToken() string {
	var sb strings.Builder
	for i := 0; i < 8; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(tokenAlphabet))))
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken.
			panic(fmt.Sprintf("candidate token: %v", err))
		}
		sb.WriteByte(tokenAlphabet[n.Int64()])
	}
	return sb.String()
}
