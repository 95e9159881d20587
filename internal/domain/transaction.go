package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType uses the wire values of the expenses API
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INGRESO"
	TransactionTypeExpense TransactionType = "GASTO"
)

// Validation constants
const (
	MinDescriptionLength = 3
	DefaultRecentCount   = 5
)

// IsValid reports whether t is one of the known transaction types
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Transaction is a single dated money movement.
// Amount is always a non-negative magnitude; Type decides the sign.
type Transaction struct {
	ID           string          `json:"id"`
	Type         TransactionType `json:"type"`
	CategoryID   string          `json:"categoryId"`
	CategoryName *string         `json:"categoryName,omitempty"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	OccurredAt   time.Time       `json:"occurredAt"`
}

// Validate applies the rules the transaction form enforces before submitting
func (t *Transaction) Validate() error {
	if !t.Type.IsValid() {
		return ErrInvalidTransactionType
	}
	if strings.TrimSpace(t.CategoryID) == "" {
		return ErrCategoryRequired
	}
	if len([]rune(strings.TrimSpace(t.Description))) < MinDescriptionLength {
		return ErrDescriptionTooShort
	}
	if t.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}
