package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestTransactionTypeConstants(t *testing.T) {
	tests := []struct {
		name     string
		txType   TransactionType
		expected string
	}{
		{"income", TransactionTypeIncome, "INGRESO"},
		{"expense", TransactionTypeExpense, "GASTO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if string(tt.txType) != tt.expected {
				t.Errorf("TransactionType %s = %s, want %s", tt.name, tt.txType, tt.expected)
			}
			if !tt.txType.IsValid() {
				t.Errorf("Expected %s to be valid", tt.txType)
			}
		})
	}

	if TransactionType("income").IsValid() {
		t.Error("Expected lowercase english type to be invalid")
	}
}

func TestTransactionValidate(t *testing.T) {
	valid := func() Transaction {
		return Transaction{
			ID:          "tx-1",
			Type:        TransactionTypeExpense,
			CategoryID:  "cat-1",
			Description: "Groceries",
			Amount:      decimal.NewFromInt(40),
		}
	}

	tests := []struct {
		name    string
		mutate  func(tx *Transaction)
		wantErr error
	}{
		{"valid", func(tx *Transaction) {}, nil},
		{"zero amount is allowed", func(tx *Transaction) { tx.Amount = decimal.Zero }, nil},
		{"unknown type", func(tx *Transaction) { tx.Type = "TRANSFER" }, ErrInvalidTransactionType},
		{"missing category", func(tx *Transaction) { tx.CategoryID = "  " }, ErrCategoryRequired},
		{"short description", func(tx *Transaction) { tx.Description = " ab " }, ErrDescriptionTooShort},
		{"accented description counts runes", func(tx *Transaction) { tx.Description = "ñá" }, ErrDescriptionTooShort},
		{"negative amount", func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-1) }, ErrNegativeAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid()
			tt.mutate(&tx)
			err := tx.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("Expected error to match ErrValidation, got %v", err)
			}
		})
	}
}

func TestCategoryValidate(t *testing.T) {
	c := Category{ID: "1", Name: "  "}
	if err := c.Validate(); !errors.Is(err, ErrNameRequired) {
		t.Errorf("Expected ErrNameRequired, got %v", err)
	}

	c.Name = "Comida"
	if err := c.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}
