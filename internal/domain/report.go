package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FinancialSummary contains aggregate totals over a transaction set
type FinancialSummary struct {
	TotalIncome      decimal.Decimal `json:"totalIncome"`
	TotalExpense     decimal.Decimal `json:"totalExpense"`
	Balance          decimal.Decimal `json:"balance"`
	TransactionCount int             `json:"transactionCount"`
	Start            *time.Time      `json:"start,omitempty"`
	End              *time.Time      `json:"end,omitempty"`
}

// AverageExpense returns TotalExpense / TransactionCount rounded to whole units
func (s FinancialSummary) AverageExpense() decimal.Decimal {
	if s.TransactionCount == 0 {
		return decimal.Zero
	}
	return s.TotalExpense.Div(decimal.NewFromInt(int64(s.TransactionCount))).Round(0)
}

// CategorySummary is one row of the per-category breakdown
type CategorySummary struct {
	Category     string          `json:"category"`
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	Balance      decimal.Decimal `json:"balance"`
}

// CategoryReport is the per-category breakdown of a transaction set.
// Summaries keeps the order in which categories were first encountered.
type CategoryReport struct {
	Summaries         []CategorySummary          `json:"summaries"`
	ExpenseByCategory map[string]decimal.Decimal `json:"expenseByCategory"`
	IncomeByCategory  map[string]decimal.Decimal `json:"incomeByCategory"`
}

// Report is an assembled summary and category breakdown over the same window
type Report struct {
	Summary    FinancialSummary `json:"summary"`
	Categories CategoryReport   `json:"categories"`
}

// Dashboard is the landing view: summary, average expense and latest transactions
type Dashboard struct {
	Summary        FinancialSummary `json:"summary"`
	AverageExpense decimal.Decimal  `json:"averageExpense"`
	Recent         []Transaction    `json:"recent"`
}
