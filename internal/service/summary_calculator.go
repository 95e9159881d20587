package service

import (
	"github.com/expenses-tracker/reports-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// FilterByRange returns the transactions that fall inside rng, in input order.
// A nil range keeps everything. The input slice is never modified.
func FilterByRange(transactions []domain.Transaction, rng *domain.DateRange) []domain.Transaction {
	filtered := make([]domain.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if rng.Contains(tx.OccurredAt) {
			filtered = append(filtered, tx)
		}
	}
	return filtered
}

// ComputeSummary reduces transactions to totals, balance and count.
// When rng is non-nil only transactions inside it are counted and its
// bounds are echoed on the result.
func ComputeSummary(transactions []domain.Transaction, rng *domain.DateRange) domain.FinancialSummary {
	if rng != nil {
		transactions = FilterByRange(transactions, rng)
	}

	totalIncome := decimal.Zero
	totalExpense := decimal.Zero
	for _, tx := range transactions {
		switch tx.Type {
		case domain.TransactionTypeIncome:
			totalIncome = totalIncome.Add(tx.Amount)
		case domain.TransactionTypeExpense:
			totalExpense = totalExpense.Add(tx.Amount)
		}
	}

	summary := domain.FinancialSummary{
		TotalIncome:      totalIncome,
		TotalExpense:     totalExpense,
		Balance:          totalIncome.Sub(totalExpense),
		TransactionCount: len(transactions),
	}
	if rng != nil {
		start, end := rng.Start, rng.End
		summary.Start = &start
		summary.End = &end
	}
	return summary
}
