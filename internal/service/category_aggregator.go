package service

import (
	"strings"

	"github.com/expenses-tracker/reports-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// CategoryAggregator groups transactions by category label and type
type CategoryAggregator struct {
	names map[string]string
}

// NewCategoryAggregator creates a CategoryAggregator that resolves labels
// against the given categories
func NewCategoryAggregator(categories []domain.Category) *CategoryAggregator {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		if name := strings.TrimSpace(c.Name); name != "" {
			names[c.ID] = name
		}
	}
	return &CategoryAggregator{names: names}
}

// ComputeCategoryReport aggregates transactions using only their own
// category names
func ComputeCategoryReport(transactions []domain.Transaction) domain.CategoryReport {
	return NewCategoryAggregator(nil).Aggregate(transactions)
}

// Label resolves the grouping label of a transaction: the fetched category
// name, then the name carried by the transaction, then UnknownCategoryLabel.
func (a *CategoryAggregator) Label(tx domain.Transaction) string {
	if name, ok := a.names[tx.CategoryID]; ok {
		return name
	}
	if tx.CategoryName != nil {
		if name := strings.TrimSpace(*tx.CategoryName); name != "" {
			return name
		}
	}
	return domain.UnknownCategoryLabel
}

// Aggregate builds the per-category breakdown. Rows follow first-encounter
// order and every label seen in the input gets exactly one row.
func (a *CategoryAggregator) Aggregate(transactions []domain.Transaction) domain.CategoryReport {
	report := domain.CategoryReport{
		Summaries:         []domain.CategorySummary{},
		ExpenseByCategory: make(map[string]decimal.Decimal),
		IncomeByCategory:  make(map[string]decimal.Decimal),
	}

	rows := make(map[string]int)
	for _, tx := range transactions {
		label := a.Label(tx)

		idx, seen := rows[label]
		if !seen {
			idx = len(report.Summaries)
			rows[label] = idx
			report.Summaries = append(report.Summaries, domain.CategorySummary{
				Category:     label,
				TotalIncome:  decimal.Zero,
				TotalExpense: decimal.Zero,
			})
		}

		row := &report.Summaries[idx]
		switch tx.Type {
		case domain.TransactionTypeIncome:
			row.TotalIncome = row.TotalIncome.Add(tx.Amount)
			report.IncomeByCategory[label] = row.TotalIncome
		case domain.TransactionTypeExpense:
			row.TotalExpense = row.TotalExpense.Add(tx.Amount)
			report.ExpenseByCategory[label] = row.TotalExpense
		}
	}

	for i := range report.Summaries {
		report.Summaries[i].Balance = report.Summaries[i].TotalIncome.Sub(report.Summaries[i].TotalExpense)
	}

	return report
}
