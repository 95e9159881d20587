package service

import (
	"encoding/json"
	"testing"

	"github.com/expenses-tracker/reports-backend/internal/domain"
	"github.com/expenses-tracker/reports-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeCategoryReport_Empty(t *testing.T) {
	report := ComputeCategoryReport(nil)

	require.NotNil(t, report.Summaries)
	require.NotNil(t, report.ExpenseByCategory)
	require.NotNil(t, report.IncomeByCategory)
	assert.Empty(t, report.Summaries)
	assert.Empty(t, report.ExpenseByCategory)
	assert.Empty(t, report.IncomeByCategory)
}

func TestCategoryAggregator_Scenario(t *testing.T) {
	aggregator := NewCategoryAggregator([]domain.Category{
		{ID: "A", Name: "Comida"},
		{ID: "B", Name: "Transporte"},
	})

	report := aggregator.Aggregate(scenarioTransactions())

	require.Len(t, report.Summaries, 2)

	a := report.Summaries[0]
	assert.Equal(t, "Comida", a.Category)
	assert.Equal(t, "100.00", a.TotalIncome.StringFixed(2))
	assert.Equal(t, "40.00", a.TotalExpense.StringFixed(2))
	assert.Equal(t, "60.00", a.Balance.StringFixed(2))

	b := report.Summaries[1]
	assert.Equal(t, "Transporte", b.Category)
	assert.Equal(t, "0.00", b.TotalIncome.StringFixed(2))
	assert.Equal(t, "10.00", b.TotalExpense.StringFixed(2))
	assert.Equal(t, "-10.00", b.Balance.StringFixed(2))

	assert.Len(t, report.ExpenseByCategory, 2)
	assert.Equal(t, "40.00", report.ExpenseByCategory["Comida"].StringFixed(2))
	assert.Equal(t, "10.00", report.ExpenseByCategory["Transporte"].StringFixed(2))
	assert.Len(t, report.IncomeByCategory, 1)
	assert.Equal(t, "100.00", report.IncomeByCategory["Comida"].StringFixed(2))
}

func TestCategoryAggregator_FirstEncounterOrder(t *testing.T) {
	transactions := []domain.Transaction{
		testutil.NewTransaction("1", domain.TransactionTypeExpense, "Z", "1", day),
		testutil.NewTransaction("2", domain.TransactionTypeExpense, "A", "1", day),
		testutil.NewTransaction("3", domain.TransactionTypeIncome, "Z", "1", day),
		testutil.NewTransaction("4", domain.TransactionTypeExpense, "M", "1", day),
	}
	aggregator := NewCategoryAggregator([]domain.Category{
		{ID: "A", Name: "Alpha"}, {ID: "M", Name: "Mid"}, {ID: "Z", Name: "Zulu"},
	})

	report := aggregator.Aggregate(transactions)

	labels := make([]string, 0, len(report.Summaries))
	for _, row := range report.Summaries {
		labels = append(labels, row.Category)
	}
	assert.Equal(t, []string{"Zulu", "Alpha", "Mid"}, labels)
}

func TestCategoryAggregator_UnknownCategory(t *testing.T) {
	transactions := []domain.Transaction{
		testutil.NewTransaction("1", domain.TransactionTypeExpense, "deleted-1", "12.50", day),
		testutil.NewTransaction("2", domain.TransactionTypeExpense, "deleted-2", "7.50", day),
		testutil.NewTransaction("3", domain.TransactionTypeIncome, "A", "3", day),
	}
	aggregator := NewCategoryAggregator([]domain.Category{{ID: "A", Name: "Comida"}})

	report := aggregator.Aggregate(transactions)

	require.Len(t, report.Summaries, 2)
	assert.Equal(t, domain.UnknownCategoryLabel, report.Summaries[0].Category)
	assert.Equal(t, "20.00", report.Summaries[0].TotalExpense.StringFixed(2))
	assert.Equal(t, "20.00", report.ExpenseByCategory[domain.UnknownCategoryLabel].StringFixed(2))
}

func TestCategoryAggregator_LabelFallbacks(t *testing.T) {
	aggregator := NewCategoryAggregator([]domain.Category{{ID: "A", Name: "Fetched"}, {ID: "E", Name: "  "}})

	withName := testutil.NewTransaction("1", domain.TransactionTypeExpense, "A", "1", day)
	withName.CategoryName = testutil.StringPtr("Denormalized")
	assert.Equal(t, "Fetched", aggregator.Label(withName))

	onlyDenormalized := testutil.NewTransaction("2", domain.TransactionTypeExpense, "B", "1", day)
	onlyDenormalized.CategoryName = testutil.StringPtr("Denormalized")
	assert.Equal(t, "Denormalized", aggregator.Label(onlyDenormalized))

	blankName := testutil.NewTransaction("3", domain.TransactionTypeExpense, "C", "1", day)
	blankName.CategoryName = testutil.StringPtr("   ")
	assert.Equal(t, domain.UnknownCategoryLabel, aggregator.Label(blankName))

	blankFetched := testutil.NewTransaction("4", domain.TransactionTypeExpense, "E", "1", day)
	assert.Equal(t, domain.UnknownCategoryLabel, aggregator.Label(blankFetched))
}

func TestCategoryAggregator_EveryLabelHasExactlyOneRow(t *testing.T) {
	transactions := []domain.Transaction{
		testutil.NewTransaction("1", domain.TransactionTypeExpense, "A", "1", day),
		testutil.NewTransaction("2", domain.TransactionTypeIncome, "B", "2", day),
		testutil.NewTransaction("3", domain.TransactionTypeExpense, "A", "3", day),
		testutil.NewTransaction("4", domain.TransactionTypeIncome, "C", "0", day),
		testutil.NewTransaction("5", domain.TransactionTypeExpense, "missing", "4", day),
	}
	aggregator := NewCategoryAggregator([]domain.Category{
		{ID: "A", Name: "A"}, {ID: "B", Name: "B"}, {ID: "C", Name: "C"},
	})

	report := aggregator.Aggregate(transactions)

	seen := make(map[string]int)
	for _, row := range report.Summaries {
		seen[row.Category]++
	}
	for _, tx := range transactions {
		assert.Equal(t, 1, seen[aggregator.Label(tx)], "label %s", aggregator.Label(tx))
	}
	// zero-amount income still yields a row
	assert.Contains(t, seen, "C")
}

func TestComputeCategoryReport_UsesDenormalizedNames(t *testing.T) {
	tx := testutil.NewTransaction("1", domain.TransactionTypeExpense, "A", "9", day)
	tx.CategoryName = testutil.StringPtr("Salud")

	report := ComputeCategoryReport([]domain.Transaction{tx})

	require.Len(t, report.Summaries, 1)
	assert.Equal(t, "Salud", report.Summaries[0].Category)
}

func TestCategoryAggregator_IdempotentAndInputUntouched(t *testing.T) {
	transactions := scenarioTransactions()
	aggregator := NewCategoryAggregator([]domain.Category{{ID: "A", Name: "Comida"}})

	first, err := json.Marshal(aggregator.Aggregate(transactions))
	require.NoError(t, err)
	second, err := json.Marshal(aggregator.Aggregate(transactions))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Equal(t, scenarioTransactions(), transactions)
}
