package service

import (
	"context"
	"slices"
	"strings"

	"github.com/expenses-tracker/reports-backend/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Data source names used in DataUnavailableError
const (
	SourceTransactions = "transactions"
	SourceCategories   = "categories"
)

// ReportService assembles financial reports from an external data source.
// It keeps no state between calls; every report is recomputed.
type ReportService struct {
	transactions domain.TransactionSource
	categories   domain.CategorySource
}

// NewReportService creates a new ReportService
func NewReportService(transactions domain.TransactionSource, categories domain.CategorySource) *ReportService {
	return &ReportService{
		transactions: transactions,
		categories:   categories,
	}
}

// AssembleReport fetches the user's transactions and categories concurrently
// and returns the summary and category breakdown for rng (everything when nil).
// A failure in either fetch aborts the report.
func (s *ReportService) AssembleReport(ctx context.Context, session domain.Session, rng *domain.DateRange) (*domain.Report, error) {
	if err := checkSession(session); err != nil {
		return nil, err
	}

	var (
		transactions []domain.Transaction
		categories   []domain.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		txs, err := s.transactions.FetchTransactions(gctx, session, rng)
		if err != nil {
			return domain.NewDataUnavailableError(SourceTransactions, err)
		}
		transactions = txs
		return nil
	})
	g.Go(func() error {
		cats, err := s.categories.FetchCategories(gctx, session)
		if err != nil {
			return domain.NewDataUnavailableError(SourceCategories, err)
		}
		categories = cats
		return nil
	})

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Error().Err(err).Str("user_id", session.UserID).Msg("Failed to fetch report data")
		return nil, err
	}

	// sources may ignore the range, so it is applied here as well
	windowed := FilterByRange(transactions, rng)

	return &domain.Report{
		Summary:    ComputeSummary(windowed, rng),
		Categories: NewCategoryAggregator(categories).Aggregate(windowed),
	}, nil
}

// ComputeSummaryFor returns only the financial summary for rng
func (s *ReportService) ComputeSummaryFor(ctx context.Context, session domain.Session, rng *domain.DateRange) (*domain.FinancialSummary, error) {
	transactions, err := s.fetchTransactions(ctx, session, rng)
	if err != nil {
		return nil, err
	}
	summary := ComputeSummary(transactions, rng)
	return &summary, nil
}

// CategoryReportFor returns only the category breakdown for rng
func (s *ReportService) CategoryReportFor(ctx context.Context, session domain.Session, rng *domain.DateRange) (*domain.CategoryReport, error) {
	report, err := s.AssembleReport(ctx, session, rng)
	if err != nil {
		return nil, err
	}
	return &report.Categories, nil
}

// Dashboard returns the all-time summary, the average expense per
// transaction and the most recent transactions
func (s *ReportService) Dashboard(ctx context.Context, session domain.Session) (*domain.Dashboard, error) {
	transactions, err := s.fetchTransactions(ctx, session, nil)
	if err != nil {
		return nil, err
	}

	summary := ComputeSummary(transactions, nil)
	return &domain.Dashboard{
		Summary:        summary,
		AverageExpense: summary.AverageExpense(),
		Recent:         MostRecent(transactions, domain.DefaultRecentCount),
	}, nil
}

// RecentTransactions returns the user's n most recent transactions
func (s *ReportService) RecentTransactions(ctx context.Context, session domain.Session, n int) ([]domain.Transaction, error) {
	transactions, err := s.fetchTransactions(ctx, session, nil)
	if err != nil {
		return nil, err
	}
	return MostRecent(transactions, n), nil
}

// MostRecent returns up to n transactions ordered newest first.
// The input slice is not reordered.
func MostRecent(transactions []domain.Transaction, n int) []domain.Transaction {
	if n <= 0 {
		return []domain.Transaction{}
	}

	sorted := slices.Clone(transactions)
	slices.SortStableFunc(sorted, func(a, b domain.Transaction) int {
		return b.OccurredAt.Compare(a.OccurredAt)
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	if sorted == nil {
		return []domain.Transaction{}
	}
	return sorted
}

func (s *ReportService) fetchTransactions(ctx context.Context, session domain.Session, rng *domain.DateRange) ([]domain.Transaction, error) {
	if err := checkSession(session); err != nil {
		return nil, err
	}

	transactions, err := s.transactions.FetchTransactions(ctx, session, rng)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Error().Err(err).Str("user_id", session.UserID).Msg("Failed to fetch transactions")
		return nil, domain.NewDataUnavailableError(SourceTransactions, err)
	}
	return FilterByRange(transactions, rng), nil
}

func checkSession(session domain.Session) error {
	if strings.TrimSpace(session.UserID) == "" {
		return domain.ErrUnauthorized
	}
	return nil
}
