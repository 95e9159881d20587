package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/expenses-tracker/reports-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store reads transactions and categories from a read-only replica of the
// expenses database. It implements domain.DataSource.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect opens a pool for databaseURL and verifies it with a ping
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

const (
	sourceTransactions = "transactions"
	sourceCategories   = "categories"
)

const selectTransactions = `
SELECT t.id::text, t.type, t.category_id::text, c.name, t.description, t.amount, t.occurred_at
FROM transactions t
LEFT JOIN categories c ON c.id = t.category_id AND c.user_id = t.user_id
WHERE t.user_id::text = $1`

const selectCategories = `
SELECT id::text, name
FROM categories
WHERE user_id::text = $1
ORDER BY name`

// buildTransactionsQuery adds the inclusive range bounds when rng is set
func buildTransactionsQuery(userID string, rng *domain.DateRange) (string, []any) {
	var sb strings.Builder
	sb.WriteString(selectTransactions)
	args := []any{userID}
	if rng != nil {
		sb.WriteString(" AND t.occurred_at >= $2 AND t.occurred_at <= $3")
		args = append(args, rng.Start, rng.End)
	}
	sb.WriteString(" ORDER BY t.occurred_at DESC, t.id")
	return sb.String(), args
}

// FetchTransactions returns the user's transactions inside rng (all when nil)
func (s *Store) FetchTransactions(ctx context.Context, session domain.Session, rng *domain.DateRange) ([]domain.Transaction, error) {
	query, args := buildTransactionsQuery(session.UserID, rng)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.NewDataUnavailableError(sourceTransactions, fmt.Errorf("failed to query transactions: %w", err))
	}

	transactions, err := pgx.CollectRows(rows, scanTransaction)
	if err != nil {
		return nil, domain.NewDataUnavailableError(sourceTransactions, fmt.Errorf("failed to scan transactions: %w", err))
	}
	return transactions, nil
}

// FetchCategories returns the user's categories ordered by name
func (s *Store) FetchCategories(ctx context.Context, session domain.Session) ([]domain.Category, error) {
	rows, err := s.pool.Query(ctx, selectCategories, session.UserID)
	if err != nil {
		return nil, domain.NewDataUnavailableError(sourceCategories, fmt.Errorf("failed to query categories: %w", err))
	}

	categories, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Category, error) {
		var c domain.Category
		err := row.Scan(&c.ID, &c.Name)
		return c, err
	})
	if err != nil {
		return nil, domain.NewDataUnavailableError(sourceCategories, fmt.Errorf("failed to scan categories: %w", err))
	}
	return categories, nil
}

type transactionRow struct {
	ID           string
	Type         string
	CategoryID   pgtype.Text
	CategoryName pgtype.Text
	Description  string
	Amount       pgtype.Numeric
	OccurredAt   pgtype.Timestamptz
}

func scanTransaction(row pgx.CollectableRow) (domain.Transaction, error) {
	var r transactionRow
	if err := row.Scan(&r.ID, &r.Type, &r.CategoryID, &r.CategoryName, &r.Description, &r.Amount, &r.OccurredAt); err != nil {
		return domain.Transaction{}, err
	}
	return rowToTransaction(r), nil
}

func rowToTransaction(r transactionRow) domain.Transaction {
	tx := domain.Transaction{
		ID:          r.ID,
		Type:        domain.TransactionType(r.Type),
		Description: r.Description,
		Amount:      pgNumericToDecimal(r.Amount),
	}
	if r.CategoryID.Valid {
		tx.CategoryID = r.CategoryID.String
	}
	if r.CategoryName.Valid {
		name := r.CategoryName.String
		tx.CategoryName = &name
	}
	if r.OccurredAt.Valid {
		tx.OccurredAt = r.OccurredAt.Time
	}
	return tx
}
