package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/expenses-tracker/reports-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// MockTransactionSource is a mock implementation of domain.TransactionSource
type MockTransactionSource struct {
	ByUser  map[string][]domain.Transaction
	FetchFn func(ctx context.Context, session domain.Session, rng *domain.DateRange) ([]domain.Transaction, error)

	mu     sync.Mutex
	calls  int
	ranges []*domain.DateRange
}

// NewMockTransactionSource creates a new MockTransactionSource
func NewMockTransactionSource() *MockTransactionSource {
	return &MockTransactionSource{
		ByUser: make(map[string][]domain.Transaction),
	}
}

// FetchTransactions returns the user's transactions, ignoring the range
// like a source that does not filter server side
func (m *MockTransactionSource) FetchTransactions(ctx context.Context, session domain.Session, rng *domain.DateRange) ([]domain.Transaction, error) {
	m.mu.Lock()
	m.calls++
	m.ranges = append(m.ranges, rng)
	m.mu.Unlock()

	if m.FetchFn != nil {
		return m.FetchFn(ctx, session, rng)
	}
	transactions := m.ByUser[session.UserID]
	out := make([]domain.Transaction, len(transactions))
	copy(out, transactions)
	return out, nil
}

// AddTransaction adds a transaction for a user (helper for tests)
func (m *MockTransactionSource) AddTransaction(userID string, tx domain.Transaction) {
	m.ByUser[userID] = append(m.ByUser[userID], tx)
}

// Calls returns how many times FetchTransactions was called
func (m *MockTransactionSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastRange returns the range passed to the most recent fetch
func (m *MockTransactionSource) LastRange() *domain.DateRange {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.ranges) == 0 {
		return nil
	}
	return m.ranges[len(m.ranges)-1]
}

// MockCategorySource is a mock implementation of domain.CategorySource
type MockCategorySource struct {
	ByUser  map[string][]domain.Category
	FetchFn func(ctx context.Context, session domain.Session) ([]domain.Category, error)

	mu    sync.Mutex
	calls int
}

// NewMockCategorySource creates a new MockCategorySource
func NewMockCategorySource() *MockCategorySource {
	return &MockCategorySource{
		ByUser: make(map[string][]domain.Category),
	}
}

// FetchCategories returns the user's categories
func (m *MockCategorySource) FetchCategories(ctx context.Context, session domain.Session) ([]domain.Category, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.FetchFn != nil {
		return m.FetchFn(ctx, session)
	}
	categories := m.ByUser[session.UserID]
	out := make([]domain.Category, len(categories))
	copy(out, categories)
	return out, nil
}

// AddCategory adds a category for a user (helper for tests)
func (m *MockCategorySource) AddCategory(userID string, category domain.Category) {
	m.ByUser[userID] = append(m.ByUser[userID], category)
}

// Calls returns how many times FetchCategories was called
func (m *MockCategorySource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockObjectStore is an in-memory object store
type MockObjectStore struct {
	Objects      map[string][]byte
	ContentTypes map[string]string
	UploadErr    error
	PresignErr   error

	mu sync.Mutex
}

// NewMockObjectStore creates a new MockObjectStore
func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{
		Objects:      make(map[string][]byte),
		ContentTypes: make(map[string]string),
	}
}

// Upload stores the data under objectPath
func (m *MockObjectStore) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	buf, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[objectPath] = buf
	m.ContentTypes[objectPath] = contentType
	return objectPath, nil
}

// GeneratePresignedURL returns a fake signed link
func (m *MockObjectStore) GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error) {
	if m.PresignErr != nil {
		return "", m.PresignErr
	}
	return fmt.Sprintf("https://storage.test/%s?expires=%d", objectPath, int(expiry.Seconds())), nil
}

// NewTransaction builds a transaction for tests. amount is parsed as a decimal string.
func NewTransaction(id string, txType domain.TransactionType, categoryID, amount string, occurredAt time.Time) domain.Transaction {
	return domain.Transaction{
		ID:          id,
		Type:        txType,
		CategoryID:  categoryID,
		Description: "Test transaction " + id,
		Amount:      decimal.RequireFromString(amount),
		OccurredAt:  occurredAt,
	}
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}
