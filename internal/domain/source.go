package domain

import "context"

// Session identifies the authenticated caller. It is passed explicitly to
// every fetch so data sources never depend on ambient state.
type Session struct {
	UserID string
	Token  string
}

// TransactionSource fetches a user's transactions. A non-nil range may be
// applied by the source; callers must not rely on it being honored.
type TransactionSource interface {
	FetchTransactions(ctx context.Context, session Session, rng *DateRange) ([]Transaction, error)
}

// CategorySource fetches a user's categories
type CategorySource interface {
	FetchCategories(ctx context.Context, session Session) ([]Category, error)
}

// DataSource provides both capabilities
type DataSource interface {
	TransactionSource
	CategorySource
}
