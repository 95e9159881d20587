package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/expenses-tracker/reports-backend/internal/domain"
	"github.com/expenses-tracker/reports-backend/internal/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// DefaultTimeout bounds every call to the transactions API
const DefaultTimeout = 10 * time.Second

const (
	sourceTransactions = "transactions"
	sourceCategories   = "categories"
)

// maxErrorBody caps how much of an error response is kept for logging
const maxErrorBody = 512

// Client reads transactions and categories from the expenses REST API.
// It implements domain.DataSource. Every failure is a *domain.DataUnavailableError.
type Client struct {
	baseURL  string
	http     *http.Client
	location *time.Location
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLocation sets the zone used for timestamps that carry no offset
func WithLocation(loc *time.Location) Option {
	return func(c *Client) {
		c.location = loc
	}
}

// NewClient creates a Client for baseURL, e.g. "http://localhost:8081/api"
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		location: time.Local,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type transactionDTO struct {
	ID              flexibleID      `json:"id"`
	TipoTransaccion string          `json:"tipoTransaccion"`
	CategoriaID     flexibleID      `json:"categoriaId"`
	CategoriaNombre *string         `json:"categoriaNombre"`
	Descripcion     string          `json:"descripcion"`
	Monto           decimal.Decimal `json:"monto"`
	Fecha           string          `json:"fecha"`
}

type categoryDTO struct {
	ID     flexibleID `json:"id"`
	Nombre string     `json:"nombre"`
}

// flexibleID accepts ids sent either as JSON numbers or strings
type flexibleID string

func (id *flexibleID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s", data)
	}
	*id = flexibleID(n.String())
	return nil
}

func (id flexibleID) String() string {
	return string(id)
}

// FetchTransactions calls GET /transactions/user/{id}. The range is sent as
// fechaInicio/fechaFin; the API may ignore it.
func (c *Client) FetchTransactions(ctx context.Context, session domain.Session, rng *domain.DateRange) ([]domain.Transaction, error) {
	query := url.Values{}
	if rng != nil {
		query.Set("fechaInicio", rng.StartISO())
		query.Set("fechaFin", rng.EndISO())
	}

	var dtos []transactionDTO
	if err := c.get(ctx, session, "/transactions/user/"+url.PathEscape(session.UserID), query, &dtos); err != nil {
		return nil, domain.NewDataUnavailableError(sourceTransactions, err)
	}

	transactions := make([]domain.Transaction, 0, len(dtos))
	for _, dto := range dtos {
		tx, err := c.toTransaction(dto)
		if err != nil {
			return nil, domain.NewDataUnavailableError(sourceTransactions, fmt.Errorf("invalid transaction %s: %w", dto.ID, err))
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}

// FetchCategories calls GET /categories/user/{id}
func (c *Client) FetchCategories(ctx context.Context, session domain.Session) ([]domain.Category, error) {
	var dtos []categoryDTO
	if err := c.get(ctx, session, "/categories/user/"+url.PathEscape(session.UserID), nil, &dtos); err != nil {
		return nil, domain.NewDataUnavailableError(sourceCategories, err)
	}

	categories := make([]domain.Category, 0, len(dtos))
	for _, dto := range dtos {
		categories = append(categories, domain.Category{ID: dto.ID.String(), Name: dto.Nombre})
	}
	return categories, nil
}

func (c *Client) toTransaction(dto transactionDTO) (domain.Transaction, error) {
	occurredAt, err := util.ParseTimestamp(dto.Fecha, c.location)
	if err != nil {
		return domain.Transaction{}, err
	}
	return domain.Transaction{
		ID:           dto.ID.String(),
		Type:         domain.TransactionType(strings.ToUpper(strings.TrimSpace(dto.TipoTransaccion))),
		CategoryID:   dto.CategoriaID.String(),
		CategoryName: dto.CategoriaNombre,
		Description:  dto.Descripcion,
		Amount:       dto.Monto,
		OccurredAt:   occurredAt,
	}, nil
}

func (c *Client) get(ctx context.Context, session domain.Session, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}
	requestID := util.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	req.Header.Set(util.RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Str("request_id", requestID).
		Msg("Transactions API call")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: failed to decode response: %w", path, err)
	}
	return nil
}

// StatusError is returned for non-2xx responses
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}
