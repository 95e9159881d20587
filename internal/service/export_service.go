package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path"
	"strconv"
	"time"

	"github.com/expenses-tracker/reports-backend/internal/domain"
	"github.com/expenses-tracker/reports-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultExportURLTTL is how long a presigned export link stays valid
const DefaultExportURLTTL = 15 * time.Minute

const csvContentType = "text/csv"

// ObjectStore stores exported files and hands out temporary links to them
type ObjectStore interface {
	Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error)
	GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error)
}

// ExportResult describes an uploaded report file
type ExportResult struct {
	ObjectPath string    `json:"objectPath"`
	URL        string    `json:"url"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// ExportService renders reports as CSV and uploads them to object storage
type ExportService struct {
	reports *ReportService
	store   ObjectStore
	urlTTL  time.Duration
	now     func() time.Time

	eventPublisher websocket.EventPublisher
}

// NewExportService creates a new ExportService. A nil store disables exports.
func NewExportService(reports *ReportService, store ObjectStore, urlTTL time.Duration) *ExportService {
	if urlTTL <= 0 {
		urlTTL = DefaultExportURLTTL
	}
	return &ExportService{
		reports: reports,
		store:   store,
		urlTTL:  urlTTL,
		now:     time.Now,
	}
}

// SetEventPublisher sets the publisher notified when an export is ready
func (s *ExportService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ExportService) publishEvent(userID string, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// Enabled reports whether an object store is configured
func (s *ExportService) Enabled() bool {
	return s.store != nil
}

// Export assembles the report for rng, uploads it as CSV and returns a presigned link
func (s *ExportService) Export(ctx context.Context, session domain.Session, rng *domain.DateRange) (*ExportResult, error) {
	if !s.Enabled() {
		return nil, domain.ErrStorageNotConfigured
	}

	report, err := s.reports.AssembleReport(ctx, session, rng)
	if err != nil {
		return nil, err
	}

	data, err := RenderCSV(report)
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	now := s.now().UTC()
	objectPath := ExportObjectPath(session.UserID, now)
	if _, err := s.store.Upload(ctx, objectPath, bytes.NewReader(data), csvContentType, int64(len(data))); err != nil {
		return nil, fmt.Errorf("failed to upload report: %w", err)
	}

	url, err := s.store.GeneratePresignedURL(ctx, objectPath, s.urlTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign report url: %w", err)
	}

	log.Info().
		Str("user_id", session.UserID).
		Str("object_path", objectPath).
		Int("rows", len(report.Categories.Summaries)).
		Msg("Report exported")

	result := &ExportResult{
		ObjectPath: objectPath,
		URL:        url,
		ExpiresAt:  now.Add(s.urlTTL),
	}
	s.publishEvent(session.UserID, websocket.ReportExported(result))
	return result, nil
}

// ExportObjectPath builds a unique object key for a user's export
func ExportObjectPath(userID string, at time.Time) string {
	filename := fmt.Sprintf("%s_%s.csv", at.Format("20060102T150405Z"), uuid.New().String())
	return path.Join("reports", userID, filename)
}

// RenderCSV writes the period, one row per category and a totals row
func RenderCSV(report *domain.Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	period := []string{"period", "all", ""}
	if report.Summary.Start != nil && report.Summary.End != nil {
		period = []string{"period", report.Summary.Start.Format(time.RFC3339), report.Summary.End.Format(time.RFC3339)}
	}

	records := [][]string{
		period,
		{"category", "total_income", "total_expense", "balance"},
	}
	for _, row := range report.Categories.Summaries {
		records = append(records, []string{
			row.Category,
			row.TotalIncome.StringFixed(2),
			row.TotalExpense.StringFixed(2),
			row.Balance.StringFixed(2),
		})
	}
	records = append(records,
		[]string{
			"TOTAL",
			report.Summary.TotalIncome.StringFixed(2),
			report.Summary.TotalExpense.StringFixed(2),
			report.Summary.Balance.StringFixed(2),
		},
		[]string{"transactions", strconv.Itoa(report.Summary.TransactionCount)},
	)

	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
