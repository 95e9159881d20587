package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/expenses-tracker/reports-backend/internal/domain"
	"github.com/expenses-tracker/reports-backend/internal/middleware"
	"github.com/expenses-tracker/reports-backend/internal/service"
	"github.com/expenses-tracker/reports-backend/internal/util"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// Query parameters for the report window
const (
	ParamStartDate = "fechaInicio"
	ParamEndDate   = "fechaFin"
	ParamLimit     = "limit"
)

// MaxRecentLimit caps the limit accepted by the recent transactions endpoint
const MaxRecentLimit = 100

// ReportHandler handles report HTTP requests
type ReportHandler struct {
	reportService *service.ReportService
	exportService *service.ExportService
	location      *time.Location
}

// NewReportHandler creates a new ReportHandler. Dates in query parameters
// are read as calendar days in loc.
func NewReportHandler(reportService *service.ReportService, exportService *service.ExportService, loc *time.Location) *ReportHandler {
	if loc == nil {
		loc = time.Local
	}
	return &ReportHandler{
		reportService: reportService,
		exportService: exportService,
		location:      loc,
	}
}

// SummaryResponse represents a financial summary in API responses
type SummaryResponse struct {
	TotalIngresos      string  `json:"totalIngresos"`
	TotalGastos        string  `json:"totalGastos"`
	Balance            string  `json:"balance"`
	TotalTransacciones int     `json:"totalTransacciones"`
	FechaInicio        *string `json:"fechaInicio,omitempty"`
	FechaFin           *string `json:"fechaFin,omitempty"`
}

// CategorySummaryResponse is one row of the category breakdown
type CategorySummaryResponse struct {
	Categoria     string `json:"categoria"`
	TotalIngresos string `json:"totalIngresos"`
	TotalGastos   string `json:"totalGastos"`
	Balance       string `json:"balance"`
}

// CategoryReportResponse represents the category breakdown in API responses
type CategoryReportResponse struct {
	ResumenPorCategoria  []CategorySummaryResponse `json:"resumenPorCategoria"`
	GastosPorCategoria   map[string]string         `json:"gastosPorCategoria"`
	IngresosPorCategoria map[string]string         `json:"ingresosPorCategoria"`
}

// ReportResponse combines summary and breakdown for the same window
type ReportResponse struct {
	Resumen      SummaryResponse        `json:"resumen"`
	PorCategoria CategoryReportResponse `json:"porCategoria"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID              string  `json:"id"`
	TipoTransaccion string  `json:"tipoTransaccion"`
	CategoriaID     string  `json:"categoriaId"`
	CategoriaNombre *string `json:"categoriaNombre,omitempty"`
	Descripcion     string  `json:"descripcion"`
	Monto           string  `json:"monto"`
	Fecha           string  `json:"fecha"`
}

// DashboardResponse represents the landing view
type DashboardResponse struct {
	Resumen                SummaryResponse       `json:"resumen"`
	PromedioGasto          string                `json:"promedioGasto"`
	TransaccionesRecientes []TransactionResponse `json:"transaccionesRecientes"`
}

// ExportResponse describes an uploaded CSV report
type ExportResponse struct {
	ObjectPath string `json:"objectPath"`
	URL        string `json:"url"`
	ExpiresAt  string `json:"expiresAt"`
}

// GetSummary handles GET /api/v1/reports/summary
func (h *ReportHandler) GetSummary(c echo.Context) error {
	session, rng, err := h.requestScope(c)
	if err != nil {
		return respondError(c, err, session.UserID)
	}

	summary, err := h.reportService.ComputeSummaryFor(c.Request().Context(), session, rng)
	if err != nil {
		return respondError(c, err, session.UserID)
	}
	return c.JSON(http.StatusOK, toSummaryResponse(*summary))
}

// GetByCategory handles GET /api/v1/reports/by-category
func (h *ReportHandler) GetByCategory(c echo.Context) error {
	session, rng, err := h.requestScope(c)
	if err != nil {
		return respondError(c, err, session.UserID)
	}

	report, err := h.reportService.CategoryReportFor(c.Request().Context(), session, rng)
	if err != nil {
		return respondError(c, err, session.UserID)
	}
	return c.JSON(http.StatusOK, toCategoryReportResponse(*report))
}

// GetReport handles GET /api/v1/reports
func (h *ReportHandler) GetReport(c echo.Context) error {
	session, rng, err := h.requestScope(c)
	if err != nil {
		return respondError(c, err, session.UserID)
	}

	report, err := h.reportService.AssembleReport(c.Request().Context(), session, rng)
	if err != nil {
		return respondError(c, err, session.UserID)
	}
	return c.JSON(http.StatusOK, ToReportResponse(report))
}

// GetDashboard handles GET /api/v1/reports/dashboard
func (h *ReportHandler) GetDashboard(c echo.Context) error {
	session, ok := middleware.GetSession(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	dashboard, err := h.reportService.Dashboard(c.Request().Context(), session)
	if err != nil {
		return respondError(c, err, session.UserID)
	}

	recent := make([]TransactionResponse, len(dashboard.Recent))
	for i, tx := range dashboard.Recent {
		recent[i] = toTransactionResponse(tx)
	}
	return c.JSON(http.StatusOK, DashboardResponse{
		Resumen:                toSummaryResponse(dashboard.Summary),
		PromedioGasto:          dashboard.AverageExpense.StringFixed(2),
		TransaccionesRecientes: recent,
	})
}

// GetRecent handles GET /api/v1/reports/recent?limit=n
func (h *ReportHandler) GetRecent(c echo.Context) error {
	session, ok := middleware.GetSession(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	limit := domain.DefaultRecentCount
	if raw := c.QueryParam(ParamLimit); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxRecentLimit {
			return NewValidationError(c, "Invalid limit", []ValidationError{
				{Field: ParamLimit, Message: fmt.Sprintf("limit must be an integer between 1 and %d", MaxRecentLimit)},
			})
		}
		limit = n
	}

	transactions, err := h.reportService.RecentTransactions(c.Request().Context(), session, limit)
	if err != nil {
		return respondError(c, err, session.UserID)
	}

	resp := make([]TransactionResponse, len(transactions))
	for i, tx := range transactions {
		resp[i] = toTransactionResponse(tx)
	}
	return c.JSON(http.StatusOK, resp)
}

// Export handles POST /api/v1/reports/export
func (h *ReportHandler) Export(c echo.Context) error {
	session, rng, err := h.requestScope(c)
	if err != nil {
		return respondError(c, err, session.UserID)
	}

	result, err := h.exportService.Export(c.Request().Context(), session, rng)
	if err != nil {
		return respondError(c, err, session.UserID)
	}
	return c.JSON(http.StatusCreated, ExportResponse{
		ObjectPath: result.ObjectPath,
		URL:        result.URL,
		ExpiresAt:  result.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// requestScope reads the session and the optional date range. The range is
// validated before any data is fetched.
func (h *ReportHandler) requestScope(c echo.Context) (domain.Session, *domain.DateRange, error) {
	session, ok := middleware.GetSession(c)
	if !ok {
		return session, nil, domain.ErrUnauthorized
	}
	rng, err := domain.ParseDateRangeParams(c.QueryParam(ParamStartDate), c.QueryParam(ParamEndDate), h.location)
	if err != nil {
		return session, nil, err
	}
	return session, rng, nil
}

// ToReportResponse renders an assembled report for the wire
func ToReportResponse(report *domain.Report) ReportResponse {
	return ReportResponse{
		Resumen:      toSummaryResponse(report.Summary),
		PorCategoria: toCategoryReportResponse(report.Categories),
	}
}

func toSummaryResponse(summary domain.FinancialSummary) SummaryResponse {
	resp := SummaryResponse{
		TotalIngresos:      summary.TotalIncome.StringFixed(2),
		TotalGastos:        summary.TotalExpense.StringFixed(2),
		Balance:            summary.Balance.StringFixed(2),
		TotalTransacciones: summary.TransactionCount,
	}
	if summary.Start != nil {
		start := util.FormatISO(*summary.Start)
		resp.FechaInicio = &start
	}
	if summary.End != nil {
		end := util.FormatISO(*summary.End)
		resp.FechaFin = &end
	}
	return resp
}

func toCategoryReportResponse(report domain.CategoryReport) CategoryReportResponse {
	rows := make([]CategorySummaryResponse, len(report.Summaries))
	for i, row := range report.Summaries {
		rows[i] = CategorySummaryResponse{
			Categoria:     row.Category,
			TotalIngresos: row.TotalIncome.StringFixed(2),
			TotalGastos:   row.TotalExpense.StringFixed(2),
			Balance:       row.Balance.StringFixed(2),
		}
	}
	return CategoryReportResponse{
		ResumenPorCategoria:  rows,
		GastosPorCategoria:   fixedAmounts(report.ExpenseByCategory),
		IngresosPorCategoria: fixedAmounts(report.IncomeByCategory),
	}
}

func fixedAmounts(amounts map[string]decimal.Decimal) map[string]string {
	out := make(map[string]string, len(amounts))
	for label, amount := range amounts {
		out[label] = amount.StringFixed(2)
	}
	return out
}

func toTransactionResponse(tx domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              tx.ID,
		TipoTransaccion: string(tx.Type),
		CategoriaID:     tx.CategoryID,
		CategoriaNombre: tx.CategoryName,
		Descripcion:     tx.Description,
		Monto:           tx.Amount.StringFixed(2),
		Fecha:           util.FormatISO(tx.OccurredAt),
	}
}

func queryField(field string) string {
	switch field {
	case domain.FieldStart:
		return ParamStartDate
	case domain.FieldEnd:
		return ParamEndDate
	default:
		return field
	}
}
