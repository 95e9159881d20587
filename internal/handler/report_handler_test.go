package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/expenses-tracker/reports-backend/internal/domain"
	"github.com/expenses-tracker/reports-backend/internal/middleware"
	"github.com/expenses-tracker/reports-backend/internal/service"
	"github.com/expenses-tracker/reports-backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = "42"

type reportFixture struct {
	transactions *testutil.MockTransactionSource
	categories   *testutil.MockCategorySource
	store        *testutil.MockObjectStore
	handler      *ReportHandler
}

func newReportFixture(withStore bool) *reportFixture {
	f := &reportFixture{
		transactions: testutil.NewMockTransactionSource(),
		categories:   testutil.NewMockCategorySource(),
	}
	f.categories.AddCategory(testUserID, domain.Category{ID: "1", Name: "Salario"})
	f.categories.AddCategory(testUserID, domain.Category{ID: "2", Name: "Comida"})

	day := func(m time.Month, d int) time.Time { return time.Date(2024, m, d, 12, 0, 0, 0, time.UTC) }
	f.transactions.AddTransaction(testUserID, testutil.NewTransaction("a", domain.TransactionTypeIncome, "1", "100", day(time.January, 5)))
	f.transactions.AddTransaction(testUserID, testutil.NewTransaction("b", domain.TransactionTypeExpense, "2", "30.5", day(time.January, 20)))
	f.transactions.AddTransaction(testUserID, testutil.NewTransaction("c", domain.TransactionTypeExpense, "2", "19.5", day(time.February, 3)))

	reports := service.NewReportService(f.transactions, f.categories)
	var store service.ObjectStore
	if withStore {
		f.store = testutil.NewMockObjectStore()
		store = f.store
	}
	exports := service.NewExportService(reports, store, 10*time.Minute)
	f.handler = NewReportHandler(reports, exports, time.UTC)
	return f
}

func newRequest(method, target string, authenticated bool) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	if authenticated {
		req = req.WithContext(middleware.WithSession(req.Context(), domain.Session{UserID: testUserID, Token: "token"}))
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) ProblemDetails {
	t.Helper()
	var problem ProblemDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return problem
}

func TestReportHandler_GetSummary(t *testing.T) {
	f := newReportFixture(false)

	t.Run("all time", func(t *testing.T) {
		c, rec := newRequest(http.MethodGet, "/api/v1/reports/summary", true)
		require.NoError(t, f.handler.GetSummary(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp SummaryResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "100.00", resp.TotalIngresos)
		assert.Equal(t, "50.00", resp.TotalGastos)
		assert.Equal(t, "50.00", resp.Balance)
		assert.Equal(t, 3, resp.TotalTransacciones)
		assert.Nil(t, resp.FechaInicio)
		assert.Nil(t, resp.FechaFin)
	})

	t.Run("january only", func(t *testing.T) {
		c, rec := newRequest(http.MethodGet, "/api/v1/reports/summary?fechaInicio=2024-01-01&fechaFin=2024-01-31", true)
		require.NoError(t, f.handler.GetSummary(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp SummaryResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "30.50", resp.TotalGastos)
		assert.Equal(t, "69.50", resp.Balance)
		assert.Equal(t, 2, resp.TotalTransacciones)
		require.NotNil(t, resp.FechaInicio)
		require.NotNil(t, resp.FechaFin)
		assert.Equal(t, "2024-01-01T00:00:00.000Z", *resp.FechaInicio)
		assert.Equal(t, "2024-01-31T23:59:59.000Z", *resp.FechaFin)
	})
}

func TestReportHandler_InvalidRange(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
	}{
		{"missing end", "?fechaInicio=2024-01-01", ParamEndDate},
		{"missing start", "?fechaFin=2024-01-31", ParamStartDate},
		{"malformed start", "?fechaInicio=01/01/2024&fechaFin=2024-01-31", ParamStartDate},
		{"inverted", "?fechaInicio=2024-02-01&fechaFin=2024-01-01", ParamStartDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReportFixture(false)
			c, rec := newRequest(http.MethodGet, "/api/v1/reports/summary"+tt.query, true)
			require.NoError(t, f.handler.GetSummary(c))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			problem := decodeProblem(t, rec)
			require.Len(t, problem.Errors, 1)
			assert.Equal(t, tt.field, problem.Errors[0].Field)
			assert.Equal(t, 0, f.transactions.Calls(), "nothing is fetched for an invalid range")
		})
	}
}

func TestReportHandler_Unauthenticated(t *testing.T) {
	f := newReportFixture(false)

	c, rec := newRequest(http.MethodGet, "/api/v1/reports/summary", false)
	require.NoError(t, f.handler.GetSummary(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = newRequest(http.MethodGet, "/api/v1/reports/dashboard", false)
	require.NoError(t, f.handler.GetDashboard(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReportHandler_DataUnavailable(t *testing.T) {
	f := newReportFixture(false)
	f.categories.FetchFn = func(ctx context.Context, session domain.Session) ([]domain.Category, error) {
		return nil, errors.New("connection refused")
	}

	c, rec := newRequest(http.MethodGet, "/api/v1/reports", true)
	require.NoError(t, f.handler.GetReport(c))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	problem := decodeProblem(t, rec)
	assert.Equal(t, ErrorTypeBadGateway, problem.Type)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestReportHandler_GetByCategory(t *testing.T) {
	f := newReportFixture(false)

	c, rec := newRequest(http.MethodGet, "/api/v1/reports/by-category", true)
	require.NoError(t, f.handler.GetByCategory(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CategoryReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.ResumenPorCategoria, 2)
	assert.Equal(t, "Salario", resp.ResumenPorCategoria[0].Categoria)
	assert.Equal(t, "100.00", resp.ResumenPorCategoria[0].TotalIngresos)
	assert.Equal(t, "Comida", resp.ResumenPorCategoria[1].Categoria)
	assert.Equal(t, "-50.00", resp.ResumenPorCategoria[1].Balance)
	assert.Equal(t, map[string]string{"Comida": "50.00"}, resp.GastosPorCategoria)
	assert.Equal(t, map[string]string{"Salario": "100.00"}, resp.IngresosPorCategoria)
}

func TestReportHandler_GetReport(t *testing.T) {
	f := newReportFixture(false)

	c, rec := newRequest(http.MethodGet, "/api/v1/reports?fechaInicio=2024-02-01&fechaFin=2024-02-29", true)
	require.NoError(t, f.handler.GetReport(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Resumen.TotalTransacciones)
	assert.Equal(t, "-19.50", resp.Resumen.Balance)
	require.Len(t, resp.PorCategoria.ResumenPorCategoria, 1)
	assert.Equal(t, "Comida", resp.PorCategoria.ResumenPorCategoria[0].Categoria)
	assert.Empty(t, resp.PorCategoria.IngresosPorCategoria)
}

func TestReportHandler_GetDashboard(t *testing.T) {
	f := newReportFixture(false)

	c, rec := newRequest(http.MethodGet, "/api/v1/reports/dashboard", true)
	require.NoError(t, f.handler.GetDashboard(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp DashboardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Resumen.TotalTransacciones)
	// 50 / 3 rounded to whole units
	assert.Equal(t, "17.00", resp.PromedioGasto)
	require.Len(t, resp.TransaccionesRecientes, 3)
	assert.Equal(t, "c", resp.TransaccionesRecientes[0].ID)
	assert.Equal(t, "GASTO", resp.TransaccionesRecientes[0].TipoTransaccion)
	assert.Equal(t, "19.50", resp.TransaccionesRecientes[0].Monto)
	assert.Equal(t, "2024-02-03T12:00:00.000Z", resp.TransaccionesRecientes[0].Fecha)
	assert.Equal(t, "a", resp.TransaccionesRecientes[2].ID)
}

func TestReportHandler_Export(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		f := newReportFixture(true)
		c, rec := newRequest(http.MethodPost, "/api/v1/reports/export?fechaInicio=2024-01-01&fechaFin=2024-01-31", true)
		require.NoError(t, f.handler.Export(c))
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp ExportResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.ObjectPath, "reports/42/")
		assert.Contains(t, resp.URL, "expires=600")
		assert.NotEmpty(t, resp.ExpiresAt)

		data, ok := f.store.Objects[resp.ObjectPath]
		require.True(t, ok)
		assert.Contains(t, string(data), "Salario,100.00,0.00,100.00")
		assert.Equal(t, "text/csv", f.store.ContentTypes[resp.ObjectPath])
	})

	t.Run("storage not configured", func(t *testing.T) {
		f := newReportFixture(false)
		c, rec := newRequest(http.MethodPost, "/api/v1/reports/export", true)
		require.NoError(t, f.handler.Export(c))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, ErrorTypeServiceUnavailable, decodeProblem(t, rec).Type)
	})
}

func TestReportHandler_GetRecent(t *testing.T) {
	f := newReportFixture(false)

	t.Run("default limit", func(t *testing.T) {
		c, rec := newRequest(http.MethodGet, "/api/v1/reports/recent", true)
		require.NoError(t, f.handler.GetRecent(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp []TransactionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp, 3)
		assert.Equal(t, "c", resp[0].ID)
		assert.Equal(t, "a", resp[2].ID)
	})

	t.Run("explicit limit", func(t *testing.T) {
		c, rec := newRequest(http.MethodGet, "/api/v1/reports/recent?limit=2", true)
		require.NoError(t, f.handler.GetRecent(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp []TransactionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp, 2)
		assert.Equal(t, "c", resp[0].ID)
		assert.Equal(t, "b", resp[1].ID)
	})

	for _, raw := range []string{"0", "-1", "abc", "101"} {
		t.Run("invalid limit "+raw, func(t *testing.T) {
			c, rec := newRequest(http.MethodGet, "/api/v1/reports/recent?limit="+raw, true)
			require.NoError(t, f.handler.GetRecent(c))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			problem := decodeProblem(t, rec)
			require.Len(t, problem.Errors, 1)
			assert.Equal(t, ParamLimit, problem.Errors[0].Field)
		})
	}

	t.Run("unauthenticated", func(t *testing.T) {
		c, rec := newRequest(http.MethodGet, "/api/v1/reports/recent", false)
		require.NoError(t, f.handler.GetRecent(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
