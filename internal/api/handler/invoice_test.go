package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/invoice-report-api/internal/api/handler/router"
	"github.com/vfg2006/invoice-report-api/internal/domain"
	"github.com/vfg2006/invoice-report-api/internal/usecases/invoicing"
	"github.com/vfg2006/invoice-report-api/internal/usecases/invoicing/mocks"
	"github.com/vfg2006/invoice-report-api/pkg/apiErrors"
	"github.com/vfg2006/invoice-report-api/pkg/log"
	"go.uber.org/mock/gomock"
)

const invoiceID = "3f0c9a5e-3c1f-4a55-9a48-1f0f4a7cbd10"

func newInvoiceRouter(service invoicing.InvoiceService) http.Handler {
	return router.New(router.WithRoutes(Invoices(service)...))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apiErrors.APIError {
	t.Helper()
	var body apiErrors.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreateInvoice(t *testing.T) {
	log.SetupTestLogger()

	t.Run("201 com a nota criada", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		service := mocks.NewMockInvoiceService(ctrl)

		service.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ any, req *domain.CreateInvoiceRequest) (*domain.Invoice, error) {
			assert.Equal(t, "Test Customer", req.Customer)
			assert.Equal(t, "100.5", req.Amount.String())
			assert.Equal(t, []domain.InvoiceItem{{SKU: "ITEM1", Quantity: 2}}, req.Items)
			return &domain.Invoice{
				ID:        invoiceID,
				Customer:  req.Customer,
				Amount:    *req.Amount,
				Reference: req.Reference,
				Date:      time.Date(2023, 12, 1, 10, 0, 0, 0, time.UTC),
				Items:     req.Items,
			}, nil
		})

		body := `{"customer":"Test Customer","amount":100.5,"reference":"INV-001","items":[{"sku":"ITEM1","qt":2}]}`
		rec := httptest.NewRecorder()
		newInvoiceRouter(service).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/invoices", strings.NewReader(body)))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var got map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, invoiceID, got["id"])
		assert.Equal(t, 100.5, got["amount"])
		assert.Equal(t, "2023-12-01T10:00:00Z", got["date"])
		assert.Equal(t, []any{map[string]any{"sku": "ITEM1", "qt": float64(2)}}, got["items"])
	})

	t.Run("corpo inválido", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		service := mocks.NewMockInvoiceService(ctrl)

		rec := httptest.NewRecorder()
		newInvoiceRouter(service).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/invoices", strings.NewReader(`{`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apiErrors.ErrInvalidRequest, decodeError(t, rec).Code)
	})

	t.Run("campos obrigatórios ausentes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		service := mocks.NewMockInvoiceService(ctrl)
		service.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil,
			invoicing.NewInvoiceError(invoicing.ErrMissingRequiredData, apiErrors.ErrMissingRequiredData, "amount"))

		rec := httptest.NewRecorder()
		newInvoiceRouter(service).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/invoices", strings.NewReader(`{"customer":"x"}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, apiErrors.ErrMissingRequiredData, body.Code)
		assert.Equal(t, map[string]any{"fields": "amount"}, body.Details)
	})

	t.Run("erro de banco não expõe detalhes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		service := mocks.NewMockInvoiceService(ctrl)
		service.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil,
			invoicing.NewInvoiceError(invoicing.ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, "pq: password authentication failed"))

		rec := httptest.NewRecorder()
		newInvoiceRouter(service).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/invoices", strings.NewReader(`{}`)))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "password")
	})
}

func TestListInvoices(t *testing.T) {
	log.SetupTestLogger()

	t.Run("sem filtros", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		service := mocks.NewMockInvoiceService(ctrl)
		service.EXPECT().List(gomock.Any(), domain.InvoiceFilters{}).Return(nil, nil)

		rec := httptest.NewRecorder()
		newInvoiceRouter(service).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/invoices", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("filtros por data", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		service := mocks.NewMockInvoiceService(ctrl)

		service.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(func(_ any, filters domain.InvoiceFilters) ([]*domain.Invoice, error) {
			require.NotNil(t, filters.StartDate)
			require.NotNil(t, filters.EndDate)
			assert.True(t, filters.StartDate.Equal(time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)))
			assert.True(t, filters.EndDate.Equal(time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC)))
			return []*domain.Invoice{{ID: invoiceID, Amount: decimal.NewFromInt(1)}}, nil
		})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/invoices?startDate=2023-12-01&endDate=2023-12-31T23:00:00Z", nil)
		newInvoiceRouter(service).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), invoiceID)
	})

	t.Run("data inválida", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		service := mocks.NewMockInvoiceService(ctrl)

		rec := httptest.NewRecorder()
		newInvoiceRouter(service).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/invoices?startDate=ontem", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apiErrors.ErrInvalidFormat, decodeError(t, rec).Code)
	})
}

func TestGetInvoice(t *testing.T) {
	log.SetupTestLogger()

	tests := []struct {
		name       string
		id         string
		result     *domain.Invoice
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "encontrada",
			id:         invoiceID,
			result:     &domain.Invoice{ID: invoiceID, Customer: "Cliente"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "não encontrada",
			id:         invoiceID,
			err:        invoicing.NewInvoiceErrorWithID(invoicing.ErrInvoiceNotFound, apiErrors.ErrInvoiceNotFound, invoiceID, ""),
			wantStatus: http.StatusNotFound,
			wantCode:   apiErrors.ErrInvoiceNotFound,
		},
		{
			name:       "id malformado",
			id:         "some-id",
			err:        invoicing.NewInvoiceErrorWithID(invoicing.ErrMalformedID, apiErrors.ErrMalformedID, "some-id", ""),
			wantStatus: http.StatusBadRequest,
			wantCode:   apiErrors.ErrMalformedID,
		},
		{
			name:       "erro inesperado",
			id:         invoiceID,
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   apiErrors.ErrInternalServer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			service := mocks.NewMockInvoiceService(ctrl)
			service.EXPECT().GetByID(gomock.Any(), tt.id).Return(tt.result, tt.err)

			rec := httptest.NewRecorder()
			newInvoiceRouter(service).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/invoices/"+tt.id, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
				return
			}
			assert.Contains(t, rec.Body.String(), `"customer":"Cliente"`)
		})
	}
}

func TestRouter_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	rt := newInvoiceRouter(mocks.NewMockInvoiceService(ctrl))

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/unknown", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apiErrors.ErrRouteNotFound, decodeError(t, rec).Code)
}
