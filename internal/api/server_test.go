package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/invoice-report-api/internal/api/handler"
	"github.com/vfg2006/invoice-report-api/internal/config"
	"github.com/vfg2006/invoice-report-api/internal/domain"
	"github.com/vfg2006/invoice-report-api/internal/usecases/invoicing/mocks"
	"github.com/vfg2006/invoice-report-api/pkg/log"
	"go.uber.org/mock/gomock"
)

func newTestServer(t *testing.T) (*Server, *mocks.MockInvoiceService) {
	t.Helper()
	log.SetupTestLogger()

	ctrl := gomock.NewController(t)
	service := mocks.NewMockInvoiceService(ctrl)

	cfg := &config.Config{
		Server: config.Server{
			Host:           "127.0.0.1",
			Port:           "0",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
	}

	return New(cfg, service, handler.CronJobServices{}), service
}

func TestServer_Handler(t *testing.T) {
	server, service := newTestServer(t)
	service.EXPECT().List(gomock.Any(), domain.InvoiceFilters{}).Return([]*domain.Invoice{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/invoices", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestServer_Handler_RecoversPanic(t *testing.T) {
	server, service := newTestServer(t)
	service.EXPECT().GetByID(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, string) (*domain.Invoice, error) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/invoices/abc", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServer_Run_StopsOnCancel(t *testing.T) {
	server, _ := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, server.Run(ctx))
}
