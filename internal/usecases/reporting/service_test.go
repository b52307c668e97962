package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	messagingMocks "github.com/vfg2006/invoice-report-api/infrastructure/messaging/mocks"
	"github.com/vfg2006/invoice-report-api/internal/domain"
	invoicingMocks "github.com/vfg2006/invoice-report-api/internal/usecases/invoicing/mocks"
	"github.com/vfg2006/invoice-report-api/pkg/log"
	"go.uber.org/mock/gomock"
)

var fixedNow = time.Date(2023, 12, 2, 12, 0, 0, 0, time.Local)

func TestCoveredDay(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "meio-dia",
			now:       fixedNow,
			wantStart: time.Date(2023, 12, 1, 0, 0, 0, 0, time.Local),
			wantEnd:   time.Date(2023, 12, 2, 0, 0, 0, 0, time.Local),
		},
		{
			name:      "virada de mês",
			now:       time.Date(2024, 3, 1, 0, 0, 1, 0, time.UTC),
			wantStart: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "virada de ano",
			now:       time.Date(2024, 1, 1, 23, 59, 59, 0, time.UTC),
			wantStart: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := CoveredDay(tt.now)
			assert.True(t, tt.wantStart.Equal(start), "start = %s", start)
			assert.True(t, tt.wantEnd.Equal(end), "end = %s", end)
		})
	}
}

func TestBuildDailySalesReport(t *testing.T) {
	day := time.Date(2023, 12, 1, 0, 0, 0, 0, time.Local)

	t.Run("soma valores e agrupa por SKU", func(t *testing.T) {
		invoices := []*domain.Invoice{
			{Amount: decimal.NewFromInt(100), Items: []domain.InvoiceItem{{SKU: "ITEM1", Quantity: 2}, {SKU: "ITEM2", Quantity: 1}}},
			{Amount: decimal.NewFromInt(200), Items: []domain.InvoiceItem{{SKU: "ITEM1", Quantity: 1}, {SKU: "ITEM3", Quantity: 3}}},
		}

		report := BuildDailySalesReport(invoices, day)

		assert.Equal(t, "2023-12-01", report.Date)
		assert.True(t, decimal.NewFromInt(300).Equal(report.TotalSales))
		assert.Equal(t, []domain.ItemSold{
			{SKU: "ITEM1", TotalQuantity: 3},
			{SKU: "ITEM2", TotalQuantity: 1},
			{SKU: "ITEM3", TotalQuantity: 3},
		}, report.ItemsSold)
	})

	t.Run("precisão decimal sem arredondamento", func(t *testing.T) {
		invoices := []*domain.Invoice{
			{Amount: decimal.RequireFromString("0.1")},
			{Amount: decimal.RequireFromString("0.2")},
		}

		report := BuildDailySalesReport(invoices, day)

		assert.Equal(t, "0.3", report.TotalSales.String())
		assert.NotNil(t, report.ItemsSold)
		assert.Empty(t, report.ItemsSold)
	})
}

func TestService_GenerateDailySalesReport(t *testing.T) {
	log.SetupTestLogger()

	start := time.Date(2023, 12, 1, 0, 0, 0, 0, time.Local)
	end := time.Date(2023, 12, 2, 0, 0, 0, 0, time.Local)

	t.Run("publica o relatório do dia anterior", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		finder := invoicingMocks.NewMockInvoiceFinder(ctrl)
		publisher := messagingMocks.NewMockPublisher(ctrl)

		invoices := []*domain.Invoice{
			{Amount: decimal.NewFromInt(100), Items: []domain.InvoiceItem{{SKU: "ITEM1", Quantity: 2}}},
			{Amount: decimal.NewFromInt(200), Date: end, Items: []domain.InvoiceItem{{SKU: "ITEM1", Quantity: 1}}},
		}

		finder.EXPECT().FindByDateRange(gomock.Any(), start, end).Return(invoices, nil)
		publisher.EXPECT().Publish(gomock.Any(), "daily_sales_report", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, payload any) error {
				report, ok := payload.(*domain.DailySalesReport)
				require.True(t, ok)
				assert.Equal(t, "2023-12-01", report.Date)
				return nil
			})

		report, err := NewService(finder, publisher, "").WithClock(func() time.Time { return fixedNow }).
			GenerateDailySalesReport(context.Background())

		require.NoError(t, err)
		require.NotNil(t, report)
		assert.True(t, decimal.NewFromInt(300).Equal(report.TotalSales))
		assert.Equal(t, []domain.ItemSold{{SKU: "ITEM1", TotalQuantity: 3}}, report.ItemsSold)
	})

	t.Run("sem notas não publica", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		finder := invoicingMocks.NewMockInvoiceFinder(ctrl)
		publisher := messagingMocks.NewMockPublisher(ctrl)

		finder.EXPECT().FindByDateRange(gomock.Any(), start, end).Return([]*domain.Invoice{}, nil)
		publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		report, err := NewService(finder, publisher, "daily_sales_report").WithClock(func() time.Time { return fixedNow }).
			GenerateDailySalesReport(context.Background())

		assert.NoError(t, err)
		assert.Nil(t, report)
	})

	t.Run("erro na consulta aborta a execução", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		finder := invoicingMocks.NewMockInvoiceFinder(ctrl)
		publisher := messagingMocks.NewMockPublisher(ctrl)
		cause := errors.New("connection refused")

		finder.EXPECT().FindByDateRange(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, cause)

		_, err := NewService(finder, publisher, "").WithClock(func() time.Time { return fixedNow }).
			GenerateDailySalesReport(context.Background())

		assert.ErrorIs(t, err, cause)
	})

	t.Run("erro na publicação é propagado", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		finder := invoicingMocks.NewMockInvoiceFinder(ctrl)
		publisher := messagingMocks.NewMockPublisher(ctrl)
		cause := errors.New("channel closed")

		finder.EXPECT().FindByDateRange(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]*domain.Invoice{{Amount: decimal.NewFromInt(1)}}, nil)
		publisher.EXPECT().Publish(gomock.Any(), "reports", gomock.Any()).Return(cause)

		_, err := NewService(finder, publisher, "reports").WithClock(func() time.Time { return fixedNow }).
			GenerateDailySalesReport(context.Background())

		assert.ErrorIs(t, err, cause)
	})
}
