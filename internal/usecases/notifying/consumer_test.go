package notifying

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/invoice-report-api/infrastructure/mailer"
	"github.com/vfg2006/invoice-report-api/infrastructure/mailer/mocks"
	"github.com/vfg2006/invoice-report-api/internal/domain"
	"github.com/vfg2006/invoice-report-api/pkg/log"
	"go.uber.org/mock/gomock"
)

func sampleReport() *domain.DailySalesReport {
	return &domain.DailySalesReport{
		Date:       "2023-12-01",
		TotalSales: decimal.NewFromInt(1000),
		ItemsSold:  []domain.ItemSold{{SKU: "ITEM1", TotalQuantity: 5}},
	}
}

func TestRenderReportText(t *testing.T) {
	text, err := RenderReportText(sampleReport())

	require.NoError(t, err)
	assert.Contains(t, text, "Daily Sales Report - 2023-12-01\n")
	assert.Contains(t, text, "Total Sales: $1000.00\n")
	assert.Contains(t, text, "Items Sold:\nSKU: ITEM1, Quantity: 5\n")
}

func TestRenderReportText_ManyItems(t *testing.T) {
	report := sampleReport()
	report.TotalSales = decimal.RequireFromString("12.5")
	report.ItemsSold = append(report.ItemsSold, domain.ItemSold{SKU: "ITEM2", TotalQuantity: 1})

	text, err := RenderReportText(report)

	require.NoError(t, err)
	assert.Contains(t, text, "Total Sales: $12.50")
	assert.Contains(t, text, "SKU: ITEM1, Quantity: 5\nSKU: ITEM2, Quantity: 1\n")
}

func TestRenderReportHTML(t *testing.T) {
	html, err := RenderReportHTML(sampleReport())

	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Daily Sales Report - 2023-12-01</h1>")
	assert.Contains(t, html, "<p><strong>Total Sales:</strong> $1000.00</p>")
	assert.Contains(t, html, `<table border="1" cellpadding="5" cellspacing="0">`)
	assert.Contains(t, html, "<th>SKU</th>")
	assert.Contains(t, html, "<th>Total Quantity</th>")
	assert.Contains(t, html, "<td>ITEM1</td>\n    <td>5</td>")
}

func TestRenderReportHTML_EscapesSKU(t *testing.T) {
	report := sampleReport()
	report.ItemsSold = []domain.ItemSold{{SKU: "<script>", TotalQuantity: 1}}

	html, err := RenderReportHTML(report)

	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestReportConsumer_HandleDailySalesReport(t *testing.T) {
	log.SetupTestLogger()

	t.Run("entrega para os destinatários configurados", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sender := mocks.NewMockSender(ctrl)

		sender.EXPECT().SendEmail(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, email mailer.Email) mailer.Result {
			assert.Equal(t, []string{"finance@example.com", "ceo@example.com"}, email.To)
			assert.Equal(t, "Daily Sales Report - 2023-12-01", email.Subject)
			assert.Contains(t, email.Text, "$1000.00")
			assert.Contains(t, email.HTML, "<td>ITEM1</td>")
			return mailer.Result{Delivered: true}
		})

		consumer := NewReportConsumer(sender, []string{"finance@example.com", "ceo@example.com"})
		outcome := consumer.HandleDailySalesReport(context.Background(), sampleReport())

		assert.True(t, outcome.Delivered)
		assert.NoError(t, outcome.Err)
		assert.Equal(t, "2023-12-01", outcome.Date)
	})

	t.Run("destinatário padrão", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sender := mocks.NewMockSender(ctrl)

		sender.EXPECT().SendEmail(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, email mailer.Email) mailer.Result {
			assert.Equal(t, []string{"admin@example.com"}, email.To)
			return mailer.Result{Delivered: true}
		})

		outcome := NewReportConsumer(sender, nil).HandleDailySalesReport(context.Background(), sampleReport())

		assert.True(t, outcome.Delivered)
	})

	t.Run("falha no envio vira outcome", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sender := mocks.NewMockSender(ctrl)
		cause := errors.New("smtp indisponível")

		sender.EXPECT().SendEmail(gomock.Any(), gomock.Any()).Return(mailer.Result{Err: cause})

		outcome := NewReportConsumer(sender, nil).HandleDailySalesReport(context.Background(), sampleReport())

		assert.False(t, outcome.Delivered)
		assert.ErrorIs(t, outcome.Err, cause)
	})

	t.Run("panic no envio vira outcome", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sender := mocks.NewMockSender(ctrl)
		sender.EXPECT().SendEmail(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, mailer.Email) mailer.Result {
			panic("smtp client nil")
		})

		var outcome Outcome
		assert.NotPanics(t, func() {
			outcome = NewReportConsumer(sender, nil).HandleDailySalesReport(context.Background(), sampleReport())
		})

		assert.False(t, outcome.Delivered)
		require.Error(t, outcome.Err)
		assert.Contains(t, outcome.Err.Error(), "smtp client nil")
		assert.Equal(t, "2023-12-01", outcome.Date)
	})
}

func TestReportConsumer_HandleMessage(t *testing.T) {
	log.SetupTestLogger()

	t.Run("decodifica o payload da fila", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sender := mocks.NewMockSender(ctrl)

		sender.EXPECT().SendEmail(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, email mailer.Email) mailer.Result {
			assert.Contains(t, email.Text, "Total Sales: $300.00")
			assert.Contains(t, email.Text, "SKU: ITEM1, Quantity: 3")
			return mailer.Result{Delivered: true}
		})

		body := []byte(`{"date":"2023-12-01","totalSales":300,"itemsSold":[{"sku":"ITEM1","totalQuantity":3}]}`)

		assert.NoError(t, NewReportConsumer(sender, nil).HandleMessage(context.Background(), body))
	})

	t.Run("falha de envio não gera erro", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sender := mocks.NewMockSender(ctrl)
		sender.EXPECT().SendEmail(gomock.Any(), gomock.Any()).Return(mailer.Result{Err: errors.New("timeout")})

		body := []byte(`{"date":"2023-12-01","totalSales":1,"itemsSold":[]}`)

		assert.NoError(t, NewReportConsumer(sender, nil).HandleMessage(context.Background(), body))
	})

	t.Run("panic no envio não gera erro", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sender := mocks.NewMockSender(ctrl)
		sender.EXPECT().SendEmail(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, mailer.Email) mailer.Result {
			panic("smtp client nil")
		})

		body := []byte(`{"date":"2023-12-01","totalSales":1,"itemsSold":[]}`)

		assert.NotPanics(t, func() {
			assert.NoError(t, NewReportConsumer(sender, nil).HandleMessage(context.Background(), body))
		})
	})

	t.Run("payload inválido", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sender := mocks.NewMockSender(ctrl)
		sender.EXPECT().SendEmail(gomock.Any(), gomock.Any()).Times(0)

		assert.Error(t, NewReportConsumer(sender, nil).HandleMessage(context.Background(), []byte(`not-json`)))
	})
}
