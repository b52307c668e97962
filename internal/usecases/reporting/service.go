package reporting

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vfg2006/invoice-report-api/infrastructure/messaging"
	"github.com/vfg2006/invoice-report-api/internal/domain"
	"github.com/vfg2006/invoice-report-api/internal/usecases/invoicing"
	"github.com/vfg2006/invoice-report-api/pkg/log"
)

//go:generate mockgen -source=service.go -destination=mocks/service.go -package=mocks

// Reporter gera e publica o relatório de vendas do dia anterior
type Reporter interface {
	// GenerateDailySalesReport retorna nil, nil quando não houve vendas no dia
	GenerateDailySalesReport(ctx context.Context) (*domain.DailySalesReport, error)
}

var _ Reporter = (*Service)(nil)

type Service struct {
	invoices  invoicing.InvoiceFinder
	publisher messaging.Publisher
	topic     string
	now       func() time.Time
}

func NewService(invoices invoicing.InvoiceFinder, publisher messaging.Publisher, topic string) *Service {
	if topic == "" {
		topic = domain.DailySalesReportTopic
	}

	return &Service{
		invoices:  invoices,
		publisher: publisher,
		topic:     topic,
		now:       time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) GenerateDailySalesReport(ctx context.Context) (*domain.DailySalesReport, error) {
	start, end := CoveredDay(s.now())

	logger := log.ForContext(ctx).WithFields(log.Fields{
		"report_date":  start.Format(time.DateOnly),
		"report_start": start.Format(time.RFC3339),
		"report_end":   end.Format(time.RFC3339),
	})
	logger.Info("Gerando relatório de vendas diário")

	invoices, err := s.invoices.FindByDateRange(ctx, start, end)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao buscar notas do dia")
	}

	if len(invoices) == 0 {
		logger.Info("Nenhuma nota no período, relatório não será enviado")
		return nil, nil
	}

	report := BuildDailySalesReport(invoices, start)

	if err := s.publisher.Publish(ctx, s.topic, report); err != nil {
		return nil, errors.Wrapf(err, "erro ao publicar relatório em %s", s.topic)
	}

	logger.WithFields(log.Fields{
		"report_invoices":    len(invoices),
		"report_total_sales": report.TotalSales.StringFixed(2),
		"report_skus":        len(report.ItemsSold),
	}).Info("✅ Relatório de vendas diário publicado")

	return report, nil
}

// CoveredDay retorna [ontem 00:00, hoje 00:00] no fuso de now. O fim também é
// inclusivo, então uma nota exatamente à meia-noite de hoje entra no relatório.
func CoveredDay(now time.Time) (start, end time.Time) {
	end = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start = end.AddDate(0, 0, -1)
	return start, end
}

// BuildDailySalesReport soma os valores e agrupa as quantidades por SKU,
// mantendo a ordem em que cada SKU aparece pela primeira vez.
func BuildDailySalesReport(invoices []*domain.Invoice, day time.Time) *domain.DailySalesReport {
	total := decimal.Zero
	itemsSold := make([]domain.ItemSold, 0)
	position := make(map[string]int)

	for _, invoice := range invoices {
		total = total.Add(invoice.Amount)

		for _, item := range invoice.Items {
			idx, ok := position[item.SKU]
			if !ok {
				position[item.SKU] = len(itemsSold)
				itemsSold = append(itemsSold, domain.ItemSold{SKU: item.SKU, TotalQuantity: item.Quantity})
				continue
			}
			itemsSold[idx].TotalQuantity += item.Quantity
		}
	}

	return &domain.DailySalesReport{
		Date:       day.Format(time.DateOnly),
		TotalSales: total,
		ItemsSold:  itemsSold,
	}
}
