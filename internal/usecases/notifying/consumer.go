package notifying

import (
	"context"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/vfg2006/invoice-report-api/infrastructure/mailer"
	"github.com/vfg2006/invoice-report-api/internal/domain"
	"github.com/vfg2006/invoice-report-api/pkg/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultRecipient = "admin@example.com"

var errNotDelivered = errors.New("e-mail não entregue")

// Outcome descreve o que aconteceu com um relatório recebido. Falhas de
// renderização ou envio ficam em Err e nunca interrompem o consumo.
type Outcome struct {
	Date       string
	Recipients []string
	Delivered  bool
	Err        error
}

type ReportConsumer struct {
	sender     mailer.Sender
	recipients []string
}

func NewReportConsumer(sender mailer.Sender, recipients []string) *ReportConsumer {
	if len(recipients) == 0 {
		recipients = []string{defaultRecipient}
	}

	return &ReportConsumer{
		sender:     sender,
		recipients: recipients,
	}
}

// HandleMessage decodifica o payload da fila. Só retorna erro quando o payload
// é inválido; o resultado do envio é apenas registrado em log.
func (c *ReportConsumer) HandleMessage(ctx context.Context, body []byte) error {
	var report domain.DailySalesReport
	if err := json.Unmarshal(body, &report); err != nil {
		return fmt.Errorf("payload de relatório inválido: %w", err)
	}

	outcome := c.HandleDailySalesReport(ctx, &report)

	logger := log.ForContext(ctx).WithField("report_date", outcome.Date)
	if outcome.Err != nil {
		logger.WithError(outcome.Err).Error("❌ Erro ao enviar relatório de vendas")
		return nil
	}

	logger.Infof("Relatório de vendas de %s enviado com sucesso", outcome.Date)
	return nil
}

func (c *ReportConsumer) HandleDailySalesReport(ctx context.Context, report *domain.DailySalesReport) (outcome Outcome) {
	outcome = Outcome{Date: report.Date, Recipients: c.recipients}

	defer func() {
		if r := recover(); r != nil {
			outcome.Delivered = false
			outcome.Err = fmt.Errorf("panic ao enviar relatório: %v", r)
		}
	}()

	text, err := RenderReportText(report)
	if err != nil {
		outcome.Err = fmt.Errorf("erro ao renderizar texto: %w", err)
		return outcome
	}

	html, err := RenderReportHTML(report)
	if err != nil {
		outcome.Err = fmt.Errorf("erro ao renderizar HTML: %w", err)
		return outcome
	}

	result := c.sender.SendEmail(ctx, mailer.Email{
		To:      c.recipients,
		Subject: Subject(report),
		Text:    text,
		HTML:    html,
	})

	outcome.Delivered = result.Delivered
	if !result.Delivered {
		outcome.Err = result.Err
		if outcome.Err == nil {
			outcome.Err = errNotDelivered
		}
	}

	return outcome
}
