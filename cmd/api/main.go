package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/invoice-report-api/infrastructure/database/postgres"
	"github.com/vfg2006/invoice-report-api/infrastructure/mailer"
	"github.com/vfg2006/invoice-report-api/infrastructure/messaging"
	"github.com/vfg2006/invoice-report-api/infrastructure/messaging/broker"
	"github.com/vfg2006/invoice-report-api/infrastructure/repository"
	"github.com/vfg2006/invoice-report-api/internal/api"
	"github.com/vfg2006/invoice-report-api/internal/api/handler"
	"github.com/vfg2006/invoice-report-api/internal/config"
	"github.com/vfg2006/invoice-report-api/internal/scheduler"
	"github.com/vfg2006/invoice-report-api/internal/usecases/invoicing"
	"github.com/vfg2006/invoice-report-api/internal/usecases/notifying"
	"github.com/vfg2006/invoice-report-api/internal/usecases/reporting"
	"github.com/vfg2006/invoice-report-api/pkg/log"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	log.Setup(cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	invoiceRepo := repository.NewInvoiceRepository(pgConn)
	invoiceService := invoicing.NewService(invoiceRepo)

	msgBroker, err := broker.New(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao broker de mensagens")
	}
	defer msgBroker.Close()

	reportService := reporting.NewService(invoiceService, msgBroker, cfg.DailySalesReport.Queue)

	dailySalesReportService := scheduler.NewDailySalesReportService(reportService, cfg)
	if err := dailySalesReportService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador do relatório de vendas diário")
	} else {
		logrus.Info("Agendador do relatório de vendas diário iniciado com sucesso")
	}

	if cfg.DailySalesReport.ConsumerEnabled {
		startConsumer(ctx, cfg, msgBroker)
	}

	server := api.New(cfg, invoiceService, handler.CronJobServices{
		DailySalesReport: dailySalesReportService,
	})

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// startConsumer roda o consumidor do relatório no mesmo processo da API
func startConsumer(ctx context.Context, cfg *config.Config, subscriber messaging.Subscriber) {
	sender, err := mailer.NewSMTPSender(cfg.Mail)
	if err != nil {
		logrus.WithError(err).Error("Erro ao configurar envio de e-mail, consumidor não iniciado")
		return
	}

	consumer := notifying.NewReportConsumer(sender, cfg.DailySalesReport.Recipients)

	go func() {
		err := subscriber.Subscribe(ctx, cfg.DailySalesReport.Queue, consumer.HandleMessage)
		if err != nil && !errors.Is(err, context.Canceled) {
			logrus.WithError(err).Error("Consumidor do relatório de vendas encerrado com erro")
		}
	}()
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	if err := conn.Ping(ctx); err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
