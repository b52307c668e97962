package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/invoice-report-api/infrastructure/mailer"
	"github.com/vfg2006/invoice-report-api/infrastructure/messaging/broker"
	"github.com/vfg2006/invoice-report-api/internal/config"
	"github.com/vfg2006/invoice-report-api/internal/usecases/notifying"
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

	msgBroker, err := broker.New(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao broker de mensagens")
	}
	defer msgBroker.Close()

	sender, err := mailer.NewSMTPSender(cfg.Mail)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao configurar envio de e-mail")
	}

	consumer := notifying.NewReportConsumer(sender, cfg.DailySalesReport.Recipients)

	logrus.WithFields(logrus.Fields{
		"queue":      cfg.DailySalesReport.Queue,
		"driver":     cfg.Queue.Driver,
		"recipients": cfg.DailySalesReport.Recipients,
	}).Info("Iniciando consumidor do relatório de vendas diário")

	if err := msgBroker.Subscribe(ctx, cfg.DailySalesReport.Queue, consumer.HandleMessage); err != nil {
		logrus.WithError(err).Error("Consumidor do relatório de vendas encerrado com erro")
		return
	}

	logrus.Info("Consumidor encerrado com sucesso")
}
