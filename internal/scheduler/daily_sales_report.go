package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/invoice-report-api/internal/config"
	"github.com/vfg2006/invoice-report-api/internal/usecases/reporting"
	"github.com/vfg2006/invoice-report-api/pkg/log"
)

// DailySalesReportConfig representa a configuração do agendador do relatório diário
type DailySalesReportConfig struct {
	CronSchedule string
	Queue        string
	Enabled      bool
}

// DailySalesReportService agenda a geração do relatório de vendas do dia anterior
type DailySalesReportService struct {
	scheduler *gocron.Scheduler
	config    DailySalesReportConfig
	reporter  reporting.Reporter

	runMutex           sync.Mutex
	runRunning         bool
	lastRunStartedAt   time.Time
	lastRunCompletedAt time.Time
	lastRunError       string
	lastReportDate     string
}

// NewDailySalesReportService cria o agendador a partir da configuração global
func NewDailySalesReportService(reporter reporting.Reporter, appConfig *config.Config) *DailySalesReportService {
	reportConfig := DailySalesReportConfig{
		CronSchedule: appConfig.DailySalesReport.CronSchedule,
		Queue:        appConfig.DailySalesReport.Queue,
		Enabled:      appConfig.DailySalesReport.Enabled,
	}

	logrus.WithFields(logrus.Fields{
		"cron_schedule": reportConfig.CronSchedule,
		"queue":         reportConfig.Queue,
		"enabled":       reportConfig.Enabled,
	}).Info("Configuração do agendador do relatório diário carregada")

	return &DailySalesReportService{
		scheduler: gocron.NewScheduler(time.Local),
		config:    reportConfig,
		reporter:  reporter,
	}
}

// Start agenda o job e para o agendador quando o contexto for cancelado
func (s *DailySalesReportService) Start(ctx context.Context) error {
	if !s.config.Enabled {
		logrus.Info("Relatório de vendas diário desabilitado por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador do relatório de vendas diário")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.RunDailySalesReport(ctx)
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar relatório de vendas diário: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador do relatório de vendas diário")
		s.scheduler.Stop()
	}()

	return nil
}

// RunDailySalesReport executa uma geração completa. Erros são registrados e a
// próxima execução agendada funciona como nova tentativa.
func (s *DailySalesReportService) RunDailySalesReport(ctx context.Context) {
	if !s.tryStart() {
		logrus.Info("Relatório de vendas diário já em andamento, ignorando")
		return
	}

	s.run(ctx)
}

// run assume que a execução já foi reservada por tryStart
func (s *DailySalesReportService) run(ctx context.Context) {
	ctx, _ = log.WithCorrelationID(ctx)
	logger := log.ForContext(ctx)
	startTime := time.Now()

	report, err := s.reporter.GenerateDailySalesReport(ctx)

	s.runMutex.Lock()
	s.runRunning = false
	s.lastRunCompletedAt = time.Now()
	s.lastRunError = ""
	if err != nil {
		s.lastRunError = err.Error()
	} else if report != nil {
		s.lastReportDate = report.Date
	}
	s.runMutex.Unlock()

	if err != nil {
		logger.WithError(err).Error("❌ Erro ao gerar relatório de vendas diário")
		return
	}

	logger.WithField("duration_ms", time.Since(startTime).Milliseconds()).Info("Execução do relatório de vendas diário concluída")
}

func (s *DailySalesReportService) tryStart() bool {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()

	if s.runRunning {
		return false
	}
	s.runRunning = true
	s.lastRunStartedAt = time.Now()
	return true
}

// TriggerManualRun dispara a geração em background; retorna false se já houver uma em andamento
func (s *DailySalesReportService) TriggerManualRun(ctx context.Context) bool {
	if !s.tryStart() {
		logrus.Info("Relatório de vendas diário já em andamento, ignorando solicitação manual")
		return false
	}

	logrus.Info("Iniciando geração manual do relatório de vendas diário")
	go s.run(context.WithoutCancel(ctx))
	return true
}

// GetStatus retorna o status atual do agendador
func (s *DailySalesReportService) GetStatus() map[string]any {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()

	return map[string]any{
		"report_enabled":        s.config.Enabled,
		"report_cron":           s.config.CronSchedule,
		"report_queue":          s.config.Queue,
		"running":               s.runRunning,
		"last_run_started_at":   s.lastRunStartedAt,
		"last_run_completed_at": s.lastRunCompletedAt,
		"last_run_error":        s.lastRunError,
		"last_report_date":      s.lastReportDate,
	}
}
