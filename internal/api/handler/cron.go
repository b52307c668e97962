package handler

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/invoice-report-api/pkg/apiErrors"
	"github.com/vfg2006/invoice-report-api/pkg/log"
)

const CronJobTypeDailySalesReport = "daily-sales-report"

//go:generate mockgen -source=cron.go -destination=mocks/cron.go -package=mocks

// CronJob é um job agendado que também pode ser disparado manualmente
type CronJob interface {
	TriggerManualRun(ctx context.Context) bool
	GetStatus() map[string]any
}

// CronJobServices contém os jobs disponíveis, indexados pelo tipo usado na URL
type CronJobServices struct {
	DailySalesReport CronJob
}

func (s CronJobServices) byType(cronType string) (CronJob, bool) {
	switch cronType {
	case CronJobTypeDailySalesReport:
		return s.DailySalesReport, s.DailySalesReport != nil
	default:
		return nil, false
	}
}

// RunCronJob dispara manualmente o job indicado em :type
func RunCronJob(services CronJobServices) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cronType := httprouter.ParamsFromContext(r.Context()).ByName("type")

		job, ok := services.byType(cronType)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Tipo de cron job inválido. Valores aceitos: "+CronJobTypeDailySalesReport, nil)
			return
		}

		started := job.TriggerManualRun(r.Context())
		log.ForContext(r.Context()).WithFields(log.Fields{
			"type":    cronType,
			"started": started,
		}).Info("Execução manual de cron job solicitada")

		message := "Cron job iniciada com sucesso"
		if !started {
			message = "Cron job já em andamento"
		}

		writeJSON(w, http.StatusAccepted, map[string]any{
			"message": message,
			"type":    cronType,
			"started": started,
		})
	})
}

// GetCronStatus retorna o status dos jobs configurados
func GetCronStatus(services CronJobServices) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := map[string]any{}
		if services.DailySalesReport != nil {
			status[CronJobTypeDailySalesReport] = services.DailySalesReport.GetStatus()
		}

		writeJSON(w, http.StatusOK, status)
	})
}
