package handler

import (
	"net/http"

	"github.com/vfg2006/invoice-report-api/internal/api/handler/router"
	"github.com/vfg2006/invoice-report-api/internal/usecases/invoicing"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Invoices(service invoicing.InvoiceService) []router.Route {
	return []router.Route{
		{
			Path:    "/invoices",
			Method:  http.MethodPost,
			Handler: CreateInvoice(service),
		},
		{
			Path:    "/invoices",
			Method:  http.MethodGet,
			Handler: ListInvoices(service),
		},
		{
			Path:    "/invoices/:id",
			Method:  http.MethodGet,
			Handler: GetInvoice(service),
		},
	}
}

func CronJobs(services CronJobServices) []router.Route {
	return []router.Route{
		{
			Path:    "/cron/:type/run",
			Method:  http.MethodPost,
			Handler: RunCronJob(services),
		},
		{
			Path:    "/cron/status",
			Method:  http.MethodGet,
			Handler: GetCronStatus(services),
		},
	}
}
