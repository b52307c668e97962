package handler

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/invoice-report-api/internal/domain"
	"github.com/vfg2006/invoice-report-api/internal/usecases/invoicing"
	"github.com/vfg2006/invoice-report-api/pkg/apiErrors"
	"github.com/vfg2006/invoice-report-api/pkg/log"
	"github.com/vfg2006/invoice-report-api/pkg/utils"
)

func CreateInvoice(service invoicing.InvoiceService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req domain.CreateInvoiceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Corpo da requisição inválido", err.Error())
			return
		}

		invoice, err := service.Create(r.Context(), &req)
		if err != nil {
			writeInvoiceError(w, r, err, "Erro ao criar nota")
			return
		}

		writeJSON(w, http.StatusCreated, invoice)
	})
}

func ListInvoices(service invoicing.InvoiceService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		startDate, err := utils.ParseDate(query.Get("startDate"))
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "startDate inválido, use YYYY-MM-DD ou RFC3339", nil)
			return
		}

		endDate, err := utils.ParseDate(query.Get("endDate"))
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "endDate inválido, use YYYY-MM-DD ou RFC3339", nil)
			return
		}

		invoices, err := service.List(r.Context(), domain.InvoiceFilters{StartDate: startDate, EndDate: endDate})
		if err != nil {
			writeInvoiceError(w, r, err, "Erro ao listar notas")
			return
		}

		if invoices == nil {
			invoices = []*domain.Invoice{}
		}

		writeJSON(w, http.StatusOK, invoices)
	})
}

func GetInvoice(service invoicing.InvoiceService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		invoice, err := service.GetByID(r.Context(), id)
		if err != nil {
			writeInvoiceError(w, r, err, "Erro ao buscar nota")
			return
		}

		writeJSON(w, http.StatusOK, invoice)
	})
}

// writeInvoiceError traduz os erros do serviço para a resposta HTTP sem expor detalhes de infraestrutura
func writeInvoiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	logger := log.ForContext(r.Context()).WithError(err)

	var invoiceErr *invoicing.InvoiceError
	if !errors.As(err, &invoiceErr) {
		logger.Error(fallback)
		apiErrors.WriteError(w, apiErrors.ErrInternalServer, fallback, nil)
		return
	}

	switch {
	case errors.Is(err, invoicing.ErrMissingRequiredData):
		apiErrors.WriteError(w, invoiceErr.Code, "Dados obrigatórios ausentes", map[string]string{"fields": invoiceErr.Details})

	case errors.Is(err, invoicing.ErrInvalidDate):
		apiErrors.WriteError(w, invoiceErr.Code, "Data inválida, use YYYY-MM-DD ou RFC3339", nil)

	case errors.Is(err, invoicing.ErrMalformedID):
		apiErrors.WriteError(w, invoiceErr.Code, "ID da nota inválido", map[string]string{"invoice_id": invoiceErr.InvoiceID})

	case errors.Is(err, invoicing.ErrInvoiceNotFound):
		apiErrors.WriteError(w, invoiceErr.Code, "Nota não encontrada", map[string]string{"invoice_id": invoiceErr.InvoiceID})

	case errors.Is(err, invoicing.ErrDatabaseOperation):
		logger.Error(fallback)
		apiErrors.WriteError(w, invoiceErr.Code, "Erro ao consultar notas no banco de dados", nil)

	default:
		logger.Error(fallback)
		apiErrors.WriteError(w, invoiceErr.Code, fallback, nil)
	}
}
