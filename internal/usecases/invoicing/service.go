package invoicing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/vfg2006/invoice-report-api/infrastructure/repository"
	"github.com/vfg2006/invoice-report-api/internal/domain"
	"github.com/vfg2006/invoice-report-api/pkg/apiErrors"
	"github.com/vfg2006/invoice-report-api/pkg/log"
	"github.com/vfg2006/invoice-report-api/pkg/utils"
)

//go:generate mockgen -source=service.go -destination=mocks/service.go -package=mocks

// InvoiceFinder é a consulta usada exclusivamente pelo relatório diário
type InvoiceFinder interface {
	// FindByDateRange retorna as notas com date em [start, end], inclusivo nos dois limites
	FindByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Invoice, error)
}

// InvoiceService define as operações de domínio sobre notas
type InvoiceService interface {
	InvoiceFinder

	// Create persiste uma nova nota e retorna o registro com o ID atribuído
	Create(ctx context.Context, req *domain.CreateInvoiceRequest) (*domain.Invoice, error)

	// List retorna todas as notas, ou as filtradas por data quando algum limite é informado
	List(ctx context.Context, filters domain.InvoiceFilters) ([]*domain.Invoice, error)

	// GetByID retorna ErrMalformedID para IDs inválidos e ErrInvoiceNotFound quando não existe
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
}

var _ InvoiceService = (*Service)(nil)

type Service struct {
	invoiceRepository repository.InvoiceRepository
	now               func() time.Time
}

func NewService(invoiceRepository repository.InvoiceRepository) *Service {
	return &Service{
		invoiceRepository: invoiceRepository,
		now:               time.Now,
	}
}

// WithClock substitui o relógio usado como data padrão das notas
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Create(ctx context.Context, req *domain.CreateInvoiceRequest) (*domain.Invoice, error) {
	logger := log.ForContext(ctx)

	if req == nil {
		return nil, NewInvoiceError(ErrMissingRequiredData, apiErrors.ErrMissingRequiredData, "corpo da requisição vazio")
	}

	if missing := missingFields(req); len(missing) > 0 {
		return nil, NewInvoiceError(ErrMissingRequiredData, apiErrors.ErrMissingRequiredData, strings.Join(missing, ", "))
	}

	date := s.now()
	if req.Date != nil && *req.Date != "" {
		parsed, err := utils.ParseDate(*req.Date)
		if err != nil {
			return nil, NewInvoiceError(ErrInvalidDate, apiErrors.ErrInvalidFormat, err.Error())
		}
		date = *parsed
	}

	items := req.Items
	if items == nil {
		items = []domain.InvoiceItem{}
	}

	invoice := &domain.Invoice{
		Customer:  req.Customer,
		Amount:    *req.Amount,
		Reference: req.Reference,
		Date:      date,
		Items:     items,
	}

	if err := s.invoiceRepository.Insert(ctx, invoice); err != nil {
		logger.WithError(err).Error("Erro ao inserir nota")
		return nil, NewInvoiceError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, err.Error())
	}

	logger.WithField("invoice_id", invoice.ID).Info("Nota criada")

	return invoice, nil
}

func (s *Service) List(ctx context.Context, filters domain.InvoiceFilters) ([]*domain.Invoice, error) {
	invoices, err := s.invoiceRepository.List(ctx, filters.StartDate, filters.EndDate)
	if err != nil {
		log.ForContext(ctx).WithError(err).Error("Erro ao listar notas")
		return nil, NewInvoiceError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, err.Error())
	}

	return invoices, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, NewInvoiceErrorWithID(ErrMalformedID, apiErrors.ErrMalformedID, id, "o ID deve ser um UUID")
	}

	invoice, err := s.invoiceRepository.GetByID(ctx, id)
	if err != nil {
		log.ForContext(ctx).WithError(err).Error("Erro ao buscar nota")
		return nil, NewInvoiceErrorWithID(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, id, err.Error())
	}

	if invoice == nil {
		return nil, NewInvoiceErrorWithID(ErrInvoiceNotFound, apiErrors.ErrInvoiceNotFound, id, "")
	}

	return invoice, nil
}

func (s *Service) FindByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Invoice, error) {
	invoices, err := s.invoiceRepository.GetByDateRange(ctx, start, end)
	if err != nil {
		return nil, errors.Wrapf(err, "erro ao buscar notas entre %s e %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	return invoices, nil
}

func missingFields(req *domain.CreateInvoiceRequest) []string {
	missing := make([]string, 0)
	if req.Customer == "" {
		missing = append(missing, "customer")
	}
	if req.Amount == nil {
		missing = append(missing, "amount")
	}
	if req.Reference == "" {
		missing = append(missing, "reference")
	}
	return missing
}
