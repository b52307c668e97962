package invoicing

import (
	"errors"
	"fmt"
)

// Erros específicos para o contexto de notas
var (
	// Erros de validação
	ErrMissingRequiredData = errors.New("missing required invoice data")
	ErrInvalidDate         = errors.New("invalid invoice date")
	ErrMalformedID         = errors.New("malformed invoice id")

	// Erros de consulta
	ErrInvoiceNotFound = errors.New("invoice not found")

	// Erros de banco de dados
	ErrDatabaseOperation = errors.New("database operation error")
)

// InvoiceError é um erro com contexto adicional para notas
type InvoiceError struct {
	Err       error  // Erro base
	Code      string // Código de erro para API
	InvoiceID string // ID da nota envolvida (quando aplicável)
	Details   string // Detalhes adicionais
}

func (e *InvoiceError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *InvoiceError) Unwrap() error {
	return e.Err
}

// NewInvoiceError cria um novo InvoiceError
func NewInvoiceError(err error, code string, details string) *InvoiceError {
	return &InvoiceError{
		Err:     err,
		Code:    code,
		Details: details,
	}
}

// NewInvoiceErrorWithID cria um novo InvoiceError com ID da nota
func NewInvoiceErrorWithID(err error, code string, invoiceID string, details string) *InvoiceError {
	return &InvoiceError{
		Err:       err,
		Code:      code,
		InvoiceID: invoiceID,
		Details:   details,
	}
}

// IsValidationError indica erros causados pela entrada do cliente
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingRequiredData) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrMalformedID)
}
