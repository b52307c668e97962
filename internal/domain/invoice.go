package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Valores monetários trafegam como número no JSON (ex.: 100.5 e não "100.5")
	decimal.MarshalJSONWithoutQuotes = true
}

// InvoiceItem representa um item de linha da nota
type InvoiceItem struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"qt"`
}

// Invoice representa uma nota de venda persistida
type Invoice struct {
	ID        string          `json:"id"`
	Customer  string          `json:"customer"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference"`
	Date      time.Time       `json:"date"`
	Items     []InvoiceItem   `json:"items"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// CreateInvoiceRequest é o corpo de POST /invoices.
// Amount é ponteiro para diferenciar ausência de zero; Date aceita RFC3339 ou YYYY-MM-DD.
type CreateInvoiceRequest struct {
	Customer  string           `json:"customer"`
	Amount    *decimal.Decimal `json:"amount"`
	Reference string           `json:"reference"`
	Date      *string          `json:"date,omitempty"`
	Items     []InvoiceItem    `json:"items"`
}

// InvoiceFilters limita a listagem pelo campo date, ambos os limites inclusivos
type InvoiceFilters struct {
	StartDate *time.Time
	EndDate   *time.Time
}

func (f InvoiceFilters) IsEmpty() bool {
	return f.StartDate == nil && f.EndDate == nil
}
