// Package repository contém as implementações dos repositórios para acesso aos dados
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"
	"github.com/vfg2006/invoice-report-api/infrastructure/database/postgres"
	"github.com/vfg2006/invoice-report-api/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

//go:generate mockgen -source=invoice.go -destination=mocks/invoice.go -package=mocks

const (
	invoicesTable = "invoices i"
)

var invoiceColumns = []string{
	"i.id",
	"i.customer",
	"i.amount",
	"i.reference",
	"i.date",
	"i.items",
	"i.created_at",
	"i.updated_at",
}

type InvoiceRepository interface {
	Insert(ctx context.Context, invoice *domain.Invoice) error
	List(ctx context.Context, startDate, endDate *time.Time) ([]*domain.Invoice, error)
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
	GetByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*domain.Invoice, error)
}

type invoiceRepository struct {
	conn postgres.Queryer
}

func NewInvoiceRepository(conn postgres.Queryer) InvoiceRepository {
	return &invoiceRepository{
		conn: conn,
	}
}

// Insert grava a nota e preenche ID, CreatedAt e UpdatedAt gerados pelo banco
func (r *invoiceRepository) Insert(ctx context.Context, invoice *domain.Invoice) error {
	items := invoice.Items
	if items == nil {
		items = []domain.InvoiceItem{}
	}

	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("erro ao serializar itens para JSON: %w", err)
	}

	query, args, err := squirrel.StatementBuilder.
		Insert("invoices").
		Columns("customer", "amount", "reference", "date", "items").
		Values(
			invoice.Customer,
			invoice.Amount,
			invoice.Reference,
			invoice.Date,
			itemsJSON,
		).
		Suffix("RETURNING id, created_at, updated_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	err = r.conn.QueryRowContext(ctx, query, args...).Scan(&invoice.ID, &invoice.CreatedAt, &invoice.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	invoice.Items = items

	return nil
}

// List retorna todas as notas ou as que estão entre startDate e endDate (inclusivo).
// A ordem não é garantida.
func (r *invoiceRepository) List(ctx context.Context, startDate, endDate *time.Time) ([]*domain.Invoice, error) {
	builder := squirrel.
		Select(invoiceColumns...).
		From(invoicesTable).
		PlaceholderFormat(squirrel.Dollar)

	if startDate != nil {
		builder = builder.Where(squirrel.GtOrEq{"i.date": *startDate})
	}
	if endDate != nil {
		builder = builder.Where(squirrel.LtOrEq{"i.date": *endDate})
	}

	return r.queryInvoices(ctx, builder)
}

func (r *invoiceRepository) GetByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*domain.Invoice, error) {
	builder := squirrel.
		Select(invoiceColumns...).
		From(invoicesTable).
		Where(squirrel.GtOrEq{"i.date": startDate}).
		Where(squirrel.LtOrEq{"i.date": endDate}).
		PlaceholderFormat(squirrel.Dollar)

	return r.queryInvoices(ctx, builder)
}

// GetByID retorna nil, nil quando a nota não existe
func (r *invoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	query, args, err := squirrel.
		Select(invoiceColumns...).
		From(invoicesTable).
		Where(squirrel.Eq{"i.id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	invoice, err := scanInvoice(r.conn.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao escanear nota: %w", err)
	}

	return invoice, nil
}

func (r *invoiceRepository) queryInvoices(ctx context.Context, builder squirrel.SelectBuilder) ([]*domain.Invoice, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	invoices := make([]*domain.Invoice, 0)
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear notas: %w", err)
		}
		invoices = append(invoices, invoice)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return invoices, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (*domain.Invoice, error) {
	invoice := &domain.Invoice{}
	var itemsJSON []byte

	err := row.Scan(
		&invoice.ID,
		&invoice.Customer,
		&invoice.Amount,
		&invoice.Reference,
		&invoice.Date,
		&itemsJSON,
		&invoice.CreatedAt,
		&invoice.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	invoice.Items = []domain.InvoiceItem{}
	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &invoice.Items); err != nil {
			return nil, fmt.Errorf("erro ao deserializar JSON de items: %w", err)
		}
	}

	return invoice, nil
}
