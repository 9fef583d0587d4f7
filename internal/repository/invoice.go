package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"

	"github.com/joseph-ayodele/invoice-intake/internal/common"
	"github.com/joseph-ayodele/invoice-intake/internal/entity"
)

// InvoiceRepository is the read side of the record store.
type InvoiceRepository interface {
	// GetByID returns common.ErrNotFound when no record has that id.
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
}

// InvoiceWriter is implemented by stores that can be seeded.
type InvoiceWriter interface {
	Put(ctx context.Context, inv *entity.Invoice) error
}

// InvoiceLister is implemented by stores that can enumerate records.
type InvoiceLister interface {
	List(ctx context.Context, limit int) ([]*entity.Invoice, error)
}

// InvoiceStore can both read and seed records.
type InvoiceStore interface {
	InvoiceRepository
	InvoiceWriter
}

type sqlInvoiceRepository struct {
	drv    *entsql.Driver
	logger *slog.Logger
	now    func() time.Time
}

// SQLInvoiceRepository is backed by an ent SQL driver (SQLite or Postgres).
type SQLInvoiceRepository interface {
	InvoiceRepository
	InvoiceWriter
	InvoiceLister
	Migrate(ctx context.Context) error
}

func NewSQLInvoiceRepository(drv *entsql.Driver, logger *slog.Logger) SQLInvoiceRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &sqlInvoiceRepository{
		drv:    drv,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Migrate creates or updates the invoices table.
func (r *sqlInvoiceRepository) Migrate(ctx context.Context) error {
	m, err := schema.NewMigrate(r.drv)
	if err != nil {
		return fmt.Errorf("%w: migrate: %v", common.ErrDatabase, err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		r.logger.Error("failed to migrate schema", "error", err)
		return fmt.Errorf("%w: migrate: %v", common.ErrDatabase, err)
	}
	r.logger.Info("schema migrated", "tables", len(Tables))
	return nil
}

func (r *sqlInvoiceRepository) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, common.ErrNotFound
	}

	query, args := entsql.Dialect(r.drv.Dialect()).
		Select(readColumns...).
		From(entsql.Table(InvoicesTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		r.logger.Error("failed to get invoice", "invoice_id", id, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
		}
		r.logger.Debug("invoice not found", "invoice_id", id)
		return nil, common.ErrNotFound
	}
	return scanInvoice(rows)
}

func (r *sqlInvoiceRepository) List(ctx context.Context, limit int) ([]*entity.Invoice, error) {
	sel := entsql.Dialect(r.drv.Dialect()).
		Select(readColumns...).
		From(entsql.Table(InvoicesTable.Name)).
		OrderBy(entsql.Desc("created_at"), entsql.Asc("id"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	query, args := sel.Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		r.logger.Error("failed to list invoices", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return out, nil
}

// Put inserts or replaces an invoice by id.
func (r *sqlInvoiceRepository) Put(ctx context.Context, inv *entity.Invoice) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	items, err := json.Marshal(inv.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	createdAt := inv.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now()
	}

	query, args := entsql.Dialect(r.drv.Dialect()).
		Insert(InvoicesTable.Name).
		Columns(append(readColumns[:len(readColumns):len(readColumns)], "created_at")...).
		Values(
			inv.ID, inv.VendorName, inv.InvoiceNumber, inv.InvoiceDate, inv.DueDate, inv.Status, inv.Currency,
			nullFloat(inv.Subtotal), nullFloat(inv.TaxAmount), inv.TotalAmount,
			inv.BillingAddress, inv.ShippingAddress, string(items), createdAt,
		).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		r.logger.Error("failed to upsert invoice", "invoice_id", inv.ID, "error", err)
		return fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	r.logger.Info("invoice stored", "invoice_id", inv.ID)
	return nil
}

func scanInvoice(rows *entsql.Rows) (*entity.Invoice, error) {
	var (
		inv       entity.Invoice
		subtotal  sql.NullFloat64
		taxAmount sql.NullFloat64
		items     []byte
	)
	if err := rows.Scan(
		&inv.ID, &inv.VendorName, &inv.InvoiceNumber, &inv.InvoiceDate, &inv.DueDate, &inv.Status, &inv.Currency,
		&subtotal, &taxAmount, &inv.TotalAmount, &inv.BillingAddress, &inv.ShippingAddress, &items,
	); err != nil {
		return nil, fmt.Errorf("%w: scan invoice: %v", common.ErrDatabase, err)
	}
	if subtotal.Valid {
		inv.Subtotal = &subtotal.Float64
	}
	if taxAmount.Valid {
		inv.TaxAmount = &taxAmount.Float64
	}
	if len(items) > 0 && string(items) != "null" {
		if err := json.Unmarshal(items, &inv.Items); err != nil {
			return nil, fmt.Errorf("%w: decode items for %s: %v", common.ErrDatabase, inv.ID, err)
		}
	}
	return &inv, nil
}

func nullFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
