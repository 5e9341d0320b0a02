package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"factures/internal/core"

	_ "modernc.org/sqlite"
)

// dsnPragmas are applied to every pooled connection. Transactions start
// IMMEDIATE so the write lock is taken before the first read.
const dsnPragmas = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Single writer: every statement and transaction goes through one connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks that the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// withTx runs fn in a transaction, rolling back on any error.
func (r *SQLiteRepository) withTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(r.queries.WithTx(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Clients

func (r *SQLiteRepository) CreateClient(ctx context.Context, in core.ClientInput) (int64, error) {
	in = in.Normalize()
	id, err := r.queries.CreateClient(ctx, CreateClientParams{
		Name:    in.Name,
		Email:   nullString(in.Email),
		Phone:   nullString(in.Phone),
		Address: nullString(in.Address),
		Siret:   nullString(in.SIRET),
	})
	if err != nil {
		return 0, fmt.Errorf("create client: %w", err)
	}

	slog.InfoContext(ctx, "Client saved to SQLite", "id", id, "name", in.Name)
	return id, nil
}

func (r *SQLiteRepository) UpdateClient(ctx context.Context, id int64, in core.ClientInput) (bool, error) {
	in = in.Normalize()
	n, err := r.queries.UpdateClient(ctx, UpdateClientParams{
		Name:    in.Name,
		Email:   nullString(in.Email),
		Phone:   nullString(in.Phone),
		Address: nullString(in.Address),
		Siret:   nullString(in.SIRET),
		ID:      id,
	})
	if err != nil {
		return false, fmt.Errorf("update client %d: %w", id, err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Client updated", "id", id)
	}
	return n > 0, nil
}

// DeleteClient refuses to delete a client that still owns invoices.
func (r *SQLiteRepository) DeleteClient(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := r.withTx(ctx, func(q *Queries) error {
		count, err := q.CountClientInvoices(ctx, id)
		if err != nil {
			return fmt.Errorf("count client invoices: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("delete client %d: %w (%d invoices)", id, core.ErrClientHasInvoices, count)
		}
		n, err := q.DeleteClient(ctx, id)
		if err != nil {
			return fmt.Errorf("delete client %d: %w", id, err)
		}
		deleted = n > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	if deleted {
		slog.InfoContext(ctx, "Client deleted", "id", id)
	}
	return deleted, nil
}

func (r *SQLiteRepository) GetClient(ctx context.Context, id int64) (core.ClientDetail, error) {
	c, err := r.queries.GetClient(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ClientDetail{}, fmt.Errorf("client %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.ClientDetail{}, fmt.Errorf("get client %d: %w", id, err)
	}

	rows, err := r.queries.ListClientInvoices(ctx, id)
	if err != nil {
		return core.ClientDetail{}, fmt.Errorf("list client invoices: %w", err)
	}
	invoices := make([]core.ClientInvoice, len(rows))
	for i, row := range rows {
		invoices[i] = core.ClientInvoice{
			ID:        row.ID,
			Number:    row.Number,
			IssueDate: parseDate(row.IssueDate),
			DueDate:   parseDate(row.DueDate.String),
			Status:    core.Status(row.Status),
			Total:     row.Total,
		}
	}
	return core.ClientDetail{Client: c.toCore(), Invoices: invoices}, nil
}

func (r *SQLiteRepository) ListClients(ctx context.Context) ([]core.ClientSummary, error) {
	rows, err := r.queries.ListClientsWithStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	clients := make([]core.ClientSummary, len(rows))
	for i, row := range rows {
		clients[i] = core.ClientSummary{
			Client:       row.Client.toCore(),
			InvoiceCount: int(row.InvoiceCount),
			TotalRevenue: row.TotalRevenue,
		}
	}
	return clients, nil
}

func (r *SQLiteRepository) SearchClients(ctx context.Context, text string) ([]core.Client, error) {
	rows, err := r.queries.SearchClients(ctx, containsPattern(text))
	if err != nil {
		return nil, fmt.Errorf("search clients: %w", err)
	}
	clients := make([]core.Client, len(rows))
	for i, row := range rows {
		clients[i] = row.toCore()
	}
	return clients, nil
}

func (r *SQLiteRepository) ClientCount(ctx context.Context) (int, error) {
	n, err := r.queries.CountClients(ctx)
	if err != nil {
		return 0, fmt.Errorf("count clients: %w", err)
	}
	return int(n), nil
}

// Invoices

// CreateInvoice stores the invoice and its lines in one transaction.
// An empty number is allocated from the issue year's sequence inside that transaction.
func (r *SQLiteRepository) CreateInvoice(ctx context.Context, in core.InvoiceInput) (core.Invoice, error) {
	inv, lines := in.Apply()

	err := r.withTx(ctx, func(q *Queries) error {
		exists, err := q.ClientExists(ctx, inv.ClientID)
		if err != nil {
			return fmt.Errorf("check client: %w", err)
		}
		if !exists {
			return &core.ValidationError{Field: "client_id", Message: fmt.Sprintf("unknown client %d", inv.ClientID)}
		}

		if inv.Number == "" {
			inv.Number, err = nextNumber(ctx, q, inv.IssueDate.Year())
			if err != nil {
				return err
			}
		} else {
			if err := core.CheckInvoiceNumber(inv.Number, inv.IssueDate); err != nil {
				return err
			}
			taken, err := q.InvoiceNumberExists(ctx, inv.Number)
			if err != nil {
				return fmt.Errorf("check invoice number: %w", err)
			}
			if taken {
				return &core.ValidationError{Field: "number", Message: fmt.Sprintf("%s already used", inv.Number)}
			}
		}

		id, err := q.CreateInvoice(ctx, CreateInvoiceParams{
			Number:    inv.Number,
			ClientID:  inv.ClientID,
			IssueDate: inv.IssueDate.String(),
			DueDate:   nullDate(inv.DueDate),
			Status:    string(inv.Status),
			Subtotal:  inv.Subtotal,
			TaxRate:   inv.TaxRate,
			TaxAmount: inv.TaxAmount,
			Total:     inv.Total,
			Notes:     nullString(inv.Notes),
		})
		if err != nil {
			return fmt.Errorf("insert invoice: %w", err)
		}
		inv.ID = id
		return insertLines(ctx, q, id, lines)
	})
	if err != nil {
		return core.Invoice{}, err
	}

	slog.InfoContext(ctx, "Invoice saved to SQLite",
		"id", inv.ID,
		"number", inv.Number,
		"client_id", inv.ClientID,
		"lines", len(lines),
		"total", inv.Total)
	return inv, nil
}

// UpdateInvoice replaces the mutable fields and every line. The number never changes.
// An empty status keeps the stored one.
func (r *SQLiteRepository) UpdateInvoice(ctx context.Context, id int64, in core.InvoiceInput) (bool, error) {
	inv, lines := in.Apply()
	var changed bool

	err := r.withTx(ctx, func(q *Queries) error {
		exists, err := q.ClientExists(ctx, inv.ClientID)
		if err != nil {
			return fmt.Errorf("check client: %w", err)
		}
		if !exists {
			return &core.ValidationError{Field: "client_id", Message: fmt.Sprintf("unknown client %d", inv.ClientID)}
		}

		n, err := q.UpdateInvoice(ctx, UpdateInvoiceParams{
			ClientID:  inv.ClientID,
			IssueDate: inv.IssueDate.String(),
			DueDate:   nullDate(inv.DueDate),
			Status:    string(in.Status),
			Subtotal:  inv.Subtotal,
			TaxRate:   inv.TaxRate,
			TaxAmount: inv.TaxAmount,
			Total:     inv.Total,
			Notes:     nullString(inv.Notes),
			ID:        id,
		})
		if err != nil {
			return fmt.Errorf("update invoice %d: %w", id, err)
		}
		if n == 0 {
			return nil
		}
		changed = true

		if err := q.DeleteInvoiceLines(ctx, id); err != nil {
			return fmt.Errorf("delete invoice lines: %w", err)
		}
		return insertLines(ctx, q, id, lines)
	})
	if err != nil {
		return false, err
	}
	if changed {
		slog.InfoContext(ctx, "Invoice updated", "id", id, "lines", len(lines), "total", inv.Total)
	}
	return changed, nil
}

func (r *SQLiteRepository) SetInvoiceStatus(ctx context.Context, id int64, status core.Status) (bool, error) {
	n, err := r.queries.UpdateInvoiceStatus(ctx, string(status), id)
	if err != nil {
		return false, fmt.Errorf("update invoice status %d: %w", id, err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Invoice status changed", "id", id, "status", status)
	}
	return n > 0, nil
}

// DeleteInvoice removes the invoice; its lines go by cascade.
func (r *SQLiteRepository) DeleteInvoice(ctx context.Context, id int64) (bool, error) {
	n, err := r.queries.DeleteInvoice(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete invoice %d: %w", id, err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Invoice deleted", "id", id)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) GetInvoice(ctx context.Context, id int64) (core.InvoiceDetail, error) {
	row, err := r.queries.GetInvoiceWithClient(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.InvoiceDetail{}, fmt.Errorf("invoice %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.InvoiceDetail{}, fmt.Errorf("get invoice %d: %w", id, err)
	}

	dbLines, err := r.queries.ListInvoiceLines(ctx, id)
	if err != nil {
		return core.InvoiceDetail{}, fmt.Errorf("list invoice lines: %w", err)
	}
	lines := make([]core.InvoiceLine, len(dbLines))
	for i, l := range dbLines {
		lines[i] = l.toCore()
	}

	return core.InvoiceDetail{
		Invoice: row.Invoice.toCore(),
		Client: core.ClientContact{
			ID:      row.ClientID,
			Name:    row.ClientName,
			Email:   row.ClientEmail.String,
			Phone:   row.ClientPhone.String,
			Address: row.ClientAddress.String,
			SIRET:   row.ClientSiret.String,
		},
		Lines: lines,
	}, nil
}

func (r *SQLiteRepository) ListInvoices(ctx context.Context, f core.InvoiceFilter) ([]core.InvoiceSummary, error) {
	rows, err := r.queries.ListInvoices(ctx, ListInvoicesParams{
		ClientID: f.ClientID,
		Status:   string(f.Status),
		Search:   f.Search,
		DateFrom: f.DateFrom.String(),
		DateTo:   f.DateTo.String(),
		Limit:    f.Limit,
		Offset:   f.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	invoices := make([]core.InvoiceSummary, len(rows))
	for i, row := range rows {
		invoices[i] = core.InvoiceSummary{
			Invoice:     row.Invoice.toCore(),
			ClientName:  row.ClientName,
			ClientEmail: row.ClientEmail.String,
		}
	}
	return invoices, nil
}

// NextInvoiceNumber previews the number the next invoice of year would get.
func (r *SQLiteRepository) NextInvoiceNumber(ctx context.Context, year int) (string, error) {
	return nextNumber(ctx, r.queries, year)
}

func nextNumber(ctx context.Context, q *Queries, year int) (string, error) {
	last, err := q.LastInvoiceNumber(ctx, core.InvoiceNumberPrefix(year))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("read last invoice number: %w", err)
	}
	number, err := core.NextInvoiceNumber(year, last)
	if err != nil {
		return "", fmt.Errorf("next invoice number: %w", err)
	}
	return number, nil
}

func insertLines(ctx context.Context, q *Queries, invoiceID int64, lines []core.InvoiceLine) error {
	for i, l := range lines {
		err := q.CreateInvoiceLine(ctx, CreateInvoiceLineParams{
			InvoiceID:   invoiceID,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Total:       l.Total,
		})
		if err != nil {
			return fmt.Errorf("insert invoice line %d: %w", i, err)
		}
	}
	return nil
}

// Company profile

func (r *SQLiteRepository) GetCompanyProfile(ctx context.Context) (core.CompanyProfile, error) {
	p, err := r.queries.GetCompanyProfile(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return core.CompanyProfile{}, fmt.Errorf("company profile: %w", core.ErrNotFound)
	}
	if err != nil {
		return core.CompanyProfile{}, fmt.Errorf("get company profile: %w", err)
	}
	return p.toCore(), nil
}

func (r *SQLiteRepository) UpdateCompanyProfile(ctx context.Context, p core.CompanyProfile) error {
	n, err := r.queries.UpdateCompanyProfile(ctx, UpdateCompanyProfileParams{
		Name:      p.Name,
		Address:   nullString(p.Address),
		Phone:     nullString(p.Phone),
		Email:     nullString(p.Email),
		Siret:     nullString(core.NormalizeSIRET(p.SIRET)),
		VatNumber: nullString(p.VATNumber),
		LogoPath:  nullString(p.LogoPath),
		Iban:      nullString(p.IBAN),
	})
	if err != nil {
		return fmt.Errorf("update company profile: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("company profile: %w", core.ErrNotFound)
	}
	slog.InfoContext(ctx, "Company profile updated", "name", p.Name)
	return nil
}
