package storage

import (
	"context"
	"database/sql"
	"strings"
)

const createInvoice = `
INSERT INTO invoices (number, client_id, issue_date, due_date, status, subtotal, tax_rate, tax_amount, total, notes)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateInvoiceParams struct {
	Number    string
	ClientID  int64
	IssueDate string
	DueDate   sql.NullString
	Status    string
	Subtotal  float64
	TaxRate   float64
	TaxAmount float64
	Total     float64
	Notes     sql.NullString
}

func (q *Queries) CreateInvoice(ctx context.Context, arg CreateInvoiceParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createInvoice,
		arg.Number, arg.ClientID, arg.IssueDate, arg.DueDate, arg.Status,
		arg.Subtotal, arg.TaxRate, arg.TaxAmount, arg.Total, arg.Notes,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// An empty status keeps the stored one.
const updateInvoice = `
UPDATE invoices SET
    client_id = ?,
    issue_date = ?,
    due_date = ?,
    status = COALESCE(NULLIF(?, ''), status),
    subtotal = ?,
    tax_rate = ?,
    tax_amount = ?,
    total = ?,
    notes = ?,
    updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`

type UpdateInvoiceParams struct {
	ClientID  int64
	IssueDate string
	DueDate   sql.NullString
	Status    string
	Subtotal  float64
	TaxRate   float64
	TaxAmount float64
	Total     float64
	Notes     sql.NullString
	ID        int64
}

func (q *Queries) UpdateInvoice(ctx context.Context, arg UpdateInvoiceParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateInvoice,
		arg.ClientID, arg.IssueDate, arg.DueDate, arg.Status,
		arg.Subtotal, arg.TaxRate, arg.TaxAmount, arg.Total, arg.Notes, arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const updateInvoiceStatus = `
UPDATE invoices SET status = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`

func (q *Queries) UpdateInvoiceStatus(ctx context.Context, status string, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateInvoiceStatus, status, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteInvoice = `DELETE FROM invoices WHERE id = ?`

func (q *Queries) DeleteInvoice(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteInvoice, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const invoiceNumberExists = `SELECT EXISTS(SELECT 1 FROM invoices WHERE number = ?)`

func (q *Queries) InvoiceNumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, invoiceNumberExists, number).Scan(&exists)
	return exists, err
}

const lastInvoiceNumber = `
SELECT number FROM invoices
WHERE number LIKE ? ESCAPE '\'
ORDER BY number DESC
LIMIT 1
`

// LastInvoiceNumber returns sql.ErrNoRows when no number carries the prefix.
func (q *Queries) LastInvoiceNumber(ctx context.Context, prefix string) (string, error) {
	var number string
	err := q.db.QueryRowContext(ctx, lastInvoiceNumber, escapeLike(prefix)+"%").Scan(&number)
	return number, err
}

const getInvoiceWithClient = `
SELECT i.id, i.number, i.client_id, i.issue_date, i.due_date, i.status,
       i.subtotal, i.tax_rate, i.tax_amount, i.total, i.notes, i.created_at, i.updated_at,
       c.name, c.email, c.phone, c.address, c.siret
FROM invoices i
JOIN clients c ON c.id = i.client_id
WHERE i.id = ?
`

type GetInvoiceWithClientRow struct {
	Invoice
	ClientName    string
	ClientEmail   sql.NullString
	ClientPhone   sql.NullString
	ClientAddress sql.NullString
	ClientSiret   sql.NullString
}

func (q *Queries) GetInvoiceWithClient(ctx context.Context, id int64) (GetInvoiceWithClientRow, error) {
	row := q.db.QueryRowContext(ctx, getInvoiceWithClient, id)
	var i GetInvoiceWithClientRow
	err := row.Scan(
		&i.ID, &i.Number, &i.ClientID, &i.IssueDate, &i.DueDate, &i.Status,
		&i.Subtotal, &i.TaxRate, &i.TaxAmount, &i.Total, &i.Notes, &i.CreatedAt, &i.UpdatedAt,
		&i.ClientName, &i.ClientEmail, &i.ClientPhone, &i.ClientAddress, &i.ClientSiret,
	)
	return i, err
}

const createInvoiceLine = `
INSERT INTO invoice_lines (invoice_id, description, quantity, unit_price, total)
VALUES (?, ?, ?, ?, ?)
`

type CreateInvoiceLineParams struct {
	InvoiceID   int64
	Description string
	Quantity    float64
	UnitPrice   float64
	Total       float64
}

func (q *Queries) CreateInvoiceLine(ctx context.Context, arg CreateInvoiceLineParams) error {
	_, err := q.db.ExecContext(ctx, createInvoiceLine, arg.InvoiceID, arg.Description, arg.Quantity, arg.UnitPrice, arg.Total)
	return err
}

const deleteInvoiceLines = `DELETE FROM invoice_lines WHERE invoice_id = ?`

func (q *Queries) DeleteInvoiceLines(ctx context.Context, invoiceID int64) error {
	_, err := q.db.ExecContext(ctx, deleteInvoiceLines, invoiceID)
	return err
}

const listInvoiceLines = `
SELECT id, invoice_id, description, quantity, unit_price, total
FROM invoice_lines
WHERE invoice_id = ?
ORDER BY id
`

func (q *Queries) ListInvoiceLines(ctx context.Context, invoiceID int64) ([]InvoiceLine, error) {
	rows, err := q.db.QueryContext(ctx, listInvoiceLines, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []InvoiceLine{}
	for rows.Next() {
		var i InvoiceLine
		if err := rows.Scan(&i.ID, &i.InvoiceID, &i.Description, &i.Quantity, &i.UnitPrice, &i.Total); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listInvoicesBase = `
SELECT i.id, i.number, i.client_id, i.issue_date, i.due_date, i.status,
       i.subtotal, i.tax_rate, i.tax_amount, i.total, i.notes, i.created_at, i.updated_at,
       c.name, c.email
FROM invoices i
JOIN clients c ON c.id = i.client_id
`

// ListInvoicesParams mirrors core.InvoiceFilter with storage-ready values.
// Empty strings and zero ids disable a criterion.
type ListInvoicesParams struct {
	ClientID int64
	Status   string
	Search   string
	DateFrom string
	DateTo   string
	Limit    int
	Offset   int
}

type ListInvoicesRow struct {
	Invoice
	ClientName  string
	ClientEmail sql.NullString
}

func (q *Queries) ListInvoices(ctx context.Context, arg ListInvoicesParams) ([]ListInvoicesRow, error) {
	var (
		where []string
		args  []interface{}
	)
	if arg.ClientID > 0 {
		where = append(where, "i.client_id = ?")
		args = append(args, arg.ClientID)
	}
	if arg.Status != "" {
		where = append(where, "i.status = ?")
		args = append(args, arg.Status)
	}
	if arg.Search != "" {
		pattern := containsPattern(arg.Search)
		where = append(where, `(i.number LIKE ? ESCAPE '\' OR c.name LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if arg.DateFrom != "" {
		where = append(where, "i.issue_date >= ?")
		args = append(args, arg.DateFrom)
	}
	if arg.DateTo != "" {
		where = append(where, "i.issue_date <= ?")
		args = append(args, arg.DateTo)
	}

	var b strings.Builder
	b.WriteString(listInvoicesBase)
	if len(where) > 0 {
		b.WriteString("WHERE ")
		b.WriteString(strings.Join(where, " AND "))
		b.WriteString("\n")
	}
	b.WriteString("ORDER BY i.issue_date DESC, i.id DESC\n")
	switch {
	case arg.Limit > 0:
		b.WriteString("LIMIT ? OFFSET ?")
		args = append(args, arg.Limit, max(arg.Offset, 0))
	case arg.Offset > 0:
		b.WriteString("LIMIT -1 OFFSET ?")
		args = append(args, arg.Offset)
	}

	rows, err := q.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListInvoicesRow{}
	for rows.Next() {
		var i ListInvoicesRow
		if err := rows.Scan(
			&i.ID, &i.Number, &i.ClientID, &i.IssueDate, &i.DueDate, &i.Status,
			&i.Subtotal, &i.TaxRate, &i.TaxAmount, &i.Total, &i.Notes, &i.CreatedAt, &i.UpdatedAt,
			&i.ClientName, &i.ClientEmail,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
