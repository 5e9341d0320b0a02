package storage

import (
	"context"
	"database/sql"
)

const invoiceStatsByStatus = `
SELECT status, COUNT(*) AS count, COALESCE(SUM(total), 0) AS total
FROM invoices
GROUP BY status
ORDER BY status
`

type InvoiceStatsByStatusRow struct {
	Status string
	Count  int64
	Total  float64
}

func (q *Queries) InvoiceStatsByStatus(ctx context.Context) ([]InvoiceStatsByStatusRow, error) {
	rows, err := q.db.QueryContext(ctx, invoiceStatsByStatus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []InvoiceStatsByStatusRow{}
	for rows.Next() {
		var i InvoiceStatsByStatusRow
		if err := rows.Scan(&i.Status, &i.Count, &i.Total); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// An empty upper bound leaves the range open.
const paidRevenueByMonth = `
SELECT strftime('%Y-%m', issue_date) AS month,
       COALESCE(SUM(total), 0) AS revenue,
       COUNT(*) AS invoice_count
FROM invoices
WHERE status = 'paid'
  AND issue_date >= ?1
  AND (?2 = '' OR issue_date <= ?2)
GROUP BY month
ORDER BY month
`

type PaidRevenueByMonthRow struct {
	Month        string
	Revenue      float64
	InvoiceCount int64
}

func (q *Queries) PaidRevenueByMonth(ctx context.Context, from, to string) ([]PaidRevenueByMonthRow, error) {
	rows, err := q.db.QueryContext(ctx, paidRevenueByMonth, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []PaidRevenueByMonthRow{}
	for rows.Next() {
		var i PaidRevenueByMonthRow
		if err := rows.Scan(&i.Month, &i.Revenue, &i.InvoiceCount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const topClients = `
SELECT c.id, c.name, c.email,
       COUNT(i.id) AS invoice_count,
       COALESCE(SUM(i.total), 0) AS revenue
FROM clients c
JOIN invoices i ON i.client_id = c.id
WHERE i.status = 'paid'
  AND (?1 = '' OR i.issue_date >= ?1)
  AND (?2 = '' OR i.issue_date <= ?2)
GROUP BY c.id
ORDER BY revenue DESC, c.id
LIMIT ?3
`

type TopClientsParams struct {
	DateFrom string
	DateTo   string
	Limit    int64
}

type TopClientsRow struct {
	ID           int64
	Name         string
	Email        sql.NullString
	InvoiceCount int64
	Revenue      float64
}

func (q *Queries) TopClients(ctx context.Context, arg TopClientsParams) ([]TopClientsRow, error) {
	rows, err := q.db.QueryContext(ctx, topClients, arg.DateFrom, arg.DateTo, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []TopClientsRow{}
	for rows.Next() {
		var i TopClientsRow
		if err := rows.Scan(&i.ID, &i.Name, &i.Email, &i.InvoiceCount, &i.Revenue); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const periodStats = `
SELECT COUNT(*) AS total_invoices,
       COUNT(CASE WHEN status = 'paid' THEN 1 END) AS paid_invoices,
       COUNT(CASE WHEN status = 'sent' THEN 1 END) AS sent_invoices,
       COUNT(CASE WHEN status = 'draft' THEN 1 END) AS draft_invoices,
       COUNT(CASE WHEN status = 'cancelled' THEN 1 END) AS cancelled_invoices,
       COALESCE(SUM(CASE WHEN status = 'paid' THEN total ELSE 0 END), 0) AS revenue_total,
       COALESCE(SUM(CASE WHEN status = 'paid' THEN subtotal ELSE 0 END), 0) AS revenue_subtotal,
       COALESCE(SUM(CASE WHEN status = 'paid' THEN tax_amount ELSE 0 END), 0) AS tax_total
FROM invoices
WHERE issue_date BETWEEN ? AND ?
`

type PeriodStatsRow struct {
	TotalInvoices     int64
	PaidInvoices      int64
	SentInvoices      int64
	DraftInvoices     int64
	CancelledInvoices int64
	RevenueTotal      float64
	RevenueSubtotal   float64
	TaxTotal          float64
}

func (q *Queries) PeriodStats(ctx context.Context, from, to string) (PeriodStatsRow, error) {
	row := q.db.QueryRowContext(ctx, periodStats, from, to)
	var i PeriodStatsRow
	err := row.Scan(
		&i.TotalInvoices, &i.PaidInvoices, &i.SentInvoices, &i.DraftInvoices, &i.CancelledInvoices,
		&i.RevenueTotal, &i.RevenueSubtotal, &i.TaxTotal,
	)
	return i, err
}

const paidRevenueForMonth = `
SELECT COALESCE(SUM(total), 0) AS revenue, COUNT(*) AS invoice_count
FROM invoices
WHERE status = 'paid' AND strftime('%Y-%m', issue_date) = ?
`

func (q *Queries) PaidRevenueForMonth(ctx context.Context, month string) (float64, int64, error) {
	var (
		revenue float64
		count   int64
	)
	err := q.db.QueryRowContext(ctx, paidRevenueForMonth, month).Scan(&revenue, &count)
	return revenue, count, err
}

const pendingInvoices = `
SELECT COUNT(*) AS count, COALESCE(SUM(total), 0) AS total
FROM invoices
WHERE status = 'sent'
`

func (q *Queries) PendingInvoices(ctx context.Context) (int64, float64, error) {
	var (
		count int64
		total float64
	)
	err := q.db.QueryRowContext(ctx, pendingInvoices).Scan(&count, &total)
	return count, total, err
}

const activeClients = `SELECT COUNT(DISTINCT client_id) FROM invoices`

func (q *Queries) ActiveClients(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, activeClients).Scan(&n)
	return n, err
}

const exportRows = `
SELECT i.number, i.issue_date, i.due_date,
       COALESCE(c.name, ''), c.email,
       i.status, i.subtotal, i.tax_amount, i.total, i.notes
FROM invoices i
LEFT JOIN clients c ON c.id = i.client_id
WHERE i.issue_date BETWEEN ? AND ?
ORDER BY i.issue_date DESC, i.id DESC
`

type ExportRowsRow struct {
	Number      string
	IssueDate   string
	DueDate     sql.NullString
	ClientName  string
	ClientEmail sql.NullString
	Status      string
	Subtotal    float64
	TaxAmount   float64
	Total       float64
	Notes       sql.NullString
}

func (q *Queries) ExportRows(ctx context.Context, from, to string) ([]ExportRowsRow, error) {
	rows, err := q.db.QueryContext(ctx, exportRows, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ExportRowsRow{}
	for rows.Next() {
		var i ExportRowsRow
		if err := rows.Scan(
			&i.Number, &i.IssueDate, &i.DueDate, &i.ClientName, &i.ClientEmail,
			&i.Status, &i.Subtotal, &i.TaxAmount, &i.Total, &i.Notes,
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
