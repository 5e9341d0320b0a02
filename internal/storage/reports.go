package storage

import (
	"context"
	"fmt"

	"factures/internal/core"
)

// InvoiceStats returns count and summed total per status.
func (r *SQLiteRepository) InvoiceStats(ctx context.Context) ([]core.StatusStat, error) {
	rows, err := r.queries.InvoiceStatsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("invoice stats: %w", err)
	}
	stats := make([]core.StatusStat, len(rows))
	for i, row := range rows {
		stats[i] = core.StatusStat{Status: core.Status(row.Status), Count: int(row.Count), Total: row.Total}
	}
	return stats, nil
}

// PaidRevenueByMonth groups paid invoices issued in [from, to] by month, ascending.
// A zero to leaves the range open.
func (r *SQLiteRepository) PaidRevenueByMonth(ctx context.Context, from, to core.Date) ([]core.MonthlyRevenue, error) {
	rows, err := r.queries.PaidRevenueByMonth(ctx, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("paid revenue by month: %w", err)
	}
	months := make([]core.MonthlyRevenue, len(rows))
	for i, row := range rows {
		months[i] = core.MonthlyRevenue{Month: row.Month, Revenue: row.Revenue, InvoiceCount: int(row.InvoiceCount)}
	}
	return months, nil
}

// TopClients ranks clients by paid revenue. Zero dates disable the bound.
func (r *SQLiteRepository) TopClients(ctx context.Context, limit int, from, to core.Date) ([]core.TopClient, error) {
	rows, err := r.queries.TopClients(ctx, TopClientsParams{
		DateFrom: from.String(),
		DateTo:   to.String(),
		Limit:    int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("top clients: %w", err)
	}
	clients := make([]core.TopClient, len(rows))
	for i, row := range rows {
		clients[i] = core.TopClient{
			ID:           row.ID,
			Name:         row.Name,
			Email:        row.Email.String,
			InvoiceCount: int(row.InvoiceCount),
			Revenue:      row.Revenue,
		}
	}
	return clients, nil
}

func (r *SQLiteRepository) PeriodStats(ctx context.Context, from, to core.Date) (core.PeriodStats, error) {
	row, err := r.queries.PeriodStats(ctx, from.String(), to.String())
	if err != nil {
		return core.PeriodStats{}, fmt.Errorf("period stats: %w", err)
	}
	return core.PeriodStats{
		TotalInvoices:     int(row.TotalInvoices),
		PaidInvoices:      int(row.PaidInvoices),
		SentInvoices:      int(row.SentInvoices),
		DraftInvoices:     int(row.DraftInvoices),
		CancelledInvoices: int(row.CancelledInvoices),
		RevenueTotal:      row.RevenueTotal,
		RevenueSubtotal:   row.RevenueSubtotal,
		TaxTotal:          row.TaxTotal,
	}, nil
}

// PaidRevenueForMonth returns paid revenue and paid invoice count for a YYYY-MM month.
func (r *SQLiteRepository) PaidRevenueForMonth(ctx context.Context, month string) (float64, int, error) {
	revenue, count, err := r.queries.PaidRevenueForMonth(ctx, month)
	if err != nil {
		return 0, 0, fmt.Errorf("paid revenue for %s: %w", month, err)
	}
	return revenue, int(count), nil
}

// PendingInvoices returns the count and amount of sent, unpaid invoices.
func (r *SQLiteRepository) PendingInvoices(ctx context.Context) (int, float64, error) {
	count, total, err := r.queries.PendingInvoices(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("pending invoices: %w", err)
	}
	return int(count), total, nil
}

// ActiveClients counts clients with at least one invoice.
func (r *SQLiteRepository) ActiveClients(ctx context.Context) (int, error) {
	n, err := r.queries.ActiveClients(ctx)
	if err != nil {
		return 0, fmt.Errorf("active clients: %w", err)
	}
	return int(n), nil
}

func (r *SQLiteRepository) ExportRows(ctx context.Context, from, to core.Date) ([]core.ExportRow, error) {
	rows, err := r.queries.ExportRows(ctx, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("export rows: %w", err)
	}
	out := make([]core.ExportRow, len(rows))
	for i, row := range rows {
		out[i] = core.ExportRow{
			Number:      row.Number,
			IssueDate:   parseDate(row.IssueDate),
			DueDate:     parseDate(row.DueDate.String),
			ClientName:  row.ClientName,
			ClientEmail: row.ClientEmail.String,
			Status:      core.Status(row.Status),
			Subtotal:    row.Subtotal,
			TaxAmount:   row.TaxAmount,
			Total:       row.Total,
			Notes:       row.Notes.String,
		}
	}
	return out, nil
}
