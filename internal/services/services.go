// Package services holds the invoicing use cases. Each service validates input
// before touching storage, logs failures at its boundary and returns them.
package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"factures/internal/amqp"
	"factures/internal/core"
	"factures/internal/log"
)

type ClientStore interface {
	CreateClient(ctx context.Context, in core.ClientInput) (int64, error)
	UpdateClient(ctx context.Context, id int64, in core.ClientInput) (bool, error)
	DeleteClient(ctx context.Context, id int64) (bool, error)
	GetClient(ctx context.Context, id int64) (core.ClientDetail, error)
	ListClients(ctx context.Context) ([]core.ClientSummary, error)
	SearchClients(ctx context.Context, text string) ([]core.Client, error)
	ClientCount(ctx context.Context) (int, error)
}

type InvoiceStore interface {
	CreateInvoice(ctx context.Context, in core.InvoiceInput) (core.Invoice, error)
	UpdateInvoice(ctx context.Context, id int64, in core.InvoiceInput) (bool, error)
	SetInvoiceStatus(ctx context.Context, id int64, status core.Status) (bool, error)
	DeleteInvoice(ctx context.Context, id int64) (bool, error)
	GetInvoice(ctx context.Context, id int64) (core.InvoiceDetail, error)
	ListInvoices(ctx context.Context, f core.InvoiceFilter) ([]core.InvoiceSummary, error)
	NextInvoiceNumber(ctx context.Context, year int) (string, error)
}

type ReportStore interface {
	InvoiceStats(ctx context.Context) ([]core.StatusStat, error)
	PaidRevenueByMonth(ctx context.Context, from, to core.Date) ([]core.MonthlyRevenue, error)
	TopClients(ctx context.Context, limit int, from, to core.Date) ([]core.TopClient, error)
	PeriodStats(ctx context.Context, from, to core.Date) (core.PeriodStats, error)
	ListInvoices(ctx context.Context, f core.InvoiceFilter) ([]core.InvoiceSummary, error)
	PaidRevenueForMonth(ctx context.Context, month string) (float64, int, error)
	PendingInvoices(ctx context.Context) (int, float64, error)
	ActiveClients(ctx context.Context) (int, error)
	ClientCount(ctx context.Context) (int, error)
	ExportRows(ctx context.Context, from, to core.Date) ([]core.ExportRow, error)
}

type CompanyStore interface {
	GetCompanyProfile(ctx context.Context) (core.CompanyProfile, error)
	UpdateCompanyProfile(ctx context.Context, p core.CompanyProfile) error
}

// EventPublisher is satisfied by *amqp.Client.
type EventPublisher interface {
	PublishInvoiceEvent(ctx context.Context, ev *amqp.InvoiceEvent) error
}

// Purger drops cached report results after a write.
type Purger interface {
	Purge()
}

type noopPurger struct{}

func (noopPurger) Purge() {}

// Clock returns the current time; tests pin it.
type Clock func() time.Time

// logFailure logs err at warn for caller mistakes and at error otherwise.
func logFailure(ctx context.Context, logger *log.Logger, msg, op string, err error, fields log.LogFields) {
	if fields == nil {
		fields = log.NewFields()
	}
	fields.WithOperation(op).WithError(err)

	level := slog.LevelError
	switch {
	case errors.Is(err, core.ErrValidation):
		level = slog.LevelWarn
		fields.WithErrorType(log.ErrorTypeValidation)
	case errors.Is(err, core.ErrNotFound):
		level = slog.LevelWarn
		fields.WithErrorType(log.ErrorTypeNotFound)
	case errors.Is(err, core.ErrClientHasInvoices), errors.Is(err, core.ErrSequenceExhausted):
		level = slog.LevelWarn
		fields.WithErrorType(log.ErrorTypeConflict)
	default:
		fields.WithErrorType(log.ErrorTypeInternal)
	}
	logger.Log(ctx, level, msg, fields.ToSlice()...)
}

func orDefaultLogger(logger *log.Logger, component string) *log.Logger {
	if logger == nil {
		logger = log.Default()
	}
	return logger.WithComponent(component)
}
