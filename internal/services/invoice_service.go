package services

import (
	"context"
	"fmt"
	"time"

	"factures/internal/amqp"
	"factures/internal/core"
	"factures/internal/log"
)

// InvoiceService stores invoices locally, then announces the change on the
// broker. A failed publish is logged and never fails the request.
type InvoiceService struct {
	store     InvoiceStore
	publisher EventPublisher
	cache     Purger
	now       Clock
	logger    *log.Logger
}

func NewInvoiceService(store InvoiceStore, publisher EventPublisher, cache Purger, logger *log.Logger) *InvoiceService {
	if cache == nil {
		cache = noopPurger{}
	}
	return &InvoiceService{
		store:     store,
		publisher: publisher,
		cache:     cache,
		now:       time.Now,
		logger:    orDefaultLogger(logger, log.ComponentInvoice),
	}
}

// WithClock pins the time source used for number previews.
func (s *InvoiceService) WithClock(now Clock) *InvoiceService {
	s.now = now
	return s
}

func (s *InvoiceService) ListInvoices(ctx context.Context, f core.InvoiceFilter) ([]core.InvoiceSummary, error) {
	if err := validateFilter(f); err != nil {
		logFailure(ctx, s.logger, "Rejected invoice filter", log.OpList, err, nil)
		return nil, err
	}
	invoices, err := s.store.ListInvoices(ctx, f)
	if err != nil {
		logFailure(ctx, s.logger, "Failed to list invoices", log.OpList, err, nil)
		return nil, err
	}
	return invoices, nil
}

func validateFilter(f core.InvoiceFilter) error {
	if f.Status != "" && !f.Status.Valid() {
		return &core.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", f.Status)}
	}
	if f.Limit < 0 {
		return &core.ValidationError{Field: "limit", Message: "must not be negative"}
	}
	if f.Offset < 0 {
		return &core.ValidationError{Field: "offset", Message: "must not be negative"}
	}
	if !f.DateFrom.IsZero() && !f.DateTo.IsZero() && f.DateTo.Before(f.DateFrom.Time) {
		return &core.ValidationError{Field: "to", Message: "before from"}
	}
	return nil
}

func (s *InvoiceService) GetInvoice(ctx context.Context, id int64) (core.InvoiceDetail, error) {
	inv, err := s.store.GetInvoice(ctx, id)
	if err != nil {
		logFailure(ctx, s.logger, "Failed to get invoice", log.OpRead, err, log.NewFields().WithInvoice(id, ""))
		return core.InvoiceDetail{}, err
	}
	return inv, nil
}

// CreateInvoice returns the new invoice id. Totals are always derived from the lines.
func (s *InvoiceService) CreateInvoice(ctx context.Context, in core.InvoiceInput) (int64, error) {
	if err := in.ValidateCreate(); err != nil {
		logFailure(ctx, s.logger, "Rejected invoice", log.OpCreate, err, nil)
		return 0, err
	}
	inv, err := s.store.CreateInvoice(ctx, in)
	if err != nil {
		logFailure(ctx, s.logger, "Failed to create invoice", log.OpCreate, err, log.NewFields().WithClient(in.ClientID))
		return 0, err
	}
	s.cache.Purge()
	s.publish(ctx, amqp.NewInvoiceEvent(amqp.EventInvoiceCreated, inv))
	return inv.ID, nil
}

// UpdateInvoice replaces fields and lines; unknown ids report changed=false.
func (s *InvoiceService) UpdateInvoice(ctx context.Context, id int64, in core.InvoiceInput) (bool, error) {
	fields := log.NewFields().WithInvoice(id, "")
	if err := in.Validate(); err != nil {
		logFailure(ctx, s.logger, "Rejected invoice update", log.OpUpdate, err, fields)
		return false, err
	}
	// The event carries the old issue date so consumers can leave the year it moved out of.
	var previous core.Date
	if s.publisher != nil {
		if d, err := s.store.GetInvoice(ctx, id); err == nil {
			previous = d.IssueDate
		}
	}

	changed, err := s.store.UpdateInvoice(ctx, id, in)
	if err != nil {
		logFailure(ctx, s.logger, "Failed to update invoice", log.OpUpdate, err, fields)
		return false, err
	}
	if changed {
		s.cache.Purge()
		if ev := s.loadEvent(ctx, amqp.EventInvoiceUpdated, id); ev != nil {
			ev.PreviousIssueDate = previous
			s.publish(ctx, ev)
		}
	}
	return changed, nil
}

func (s *InvoiceService) SetInvoiceStatus(ctx context.Context, id int64, status core.Status) (bool, error) {
	fields := log.NewFields().WithInvoice(id, "")
	if !status.Valid() {
		err := &core.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
		logFailure(ctx, s.logger, "Rejected invoice status", log.OpSetStatus, err, fields)
		return false, err
	}
	changed, err := s.store.SetInvoiceStatus(ctx, id, status)
	if err != nil {
		logFailure(ctx, s.logger, "Failed to change invoice status", log.OpSetStatus, err, fields)
		return false, err
	}
	if changed {
		s.cache.Purge()
		s.publishCurrent(ctx, amqp.EventInvoiceStatusChanged, id)
	}
	return changed, nil
}

// DeleteInvoice removes the invoice and its lines.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id int64) (bool, error) {
	// The event needs the issue date, which is gone after the delete.
	var before core.Invoice
	if s.publisher != nil {
		if d, err := s.store.GetInvoice(ctx, id); err == nil {
			before = d.Invoice
		}
	}

	deleted, err := s.store.DeleteInvoice(ctx, id)
	if err != nil {
		logFailure(ctx, s.logger, "Failed to delete invoice", log.OpDelete, err, log.NewFields().WithInvoice(id, ""))
		return false, err
	}
	if deleted {
		s.cache.Purge()
		before.ID = id
		s.publish(ctx, amqp.NewInvoiceEvent(amqp.EventInvoiceDeleted, before))
	}
	return deleted, nil
}

// NextInvoiceNumber previews the next number of the current year.
func (s *InvoiceService) NextInvoiceNumber(ctx context.Context) (string, error) {
	number, err := s.store.NextInvoiceNumber(ctx, s.now().Year())
	if err != nil {
		logFailure(ctx, s.logger, "Failed to compute next invoice number", log.OpNextNumber, err, nil)
		return "", err
	}
	return number, nil
}

func (s *InvoiceService) publishCurrent(ctx context.Context, t amqp.EventType, id int64) {
	if ev := s.loadEvent(ctx, t, id); ev != nil {
		s.publish(ctx, ev)
	}
}

// loadEvent builds an event from the stored invoice, or nil when nothing will be published.
func (s *InvoiceService) loadEvent(ctx context.Context, t amqp.EventType, id int64) *amqp.InvoiceEvent {
	if s.publisher == nil {
		return nil
	}
	d, err := s.store.GetInvoice(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to reload invoice for event",
			log.NewFields().WithInvoice(id, "").WithOperation(log.OpPublish).WithError(err).ToSlice()...)
		return nil
	}
	return amqp.NewInvoiceEvent(t, d.Invoice)
}

func (s *InvoiceService) publish(ctx context.Context, ev *amqp.InvoiceEvent) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP client not available, skipping invoice event", "type", ev.Type)
		return
	}
	if err := s.publisher.PublishInvoiceEvent(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish invoice event",
			log.NewFields().WithInvoice(ev.InvoiceID, ev.Number).WithOperation(log.OpPublish).WithError(err).ToSlice()...)
	}
}
