package amqp

import (
	"encoding/json"
	"time"

	"factures/internal/core"
)

type EventType string

const (
	EventInvoiceCreated       EventType = "invoice.created"
	EventInvoiceUpdated       EventType = "invoice.updated"
	EventInvoiceStatusChanged EventType = "invoice.status_changed"
	EventInvoiceDeleted       EventType = "invoice.deleted"
)

// InvoiceEvent announces a committed invoice change. Consumers re-read the
// store for anything beyond these fields.
type InvoiceEvent struct {
	Type      EventType   `json:"type"`
	InvoiceID int64       `json:"invoice_id"`
	Number    string      `json:"number,omitempty"`
	ClientID  int64       `json:"client_id,omitempty"`
	IssueDate core.Date   `json:"issue_date"`
	Status    core.Status `json:"status,omitempty"`
	Total     float64     `json:"total"`
	Timestamp time.Time   `json:"timestamp"`

	// PreviousIssueDate is set on updates to the issue date held before the change.
	PreviousIssueDate core.Date `json:"previous_issue_date"`
}

// NewInvoiceEvent builds an event from the invoice as stored.
func NewInvoiceEvent(t EventType, inv core.Invoice) *InvoiceEvent {
	return &InvoiceEvent{
		Type:      t,
		InvoiceID: inv.ID,
		Number:    inv.Number,
		ClientID:  inv.ClientID,
		IssueDate: inv.IssueDate,
		Status:    inv.Status,
		Total:     inv.Total,
		Timestamp: time.Now().UTC(),
	}
}

func (m *InvoiceEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func InvoiceEventFromJSON(data []byte) (*InvoiceEvent, error) {
	var msg InvoiceEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
