package core

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// DefaultTaxRate is the VAT percentage applied when an invoice does not carry one.
const DefaultTaxRate = 20.0

// DateLayout is the storage and wire format of calendar dates.
const DateLayout = "2006-01-02"

type (
	Status string

	// Date is a calendar day without time of day.
	Date struct {
		time.Time
	}

	Client struct {
		ID        int64     `json:"id"`
		Name      string    `json:"name"`
		Email     string    `json:"email,omitempty"`
		Phone     string    `json:"phone,omitempty"`
		Address   string    `json:"address,omitempty"`
		SIRET     string    `json:"siret,omitempty"`
		CreatedAt time.Time `json:"created_at"`
	}

	ClientInput struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
		SIRET   string `json:"siret"`
	}

	Invoice struct {
		ID        int64     `json:"id"`
		Number    string    `json:"number"`
		ClientID  int64     `json:"client_id"`
		IssueDate Date      `json:"issue_date"`
		DueDate   Date      `json:"due_date"`
		Status    Status    `json:"status"`
		Subtotal  float64   `json:"subtotal"`
		TaxRate   float64   `json:"tax_rate"`
		TaxAmount float64   `json:"tax_amount"`
		Total     float64   `json:"total"`
		Notes     string    `json:"notes,omitempty"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	InvoiceLine struct {
		ID          int64   `json:"id"`
		InvoiceID   int64   `json:"invoice_id"`
		Description string  `json:"description"`
		Quantity    float64 `json:"quantity"`
		UnitPrice   float64 `json:"unit_price"`
		Total       float64 `json:"total"`
	}

	// InvoiceInput carries the caller-editable part of an invoice. Totals are
	// never accepted from callers: they are derived by Apply.
	InvoiceInput struct {
		// Number is only honoured on creation; empty means allocate the next one.
		Number    string      `json:"number,omitempty"`
		ClientID  int64       `json:"client_id"`
		IssueDate Date        `json:"issue_date"`
		DueDate   Date        `json:"due_date"`
		Status    Status      `json:"status"`
		TaxRate   *float64    `json:"tax_rate,omitempty"`
		Notes     string      `json:"notes"`
		Lines     []LineInput `json:"lines"`
	}

	LineInput struct {
		Description string  `json:"description"`
		Quantity    float64 `json:"quantity"`
		UnitPrice   float64 `json:"unit_price"`
	}

	CompanyProfile struct {
		Name      string `json:"name"`
		Address   string `json:"address"`
		Phone     string `json:"phone"`
		Email     string `json:"email"`
		SIRET     string `json:"siret"`
		VATNumber string `json:"vat_number"`
		LogoPath  string `json:"logo_path"`
		IBAN      string `json:"iban"`
	}
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Valid reports whether s is one of the four lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus converts user input to a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", s)}
	}
	return st, nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string. An empty string yields the zero Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// String returns YYYY-MM-DD, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MonthKey returns the calendar month key (YYYY-MM) the date belongs to.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Normalize trims every field and strips separators from the SIRET.
func (in ClientInput) Normalize() ClientInput {
	return ClientInput{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Phone:   strings.TrimSpace(in.Phone),
		Address: strings.TrimSpace(in.Address),
		SIRET:   NormalizeSIRET(in.SIRET),
	}
}

func (in ClientInput) Validate() error {
	in = in.Normalize()
	if in.Name == "" {
		return &ValidationError{Field: "name", Message: "required"}
	}
	if in.Email != "" && !emailPattern.MatchString(in.Email) {
		return &ValidationError{Field: "email", Message: "invalid email address"}
	}
	if in.SIRET != "" && !ValidSIRET(in.SIRET) {
		return &ValidationError{Field: "siret", Message: "invalid SIRET"}
	}
	return nil
}

func (in InvoiceInput) Validate() error {
	if in.ClientID <= 0 {
		return &ValidationError{Field: "client_id", Message: "required"}
	}
	if in.IssueDate.IsZero() {
		return &ValidationError{Field: "issue_date", Message: "required"}
	}
	if !in.DueDate.IsZero() && in.DueDate.Before(in.IssueDate.Time) {
		return &ValidationError{Field: "due_date", Message: "before issue date"}
	}
	if in.Status != "" && !in.Status.Valid() {
		return &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", in.Status)}
	}
	if in.TaxRate != nil && *in.TaxRate < 0 {
		return &ValidationError{Field: "tax_rate", Message: "must not be negative"}
	}
	for i, l := range in.Lines {
		if strings.TrimSpace(l.Description) == "" {
			return &ValidationError{Field: fmt.Sprintf("lines[%d].description", i), Message: "required"}
		}
	}
	return nil
}

// ValidateCreate adds the creation-only rule: a supplied number must be
// well formed and belong to the issue year. Updates never change the number.
func (in InvoiceInput) ValidateCreate() error {
	if err := in.Validate(); err != nil {
		return err
	}
	if in.Number != "" {
		return CheckInvoiceNumber(in.Number, in.IssueDate)
	}
	return nil
}

func (p CompanyProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return &ValidationError{Field: "name", Message: "required"}
	}
	if p.Email != "" && !emailPattern.MatchString(strings.TrimSpace(p.Email)) {
		return &ValidationError{Field: "email", Message: "invalid email address"}
	}
	if s := NormalizeSIRET(p.SIRET); s != "" && !ValidSIRET(s) {
		return &ValidationError{Field: "siret", Message: "invalid SIRET"}
	}
	return nil
}
