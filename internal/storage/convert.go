package storage

import (
	"database/sql"
	"strings"
	"time"

	"factures/internal/core"
)

const timestampLayout = "2006-01-02 15:04:05"

// nullString stores blank optional fields as NULL.
func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

func nullDate(d core.Date) sql.NullString {
	return sql.NullString{String: d.String(), Valid: !d.IsZero()}
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// parseDate tolerates bad rows: a value that is not YYYY-MM-DD reads as the zero date.
func parseDate(s string) core.Date {
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}
	}
	return d
}

// escapeLike makes s a literal LIKE operand for use with ESCAPE '\'.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func containsPattern(s string) string {
	return "%" + escapeLike(s) + "%"
}

func (c Client) toCore() core.Client {
	return core.Client{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email.String,
		Phone:     c.Phone.String,
		Address:   c.Address.String,
		SIRET:     c.Siret.String,
		CreatedAt: parseTimestamp(c.CreatedAt),
	}
}

func (i Invoice) toCore() core.Invoice {
	return core.Invoice{
		ID:        i.ID,
		Number:    i.Number,
		ClientID:  i.ClientID,
		IssueDate: parseDate(i.IssueDate),
		DueDate:   parseDate(i.DueDate.String),
		Status:    core.Status(i.Status),
		Subtotal:  i.Subtotal,
		TaxRate:   i.TaxRate,
		TaxAmount: i.TaxAmount,
		Total:     i.Total,
		Notes:     i.Notes.String,
		CreatedAt: parseTimestamp(i.CreatedAt),
		UpdatedAt: parseTimestamp(i.UpdatedAt),
	}
}

func (l InvoiceLine) toCore() core.InvoiceLine {
	return core.InvoiceLine{
		ID:          l.ID,
		InvoiceID:   l.InvoiceID,
		Description: l.Description,
		Quantity:    l.Quantity,
		UnitPrice:   l.UnitPrice,
		Total:       l.Total,
	}
}

func (p CompanyProfile) toCore() core.CompanyProfile {
	return core.CompanyProfile{
		Name:      p.Name,
		Address:   p.Address.String,
		Phone:     p.Phone.String,
		Email:     p.Email.String,
		SIRET:     p.Siret.String,
		VATNumber: p.VatNumber.String,
		LogoPath:  p.LogoPath.String,
		IBAN:      p.Iban.String,
	}
}
